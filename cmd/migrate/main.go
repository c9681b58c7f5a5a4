package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/overiq429/cafe-orders/internal/storage/postgres"
)

const (
	defaultTimeout = 30 * time.Second
)

// envFallback возвращает переменную окружения с DSN для выбранного хранилища.
func envFallback(store string) string {
	switch store {
	case "catalog":
		return os.Getenv("CAFE_CATALOG_DSN")
	case "branch":
		return os.Getenv("CAFE_BRANCH_DSN")
	}
	return ""
}

func main() {
	var (
		storeName string
		direction string
		steps     int
		dsn       string
	)

	flag.StringVar(&storeName, "store", "branch", "target store: catalog|branch")
	flag.StringVar(&direction, "direction", "up", "migration direction: up|down|status")
	flag.IntVar(&steps, "steps", 0, "number of migrations to apply/rollback (0=all for up, 1 for down)")
	flag.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (fallback: CAFE_CATALOG_DSN / CAFE_BRANCH_DSN)")
	flag.Parse()

	storeName = strings.ToLower(strings.TrimSpace(storeName))
	var schema postgres.Schema
	switch storeName {
	case "catalog":
		schema = postgres.SchemaCatalog
	case "branch":
		schema = postgres.SchemaBranch
	default:
		fail("unsupported store: %s (use catalog|branch)", storeName)
	}

	if strings.TrimSpace(dsn) == "" {
		dsn = strings.TrimSpace(envFallback(storeName))
	}
	if dsn == "" {
		fail("DSN for %s store is required (-dsn or env)", storeName)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, dsn, schema)
	if err != nil {
		fail("open postgres store: %v", err)
	}
	defer store.Close()

	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "up":
		if err := store.MigrateUp(ctx, steps); err != nil {
			fail("migrate up failed: %v", err)
		}
		version, count, err := store.MigrationStatus(ctx)
		if err != nil {
			fail("migration status failed: %v", err)
		}
		fmt.Printf("migrate up ok: store=%s version=%d applied=%d\n", storeName, version, count)
	case "down":
		if steps <= 0 {
			steps = 1
		}
		if err := store.MigrateDown(ctx, steps); err != nil {
			fail("migrate down failed: %v", err)
		}
		version, count, err := store.MigrationStatus(ctx)
		if err != nil {
			fail("migration status failed: %v", err)
		}
		fmt.Printf("migrate down ok: store=%s version=%d applied=%d\n", storeName, version, count)
	case "status":
		version, count, err := store.MigrationStatus(ctx)
		if err != nil {
			fail("migration status failed: %v", err)
		}
		fmt.Printf("migration status: store=%s version=%d applied=%d\n", storeName, version, count)
	default:
		fail("unsupported direction: %s (use up|down|status)", direction)
	}
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
