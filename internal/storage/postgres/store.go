package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	defaultConnTimeout     = 5 * time.Second
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 5 * time.Minute
)

// Schema описывает набор миграций одного из двух независимых хранилищ.
// У каждого хранилища свой каталог миграций и свой advisory-lock ключ,
// потому что общая база меню и база филиала живут в разных кластерах.
type Schema struct {
	Name    string
	glob    string
	lockKey int64
}

var (
	// SchemaCatalog — общая база меню (блюда и категории).
	SchemaCatalog = Schema{Name: "catalog", glob: "sql/catalog/*.sql", lockKey: 20250801}
	// SchemaBranch — база филиала (клиенты, персонал, заказы, outbox).
	SchemaBranch = Schema{Name: "branch", glob: "sql/branch/*.sql", lockKey: 20250802}
)

// Store оборачивает SQL-подключение к одному из PostgreSQL-хранилищ.
// Подключения к каталогу и филиалу открываются и закрываются независимо.
type Store struct {
	db     *sql.DB
	schema Schema
}

// Open открывает подключение к PostgreSQL и проверяет доступность базы.
func Open(ctx context.Context, dsn string, schema Schema) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", schema.Name, err)
	}
	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s store: %w", schema.Name, err)
	}

	return &Store{db: db, schema: schema}, nil
}

// DB возвращает raw SQL DB, когда нужен низкоуровневый доступ.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping проверяет доступность подключения.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("postgres store is not initialized")
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	return s.db.PingContext(pingCtx)
}

// EnsureSchema применяет все up-миграции своего хранилища.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.MigrateUp(ctx, 0)
}

// Close закрывает подключение к БД.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
