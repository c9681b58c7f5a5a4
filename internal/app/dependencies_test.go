package app

import (
	"context"
	"errors"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/overiq429/cafe-orders/internal/domain"
)

func TestNewDependencies_InMemory(t *testing.T) {
	logger := log.WithField("test", "dependencies")
	deps, err := NewDependencies(context.Background(), Config{}, logger)
	if err != nil {
		t.Fatalf("NewDependencies: %v", err)
	}
	defer deps.Close()

	if deps.Menu == nil {
		t.Error("Menu should not be nil")
	}
	if deps.Orders == nil {
		t.Error("Orders should not be nil")
	}
	if deps.Customers == nil {
		t.Error("Customers should not be nil")
	}
	if deps.Staff == nil {
		t.Error("Staff should not be nil")
	}
	if deps.History == nil {
		t.Error("History should not be nil")
	}
	if deps.Outbox == nil {
		t.Error("Outbox should not be nil")
	}
	if deps.Logger == nil {
		t.Error("Logger should not be nil")
	}

	if deps.CatalogStore() != nil || deps.BranchStore() != nil {
		t.Error("in-memory mode should not open postgres stores")
	}
}

func TestNewDependencies_WithNilLogger(t *testing.T) {
	deps, err := NewDependencies(context.Background(), Config{}, nil)
	if err != nil {
		t.Fatalf("NewDependencies: %v", err)
	}
	defer deps.Close()

	if deps.Logger == nil {
		t.Error("Logger should be initialized even when nil is passed")
	}
}

func TestNewDependencies_DemoCatalogSeeded(t *testing.T) {
	deps, err := NewDependencies(context.Background(), Config{}, nil)
	if err != nil {
		t.Fatalf("NewDependencies: %v", err)
	}
	defer deps.Close()

	snapshot, err := deps.Menu.LookupActiveItem("dish-soup")
	if err != nil {
		t.Fatalf("demo dish should be available: %v", err)
	}
	if snapshot.PriceMinor <= 0 {
		t.Errorf("demo dish price should be positive, got %d", snapshot.PriceMinor)
	}

	if _, err := deps.Staff.GetEmployee("employee-demo"); err != nil {
		t.Errorf("demo employee should exist: %v", err)
	}
	if _, err := deps.Staff.GetTable("table-1"); err != nil {
		t.Errorf("demo table should exist: %v", err)
	}
}

func TestNewDependencies_IndependentInstances(t *testing.T) {
	deps1, err := NewDependencies(context.Background(), Config{}, nil)
	if err != nil {
		t.Fatalf("NewDependencies: %v", err)
	}
	defer deps1.Close()

	deps2, err := NewDependencies(context.Background(), Config{}, nil)
	if err != nil {
		t.Fatalf("NewDependencies: %v", err)
	}
	defer deps2.Close()

	order := domain.Order{
		ID:         "order-deps",
		EmployeeID: "employee-demo",
		TableID:    "table-1",
		Status:     domain.OrderStatusAccepted,
	}
	if err := deps1.Orders.Create(order); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := deps2.Orders.Get("order-deps"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("repositories should be independent, got %v", err)
	}
}
