package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/overiq429/cafe-orders/internal/domain"
	"github.com/overiq429/cafe-orders/internal/storage/memory"
)

func newOrder() domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:         "order-1",
		EmployeeID: "employee-1",
		TableID:    "table-1",
		CustomerID: "customer-1",
		Status:     domain.OrderStatusAccepted,
		TotalMinor: 400,
		Items: []domain.LineItem{
			{ID: "line-1", ItemID: "dish-1", Qty: 2, PriceMinor: 200, CreatedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderRepository_CreateGet(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder()

	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.ID != order.ID {
		t.Fatalf("expected id %s, got %s", order.ID, stored.ID)
	}
	if len(stored.Items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(stored.Items))
	}
}

func TestOrderRepository_GetNotFound(t *testing.T) {
	repo := memory.NewOrderRepository()

	if _, err := repo.Get("missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_ListByStatus(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder()
	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	orders, err := repo.List(domain.OrderStatusAccepted, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}

	orders, err = repo.List(domain.OrderStatusCanceled, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("expected 0 orders, got %d", len(orders))
	}
}

func TestOrderRepository_AppendLineItemRecomputesTotal(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder()
	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	total, err := repo.AppendLineItem(order.ID, domain.LineItem{
		ID:         "line-2",
		ItemID:     "dish-1",
		Qty:        1,
		PriceMinor: 200,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if total != 600 {
		t.Fatalf("expected total 600, got %d", total)
	}

	stored, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	// Позиции append-only: старая строка осталась, новая добавилась.
	if len(stored.Items) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(stored.Items))
	}
	if stored.TotalMinor != 600 {
		t.Fatalf("expected stored total 600, got %d", stored.TotalMinor)
	}
}

func TestOrderRepository_AppendLineItemUnknownOrder(t *testing.T) {
	repo := memory.NewOrderRepository()

	_, err := repo.AppendLineItem("missing", domain.LineItem{ID: "line-1", Qty: 1})
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_RecomputeTotalIdempotent(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder()
	order.TotalMinor = 9999 // рассинхронизированная сумма
	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		total, err := repo.RecomputeTotal(order.ID)
		if err != nil {
			t.Fatalf("recompute failed: %v", err)
		}
		if total != 400 {
			t.Fatalf("expected total 400, got %d", total)
		}
	}
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder()
	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.UpdateStatus(order.ID, domain.OrderStatusCooking); err != nil {
		t.Fatalf("update status failed: %v", err)
	}

	stored, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Status != domain.OrderStatusCooking {
		t.Fatalf("expected status cooking, got %s", stored.Status)
	}
}
