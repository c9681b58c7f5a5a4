package composer

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/overiq429/cafe-orders/internal/domain"
	"github.com/overiq429/cafe-orders/internal/storage/memory"
)

type stubCatalog struct {
	mu        sync.Mutex
	snapshot  domain.ItemSnapshot
	err       error
	lookupCnt int
}

func (s *stubCatalog) LookupActiveItem(itemID string) (domain.ItemSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookupCnt++
	if s.err != nil {
		return domain.ItemSnapshot{}, s.err
	}
	return s.snapshot, nil
}

func (s *stubCatalog) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

type failingOrders struct {
	domain.OrderRepository
	appendErr error
}

func (f *failingOrders) AppendLineItem(orderID string, item domain.LineItem) (int64, error) {
	return 0, f.appendErr
}

func seedOrder(t *testing.T, repo domain.OrderRepository) domain.Order {
	t.Helper()

	now := time.Now().UTC()
	order := domain.Order{
		ID:         "order-1",
		EmployeeID: "employee-1",
		TableID:    "table-1",
		Status:     domain.OrderStatusAccepted,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := repo.Create(order); err != nil {
		t.Fatalf("create order: %v", err)
	}

	return order
}

func soupCatalog() *stubCatalog {
	return &stubCatalog{
		snapshot: domain.ItemSnapshot{
			ItemID:     "dish-soup",
			Name:       "Суп дня",
			PriceMinor: 200,
		},
	}
}

func collectOutbox(t *testing.T, outbox domain.OutboxRepository) []domain.OutboxMessage {
	t.Helper()

	type allPending interface {
		AllPending() []domain.OutboxMessage
	}

	repo, ok := outbox.(allPending)
	if !ok {
		t.Fatalf("outbox repository does not support AllPending")
	}

	return repo.AllPending()
}

func TestComposer_AddItemSuccess(t *testing.T) {
	orders := memory.NewOrderRepository()
	outbox := memory.NewOutboxRepository()
	catalog := soupCatalog()
	order := seedOrder(t, orders)

	svc := NewWithoutMetrics(catalog, orders, outbox, nil)

	result, err := svc.AddItemToOrder(order.ID, "dish-soup", 2)
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	if result.Item.ID == "" {
		t.Fatal("expected generated line item id")
	}
	if result.Item.PriceMinor != 200 {
		t.Fatalf("expected snapshot price 200, got %d", result.Item.PriceMinor)
	}
	if result.ItemName != "Суп дня" {
		t.Fatalf("unexpected item name %q", result.ItemName)
	}
	if result.NewTotalMinor != 400 {
		t.Fatalf("expected total 400, got %d", result.NewTotalMinor)
	}

	stored, err := orders.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.TotalMinor != 400 {
		t.Fatalf("expected stored total 400, got %d", stored.TotalMinor)
	}
	if len(stored.Items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(stored.Items))
	}

	messages := collectOutbox(t, outbox)
	if len(messages) != 1 {
		t.Fatalf("expected 1 outbox message, got %d", len(messages))
	}
	if messages[0].EventType != "order.item_added" {
		t.Fatalf("unexpected event type %q", messages[0].EventType)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(messages[0].Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload["order_id"] != order.ID {
		t.Fatalf("unexpected order_id in payload: %v", payload["order_id"])
	}
	if payload["total_minor"].(float64) != 400 {
		t.Fatalf("unexpected total in payload: %v", payload["total_minor"])
	}
}

func TestComposer_InvalidQuantity(t *testing.T) {
	orders := memory.NewOrderRepository()
	outbox := memory.NewOutboxRepository()
	catalog := soupCatalog()
	order := seedOrder(t, orders)

	svc := NewWithoutMetrics(catalog, orders, outbox, nil)

	for _, qty := range []int32{0, -1} {
		_, err := svc.AddItemToOrder(order.ID, "dish-soup", qty)
		if !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Fatalf("qty %d: expected ErrInvalidQuantity, got %v", qty, err)
		}
	}

	// До каталога дело не дошло, записей не было.
	if catalog.lookupCnt != 0 {
		t.Fatalf("expected no catalog lookups, got %d", catalog.lookupCnt)
	}
	stored, err := orders.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(stored.Items) != 0 || stored.TotalMinor != 0 {
		t.Fatalf("order must be untouched, got %+v", stored)
	}
	if len(collectOutbox(t, outbox)) != 0 {
		t.Fatal("expected no outbox messages")
	}
}

func TestComposer_ItemUnavailable(t *testing.T) {
	orders := memory.NewOrderRepository()
	outbox := memory.NewOutboxRepository()
	catalog := soupCatalog()
	catalog.setErr(domain.ErrItemUnavailable)
	order := seedOrder(t, orders)

	svc := NewWithoutMetrics(catalog, orders, outbox, nil)

	_, err := svc.AddItemToOrder(order.ID, "dish-soup", 1)
	if !errors.Is(err, domain.ErrItemUnavailable) {
		t.Fatalf("expected ErrItemUnavailable, got %v", err)
	}
	if domain.IsRetryable(err) {
		t.Fatal("unavailable item must not be retryable")
	}

	stored, err := orders.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(stored.Items) != 0 {
		t.Fatal("order must stay untouched after rejection")
	}
}

func TestComposer_CatalogUnavailable(t *testing.T) {
	orders := memory.NewOrderRepository()
	outbox := memory.NewOutboxRepository()
	catalog := soupCatalog()
	catalog.setErr(fmt.Errorf("%w: connection refused", domain.ErrCatalogUnavailable))
	order := seedOrder(t, orders)

	svc := NewWithoutMetrics(catalog, orders, outbox, nil)

	_, err := svc.AddItemToOrder(order.ID, "dish-soup", 1)
	if !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
	if !domain.IsRetryable(err) {
		t.Fatal("catalog outage must be retryable")
	}

	stored, err := orders.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(stored.Items) != 0 || stored.TotalMinor != 0 {
		t.Fatal("order must stay untouched after catalog outage")
	}
}

func TestComposer_OrderNotFound(t *testing.T) {
	orders := memory.NewOrderRepository()
	outbox := memory.NewOutboxRepository()
	catalog := soupCatalog()

	svc := NewWithoutMetrics(catalog, orders, outbox, nil)

	_, err := svc.AddItemToOrder("missing", "dish-soup", 1)
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if len(collectOutbox(t, outbox)) != 0 {
		t.Fatal("expected no outbox messages")
	}
}

func TestComposer_WriteFailed(t *testing.T) {
	orders := &failingOrders{
		OrderRepository: memory.NewOrderRepository(),
		appendErr:       errors.New("disk on fire"),
	}
	outbox := memory.NewOutboxRepository()
	catalog := soupCatalog()

	svc := NewWithoutMetrics(catalog, orders, outbox, nil)

	_, err := svc.AddItemToOrder("order-1", "dish-soup", 1)
	if !errors.Is(err, domain.ErrWriteFailed) {
		t.Fatalf("expected ErrWriteFailed, got %v", err)
	}
	if !domain.IsRetryable(err) {
		t.Fatal("failed write must be retryable")
	}
	if len(collectOutbox(t, outbox)) != 0 {
		t.Fatal("expected no outbox messages after failed write")
	}
}

func TestComposer_PriceSnapshotFrozen(t *testing.T) {
	orders := memory.NewOrderRepository()
	outbox := memory.NewOutboxRepository()
	catalog := soupCatalog()
	order := seedOrder(t, orders)

	svc := NewWithoutMetrics(catalog, orders, outbox, nil)

	if _, err := svc.AddItemToOrder(order.ID, "dish-soup", 2); err != nil {
		t.Fatalf("first add failed: %v", err)
	}

	// Цена в каталоге выросла: старая позиция хранит прежнюю цену,
	// новая — текущую.
	catalog.mu.Lock()
	catalog.snapshot.PriceMinor = 300
	catalog.mu.Unlock()

	result, err := svc.AddItemToOrder(order.ID, "dish-soup", 1)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if result.Item.PriceMinor != 300 {
		t.Fatalf("expected new price 300, got %d", result.Item.PriceMinor)
	}
	if result.NewTotalMinor != 700 { // 2*200 + 1*300
		t.Fatalf("expected total 700, got %d", result.NewTotalMinor)
	}

	stored, err := orders.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(stored.Items) != 2 {
		t.Fatalf("expected 2 append-only line items, got %d", len(stored.Items))
	}
	if stored.Items[0].PriceMinor != 200 {
		t.Fatalf("first item price must stay 200, got %d", stored.Items[0].PriceMinor)
	}
}

func TestComposer_SameDishTwiceAppendsRows(t *testing.T) {
	orders := memory.NewOrderRepository()
	outbox := memory.NewOutboxRepository()
	catalog := soupCatalog()
	order := seedOrder(t, orders)

	svc := NewWithoutMetrics(catalog, orders, outbox, nil)

	if _, err := svc.AddItemToOrder(order.ID, "dish-soup", 2); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	result, err := svc.AddItemToOrder(order.ID, "dish-soup", 1)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	// Повтор того же блюда — новая строка, не инкремент количества.
	stored, err := orders.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(stored.Items) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(stored.Items))
	}
	if result.NewTotalMinor != 600 { // (2+1) * 200
		t.Fatalf("expected total 600, got %d", result.NewTotalMinor)
	}
}

func TestComposer_DeactivationMidOrder(t *testing.T) {
	orders := memory.NewOrderRepository()
	outbox := memory.NewOutboxRepository()
	catalog := soupCatalog()
	order := seedOrder(t, orders)

	svc := NewWithoutMetrics(catalog, orders, outbox, nil)

	if _, err := svc.AddItemToOrder(order.ID, "dish-soup", 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// Блюдо сняли с меню: существующая позиция и сумма не меняются,
	// но добавить его снова уже нельзя.
	catalog.setErr(domain.ErrItemUnavailable)

	_, err := svc.AddItemToOrder(order.ID, "dish-soup", 1)
	if !errors.Is(err, domain.ErrItemUnavailable) {
		t.Fatalf("expected ErrItemUnavailable, got %v", err)
	}

	stored, err := orders.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.TotalMinor != 400 {
		t.Fatalf("total must stay 400, got %d", stored.TotalMinor)
	}
	if len(stored.Items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(stored.Items))
	}
}

func TestComposer_OutboxFailureDoesNotFailAdd(t *testing.T) {
	orders := memory.NewOrderRepository()
	catalog := soupCatalog()
	order := seedOrder(t, orders)

	// Без outbox: добавление обязано работать, событие просто не ставится.
	svc := NewWithoutMetrics(catalog, orders, nil, nil)

	result, err := svc.AddItemToOrder(order.ID, "dish-soup", 1)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if result.NewTotalMinor != 200 {
		t.Fatalf("expected total 200, got %d", result.NewTotalMinor)
	}
}
