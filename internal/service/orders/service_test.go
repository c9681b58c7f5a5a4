package orders

import (
	"errors"
	"testing"
	"time"

	"github.com/overiq429/cafe-orders/internal/domain"
	"github.com/overiq429/cafe-orders/internal/storage/memory"
)

type failingResolver struct{}

func (failingResolver) ResolveNames(ids []string) (map[string]string, error) {
	return nil, errors.New("catalog is down")
}

type fixture struct {
	svc       *Service
	orders    domain.OrderRepository
	customers domain.CustomerRepository
	history   domain.StatusHistoryRepository
	menu      domain.MenuRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	orderRepo := memory.NewOrderRepository()
	customerRepo := memory.NewCustomerRepository()
	staffRepo := memory.NewStaffRepository()
	historyRepo := memory.NewStatusHistoryRepository()
	menuRepo := memory.NewMenuRepository()
	outbox := memory.NewOutboxRepository()

	staffRepo.PutEmployee(domain.Employee{ID: "employee-1", FirstName: "Анна", Position: "официант"})
	staffRepo.PutTable(domain.Table{ID: "table-1", Number: 5, Seats: 4})

	if err := customerRepo.Create(domain.Customer{
		ID:           "customer-1",
		FirstName:    "Иван",
		Phone:        "+70000000000",
		RegisteredAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed customer: %v", err)
	}

	if err := menuRepo.CreateDish(domain.Dish{
		ID:         "dish-soup",
		Name:       "Суп дня",
		PriceMinor: 200,
		Active:     true,
	}); err != nil {
		t.Fatalf("seed dish: %v", err)
	}

	svc := NewService(orderRepo, customerRepo, staffRepo, historyRepo, menuRepo, outbox, nil)

	return &fixture{
		svc:       svc,
		orders:    orderRepo,
		customers: customerRepo,
		history:   historyRepo,
		menu:      menuRepo,
	}
}

func TestService_Create(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Create(CreateOrderInput{
		EmployeeID: "employee-1",
		TableID:    "table-1",
		CustomerID: "customer-1",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if order.ID == "" {
		t.Fatal("expected generated order id")
	}
	if order.Status != domain.OrderStatusAccepted {
		t.Fatalf("expected status accepted, got %s", order.Status)
	}
	if order.TotalMinor != 0 {
		t.Fatalf("new order must have zero total, got %d", order.TotalMinor)
	}

	events, err := f.history.List(order.ID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(events) != 1 || events[0].Status != domain.OrderStatusAccepted {
		t.Fatalf("expected 1 accepted history event, got %+v", events)
	}
}

func TestService_CreateValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name  string
		input CreateOrderInput
		want  error
	}{
		{"missing employee", CreateOrderInput{TableID: "table-1"}, domain.ErrEmployeeRequired},
		{"missing table", CreateOrderInput{EmployeeID: "employee-1"}, domain.ErrTableRequired},
		{"unknown employee", CreateOrderInput{EmployeeID: "ghost", TableID: "table-1"}, domain.ErrEmployeeNotFound},
		{"unknown table", CreateOrderInput{EmployeeID: "employee-1", TableID: "ghost"}, domain.ErrTableNotFound},
		{"unknown customer", CreateOrderInput{EmployeeID: "employee-1", TableID: "table-1", CustomerID: "ghost"}, domain.ErrCustomerNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Create(tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestService_GuestOrder(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Create(CreateOrderInput{
		EmployeeID: "employee-1",
		TableID:    "table-1",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if order.CustomerID != "" {
		t.Fatalf("guest order must have empty customer, got %q", order.CustomerID)
	}
}

func TestService_UpdateStatus(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Create(CreateOrderInput{EmployeeID: "employee-1", TableID: "table-1"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := f.svc.UpdateStatus(order.ID, domain.OrderStatusCooking, "")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != domain.OrderStatusCooking {
		t.Fatalf("expected cooking, got %s", updated.Status)
	}

	events, err := f.history.List(order.ID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 history events, got %d", len(events))
	}
}

func TestService_UpdateStatusInvalid(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Create(CreateOrderInput{EmployeeID: "employee-1", TableID: "table-1"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := f.svc.UpdateStatus(order.ID, "frozen", ""); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := f.svc.UpdateStatus("missing", domain.OrderStatusCooking, ""); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestService_UpdateStatusTerminal(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Create(CreateOrderInput{EmployeeID: "employee-1", TableID: "table-1"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := f.svc.UpdateStatus(order.ID, domain.OrderStatusCanceled, "гость ушёл"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	// Из конечного статуса заказ не выводится.
	if _, err := f.svc.UpdateStatus(order.ID, domain.OrderStatusCooking, ""); !errors.Is(err, domain.ErrStatusFinal) {
		t.Fatalf("expected ErrStatusFinal, got %v", err)
	}
}

func TestService_ListByStatus(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.Create(CreateOrderInput{EmployeeID: "employee-1", TableID: "table-1"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := f.svc.Create(CreateOrderInput{EmployeeID: "employee-1", TableID: "table-1"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := f.svc.UpdateStatus(first.ID, domain.OrderStatusCooking, ""); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	cooking, err := f.svc.List(domain.OrderStatusCooking, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(cooking) != 1 || cooking[0].ID != first.ID {
		t.Fatalf("unexpected list result: %+v", cooking)
	}

	if _, err := f.svc.List("frozen", 10); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestService_Details(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Create(CreateOrderInput{
		EmployeeID: "employee-1",
		TableID:    "table-1",
		CustomerID: "customer-1",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := f.orders.AppendLineItem(order.ID, domain.LineItem{
		ID:         "line-1",
		ItemID:     "dish-soup",
		Qty:        2,
		PriceMinor: 200,
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	details, err := f.svc.Details(order.ID)
	if err != nil {
		t.Fatalf("details failed: %v", err)
	}

	if details.Order.TotalMinor != 400 {
		t.Fatalf("expected total 400, got %d", details.Order.TotalMinor)
	}
	if details.ItemNames["dish-soup"] != "Суп дня" {
		t.Fatalf("expected resolved name, got %q", details.ItemNames["dish-soup"])
	}
	if details.CatalogDegraded {
		t.Fatal("catalog must not be degraded")
	}
	if details.Employee.ID != "employee-1" {
		t.Fatalf("expected employee, got %+v", details.Employee)
	}
	if details.Table.Number != 5 {
		t.Fatalf("expected table 5, got %+v", details.Table)
	}
	if details.Customer == nil || details.Customer.ID != "customer-1" {
		t.Fatalf("expected customer, got %+v", details.Customer)
	}
	if len(details.History) != 1 {
		t.Fatalf("expected 1 history event, got %d", len(details.History))
	}
}

func TestService_DetailsCatalogDegraded(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Create(CreateOrderInput{EmployeeID: "employee-1", TableID: "table-1"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := f.orders.AppendLineItem(order.ID, domain.LineItem{
		ID:         "line-1",
		ItemID:     "dish-soup",
		Qty:        1,
		PriceMinor: 200,
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	// Деградация каталога: заказ и суммы отдаются, названий нет.
	degraded := NewService(f.orders, f.customers, memory.NewStaffRepository(), f.history, failingResolver{}, nil, nil)

	details, err := degraded.Details(order.ID)
	if err != nil {
		t.Fatalf("details failed: %v", err)
	}
	if !details.CatalogDegraded {
		t.Fatal("expected degraded catalog flag")
	}
	if len(details.ItemNames) != 0 {
		t.Fatalf("expected no names, got %+v", details.ItemNames)
	}
	if details.Order.TotalMinor != 200 {
		t.Fatalf("expected total 200, got %d", details.Order.TotalMinor)
	}
}
