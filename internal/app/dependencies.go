package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/overiq429/cafe-orders/internal/domain"
	"github.com/overiq429/cafe-orders/internal/storage/memory"
	"github.com/overiq429/cafe-orders/internal/storage/postgres"
)

// Dependencies содержит все зависимости приложения.
//
// Каталог и база точки продаж поднимаются независимо: у каждой свой DSN,
// и отказ одной не мешает подключиться ко второй.
type Dependencies struct {
	Menu      domain.MenuRepository
	Orders    domain.OrderRepository
	Customers domain.CustomerRepository
	Staff     domain.StaffRepository
	History   domain.StatusHistoryRepository
	Outbox    domain.OutboxRepository
	Logger    *log.Entry

	catalogStore *postgres.Store
	branchStore  *postgres.Store
}

// NewDependencies создаёт и инициализирует все зависимости приложения.
// Пустой DSN переключает соответствующее хранилище на in-memory режим
// с демо-данными — удобно для локального запуска без Postgres.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{Logger: logger}

	if cfg.CatalogDSN != "" {
		store, err := postgres.Open(ctx, cfg.CatalogDSN, postgres.SchemaCatalog)
		if err != nil {
			return nil, fmt.Errorf("catalog store: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("catalog migrations: %w", err)
		}
		deps.catalogStore = store
		deps.Menu = postgres.NewMenuRepository(store)
		logger.Info("каталог меню: postgres")
	} else {
		deps.Menu = seedDemoCatalog()
		logger.Info("каталог меню: in-memory (демо-данные)")
	}

	if cfg.BranchDSN != "" {
		store, err := postgres.Open(ctx, cfg.BranchDSN, postgres.SchemaBranch)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("branch store: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			deps.Close()
			return nil, fmt.Errorf("branch migrations: %w", err)
		}
		deps.branchStore = store
		deps.Orders = postgres.NewOrderRepository(store)
		deps.Customers = postgres.NewCustomerRepository(store)
		deps.Staff = postgres.NewStaffRepository(store)
		deps.History = postgres.NewStatusHistoryRepository(store)
		deps.Outbox = postgres.NewOutboxRepository(store)
		logger.Info("база точки продаж: postgres")
	} else {
		deps.Orders = memory.NewOrderRepository()
		deps.Customers = memory.NewCustomerRepository()
		deps.Staff = seedDemoStaff()
		deps.History = memory.NewStatusHistoryRepository()
		deps.Outbox = memory.NewOutboxRepository()
		logger.Info("база точки продаж: in-memory (демо-данные)")
	}

	return deps, nil
}

// CatalogStore возвращает postgres-хранилище каталога или nil в in-memory режиме.
func (d *Dependencies) CatalogStore() *postgres.Store { return d.catalogStore }

// BranchStore возвращает postgres-хранилище точки продаж или nil в in-memory режиме.
func (d *Dependencies) BranchStore() *postgres.Store { return d.branchStore }

// Close закрывает открытые подключения к базам.
func (d *Dependencies) Close() {
	if d.catalogStore != nil {
		if err := d.catalogStore.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close catalog store")
		}
		d.catalogStore = nil
	}
	if d.branchStore != nil {
		if err := d.branchStore.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close branch store")
		}
		d.branchStore = nil
	}
}

// seedDemoCatalog наполняет in-memory каталог минимальным меню,
// чтобы API было с чем работать сразу после запуска.
func seedDemoCatalog() domain.MenuRepository {
	repo := memory.NewMenuRepository()
	repo.PutCategory(domain.DishCategory{ID: "cat-soups", Name: "Супы"})
	repo.PutCategory(domain.DishCategory{ID: "cat-drinks", Name: "Напитки"})
	_ = repo.CreateDish(domain.Dish{
		ID:         "dish-soup",
		Name:       "Суп дня",
		CategoryID: "cat-soups",
		PriceMinor: 25000,
		Active:     true,
	})
	_ = repo.CreateDish(domain.Dish{
		ID:         "dish-tea",
		Name:       "Чай чёрный",
		CategoryID: "cat-drinks",
		PriceMinor: 9000,
		Active:     true,
	})
	return repo
}

// seedDemoStaff регистрирует дежурного официанта и один стол.
func seedDemoStaff() domain.StaffRepository {
	repo := memory.NewStaffRepository()
	repo.PutEmployee(domain.Employee{
		ID:        "employee-demo",
		FirstName: "Анна",
		LastName:  "Смирнова",
		Position:  "официант",
	})
	repo.PutTable(domain.Table{ID: "table-1", Number: 1, Seats: 4})
	return repo
}
