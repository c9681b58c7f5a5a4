package domain

// CatalogAccessor — единственная зависимость композитора от общей базы меню.
// Реализации создают собственный таймаут на операцию; истёкший таймаут
// неотличим от любого другого сбоя хранилища (ErrCatalogUnavailable).
type CatalogAccessor interface {
	// LookupActiveItem возвращает текущее название и цену блюда, но только
	// если блюдо существует И активно; иначе ErrItemUnavailable. Сбой
	// хранилища — ошибка, оборачивающая ErrCatalogUnavailable, и она
	// никогда не смешивается с отсутствием блюда.
	LookupActiveItem(itemID string) (ItemSnapshot, error)
}

// CatalogNameResolver разрешает названия блюд для отчётов по заказу.
type CatalogNameResolver interface {
	// ResolveNames возвращает карту id -> name для известных блюд;
	// неизвестные идентификаторы просто отсутствуют в результате.
	ResolveNames(ids []string) (map[string]string, error)
}

// MenuRepository описывает полный доступ к общей базе меню:
// узкий контракт композитора плюс административный CRUD.
type MenuRepository interface {
	CatalogAccessor
	CatalogNameResolver

	// CreateDish сохраняет новое блюдо.
	CreateDish(dish Dish) error
	// GetDish возвращает блюдо (включая неактивное) или ErrDishNotFound.
	GetDish(id string) (Dish, error)
	// ListDishes возвращает активные блюда, опционально по категории.
	ListDishes(categoryID string) ([]Dish, error)
	// UpdatePrice меняет базовую цену; уже записанные позиции не затрагиваются.
	UpdatePrice(id string, priceMinor int64) error
	// Deactivate выполняет логическое удаление (is_active=false).
	Deactivate(id string) error
}

// OrderRepository описывает требования к хранилищу заказов филиала.
type OrderRepository interface {
	// Create сохраняет новый заказ.
	Create(order Order) error
	// Get возвращает заказ с позициями или ErrOrderNotFound.
	Get(id string) (Order, error)
	// List возвращает заказы, опционально фильтруя по статусу.
	List(status OrderStatus, limit int) ([]Order, error)
	// UpdateStatus меняет статус заказа.
	UpdateStatus(id string, status OrderStatus) error
	// AppendLineItem вставляет неизменяемую позицию и пересчитывает сумму
	// заказа с нуля в ОДНОЙ локальной транзакции; возвращает новую сумму.
	// При сбое обе записи откатываются, ошибка оборачивает ErrWriteFailed.
	// price-at-time принимается как есть, без собственного похода в каталог.
	AppendLineItem(orderID string, item LineItem) (int64, error)
	// RecomputeTotal заново выводит сумму заказа из его позиций и
	// перезаписывает поле total. Идемпотентна.
	RecomputeTotal(orderID string) (int64, error)
}

// CustomerRepository — CRUD клиентов филиала.
type CustomerRepository interface {
	Create(customer Customer) error
	Get(id string) (Customer, error)
	// List возвращает клиентов, новые первыми.
	List() ([]Customer, error)
	UpdateLoyalty(id string, points int32) error
}

// StaffRepository — справочные чтения сотрудников и столиков.
type StaffRepository interface {
	GetEmployee(id string) (Employee, error)
	GetTable(id string) (Table, error)
}

// StatusHistoryRepository хранит историю статусов заказа.
type StatusHistoryRepository interface {
	Append(event StatusEvent) error
	List(orderID string) ([]StatusEvent, error)
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}
