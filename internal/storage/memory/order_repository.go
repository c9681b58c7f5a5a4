package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/overiq429/cafe-orders/internal/domain"
)

// orderRepositoryInMemory — простая in-memory реализация OrderRepository.
type orderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Order
}

// NewOrderRepository возвращает in-memory репозиторий заказов для локальной
// разработки и тестов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		items: make(map[string]domain.Order),
	}
}

// Create сохраняет новый заказ.
func (r *orderRepositoryInMemory) Create(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Сохраняем копию с собственным срезом позиций, чтобы избежать
	// непредсказуемых мутаций извне.
	order.Items = append([]domain.LineItem(nil), order.Items...)
	r.items[order.ID] = order
	return nil
}

// Get возвращает заказ с позициями или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) Get(id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	order.Items = append([]domain.LineItem(nil), order.Items...)
	return order, nil
}

// List возвращает заказы, новые первыми, опционально фильтруя по статусу.
func (r *orderRepositoryInMemory) List(status domain.OrderStatus, limit int) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.items))
	for _, order := range r.items {
		if status != "" && order.Status != status {
			continue
		}
		order.Items = append([]domain.LineItem(nil), order.Items...)
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// UpdateStatus меняет статус заказа.
func (r *orderRepositoryInMemory) UpdateStatus(id string, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.items[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	r.items[id] = order
	return nil
}

// AppendLineItem вставляет позицию и пересчитывает сумму заказа под одной
// блокировкой: наблюдатели никогда не видят позицию без обновлённой суммы.
func (r *orderRepositoryInMemory) AppendLineItem(orderID string, item domain.LineItem) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.items[orderID]
	if !ok {
		return 0, domain.ErrOrderNotFound
	}

	order.Items = append(append([]domain.LineItem(nil), order.Items...), item)
	// Сумма всегда выводится из позиций заново, а не инкрементируется.
	order.TotalMinor = domain.SumLineItems(order.Items)
	order.UpdatedAt = time.Now().UTC()
	r.items[orderID] = order

	return order.TotalMinor, nil
}

// RecomputeTotal заново выводит сумму заказа из его позиций. Идемпотентна.
func (r *orderRepositoryInMemory) RecomputeTotal(orderID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.items[orderID]
	if !ok {
		return 0, domain.ErrOrderNotFound
	}

	order.TotalMinor = domain.SumLineItems(order.Items)
	order.UpdatedAt = time.Now().UTC()
	r.items[orderID] = order

	return order.TotalMinor, nil
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
