package memory

import (
	"sort"
	"sync"

	"github.com/overiq429/cafe-orders/internal/domain"
)

// historyRepositoryInMemory хранит историю статусов заказов в памяти.
type historyRepositoryInMemory struct {
	mu     sync.RWMutex
	events map[string][]domain.StatusEvent
}

// NewStatusHistoryRepository возвращает in-memory историю статусов.
func NewStatusHistoryRepository() domain.StatusHistoryRepository {
	return &historyRepositoryInMemory{
		events: make(map[string][]domain.StatusEvent),
	}
}

// Append добавляет запись в историю статусов заказа.
func (r *historyRepositoryInMemory) Append(event domain.StatusEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[event.OrderID] = append(r.events[event.OrderID], event)
	return nil
}

// List возвращает события заказа в хронологическом порядке.
func (r *historyRepositoryInMemory) List(orderID string) ([]domain.StatusEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := append([]domain.StatusEvent(nil), r.events[orderID]...)
	sort.Slice(result, func(i, j int) bool {
		return result[i].Occurred.Before(result[j].Occurred)
	})
	return result, nil
}

var _ domain.StatusHistoryRepository = (*historyRepositoryInMemory)(nil)
