package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/overiq429/cafe-orders/internal/domain"
)

// menuRepositoryInMemory — простая in-memory реализация MenuRepository.
// Играет роль общей базы меню для локальной разработки и тестов.
type menuRepositoryInMemory struct {
	mu         sync.RWMutex
	dishes     map[string]domain.Dish
	categories map[string]domain.DishCategory
}

// NewMenuRepository возвращает in-memory репозиторий меню.
func NewMenuRepository() *menuRepositoryInMemory {
	return &menuRepositoryInMemory{
		dishes:     make(map[string]domain.Dish),
		categories: make(map[string]domain.DishCategory),
	}
}

// PutCategory сохраняет категорию меню (используется в тестах и при сидировании).
func (r *menuRepositoryInMemory) PutCategory(category domain.DishCategory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	r.categories[category.ID] = category
}

// LookupActiveItem возвращает снимок блюда, только если оно существует и активно.
func (r *menuRepositoryInMemory) LookupActiveItem(itemID string) (domain.ItemSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dish, ok := r.dishes[itemID]
	if !ok || !dish.Active {
		return domain.ItemSnapshot{}, domain.ErrItemUnavailable
	}
	return domain.ItemSnapshot{
		ItemID:     dish.ID,
		Name:       dish.Name,
		PriceMinor: dish.PriceMinor,
	}, nil
}

// ResolveNames возвращает карту id -> name; неизвестные ID пропускаются.
func (r *menuRepositoryInMemory) ResolveNames(ids []string) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]string, len(ids))
	for _, id := range ids {
		if dish, ok := r.dishes[id]; ok {
			result[id] = dish.Name
		}
	}
	return result, nil
}

// CreateDish сохраняет новое блюдо.
func (r *menuRepositoryInMemory) CreateDish(dish domain.Dish) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if dish.CreatedAt.IsZero() {
		dish.CreatedAt = time.Now().UTC()
	}
	if cat, ok := r.categories[dish.CategoryID]; ok {
		dish.CategoryName = cat.Name
	}
	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	r.dishes[dish.ID] = dish
	return nil
}

// GetDish возвращает блюдо (включая неактивное) или ErrDishNotFound.
func (r *menuRepositoryInMemory) GetDish(id string) (domain.Dish, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dish, ok := r.dishes[id]
	if !ok {
		return domain.Dish{}, domain.ErrDishNotFound
	}
	return dish, nil
}

// ListDishes возвращает активные блюда, опционально фильтруя по категории.
func (r *menuRepositoryInMemory) ListDishes(categoryID string) ([]domain.Dish, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Dish, 0, len(r.dishes))
	for _, dish := range r.dishes {
		if !dish.Active {
			continue
		}
		if categoryID != "" && dish.CategoryID != categoryID {
			continue
		}
		result = append(result, dish)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}

// UpdatePrice меняет базовую цену блюда; уже записанные позиции заказов не затрагиваются.
func (r *menuRepositoryInMemory) UpdatePrice(id string, priceMinor int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dish, ok := r.dishes[id]
	if !ok {
		return domain.ErrDishNotFound
	}
	dish.PriceMinor = priceMinor
	r.dishes[id] = dish
	return nil
}

// Deactivate выполняет логическое удаление: строка остаётся для старых заказов.
func (r *menuRepositoryInMemory) Deactivate(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dish, ok := r.dishes[id]
	if !ok {
		return domain.ErrDishNotFound
	}
	dish.Active = false
	r.dishes[id] = dish
	return nil
}

var _ domain.MenuRepository = (*menuRepositoryInMemory)(nil)
