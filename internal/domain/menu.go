package domain

import "time"

// DishCategory — справочник категорий меню в общей базе.
type DishCategory struct {
	ID   string
	Name string
}

// Dish описывает блюдо в общей базе меню.
// Удаление блюда всегда логическое: is_active=false, строка остаётся,
// чтобы старые заказы могли разрешать исторические названия.
type Dish struct {
	ID          string
	Name        string
	Description string
	// PriceMinor — базовая цена в минимальных денежных единицах (копейки).
	PriceMinor int64
	CategoryID string
	// CategoryName заполняется при чтении join-ом со справочником категорий.
	CategoryName string
	Active       bool
	CreatedAt    time.Time
}

// Validate проверяет базовые инварианты блюда и возвращает список замечаний.
func (d *Dish) Validate() []error {
	var errs []error
	if d.Name == "" {
		errs = append(errs, ErrDishNameRequired)
	}
	if d.PriceMinor < 0 {
		errs = append(errs, ErrDishPriceNegative)
	}
	return errs
}

// ItemSnapshot — мгновенный снимок блюда, прочитанный композитором перед записью.
// Цена из снимка становится price-at-time позиции и дальше не отслеживает каталог.
type ItemSnapshot struct {
	ItemID     string
	Name       string
	PriceMinor int64
}
