package domain

import "time"

// OrderStatus описывает жизненный цикл заказа в филиале.
type OrderStatus string

const (
	// OrderStatusAccepted — заказ принят официантом, позиции ещё добавляются.
	OrderStatusAccepted OrderStatus = "accepted"
	// OrderStatusCooking — кухня приняла заказ в работу.
	OrderStatusCooking OrderStatus = "cooking"
	// OrderStatusReady — заказ готов к подаче.
	OrderStatusReady OrderStatus = "ready"
	// OrderStatusCompleted — заказ закрыт и оплачен.
	OrderStatusCompleted OrderStatus = "completed"
	// OrderStatusCanceled — заказ отменён до завершения.
	OrderStatusCanceled OrderStatus = "canceled"
)

// Valid сообщает, входит ли статус в допустимый набор.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusAccepted, OrderStatusCooking, OrderStatusReady,
		OrderStatusCompleted, OrderStatusCanceled:
		return true
	}
	return false
}

// Terminal сообщает, является ли статус конечным.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCanceled
}

// LineItem представляет одну позицию заказа.
// Позиции append-only: после вставки строка не изменяется и не удаляется;
// исправление оформляется новой позицией.
type LineItem struct {
	ID string
	// ItemID — идентификатор блюда в общей базе меню.
	ItemID string
	// Qty — количество единиц блюда, строго положительное.
	Qty int32
	// PriceMinor — цена за единицу, зафиксированная в момент вставки
	// (price-at-time). Последующие изменения цены в каталоге её не трогают.
	PriceMinor int64
	// CreatedAt фиксирует момент добавления позиции в заказ.
	CreatedAt time.Time
}

// Order агрегирует состояние заказа филиала и его позиции.
type Order struct {
	ID         string
	EmployeeID string
	TableID    string
	// CustomerID пуст для гостевого заказа.
	CustomerID string
	Status     OrderStatus
	// TotalMinor — производная сумма: всегда пересчитывается из позиций,
	// никогда не задаётся вызывающей стороной напрямую.
	TotalMinor int64
	Items      []LineItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SumLineItems возвращает сумму qty * price-at-time по всем позициям.
func SumLineItems(items []LineItem) int64 {
	var total int64
	for _, item := range items {
		total += int64(item.Qty) * item.PriceMinor
	}
	return total
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.EmployeeID == "" {
		errs = append(errs, ErrEmployeeRequired)
	}
	if o.TableID == "" {
		errs = append(errs, ErrTableRequired)
	}
	if !o.Status.Valid() {
		errs = append(errs, ErrInvalidStatus)
	}
	if o.TotalMinor < 0 {
		errs = append(errs, ErrTotalNegative)
	}

	for _, item := range o.Items {
		if item.Qty <= 0 {
			errs = append(errs, ErrInvalidQuantity)
		}
		if item.PriceMinor < 0 {
			errs = append(errs, ErrDishPriceNegative)
		}
	}
	// Сумма заказа обязана совпадать с суммой позиций.
	if SumLineItems(o.Items) != o.TotalMinor {
		errs = append(errs, ErrTotalMismatch)
	}

	return errs
}
