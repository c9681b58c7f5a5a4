package domain

import "errors"

var (
	// ErrInvalidQuantity — ошибка вызывающей стороны: количество <= 0.
	// Возвращается до обращения к любому из хранилищ.
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	// ErrItemUnavailable — блюдо не найдено или деактивировано.
	// Оба случая намеренно неразличимы: для композиции заказа они терминальны.
	ErrItemUnavailable = errors.New("menu item not found or inactive")
	// ErrCatalogUnavailable — общая база меню недоступна (сеть, таймаут, сбой запроса).
	// Повтор всей операции безопасен: записи не было.
	ErrCatalogUnavailable = errors.New("catalog store unavailable")
	// ErrWriteFailed — локальная запись позиции и пересчёт суммы откатились.
	// Повтор с шага чтения каталога безопасен: частичного состояния не осталось.
	ErrWriteFailed = errors.New("transactional store write failed")

	// ErrOrderNotFound возвращается, если заказ не найден в базе филиала.
	ErrOrderNotFound = errors.New("order not found")
	// ErrDishNotFound возвращается, если блюдо не найдено в общей базе.
	ErrDishNotFound = errors.New("dish not found")
	// ErrCustomerNotFound возвращается, если клиент не найден.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrEmployeeNotFound возвращается, если сотрудник не найден.
	ErrEmployeeNotFound = errors.New("employee not found")
	// ErrTableNotFound возвращается, если столик не найден.
	ErrTableNotFound = errors.New("table not found")

	// Ошибка неизвестного статуса заказа.
	ErrInvalidStatus = errors.New("unknown order status")
	// Ошибка смены статуса у завершённого или отменённого заказа.
	ErrStatusFinal = errors.New("order is in a final status")

	// Ошибка отсутствующего названия блюда.
	ErrDishNameRequired = errors.New("dish name is required")
	// Ошибка отрицательной цены блюда.
	ErrDishPriceNegative = errors.New("dish price must be non-negative")
	// Ошибка отсутствующего сотрудника при создании заказа.
	ErrEmployeeRequired = errors.New("employee_id is required")
	// Ошибка отсутствующего столика при создании заказа.
	ErrTableRequired = errors.New("table_id is required")
	// Ошибка отрицательной суммы заказа.
	ErrTotalNegative = errors.New("total_minor must be non-negative")
	// Ошибка несоответствия суммы заказа сумме его позиций.
	ErrTotalMismatch = errors.New("order total does not match line items sum")
	// Ошибка отсутствующего телефона клиента.
	ErrCustomerPhoneRequired = errors.New("customer phone is required")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsRetryable сообщает, безопасно ли повторить композицию заказа целиком.
// Повторяемы только инфраструктурные исходы: недоступный каталог и
// откатившаяся запись; ошибки вызывающей стороны повторять бессмысленно.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrCatalogUnavailable) || errors.Is(err, ErrWriteFailed)
}
