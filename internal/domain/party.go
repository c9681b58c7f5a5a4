package domain

import "time"

// Customer — клиент филиала. Справочные данные: ядро композиции их только читает.
type Customer struct {
	ID            string
	FirstName     string
	LastName      string
	Phone         string
	Email         string
	LoyaltyPoints int32
	RegisteredAt  time.Time
}

// Validate проверяет обязательные поля клиента.
func (c *Customer) Validate() []error {
	var errs []error
	if c.Phone == "" {
		errs = append(errs, ErrCustomerPhoneRequired)
	}
	return errs
}

// Employee — сотрудник филиала, принимающий заказы.
type Employee struct {
	ID        string
	FirstName string
	LastName  string
	Position  string
}

// Table — столик в зале филиала.
type Table struct {
	ID     string
	Number int32
	Seats  int32
}

// StatusEvent — запись в истории статусов заказа.
type StatusEvent struct {
	OrderID  string
	Status   OrderStatus
	Reason   string
	Occurred time.Time
}
