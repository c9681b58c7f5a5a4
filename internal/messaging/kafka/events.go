package kafka

import "time"

// EventType определяет тип события.
type EventType string

const (
	// События заказа
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderItemAdded     EventType = "order.item_added"
	EventTypeOrderStatusChanged EventType = "order.status_changed"

	// События меню
	EventTypeMenuPriceChanged    EventType = "menu.price_changed"
	EventTypeMenuDishDeactivated EventType = "menu.dish_deactivated"
)

// Topics для Kafka.
const (
	TopicOrderEvents     = "cafe.order.events"
	TopicMenuEvents      = "cafe.menu.events"
	TopicDeadLetterQueue = "cafe.dlq" // Dead Letter Queue для failed messages
)

// Kafka headers для retry логики.
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// OrderEvent представляет событие заказа.
type OrderEvent struct {
	EventType EventType              `json:"event_type"`
	OrderID   string                 `json:"order_id"`
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// MenuEvent представляет событие общей базы меню.
type MenuEvent struct {
	EventType EventType              `json:"event_type"`
	DishID    string                 `json:"dish_id"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewOrderEvent создает новое событие заказа.
func NewOrderEvent(eventType EventType, orderID, status string, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType: eventType,
		OrderID:   orderID,
		Status:    status,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}

// NewMenuEvent создает новое событие меню.
func NewMenuEvent(eventType EventType, dishID string, metadata map[string]interface{}) *MenuEvent {
	return &MenuEvent{
		EventType: eventType,
		DishID:    dishID,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}
