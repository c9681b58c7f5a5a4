package orders

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/overiq429/cafe-orders/internal/domain"
	"github.com/overiq429/cafe-orders/internal/messaging/kafka"
)

// CreateOrderInput — данные нового заказа от вызывающей стороны.
type CreateOrderInput struct {
	EmployeeID string
	TableID    string
	// CustomerID пуст для гостевого заказа.
	CustomerID string
}

// Details — заказ вместе со справочными данными для отчёта.
type Details struct {
	Order domain.Order
	// ItemNames — карта item_id -> название из каталога. При недоступном
	// каталоге карта пуста, а CatalogDegraded выставлен: заказ и суммы
	// филиал отдаёт всегда, названия — по возможности.
	ItemNames       map[string]string
	CatalogDegraded bool
	Employee        domain.Employee
	Table           domain.Table
	Customer        *domain.Customer
	History         []domain.StatusEvent
}

// Service управляет жизненным циклом заказов филиала.
type Service struct {
	orders    domain.OrderRepository
	customers domain.CustomerRepository
	staff     domain.StaffRepository
	history   domain.StatusHistoryRepository
	resolver  domain.CatalogNameResolver
	outbox    domain.OutboxRepository
	logger    *log.Entry
}

// NewService создаёт сервис заказов.
func NewService(
	orders domain.OrderRepository,
	customers domain.CustomerRepository,
	staff domain.StaffRepository,
	history domain.StatusHistoryRepository,
	resolver domain.CatalogNameResolver,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "orders")
	}
	return &Service{
		orders:    orders,
		customers: customers,
		staff:     staff,
		history:   history,
		resolver:  resolver,
		outbox:    outbox,
		logger:    logger,
	}
}

// Create проверяет справочные ссылки и сохраняет пустой заказ в статусе accepted.
func (s *Service) Create(input CreateOrderInput) (domain.Order, error) {
	if input.EmployeeID == "" {
		return domain.Order{}, domain.ErrEmployeeRequired
	}
	if input.TableID == "" {
		return domain.Order{}, domain.ErrTableRequired
	}

	if _, err := s.staff.GetEmployee(input.EmployeeID); err != nil {
		return domain.Order{}, err
	}
	if _, err := s.staff.GetTable(input.TableID); err != nil {
		return domain.Order{}, err
	}
	if input.CustomerID != "" {
		if _, err := s.customers.Get(input.CustomerID); err != nil {
			return domain.Order{}, err
		}
	}

	now := time.Now().UTC()
	order := domain.Order{
		ID:         uuid.NewString(),
		EmployeeID: input.EmployeeID,
		TableID:    input.TableID,
		CustomerID: input.CustomerID,
		Status:     domain.OrderStatusAccepted,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.orders.Create(order); err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	s.appendHistory(order.ID, order.Status, "order created", now)
	s.emitEvent(order.ID, kafka.EventTypeOrderCreated, map[string]interface{}{
		"employee_id": order.EmployeeID,
		"table_id":    order.TableID,
		"customer_id": order.CustomerID,
		"status":      string(order.Status),
		"ts":          now.Format(time.RFC3339Nano),
	})

	s.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"employee_id": order.EmployeeID,
		"table_id":    order.TableID,
	}).Info("order created")

	return order, nil
}

// List возвращает заказы, опционально фильтруя по статусу.
func (s *Service) List(status domain.OrderStatus, limit int) ([]domain.Order, error) {
	if status != "" && !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	return s.orders.List(status, limit)
}

// UpdateStatus переводит заказ в новый статус.
// Из конечного статуса заказ не выводится.
func (s *Service) UpdateStatus(orderID string, status domain.OrderStatus, reason string) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, domain.ErrInvalidStatus
	}

	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.Status.Terminal() {
		return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrStatusFinal, order.Status)
	}
	if order.Status == status {
		return order, nil
	}

	if err := s.orders.UpdateStatus(orderID, status); err != nil {
		return domain.Order{}, err
	}

	now := time.Now().UTC()
	order.Status = status
	order.UpdatedAt = now

	s.appendHistory(orderID, status, reason, now)
	payload := map[string]interface{}{
		"status": string(status),
		"ts":     now.Format(time.RFC3339Nano),
	}
	if reason != "" {
		payload["reason"] = reason
	}
	s.emitEvent(orderID, kafka.EventTypeOrderStatusChanged, payload)

	s.logger.WithFields(log.Fields{
		"order_id": orderID,
		"status":   status,
	}).Info("order status changed")

	return order, nil
}

// Get возвращает заказ с позициями.
func (s *Service) Get(orderID string) (domain.Order, error) {
	return s.orders.Get(orderID)
}

// Details собирает заказ со справочными данными из обоих хранилищ.
// Сбой каталога деградирует только названия блюд, не весь запрос.
func (s *Service) Details(orderID string) (Details, error) {
	order, err := s.orders.Get(orderID)
	if err != nil {
		return Details{}, err
	}

	details := Details{
		Order:     order,
		ItemNames: map[string]string{},
	}

	if s.resolver != nil && len(order.Items) > 0 {
		ids := make([]string, 0, len(order.Items))
		seen := make(map[string]struct{}, len(order.Items))
		for _, item := range order.Items {
			if _, ok := seen[item.ItemID]; ok {
				continue
			}
			seen[item.ItemID] = struct{}{}
			ids = append(ids, item.ItemID)
		}

		names, err := s.resolver.ResolveNames(ids)
		if err != nil {
			details.CatalogDegraded = true
			s.logger.WithError(err).WithField("order_id", orderID).Warn("resolve item names failed")
		} else {
			details.ItemNames = names
		}
	}

	if employee, err := s.staff.GetEmployee(order.EmployeeID); err == nil {
		details.Employee = employee
	}
	if table, err := s.staff.GetTable(order.TableID); err == nil {
		details.Table = table
	}
	if order.CustomerID != "" {
		if customer, err := s.customers.Get(order.CustomerID); err == nil {
			details.Customer = &customer
		} else if !errors.Is(err, domain.ErrCustomerNotFound) {
			s.logger.WithError(err).WithField("order_id", orderID).Warn("load customer failed")
		}
	}

	if s.history != nil {
		events, err := s.history.List(orderID)
		if err != nil {
			s.logger.WithError(err).WithField("order_id", orderID).Warn("load status history failed")
		} else {
			details.History = events
		}
	}

	return details, nil
}

func (s *Service) appendHistory(orderID string, status domain.OrderStatus, reason string, occurred time.Time) {
	if s.history == nil {
		return
	}
	event := domain.StatusEvent{
		OrderID:  orderID,
		Status:   status,
		Reason:   reason,
		Occurred: occurred,
	}
	if err := s.history.Append(event); err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Warn("append status history failed")
	}
}

func (s *Service) emitEvent(orderID string, eventType kafka.EventType, payload map[string]interface{}) {
	if s.outbox == nil {
		return
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}
	payload["order_id"] = orderID

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": orderID,
			"event":    eventType,
		}).Error("marshal event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   orderID,
		EventType:     string(eventType),
		Payload:       data,
	}
	if _, err := s.outbox.Enqueue(msg); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": orderID,
			"event":    eventType,
		}).Error("enqueue event failed")
	}
}
