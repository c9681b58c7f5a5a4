package composer

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/overiq429/cafe-orders/internal/domain"
	"github.com/overiq429/cafe-orders/internal/messaging/kafka"
	"github.com/overiq429/cafe-orders/internal/metrics"
)

// Composer добавляет позиции в заказ, сводя два хранилища:
// общую базу меню (только чтение) и базу филиала (запись).
// Распределённой транзакции между ними нет: каталог читается один раз,
// снимок фиксируется, дальше операция работает только с базой филиала.
type Composer interface {
	// AddItemToOrder проверяет количество, читает снимок блюда из каталога
	// и атомарно дописывает позицию с пересчётом суммы заказа.
	AddItemToOrder(orderID, itemID string, qty int32) (AddItemResult, error)
}

// AddItemResult — результат успешного добавления позиции.
type AddItemResult struct {
	Item domain.LineItem
	// ItemName — название блюда на момент добавления, для чека и логов.
	ItemName string
	// NewTotalMinor — сумма заказа после пересчёта.
	NewTotalMinor int64
}

type composer struct {
	catalog domain.CatalogAccessor
	orders  domain.OrderRepository
	outbox  domain.OutboxRepository
	logger  *log.Entry
	metrics *metrics.ComposerMetrics
}

// New создаёт рабочий экземпляр композитора.
func New(
	catalog domain.CatalogAccessor,
	orders domain.OrderRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) Composer {
	if logger == nil {
		logger = log.New().WithField("component", "composer")
	}
	return &composer{
		catalog: catalog,
		orders:  orders,
		outbox:  outbox,
		logger:  logger,
		metrics: metrics.NewComposerMetrics(),
	}
}

// NewWithoutMetrics создаёт композитор без метрик (для тестов).
func NewWithoutMetrics(
	catalog domain.CatalogAccessor,
	orders domain.OrderRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) Composer {
	if logger == nil {
		logger = log.New().WithField("component", "composer")
	}
	return &composer{
		catalog: catalog,
		orders:  orders,
		outbox:  outbox,
		logger:  logger,
		metrics: nil,
	}
}

// AddItemToOrder реализует последовательность: валидация → чтение каталога →
// локальная запись. До локальной записи состояние нигде не меняется, поэтому
// любой отказ до неё оставляет заказ нетронутым.
func (c *composer) AddItemToOrder(orderID, itemID string, qty int32) (AddItemResult, error) {
	start := time.Now()
	if c.metrics != nil {
		c.metrics.RecordComposeStarted()
	}
	defer func() {
		if c.metrics != nil {
			c.metrics.RecordComposeDuration(time.Since(start))
			c.metrics.RecordComposeFinished()
		}
	}()

	// Количество проверяется до любого обращения к хранилищам.
	if qty <= 0 {
		if c.metrics != nil {
			c.metrics.RecordComposeRejected()
		}
		return AddItemResult{}, fmt.Errorf("%w: got %d", domain.ErrInvalidQuantity, qty)
	}

	lookupStart := time.Now()
	snapshot, err := c.catalog.LookupActiveItem(itemID)
	if c.metrics != nil {
		c.metrics.RecordStepDuration("lookup", time.Since(lookupStart))
	}
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrItemUnavailable):
			if c.metrics != nil {
				c.metrics.RecordComposeRejected()
			}
			c.logger.WithFields(log.Fields{
				"order_id": orderID,
				"item_id":  itemID,
			}).Info("item rejected: not found or inactive")
		case errors.Is(err, domain.ErrCatalogUnavailable):
			if c.metrics != nil {
				c.metrics.RecordComposeFailed()
			}
			c.logger.WithError(err).WithFields(log.Fields{
				"order_id": orderID,
				"item_id":  itemID,
			}).Warn("catalog lookup failed")
		default:
			// Каталожный доступ обязан возвращать одну из двух ошибок выше;
			// всё прочее трактуем как недоступность каталога.
			if c.metrics != nil {
				c.metrics.RecordComposeFailed()
			}
			err = fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
		}
		return AddItemResult{}, err
	}

	item := domain.LineItem{
		ID:     uuid.NewString(),
		ItemID: snapshot.ItemID,
		Qty:    qty,
		// Цена фиксируется из снимка: дальнейшие изменения каталога
		// эту позицию не затрагивают.
		PriceMinor: snapshot.PriceMinor,
		CreatedAt:  time.Now().UTC(),
	}

	appendStart := time.Now()
	newTotal, err := c.orders.AppendLineItem(orderID, item)
	if c.metrics != nil {
		c.metrics.RecordStepDuration("append", time.Since(appendStart))
	}
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordComposeFailed()
		}
		if errors.Is(err, domain.ErrOrderNotFound) {
			c.logger.WithField("order_id", orderID).Info("append rejected: order not found")
			return AddItemResult{}, err
		}
		if !errors.Is(err, domain.ErrWriteFailed) {
			err = fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
		}
		c.logger.WithError(err).WithFields(log.Fields{
			"order_id": orderID,
			"item_id":  itemID,
		}).Error("append line item failed")
		return AddItemResult{}, err
	}

	c.emitItemAdded(orderID, item, snapshot.Name, newTotal)

	if c.metrics != nil {
		c.metrics.RecordComposeSucceeded()
	}
	c.logger.WithFields(log.Fields{
		"order_id":    orderID,
		"item_id":     itemID,
		"qty":         qty,
		"price_minor": item.PriceMinor,
		"total_minor": newTotal,
	}).Info("line item added")

	return AddItemResult{
		Item:          item,
		ItemName:      snapshot.Name,
		NewTotalMinor: newTotal,
	}, nil
}

// emitItemAdded ставит событие в outbox. Сбой постановки не откатывает
// уже записанную позицию: событие потеряется, заказ — нет.
func (c *composer) emitItemAdded(orderID string, item domain.LineItem, itemName string, newTotal int64) {
	if c.outbox == nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"order_id":    orderID,
		"line_id":     item.ID,
		"item_id":     item.ItemID,
		"item_name":   itemName,
		"qty":         item.Qty,
		"price_minor": item.PriceMinor,
		"total_minor": newTotal,
		"ts":          item.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		c.logger.WithError(err).WithField("order_id", orderID).Error("marshal item_added event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   orderID,
		EventType:     string(kafka.EventTypeOrderItemAdded),
		Payload:       payload,
	}
	if _, err := c.outbox.Enqueue(msg); err != nil {
		c.logger.WithError(err).WithField("order_id", orderID).Error("enqueue item_added event failed")
	} else if c.metrics != nil {
		c.metrics.RecordOutboxEvent()
	}
}

var _ Composer = (*composer)(nil)
