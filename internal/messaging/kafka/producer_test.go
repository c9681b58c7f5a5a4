package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"

	"github.com/overiq429/cafe-orders/internal/domain"
)

func TestProducer_PublishEvent(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	mockProducer.ExpectSendMessageAndSucceed()

	event := NewOrderEvent(
		EventTypeOrderItemAdded,
		"test-order-123",
		"accepted",
		map[string]interface{}{
			"item_id": "dish-1",
			"qty":     2,
		},
	)

	err := producer.PublishEvent(TopicOrderEvents, "test-order-123", event)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_Error(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	event := NewOrderEvent(EventTypeOrderCreated, "test-order-123", "accepted", nil)

	err := producer.PublishEvent(TopicOrderEvents, "test-order-123", event)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewOrderEvent(t *testing.T) {
	orderID := "order-123"
	metadata := map[string]interface{}{
		"item_id": "dish-1",
		"total":   40000,
	}

	event := NewOrderEvent(EventTypeOrderItemAdded, orderID, "accepted", metadata)

	if event.EventType != EventTypeOrderItemAdded {
		t.Errorf("expected event type %s, got %s", EventTypeOrderItemAdded, event.EventType)
	}
	if event.OrderID != orderID {
		t.Errorf("expected order id %s, got %s", orderID, event.OrderID)
	}
	if event.Status != "accepted" {
		t.Errorf("expected status accepted, got %s", event.Status)
	}
	if event.Metadata["item_id"] != "dish-1" {
		t.Error("metadata not set correctly")
	}
	if event.Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}
	if time.Since(event.Timestamp) > time.Second {
		t.Error("timestamp should be close to current time")
	}
}

func TestNewMenuEvent(t *testing.T) {
	event := NewMenuEvent(EventTypeMenuPriceChanged, "dish-1", map[string]interface{}{
		"price_minor": 25000,
	})

	if event.EventType != EventTypeMenuPriceChanged {
		t.Errorf("expected event type %s, got %s", EventTypeMenuPriceChanged, event.EventType)
	}
	if event.DishID != "dish-1" {
		t.Errorf("expected dish id dish-1, got %s", event.DishID)
	}
	if event.Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}
}

func TestOutboxPublisher_Publish(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var envelope struct {
			EventType string          `json:"event_type"`
			Payload   json.RawMessage `json:"payload"`
		}
		return json.Unmarshal(value, &envelope)
	})

	publisher := NewOutboxPublisher(producer, TopicOrderEvents)

	err := publisher.Publish(domain.OutboxMessage{
		ID:            "msg-1",
		AggregateType: "order",
		AggregateID:   "order-1",
		EventType:     string(EventTypeOrderItemAdded),
		Payload:       []byte(`{"order_id":"order-1","item_id":"dish-1"}`),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutboxPublisher_NotInitialized(t *testing.T) {
	publisher := &OutboxTopicPublisher{}

	if err := publisher.Publish(domain.OutboxMessage{ID: "msg-1"}); err == nil {
		t.Fatal("expected error for uninitialized publisher")
	}
}
