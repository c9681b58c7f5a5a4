package menu

import (
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/overiq429/cafe-orders/internal/domain"
	"github.com/overiq429/cafe-orders/internal/messaging/kafka"
)

// CreateDishInput — данные нового блюда.
type CreateDishInput struct {
	Name        string
	Description string
	PriceMinor  int64
	CategoryID  string
}

// Service управляет общей базой меню: CRUD блюд и уведомления об изменениях.
// Изменения каталога никогда не трогают уже записанные позиции заказов.
type Service struct {
	repo domain.MenuRepository
	// producer опционален: без Kafka изменения меню просто не анонсируются.
	producer *kafka.Producer
	logger   *log.Entry
}

// NewService создаёт сервис меню.
func NewService(repo domain.MenuRepository, producer *kafka.Producer, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "menu")
	}
	return &Service{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreateDish валидирует и сохраняет новое блюдо.
func (s *Service) CreateDish(input CreateDishInput) (domain.Dish, error) {
	dish := domain.Dish{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		PriceMinor:  input.PriceMinor,
		CategoryID:  input.CategoryID,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}

	if errs := dish.Validate(); len(errs) > 0 {
		return domain.Dish{}, errors.Join(errs...)
	}

	if err := s.repo.CreateDish(dish); err != nil {
		return domain.Dish{}, err
	}

	s.logger.WithFields(log.Fields{
		"dish_id":     dish.ID,
		"name":        dish.Name,
		"price_minor": dish.PriceMinor,
	}).Info("dish created")

	return dish, nil
}

// GetDish возвращает блюдо, включая деактивированное.
func (s *Service) GetDish(id string) (domain.Dish, error) {
	return s.repo.GetDish(id)
}

// ListDishes возвращает активные блюда, опционально по категории.
func (s *Service) ListDishes(categoryID string) ([]domain.Dish, error) {
	return s.repo.ListDishes(categoryID)
}

// UpdatePrice меняет базовую цену блюда. Записанные позиции заказов
// хранят price-at-time и не пересчитываются.
func (s *Service) UpdatePrice(id string, priceMinor int64) error {
	if priceMinor < 0 {
		return domain.ErrDishPriceNegative
	}

	if err := s.repo.UpdatePrice(id, priceMinor); err != nil {
		return err
	}

	s.publishMenuEvent(kafka.EventTypeMenuPriceChanged, id, map[string]interface{}{
		"price_minor": priceMinor,
	})

	s.logger.WithFields(log.Fields{
		"dish_id":     id,
		"price_minor": priceMinor,
	}).Info("dish price updated")

	return nil
}

// Deactivate логически удаляет блюдо. Строка остаётся для исторических заказов.
func (s *Service) Deactivate(id string) error {
	if err := s.repo.Deactivate(id); err != nil {
		return err
	}

	s.publishMenuEvent(kafka.EventTypeMenuDishDeactivated, id, nil)

	s.logger.WithField("dish_id", id).Info("dish deactivated")
	return nil
}

// publishMenuEvent анонсирует изменение каталога. Каталог — отдельное
// хранилище без outbox филиала, поэтому публикация прямая и best-effort.
func (s *Service) publishMenuEvent(eventType kafka.EventType, dishID string, metadata map[string]interface{}) {
	if s.producer == nil {
		return
	}

	event := kafka.NewMenuEvent(eventType, dishID, metadata)
	if err := s.producer.PublishEvent(kafka.TopicMenuEvents, dishID, event); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"event_type": eventType,
			"dish_id":    dishID,
		}).Warn("failed to publish menu event to kafka")
	}
}
