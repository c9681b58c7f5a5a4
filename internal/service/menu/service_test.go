package menu

import (
	"errors"
	"testing"

	"github.com/overiq429/cafe-orders/internal/domain"
	"github.com/overiq429/cafe-orders/internal/storage/memory"
)

func TestService_CreateDish(t *testing.T) {
	svc := NewService(memory.NewMenuRepository(), nil, nil)

	dish, err := svc.CreateDish(CreateDishInput{
		Name:       "Суп дня",
		PriceMinor: 20000,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if dish.ID == "" {
		t.Fatal("expected generated dish id")
	}
	if !dish.Active {
		t.Fatal("new dish must be active")
	}

	stored, err := svc.GetDish(dish.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Name != "Суп дня" {
		t.Fatalf("unexpected name %q", stored.Name)
	}
}

func TestService_CreateDishValidation(t *testing.T) {
	svc := NewService(memory.NewMenuRepository(), nil, nil)

	_, err := svc.CreateDish(CreateDishInput{PriceMinor: -1})
	if !errors.Is(err, domain.ErrDishNameRequired) {
		t.Fatalf("expected ErrDishNameRequired, got %v", err)
	}
	if !errors.Is(err, domain.ErrDishPriceNegative) {
		t.Fatalf("expected ErrDishPriceNegative, got %v", err)
	}
}

func TestService_UpdatePrice(t *testing.T) {
	repo := memory.NewMenuRepository()
	svc := NewService(repo, nil, nil)

	dish, err := svc.CreateDish(CreateDishInput{Name: "Борщ", PriceMinor: 25000})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.UpdatePrice(dish.ID, 30000); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	snap, err := repo.LookupActiveItem(dish.ID)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if snap.PriceMinor != 30000 {
		t.Fatalf("expected price 30000, got %d", snap.PriceMinor)
	}

	if err := svc.UpdatePrice(dish.ID, -5); !errors.Is(err, domain.ErrDishPriceNegative) {
		t.Fatalf("expected ErrDishPriceNegative, got %v", err)
	}
	if err := svc.UpdatePrice("missing", 100); !errors.Is(err, domain.ErrDishNotFound) {
		t.Fatalf("expected ErrDishNotFound, got %v", err)
	}
}

func TestService_Deactivate(t *testing.T) {
	repo := memory.NewMenuRepository()
	svc := NewService(repo, nil, nil)

	dish, err := svc.CreateDish(CreateDishInput{Name: "Компот", PriceMinor: 8000})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.Deactivate(dish.ID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	// Логическое удаление: блюдо читается, но снять его в заказ нельзя.
	stored, err := svc.GetDish(dish.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Active {
		t.Fatal("expected inactive dish")
	}
	if _, err := repo.LookupActiveItem(dish.ID); !errors.Is(err, domain.ErrItemUnavailable) {
		t.Fatalf("expected ErrItemUnavailable, got %v", err)
	}

	if err := svc.Deactivate("missing"); !errors.Is(err, domain.ErrDishNotFound) {
		t.Fatalf("expected ErrDishNotFound, got %v", err)
	}
}
