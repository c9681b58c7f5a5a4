package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/overiq429/cafe-orders/internal/domain"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"catalog unavailable", domain.ErrCatalogUnavailable, true},
		{"write failed", domain.ErrWriteFailed, true},
		{"wrapped write failed", fmt.Errorf("%w: insert line item: timeout", domain.ErrWriteFailed), true},
		{"item unavailable", domain.ErrItemUnavailable, false},
		{"invalid quantity", domain.ErrInvalidQuantity, false},
		{"order not found", domain.ErrOrderNotFound, false},
		{"unrelated", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := domain.IsRetryable(tc.err); got != tc.want {
				t.Fatalf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestDishValidate(t *testing.T) {
	dish := domain.Dish{Name: "Soup", PriceMinor: 200}
	if errs := dish.Validate(); len(errs) != 0 {
		t.Fatalf("expected valid dish, got %v", errs)
	}

	dish = domain.Dish{Name: "", PriceMinor: -1}
	errs := dish.Validate()
	if len(errs) != 2 {
		t.Fatalf("expected 2 validation errors, got %v", errs)
	}
}
