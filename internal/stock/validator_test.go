package stock

import (
	"testing"

	"github.com/afrolatino/storefront/internal/domain"
)

func boolPtr(b bool) *bool { return &b }

func TestValidateForCheckout(t *testing.T) {
	t.Run("empty cart is rejected", func(t *testing.T) {
		result := ValidateForCheckout(&domain.Cart{ID: "c1"})
		if result.OK {
			t.Fatal("expected validation to fail")
		}
		if result.Reason != ReasonEmptyCart {
			t.Errorf("expected reason %s, got %s", ReasonEmptyCart, result.Reason)
		}
	})

	t.Run("explicit out-of-stock item is rejected", func(t *testing.T) {
		cart := &domain.Cart{ID: "c1", Items: []domain.CartLineItem{
			{ProductID: "p1", Quantity: 1, InStock: boolPtr(false)},
		}}
		result := ValidateForCheckout(cart)
		if result.OK {
			t.Fatal("expected validation to fail")
		}
		if result.Reason != ReasonOutOfStock {
			t.Errorf("expected reason %s, got %s", ReasonOutOfStock, result.Reason)
		}
		if len(result.OffendingItems) != 1 || result.OffendingItems[0].ProductID != "p1" {
			t.Errorf("expected p1 in offending items, got %+v", result.OffendingItems)
		}
	})

	t.Run("in-stock item passes", func(t *testing.T) {
		cart := &domain.Cart{ID: "c1", Items: []domain.CartLineItem{
			{ProductID: "p1", Quantity: 1, InStock: boolPtr(true)},
		}}
		if result := ValidateForCheckout(cart); !result.OK {
			t.Fatalf("expected validation to pass, got reason %s", result.Reason)
		}
	})

	t.Run("absent stock flag means purchasable", func(t *testing.T) {
		cart := &domain.Cart{ID: "c1", Items: []domain.CartLineItem{
			{ProductID: "p1", Quantity: 1},
		}}
		if result := ValidateForCheckout(cart); !result.OK {
			t.Fatalf("expected validation to pass, got reason %s", result.Reason)
		}
	})

	t.Run("mixed cart reports only the offending items", func(t *testing.T) {
		cart := &domain.Cart{ID: "c1", Items: []domain.CartLineItem{
			{ProductID: "p1", Quantity: 1},
			{ProductID: "p2", Quantity: 2, InStock: boolPtr(false)},
			{ProductID: "p3", Quantity: 1, InStock: boolPtr(true)},
			{ProductID: "p4", Quantity: 1, InStock: boolPtr(false)},
		}}
		result := ValidateForCheckout(cart)
		if result.OK {
			t.Fatal("expected validation to fail")
		}
		if len(result.OffendingItems) != 2 {
			t.Fatalf("expected 2 offending items, got %d", len(result.OffendingItems))
		}
		if result.OffendingItems[0].ProductID != "p2" || result.OffendingItems[1].ProductID != "p4" {
			t.Errorf("unexpected offending items: %+v", result.OffendingItems)
		}
	})
}
