// Package stock decides whether a cart may proceed to checkout.
package stock

import "github.com/afrolatino/storefront/internal/domain"

type Reason string

const (
	ReasonEmptyCart  Reason = "EMPTY_CART"
	ReasonOutOfStock Reason = "HAS_OUT_OF_STOCK_ITEMS"
)

// Result is the verdict of a checkout-readiness check.
type Result struct {
	OK             bool                  `json:"ok"`
	Reason         Reason                `json:"reason,omitempty"`
	OffendingItems []domain.CartLineItem `json:"offending_items,omitempty"`
}

// ValidateForCheckout gates the transition from cart to checkout. The
// same predicate runs when the user leaves the cart view and again
// immediately before order submission, so a cart gone stale in another
// tab is still caught. Items with no stock flag count as purchasable.
func ValidateForCheckout(cart *domain.Cart) Result {
	if cart.IsEmpty() {
		return Result{Reason: ReasonEmptyCart}
	}

	var offending []domain.CartLineItem
	for _, li := range cart.Items {
		if !li.Purchasable() {
			offending = append(offending, li)
		}
	}
	if len(offending) > 0 {
		return Result{Reason: ReasonOutOfStock, OffendingItems: offending}
	}

	return Result{OK: true}
}
