package checkout

import (
	"errors"
	"fmt"

	"github.com/afrolatino/storefront/internal/domain"
)

var (
	// ErrEmptyCart means checkout was reached with nothing to buy; the
	// caller sends the user back to the cart view.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrSubmissionInProgress rejects a second submit for the same cart
	// while the first is still running.
	ErrSubmissionInProgress = errors.New("submission already in progress")
)

// ValidationError lists required request fields that were missing.
// Recovered locally; never reaches the network layer.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + joinFields(e.Missing)
}

// StockConflictError means the cart holds items that are out of stock
// at checkout time. The user removes them and retries; there is no
// partial fulfillment.
type StockConflictError struct {
	Items []domain.CartLineItem
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("%d cart item(s) out of stock", len(e.Items))
}

// SubmissionError wraps a failed order-creation attempt. The cart is
// preserved so the user can retry without re-entering delivery info.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return "order submission failed: " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// PaymentRedirectError means the payment-session call failed AFTER the
// order was created. The order id is carried so the session can be
// re-requested for the existing order rather than creating a second
// one.
type PaymentRedirectError struct {
	OrderID string
	Err     error
}

func (e *PaymentRedirectError) Error() string {
	return fmt.Sprintf("payment redirect failed for order %s: %v", e.OrderID, e.Err)
}

func (e *PaymentRedirectError) Unwrap() error {
	return e.Err
}
