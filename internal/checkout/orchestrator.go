// Package checkout drives the confirm-info, choose-payment, submit,
// route-to-outcome flow. Order creation is the only side-effecting
// call before payment: if it fails, nothing downstream has happened
// and the cart is left exactly as it was.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/afrolatino/storefront/internal/cart"
	"github.com/afrolatino/storefront/internal/domain"
	"github.com/afrolatino/storefront/internal/pricing"
	"github.com/afrolatino/storefront/internal/stock"
)

type State string

const (
	StateCollectingInfo       State = "COLLECTING_INFO"
	StateValidating           State = "VALIDATING"
	StateSubmitting           State = "SUBMITTING"
	StateRedirectingToPayment State = "REDIRECTING_TO_PAYMENT"
	StateConfirmed            State = "CONFIRMED"
)

// OrdersClient creates the order with the external order service.
type OrdersClient interface {
	CreateOrder(ctx context.Context, order *domain.Order, idempotencyKey string) (orderID string, err error)
}

// PaymentsClient obtains a hosted-payment redirect URL for an order.
type PaymentsClient interface {
	CheckoutSession(ctx context.Context, method domain.PaymentMethod, orderID string) (url string, err error)
}

// SettingsClient provides the delivery/payment knobs at submit time.
type SettingsClient interface {
	DeliverySettings(ctx context.Context) (pricing.Settings, error)
}

// Publisher receives an order-submitted event after successful order
// creation. Optional.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Request is one checkout attempt.
type Request struct {
	CartID        string               `json:"-"`
	DeliveryInfo  domain.DeliveryInfo  `json:"delivery_info"`
	PaymentType   domain.PaymentType   `json:"payment_type"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	DistanceKm    int                  `json:"-"`
}

// Outcome is where the buyer goes next. Exactly one of the two
// terminal states applies: Confirmed (pay on delivery, show the
// confirmation view) or RedirectingToPayment (full-page redirect to
// RedirectURL).
type Outcome struct {
	State         State                `json:"state"`
	OrderID       string               `json:"order_id"`
	PaymentType   domain.PaymentType   `json:"payment_type"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	RedirectURL   string               `json:"redirect_url,omitempty"`
	DeliveryFee   int64                `json:"delivery_fee"`
	Total         int64                `json:"total"`
}

// Orchestrator submits checkout attempts. A per-cart in-flight guard
// rejects double submission while an attempt is running.
type Orchestrator struct {
	carts      *cart.Store
	fees       pricing.Calculator
	orders     OrdersClient
	payments   PaymentsClient
	settings   SettingsClient
	reconciler *stock.Reconciler
	events     Publisher
	logger     *slog.Logger

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewOrchestrator wires the checkout flow. reconciler and events may
// be nil; stock is then judged from the cart's stored flags alone and
// no event is published.
func NewOrchestrator(carts *cart.Store, fees pricing.Calculator, orders OrdersClient, payments PaymentsClient, settings SettingsClient, reconciler *stock.Reconciler, events Publisher, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		carts:      carts,
		fees:       fees,
		orders:     orders,
		payments:   payments,
		settings:   settings,
		reconciler: reconciler,
		events:     events,
		logger:     logger,
		inFlight:   make(map[string]bool),
	}
}

func (o *Orchestrator) begin(cartID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight[cartID] {
		return ErrSubmissionInProgress
	}
	o.inFlight[cartID] = true
	return nil
}

func (o *Orchestrator) end(cartID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlight, cartID)
}

// Submit runs one checkout attempt end to end. On any error before
// order creation the cart is untouched and the caller lands back in
// the collecting-info state; the cart is cleared only after the order
// service has accepted the order.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (*Outcome, error) {
	if err := o.begin(req.CartID); err != nil {
		return nil, err
	}
	defer o.end(req.CartID)

	loaded, err := o.carts.Get(ctx, req.CartID)
	if err != nil {
		return nil, &SubmissionError{Err: fmt.Errorf("load cart: %w", err)}
	}
	if loaded.IsEmpty() {
		return nil, ErrEmptyCart
	}

	if missing := req.DeliveryInfo.MissingFields(); len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	settings, err := o.settings.DeliverySettings(ctx)
	if err != nil {
		return nil, &SubmissionError{Err: fmt.Errorf("fetch settings: %w", err)}
	}

	paymentType, method, err := resolvePayment(req, settings)
	if err != nil {
		return nil, err
	}

	if o.reconciler != nil {
		if _, err := o.reconciler.Refresh(ctx, loaded); err != nil {
			// A failed refresh falls back to the stored flags; the
			// validator below still runs.
			o.logger.Warn("stock refresh failed, using stored flags", "error", err, "cart_id", req.CartID)
		}
	}

	if result := stock.ValidateForCheckout(loaded); !result.OK {
		if result.Reason == stock.ReasonEmptyCart {
			return nil, ErrEmptyCart
		}
		return nil, &StockConflictError{Items: result.OffendingItems}
	}

	fee := o.fees.DeliveryFee(loaded.Subtotal(), req.DistanceKm, settings)
	order := domain.OrderFromCart(loaded, req.DeliveryInfo, paymentType, method, fee)

	idempotencyKey := uuid.New().String()
	orderID, err := o.orders.CreateOrder(ctx, order, idempotencyKey)
	if err != nil {
		o.logger.Error("order submission failed", "error", err, "cart_id", req.CartID)
		return nil, &SubmissionError{Err: err}
	}

	// Clearing is strictly gated on successful order creation. A
	// failure to clear is logged, not surfaced: the order exists.
	if _, err := o.carts.Clear(ctx, req.CartID); err != nil {
		o.logger.Error("failed to clear cart after order creation", "error", err, "cart_id", req.CartID, "order_id", orderID)
	}

	if o.events != nil {
		event := domain.OrderSubmittedEvent{
			OrderID:        orderID,
			CartID:         req.CartID,
			PaymentType:    paymentType,
			PaymentMethod:  method,
			Total:          order.Total,
			IdempotencyKey: idempotencyKey,
			Timestamp:      time.Now().UTC(),
		}
		if err := o.events.Publish(ctx, orderID, event); err != nil {
			o.logger.Error("failed to publish order submitted event", "error", err, "order_id", orderID)
		}
	}

	o.logger.Info("order submitted", "order_id", orderID, "cart_id", req.CartID, "payment_type", paymentType, "total", order.Total)

	outcome := &Outcome{
		OrderID:       orderID,
		PaymentType:   paymentType,
		PaymentMethod: method,
		DeliveryFee:   fee,
		Total:         order.Total,
	}

	if paymentType == domain.PaymentTypePayOnDelivery {
		outcome.State = StateConfirmed
		return outcome, nil
	}

	url, err := o.payments.CheckoutSession(ctx, method, orderID)
	if err != nil {
		// The order already exists server-side with no completed
		// payment. Hand the order id back so the caller can re-request
		// the session instead of re-submitting the order.
		o.logger.Error("payment session request failed", "error", err, "order_id", orderID)
		return nil, &PaymentRedirectError{OrderID: orderID, Err: err}
	}

	outcome.State = StateRedirectingToPayment
	outcome.RedirectURL = url
	return outcome, nil
}

// resolvePayment applies the payment gating rules: pay-now is only
// offered while online payments are enabled, pay-on-delivery always
// settles in cash, and a pay-now order must name a hosted method.
func resolvePayment(req Request, settings pricing.Settings) (domain.PaymentType, domain.PaymentMethod, error) {
	paymentType := req.PaymentType
	if paymentType == "" {
		paymentType = domain.PaymentTypePayNow
	}

	if !settings.OnlinePaymentsEnabled {
		paymentType = domain.PaymentTypePayOnDelivery
	}

	switch paymentType {
	case domain.PaymentTypePayOnDelivery:
		return paymentType, domain.PaymentMethodCash, nil
	case domain.PaymentTypePayNow:
		switch req.PaymentMethod {
		case domain.PaymentMethodCard, domain.PaymentMethodWallet:
			return paymentType, req.PaymentMethod, nil
		default:
			return "", "", &ValidationError{Missing: []string{"payment_method"}}
		}
	default:
		return "", "", &ValidationError{Missing: []string{"payment_type"}}
	}
}

func joinFields(fields []string) string {
	return strings.Join(fields, ", ")
}
