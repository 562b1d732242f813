// Package worker consumes storefront events and turns them into
// business metrics: order volume and revenue by payment type, cart
// activity by operation, and a count of pay-now orders that may need a
// payment-session retry.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/afrolatino/storefront/internal/domain"
)

type MetricsHandler struct {
	logger *slog.Logger

	ordersSubmitted metric.Int64Counter
	orderRevenue    metric.Int64Counter
	cartChanges     metric.Int64Counter
}

func NewMetricsHandler(logger *slog.Logger) (*MetricsHandler, error) {
	meter := otel.Meter("storefront/worker")

	ordersSubmitted, err := meter.Int64Counter("storefront.orders.submitted",
		metric.WithDescription("Orders accepted by the order service"))
	if err != nil {
		return nil, err
	}

	orderRevenue, err := meter.Int64Counter("storefront.orders.revenue_cents",
		metric.WithDescription("Order totals in cents, including delivery fees"))
	if err != nil {
		return nil, err
	}

	cartChanges, err := meter.Int64Counter("storefront.cart.changes",
		metric.WithDescription("Persisted cart mutations"))
	if err != nil {
		return nil, err
	}

	return &MetricsHandler{
		logger:          logger,
		ordersSubmitted: ordersSubmitted,
		orderRevenue:    orderRevenue,
		cartChanges:     cartChanges,
	}, nil
}

// HandleOrderSubmitted processes one order.submitted payload.
func (h *MetricsHandler) HandleOrderSubmitted(ctx context.Context, payload []byte) error {
	var event domain.OrderSubmittedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order submitted event: %w", err)
	}

	attrs := metric.WithAttributes(
		attribute.String("payment_type", string(event.PaymentType)),
		attribute.String("payment_method", string(event.PaymentMethod)),
	)
	h.ordersSubmitted.Add(ctx, 1, attrs)
	h.orderRevenue.Add(ctx, event.Total, attrs)

	// Pay-now orders are only paid once the buyer completes the hosted
	// redirect; surface them here so abandoned ones can be reconciled
	// by re-requesting a session for the order id.
	if event.PaymentType == domain.PaymentTypePayNow {
		h.logger.Info("pay-now order awaiting hosted payment",
			"order_id", event.OrderID, "payment_method", event.PaymentMethod, "total", event.Total)
	} else {
		h.logger.Info("pay-on-delivery order confirmed", "order_id", event.OrderID, "total", event.Total)
	}

	return nil
}

// HandleCartChanged processes one cart.changed payload.
func (h *MetricsHandler) HandleCartChanged(ctx context.Context, payload []byte) error {
	var event domain.CartChangedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal cart changed event: %w", err)
	}

	h.cartChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("op", event.Op)))
	return nil
}
