package messaging

import (
	"context"
	"log/slog"
	"time"

	"github.com/afrolatino/storefront/internal/domain"
)

// Topics published by the storefront.
const (
	TopicCartChanged    = "cart.changed"
	TopicOrderSubmitted = "order.submitted"
)

const relayTimeout = 5 * time.Second

// CartEventRelay is a cart.Store subscriber that forwards cart-changed
// events to Kafka, keyed by cart id so one cart's events stay ordered.
// Publish failures are logged and dropped; the cart mutation has
// already been persisted and must not be rolled back over telemetry.
type CartEventRelay struct {
	producer *Producer
	logger   *slog.Logger
}

func NewCartEventRelay(producer *Producer, logger *slog.Logger) *CartEventRelay {
	return &CartEventRelay{producer: producer, logger: logger}
}

func (r *CartEventRelay) Notify(event domain.CartChangedEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), relayTimeout)
	defer cancel()

	if err := r.producer.Publish(ctx, event.CartID, event); err != nil {
		r.logger.Error("failed to publish cart changed event", "error", err, "cart_id", event.CartID, "op", event.Op)
	}
}
