package webhook_handlers

import (
	"context"
	"fmt"

	"keycrm-sync-layer/internal/application"
	"keycrm-sync-layer/internal/domain"
	"keycrm-sync-layer/internal/ports"

	"github.com/rs/zerolog"
)

// OrderCreatedHandler mirrors a newly created order and runs the first sync
// attempt.
type OrderCreatedHandler struct {
	orders ports.OrderRepository
	sync   *application.SyncService
	logger zerolog.Logger
}

// NewOrderCreatedHandler creates a new order-created webhook handler.
func NewOrderCreatedHandler(
	orders ports.OrderRepository,
	sync *application.SyncService,
	logger zerolog.Logger,
) *OrderCreatedHandler {
	return &OrderCreatedHandler{
		orders: orders,
		sync:   sync,
		logger: logger,
	}
}

// CanHandle returns true if this handler can process the given topic.
func (h *OrderCreatedHandler) CanHandle(topic string) bool {
	return topic == domain.TopicOrderCreated
}

// Handle stores the incoming order and triggers a sync attempt. Sync
// failures are recorded on the order, not returned; only a store failure
// makes the webhook fail so the shop retries delivery of the event itself.
func (h *OrderCreatedHandler) Handle(ctx context.Context, event *domain.OrderEvent) error {
	if event.Order == nil {
		return fmt.Errorf("order-created event carries no order")
	}

	if err := h.orders.Upsert(ctx, event.Order); err != nil {
		return fmt.Errorf("failed to store order %d: %w", event.Order.ID, err)
	}

	h.logger.Info().
		Int64("orderId", event.Order.ID).
		Str("status", event.Order.Status).
		Msg("New order received")

	h.sync.ProcessOrder(ctx, event.Order.ID)
	return nil
}
