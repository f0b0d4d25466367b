package webhook_handlers

import (
	"context"
	"fmt"

	"keycrm-sync-layer/internal/application"
	"keycrm-sync-layer/internal/domain"
	"keycrm-sync-layer/internal/ports"

	"github.com/rs/zerolog"
)

// OrderUpdatedHandler mirrors a status transition and re-attempts sync for
// orders that have not been delivered yet.
type OrderUpdatedHandler struct {
	orders ports.OrderRepository
	sync   *application.SyncService
	logger zerolog.Logger
}

// NewOrderUpdatedHandler creates a new order-updated webhook handler.
func NewOrderUpdatedHandler(
	orders ports.OrderRepository,
	sync *application.SyncService,
	logger zerolog.Logger,
) *OrderUpdatedHandler {
	return &OrderUpdatedHandler{
		orders: orders,
		sync:   sync,
		logger: logger,
	}
}

// CanHandle returns true if this handler can process the given topic.
func (h *OrderUpdatedHandler) CanHandle(topic string) bool {
	return topic == domain.TopicOrderUpdated
}

// Handle refreshes the mirrored order and re-evaluates sync. Already-synced
// orders short-circuit inside the sync service.
func (h *OrderUpdatedHandler) Handle(ctx context.Context, event *domain.OrderEvent) error {
	if event.Order == nil {
		return fmt.Errorf("order-updated event carries no order")
	}

	if err := h.orders.Upsert(ctx, event.Order); err != nil {
		return fmt.Errorf("failed to store order %d: %w", event.Order.ID, err)
	}

	h.logger.Info().
		Int64("orderId", event.Order.ID).
		Str("oldStatus", event.OldStatus).
		Str("newStatus", event.NewStatus).
		Msg("Order status changed")

	h.sync.MaybeProcessOrder(ctx, event.Order.ID, event.OldStatus, event.NewStatus)
	return nil
}
