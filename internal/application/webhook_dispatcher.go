package application

import (
	"context"
	"fmt"

	"keycrm-sync-layer/internal/domain"

	"github.com/rs/zerolog"
)

// WebhookHandler processes order lifecycle events for the topics it claims.
type WebhookHandler interface {
	CanHandle(topic string) bool
	Handle(ctx context.Context, event *domain.OrderEvent) error
}

// WebhookDispatcher routes an incoming order event to every registered
// handler claiming its topic.
type WebhookDispatcher struct {
	handlers []WebhookHandler
	logger   zerolog.Logger
}

// NewWebhookDispatcher creates an empty dispatcher.
func NewWebhookDispatcher(logger zerolog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{logger: logger}
}

// RegisterHandler adds a handler to the dispatch chain.
func (d *WebhookDispatcher) RegisterHandler(handler WebhookHandler) {
	d.handlers = append(d.handlers, handler)
}

// Dispatch delivers the event to all matching handlers. An unclaimed topic
// is an error so the shop's webhook sender surfaces misconfiguration.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, event *domain.OrderEvent) error {
	matched := 0
	for _, handler := range d.handlers {
		if !handler.CanHandle(event.Topic) {
			continue
		}
		matched++
		if err := handler.Handle(ctx, event); err != nil {
			return fmt.Errorf("handler failed for topic %s: %w", event.Topic, err)
		}
	}

	if matched == 0 {
		return fmt.Errorf("no handler registered for topic %s", event.Topic)
	}

	d.logger.Debug().
		Str("topic", event.Topic).
		Int("handlers", matched).
		Msg("Dispatched order event")
	return nil
}
