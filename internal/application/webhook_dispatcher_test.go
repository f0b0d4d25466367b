package application

import (
	"context"
	"errors"
	"testing"

	"keycrm-sync-layer/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	topic   string
	err     error
	handled []*domain.OrderEvent
}

func (h *recordingHandler) CanHandle(topic string) bool { return topic == h.topic }

func (h *recordingHandler) Handle(_ context.Context, event *domain.OrderEvent) error {
	h.handled = append(h.handled, event)
	return h.err
}

func TestDispatchRoutesByTopic(t *testing.T) {
	created := &recordingHandler{topic: domain.TopicOrderCreated}
	updated := &recordingHandler{topic: domain.TopicOrderUpdated}

	d := NewWebhookDispatcher(zerolog.Nop())
	d.RegisterHandler(created)
	d.RegisterHandler(updated)

	event := &domain.OrderEvent{Topic: domain.TopicOrderCreated, Order: &domain.Order{ID: 1}}
	require.NoError(t, d.Dispatch(context.Background(), event))

	assert.Len(t, created.handled, 1)
	assert.Empty(t, updated.handled)
}

func TestDispatchUnknownTopicIsError(t *testing.T) {
	d := NewWebhookDispatcher(zerolog.Nop())
	d.RegisterHandler(&recordingHandler{topic: domain.TopicOrderCreated})

	err := d.Dispatch(context.Background(), &domain.OrderEvent{Topic: "order-deleted"})
	assert.ErrorContains(t, err, "no handler registered")
}

func TestDispatchPropagatesHandlerError(t *testing.T) {
	failing := &recordingHandler{topic: domain.TopicOrderCreated, err: errors.New("store unavailable")}

	d := NewWebhookDispatcher(zerolog.Nop())
	d.RegisterHandler(failing)

	err := d.Dispatch(context.Background(), &domain.OrderEvent{Topic: domain.TopicOrderCreated})
	assert.ErrorContains(t, err, "store unavailable")
}
