package webhook_handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"keycrm-sync-layer/internal/application"
	"keycrm-sync-layer/internal/domain"
	"keycrm-sync-layer/internal/infrastructure/keycrm"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memOrderRepo struct {
	orders    map[int64]*domain.Order
	upsertErr error
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[int64]*domain.Order)}
}

func (r *memOrderRepo) Upsert(_ context.Context, order *domain.Order) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.orders[order.ID] = order
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	return r.orders[id], nil
}

func (r *memOrderRepo) Save(_ context.Context, order *domain.Order) error {
	r.orders[order.ID] = order
	return nil
}

type memSettingsRepo struct {
	settings *domain.SyncSettings
}

func (r *memSettingsRepo) Load(_ context.Context) (*domain.SyncSettings, error) {
	return r.settings, nil
}

func (r *memSettingsRepo) Save(_ context.Context, settings *domain.SyncSettings) error {
	r.settings = settings
	return nil
}

func incomingOrder(id int64, status string) *domain.Order {
	return &domain.Order{
		ID:        id,
		Status:    status,
		Total:     decimal.NewFromInt(50),
		CreatedAt: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		Billing:   domain.Address{FirstName: "Olena", LastName: "Koval", Phone: "0671112233"},
		LineItems: []domain.LineItem{
			{
				Name:     "Item",
				Quantity: 1,
				Total:    decimal.NewFromInt(50),
				Product:  &domain.Product{SKU: "SKU-9"},
			},
		},
	}
}

func newHandlersFixture(t *testing.T) (*memOrderRepo, *application.SyncService) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(server.Close)

	orders := newMemOrderRepo()
	settings := domain.DefaultSyncSettings()
	settings.APIKey = "test-key"
	svc := application.NewSyncService(
		orders,
		&memSettingsRepo{settings: settings},
		keycrm.NewClient(server.URL, zerolog.Nop()),
		nil,
		nil,
		nil,
		zerolog.Nop(),
	)
	return orders, svc
}

func TestOrderCreatedHandlerStoresAndSyncs(t *testing.T) {
	orders, svc := newHandlersFixture(t)
	h := NewOrderCreatedHandler(orders, svc, zerolog.Nop())

	require.True(t, h.CanHandle(domain.TopicOrderCreated))
	require.False(t, h.CanHandle(domain.TopicOrderUpdated))

	event := &domain.OrderEvent{
		Topic:      domain.TopicOrderCreated,
		Order:      incomingOrder(1, domain.StatusProcessing),
		ReceivedAt: time.Now(),
	}
	require.NoError(t, h.Handle(context.Background(), event))

	stored := orders.orders[1]
	require.NotNil(t, stored)
	assert.True(t, stored.IsSynced())
}

func TestOrderCreatedHandlerRejectsEmptyEvent(t *testing.T) {
	orders, svc := newHandlersFixture(t)
	h := NewOrderCreatedHandler(orders, svc, zerolog.Nop())

	err := h.Handle(context.Background(), &domain.OrderEvent{Topic: domain.TopicOrderCreated})
	assert.ErrorContains(t, err, "carries no order")
}

func TestOrderCreatedHandlerReturnsStoreFailure(t *testing.T) {
	orders, svc := newHandlersFixture(t)
	orders.upsertErr = errors.New("mongo down")
	h := NewOrderCreatedHandler(orders, svc, zerolog.Nop())

	event := &domain.OrderEvent{
		Topic: domain.TopicOrderCreated,
		Order: incomingOrder(2, domain.StatusProcessing),
	}
	err := h.Handle(context.Background(), event)
	assert.ErrorContains(t, err, "failed to store order 2")
}

func TestOrderUpdatedHandlerSyncsOnStatusChange(t *testing.T) {
	orders, svc := newHandlersFixture(t)
	h := NewOrderUpdatedHandler(orders, svc, zerolog.Nop())

	require.True(t, h.CanHandle(domain.TopicOrderUpdated))

	event := &domain.OrderEvent{
		Topic:     domain.TopicOrderUpdated,
		Order:     incomingOrder(3, domain.StatusCompleted),
		OldStatus: domain.StatusPending,
		NewStatus: domain.StatusCompleted,
	}
	require.NoError(t, h.Handle(context.Background(), event))

	stored := orders.orders[3]
	require.NotNil(t, stored)
	assert.True(t, stored.IsSynced())
}

func TestOrderUpdatedHandlerLeavesExcludedStatusUnsynced(t *testing.T) {
	orders, svc := newHandlersFixture(t)
	h := NewOrderUpdatedHandler(orders, svc, zerolog.Nop())

	event := &domain.OrderEvent{
		Topic:     domain.TopicOrderUpdated,
		Order:     incomingOrder(4, domain.StatusCancelled),
		OldStatus: domain.StatusProcessing,
		NewStatus: domain.StatusCancelled,
	}
	require.NoError(t, h.Handle(context.Background(), event))

	stored := orders.orders[4]
	require.NotNil(t, stored)
	assert.False(t, stored.IsSynced())
	assert.Empty(t, stored.Notes)
}
