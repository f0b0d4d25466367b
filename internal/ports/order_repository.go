package ports

import (
	"context"

	"keycrm-sync-layer/internal/domain"
)

// OrderRepository defines the interface for the mirrored order store.
type OrderRepository interface {
	// Upsert stores the shop's view of an order. Bridge-owned state (notes,
	// synced flag) already persisted for the same order must survive.
	Upsert(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order, returning (nil, nil) when it is unknown.
	GetByID(ctx context.Context, id int64) (*domain.Order, error)

	// Save persists bridge-owned mutations (notes, meta) back to the store.
	Save(ctx context.Context, order *domain.Order) error
}
