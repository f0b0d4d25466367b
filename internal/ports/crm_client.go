package ports

import (
	"context"

	"keycrm-sync-layer/internal/infrastructure/keycrm"
)

// CRMClient defines the outbound interface to KeyCRM. The API key travels
// with each call because it belongs to the per-attempt settings snapshot,
// not to the client.
type CRMClient interface {
	// CreateOrder delivers one order payload. A nil error means KeyCRM
	// answered 200 or 201; any other status or a transport failure is
	// returned as an error carrying the underlying detail.
	CreateOrder(ctx context.Context, apiKey string, debug bool, payload *keycrm.OrderPayload) error
}
