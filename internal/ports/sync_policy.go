package ports

import "keycrm-sync-layer/internal/domain"

// SyncPolicy lets an embedding deployment override the eligibility decision.
// The already-synced check is evaluated before either hook and cannot be
// overridden.
type SyncPolicy interface {
	// ExcludedStatuses may replace or extend the default excluded status
	// set. Implementations that keep the default return defaults unchanged.
	ExcludedStatuses(defaults []string) []string

	// ShouldProcess receives the gate's own verdict for the order and
	// returns the final decision.
	ShouldProcess(order *domain.Order, eligible bool) bool
}
