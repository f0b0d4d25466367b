package ports

import (
	"context"

	"keycrm-sync-layer/internal/domain"
)

// SettingsRepository defines the interface for sync settings persistence.
type SettingsRepository interface {
	// Load returns the current settings snapshot. When nothing has been
	// saved yet, implementations return domain.DefaultSyncSettings().
	Load(ctx context.Context) (*domain.SyncSettings, error)

	// Save replaces the stored settings.
	Save(ctx context.Context, settings *domain.SyncSettings) error
}
