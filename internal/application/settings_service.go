package application

import (
	"context"
	"fmt"
	"strings"

	"keycrm-sync-layer/internal/domain"
	"keycrm-sync-layer/internal/ports"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// SettingsInput is the admin surface's settings update request.
// An empty api_key keeps the stored key, so the admin UI can update mappings
// without re-entering the secret.
type SettingsInput struct {
	APIKey           string         `json:"api_key"`
	SourceID         int            `json:"source_id" validate:"required,min=1"`
	DebugMode        bool           `json:"debug_mode"`
	PaymentMappings  map[string]int `json:"payment_mappings" validate:"dive,min=1"`
	ShippingMappings map[string]int `json:"shipping_mappings" validate:"dive,min=1"`
}

// SettingsView is the settings read model. The API key is masked; only its
// tail is shown so an admin can recognize which key is stored.
type SettingsView struct {
	APIKey           string         `json:"api_key"`
	APIKeySet        bool           `json:"api_key_set"`
	SourceID         int            `json:"source_id"`
	DebugMode        bool           `json:"debug_mode"`
	PaymentMappings  map[string]int `json:"payment_mappings"`
	ShippingMappings map[string]int `json:"shipping_mappings"`
}

// SettingsService manages the sync configuration behind the admin surface.
type SettingsService struct {
	repo     ports.SettingsRepository
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewSettingsService creates a settings service.
func NewSettingsService(repo ports.SettingsRepository, logger zerolog.Logger) *SettingsService {
	return &SettingsService{
		repo:     repo,
		validate: validator.New(),
		logger:   logger,
	}
}

// Get returns the current settings with the API key masked.
func (s *SettingsService) Get(ctx context.Context) (*SettingsView, error) {
	settings, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	return &SettingsView{
		APIKey:           maskSecret(settings.APIKey),
		APIKeySet:        settings.APIKey != "",
		SourceID:         settings.SourceID,
		DebugMode:        settings.DebugMode,
		PaymentMappings:  settings.PaymentMappings,
		ShippingMappings: settings.ShippingMappings,
	}, nil
}

// Update validates and persists a new settings snapshot, keeping the stored
// API key when the input leaves it empty.
func (s *SettingsService) Update(ctx context.Context, input SettingsInput) (*SettingsView, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	current, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	apiKey := input.APIKey
	if apiKey == "" {
		apiKey = current.APIKey
	}

	settings := &domain.SyncSettings{
		APIKey:           apiKey,
		SourceID:         input.SourceID,
		DebugMode:        input.DebugMode,
		PaymentMappings:  domain.MappingTable(input.PaymentMappings),
		ShippingMappings: domain.MappingTable(input.ShippingMappings),
	}
	if settings.PaymentMappings == nil {
		settings.PaymentMappings = domain.MappingTable{}
	}
	if settings.ShippingMappings == nil {
		settings.ShippingMappings = domain.MappingTable{}
	}

	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	s.logger.Info().
		Int("sourceId", settings.SourceID).
		Bool("debugMode", settings.DebugMode).
		Int("paymentMappings", len(settings.PaymentMappings)).
		Int("shippingMappings", len(settings.ShippingMappings)).
		Msg("Sync settings updated")

	return s.Get(ctx)
}

// maskSecret hides all but the last four characters of a secret.
func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
