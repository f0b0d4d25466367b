package repository

import (
	"context"
	"encoding/json"
	"time"

	"keycrm-sync-layer/internal/domain"
	"keycrm-sync-layer/internal/ports"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const settingsCacheKey = "keycrm:sync_settings"

// CachedSettingsRepository is a read-through Redis cache in front of a
// settings repository. Settings are read once per sync attempt, so the cache
// keeps the hot path off MongoDB. Cache failures degrade to the inner
// repository; they never fail a sync attempt.
type CachedSettingsRepository struct {
	inner  ports.SettingsRepository
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedSettingsRepository wraps inner with a Redis cache.
func NewCachedSettingsRepository(
	inner ports.SettingsRepository,
	client *redis.Client,
	ttl time.Duration,
	logger zerolog.Logger,
) ports.SettingsRepository {
	return &CachedSettingsRepository{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Load returns the cached snapshot when present, falling back to the inner
// repository and repopulating the cache on a miss.
func (r *CachedSettingsRepository) Load(ctx context.Context) (*domain.SyncSettings, error) {
	cached, err := r.client.Get(ctx, settingsCacheKey).Result()
	if err == nil {
		var settings domain.SyncSettings
		if err := json.Unmarshal([]byte(cached), &settings); err == nil {
			return &settings, nil
		}
		r.logger.Warn().Msg("Discarding unreadable settings cache entry")
	} else if err != redis.Nil {
		r.logger.Warn().Err(err).Msg("Settings cache read failed, falling back to store")
	}

	settings, err := r.inner.Load(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(settings); err == nil {
		if err := r.client.Set(ctx, settingsCacheKey, payload, r.ttl).Err(); err != nil {
			r.logger.Warn().Err(err).Msg("Failed to populate settings cache")
		}
	}

	return settings, nil
}

// Save writes through to the inner repository and invalidates the cache.
func (r *CachedSettingsRepository) Save(ctx context.Context, settings *domain.SyncSettings) error {
	if err := r.inner.Save(ctx, settings); err != nil {
		return err
	}

	if err := r.client.Del(ctx, settingsCacheKey).Err(); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to invalidate settings cache")
	}

	return nil
}
