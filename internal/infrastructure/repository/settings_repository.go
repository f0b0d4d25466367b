package repository

import (
	"context"
	"fmt"
	"time"

	"keycrm-sync-layer/internal/domain"
	"keycrm-sync-layer/internal/infrastructure/repository/entity"
	"keycrm-sync-layer/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// The settings collection holds a single document.
const settingsDocID = "sync"

// MongoSettingsRepository implements SettingsRepository using MongoDB.
type MongoSettingsRepository struct {
	collection *mongo.Collection
}

// NewMongoSettingsRepository creates a new MongoDB settings repository.
func NewMongoSettingsRepository(db *mongo.Database) ports.SettingsRepository {
	return &MongoSettingsRepository{
		collection: db.Collection("settings"),
	}
}

// Load returns the stored settings, or the defaults when nothing has been
// saved yet.
func (r *MongoSettingsRepository) Load(ctx context.Context) (*domain.SyncSettings, error) {
	var doc entity.MongoSettingsDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": settingsDocID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return domain.DefaultSyncSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	return doc.ToDomain(), nil
}

// Save replaces the stored settings document.
func (r *MongoSettingsRepository) Save(ctx context.Context, settings *domain.SyncSettings) error {
	doc := entity.MongoSettingsDocFromDomain(settingsDocID, settings)
	doc.UpdatedAt = time.Now()

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": settingsDocID}, doc, opts)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	return nil
}
