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

// MongoOrderRepository implements OrderRepository using MongoDB.
type MongoOrderRepository struct {
	collection *mongo.Collection
}

// NewMongoOrderRepository creates a new MongoDB order repository.
func NewMongoOrderRepository(db *mongo.Database) ports.OrderRepository {
	return &MongoOrderRepository{
		collection: db.Collection("orders"),
	}
}

// Upsert saves or replaces the shop's view of an order. Bridge-owned state
// already recorded on the stored document (the synced flag and sync notes)
// survives the replace: the shop's webhook payload never carries it.
func (r *MongoOrderRepository) Upsert(ctx context.Context, order *domain.Order) error {
	doc := entity.MongoOrderDocFromDomain(order)
	doc.UpdatedAt = time.Now()

	var existing entity.MongoOrderDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": order.ID}).Decode(&existing)
	if err != nil && err != mongo.ErrNoDocuments {
		return fmt.Errorf("failed to get order: %w", err)
	}
	if err == nil {
		if doc.Meta == nil {
			doc.Meta = make(map[string]string)
		}
		for key, value := range existing.Meta {
			if _, ok := doc.Meta[key]; !ok {
				doc.Meta[key] = value
			}
		}
		if len(doc.Notes) == 0 {
			doc.Notes = existing.Notes
		}
	}

	opts := options.Replace().SetUpsert(true)
	_, err = r.collection.ReplaceOne(ctx, bson.M{"_id": order.ID}, doc, opts)
	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}

	return nil
}

// GetByID retrieves an order by the shop's order id.
func (r *MongoOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var doc entity.MongoOrderDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return doc.ToDomain(), nil
}

// Save persists the bridge-owned fields of an order: its meta bag and notes.
// The rest of the document stays as the shop last pushed it.
func (r *MongoOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	update := bson.M{
		"$set": bson.M{
			"meta":      order.Meta,
			"notes":     entity.OrderNoteDocsFromDomain(order.Notes),
			"updatedAt": time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": order.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("order not found: %d", order.ID)
	}

	return nil
}
