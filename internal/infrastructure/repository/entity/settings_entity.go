package entity

import (
	"time"

	"keycrm-sync-layer/internal/domain"
)

// MongoSettingsDoc represents the sync settings singleton in MongoDB.
type MongoSettingsDoc struct {
	ID               string         `bson:"_id"`
	APIKey           string         `bson:"apiKey"`
	SourceID         int            `bson:"sourceId"`
	DebugMode        bool           `bson:"debugMode"`
	PaymentMappings  map[string]int `bson:"paymentMappings"`
	ShippingMappings map[string]int `bson:"shippingMappings"`
	UpdatedAt        time.Time      `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity.
func (d *MongoSettingsDoc) ToDomain() *domain.SyncSettings {
	settings := &domain.SyncSettings{
		APIKey:           d.APIKey,
		SourceID:         d.SourceID,
		DebugMode:        d.DebugMode,
		PaymentMappings:  domain.MappingTable(d.PaymentMappings),
		ShippingMappings: domain.MappingTable(d.ShippingMappings),
	}
	if settings.SourceID < 1 {
		settings.SourceID = 1
	}
	if settings.PaymentMappings == nil {
		settings.PaymentMappings = domain.MappingTable{}
	}
	if settings.ShippingMappings == nil {
		settings.ShippingMappings = domain.MappingTable{}
	}
	return settings
}

// MongoSettingsDocFromDomain converts a domain entity to a MongoDB document.
func MongoSettingsDocFromDomain(id string, settings *domain.SyncSettings) *MongoSettingsDoc {
	return &MongoSettingsDoc{
		ID:               id,
		APIKey:           settings.APIKey,
		SourceID:         settings.SourceID,
		DebugMode:        settings.DebugMode,
		PaymentMappings:  settings.PaymentMappings,
		ShippingMappings: settings.ShippingMappings,
	}
}
