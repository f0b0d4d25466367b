package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupOrDefault(t *testing.T) {
	table := MappingTable{"cod": 5, "broken": 0, "negative": -2}

	assert.Equal(t, 5, table.LookupOrDefault("cod", 2))
	assert.Equal(t, 2, table.LookupOrDefault("card", 2))
	assert.Equal(t, 2, table.LookupOrDefault("broken", 2))
	assert.Equal(t, 2, table.LookupOrDefault("negative", 2))
}

func TestLookupOrDefaultOnNilTable(t *testing.T) {
	var table MappingTable

	assert.Equal(t, 1, table.LookupOrDefault("anything", 1))
}

func TestDefaultSyncSettings(t *testing.T) {
	settings := DefaultSyncSettings()

	assert.Empty(t, settings.APIKey)
	assert.Equal(t, 1, settings.SourceID)
	assert.False(t, settings.DebugMode)
	assert.NotNil(t, settings.PaymentMappings)
	assert.NotNil(t, settings.ShippingMappings)
}
