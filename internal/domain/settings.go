package domain

// MappingTable maps a shop-side method identifier to a KeyCRM integer id.
// Keys are strings so payment method slugs and stringified shipping instance
// ids share one representation.
type MappingTable map[string]int

// LookupOrDefault resolves key against the table, falling back to def when
// the key is absent or mapped to a non-positive id. Misses are silent; the
// default policy is the caller's to choose.
func (m MappingTable) LookupOrDefault(key string, def int) int {
	if id, ok := m[key]; ok && id > 0 {
		return id
	}
	return def
}

// SyncSettings is the immutable configuration snapshot one sync attempt runs
// against. It is loaded once per attempt and passed by value through the
// payload builder, so a concurrent settings update never splits an attempt
// across two configurations.
type SyncSettings struct {
	APIKey           string       `json:"api_key"`
	SourceID         int          `json:"source_id"`
	DebugMode        bool         `json:"debug_mode"`
	PaymentMappings  MappingTable `json:"payment_mappings"`
	ShippingMappings MappingTable `json:"shipping_mappings"`
}

// DefaultSyncSettings returns the settings used before an admin has saved
// anything: no API key, source 1, debug off, empty mapping tables.
func DefaultSyncSettings() *SyncSettings {
	return &SyncSettings{
		SourceID:         1,
		PaymentMappings:  MappingTable{},
		ShippingMappings: MappingTable{},
	}
}
