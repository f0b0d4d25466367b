package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses used by the sync eligibility gate.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusFailed     = "failed"
	StatusRefunded   = "refunded"
)

// Order metadata keys. MetaSyncedFlag is the only key this service writes;
// the rest are owned by the shop and read verbatim.
const (
	MetaSyncedFlag    = "_keycrm_synced"
	MetaTrackingCode  = "_tracking_code"
	MetaWarehouseRef  = "wcus_warehouse_ref"
	MetaPurchasePrice = "_purchase_price"
)

// SyncedFlagValue marks an order as delivered to KeyCRM.
const SyncedFlagValue = "yes"

// Address holds one side of an order's address data. Field names follow the
// shop's checkout form.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// ShippingLine is one shipping method attached to an order.
type ShippingLine struct {
	InstanceID  int    `json:"instance_id"`
	MethodTitle string `json:"method_title"`
}

// Product is the catalog record a line item points at.
type Product struct {
	SKU      string            `json:"sku"`
	Name     string            `json:"name"`
	ImageURL string            `json:"image_url"`
	Meta     map[string]string `json:"meta"`
}

// MetaValue returns the product meta value for key, or "" when absent.
func (p *Product) MetaValue(key string) string {
	if p == nil || p.Meta == nil {
		return ""
	}
	return p.Meta[key]
}

// LineItem is one purchased line on an order. Product is nil when the catalog
// record no longer resolves; such lines are skipped during payload mapping.
type LineItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
	Product  *Product        `json:"product"`
}

// OrderNote is a human-readable note appended to an order's history.
type OrderNote struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Order mirrors one shop order. The shop owns every field except Notes and
// the MetaSyncedFlag entry in Meta, which this service appends after a sync
// attempt.
type Order struct {
	ID                 int64             `json:"id"`
	Status             string            `json:"status"`
	Currency           string            `json:"currency"`
	Total              decimal.Decimal   `json:"total"`
	PaymentMethod      string            `json:"payment_method"`
	PaymentMethodTitle string            `json:"payment_method_title"`
	DatePaid           *time.Time        `json:"date_paid"`
	CreatedAt          time.Time         `json:"created_at"`
	Billing            Address           `json:"billing"`
	Shipping           Address           `json:"shipping"`
	ShippingLines      []ShippingLine    `json:"shipping_lines"`
	LineItems          []LineItem        `json:"line_items"`
	Meta               map[string]string `json:"meta"`
	Notes              []OrderNote       `json:"notes"`
}

// MetaValue returns the order meta value for key, or "" when absent.
func (o *Order) MetaValue(key string) string {
	if o.Meta == nil {
		return ""
	}
	return o.Meta[key]
}

// SetMeta sets a meta value, allocating the bag on first write.
func (o *Order) SetMeta(key, value string) {
	if o.Meta == nil {
		o.Meta = make(map[string]string)
	}
	o.Meta[key] = value
}

// IsPaid reports whether the shop has recorded a payment date.
func (o *Order) IsPaid() bool {
	return o.DatePaid != nil
}

// IsSynced reports whether the order already carries the synced flag.
func (o *Order) IsSynced() bool {
	return o.MetaValue(MetaSyncedFlag) == SyncedFlagValue
}

// MarkSynced sets the durable synced flag.
func (o *Order) MarkSynced() {
	o.SetMeta(MetaSyncedFlag, SyncedFlagValue)
}

// AddNote appends a note to the order's history.
func (o *Order) AddNote(text string) {
	o.Notes = append(o.Notes, OrderNote{Text: text, CreatedAt: time.Now()})
}

// FormattedBillingFullName returns "First Last" from the billing address.
func (o *Order) FormattedBillingFullName() string {
	return strings.TrimSpace(o.Billing.FirstName + " " + o.Billing.LastName)
}

// FirstShippingLine returns the order's first shipping method, or nil when
// the order has none.
func (o *Order) FirstShippingLine() *ShippingLine {
	if len(o.ShippingLines) == 0 {
		return nil
	}
	return &o.ShippingLines[0]
}

// ShippingMethodTitle returns the label of the first shipping method, or "".
func (o *Order) ShippingMethodTitle() string {
	if line := o.FirstShippingLine(); line != nil {
		return line.MethodTitle
	}
	return ""
}
