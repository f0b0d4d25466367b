package keycrm

import (
	"fmt"
	"strconv"
	"strings"

	"keycrm-sync-layer/internal/domain"

	"github.com/shopspring/decimal"
)

// Fallback CRM identifiers used when a mapping table has no entry for the
// order's method.
const (
	DefaultDeliveryServiceID = 1
	DefaultPaymentMethodID   = 2
)

// Delivery service 2 requires a trailing " ." token in the recipient name.
const dottedRecipientServiceID = 2

// Slug of the cash-on-delivery gateway. Its payment label is fixed rather
// than taken from the gateway title.
const codPaymentMethod = "cod"

const codPaymentLabel = "Оплата при отриманні"

const (
	paymentDateLayout  = "2006-01-02 15:04:05"
	shippingDateLayout = "2006-01-02"
)

// OrderPayload is the KeyCRM order creation request body.
type OrderPayload struct {
	SourceID   int           `json:"source_id"`
	ExternalID int64         `json:"external_id"`
	Buyer      Buyer         `json:"buyer"`
	Shipping   ShippingInfo  `json:"shipping"`
	Payments   []PaymentInfo `json:"payments"`
	Products   []ProductLine `json:"products"`
}

// Buyer identifies the purchaser.
type Buyer struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// ShippingInfo carries delivery data in KeyCRM's field layout. The
// address fields come from the billing address; the receive point and the
// recipient name come from the shipping address.
type ShippingInfo struct {
	DeliveryServiceID  int    `json:"delivery_service_id"`
	TrackingCode       string `json:"tracking_code"`
	ShippingService    string `json:"shipping_service"`
	AddressCity        string `json:"shipping_address_city"`
	AddressCountry     string `json:"shipping_address_country"`
	AddressRegion      string `json:"shipping_address_region"`
	AddressZip         string `json:"shipping_address_zip"`
	SecondaryLine      string `json:"shipping_secondary_line"`
	ReceivePoint       string `json:"shipping_receive_point"`
	RecipientFullName  string `json:"recipient_full_name"`
	RecipientPhone     string `json:"recipient_phone"`
	WarehouseRef       string `json:"warehouse_ref"`
	ShippingDate       string `json:"shipping_date"`
}

// PaymentInfo is one payment record attached to the order.
type PaymentInfo struct {
	PaymentMethodID int     `json:"payment_method_id"`
	PaymentMethod   string  `json:"payment_method"`
	Amount          float64 `json:"amount"`
	PaymentDate     string  `json:"payment_date"`
	Status          string  `json:"status"`
}

// ProductLine is one purchased product in the payload.
type ProductLine struct {
	SKU            string  `json:"sku"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	PurchasedPrice string  `json:"purchased_price"`
	Quantity       int     `json:"quantity"`
	ImageURL       string  `json:"image_url"`
}

// BuildOrderPayload maps one order plus a settings snapshot into the request
// body KeyCRM expects. It never mutates its inputs; the only error condition
// is a line item with zero quantity.
func BuildOrderPayload(order *domain.Order, settings *domain.SyncSettings) (*OrderPayload, error) {
	products, err := resolveLineItems(order)
	if err != nil {
		return nil, err
	}

	return &OrderPayload{
		SourceID:   settings.SourceID,
		ExternalID: order.ID,
		Buyer: Buyer{
			FullName: order.FormattedBillingFullName(),
			Email:    order.Billing.Email,
			Phone:    FormatPhone(order.Billing.Phone),
		},
		Shipping: resolveShipping(order, settings.ShippingMappings),
		Payments: []PaymentInfo{resolvePayment(order, settings.PaymentMappings)},
		Products: products,
	}, nil
}

// resolveShipping maps the order's first shipping method through the
// shipping table, defaulting to DefaultDeliveryServiceID when the order has
// no shipping line or the instance id is unmapped.
func resolveShipping(order *domain.Order, shippingMap domain.MappingTable) ShippingInfo {
	deliveryServiceID := DefaultDeliveryServiceID
	if line := order.FirstShippingLine(); line != nil {
		deliveryServiceID = shippingMap.LookupOrDefault(
			strconv.Itoa(line.InstanceID), DefaultDeliveryServiceID)
	}

	recipientFullName := order.Shipping.FirstName + " " + order.Shipping.LastName
	if deliveryServiceID == dottedRecipientServiceID {
		recipientFullName += " ."
	}

	return ShippingInfo{
		DeliveryServiceID: deliveryServiceID,
		TrackingCode:      order.MetaValue(domain.MetaTrackingCode),
		ShippingService:   order.ShippingMethodTitle(),
		AddressCity:       order.Billing.City,
		AddressCountry:    order.Billing.Country,
		AddressRegion:     order.Billing.State,
		AddressZip:        order.Billing.Postcode,
		SecondaryLine:     order.Billing.Address1,
		ReceivePoint:      order.Shipping.Address1,
		RecipientFullName: recipientFullName,
		RecipientPhone:    FormatPhone(order.Billing.Phone),
		WarehouseRef:      order.MetaValue(domain.MetaWarehouseRef),
		ShippingDate:      order.CreatedAt.Format(shippingDateLayout),
	}
}

// resolvePayment maps the order's payment method through the payment table,
// defaulting to DefaultPaymentMethodID when unmapped.
func resolvePayment(order *domain.Order, paymentMap domain.MappingTable) PaymentInfo {
	label := order.PaymentMethodTitle
	if order.PaymentMethod == codPaymentMethod {
		label = codPaymentLabel
	}

	status := "not_paid"
	if order.IsPaid() {
		status = "paid"
	}

	return PaymentInfo{
		PaymentMethodID: paymentMap.LookupOrDefault(order.PaymentMethod, DefaultPaymentMethodID),
		PaymentMethod:   label,
		Amount:          order.Total.InexactFloat64(),
		PaymentDate:     order.CreatedAt.Format(paymentDateLayout),
		Status:          status,
	}
}

// resolveLineItems maps order lines to product records. Lines without a
// resolvable product are skipped; a resolvable line with zero quantity is an
// error because the unit price is the line total divided by the quantity.
func resolveLineItems(order *domain.Order) ([]ProductLine, error) {
	products := make([]ProductLine, 0, len(order.LineItems))
	for _, item := range order.LineItems {
		if item.Product == nil {
			continue
		}
		if item.Quantity == 0 {
			return nil, fmt.Errorf("line item %q has zero quantity", item.Name)
		}

		price := item.Total.Div(decimal.NewFromInt(int64(item.Quantity)))
		products = append(products, ProductLine{
			SKU:            item.Product.SKU,
			Name:           item.Name,
			Price:          price.InexactFloat64(),
			PurchasedPrice: item.Product.MetaValue(domain.MetaPurchasePrice),
			Quantity:       item.Quantity,
			ImageURL:       item.Product.ImageURL,
		})
	}
	return products, nil
}

// FormatPhone normalizes a phone number to "+<digits>". Non-digits are
// stripped first, then the "+" prefix is added when missing.
func FormatPhone(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	phone := digits.String()
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}
	return phone
}
