package entity

import (
	"time"

	"keycrm-sync-layer/internal/domain"

	"github.com/shopspring/decimal"
)

// MongoOrderDoc represents a mirrored shop order in MongoDB. The shop's
// order id is the document id. Money fields are stored as strings to keep
// exact decimal values.
type MongoOrderDoc struct {
	ID                 int64                  `bson:"_id"`
	Status             string                 `bson:"status"`
	Currency           string                 `bson:"currency"`
	Total              string                 `bson:"total"`
	PaymentMethod      string                 `bson:"paymentMethod"`
	PaymentMethodTitle string                 `bson:"paymentMethodTitle"`
	DatePaid           *time.Time             `bson:"datePaid,omitempty"`
	CreatedAt          time.Time              `bson:"createdAt"`
	Billing            MongoAddressDoc        `bson:"billing"`
	Shipping           MongoAddressDoc        `bson:"shipping"`
	ShippingLines      []MongoShippingLineDoc `bson:"shippingLines"`
	LineItems          []MongoLineItemDoc     `bson:"lineItems"`
	Meta               map[string]string      `bson:"meta"`
	Notes              []MongoOrderNoteDoc    `bson:"notes"`
	UpdatedAt          time.Time              `bson:"updatedAt"`
}

// MongoAddressDoc is one address block on an order document.
type MongoAddressDoc struct {
	FirstName string `bson:"firstName"`
	LastName  string `bson:"lastName"`
	Address1  string `bson:"address1"`
	Address2  string `bson:"address2"`
	City      string `bson:"city"`
	State     string `bson:"state"`
	Postcode  string `bson:"postcode"`
	Country   string `bson:"country"`
	Email     string `bson:"email"`
	Phone     string `bson:"phone"`
}

// MongoShippingLineDoc is one shipping method on an order document.
type MongoShippingLineDoc struct {
	InstanceID  int    `bson:"instanceId"`
	MethodTitle string `bson:"methodTitle"`
}

// MongoLineItemDoc is one purchased line on an order document.
type MongoLineItemDoc struct {
	Name     string           `bson:"name"`
	Quantity int              `bson:"quantity"`
	Total    string           `bson:"total"`
	Product  *MongoProductDoc `bson:"product,omitempty"`
}

// MongoProductDoc is the catalog data a line item references.
type MongoProductDoc struct {
	SKU      string            `bson:"sku"`
	Name     string            `bson:"name"`
	ImageURL string            `bson:"imageUrl"`
	Meta     map[string]string `bson:"meta"`
}

// MongoOrderNoteDoc is one history note on an order document.
type MongoOrderNoteDoc struct {
	Text      string    `bson:"text"`
	CreatedAt time.Time `bson:"createdAt"`
}

// ToDomain converts the MongoDB document to a domain entity.
func (d *MongoOrderDoc) ToDomain() *domain.Order {
	order := &domain.Order{
		ID:                 d.ID,
		Status:             d.Status,
		Currency:           d.Currency,
		Total:              parseDecimal(d.Total),
		PaymentMethod:      d.PaymentMethod,
		PaymentMethodTitle: d.PaymentMethodTitle,
		DatePaid:           d.DatePaid,
		CreatedAt:          d.CreatedAt,
		Billing:            d.Billing.toDomain(),
		Shipping:           d.Shipping.toDomain(),
		Meta:               d.Meta,
	}

	for _, line := range d.ShippingLines {
		order.ShippingLines = append(order.ShippingLines, domain.ShippingLine{
			InstanceID:  line.InstanceID,
			MethodTitle: line.MethodTitle,
		})
	}

	for _, item := range d.LineItems {
		lineItem := domain.LineItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Total:    parseDecimal(item.Total),
		}
		if item.Product != nil {
			lineItem.Product = &domain.Product{
				SKU:      item.Product.SKU,
				Name:     item.Product.Name,
				ImageURL: item.Product.ImageURL,
				Meta:     item.Product.Meta,
			}
		}
		order.LineItems = append(order.LineItems, lineItem)
	}

	for _, note := range d.Notes {
		order.Notes = append(order.Notes, domain.OrderNote{
			Text:      note.Text,
			CreatedAt: note.CreatedAt,
		})
	}

	return order
}

// MongoOrderDocFromDomain converts a domain entity to a MongoDB document.
func MongoOrderDocFromDomain(order *domain.Order) *MongoOrderDoc {
	doc := &MongoOrderDoc{
		ID:                 order.ID,
		Status:             order.Status,
		Currency:           order.Currency,
		Total:              order.Total.String(),
		PaymentMethod:      order.PaymentMethod,
		PaymentMethodTitle: order.PaymentMethodTitle,
		DatePaid:           order.DatePaid,
		CreatedAt:          order.CreatedAt,
		Billing:            addressDocFromDomain(order.Billing),
		Shipping:           addressDocFromDomain(order.Shipping),
		Meta:               order.Meta,
	}

	for _, line := range order.ShippingLines {
		doc.ShippingLines = append(doc.ShippingLines, MongoShippingLineDoc{
			InstanceID:  line.InstanceID,
			MethodTitle: line.MethodTitle,
		})
	}

	for _, item := range order.LineItems {
		itemDoc := MongoLineItemDoc{
			Name:     item.Name,
			Quantity: item.Quantity,
			Total:    item.Total.String(),
		}
		if item.Product != nil {
			itemDoc.Product = &MongoProductDoc{
				SKU:      item.Product.SKU,
				Name:     item.Product.Name,
				ImageURL: item.Product.ImageURL,
				Meta:     item.Product.Meta,
			}
		}
		doc.LineItems = append(doc.LineItems, itemDoc)
	}

	doc.Notes = OrderNoteDocsFromDomain(order.Notes)
	return doc
}

// OrderNoteDocsFromDomain converts domain notes to document notes.
func OrderNoteDocsFromDomain(notes []domain.OrderNote) []MongoOrderNoteDoc {
	docs := make([]MongoOrderNoteDoc, 0, len(notes))
	for _, note := range notes {
		docs = append(docs, MongoOrderNoteDoc{
			Text:      note.Text,
			CreatedAt: note.CreatedAt,
		})
	}
	return docs
}

func (d MongoAddressDoc) toDomain() domain.Address {
	return domain.Address{
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Address1:  d.Address1,
		Address2:  d.Address2,
		City:      d.City,
		State:     d.State,
		Postcode:  d.Postcode,
		Country:   d.Country,
		Email:     d.Email,
		Phone:     d.Phone,
	}
}

func addressDocFromDomain(a domain.Address) MongoAddressDoc {
	return MongoAddressDoc{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Address1:  a.Address1,
		Address2:  a.Address2,
		City:      a.City,
		State:     a.State,
		Postcode:  a.Postcode,
		Country:   a.Country,
		Email:     a.Email,
		Phone:     a.Phone,
	}
}

func parseDecimal(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return parsed
}
