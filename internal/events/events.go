package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type tags as they appear on the wire.
const (
	TypeOrderCreated      = "OrderCreated"
	TypeOrderStateUpdated = "OrderStateUpdated"
)

// Event is a decoded domain event. The set of implementations is closed:
// OrderCreatedEvent and OrderStateUpdatedEvent. Consumers dispatch on the
// concrete type and must treat any other value as unsupported.
type Event interface {
	// EventType returns the wire tag of the variant.
	EventType() string

	// DocumentPath returns the document service endpoint that renders this
	// event into an attachment, or "" when the variant has no document.
	DocumentPath() string
}

// OrderProduct is a single line item of a created order.
type OrderProduct struct {
	ProductCompanyName     string           `json:"ProductCompanyName"`
	ProductModel           string           `json:"ProductModel"`
	ProductPrice           decimal.Decimal  `json:"ProductPrice"`
	ProductDiscountedPrice *decimal.Decimal `json:"ProductDiscountedPrice"`
	ProductQuantity        int              `json:"ProductQuantity"`
}

// ActualPrice returns the discounted price when present, the list price otherwise.
func (p OrderProduct) ActualPrice() decimal.Decimal {
	if p.ProductDiscountedPrice != nil {
		return *p.ProductDiscountedPrice
	}
	return p.ProductPrice
}

// LineTotal returns the actual price multiplied by the ordered quantity.
func (p OrderProduct) LineTotal() decimal.Decimal {
	return p.ActualPrice().Mul(decimal.NewFromInt(int64(p.ProductQuantity)))
}

// OrderCreatedEvent is emitted by the shop when a new order is placed.
// Field names mirror the producer's serialization.
type OrderCreatedEvent struct {
	ID                    uuid.UUID       `json:"Id"`
	CreatedAt             time.Time       `json:"CreatedAt"`
	ShipToEmail           string          `json:"ShipToEmail"`
	BillToName            string          `json:"BillToName"`
	BillToCountry         string          `json:"BillToCountry"`
	BillToCity            string          `json:"BillToCity"`
	BillToPostalCode      string          `json:"BillToPostalCode"`
	BillToStateOrProvince string          `json:"BillToStateOrProvince"`
	BillToEmail           string          `json:"BillToEmail"`
	BillToPhoneNumber     string          `json:"BillToPhoneNumber"`
	Products              []OrderProduct  `json:"Products"`
	TotalPay              decimal.Decimal `json:"TotalPay"`
	Remarks               string          `json:"Remarks"`
}

func (OrderCreatedEvent) EventType() string { return TypeOrderCreated }

// OrderCreated is the only variant with a generated document (the invoice PDF).
func (OrderCreatedEvent) DocumentPath() string { return "documents/order" }

// OrderStateUpdatedEvent is emitted when an existing order changes state.
type OrderStateUpdatedEvent struct {
	ID            uuid.UUID `json:"Id"`
	ShipToEmail   string    `json:"ShipToEmail"`
	PreviousState string    `json:"PreviousState"`
	NewState      string    `json:"NewState"`
	UpdatedAt     time.Time `json:"UpdatedAt"`
}

func (OrderStateUpdatedEvent) EventType() string { return TypeOrderStateUpdated }

func (OrderStateUpdatedEvent) DocumentPath() string { return "" }
