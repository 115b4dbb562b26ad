package cart

import (
	"github.com/brewline/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeCart = "Cart"

// Event type constants
const (
	EventTypeCartItemAdded = "CartItemAdded"
	EventTypeCartCleared   = "CartCleared"
	EventTypeOrderPlaced   = "OrderPlaced"
)

// ItemAddedEvent is published when a line is added to a cart
type ItemAddedEvent struct {
	shared.BaseDomainEvent
	LineID     uuid.UUID       `json:"line_id"`
	ProductID  uuid.UUID       `json:"product_id"`
	FinalPrice decimal.Decimal `json:"final_price"`
}

// NewItemAddedEvent creates a new ItemAddedEvent
func NewItemAddedEvent(c *Cart, line Line) *ItemAddedEvent {
	return &ItemAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCartItemAdded, AggregateTypeCart, c.ID),
		LineID:          line.LineID,
		ProductID:       line.Product.ProductID,
		FinalPrice:      line.FinalPrice,
	}
}

// ClearedEvent is published when a cart is explicitly emptied
type ClearedEvent struct {
	shared.BaseDomainEvent
	LinesRemoved int `json:"lines_removed"`
}

// NewClearedEvent creates a new ClearedEvent
func NewClearedEvent(c *Cart, linesRemoved int) *ClearedEvent {
	return &ClearedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCartCleared, AggregateTypeCart, c.ID),
		LinesRemoved:    linesRemoved,
	}
}

// OrderPlacedEvent is published when a cart is turned into an order message
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	Subtotal  decimal.Decimal `json:"subtotal"`
	Currency  string          `json:"currency"`
	ItemCount int             `json:"item_count"`
	LineCount int             `json:"line_count"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(c *Cart, currency string) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeCart, c.ID),
		Subtotal:        c.Subtotal(),
		Currency:        currency,
		ItemCount:       c.ItemCount(),
		LineCount:       c.Len(),
	}
}
