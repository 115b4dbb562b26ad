// Package cart implements the pricing state machine behind the customer cart.
package cart

import (
	"math"
	"strings"
	"time"

	"github.com/brewline/storefront/internal/domain/catalog"
	"github.com/brewline/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Temperature is the serving temperature chosen for a drink
type Temperature string

const (
	TemperatureHot  Temperature = "hot"
	TemperatureCold Temperature = "cold"
)

// ParseTemperature parses a temperature value, case-insensitively
func ParseTemperature(s string) (Temperature, error) {
	switch Temperature(strings.ToLower(strings.TrimSpace(s))) {
	case TemperatureHot:
		return TemperatureHot, nil
	case TemperatureCold:
		return TemperatureCold, nil
	default:
		return "", shared.NewDomainError("INVALID_TEMPERATURE", "Temperature must be hot or cold")
	}
}

// ProductSnapshot is the product data copied into a line at add time.
// Later catalog edits do not reach lines already in a cart.
type ProductSnapshot struct {
	ProductID  uuid.UUID        `json:"product_id"`
	Name       string           `json:"name"`
	Image      string           `json:"image"`
	Price      decimal.Decimal  `json:"price"`
	PromoPrice *decimal.Decimal `json:"promo_price,omitempty"`
	IsPromo    bool             `json:"is_promo"`
}

// Line is one product and variant combination at a given quantity
type Line struct {
	LineID      uuid.UUID       `json:"line_id"`
	Product     ProductSnapshot `json:"product"`
	Size        *catalog.Size   `json:"size,omitempty"`
	Temperature *Temperature    `json:"temperature,omitempty"`
	Quantity    int             `json:"quantity"`
	FinalPrice  decimal.Decimal `json:"final_price"`
}

// LineTotal returns the final unit price times quantity
func (l Line) LineTotal() decimal.Decimal {
	return l.FinalPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds the lines of a single shopping session.
// It is not safe for concurrent use; the application service serializes access.
type Cart struct {
	ID        uuid.UUID
	lines     []Line
	UpdatedAt time.Time
}

// New creates an empty cart
func New() *Cart {
	return &Cart{
		ID:        uuid.New(),
		lines:     make([]Line, 0),
		UpdatedAt: time.Now(),
	}
}

// AddToCart appends a new line for the product with the chosen variant.
// The size, if given, must be declared by the product. A temperature is
// only recorded when the product is offered both hot and cold.
func (c *Cart) AddToCart(product *catalog.Product, sizeName *string, temperature *Temperature) (Line, error) {
	if product == nil {
		return Line{}, shared.NotFound("Product not found")
	}

	var size *catalog.Size
	if sizeName != nil && strings.TrimSpace(*sizeName) != "" {
		s, ok := product.FindSize(*sizeName)
		if !ok {
			return Line{}, shared.NewDomainError("INVALID_SIZE", "Size \""+*sizeName+"\" is not available for "+product.Name)
		}
		size = &s
	}

	var temp *Temperature
	if temperature != nil {
		if !offers(product, *temperature) {
			return Line{}, shared.NewDomainError("INVALID_TEMPERATURE", product.Name+" is not served "+string(*temperature))
		}
		if product.OffersBothTemperatures() {
			t := *temperature
			temp = &t
		}
	}

	finalPrice := product.EffectivePrice()
	if size != nil {
		finalPrice = finalPrice.Add(size.PriceModifier)
	}

	line := Line{
		LineID:      uuid.New(),
		Product:     snapshot(product),
		Size:        size,
		Temperature: temp,
		Quantity:    1,
		FinalPrice:  finalPrice,
	}
	c.lines = append(c.lines, line)
	c.touch()

	return line, nil
}

// RemoveFromCart deletes the matching line. An unknown id is a no-op;
// the result reports whether a line was removed.
func (c *Cart) RemoveFromCart(lineID uuid.UUID) bool {
	for i, line := range c.lines {
		if line.LineID == lineID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			c.touch()
			return true
		}
	}
	return false
}

// UpdateQuantity adds delta to the line quantity, clamped to a minimum of 1.
// Lines are only ever removed through RemoveFromCart.
func (c *Cart) UpdateQuantity(lineID uuid.UUID, delta int) (Line, error) {
	for i := range c.lines {
		if c.lines[i].LineID != lineID {
			continue
		}
		c.lines[i].Quantity = clampQuantity(c.lines[i].Quantity, delta)
		c.touch()
		return c.lines[i], nil
	}
	return Line{}, shared.NotFound("Cart line not found")
}

// ClearCart empties the cart unconditionally
func (c *Cart) ClearCart() {
	c.lines = make([]Line, 0)
	c.touch()
}

// Subtotal sums finalPrice * quantity over all lines. It is computed on every call.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// Lines returns a copy of the cart lines
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of lines
func (c *Cart) Len() int {
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// ItemCount returns the total quantity across lines
func (c *Cart) ItemCount() int {
	n := 0
	for _, line := range c.lines {
		n += line.Quantity
	}
	return n
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
}

// clampQuantity returns max(1, current+delta); a sum past math.MaxInt saturates
func clampQuantity(current, delta int) int {
	if delta <= 1-current {
		return 1
	}
	if delta > math.MaxInt-current {
		return math.MaxInt
	}
	return current + delta
}

func offers(product *catalog.Product, t Temperature) bool {
	switch t {
	case TemperatureHot:
		return product.HasHot
	case TemperatureCold:
		return product.HasCold
	default:
		return false
	}
}

func snapshot(p *catalog.Product) ProductSnapshot {
	s := ProductSnapshot{
		ProductID: p.ID,
		Name:      p.Name,
		Image:     p.Image,
		Price:     p.Price,
		IsPromo:   p.IsPromo,
	}
	if p.PromoPrice != nil {
		promo := *p.PromoPrice
		s.PromoPrice = &promo
	}
	return s
}
