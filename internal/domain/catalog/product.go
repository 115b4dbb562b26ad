package catalog

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/brewline/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxProductNameLength = 200

// MaxPricePlaces is the finest precision accepted for prices and modifiers.
// Three places cover every ISO 4217 minor unit.
const MaxPricePlaces = 3

// Size is a named variant of a product with a signed price delta
type Size struct {
	Name          string          `json:"name"`
	PriceModifier decimal.Decimal `json:"price_modifier"`
}

// ProductDetails holds the editable fields of a product.
// Create and update both take a full ProductDetails (update replaces by id).
type ProductDetails struct {
	Name        string
	Description string
	Image       string
	Price       decimal.Decimal
	PromoPrice  *decimal.Decimal
	IsPromo     bool
	CategoryIDs []uuid.UUID
	Sizes       []Size
	HasHot      bool
	HasCold     bool
}

// Product represents a menu item
// It is the aggregate root for catalog entries
type Product struct {
	shared.BaseAggregateRoot
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Image       string           `json:"image"`
	Price       decimal.Decimal  `json:"price"`
	PromoPrice  *decimal.Decimal `json:"promo_price,omitempty"`
	IsPromo     bool             `json:"is_promo"`
	CategoryIDs []uuid.UUID      `json:"category_ids"`
	Sizes       []Size           `json:"sizes"`
	HasHot      bool             `json:"has_hot"`
	HasCold     bool             `json:"has_cold"`
}

// NewProduct creates a new product
func NewProduct(details ProductDetails) (*Product, error) {
	details = details.normalize()
	if err := details.Validate(); err != nil {
		return nil, err
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
	}
	product.apply(details)

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update replaces all editable fields of the product
func (p *Product) Update(details ProductDetails) error {
	details = details.normalize()
	if err := details.Validate(); err != nil {
		return err
	}

	oldPrice := p.EffectivePrice()

	p.apply(details)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))
	if !oldPrice.Equal(p.EffectivePrice()) {
		p.AddDomainEvent(NewProductPriceChangedEvent(p, oldPrice))
	}

	return nil
}

// SetImage sets the image reference returned by the image host
func (p *Product) SetImage(url string) {
	p.Image = strings.TrimSpace(url)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))
}

// MarkDeleted records the deletion event; removal from the collection is the store's job
func (p *Product) MarkDeleted() {
	p.AddDomainEvent(NewProductDeletedEvent(p))
}

// Details returns the editable fields as a ProductDetails
func (p *Product) Details() ProductDetails {
	return ProductDetails{
		Name:        p.Name,
		Description: p.Description,
		Image:       p.Image,
		Price:       p.Price,
		PromoPrice:  p.PromoPrice,
		IsPromo:     p.IsPromo,
		CategoryIDs: append([]uuid.UUID(nil), p.CategoryIDs...),
		Sizes:       append([]Size(nil), p.Sizes...),
		HasHot:      p.HasHot,
		HasCold:     p.HasCold,
	}
}

// EffectivePrice returns the promo price when the promotion is active, the base price otherwise
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.IsPromo && p.PromoPrice != nil {
		return *p.PromoPrice
	}
	return p.Price
}

// FindSize looks up a size by name, ignoring case and surrounding spaces
func (p *Product) FindSize(name string) (Size, bool) {
	key := sizeKey(name)
	for _, s := range p.Sizes {
		if sizeKey(s.Name) == key {
			return s, true
		}
	}
	return Size{}, false
}

// InCategory reports whether the product belongs to the category
func (p *Product) InCategory(categoryID uuid.UUID) bool {
	for _, id := range p.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

// OffersBothTemperatures reports whether hot and cold are both available
func (p *Product) OffersBothTemperatures() bool {
	return p.HasHot && p.HasCold
}

// Clone returns a deep copy without pending events
func (p *Product) Clone() *Product {
	clone := *p
	clone.ClearDomainEvents()
	if p.PromoPrice != nil {
		promo := *p.PromoPrice
		clone.PromoPrice = &promo
	}
	clone.CategoryIDs = append([]uuid.UUID(nil), p.CategoryIDs...)
	clone.Sizes = append([]Size(nil), p.Sizes...)
	return &clone
}

func (p *Product) apply(d ProductDetails) {
	p.Name = d.Name
	p.Description = d.Description
	p.Image = d.Image
	p.Price = d.Price
	p.PromoPrice = d.PromoPrice
	p.IsPromo = d.IsPromo
	p.CategoryIDs = d.CategoryIDs
	p.Sizes = d.Sizes
	p.HasHot = d.HasHot
	p.HasCold = d.HasCold
}

func (d ProductDetails) normalize() ProductDetails {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	d.Image = strings.TrimSpace(d.Image)

	ids := make([]uuid.UUID, 0, len(d.CategoryIDs))
	seen := make(map[uuid.UUID]bool, len(d.CategoryIDs))
	for _, id := range d.CategoryIDs {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	d.CategoryIDs = ids

	sizes := make([]Size, 0, len(d.Sizes))
	for _, s := range d.Sizes {
		s.Name = strings.TrimSpace(s.Name)
		sizes = append(sizes, s)
	}
	d.Sizes = sizes

	if d.PromoPrice != nil {
		promo := *d.PromoPrice
		d.PromoPrice = &promo
	}
	return d
}

// Validate checks required fields and the promo and size invariants
func (d ProductDetails) Validate() error {
	if d.Name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if utf8.RuneCountInString(d.Name) > maxProductNameLength {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	if d.Price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if !withinPricePlaces(d.Price) {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot have more than 3 decimal places")
	}
	if len(d.CategoryIDs) == 0 {
		return shared.NewDomainError("INVALID_CATEGORY", "Product must belong to at least one category")
	}
	if d.PromoPrice != nil && d.PromoPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PROMO", "Promotional price cannot be negative")
	}
	if d.PromoPrice != nil && !withinPricePlaces(*d.PromoPrice) {
		return shared.NewDomainError("INVALID_PROMO", "Promotional price cannot have more than 3 decimal places")
	}
	if d.IsPromo && d.PromoPrice == nil {
		return shared.NewDomainError("INVALID_PROMO", "Promotional price is required when the promotion is active")
	}

	seen := make(map[string]bool, len(d.Sizes))
	for _, s := range d.Sizes {
		if s.Name == "" {
			return shared.NewDomainError("INVALID_SIZE", "Size name cannot be empty")
		}
		if !withinPricePlaces(s.PriceModifier) {
			return shared.NewDomainError("INVALID_SIZE", "Size price modifier cannot have more than 3 decimal places")
		}
		key := sizeKey(s.Name)
		if seen[key] {
			return shared.NewDomainError("DUPLICATE_SIZE", "Size \""+s.Name+"\" is declared more than once")
		}
		seen[key] = true
	}
	return nil
}

// withinPricePlaces reports whether d needs no more than MaxPricePlaces decimals
func withinPricePlaces(d decimal.Decimal) bool {
	return d.Round(MaxPricePlaces).Equal(d)
}

func sizeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
