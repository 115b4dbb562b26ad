package handler

import (
	"github.com/brewline/storefront/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SizeRequest is a product size in a create or update request
type SizeRequest struct {
	Name          string `json:"name" binding:"required,max=50"`
	PriceModifier string `json:"price_modifier" binding:"omitempty,modifier" example:"5.00"`
}

// ProductRequest is the body of create and update product requests.
// Update replaces every field.
type ProductRequest struct {
	Name        string        `json:"name" binding:"required,max=200" example:"Latte"`
	Description string        `json:"description" binding:"max=2000"`
	Image       string        `json:"image" binding:"omitempty,url"`
	Price       string        `json:"price" binding:"required,amount" example:"24.00"`
	PromoPrice  *string       `json:"promo_price" binding:"omitempty,amount" example:"19.00"`
	IsPromo     bool          `json:"is_promo"`
	CategoryIDs []string      `json:"category_ids" binding:"required,min=1,dive,uuid"`
	Sizes       []SizeRequest `json:"sizes" binding:"omitempty,dive"`
	HasHot      bool          `json:"has_hot"`
	HasCold     bool          `json:"has_cold"`
}

// ToDetails converts the request into domain product details.
// Amounts and ids were checked by the binding tags.
func (r ProductRequest) ToDetails() catalog.ProductDetails {
	details := catalog.ProductDetails{
		Name:        r.Name,
		Description: r.Description,
		Image:       r.Image,
		Price:       decimal.RequireFromString(r.Price),
		IsPromo:     r.IsPromo,
		HasHot:      r.HasHot,
		HasCold:     r.HasCold,
	}
	if r.PromoPrice != nil {
		promo := decimal.RequireFromString(*r.PromoPrice)
		details.PromoPrice = &promo
	}
	for _, id := range r.CategoryIDs {
		details.CategoryIDs = append(details.CategoryIDs, uuid.MustParse(id))
	}
	for _, s := range r.Sizes {
		modifier := decimal.Zero
		if s.PriceModifier != "" {
			modifier = decimal.RequireFromString(s.PriceModifier)
		}
		details.Sizes = append(details.Sizes, catalog.Size{Name: s.Name, PriceModifier: modifier})
	}
	return details
}

// ThemeRequest holds category color overrides
type ThemeRequest struct {
	Background string `json:"background" binding:"omitempty,hexcolor"`
	Header     string `json:"header" binding:"omitempty,hexcolor"`
	Card       string `json:"card" binding:"omitempty,hexcolor"`
	Text       string `json:"text" binding:"omitempty,hexcolor"`
}

func (r *ThemeRequest) toTheme() *catalog.Theme {
	if r == nil {
		return nil
	}
	return &catalog.Theme{Background: r.Background, Header: r.Header, Card: r.Card, Text: r.Text}
}

// CategoryRequest is the body of create and update category requests
type CategoryRequest struct {
	Name      string        `json:"name" binding:"required,max=100" example:"Coffee"`
	Theme     *ThemeRequest `json:"theme"`
	SortOrder *int          `json:"sort_order" binding:"omitempty,min=0"`
}

// ImageResponse is returned after a standalone image upload
type ImageResponse struct {
	URL    string `json:"url"`
	Folder string `json:"folder"`
}
