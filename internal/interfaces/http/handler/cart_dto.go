package handler

import (
	appcart "github.com/brewline/storefront/internal/application/cart"
	"github.com/brewline/storefront/internal/domain/cart"
)

// AddItemRequest selects the product variant to add
type AddItemRequest struct {
	ProductID   string  `json:"product_id" binding:"required,uuid"`
	Size        *string `json:"size" binding:"omitempty,max=50" example:"Large"`
	Temperature *string `json:"temperature" binding:"omitempty,oneof=hot cold" example:"hot"`
}

// UpdateQuantityRequest changes a line's quantity by a signed delta.
// The quantity never drops below one.
type UpdateQuantityRequest struct {
	Delta *int `json:"delta" binding:"required" example:"-1"`
}

// LineResponse is returned after a line changes
type LineResponse struct {
	Line cart.Line    `json:"line"`
	Cart appcart.View `json:"cart"`
}

// CheckoutRequest optionally picks the order message language
type CheckoutRequest struct {
	Locale string `json:"locale" binding:"omitempty,max=35" example:"ar"`
}
