package handler

import (
	appcart "github.com/brewline/storefront/internal/application/cart"
	appcheckout "github.com/brewline/storefront/internal/application/checkout"
	"github.com/brewline/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CartHandler exposes the session cart and checkout.
// Every route needs the CartSession middleware.
type CartHandler struct {
	BaseHandler
	carts    *appcart.Service
	checkout *appcheckout.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *appcart.Service, checkout *appcheckout.Service) *CartHandler {
	return &CartHandler{carts: carts, checkout: checkout}
}

func (h *CartHandler) session(c *gin.Context) (string, bool) {
	id := middleware.GetCartSession(c)
	if id == "" {
		h.HandleError(c, appcart.ErrMissingSession)
		return "", false
	}
	return id, true
}

// GetCart godoc
// @Summary      Get cart
// @Description  Lines of the session cart with subtotal and item count
// @Tags         cart
// @Produce      json
// @Param        X-Cart-Session header string false "Cart session ID"
// @Success      200 {object} dto.Response{data=appcart.View}
// @Router       /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}

	view, err := h.carts.Get(c.Request.Context(), sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// AddItem godoc
// @Summary      Add item
// @Description  Appends a new line for the product variant. Adding the same product, size and temperature again creates a separate line.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Cart-Session header string false "Cart session ID"
// @Param        request body AddItemRequest true "Item"
// @Success      200 {object} dto.Response{data=LineResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}
	var req AddItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	line, view, err := h.carts.AddItem(c.Request.Context(), sessionID, appcart.AddItemInput{
		ProductID:   uuid.MustParse(req.ProductID),
		Size:        req.Size,
		Temperature: req.Temperature,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, LineResponse{Line: line, Cart: view})
}

// UpdateQuantity godoc
// @Summary      Change line quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Cart-Session header string false "Cart session ID"
// @Param        line_id path string true "Line ID" format(uuid)
// @Param        request body UpdateQuantityRequest true "Delta"
// @Success      200 {object} dto.Response{data=LineResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/items/{line_id} [patch]
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}
	lineID, ok := h.pathUUID(c, "line_id")
	if !ok {
		return
	}
	var req UpdateQuantityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	line, view, err := h.carts.UpdateQuantity(c.Request.Context(), sessionID, lineID, *req.Delta)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, LineResponse{Line: line, Cart: view})
}

// RemoveItem godoc
// @Summary      Remove line
// @Description  Removing a line that is not in the cart is not an error
// @Tags         cart
// @Param        X-Cart-Session header string false "Cart session ID"
// @Param        line_id path string true "Line ID" format(uuid)
// @Success      204
// @Router       /cart/items/{line_id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}
	lineID, ok := h.pathUUID(c, "line_id")
	if !ok {
		return
	}

	if _, err := h.carts.RemoveItem(c.Request.Context(), sessionID, lineID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ClearCart godoc
// @Summary      Clear cart
// @Tags         cart
// @Param        X-Cart-Session header string false "Cart session ID"
// @Success      204
// @Router       /cart [delete]
func (h *CartHandler) ClearCart(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}

	if err := h.carts.Clear(c.Request.Context(), sessionID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Checkout godoc
// @Summary      Check out
// @Description  Renders the cart as a WhatsApp order message and link, then empties the cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Cart-Session header string false "Cart session ID"
// @Param        request body CheckoutRequest false "Options"
// @Success      200 {object} dto.Response{data=appcheckout.Result}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /checkout [post]
func (h *CartHandler) Checkout(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	result, err := h.checkout.Checkout(c.Request.Context(), sessionID, req.Locale)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
