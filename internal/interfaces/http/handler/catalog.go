package handler

import (
	"net/http"

	appcatalog "github.com/brewline/storefront/internal/application/catalog"
	"github.com/brewline/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CatalogHandler serves the public menu
type CatalogHandler struct {
	BaseHandler
	store *appcatalog.Store
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(store *appcatalog.Store) *CatalogHandler {
	return &CatalogHandler{store: store}
}

// ListProducts godoc
// @Summary      List products
// @Description  List all products, optionally only those in one category
// @Tags         catalog
// @Produce      json
// @Param        category_id query string false "Category ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]catalog.Product}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var categoryID *uuid.UUID
	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeValidationFormat, "Invalid category_id format")
			return
		}
		categoryID = &id
	}

	products := h.store.ListProducts(c.Request.Context(), categoryID)
	h.List(c, products, len(products))
}

// GetProduct godoc
// @Summary      Get product
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalog.Product}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	product, err := h.store.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ListCategories godoc
// @Summary      List categories
// @Description  Categories ordered by sort order, then name
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalog.Category}
// @Router       /catalog/categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories := h.store.ListCategories(c.Request.Context())
	h.List(c, categories, len(categories))
}
