package handler

import (
	"io"
	"net/http"
	"path/filepath"

	appcatalog "github.com/brewline/storefront/internal/application/catalog"
	"github.com/brewline/storefront/internal/interfaces/http/dto"
	"github.com/brewline/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ImageFormField is the multipart field carrying an uploaded image
const ImageFormField = "image"

// AdminCatalogHandler handles catalog management for the admin
type AdminCatalogHandler struct {
	BaseHandler
	store         *appcatalog.Store
	maxImageBytes int64
}

// NewAdminCatalogHandler creates a new admin catalog handler.
// maxImageBytes caps how much of an uploaded file is read.
func NewAdminCatalogHandler(store *appcatalog.Store, maxImageBytes int64) *AdminCatalogHandler {
	return &AdminCatalogHandler{store: store, maxImageBytes: maxImageBytes}
}

// CreateProduct godoc
// @Summary      Create product
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ProductRequest true "Product"
// @Success      201 {object} dto.Response{data=catalog.Product}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/products [post]
func (h *AdminCatalogHandler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, warnings, err := h.store.AddProduct(c.Request.Context(), req.ToDetails())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product, warnings)
}

// UpdateProduct godoc
// @Summary      Replace product
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body ProductRequest true "Product"
// @Success      200 {object} dto.Response{data=catalog.Product}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/products/{id} [put]
func (h *AdminCatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req ProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, warnings, err := h.store.UpdateProduct(c.Request.Context(), id, req.ToDetails())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithWarnings(c, product, warnings)
}

// DeleteProduct godoc
// @Summary      Delete product
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/products/{id} [delete]
func (h *AdminCatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	warnings, err := h.store.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithWarnings(c, nil, warnings)
}

// UploadProductImage godoc
// @Summary      Upload product image
// @Description  Uploads the image and points the product at it. The product is untouched if the upload fails.
// @Tags         admin
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Product ID" format(uuid)
// @Param        image formData file true "Image file"
// @Success      200 {object} dto.Response{data=catalog.Product}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      415 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/products/{id}/image [post]
func (h *AdminCatalogHandler) UploadProductImage(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	upload, ok := h.readImage(c, appcatalog.FolderProducts)
	if !ok {
		return
	}

	product, warnings, err := h.store.SaveProductWithImage(c.Request.Context(), id, upload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithWarnings(c, product, warnings)
}

// UploadImage godoc
// @Summary      Upload a standalone image
// @Description  Stores a hero, offer or brand image and returns its URL for use in settings
// @Tags         admin
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        image formData file true "Image file"
// @Param        folder formData string true "Target folder" Enums(hero, offers, brand, products)
// @Success      201 {object} dto.Response{data=ImageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      415 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/images [post]
func (h *AdminCatalogHandler) UploadImage(c *gin.Context) {
	upload, ok := h.readImage(c, c.PostForm("folder"))
	if !ok {
		return
	}

	url, err := h.store.UploadImage(c.Request.Context(), upload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ImageResponse{URL: url, Folder: upload.Folder}, nil)
}

// readImage reads the multipart image field. On failure the response is already written.
func (h *AdminCatalogHandler) readImage(c *gin.Context, folder string) (appcatalog.ImageUpload, bool) {
	fh, err := c.FormFile(ImageFormField)
	if err != nil {
		if middleware.AbortIfBodyTooLarge(c, err) {
			return appcatalog.ImageUpload{}, false
		}
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidationRequired, "An image file is required in the \""+ImageFormField+"\" field")
		return appcatalog.ImageUpload{}, false
	}
	if h.maxImageBytes > 0 && fh.Size > h.maxImageBytes {
		h.HandleError(c, appcatalog.ErrImageTooLarge)
		return appcatalog.ImageUpload{}, false
	}

	f, err := fh.Open()
	if err != nil {
		h.HandleError(c, err)
		return appcatalog.ImageUpload{}, false
	}
	defer f.Close()

	var r io.Reader = f
	if h.maxImageBytes > 0 {
		r = io.LimitReader(f, h.maxImageBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		h.HandleError(c, err)
		return appcatalog.ImageUpload{}, false
	}
	if h.maxImageBytes > 0 && int64(len(data)) > h.maxImageBytes {
		h.HandleError(c, appcatalog.ErrImageTooLarge)
		return appcatalog.ImageUpload{}, false
	}

	return appcatalog.ImageUpload{
		Data:     data,
		Folder:   folder,
		Filename: filepath.Base(fh.Filename),
	}, true
}

// CreateCategory godoc
// @Summary      Create category
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CategoryRequest true "Category"
// @Success      201 {object} dto.Response{data=catalog.Category}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/categories [post]
func (h *AdminCatalogHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	category, warnings, err := h.store.AddCategory(ctx, req.Name, req.Theme.toTheme())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if req.SortOrder != nil && *req.SortOrder != category.SortOrder {
		var more []string
		category, more, err = h.store.UpdateCategory(ctx, category.ID, category.Name, category.Theme, req.SortOrder)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		warnings.Merge(more)
	}
	h.Created(c, category, warnings)
}

// UpdateCategory godoc
// @Summary      Update category
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Category ID" format(uuid)
// @Param        request body CategoryRequest true "Category"
// @Success      200 {object} dto.Response{data=catalog.Category}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/categories/{id} [put]
func (h *AdminCatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req CategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	category, warnings, err := h.store.UpdateCategory(c.Request.Context(), id, req.Name, req.Theme.toTheme(), req.SortOrder)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithWarnings(c, category, warnings)
}

// DeleteCategory godoc
// @Summary      Delete category
// @Description  Fails with CATEGORY_IN_USE while any product references the category
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Category ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/categories/{id} [delete]
func (h *AdminCatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	warnings, err := h.store.DeleteCategory(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithWarnings(c, nil, warnings)
}
