package catalog

import (
	"context"

	"github.com/brewline/storefront/internal/domain/shared"
)

// Image folders on the host
const (
	FolderProducts = "products"
	FolderHero     = "hero"
	FolderOffers   = "offers"
	FolderBrand    = "brand"
)

// ImageUpload is one file to place on the image host
type ImageUpload struct {
	Data     []byte
	Folder   string
	Filename string
}

// ImageHost stores images and returns their public URL.
// Implementations live in the infrastructure layer (S3-compatible storage, stub).
type ImageHost interface {
	Upload(ctx context.Context, img ImageUpload) (string, error)
}

// Image host failures. Implementations wrap the underlying cause in these codes.
var (
	ErrImageHostUnauthorized = shared.NewDomainError("IMAGE_HOST_UNAUTHORIZED", "The image host rejected the configured credentials")
	ErrImageTooLarge         = shared.NewDomainError("IMAGE_TOO_LARGE", "The image exceeds the maximum upload size")
	ErrImageInvalidType      = shared.NewDomainError("IMAGE_INVALID_TYPE", "The file is not a supported image type")
	ErrImageHostFailure      = shared.NewDomainError("IMAGE_HOST_ERROR", "The image host failed to store the image")
	ErrImageEmpty            = shared.NewDomainError("IMAGE_EMPTY", "No image data was provided")
)

var validFolders = map[string]bool{
	FolderProducts: true,
	FolderHero:     true,
	FolderOffers:   true,
	FolderBrand:    true,
}

// IsValidFolder reports whether folder is a known image folder
func IsValidFolder(folder string) bool {
	return validFolders[folder]
}
