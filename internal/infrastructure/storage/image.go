// Package storage implements the catalog image host.
package storage

import (
	"fmt"
	"path"
	"strings"

	catalogapp "github.com/brewline/storefront/internal/application/catalog"
	"github.com/brewline/storefront/internal/domain/shared"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// DefaultAllowedTypes are accepted when no list is configured
var DefaultAllowedTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// DefaultMaxBytes is the upload limit when none is configured
const DefaultMaxBytes = 5 << 20

// imagePolicy validates uploads before they reach a host
type imagePolicy struct {
	maxBytes     int64
	allowedTypes []string
}

func newImagePolicy(maxBytes int64, allowed []string) imagePolicy {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if len(allowed) == 0 {
		allowed = DefaultAllowedTypes
	}
	return imagePolicy{maxBytes: maxBytes, allowedTypes: allowed}
}

// check sniffs the content type from the bytes; the client's filename and header are not trusted
func (p imagePolicy) check(img catalogapp.ImageUpload) (*mimetype.MIME, error) {
	if len(img.Data) == 0 {
		return nil, catalogapp.ErrImageEmpty
	}
	if int64(len(img.Data)) > p.maxBytes {
		return nil, shared.NewDomainError(catalogapp.ErrImageTooLarge.Code,
			fmt.Sprintf("Image is %d bytes; the limit is %d", len(img.Data), p.maxBytes))
	}

	mt := mimetype.Detect(img.Data)
	for _, allowed := range p.allowedTypes {
		if mt.Is(allowed) {
			return mt, nil
		}
	}
	return nil, shared.NewDomainError(catalogapp.ErrImageInvalidType.Code,
		fmt.Sprintf("Content type %s is not allowed", mt.String()))
}

// objectKey builds folder/<uuid><ext>. The original filename only contributes its base name for readability.
func objectKey(img catalogapp.ImageUpload, mt *mimetype.MIME) string {
	folder := img.Folder
	if folder == "" {
		folder = catalogapp.FolderProducts
	}

	name := uuid.NewString()
	if base := slug(strings.TrimSuffix(path.Base(img.Filename), path.Ext(img.Filename))); base != "" {
		name = base + "-" + name[:8]
	}
	return folder + "/" + name + mt.Extension()
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == ' ':
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > 48 {
		out = out[:48]
	}
	return out
}
