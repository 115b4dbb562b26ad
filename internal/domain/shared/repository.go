package shared

import "context"

// State keys for the durable snapshots. Each key holds one whole collection.
const (
	StateKeyProducts   = "products"
	StateKeyCategories = "categories"
	StateKeySettings   = "settings"
)

// StateRepository persists keyed snapshot blobs.
// Load returns ErrNotFound when nothing was stored under the key yet.
type StateRepository interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Ping(ctx context.Context) error
}
