package storage

import (
	"context"
	"strings"
	"sync"

	catalogapp "github.com/brewline/storefront/internal/application/catalog"
)

var _ catalogapp.ImageHost = (*StubImageHost)(nil)

// StubImageHost validates uploads like the real host but keeps them in memory.
// Use it for development when no bucket is configured.
type StubImageHost struct {
	BaseURL string

	policy  imagePolicy
	mu      sync.Mutex
	objects map[string][]byte
}

// NewStubImageHost creates a stub host serving URLs under baseURL
func NewStubImageHost(baseURL string, maxBytes int64, allowedTypes []string) *StubImageHost {
	if baseURL == "" {
		baseURL = "https://images.example.com"
	}
	return &StubImageHost{
		BaseURL: strings.TrimRight(baseURL, "/"),
		policy:  newImagePolicy(maxBytes, allowedTypes),
		objects: make(map[string][]byte),
	}
}

// Upload stores a copy of the image and returns a URL under BaseURL
func (s *StubImageHost) Upload(_ context.Context, img catalogapp.ImageUpload) (string, error) {
	mt, err := s.policy.check(img)
	if err != nil {
		return "", err
	}
	key := objectKey(img, mt)

	s.mu.Lock()
	s.objects[key] = append([]byte(nil), img.Data...)
	s.mu.Unlock()

	return s.BaseURL + "/" + key, nil
}

// Len returns the number of stored images
func (s *StubImageHost) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
