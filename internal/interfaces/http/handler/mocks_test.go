package handler

import (
	"context"

	appcatalog "github.com/brewline/storefront/internal/application/catalog"
	"github.com/stretchr/testify/mock"
)

// MockStateRepository is a mock implementation of shared.StateRepository
type MockStateRepository struct {
	mock.Mock
}

func (m *MockStateRepository) Load(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStateRepository) Save(ctx context.Context, key string, data []byte) error {
	return m.Called(ctx, key, data).Error(0)
}

func (m *MockStateRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockImageHost is a mock implementation of appcatalog.ImageHost
type MockImageHost struct {
	mock.Mock
}

func (m *MockImageHost) Upload(ctx context.Context, img appcatalog.ImageUpload) (string, error) {
	args := m.Called(ctx, img)
	return args.String(0), args.Error(1)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type stubCounter struct{ products, categories int }

func (s stubCounter) Counts() (int, int) { return s.products, s.categories }
