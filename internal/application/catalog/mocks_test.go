package catalog

import (
	"context"

	"github.com/brewline/storefront/internal/domain/shared"
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
	args := m.Called(ctx, key, data)
	return args.Error(0)
}

func (m *MockStateRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockImageHost is a mock implementation of ImageHost
type MockImageHost struct {
	mock.Mock
}

func (m *MockImageHost) Upload(ctx context.Context, img ImageUpload) (string, error) {
	args := m.Called(ctx, img)
	return args.String(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockFailureRecorder counts persistence failures
type MockFailureRecorder struct {
	mock.Mock
}

func (m *MockFailureRecorder) RecordPersistenceFailure(ctx context.Context, key string) {
	m.Called(ctx, key)
}

type stubSeed struct {
	seed *Seed
	err  error
}

func (s stubSeed) Seed() (*Seed, error) { return s.seed, s.err }
