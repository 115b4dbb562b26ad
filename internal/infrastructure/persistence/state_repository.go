package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brewline/storefront/internal/domain/shared"
	"github.com/brewline/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStateRepository stores snapshots in the storefront_state table
type GormStateRepository struct {
	db *gorm.DB
}

// NewGormStateRepository creates a state repository on db
func NewGormStateRepository(db *gorm.DB) *GormStateRepository {
	return &GormStateRepository{db: db}
}

// Load returns the blob stored under key
func (r *GormStateRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var m models.StateModel
	err := r.db.WithContext(ctx).Where("state_key = ?", key).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load state %q: %w", key, err)
	}
	return m.Data, nil
}

// Save upserts the blob and bumps its version
func (r *GormStateRepository) Save(ctx context.Context, key string, data []byte) error {
	m := models.StateModel{
		Key:       key,
		Data:      data,
		Version:   1,
		UpdatedAt: time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "state_key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"data":       m.Data,
			"updated_at": m.UpdatedAt,
			"version":    gorm.Expr(models.StateTableName + ".version + 1"),
		}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("failed to save state %q: %w", key, err)
	}
	return nil
}

// Ping checks the underlying connection
func (r *GormStateRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

var _ shared.StateRepository = (*GormStateRepository)(nil)
