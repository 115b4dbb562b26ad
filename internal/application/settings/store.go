// Package settings serves and persists the shop configuration.
package settings

import (
	"context"
	"sync"

	appshared "github.com/brewline/storefront/internal/application/shared"
	"github.com/brewline/storefront/internal/domain/settings"
	"github.com/brewline/storefront/internal/domain/shared"
	"github.com/brewline/storefront/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Store holds the current SiteSettings and persists every update
type Store struct {
	mu        sync.RWMutex
	current   settings.SiteSettings
	snapshots *appshared.SnapshotWriter
	logger    *zap.Logger
}

// NewStore creates a settings store holding the defaults until Load is called
func NewStore(snapshots *appshared.SnapshotWriter, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		current:   settings.Defaults(),
		snapshots: snapshots,
		logger:    log,
	}
}

// Load restores the persisted settings and merges the defaults under them.
// A missing or unparseable blob leaves the defaults in place.
func (s *Store) Load(ctx context.Context) appshared.Warnings {
	log := logger.WithLogger(ctx, s.logger)

	data, ok, warnings := s.snapshots.Read(ctx, shared.StateKeySettings)
	if !ok {
		return warnings
	}

	stored, legacy, err := settings.Decode(data)
	if err != nil {
		log.Warn("Stored settings could not be parsed; using defaults", zap.Error(err))
		warnings.Add("STATE_CORRUPT", "%s snapshot could not be parsed", shared.StateKeySettings)
		return warnings
	}

	merged := settings.Merge(settings.Defaults(), stored).Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = merged

	if len(legacy) > 0 {
		// rewriting drops the credential keys from durable storage
		log.Warn("Removing credential keys from stored settings", zap.Strings("keys", legacy))
		warnings.Merge(s.persist(ctx))
	}
	return warnings
}

// Get returns a copy of the current settings
func (s *Store) Get(context.Context) settings.SiteSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.current)
}

// UpdateSettings replaces the settings wholesale
func (s *Store) UpdateSettings(ctx context.Context, next settings.SiteSettings) (settings.SiteSettings, appshared.Warnings, error) {
	next = next.Normalize()
	if err := next.Validate(); err != nil {
		return settings.SiteSettings{}, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = next
	warnings := s.persist(ctx)

	logger.WithLogger(ctx, s.logger).Info("Settings updated", zap.String("shop_name", next.ShopName))
	return clone(next), warnings, nil
}

// Ping checks the state repository
func (s *Store) Ping(ctx context.Context) error {
	return s.snapshots.Ping(ctx)
}

func (s *Store) persist(ctx context.Context) appshared.Warnings {
	data, err := settings.Encode(s.current)
	if err != nil {
		var warnings appshared.Warnings
		warnings.Add(appshared.WarningPersistenceFailed, "%s could not be encoded", shared.StateKeySettings)
		return warnings
	}
	return s.snapshots.WriteRaw(ctx, shared.StateKeySettings, data)
}

func clone(in settings.SiteSettings) settings.SiteSettings {
	out := in
	out.HeroImages = append([]string{}, in.HeroImages...)
	out.OfferImages = append([]string{}, in.OfferImages...)
	return out
}
