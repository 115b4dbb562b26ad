// Package shared holds helpers used by every application store.
package shared

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/brewline/storefront/internal/domain/shared"
	"github.com/brewline/storefront/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// WarningPersistenceFailed prefixes warnings for mutations that were applied
// in memory but could not be written to durable storage.
const WarningPersistenceFailed = "PERSISTENCE_FAILED"

// Warnings are non-fatal problems reported alongside a successful result
type Warnings []string

// Add appends a formatted warning
func (w *Warnings) Add(code, format string, args ...any) {
	*w = append(*w, code+": "+fmt.Sprintf(format, args...))
}

// Merge appends all warnings from other
func (w *Warnings) Merge(other Warnings) {
	*w = append(*w, other...)
}

// FailureRecorder counts persistence failures, typically as a metric
type FailureRecorder interface {
	RecordPersistenceFailure(ctx context.Context, key string)
}

// SnapshotWriter serializes a collection and saves it under one state key.
// A failed save never fails the caller: it is logged, counted and returned as a warning.
type SnapshotWriter struct {
	repo     shared.StateRepository
	recorder FailureRecorder
	logger   *zap.Logger
}

// NewSnapshotWriter creates a writer. recorder may be nil.
func NewSnapshotWriter(repo shared.StateRepository, recorder FailureRecorder, log *zap.Logger) *SnapshotWriter {
	if log == nil {
		log = zap.NewNop()
	}
	return &SnapshotWriter{repo: repo, recorder: recorder, logger: log}
}

// Write marshals v and saves it under key
func (w *SnapshotWriter) Write(ctx context.Context, key string, v any) Warnings {
	data, err := json.Marshal(v)
	if err == nil {
		err = w.repo.Save(ctx, key, data)
	}
	if err == nil {
		return nil
	}

	logger.WithLogger(ctx, w.logger).Warn("Failed to persist state; change kept in memory only",
		zap.String("key", key),
		zap.Error(err),
	)
	if w.recorder != nil {
		w.recorder.RecordPersistenceFailure(ctx, key)
	}

	var warnings Warnings
	warnings.Add(WarningPersistenceFailed, "%s could not be saved", key)
	return warnings
}

// WriteRaw saves already-encoded data under key
func (w *SnapshotWriter) WriteRaw(ctx context.Context, key string, data []byte) Warnings {
	return w.Write(ctx, key, json.RawMessage(data))
}

// Read loads the blob under key. ok is false when nothing usable was stored;
// read errors other than not-found are logged and reported as warnings.
func (w *SnapshotWriter) Read(ctx context.Context, key string) (data []byte, ok bool, warnings Warnings) {
	data, err := w.repo.Load(ctx, key)
	if err == nil {
		return data, true, nil
	}
	if shared.IsNotFound(err) {
		return nil, false, nil
	}

	logger.WithLogger(ctx, w.logger).Warn("Failed to load state; using defaults",
		zap.String("key", key),
		zap.Error(err),
	)
	warnings.Add("PERSISTENCE_UNAVAILABLE", "%s could not be loaded", key)
	return nil, false, warnings
}

// Ping checks the underlying repository
func (w *SnapshotWriter) Ping(ctx context.Context) error {
	return w.repo.Ping(ctx)
}
