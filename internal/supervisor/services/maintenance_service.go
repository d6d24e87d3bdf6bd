// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// maintenanceInterval is how often the retention sweep runs.
const maintenanceInterval = time.Hour

// SnapshotPruner interface matches the store's snapshot retention method.
//
// This interface allows the MaintenanceService to work with the store
// without importing the store package, avoiding circular dependencies.
//
// Satisfied by *store.Store from internal/store/snapshots.go.
type SnapshotPruner interface {
	// PruneSnapshots deletes insight snapshots created before olderThan
	// and returns the number of rows removed.
	PruneSnapshots(ctx context.Context, olderThan time.Time) (int64, error)
}

// MaintenanceService runs periodic storage maintenance as a supervised service.
//
// Each sweep deletes insight snapshots older than the configured retention
// window. The latest snapshot always survives a sweep because the store's
// prune keeps the newest row regardless of age.
//
// Example usage:
//
//	svc := services.NewMaintenanceService(st, cfg.Database.SnapshotRetention, logger)
//	tree.AddDataService(svc)
type MaintenanceService struct {
	pruner    SnapshotPruner
	retention time.Duration
	logger    zerolog.Logger
	name      string
}

// NewMaintenanceService creates a new maintenance service wrapper.
//
// A retention of zero (or less) disables pruning; the service completes
// immediately without scheduling any sweeps.
func NewMaintenanceService(pruner SnapshotPruner, retention time.Duration, logger zerolog.Logger) *MaintenanceService {
	return &MaintenanceService{
		pruner:    pruner,
		retention: retention,
		logger:    logger,
		name:      "maintenance",
	}
}

// Serve implements suture.Service.
//
// This method:
//  1. Runs one sweep immediately so long-stopped deployments catch up
//  2. Repeats the sweep every maintenanceInterval
//  3. Returns ctx.Err() when the context is canceled
//
// Sweep failures are logged and retried on the next tick rather than
// crashing the service; a transient database error should not trigger
// supervisor backoff.
func (m *MaintenanceService) Serve(ctx context.Context) error {
	if m.retention <= 0 {
		m.logger.Info().Msg("Snapshot retention disabled, maintenance service exiting")
		return suture.ErrDoNotRestart
	}

	m.sweep(ctx)

	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.sweep(ctx)
		}
	}
}

// sweep prunes snapshots older than the retention cutoff.
func (m *MaintenanceService) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-m.retention)

	pruned, err := m.pruner.PruneSnapshots(ctx, cutoff)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		m.logger.Warn().Err(err).Msg("Snapshot prune failed, will retry next sweep")
		return
	}

	if pruned > 0 {
		m.logger.Info().
			Int64("pruned", pruned).
			Time("cutoff", cutoff).
			Msg("Pruned expired insight snapshots")
	}
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (m *MaintenanceService) String() string {
	return m.name
}
