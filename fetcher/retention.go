// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package fetcher

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/louisbertrand/map-louis/config"
	"github.com/louisbertrand/map-louis/metrics"
)

// Janitor trims measurement and location history past the retention
// window. Device rows and the alert log are never touched.
type Janitor struct {
	db      *sql.DB
	cfg     config.RetentionConfig
	metrics *metrics.Metrics

	now func() time.Time
}

func NewJanitor(db *sql.DB, cfg config.RetentionConfig, m *metrics.Metrics) *Janitor {
	return &Janitor{db: db, cfg: cfg, metrics: m, now: time.Now}
}

// Run cleans immediately, then on every cleanup interval until ctx is
// cancelled.
func (j *Janitor) Run(ctx context.Context) {
	slog.Info("retention janitor started",
		"max_data_days", j.cfg.MaxDataDays, "interval", j.cfg.CleanupInterval)

	ticker := time.NewTicker(j.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		if err := j.Clean(); err != nil {
			slog.Error("retention cleanup failed", "error", err)
		}

		select {
		case <-ctx.Done():
			slog.Info("retention janitor stopped")
			return
		case <-ticker.C:
		}
	}
}

// Clean deletes rows older than the retention window once.
func (j *Janitor) Clean() error {
	cutoff := j.now().UTC().AddDate(0, 0, -j.cfg.MaxDataDays)

	for _, table := range []string{"measurements", "locations"} {
		res, err := j.db.Exec(
			fmt.Sprintf("DELETE FROM %s WHERE when_captured < ?", table), cutoff)
		if err != nil {
			return fmt.Errorf("failed to clean %s: %w", table, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			j.metrics.RetentionDeleted.WithLabelValues(table).Add(float64(n))
			slog.Info("retention cleanup removed rows", "table", table, "rows", n, "cutoff", cutoff)
		}
	}

	return nil
}
