package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/rover/internal/ports/secondary"
)

// BaselineRepository implements secondary.BaselineStore with SQLite.
type BaselineRepository struct {
	db *sql.DB
}

// NewBaselineRepository creates a new SQLite baseline repository.
func NewBaselineRepository(db *sql.DB) *BaselineRepository {
	return &BaselineRepository{db: db}
}

// Save stores a calibration baseline, replacing any prior baseline for
// the same channel.
func (r *BaselineRepository) Save(ctx context.Context, record secondary.BaselineRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audio_baselines (channel, dominant_freq, amplitude, calibrated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(channel) DO UPDATE SET dominant_freq = excluded.dominant_freq, amplitude = excluded.amplitude, calibrated_at = excluded.calibrated_at`,
		record.Channel,
		record.DominantFreq,
		record.Amplitude,
		record.CalibratedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save baseline for %s: %w", record.Channel, err)
	}
	return nil
}

// LoadAll returns every stored baseline.
func (r *BaselineRepository) LoadAll(ctx context.Context) ([]secondary.BaselineRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT channel, dominant_freq, amplitude, calibrated_at FROM audio_baselines ORDER BY channel`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load baselines: %w", err)
	}
	defer rows.Close()

	var baselines []secondary.BaselineRecord
	for rows.Next() {
		var record secondary.BaselineRecord
		if err := rows.Scan(&record.Channel, &record.DominantFreq, &record.Amplitude, &record.CalibratedAt); err != nil {
			return nil, fmt.Errorf("failed to scan baseline: %w", err)
		}
		baselines = append(baselines, record)
	}

	return baselines, rows.Err()
}

// Ensure BaselineRepository implements the interface
var _ secondary.BaselineStore = (*BaselineRepository)(nil)
