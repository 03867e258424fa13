package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/rover/internal/ports/secondary"
)

// HotspotRepository implements secondary.HotspotStore with SQLite.
type HotspotRepository struct {
	db *sql.DB
}

// NewHotspotRepository creates a new SQLite hotspot repository.
func NewHotspotRepository(db *sql.DB) *HotspotRepository {
	return &HotspotRepository{db: db}
}

// Record increments the detection count for a coverage cell.
func (r *HotspotRepository) Record(ctx context.Context, row, col int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO hotspots (row, col, count, last_seen) VALUES (?, ?, 1, CURRENT_TIMESTAMP)
		 ON CONFLICT(row, col) DO UPDATE SET count = count + 1, last_seen = CURRENT_TIMESTAMP`,
		row, col,
	)
	if err != nil {
		return fmt.Errorf("failed to record hotspot (%d,%d): %w", row, col, err)
	}
	return nil
}

// Hotspots returns cells with at least minCount detections, highest
// count first.
func (r *HotspotRepository) Hotspots(ctx context.Context, minCount int) ([]secondary.Hotspot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT row, col, count, last_seen FROM hotspots WHERE count >= ? ORDER BY count DESC, row, col`,
		minCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotspots: %w", err)
	}
	defer rows.Close()

	var hotspots []secondary.Hotspot
	for rows.Next() {
		var h secondary.Hotspot
		if err := rows.Scan(&h.Row, &h.Col, &h.Count, &h.LastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan hotspot: %w", err)
		}
		hotspots = append(hotspots, h)
	}

	return hotspots, rows.Err()
}

// Ensure HotspotRepository implements the interface
var _ secondary.HotspotStore = (*HotspotRepository)(nil)
