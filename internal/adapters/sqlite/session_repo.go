package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/rover/internal/ports/secondary"
)

// SessionRepository implements secondary.SessionStore with SQLite.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Start opens a new session row and returns its ID.
func (r *SessionRepository) Start(ctx context.Context, pattern string, at time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO patrol_sessions (started_at, pattern) VALUES (?, ?)`,
		at, pattern,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to start session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get session id: %w", err)
	}
	return id, nil
}

// End closes a session with its final statistics.
func (r *SessionRepository) End(ctx context.Context, id int64, at time.Time, coveragePercent float64, attempts, successes int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE patrol_sessions SET ended_at = ?, coverage_percent = ?, attempts = ?, successes = ? WHERE id = ?`,
		at, coveragePercent, attempts, successes, id,
	)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("session %d not found", id)
	}
	return nil
}

// Latest returns the most recent session, or nil when none exist.
func (r *SessionRepository) Latest(ctx context.Context) (*secondary.SessionRecord, error) {
	var (
		endedAt  sql.NullTime
		coverage sql.NullFloat64
	)

	record := &secondary.SessionRecord{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, started_at, ended_at, pattern, coverage_percent, attempts, successes FROM patrol_sessions ORDER BY id DESC LIMIT 1`,
	).Scan(&record.ID, &record.StartedAt, &endedAt, &record.Pattern, &coverage, &record.Attempts, &record.Successes)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest session: %w", err)
	}
	record.EndedAt = endedAt.Time
	record.CoveragePercent = coverage.Float64

	return record, nil
}

// Ensure SessionRepository implements the interface
var _ secondary.SessionStore = (*SessionRepository)(nil)
