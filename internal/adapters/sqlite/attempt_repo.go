// Package sqlite contains SQLite implementations of the store interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/example/rover/internal/ports/secondary"
)

// AttemptRepository implements secondary.AttemptStore with SQLite.
type AttemptRepository struct {
	db *sql.DB
}

// NewAttemptRepository creates a new SQLite attempt repository.
func NewAttemptRepository(db *sql.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Append persists a new attempt record. The record's ID must be
// pre-populated by the caller.
func (r *AttemptRepository) Append(ctx context.Context, record *secondary.AttemptRecord) error {
	strategies, err := json.Marshal(record.Strategies)
	if err != nil {
		return fmt.Errorf("failed to encode strategies: %w", err)
	}
	snapshot, err := json.Marshal(record.TimingSnapshot)
	if err != nil {
		return fmt.Errorf("failed to encode timing snapshot: %w", err)
	}

	var failureReason sql.NullString
	if record.FailureReason != "" {
		failureReason = sql.NullString{String: record.FailureReason, Valid: true}
	}
	var sessionID sql.NullInt64
	if record.SessionID != 0 {
		sessionID = sql.NullInt64{Int64: record.SessionID, Valid: true}
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO attempts (id, ts, x, y, strategies, success, failure_reason, timing_snapshot, session_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Timestamp,
		record.X,
		record.Y,
		string(strategies),
		record.Success,
		failureReason,
		string(snapshot),
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to append attempt: %w", err)
	}

	return nil
}

// Recent returns the newest n attempt records, newest first.
func (r *AttemptRepository) Recent(ctx context.Context, n int) ([]*secondary.AttemptRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ts, x, y, strategies, success, failure_reason, timing_snapshot, session_id FROM attempts ORDER BY ts DESC LIMIT ?`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*secondary.AttemptRecord
	for rows.Next() {
		record, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, record)
	}

	return attempts, rows.Err()
}

// SuccessRate returns the success fraction over the newest window
// records, or over all records when window <= 0.
func (r *AttemptRepository) SuccessRate(ctx context.Context, window int) (float64, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(success), 0) FROM attempts`
	args := []any{}
	if window > 0 {
		query = `SELECT COUNT(*), COALESCE(SUM(success), 0) FROM (SELECT success FROM attempts ORDER BY ts DESC LIMIT ?)`
		args = append(args, window)
	}

	var total, successes int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total, &successes); err != nil {
		return 0, fmt.Errorf("failed to compute success rate: %w", err)
	}
	if total == 0 {
		return 0, nil
	}
	return float64(successes) / float64(total), nil
}

func scanAttempt(rows *sql.Rows) (*secondary.AttemptRecord, error) {
	var (
		strategies    string
		snapshot      string
		failureReason sql.NullString
		sessionID     sql.NullInt64
	)

	record := &secondary.AttemptRecord{}
	err := rows.Scan(&record.ID, &record.Timestamp, &record.X, &record.Y, &strategies, &record.Success, &failureReason, &snapshot, &sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to scan attempt: %w", err)
	}

	if err := json.Unmarshal([]byte(strategies), &record.Strategies); err != nil {
		return nil, fmt.Errorf("failed to decode strategies for attempt %s: %w", record.ID, err)
	}
	if err := json.Unmarshal([]byte(snapshot), &record.TimingSnapshot); err != nil {
		return nil, fmt.Errorf("failed to decode timing snapshot for attempt %s: %w", record.ID, err)
	}
	record.FailureReason = failureReason.String
	record.SessionID = sessionID.Int64

	return record, nil
}

// Ensure AttemptRepository implements the interface
var _ secondary.AttemptStore = (*AttemptRepository)(nil)
