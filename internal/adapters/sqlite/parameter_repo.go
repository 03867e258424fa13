package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/rover/internal/ports/secondary"
)

// ParameterRepository implements secondary.ParameterStore with SQLite.
type ParameterRepository struct {
	db *sql.DB
}

// NewParameterRepository creates a new SQLite parameter repository.
func NewParameterRepository(db *sql.DB) *ParameterRepository {
	return &ParameterRepository{db: db}
}

// SaveAll upserts every learned parameter in one transaction so a
// crash mid-save cannot leave a half-written set.
func (r *ParameterRepository) SaveAll(ctx context.Context, records []secondary.ParameterRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, record := range records {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO learned_parameters (name, value, samples, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET value = excluded.value, samples = excluded.samples, updated_at = excluded.updated_at`,
			record.Name,
			record.Value,
			record.Samples,
			record.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save parameter %s: %w", record.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit parameters: %w", err)
	}
	return nil
}

// LoadAll returns every stored parameter.
func (r *ParameterRepository) LoadAll(ctx context.Context) ([]secondary.ParameterRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, value, samples, updated_at FROM learned_parameters ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load parameters: %w", err)
	}
	defer rows.Close()

	var parameters []secondary.ParameterRecord
	for rows.Next() {
		var record secondary.ParameterRecord
		if err := rows.Scan(&record.Name, &record.Value, &record.Samples, &record.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan parameter: %w", err)
		}
		parameters = append(parameters, record)
	}

	return parameters, rows.Err()
}

// Ensure ParameterRepository implements the interface
var _ secondary.ParameterStore = (*ParameterRepository)(nil)
