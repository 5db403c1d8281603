package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jjenkins/billt/internal/model"
)

// RunStore handles database operations for archive runs
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a new RunStore
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// RecordRun inserts one archive run
func (s *RunStore) RecordRun(ctx context.Context, run *model.SearchRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_runs (id, query, state, year, bill_count, changed, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		run.ID,
		run.Query,
		run.State,
		run.Year,
		run.BillCount,
		run.Changed,
		run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	return nil
}

// GetRecent returns the latest runs, newest first
func (s *RunStore) GetRecent(ctx context.Context, limit int) ([]model.SearchRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, query, state, year, bill_count, changed, started_at
		FROM search_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get runs: %w", err)
	}
	defer rows.Close()

	var runs []model.SearchRun
	for rows.Next() {
		var r model.SearchRun
		if err := rows.Scan(&r.ID, &r.Query, &r.State, &r.Year, &r.BillCount, &r.Changed, &r.StartedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// CountRuns returns the total number of recorded runs
func (s *RunStore) CountRuns(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM search_runs").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}
