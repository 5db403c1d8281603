package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jjenkins/billt/internal/model"
)

const billColumns = `bill_id, state, bill_number, title, url, last_action_date, last_action,
	status, status_date, relevance, checksum, last_query, fetched_at, created_at`

// BillStore handles database operations for archived bills
type BillStore struct {
	db *sql.DB
}

// NewBillStore creates a new BillStore
func NewBillStore(db *sql.DB) *BillStore {
	return &BillStore{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBill(row scanner) (model.ArchivedBill, error) {
	var b model.ArchivedBill
	err := row.Scan(
		&b.BillID,
		&b.State,
		&b.BillNumber,
		&b.Title,
		&b.URL,
		&b.LastActionDate,
		&b.LastAction,
		&b.Status,
		&b.StatusDate,
		&b.Relevance,
		&b.Checksum,
		&b.LastQuery,
		&b.FetchedAt,
		&b.CreatedAt,
	)
	return b, err
}

// GetByID retrieves a bill by its LegiScan id. A missing bill is (nil, nil).
func (s *BillStore) GetByID(ctx context.Context, billID int) (*model.ArchivedBill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE bill_id = $1`

	b, err := scanBill(s.db.QueryRowContext(ctx, query, billID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill %d: %w", billID, err)
	}

	return &b, nil
}

// SaveBillWithSnapshot upserts the bill's current state and records a snapshot
// only when its checksum differs from the most recent snapshot.
func (s *BillStore) SaveBillWithSnapshot(ctx context.Context, b *model.ArchivedBill, snapshotDate time.Time) (changed bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var latest sql.NullString
	err = tx.QueryRowContext(ctx, `
		SELECT checksum FROM bill_snapshots
		WHERE bill_id = $1
		ORDER BY snapshot_date DESC
		LIMIT 1
	`, b.BillID).Scan(&latest)
	if err != nil && err != sql.ErrNoRows {
		return false, fmt.Errorf("failed to read latest snapshot for bill %d: %w", b.BillID, err)
	}

	changed = !latest.Valid || latest.String != b.Checksum

	// Without detail the stored status is kept and echoed back for the snapshot
	err = tx.QueryRowContext(ctx, `
		INSERT INTO bills (bill_id, state, bill_number, title, url, last_action_date,
		                   last_action, status, status_date, relevance, checksum, last_query, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (bill_id) DO UPDATE SET
			state = EXCLUDED.state,
			bill_number = EXCLUDED.bill_number,
			title = EXCLUDED.title,
			url = EXCLUDED.url,
			last_action_date = EXCLUDED.last_action_date,
			last_action = EXCLUDED.last_action,
			status = CASE WHEN $14 THEN EXCLUDED.status ELSE bills.status END,
			status_date = CASE WHEN $14 THEN EXCLUDED.status_date ELSE bills.status_date END,
			relevance = EXCLUDED.relevance,
			checksum = EXCLUDED.checksum,
			last_query = EXCLUDED.last_query,
			fetched_at = EXCLUDED.fetched_at
		RETURNING status, status_date
	`,
		b.BillID,
		b.State,
		b.BillNumber,
		b.Title,
		b.URL,
		b.LastActionDate,
		b.LastAction,
		b.Status.Code(),
		b.StatusDate,
		b.Relevance,
		b.Checksum,
		b.LastQuery,
		b.FetchedAt,
		b.HasDetail,
	).Scan(&b.Status, &b.StatusDate)
	if err != nil {
		return false, fmt.Errorf("failed to upsert bill %d: %w", b.BillID, err)
	}

	if changed {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO bill_snapshots (bill_id, title, last_action_date, last_action,
			                            status, checksum, snapshot_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (bill_id, snapshot_date) DO UPDATE SET
				title = EXCLUDED.title,
				last_action_date = EXCLUDED.last_action_date,
				last_action = EXCLUDED.last_action,
				status = EXCLUDED.status,
				checksum = EXCLUDED.checksum
		`,
			b.BillID,
			b.Title,
			b.LastActionDate,
			b.LastAction,
			b.Status.Code(),
			b.Checksum,
			snapshotDate,
		)
		if err != nil {
			return false, fmt.Errorf("failed to insert snapshot for bill %d: %w", b.BillID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return changed, nil
}

var sortColumns = map[string]string{
	"id":          "bill_id",
	"state":       "state",
	"number":      "bill_number",
	"title":       "title",
	"relevance":   "relevance",
	"last_action": "last_action_date",
	"status":      "status",
}

// orderClause maps user-facing sort keys onto a whitelisted ORDER BY clause
func orderClause(sortBy, order string) string {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = "last_action_date"
	}

	sortOrder := "DESC"
	if order == "asc" {
		sortOrder = "ASC"
	}

	return fmt.Sprintf("ORDER BY %s %s NULLS LAST, bill_id ASC", column, sortOrder)
}

// GetAllSorted retrieves all archived bills with custom sorting
func (s *BillStore) GetAllSorted(ctx context.Context, sortBy, order string) ([]model.ArchivedBill, error) {
	query := `SELECT ` + billColumns + ` FROM bills ` + orderClause(sortBy, order)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get bills: %w", err)
	}
	defer rows.Close()

	var bills []model.ArchivedBill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, b)
	}

	return bills, rows.Err()
}

// GetSnapshots retrieves all snapshots for a bill ordered by date descending
func (s *BillStore) GetSnapshots(ctx context.Context, billID int) ([]model.BillSnapshot, error) {
	query := `
		SELECT id, bill_id, title, last_action_date, last_action, status,
		       checksum, snapshot_date, created_at
		FROM bill_snapshots
		WHERE bill_id = $1
		ORDER BY snapshot_date DESC
	`

	rows, err := s.db.QueryContext(ctx, query, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshots for bill %d: %w", billID, err)
	}
	defer rows.Close()

	var snapshots []model.BillSnapshot
	for rows.Next() {
		var snap model.BillSnapshot
		err := rows.Scan(
			&snap.ID,
			&snap.BillID,
			&snap.Title,
			&snap.LastActionDate,
			&snap.LastAction,
			&snap.Status,
			&snap.Checksum,
			&snap.SnapshotDate,
			&snap.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snap)
	}

	return snapshots, rows.Err()
}

// GetSnapshotDates returns all unique snapshot dates
func (s *BillStore) GetSnapshotDates(ctx context.Context) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT snapshot_date FROM bill_snapshots ORDER BY snapshot_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("failed to scan date: %w", err)
		}
		dates = append(dates, date)
	}

	return dates, rows.Err()
}

// CountBills returns the total number of archived bills
func (s *BillStore) CountBills(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bills").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count bills: %w", err)
	}
	return count, nil
}

// CountSnapshots returns the total number of recorded snapshots
func (s *BillStore) CountSnapshots(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bill_snapshots").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return count, nil
}

// CountByStatus returns the number of archived bills per status
func (s *BillStore) CountByStatus(ctx context.Context) (map[model.Status]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM bills GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count bills by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.Status]int)
	for rows.Next() {
		var code, n int
		if err := rows.Scan(&code, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		status, err := model.StatusFromCode(code)
		if err != nil {
			continue
		}
		counts[status] = n
	}

	return counts, rows.Err()
}

// StateCount is a jurisdiction with its number of archived bills
type StateCount struct {
	State string
	Count int
}

// TopStates returns the jurisdictions with the most archived bills
func (s *BillStore) TopStates(ctx context.Context, limit int) ([]StateCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT state, COUNT(*) AS n FROM bills
		GROUP BY state
		ORDER BY n DESC, state ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top states: %w", err)
	}
	defer rows.Close()

	var states []StateCount
	for rows.Next() {
		var sc StateCount
		if err := rows.Scan(&sc.State, &sc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan state count: %w", err)
		}
		states = append(states, sc)
	}

	return states, rows.Err()
}
