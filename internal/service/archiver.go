package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jjenkins/billt/internal/export"
	"github.com/jjenkins/billt/internal/model"
)

// BillArchive persists the current state of bills with change snapshots
type BillArchive interface {
	SaveBillWithSnapshot(ctx context.Context, b *model.ArchivedBill, snapshotDate time.Time) (bool, error)
}

// RunRecorder persists archive runs
type RunRecorder interface {
	RecordRun(ctx context.Context, run *model.SearchRun) error
}

// ArchiveStats tracks archive statistics
type ArchiveStats struct {
	RunID     string
	Total     int
	Changed   int
	Unchanged int
	Failed    int
}

// Archiver writes search rows into the PostgreSQL archive
type Archiver struct {
	bills  BillArchive
	runs   RunRecorder
	logger zerolog.Logger
	out    io.Writer
	now    func() time.Time
}

// NewArchiver creates a new Archiver
func NewArchiver(bills BillArchive, runs RunRecorder, logger zerolog.Logger, out io.Writer) *Archiver {
	return &Archiver{
		bills:  bills,
		runs:   runs,
		logger: logger,
		out:    out,
		now:    time.Now,
	}
}

// Archive stores every row and records the run. A bill that fails to save is
// logged and counted; the remaining rows are still archived.
func (a *Archiver) Archive(ctx context.Context, q model.Query, rows []export.Row) (*ArchiveStats, error) {
	started := a.now()
	snapshotDate := time.Date(started.Year(), started.Month(), started.Day(), 0, 0, 0, 0, time.UTC)
	stats := &ArchiveStats{RunID: uuid.NewString(), Total: len(rows)}

	for idx, row := range rows {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		bill := toArchived(row, started)
		changed, err := a.bills.SaveBillWithSnapshot(ctx, bill, snapshotDate)
		if err != nil {
			a.logger.Error().Err(err).Int("bill_id", bill.BillID).Msg("failed to archive bill")
			stats.Failed++
			continue
		}

		event := a.logger.Debug().
			Str("progress", fmt.Sprintf("%d/%d", idx+1, stats.Total)).
			Int("bill_id", bill.BillID)
		if changed {
			event.Msg("bill changed (snapshot created)")
			stats.Changed++
		} else {
			event.Msg("bill unchanged")
			stats.Unchanged++
		}
	}

	run := &model.SearchRun{
		ID:        stats.RunID,
		Query:     q.Text,
		State:     q.Jurisdiction(),
		Year:      q.Year.String(),
		BillCount: stats.Total - stats.Failed,
		Changed:   stats.Changed,
		StartedAt: started,
	}
	if err := a.runs.RecordRun(ctx, run); err != nil {
		return stats, fmt.Errorf("failed to record run: %w", err)
	}

	return stats, nil
}

// PrintSummary prints the archive statistics
func (a *Archiver) PrintSummary(stats *ArchiveStats) {
	fmt.Fprintln(a.out, "")
	fmt.Fprintln(a.out, "=== Archive Summary ===")
	fmt.Fprintf(a.out, "Run:             %s\n", stats.RunID)
	fmt.Fprintf(a.out, "Total bills:     %d\n", stats.Total)
	fmt.Fprintf(a.out, "Changed:         %d\n", stats.Changed)
	fmt.Fprintf(a.out, "Unchanged:       %d\n", stats.Unchanged)
	fmt.Fprintf(a.out, "Failed:          %d\n", stats.Failed)
}

func toArchived(row export.Row, fetchedAt time.Time) *model.ArchivedBill {
	b := row.Bill
	archived := &model.ArchivedBill{
		BillID:         b.BillID,
		State:          b.State,
		BillNumber:     b.BillNumber,
		Title:          b.Title,
		URL:            b.URL,
		LastActionDate: parseDate(b.LastActionDate),
		LastAction:     b.LastAction,
		Status:         model.StatusNotAvailable,
		Relevance:      int(b.Relevance),
		Checksum:       Fingerprint(b, row.Detail),
		LastQuery:      row.Query,
		FetchedAt:      fetchedAt,
	}

	if d := row.Detail; d != nil {
		archived.Status = d.Status
		archived.StatusDate = parseDate(d.StatusDate)
		archived.HasDetail = true
	}

	return archived
}

func parseDate(s string) sql.NullTime {
	if s == "" {
		return sql.NullTime{}
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
