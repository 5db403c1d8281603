package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/jjenkins/billt/internal/export"
	"github.com/jjenkins/billt/internal/legiscan"
	"github.com/jjenkins/billt/internal/model"
)

// BillSearcher is the part of the LegiScan client a run needs
type BillSearcher interface {
	Search(ctx context.Context, q model.Query) ([]model.Bill, error)
	Enrich(ctx context.Context, bills []model.Bill) []legiscan.Enriched
}

// RunStats tracks run statistics
type RunStats struct {
	Query        string
	Found        int
	Filtered     int
	Exported     int
	DetailFailed int
	Dropped      int
	Duration     time.Duration
}

// RunResult is the outcome of one search run
type RunResult struct {
	Rows  []export.Row
	Stats *RunStats
}

// Runner orchestrates search, date filter, ranking and optional enrichment
type Runner struct {
	client BillSearcher
	logger zerolog.Logger
	out    io.Writer
}

// NewRunner creates a new Runner. Summaries are printed to out.
func NewRunner(client BillSearcher, logger zerolog.Logger, out io.Writer) *Runner {
	return &Runner{
		client: client,
		logger: logger,
		out:    out,
	}
}

// Run executes one query and returns the rows ready for export.
// Only a failed search aborts the run; failed detail lookups are counted.
func (r *Runner) Run(ctx context.Context, q model.Query) (*RunResult, error) {
	start := time.Now()
	stats := &RunStats{Query: q.Text}

	r.logger.Info().
		Str("query", q.Text).
		Str("state", q.Jurisdiction()).
		Stringer("year", q.Year).
		Msg("searching")

	bills, err := r.client.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", q.Text, err)
	}
	stats.Found = len(bills)

	bills = legiscan.Rank(FilterSince(bills, q.Since))
	stats.Filtered = stats.Found - len(bills)

	rows := make([]export.Row, 0, len(bills))
	if !q.Details {
		for _, b := range bills {
			rows = append(rows, export.Row{Query: q.Text, Bill: b})
		}
	} else {
		for _, e := range r.client.Enrich(ctx, bills) {
			if e.Err != nil {
				stats.DetailFailed++
				r.logger.Warn().Err(e.Err).Int("bill_id", e.Bill.BillID).Msg("detail lookup failed")
				if q.OnDetailError == model.DropRow {
					stats.Dropped++
					continue
				}
				rows = append(rows, export.Row{Query: q.Text, Bill: e.Bill})
				continue
			}
			rows = append(rows, export.Row{Query: q.Text, Bill: e.Bill, Detail: e.Detail})
		}
	}

	stats.Exported = len(rows)
	stats.Duration = time.Since(start)

	return &RunResult{Rows: rows, Stats: stats}, nil
}

// FilterSince keeps bills whose last action is on or after since.
// Bills without a last action date are dropped; an empty since keeps everything.
func FilterSince(bills []model.Bill, since string) []model.Bill {
	if since == "" {
		return bills
	}

	kept := make([]model.Bill, 0, len(bills))
	for _, b := range bills {
		// ISO dates order lexicographically
		if b.LastActionDate != "" && b.LastActionDate >= since {
			kept = append(kept, b)
		}
	}
	return kept
}

// PrintSummary prints the run statistics
func (r *Runner) PrintSummary(stats *RunStats) {
	fmt.Fprintln(r.out, "")
	fmt.Fprintf(r.out, "=== Search Summary: %s ===\n", stats.Query)
	fmt.Fprintf(r.out, "Found:           %d\n", stats.Found)
	fmt.Fprintf(r.out, "Filtered out:    %d (since)\n", stats.Filtered)
	fmt.Fprintf(r.out, "Exported:        %d\n", stats.Exported)
	fmt.Fprintf(r.out, "Detail failed:   %d\n", stats.DetailFailed)
	if stats.Dropped > 0 {
		fmt.Fprintf(r.out, "Dropped:         %d\n", stats.Dropped)
	}
	fmt.Fprintf(r.out, "Duration:        %s\n", stats.Duration.Round(time.Millisecond))
}
