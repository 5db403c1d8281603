package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CSVSink writes rows to a CSV file, replacing any existing file
type CSVSink struct {
	Path string
}

// NewCSVSink creates a sink writing to path
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{Path: path}
}

// DefaultPath derives the output file name from the query text, e.g. "clean water" -> "clean water.csv"
func DefaultPath(query string) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == filepath.Separator || r == 0 {
			return '_'
		}
		return r
	}, strings.TrimSpace(query))
	if name == "" {
		name = "search"
	}
	return name + ".csv"
}

func (s *CSVSink) Write(ctx context.Context, rows []Row) error {
	f, err := os.Create(s.Path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", s.Path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.Write(row.Record()); err != nil {
			return fmt.Errorf("failed to write bill %d: %w", row.Bill.BillID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", s.Path, err)
	}

	return f.Close()
}
