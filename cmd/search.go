package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jjenkins/billt/internal/config"
	"github.com/jjenkins/billt/internal/export"
	"github.com/jjenkins/billt/internal/model"
	"github.com/jjenkins/billt/internal/service"
	"github.com/jjenkins/billt/internal/store"
)

var (
	searchQuery   string
	searchFilters queryFlags
	searchOutput  string
	searchSheet   string
	searchSave    bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search LegiScan and export every matching bill",
	Long: `Search runs one query against the LegiScan API, fetches every page of
results, ranks them by relevance and writes them to CSV. The results are
also merged into the local store for "billt browse".

Examples:
  # All sessions, all states, written to water.csv
  billt search -q water

  # Current session in California with status detail
  billt search -q "water rights" -s CA -y current --details

  # Also export to a new Google Sheet
  billt search -q water --sheet new`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "Full-text search query")
	searchFilters.register(searchCmd.Flags())
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "", "CSV output path (default <query>.csv)")
	searchCmd.Flags().StringVar(&searchSheet, "sheet", "", `Google Sheets spreadsheet id to overwrite, or "new"`)
	searchCmd.Flags().BoolVar(&searchSave, "save", false, "Remember the query for \"billt batch --saved\"")
	searchCmd.MarkFlagRequired("query")
}

func runSearch(cmd *cobra.Command, args []string) error {
	q, err := searchFilters.query(searchQuery)
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	runner := service.NewRunner(client, log.Logger, os.Stdout)
	result, err := runner.Run(ctx, q)
	if err != nil {
		return err
	}
	runner.PrintSummary(result.Stats)

	path := searchOutput
	if path == "" {
		path = export.DefaultPath(q.Text)
	}
	if err := export.NewCSVSink(path).Write(ctx, result.Rows); err != nil {
		return err
	}
	fmt.Printf("Saved to %s\n", path)

	if searchSheet != "" {
		if err := writeSheet(ctx, q, result.Rows); err != nil {
			return err
		}
	}

	db, err := store.ReadLocal(cfg.DBPath)
	if err != nil {
		return err
	}
	added, updated := db.Merge(result.Rows, time.Now())
	if searchSave {
		db.AddSavedSearch(q.Text)
	}
	if err := db.Write(cfg.DBPath); err != nil {
		return err
	}
	log.Info().Int("added", added).Int("updated", updated).Str("path", cfg.DBPath).Msg("local store updated")

	return nil
}

func writeSheet(ctx context.Context, q model.Query, rows []export.Row) error {
	if cfg.SheetsCredentials == "" {
		return fmt.Errorf("--sheet needs a service account: set %s_SHEETS_CREDENTIALS", config.Prefix)
	}

	id := searchSheet
	if id == "new" {
		id = ""
	}

	sink, err := export.NewSheetsSink(ctx, cfg.SheetsCredentials, id, "billt: "+q.Text)
	if err != nil {
		return err
	}
	if err := sink.Write(ctx, rows); err != nil {
		return err
	}

	fmt.Printf("Spreadsheet: %s\n", sink.URL())
	return nil
}
