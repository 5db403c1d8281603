package cmd

import (
	"errors"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jjenkins/billt/internal/service"
	"github.com/jjenkins/billt/internal/store"
)

var (
	archiveQuery   string
	archiveFilters queryFlags
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Search LegiScan and archive the results in PostgreSQL",
	Long: `Archive runs a search and stores every bill in PostgreSQL. The current
state of each bill is updated in place, and a snapshot is recorded whenever
its change hash differs from the last one seen, so repeated runs build a
history of how bills progress.

DATABASE_URL (or BILLT_DATABASE_URL) must point at the database.

Examples:
  billt archive -q water -y current
  billt archive -q "broadband" -s TX --details`,
	RunE: runArchive,
}

func init() {
	rootCmd.AddCommand(archiveCmd)

	archiveCmd.Flags().StringVarP(&archiveQuery, "query", "q", "", "Full-text search query")
	archiveFilters.register(archiveCmd.Flags())
	archiveCmd.MarkFlagRequired("query")
}

func runArchive(cmd *cobra.Command, args []string) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	q, err := archiveFilters.query(archiveQuery)
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	log.Info().Msg("connecting to database")
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	runner := service.NewRunner(client, log.Logger, os.Stdout)
	result, err := runner.Run(ctx, q)
	if err != nil {
		return err
	}
	runner.PrintSummary(result.Stats)

	archiver := service.NewArchiver(store.NewBillStore(db), store.NewRunStore(db), log.Logger, os.Stdout)
	stats, err := archiver.Archive(ctx, q, result.Rows)
	if stats != nil {
		archiver.PrintSummary(stats)
	}
	return err
}
