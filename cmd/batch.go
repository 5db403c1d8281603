package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jjenkins/billt/internal/export"
	"github.com/jjenkins/billt/internal/service"
	"github.com/jjenkins/billt/internal/store"
)

var (
	batchFilters queryFlags
	batchSaved   bool
)

var batchCmd = &cobra.Command{
	Use:   "batch [QUERY...]",
	Short: "Run several searches, each to its own CSV",
	Long: `Batch runs every query given on the command line, plus the saved
searches when --saved is set. Each query is written to <query>.csv and
merged into the local store. Running with no queries does nothing.

Examples:
  billt batch water wildfire -y current
  billt batch --saved --details`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchFilters.register(batchCmd.Flags())
	batchCmd.Flags().BoolVar(&batchSaved, "saved", false, "Also run the saved searches from the local store")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !batchSaved {
		log.Info().Msg("no queries to run")
		return nil
	}

	db, err := store.ReadLocal(cfg.DBPath)
	if err != nil {
		return err
	}

	queries := append([]string{}, args...)
	if batchSaved {
		queries = append(queries, db.SavedSearches...)
	}
	if len(queries) == 0 {
		log.Info().Msg("no queries to run")
		return nil
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	runner := service.NewRunner(client, log.Logger, os.Stdout)

	var errs []error
	for idx, text := range queries {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		log.Info().Str("progress", fmt.Sprintf("%d/%d", idx+1, len(queries))).Str("query", text).Msg("running batch query")

		q, err := batchFilters.query(text)
		if err != nil {
			return err
		}

		result, err := runner.Run(ctx, q)
		if err != nil {
			log.Error().Err(err).Str("query", text).Msg("search failed")
			errs = append(errs, err)
			continue
		}
		runner.PrintSummary(result.Stats)

		path := export.DefaultPath(text)
		if err := export.NewCSVSink(path).Write(ctx, result.Rows); err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Printf("Saved to %s\n", path)

		db.Merge(result.Rows, time.Now())
	}

	if err := db.Write(cfg.DBPath); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
