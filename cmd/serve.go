package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jjenkins/billt/internal/handlers"
	"github.com/jjenkins/billt/internal/service"
	"github.com/jjenkins/billt/internal/store"
)

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bill archive web viewer",
	Long:  `Start a web server over the PostgreSQL bill archive. Prometheus metrics are served at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Use PORT env var if set, otherwise use flag value
		if envPort := os.Getenv("PORT"); envPort != "" && !cmd.Flags().Changed("port") {
			port = envPort
		}

		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL environment variable is required")
		}

		db, err := store.NewDB(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		billStore := store.NewBillStore(db)
		runStore := store.NewRunStore(db)
		metrics := service.NewMetricsService(billStore, runStore)

		app := fiber.New(fiber.Config{
			AppName: "billt",
		})

		app.Use(logger.New())

		app.Get("/", handlers.HomeHandler(metrics))

		app.Get("/bills", handlers.BillsHandler(billStore))
		app.Get("/bills/:id", handlers.BillDetailHandler(billStore))

		app.Get("/history", handlers.HistoryHandler(billStore, runStore))

		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

		// seed the archive gauges; the home page refreshes them afterwards
		if _, err := metrics.Calculate(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to calculate archive metrics")
		}

		log.Info().Str("port", port).Msg("starting server")
		return app.Listen(":" + port)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&port, "port", "p", "8080", "Port to run the server on")
}
