package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jjenkins/billt/internal/templates"
)

const recentRuns = 20

func HistoryHandler(bills BillReader, runs RunReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		dates, err := bills.GetSnapshotDates(ctx)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading bill snapshots")
		}

		recent, err := runs.GetRecent(ctx, recentRuns)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading runs")
		}

		total, err := bills.CountBills(ctx)
		if err != nil {
			log.Error().Err(err).Msg("error counting bills")
		}

		return render(c, templates.History(dates, recent, total))
	}
}
