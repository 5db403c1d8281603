package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jjenkins/billt/internal/templates"
)

func HomeHandler(metrics MetricsCalculator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := templates.HomeMetrics{}

		m, err := metrics.Calculate(c.UserContext())
		if err != nil {
			log.Error().Err(err).Msg("error calculating archive metrics")
		} else if m != nil {
			page.HasData = m.TotalBills > 0
			page.TotalBills = m.TotalBills
			page.TotalSnapshots = m.TotalSnapshots
			page.TotalRuns = m.TotalRuns
			page.ByStatus = m.ByStatus
			page.TopStates = m.TopStates
			page.LastRun = m.LastRun
		}

		return render(c, templates.Home(page))
	}
}
