package handlers

import (
	"context"
	"time"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jjenkins/billt/internal/model"
	"github.com/jjenkins/billt/internal/service"
)

// BillReader is the read side of the bill archive
type BillReader interface {
	GetAllSorted(ctx context.Context, sortBy, order string) ([]model.ArchivedBill, error)
	GetByID(ctx context.Context, billID int) (*model.ArchivedBill, error)
	GetSnapshots(ctx context.Context, billID int) ([]model.BillSnapshot, error)
	GetSnapshotDates(ctx context.Context) ([]time.Time, error)
	CountBills(ctx context.Context) (int, error)
}

// RunReader lists recorded archive runs
type RunReader interface {
	GetRecent(ctx context.Context, limit int) ([]model.SearchRun, error)
}

// MetricsCalculator produces the archive overview
type MetricsCalculator interface {
	Calculate(ctx context.Context) (*service.SystemMetrics, error)
}

func render(c *fiber.Ctx, page templ.Component) error {
	return adaptor.HTTPHandler(templ.Handler(page))(c)
}
