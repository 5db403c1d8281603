package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/billt/internal/templates"
)

func BillsHandler(bills BillReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sortBy := c.Query("sort", "last_action")
		order := c.Query("order", "desc")

		list, err := bills.GetAllSorted(c.UserContext(), sortBy, order)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading bills")
		}

		// htmx re-sorts swap only the table body
		if c.Get("HX-Request") == "true" {
			return render(c, templates.BillsTableBody(list, sortBy, order))
		}

		return render(c, templates.Bills(list, sortBy, order))
	}
}

func BillDetailHandler(bills BillReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid bill id")
		}

		bill, err := bills.GetByID(ctx, id)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading bill")
		}
		if bill == nil {
			return c.Status(fiber.StatusNotFound).SendString("Bill not found")
		}

		snapshots, err := bills.GetSnapshots(ctx, id)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading snapshots")
		}

		return render(c, templates.BillDetail(bill, snapshots))
	}
}
