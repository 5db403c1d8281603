package legiscan

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/jjenkins/billt/internal/model"
)

const opBill = "getBill"

// DetailError is a failed getBill lookup for one bill
type DetailError struct {
	BillID int
	Err    error
}

func (e *DetailError) Error() string {
	return fmt.Sprintf("bill %d detail: %v", e.BillID, e.Err)
}

func (e *DetailError) Unwrap() error {
	return e.Err
}

// GetBill fetches the extended status record for one bill
func (c *Client) GetBill(ctx context.Context, billID int) (model.BillDetail, error) {
	body, err := c.Request(ctx, opBill, map[string]string{"id": strconv.Itoa(billID)})
	if err != nil {
		detailFailuresTotal.Inc()
		return model.BillDetail{}, &DetailError{BillID: billID, Err: err}
	}

	detail, err := decodeBillDetail(body)
	if err != nil {
		detailFailuresTotal.Inc()
		return model.BillDetail{}, &DetailError{BillID: billID, Err: err}
	}

	return detail, nil
}

// Enriched pairs a bill with its detail lookup result. Exactly one of Detail and Err is set.
type Enriched struct {
	Bill   model.Bill
	Detail *model.BillDetail
	Err    error
}

// Enrich looks up detail for every bill. Lookups run concurrently and fail
// independently; the result has the same order as bills.
func (c *Client) Enrich(ctx context.Context, bills []model.Bill) []Enriched {
	results := make([]Enriched, len(bills))

	var g errgroup.Group
	g.SetLimit(c.concurrency)

	for i, bill := range bills {
		g.Go(func() error {
			results[i].Bill = bill
			detail, err := c.GetBill(ctx, bill.BillID)
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Detail = &detail
			return nil
		})
	}
	g.Wait()

	return results
}
