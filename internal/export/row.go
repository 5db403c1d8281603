package export

import (
	"context"
	"strconv"

	"github.com/jjenkins/billt/internal/model"
)

// Row is one exported bill joined with its optional detail and the query that found it
type Row struct {
	Query  string
	Bill   model.Bill
	Detail *model.BillDetail
}

// Sink receives the rows of a finished run
type Sink interface {
	Write(ctx context.Context, rows []Row) error
}

var header = []string{
	"query", "relevance", "state", "bill_number", "bill_id", "change_hash",
	"url", "text_url", "research_url", "last_action_date", "last_action", "title",
	"state_link", "status", "status_date", "description",
}

// Header returns the column names matching Record
func Header() []string {
	out := make([]string, len(header))
	copy(out, header)
	return out
}

// Record flattens the row. Detail columns are blank when there is no detail.
func (r Row) Record() []string {
	b := r.Bill
	rec := []string{
		r.Query,
		strconv.FormatUint(uint64(b.Relevance), 10),
		b.State,
		b.BillNumber,
		strconv.Itoa(b.BillID),
		b.ChangeHash,
		b.URL,
		b.TextURL,
		b.ResearchURL,
		b.LastActionDate,
		b.LastAction,
		b.Title,
		"", "", "", "",
	}

	if d := r.Detail; d != nil {
		rec[12] = d.StateLink
		rec[13] = d.Status.String()
		rec[14] = d.StatusDate
		rec[15] = d.Description
	}

	return rec
}
