package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/jjenkins/billt/internal/model"
)

// queryFlags are the search filters shared by search, batch and archive
type queryFlags struct {
	year          model.Year
	state         string
	since         string
	details       bool
	onDetailError string
}

func (f *queryFlags) register(fs *pflag.FlagSet) {
	fs.VarP(&f.year, "year", "y", "Session year: all, current, recent, prior or an exact year > 1900")
	fs.StringVarP(&f.state, "state", "s", "", "Two-letter jurisdiction code (default all)")
	fs.StringVar(&f.since, "since", "", "Only keep bills with a last action on or after this date (YYYY-MM-DD)")
	fs.BoolVar(&f.details, "details", false, "Look up status detail for every bill")
	fs.StringVar(&f.onDetailError, "on-detail-error", string(model.KeepEmptyDetail), "When a detail lookup fails: empty (keep the row) or drop")
}

func (f *queryFlags) query(text string) (model.Query, error) {
	if f.since != "" {
		if _, err := time.Parse("2006-01-02", f.since); err != nil {
			return model.Query{}, fmt.Errorf("invalid --since %q: want YYYY-MM-DD", f.since)
		}
	}

	policy := model.DetailFailurePolicy(f.onDetailError)
	if policy != model.KeepEmptyDetail && policy != model.DropRow {
		return model.Query{}, fmt.Errorf("invalid --on-detail-error %q: want empty or drop", f.onDetailError)
	}

	return model.Query{
		Text:          text,
		State:         f.state,
		Year:          f.year,
		Since:         f.since,
		Details:       f.details,
		OnDetailError: policy,
	}, nil
}
