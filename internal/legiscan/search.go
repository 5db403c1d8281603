package legiscan

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/jjenkins/billt/internal/model"
)

const opSearch = "getSearch"

// maxPages bounds the page count taken from a summary before any allocation
const maxPages = 2000

// SearchPage fetches and decodes a single page (1-indexed) of results
func (c *Client) SearchPage(ctx context.Context, q model.Query, page int) (*Page, error) {
	params := map[string]string{
		"state": q.Jurisdiction(),
		"year":  strconv.Itoa(q.Year.Code()),
		"query": q.Text,
		"page":  strconv.Itoa(page),
	}

	body, err := c.Request(ctx, opSearch, params)
	if err != nil {
		return nil, err
	}

	p, err := decodeSearchPage(body)
	if err != nil {
		return nil, &TransportError{Op: opSearch, Err: err}
	}

	for _, skipped := range p.Skipped {
		recordsSkippedTotal.Inc()
		c.logger.Warn().Err(skipped.Err).Str("key", skipped.Key).Int("page", page).Msg("skipping undecodable search record")
	}

	return p, nil
}

// Search fetches every page of results for q and returns them ranked by relevance.
// The page count is only known once page 1 has been decoded; the remaining
// pages are fetched concurrently. The first failed page fails the search.
func (c *Client) Search(ctx context.Context, q model.Query) ([]model.Bill, error) {
	first, err := c.SearchPage(ctx, q, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page 1: %w", err)
	}

	if first.Summary == nil {
		c.logger.Info().Str("query", q.Text).Msg("no summary in response, treating as zero results")
		return []model.Bill{}, nil
	}

	total := int(first.Summary.PageTotal)
	c.logger.Debug().
		Str("query", q.Text).
		Int("count", int(first.Summary.Count)).
		Int("page_total", total).
		Msg("search summary")

	if total <= 0 {
		return []model.Bill{}, nil
	}
	if total > maxPages || (first.Summary.Count > 0 && total > int(first.Summary.Count)) {
		return nil, &TransportError{
			Op:  opSearch,
			Err: fmt.Errorf("implausible page_total %d for %d results", total, int(first.Summary.Count)),
		}
	}

	pages := make([][]model.Bill, total)
	pages[0] = first.Bills

	// a failed page does not cancel its siblings
	var g errgroup.Group
	g.SetLimit(c.concurrency)

	for page := 2; page <= total; page++ {
		g.Go(func() error {
			p, err := c.SearchPage(ctx, q, page)
			if err != nil {
				return fmt.Errorf("failed to fetch page %d: %w", page, err)
			}
			pages[page-1] = p.Bills
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var bills []model.Bill
	for _, p := range pages {
		bills = append(bills, p...)
	}
	if bills == nil {
		bills = []model.Bill{}
	}

	return Rank(bills), nil
}

// Rank sorts bills by descending relevance. Equal relevance keeps input order.
func Rank(bills []model.Bill) []model.Bill {
	sort.SliceStable(bills, func(i, j int) bool {
		return bills[i].Relevance > bills[j].Relevance
	})
	return bills
}
