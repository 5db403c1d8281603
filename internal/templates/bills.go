package templates

import (
	"context"
	"database/sql"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/jjenkins/billt/internal/model"
)

var billSortColumns = []struct {
	key   string
	label string
}{
	{"state", "State"},
	{"number", "Number"},
	{"title", "Title"},
	{"relevance", "Relevance"},
	{"status", "Status"},
	{"last_action", "Last action"},
}

func formatDate(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}
	return t.Time.Format("2006-01-02")
}

func Bills(bills []model.ArchivedBill, sortBy, order string) templ.Component {
	return layout("Bills", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &writer{w: w}

		p.printf("<table>\n<thead><tr>")
		for _, col := range billSortColumns {
			next := "asc"
			if col.key == sortBy && order == "asc" {
				next = "desc"
			}
			p.printf(`<th><a href="/bills?sort=%s&amp;order=%s" hx-get="/bills?sort=%s&amp;order=%s" hx-target="#bills-body">%s</a></th>`,
				col.key, next, col.key, next, esc(col.label))
		}
		p.printf("</tr></thead>\n<tbody id=\"bills-body\">\n")
		p.render(ctx, BillsTableBody(bills, sortBy, order))
		p.printf("</tbody>\n</table>\n")

		return p.err
	}))
}

// BillsTableBody renders only the rows, for htmx re-sorting
func BillsTableBody(bills []model.ArchivedBill, sortBy, order string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &writer{w: w}

		if len(bills) == 0 {
			p.printf(`<tr><td colspan="6" class="muted">No bills archived yet.</td></tr>` + "\n")
			return p.err
		}

		for _, b := range bills {
			p.printf(`<tr><td>%s</td><td><a href="/bills/%d">%s</a></td><td>%s</td><td>%d</td><td>%s</td><td>%s<br><span class="muted">%s</span></td></tr>`+"\n",
				esc(b.State), b.BillID, esc(b.BillNumber), esc(b.Title), b.Relevance,
				esc(b.Status.String()), formatDate(b.LastActionDate), esc(b.LastAction))
		}

		return p.err
	})
}

func BillDetail(b *model.ArchivedBill, snapshots []model.BillSnapshot) templ.Component {
	title := b.State + " " + b.BillNumber
	if b.BillNumber == "" {
		title = "Bill " + strconv.Itoa(b.BillID)
	}

	return layout(title, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &writer{w: w}

		p.printf("<p>%s</p>\n<table>\n", esc(b.Title))
		p.printf("<tr><th>Bill id</th><td>%d</td></tr>\n", b.BillID)
		p.printf("<tr><th>Status</th><td>%s %s</td></tr>\n", esc(b.Status.String()), formatDate(b.StatusDate))
		p.printf("<tr><th>Last action</th><td>%s %s</td></tr>\n", formatDate(b.LastActionDate), esc(b.LastAction))
		p.printf("<tr><th>Relevance</th><td>%d</td></tr>\n", b.Relevance)
		p.printf("<tr><th>Found by</th><td>%s</td></tr>\n", esc(b.LastQuery))
		p.printf("<tr><th>Fetched</th><td>%s</td></tr>\n", b.FetchedAt.Format("2006-01-02 15:04"))
		if b.URL != "" {
			p.printf(`<tr><th>LegiScan</th><td><a href="%s">%s</a></td></tr>`+"\n", safeHref(b.URL), esc(b.URL))
		}
		p.printf("</table>\n")

		p.printf("<h2>Changes</h2>\n")
		if len(snapshots) == 0 {
			p.printf(`<p class="muted">No snapshots recorded.</p>` + "\n")
			return p.err
		}

		p.printf("<table>\n<thead><tr><th>Date</th><th>Status</th><th>Last action</th><th>Checksum</th></tr></thead>\n<tbody>\n")
		for _, s := range snapshots {
			p.printf("<tr><td>%s</td><td>%s</td><td>%s %s</td><td><code>%s</code></td></tr>\n",
				s.SnapshotDate.Format("2006-01-02"), esc(s.Status.String()),
				formatDate(s.LastActionDate), esc(s.LastAction), esc(s.Checksum))
		}
		p.printf("</tbody>\n</table>\n")

		return p.err
	}))
}
