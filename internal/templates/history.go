package templates

import (
	"context"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/jjenkins/billt/internal/model"
)

func History(dates []time.Time, runs []model.SearchRun, totalBills int) templ.Component {
	return layout("History", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &writer{w: w}

		p.printf(`<p class="muted">%d bills archived, changes recorded on %d days.</p>`+"\n", totalBills, len(dates))

		p.printf("<h2>Recent runs</h2>\n")
		if len(runs) == 0 {
			p.printf(`<p class="muted">No runs yet.</p>` + "\n")
		} else {
			p.printf("<table>\n<thead><tr><th>Started</th><th>Query</th><th>State</th><th>Year</th><th>Bills</th><th>Changed</th></tr></thead>\n<tbody>\n")
			for _, r := range runs {
				p.printf("<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%d</td></tr>\n",
					r.StartedAt.Format("2006-01-02 15:04"), esc(r.Query), esc(r.State), esc(r.Year), r.BillCount, r.Changed)
			}
			p.printf("</tbody>\n</table>\n")
		}

		p.printf("<h2>Snapshot dates</h2>\n<ul>\n")
		for _, d := range dates {
			p.printf("<li>%s</li>\n", d.Format("2006-01-02"))
		}
		p.printf("</ul>\n")

		return p.err
	}))
}
