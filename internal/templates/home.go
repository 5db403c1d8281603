package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/jjenkins/billt/internal/model"
	"github.com/jjenkins/billt/internal/store"
)

// HomeMetrics is the archive overview shown on the landing page
type HomeMetrics struct {
	HasData        bool
	TotalBills     int
	TotalSnapshots int
	TotalRuns      int
	ByStatus       map[model.Status]int
	TopStates      []store.StateCount
	LastRun        *model.SearchRun
}

var statusOrder = []model.Status{
	model.StatusIntroduced,
	model.StatusEngrossed,
	model.StatusEnrolled,
	model.StatusPassed,
	model.StatusVetoed,
	model.StatusFailed,
	model.StatusNotAvailable,
}

func Home(m HomeMetrics) templ.Component {
	return layout("Bill archive", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &writer{w: w}

		if !m.HasData {
			p.printf(`<p class="muted">The archive is empty. Run <code>billt archive -q QUERY</code> to add bills.</p>`)
			return p.err
		}

		p.printf(`<div class="cards">
<div class="card"><strong>%d</strong><br>bills</div>
<div class="card"><strong>%d</strong><br>snapshots</div>
<div class="card"><strong>%d</strong><br>runs</div>
</div>
`, m.TotalBills, m.TotalSnapshots, m.TotalRuns)

		p.printf("<h2>By status</h2>\n<table>\n")
		for _, s := range statusOrder {
			if n := m.ByStatus[s]; n > 0 {
				p.printf("<tr><td>%s</td><td>%d</td></tr>\n", esc(s.String()), n)
			}
		}
		p.printf("</table>\n")

		if len(m.TopStates) > 0 {
			p.printf("<h2>Top jurisdictions</h2>\n<table>\n")
			for _, sc := range m.TopStates {
				p.printf("<tr><td>%s</td><td>%d</td></tr>\n", esc(sc.State), sc.Count)
			}
			p.printf("</table>\n")
		}

		if r := m.LastRun; r != nil {
			p.printf(`<p class="muted">Last run %s: &ldquo;%s&rdquo; (%s, %s), %d bills, %d changed</p>`+"\n",
				r.StartedAt.Format("2006-01-02 15:04"), esc(r.Query), esc(r.State), esc(r.Year), r.BillCount, r.Changed)
		}

		return p.err
	}))
}
