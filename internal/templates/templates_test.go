package templates

import (
	"bytes"
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/billt/internal/model"
)

func TestBillsTableBody_EscapesFields(t *testing.T) {
	bills := []model.ArchivedBill{{
		BillID:     42,
		State:      "CA",
		BillNumber: "AB<1>",
		Title:      `Tax & "fees" <script>alert(1)</script>`,
		Status:     model.StatusIntroduced,
		LastActionDate: sql.NullTime{
			Time:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Valid: true,
		},
		LastAction: "Read first time",
	}}

	var buf bytes.Buffer
	require.NoError(t, BillsTableBody(bills, "state", "asc").Render(context.Background(), &buf))

	out := buf.String()
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "Tax &amp; &#34;fees&#34;")
	assert.Contains(t, out, "AB&lt;1&gt;")
	assert.Contains(t, out, `<a href="/bills/42">`)
	assert.Contains(t, out, "2024-03-01")
}

func TestBillsTableBody_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, BillsTableBody(nil, "", "").Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "No bills archived yet.")
}

func TestBillDetail_UnsafeURL(t *testing.T) {
	b := &model.ArchivedBill{BillID: 7, URL: "javascript:alert(1)"}

	var buf bytes.Buffer
	require.NoError(t, BillDetail(b, nil).Render(context.Background(), &buf))

	out := buf.String()
	assert.Contains(t, out, "<title>Bill 7 · billt</title>")
	assert.NotContains(t, out, `href="javascript:`)
	assert.Contains(t, out, "No snapshots recorded.")
}
