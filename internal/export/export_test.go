package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/jjenkins/billt/internal/model"
)

func sampleRows() []Row {
	return []Row{
		{
			Query:  "water",
			Bill:   model.Bill{Relevance: 9, State: "CA", BillNumber: "AB1", BillID: 1, Title: "Water, \"clean\""},
			Detail: &model.BillDetail{StateLink: "https://ca", Status: model.StatusPassed, StatusDate: "2023-07-01", Description: "d"},
		},
		{
			Query: "water",
			Bill:  model.Bill{Relevance: 3, BillID: 2},
		},
	}
}

func TestRow_Record(t *testing.T) {
	rows := sampleRows()

	rec := rows[0].Record()
	require.Len(t, rec, len(Header()))
	assert.Equal(t, "water", rec[0])
	assert.Equal(t, "9", rec[1])
	assert.Equal(t, "1", rec[4])
	assert.Equal(t, "Passed", rec[13])

	empty := rows[1].Record()
	assert.Equal(t, []string{"", "", "", ""}, empty[12:])
}

func TestCSVSink_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	sink := NewCSVSink(path)

	require.NoError(t, sink.Write(context.Background(), sampleRows()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Header(), records[0])
	assert.Equal(t, `Water, "clean"`, records[1][11])
	assert.Equal(t, "2", records[2][4])
}

func TestCSVSink_EmptyRowsStillWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, NewCSVSink(path).Write(context.Background(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(Header(), ",")+"\n", string(data))
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, "clean water.csv", DefaultPath("clean water"))
	assert.Equal(t, "a_b.csv", DefaultPath("a/b"))
	assert.Equal(t, "search.csv", DefaultPath("  "))
}

func TestSheetsSink_Write(t *testing.T) {
	var mu sync.Mutex
	var calls []string
	var written sheets.ValueRange

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, r.Method+" "+r.URL.Path)

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v4/spreadsheets":
			w.Write([]byte(`{"spreadsheetId":"sheet-123"}`))
		case r.Method == http.MethodPut && strings.Contains(r.URL.Path, "/values/"):
			body, _ := io.ReadAll(r.Body)
			json.Unmarshal(body, &written)
			w.Write([]byte(`{}`))
		case r.Method == http.MethodGet:
			w.Write([]byte(`{"spreadsheetId":"sheet-123","sheets":[{"properties":{"sheetId":0,"title":"Sheet1"}}]}`))
		default:
			w.Write([]byte(`{}`))
		}
	}))
	defer srv.Close()

	svc, err := sheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	sink := newSheetsSink(svc, "", "water")
	require.NoError(t, sink.Write(context.Background(), sampleRows()))

	assert.Equal(t, "sheet-123", sink.SpreadsheetID)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/sheet-123/edit", sink.URL())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, written.Values, 3)
	assert.Equal(t, "query", written.Values[0][0])
	assert.Equal(t, "AB1", written.Values[1][3])
	assert.Len(t, calls, 5, "create, clear, update, get, batchUpdate: %v", calls)
}
