package legiscan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/billt/internal/model"
)

// fakeAPI is a minimal LegiScan stand-in that serves canned pages and bills
type fakeAPI struct {
	t        *testing.T
	requests atomic.Int32

	mu        sync.Mutex
	pageHits  map[int]int
	pages     map[int]string
	bills     map[int]string
	failPages map[int]int
}

func newFakeAPI(t *testing.T) *fakeAPI {
	return &fakeAPI{
		t:         t,
		pageHits:  map[int]int{},
		pages:     map[int]string{},
		bills:     map[int]string{},
		failPages: map[int]int{},
	}
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)
	q := r.URL.Query()

	if q.Get("key") != "test-key" {
		w.Write([]byte(`{"status":"ERROR","alert":{"message":"Invalid API key"}}`))
		return
	}

	switch q.Get("op") {
	case "getSearch":
		page, _ := strconv.Atoi(q.Get("page"))
		f.mu.Lock()
		f.pageHits[page]++
		body, ok := f.pages[page]
		status := f.failPages[page]
		f.mu.Unlock()
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(body))
	case "getBill":
		id, _ := strconv.Atoi(q.Get("id"))
		body, ok := f.bills[id]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(body))
	default:
		f.t.Errorf("unexpected op %q", q.Get("op"))
		w.WriteHeader(http.StatusBadRequest)
	}
}

func (f *fakeAPI) hits(page int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pageHits[page]
}

func searchPage(pageTotal int, bills ...string) string {
	result := map[string]json.RawMessage{
		"summary": json.RawMessage(fmt.Sprintf(
			`{"page":"1 of %d","range":"1 - 2","relevancy":"100%% - 1%%","count":%d,"page_current":1,"page_total":%d}`,
			pageTotal, pageTotal*2, pageTotal)),
	}
	for i, b := range bills {
		result[strconv.Itoa(i)] = json.RawMessage(b)
	}
	data, _ := json.Marshal(map[string]any{"status": "OK", "searchresult": result})
	return string(data)
}

func billJSON(id int, relevance int) string {
	return fmt.Sprintf(`{"relevance":%d,"state":"CA","bill_number":"AB%d","bill_id":%d,"url":"https://legiscan.com/CA/bill/AB%d/2023","title":"Bill %d"}`,
		relevance, id, id, id, id)
}

func newTestClient(t *testing.T, api http.Handler, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	logger := zerolog.Nop()
	opts.BaseURL = srv.URL + "/"
	if opts.APIKey == "" {
		opts.APIKey = "test-key"
	}
	opts.Logger = &logger
	return NewClient(opts)
}

func relevances(bills []model.Bill) []uint {
	out := make([]uint, len(bills))
	for i, b := range bills {
		out[i] = b.Relevance
	}
	return out
}

func TestSearch_MultiPage(t *testing.T) {
	api := newFakeAPI(t)
	api.pages[1] = searchPage(3, billJSON(1, 5), billJSON(2, 9))
	api.pages[2] = searchPage(3, billJSON(3, 1), billJSON(4, 7))
	api.pages[3] = searchPage(3, billJSON(5, 3), billJSON(6, 8))

	c := newTestClient(t, api, Options{})
	bills, err := c.Search(context.Background(), model.Query{Text: "water"})
	require.NoError(t, err)

	assert.Equal(t, []uint{9, 8, 7, 5, 3, 1}, relevances(bills))
	assert.Equal(t, int32(3), api.requests.Load())
	for page := 1; page <= 3; page++ {
		assert.Equal(t, 1, api.hits(page), "page %d", page)
	}
}

func TestSearch_NoSummary(t *testing.T) {
	api := newFakeAPI(t)
	api.pages[1] = `{"status":"OK","searchresult":{"0":` + billJSON(1, 5) + `}}`

	c := newTestClient(t, api, Options{})
	bills, err := c.Search(context.Background(), model.Query{Text: "nothing"})
	require.NoError(t, err)

	assert.Empty(t, bills)
	assert.NotNil(t, bills)
	assert.Equal(t, int32(1), api.requests.Load())
}

func TestSearch_MalformedSummary(t *testing.T) {
	api := newFakeAPI(t)
	api.pages[1] = `{"status":"OK","searchresult":{"summary":"no results"}}`

	c := newTestClient(t, api, Options{})
	bills, err := c.Search(context.Background(), model.Query{Text: "nothing"})
	require.NoError(t, err)
	assert.Empty(t, bills)
	assert.Equal(t, int32(1), api.requests.Load())
}

func TestSearch_ZeroPageTotal(t *testing.T) {
	api := newFakeAPI(t)
	api.pages[1] = searchPage(0)

	c := newTestClient(t, api, Options{})
	bills, err := c.Search(context.Background(), model.Query{Text: "nothing"})
	require.NoError(t, err)
	assert.Empty(t, bills)
	assert.Equal(t, int32(1), api.requests.Load())
}

func TestSearch_ImplausiblePageTotal(t *testing.T) {
	tests := []struct {
		name    string
		summary string
	}{
		{"over cap", `{"count":99999999,"page_current":1,"page_total":50000000}`},
		{"more pages than results", `{"count":3,"page_current":1,"page_total":40}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t)
			api.pages[1] = fmt.Sprintf(`{"status":"OK","searchresult":{"summary":%s,"0":%s}}`, tt.summary, billJSON(1, 90))

			c := newTestClient(t, api, Options{})
			bills, err := c.Search(context.Background(), model.Query{Text: "huge"})
			require.Error(t, err)
			assert.Nil(t, bills)

			var te *TransportError
			require.True(t, errors.As(err, &te))
			assert.Contains(t, te.Error(), "page_total")
			assert.Equal(t, int32(1), api.requests.Load())
		})
	}
}

func TestSearch_SkipsBadRecord(t *testing.T) {
	api := newFakeAPI(t)
	api.pages[1] = searchPage(1, billJSON(1, 5), `{"relevance":4,"title":"no id"}`)

	c := newTestClient(t, api, Options{})
	bills, err := c.Search(context.Background(), model.Query{Text: "water"})
	require.NoError(t, err)

	require.Len(t, bills, 1)
	assert.Equal(t, 1, bills[0].BillID)
}

func TestSearch_PageFailure(t *testing.T) {
	api := newFakeAPI(t)
	api.pages[1] = searchPage(3, billJSON(1, 5))
	api.pages[2] = searchPage(3, billJSON(2, 5))
	api.failPages[3] = http.StatusBadGateway

	c := newTestClient(t, api, Options{})
	_, err := c.Search(context.Background(), model.Query{Text: "water"})
	require.Error(t, err)

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.StatusBadGateway, terr.StatusCode)
	assert.Equal(t, 1, api.hits(2), "sibling page should still be fetched")
}

func TestSearch_SendsQueryParameters(t *testing.T) {
	var mu sync.Mutex
	var got map[string]string
	srv := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		mu.Lock()
		defer mu.Unlock()
		got = map[string]string{
			"key": q.Get("key"), "op": q.Get("op"), "state": q.Get("state"),
			"year": q.Get("year"), "query": q.Get("query"), "page": q.Get("page"),
		}
		w.Write([]byte(searchPage(0)))
	})

	lastParams := func() map[string]string {
		mu.Lock()
		defer mu.Unlock()
		return got
	}

	c := newTestClient(t, srv, Options{})
	_, err := c.Search(context.Background(), model.Query{Text: "clean water", State: "TX", Year: model.ExactYear(2023)})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"key": "test-key", "op": "getSearch", "state": "TX",
		"year": "2023", "query": "clean water", "page": "1",
	}, lastParams())

	_, err = c.Search(context.Background(), model.Query{Text: "x", Year: model.Recent})
	require.NoError(t, err)
	assert.Equal(t, "ALL", lastParams()["state"])
	assert.Equal(t, "3", lastParams()["year"])
}

func TestRequest_ErrorEnvelope(t *testing.T) {
	api := newFakeAPI(t)
	c := newTestClient(t, api, Options{APIKey: "wrong"})

	_, err := c.Request(context.Background(), "getSearch", nil)
	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Contains(t, err.Error(), "Invalid API key")
}

func TestRequest_InvalidJSON(t *testing.T) {
	srv := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	})
	c := newTestClient(t, srv, Options{})

	_, err := c.Request(context.Background(), "getSearch", nil)
	var terr *TransportError
	require.True(t, errors.As(err, &terr))
}

func TestRequest_NoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	c := newTestClient(t, srv, Options{})

	_, err := c.Request(context.Background(), "getSearch", nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRequest_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"status":"OK"}`))
	})
	c := newTestClient(t, srv, Options{MaxRetries: 2})

	_, err := c.Request(context.Background(), "getSearch", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRequest_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	})
	c := newTestClient(t, srv, Options{MaxRetries: 3})

	_, err := c.Request(context.Background(), "getSearch", nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRequest_Timeout(t *testing.T) {
	srv := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"status":"OK"}`))
	})
	c := newTestClient(t, srv, Options{Timeout: 20 * time.Millisecond})

	_, err := c.Request(context.Background(), "getSearch", nil)
	var terr *TransportError
	require.True(t, errors.As(err, &terr))
}

func TestRedactKey(t *testing.T) {
	got := redactKey("https://api.legiscan.com/?key=secret&op=getSearch")
	assert.NotContains(t, got, "secret")
	assert.Contains(t, got, "op=getSearch")
}
