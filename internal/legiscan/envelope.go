package legiscan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/jjenkins/billt/internal/model"
)

const summaryKey = "summary"

// searchEnvelope is the getSearch response: one "summary" entry plus one entry per bill,
// keyed by arbitrary strings
type searchEnvelope struct {
	Status       string                     `json:"status"`
	SearchResult map[string]json.RawMessage `json:"searchresult"`
}

// billEnvelope is the getBill response
type billEnvelope struct {
	Status string          `json:"status"`
	Bill   json.RawMessage `json:"bill"`
}

// RecordDecodeError is a single search record that failed to decode. It is
// logged and counted, never returned to the caller of Search.
type RecordDecodeError struct {
	Key string
	Err error
}

func (e *RecordDecodeError) Error() string {
	return fmt.Sprintf("search record %q: %v", e.Key, e.Err)
}

func (e *RecordDecodeError) Unwrap() error {
	return e.Err
}

// Page is one decoded page of search results.
// Summary is nil when the API sent no usable summary, which means "no results".
type Page struct {
	Summary *model.Summary
	Bills   []model.Bill
	Skipped []*RecordDecodeError
}

// decodeSearchPage splits a getSearch body into its summary and bill records
func decodeSearchPage(raw json.RawMessage) (*Page, error) {
	var env searchEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to parse search envelope: %w", err)
	}

	page := &Page{}

	if rawSummary, ok := env.SearchResult[summaryKey]; ok && !isNull(rawSummary) {
		var summary model.Summary
		if err := json.Unmarshal(rawSummary, &summary); err == nil {
			page.Summary = &summary
		}
	}

	for _, key := range sortedKeys(env.SearchResult) {
		if key == summaryKey {
			continue
		}

		var bill model.Bill
		if err := json.Unmarshal(env.SearchResult[key], &bill); err != nil {
			page.Skipped = append(page.Skipped, &RecordDecodeError{Key: key, Err: err})
			continue
		}
		page.Bills = append(page.Bills, bill)
	}

	return page, nil
}

// decodeBillDetail extracts the detail record from a getBill body. Unlike
// search pages there is no tolerance here.
func decodeBillDetail(raw json.RawMessage) (model.BillDetail, error) {
	var env billEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return model.BillDetail{}, fmt.Errorf("failed to parse bill envelope: %w", err)
	}
	if isNull(env.Bill) {
		return model.BillDetail{}, errors.New("bill envelope has no bill record")
	}

	var detail model.BillDetail
	if err := json.Unmarshal(env.Bill, &detail); err != nil {
		return model.BillDetail{}, fmt.Errorf("failed to parse bill record: %w", err)
	}
	return detail, nil
}

// isNull reports whether raw is absent or the JSON literal null
func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// sortedKeys orders result keys numerically when they are numbers so page
// order is deterministic
func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})

	return keys
}
