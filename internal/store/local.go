package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jjenkins/billt/internal/export"
	"github.com/jjenkins/billt/internal/model"
)

// BackupSuffix is appended to the store path for the previous generation
const BackupSuffix = ".bkp"

// Entry is one bill kept in the local store
type Entry struct {
	Bill        model.Bill        `json:"bill"`
	Detail      *model.BillDetail `json:"detail,omitempty"`
	Query       string            `json:"query,omitempty"`
	LastChecked time.Time         `json:"last_checked"`
}

// Local is the JSON document holding every bill seen so far, keyed by bill id
type Local struct {
	Bills         map[int]Entry `json:"bills"`
	SavedSearches []string      `json:"saved_searches"`
}

// NewLocal returns an empty store
func NewLocal() *Local {
	return &Local{
		Bills:         make(map[int]Entry),
		SavedSearches: []string{},
	}
}

// ReadLocal loads the store at path. A missing file yields an empty store.
func ReadLocal(path string) (*Local, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewLocal(), nil
		}
		return nil, fmt.Errorf("error reading store: %w", err)
	}

	db := NewLocal()
	if err := json.Unmarshal(data, db); err != nil {
		return nil, fmt.Errorf("error parsing store %s: %w", path, err)
	}

	if db.Bills == nil {
		db.Bills = make(map[int]Entry)
	}
	if db.SavedSearches == nil {
		db.SavedSearches = []string{}
	}

	return db, nil
}

// Write saves the store to path. The previous file, if any, is copied to
// path+".bkp" first; only that one generation is kept.
func (db *Local) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating store directory: %w", err)
	}

	if err := copyFile(path, path+BackupSuffix); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error backing up store: %w", err)
	}

	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling store: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("error writing temporary store: %w", err)
	}

	// Rename temporary file to actual file (atomic operation)
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("error saving store: %w", err)
	}

	return nil
}

// Merge inserts or overwrites an entry for every row
func (db *Local) Merge(rows []export.Row, now time.Time) (added, updated int) {
	for _, row := range rows {
		if _, exists := db.Bills[row.Bill.BillID]; exists {
			updated++
		} else {
			added++
		}
		db.Bills[row.Bill.BillID] = Entry{
			Bill:        row.Bill,
			Detail:      row.Detail,
			Query:       row.Query,
			LastChecked: now,
		}
	}
	return added, updated
}

// Entries returns a snapshot of all entries, most recently checked first
func (db *Local) Entries() []Entry {
	entries := make([]Entry, 0, len(db.Bills))
	for _, e := range db.Bills {
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].LastChecked.Equal(entries[j].LastChecked) {
			return entries[i].LastChecked.After(entries[j].LastChecked)
		}
		return entries[i].Bill.BillID < entries[j].Bill.BillID
	})

	return entries
}

// AddSavedSearch records a query for later batch runs. Blank and duplicate queries are ignored.
func (db *Local) AddSavedSearch(query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return false
	}
	for _, s := range db.SavedSearches {
		if s == query {
			return false
		}
	}
	db.SavedSearches = append(db.SavedSearches, query)
	return true
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
