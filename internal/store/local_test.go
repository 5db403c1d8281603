package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/billt/internal/export"
	"github.com/jjenkins/billt/internal/model"
)

func TestReadLocal_Missing(t *testing.T) {
	db, err := ReadLocal(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, db.Bills)
	assert.Empty(t, db.SavedSearches)
}

func TestReadLocal_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := ReadLocal(path)
	assert.Error(t, err)
}

func TestLocal_WriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "db.json")
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	db := NewLocal()
	added, updated := db.Merge([]export.Row{
		{Query: "water", Bill: model.Bill{BillID: 10, Title: "A"}},
		{Query: "water", Bill: model.Bill{BillID: 20, Title: "B"}, Detail: &model.BillDetail{Status: model.StatusVetoed}},
	}, now)
	assert.Equal(t, 2, added)
	assert.Equal(t, 0, updated)
	db.AddSavedSearch("water")

	require.NoError(t, db.Write(path))

	loaded, err := ReadLocal(path)
	require.NoError(t, err)
	require.Len(t, loaded.Bills, 2)
	assert.Equal(t, "B", loaded.Bills[20].Bill.Title)
	require.NotNil(t, loaded.Bills[20].Detail)
	assert.Equal(t, model.StatusVetoed, loaded.Bills[20].Detail.Status)
	assert.True(t, now.Equal(loaded.Bills[10].LastChecked))
	assert.Equal(t, []string{"water"}, loaded.SavedSearches)

	_, err = os.Stat(path + BackupSuffix)
	assert.True(t, os.IsNotExist(err), "first write has nothing to back up")
}

func TestLocal_WriteKeepsOneBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")

	first := NewLocal()
	first.AddSavedSearch("first")
	require.NoError(t, first.Write(path))

	second := NewLocal()
	second.AddSavedSearch("second")
	require.NoError(t, second.Write(path))

	third := NewLocal()
	third.AddSavedSearch("third")
	require.NoError(t, third.Write(path))

	current, err := ReadLocal(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"third"}, current.SavedSearches)

	backup, err := ReadLocal(path + BackupSuffix)
	require.NoError(t, err)
	assert.Equal(t, []string{"second"}, backup.SavedSearches)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLocal_MergeOverwrites(t *testing.T) {
	db := NewLocal()
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	db.Merge([]export.Row{{Query: "a", Bill: model.Bill{BillID: 1, Title: "old"}}}, t1)
	added, updated := db.Merge([]export.Row{
		{Query: "b", Bill: model.Bill{BillID: 1, Title: "new"}},
		{Query: "b", Bill: model.Bill{BillID: 2, Title: "other"}},
	}, t2)

	assert.Equal(t, 1, added)
	assert.Equal(t, 1, updated)
	assert.Equal(t, "new", db.Bills[1].Bill.Title)
	assert.Equal(t, "b", db.Bills[1].Query)
}

func TestLocal_EntriesOrder(t *testing.T) {
	db := NewLocal()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	db.Merge([]export.Row{{Bill: model.Bill{BillID: 3}}}, base)
	db.Merge([]export.Row{{Bill: model.Bill{BillID: 2}}, {Bill: model.Bill{BillID: 1}}}, base.Add(time.Minute))

	entries := db.Entries()
	ids := []int{}
	for _, e := range entries {
		ids = append(ids, e.Bill.BillID)
	}
	assert.Equal(t, []int{1, 2, 3}, ids)
}

func TestLocal_AddSavedSearch(t *testing.T) {
	db := NewLocal()
	assert.True(t, db.AddSavedSearch(" water "))
	assert.False(t, db.AddSavedSearch("water"))
	assert.False(t, db.AddSavedSearch("   "))
	assert.Equal(t, []string{"water"}, db.SavedSearches)
}
