package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lirany1/pickles-explorer/pkg/cache"
)

func openTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDatabase_ImplementsCache(t *testing.T) {
	var _ cache.Cache = (*Database)(nil)
}

func TestDatabase_CacheEntries(t *testing.T) {
	db := openTestDatabase(t)

	_, ok, err := db.Get("features")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.Set("features", `{"Features":[]}`))
	require.NoError(t, db.Set("features", `{"Features":[{"Feature":null}]}`))

	value, ok, err := db.Get("features")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"Features":[{"Feature":null}]}`, value)
}

func TestDatabase_CachePersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()

	db, err := NewDatabase(dir)
	require.NoError(t, err)
	require.NoError(t, db.Set("features", "cached"))
	require.NoError(t, db.Close())

	reopened, err := NewDatabase(dir)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, db.Path(), reopened.Path())
	assert.FileExists(t, reopened.Path())

	value, ok, err := reopened.Get("features")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "cached", value)
}

func TestDatabase_Snapshots(t *testing.T) {
	db := openTestDatabase(t)
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 3; i++ {
		require.NoError(t, db.SaveSnapshot(&Snapshot{
			ID:            string(rune('a' + i)),
			Timestamp:     base.Add(time.Duration(i) * time.Minute),
			Source:        "test",
			FeatureCount:  i + 1,
			ScenarioCount: (i + 1) * 2,
			StepCount:     (i + 1) * 6,
			TagCounts:     map[string]int{"@automated": i},
		}))
	}

	recent, err := db.GetRecentSnapshots(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	assert.Equal(t, "c", recent[0].ID)
	assert.Equal(t, "b", recent[1].ID)
	assert.Equal(t, 6, recent[0].ScenarioCount)
	assert.Equal(t, map[string]int{"@automated": 2}, recent[0].TagCounts)
	assert.Equal(t, "test", recent[0].Source)
	assert.WithinDuration(t, base.Add(2*time.Minute), recent[0].Timestamp, time.Second)
}

func TestDatabase_CleanupOldData(t *testing.T) {
	db := openTestDatabase(t)

	require.NoError(t, db.SaveSnapshot(&Snapshot{ID: "old", Timestamp: time.Now().AddDate(0, 0, -40)}))
	require.NoError(t, db.SaveSnapshot(&Snapshot{ID: "new", Timestamp: time.Now()}))

	removed, err := db.CleanupOldData(30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	remaining, err := db.GetRecentSnapshots(10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "new", remaining[0].ID)
}
