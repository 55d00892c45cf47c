package iocache

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/solarlab/pvcompare/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetGlobals allows InitStores and CloseStores to run again.
func resetGlobals(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	Manager = &CacheStoreManager{}
	t.Cleanup(func() {
		CloseStores()
		initOnce = sync.Once{}
		closeOnce = sync.Once{}
		Manager = &CacheStoreManager{}
	})
}

func TestInitStores(t *testing.T) {
	t.Run("cache only", func(t *testing.T) {
		resetGlobals(t)
		dbPath := filepath.Join(t.TempDir(), "cache.db")

		require.NoError(t, InitStores(schema.SQLiteBackend, dbPath, "", ""))
		assert.NotNil(t, Manager.GetResponseStore())
		assert.Nil(t, Manager.GetRunStore(), "run tracking is off unless configured")

		CloseStores()
		_, err := os.Stat(dbPath)
		assert.NoError(t, err, "database file was created")
	})

	t.Run("both stores", func(t *testing.T) {
		resetGlobals(t)
		dir := t.TempDir()

		require.NoError(t, InitStores(schema.SQLiteBackend, filepath.Join(dir, "cache.db"), schema.SQLiteBackend, filepath.Join(dir, "runs.db")))
		assert.NotNil(t, Manager.GetResponseStore())
		assert.NotNil(t, Manager.GetRunStore())
	})

	t.Run("idempotent", func(t *testing.T) {
		resetGlobals(t)
		dbPath := filepath.Join(t.TempDir(), "cache.db")

		require.NoError(t, InitStores(schema.SQLiteBackend, dbPath, "", ""))
		first := Manager.GetResponseStore()
		require.NoError(t, InitStores(schema.SQLiteBackend, dbPath, "", ""))
		assert.Same(t, first, Manager.GetResponseStore())
	})

	t.Run("concurrent access", func(t *testing.T) {
		resetGlobals(t)
		dbPath := filepath.Join(t.TempDir(), "cache.db")

		var wg sync.WaitGroup
		for range 10 {
			wg.Go(func() {
				assert.NoError(t, InitStores(schema.SQLiteBackend, dbPath, "", ""))
				_ = Manager.GetResponseStore()
			})
		}
		wg.Wait()
		assert.NotNil(t, Manager.GetResponseStore())
	})

	t.Run("bad runs backend closes cache", func(t *testing.T) {
		resetGlobals(t)
		err := InitStores(schema.SQLiteBackend, filepath.Join(t.TempDir(), "cache.db"), "oracle", "")
		assert.Error(t, err)
		assert.Nil(t, Manager.GetResponseStore())
	})
}

func TestClearCache(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewCacheStore(responseTable, schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Set("k", []byte("v"), 1, time.Now().Unix()))
	require.NoError(t, store.Close())

	require.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))
	assert.NoFileExists(t, dbPath)

	// Clearing twice is fine
	assert.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))
	assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	assert.NoError(t, ClearRuns(schema.NoneBackend, "", ""))
	assert.Error(t, ClearRuns("oracle", "", ""))
}

func TestExportRuns(t *testing.T) {
	store := newTestRunStore(t)
	out := filepath.Join(t.TempDir(), "history")
	var log bytes.Buffer

	assert.ErrorContains(t, ExportRuns(&log, store, out), "no run data")
	assert.Error(t, ExportRuns(&log, store, ""))
	assert.Error(t, ExportRuns(&log, nil, out))

	key, err := store.BeginRun(schema.ThresholdStage, time.Now(), nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordThresholdCounts(key, []schema.ThresholdCount{{SeriesID: "a", Fraction: 0.5, Count: 1, Total: 2}}))
	require.NoError(t, store.EndRun(key, time.Now(), 1))

	require.NoError(t, ExportRuns(&log, store, out))
	assert.FileExists(t, out+".runs.parquet")
	assert.FileExists(t, out+".threshold_counts.parquet")
	assert.Contains(t, log.String(), "Exported 1 runs")
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintCacheStatus(&buf, schema.CacheStatus{Backend: "none"})
	assert.Equal(t, "Cache Backend: none\nConnected: false\n", buf.String())

	buf.Reset()
	PrintRunStatus(&buf, schema.RunStatus{
		Backend:    "sqlite",
		Connected:  true,
		TableSizes: map[string]int64{runsTable: 0, thresholdCountsTable: 0},
	})
	assert.Contains(t, buf.String(), "Total Runs: 0")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(runsTable)), bytes.Index(buf.Bytes(), []byte(thresholdCountsTable)))
}
