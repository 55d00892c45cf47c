// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/solarlab/pvcompare/schema"
)

// SolarSource returns modeled generation for one system from a solar-resource service.
// This allows the fetch stage to be tested without network access.
type SolarSource interface {
	// Fetch returns the Raw Samples covering one reference year for the query.
	Fetch(ctx context.Context, q schema.SourceQuery) ([]schema.RawSample, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetResponseStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking stage runs and their threshold results.
type RunStore interface {
	// BeginRun records the start of a stage run and returns its run key
	BeginRun(stage schema.Stage, startTime time.Time, configParams map[string]any) (string, error)

	// EndRun updates the run with completion data
	EndRun(runKey string, endTime time.Time, rowsWritten int) error

	// RecordThresholdCounts stores the threshold counts produced by a run
	RecordThresholdCounts(runKey string, counts []schema.ThresholdCount) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns returns every tracked run ordered by start time
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllThresholdCounts returns every stored threshold count
	GetAllThresholdCounts() ([]schema.RunThresholdRecord, error)

	// Close closes the underlying connection
	Close() error
}
