package schema

import "time"

// RunRecord represents a row from the pvcompare_runs table.
type RunRecord struct {
	RunKey        string
	Stage         string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int64
	RowsWritten   *int64
	ConfigParams  *string
}

// RunThresholdRecord represents a row from the pvcompare_threshold_counts table.
type RunThresholdRecord struct {
	RunKey    string
	SeriesID  string
	Month     int
	Fraction  float64
	Threshold float64
	Peak      float64
	Count     int
	Total     int
}
