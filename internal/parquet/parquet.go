// Package parquet provides data structures and functions for exporting pvcompare
// tables and run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/solarlab/pvcompare/schema"
)

// Sample is one raw reading.
type Sample struct {
	ID        string    `parquet:"id,snappy,dict"`
	Timestamp time.Time `parquet:"timestamp,snappy"`
	Value     float64   `parquet:"value,snappy"`
}

// Bucket is one (month, hour) mean of a series.
type Bucket struct {
	ID        string  `parquet:"id,snappy,dict"`
	Month     int32   `parquet:"month,snappy"`
	Hour      int32   `parquet:"hour,snappy"`
	MeanValue float64 `parquet:"mean_value,snappy"`
	Samples   int32   `parquet:"samples,snappy"`
}

// Comparison is one row of a comparison table.
type Comparison struct {
	ID              string   `parquet:"id,snappy,dict"`
	Month           int32    `parquet:"month,snappy"`
	Hour            int32    `parquet:"hour,snappy"`
	ReferenceValue  float64  `parquet:"reference_value,snappy"`
	VariantValue    float64  `parquet:"variant_value,snappy"`
	Deviation       float64  `parquet:"deviation,snappy"`
	ScaledDeviation *float64 `parquet:"scaled_deviation,optional,snappy"`
}

// Threshold is one count of hours at or above a fraction of the peak.
type Threshold struct {
	ID                string  `parquet:"id,snappy,dict"`
	Month             int32   `parquet:"month,snappy"`
	ThresholdFraction float64 `parquet:"threshold_fraction,snappy"`
	ThresholdValue    float64 `parquet:"threshold_value,snappy"`
	PeakValue         float64 `parquet:"peak_value,snappy"`
	Count             int32   `parquet:"count,snappy"`
	Total             int32   `parquet:"total,snappy"`
	Percentage        float64 `parquet:"percentage,snappy"`
}

// HourDeviation summarizes the measured minus modeled deviations of one hour.
type HourDeviation struct {
	Hour   int32   `parquet:"hour,snappy"`
	Count  int32   `parquet:"count,snappy"`
	Mean   float64 `parquet:"mean,snappy"`
	Median float64 `parquet:"median,snappy"`
	Min    float64 `parquet:"min,snappy"`
	Max    float64 `parquet:"max,snappy"`
}

// FleetGroup is one bar of the fleet distribution.
type FleetGroup struct {
	Dimension string `parquet:"dimension,snappy,dict"`
	Group     string `parquet:"group,snappy,dict"`
	Count     int32  `parquet:"count,snappy"`
}

// Run represents a single stage run.
// This struct maps to the pvcompare_runs database table.
type Run struct {
	RunKey string `parquet:"run_key,snappy"`
	Stage  string `parquet:"stage,snappy,dict"`

	// Stored as TIMESTAMP with nanosecond precision
	StartTime time.Time  `parquet:"start_time,snappy"`
	EndTime   *time.Time `parquet:"end_time,optional,snappy"`

	RunDurationMs *int64 `parquet:"run_duration_ms,optional,snappy"`
	RowsWritten   *int64 `parquet:"rows_written,optional,snappy"`

	// JSON-encoded stage settings
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// RunThreshold is a threshold count stored by a run.
// This struct maps to the pvcompare_threshold_counts database table.
type RunThreshold struct {
	RunKey            string  `parquet:"run_key,snappy,dict"`
	ID                string  `parquet:"id,snappy,dict"`
	Month             int32   `parquet:"month,snappy"`
	ThresholdFraction float64 `parquet:"threshold_fraction,snappy"`
	ThresholdValue    float64 `parquet:"threshold_value,snappy"`
	PeakValue         float64 `parquet:"peak_value,snappy"`
	Count             int32   `parquet:"count,snappy"`
	Total             int32   `parquet:"total,snappy"`
}

// Write encodes rows as one Parquet file on w.
// The schema is derived from the struct tags of T.
func Write[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// Read decodes every row of a Parquet file.
func Read[T any](r io.ReaderAt, size int64) ([]T, error) {
	rows, err := parquet.Read[T](r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file: %w", err)
	}
	return rows, nil
}

// ConvertSamples converts raw samples for Parquet export.
func ConvertSamples(samples []schema.RawSample) []Sample {
	result := make([]Sample, len(samples))
	for i, s := range samples {
		result[i] = Sample{ID: s.SystemID, Timestamp: s.Timestamp, Value: s.Value}
	}
	return result
}

// ConvertBuckets converts buckets for Parquet export.
func ConvertBuckets(buckets []schema.Bucket) []Bucket {
	result := make([]Bucket, len(buckets))
	for i, b := range buckets {
		result[i] = Bucket{
			ID:        b.SeriesID,
			Month:     int32(b.Month),
			Hour:      int32(b.Hour),
			MeanValue: b.Mean,
			Samples:   int32(b.Samples),
		}
	}
	return result
}

// ConvertComparisonRows converts comparison rows for Parquet export.
func ConvertComparisonRows(rows []schema.ComparisonRow) []Comparison {
	result := make([]Comparison, len(rows))
	for i, r := range rows {
		result[i] = Comparison{
			ID:              r.SeriesID,
			Month:           int32(r.Month),
			Hour:            int32(r.Hour),
			ReferenceValue:  r.Reference,
			VariantValue:    r.Variant,
			Deviation:       r.Deviation,
			ScaledDeviation: r.ScaledDeviation,
		}
	}
	return result
}

// ConvertThresholdCounts converts threshold counts for Parquet export.
func ConvertThresholdCounts(counts []schema.ThresholdCount) []Threshold {
	result := make([]Threshold, len(counts))
	for i, c := range counts {
		result[i] = Threshold{
			ID:                c.SeriesID,
			Month:             int32(c.Month),
			ThresholdFraction: c.Fraction,
			ThresholdValue:    c.Threshold,
			PeakValue:         c.Peak,
			Count:             int32(c.Count),
			Total:             int32(c.Total),
			Percentage:        c.Percentage,
		}
	}
	return result
}

// ConvertHourDeviations converts a deviation profile for Parquet export.
func ConvertHourDeviations(hours []schema.HourDeviation) []HourDeviation {
	result := make([]HourDeviation, len(hours))
	for i, h := range hours {
		result[i] = HourDeviation{
			Hour:   int32(h.Hour),
			Count:  int32(h.Count),
			Mean:   h.Mean,
			Median: h.Median,
			Min:    h.Min,
			Max:    h.Max,
		}
	}
	return result
}

// ConvertFleet flattens a fleet distribution into orientation and tilt rows.
func ConvertFleet(dist schema.FleetDistribution) []FleetGroup {
	result := make([]FleetGroup, 0, len(dist.Orientation)+len(dist.Tilt))
	for _, g := range dist.Orientation {
		result = append(result, FleetGroup{Dimension: "orientation", Group: g.Group, Count: int32(g.Count)})
	}
	for _, g := range dist.Tilt {
		result = append(result, FleetGroup{Dimension: "tilt", Group: g.Group, Count: int32(g.Count)})
	}
	return result
}

// ConvertRunRecords converts stored runs for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunKey:        record.RunKey,
			Stage:         record.Stage,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			RowsWritten:   record.RowsWritten,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertRunThresholdRecords converts stored threshold counts for Parquet export.
func ConvertRunThresholdRecords(records []schema.RunThresholdRecord) []RunThreshold {
	result := make([]RunThreshold, len(records))
	for i, r := range records {
		result[i] = RunThreshold{
			RunKey:            r.RunKey,
			ID:                r.SeriesID,
			Month:             int32(r.Month),
			ThresholdFraction: r.Fraction,
			ThresholdValue:    r.Threshold,
			PeakValue:         r.Peak,
			Count:             int32(r.Count),
			Total:             int32(r.Total),
		}
	}
	return result
}
