// Package outwriter renders stage results as text tables, CSV, JSON or Parquet.
package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/solarlab/pvcompare/internal/contract"
	"github.com/solarlab/pvcompare/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct {
	stdout io.Writer
}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{stdout: os.Stdout}
}

// NewOutWriterTo creates an output writer that prints to w instead of stdout.
func NewOutWriterTo(w io.Writer) *OutWriter {
	return &OutWriter{stdout: w}
}

// WriteSamples prints fetched raw samples using the configured output format.
func (ow *OutWriter) WriteSamples(result schema.FetchResult, cfg *contract.Config, duration time.Duration) error {
	return ow.dispatch(cfg, "raw samples", output{
		json:      result.Samples,
		csvHeader: sampleHeader,
		csvRows:   func(w *csv.Writer) error { return writeCSVSamples(w, result.Samples) },
		parquet:   func(w io.Writer) error { return writeParquet(w, parquetSamples(result.Samples)) },
		table:     func(w io.Writer) error { return writeSamplesTable(w, result, cfg, duration) },
	})
}

// WriteBuckets prints canonical buckets using the configured output format.
func (ow *OutWriter) WriteBuckets(buckets []schema.Bucket, cfg *contract.Config, duration time.Duration) error {
	return ow.dispatch(cfg, "buckets", output{
		json:      buckets,
		csvHeader: bucketHeader,
		csvRows:   func(w *csv.Writer) error { return writeCSVBuckets(w, buckets) },
		parquet:   func(w io.Writer) error { return writeParquet(w, parquetBuckets(buckets)) },
		table:     func(w io.Writer) error { return writeBucketsTable(w, buckets, cfg, duration) },
	})
}

// WriteComparison prints a comparison result using the configured output format.
func (ow *OutWriter) WriteComparison(result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	return ow.dispatch(cfg, "comparison", output{
		json:      result,
		csvHeader: comparisonHeader,
		csvRows:   func(w *csv.Writer) error { return writeCSVComparison(w, result.Rows) },
		parquet:   func(w io.Writer) error { return writeParquet(w, parquetComparison(result.Rows)) },
		table:     func(w io.Writer) error { return writeComparisonTable(w, result, cfg, duration) },
	})
}

// WriteThresholds prints threshold counts using the configured output format.
func (ow *OutWriter) WriteThresholds(result schema.ThresholdResult, cfg *contract.Config, duration time.Duration) error {
	return ow.dispatch(cfg, "threshold counts", output{
		json:      result,
		csvHeader: thresholdHeader,
		csvRows:   func(w *csv.Writer) error { return writeCSVThresholds(w, result.Counts) },
		parquet:   func(w io.Writer) error { return writeParquet(w, parquetThresholds(result.Counts)) },
		table:     func(w io.Writer) error { return writeThresholdTable(w, result, cfg, duration) },
	})
}

// WriteDeviation prints a deviation profile using the configured output format.
func (ow *OutWriter) WriteDeviation(profile schema.DeviationProfile, cfg *contract.Config, duration time.Duration) error {
	return ow.dispatch(cfg, "deviation profile", output{
		json:      profile,
		csvHeader: deviationHeader,
		csvRows:   func(w *csv.Writer) error { return writeCSVDeviation(w, profile.Hours) },
		parquet:   func(w io.Writer) error { return writeParquet(w, parquetDeviation(profile.Hours)) },
		table:     func(w io.Writer) error { return writeDeviationTable(w, profile, cfg, duration) },
	})
}

// WriteFleet prints a fleet distribution using the configured output format.
func (ow *OutWriter) WriteFleet(dist schema.FleetDistribution, cfg *contract.Config, duration time.Duration) error {
	return ow.dispatch(cfg, "fleet distribution", output{
		json:      dist,
		csvHeader: fleetHeader,
		csvRows:   func(w *csv.Writer) error { return writeCSVFleet(w, dist) },
		parquet:   func(w io.Writer) error { return writeParquet(w, parquetFleet(dist)) },
		table:     func(w io.Writer) error { return writeFleetTable(w, dist, cfg, duration) },
	})
}

// WriteStatus prints a store status report as JSON.
func (ow *OutWriter) WriteStatus(status any, cfg *contract.Config) error {
	return writeWithFile(ow.stdout, cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, status)
	}, "Wrote JSON status")
}

// output bundles the renderings of one result.
type output struct {
	json      any
	csvHeader []string
	csvRows   func(*csv.Writer) error
	parquet   func(io.Writer) error
	table     func(io.Writer) error
}

// dispatch writes the rendering selected by cfg.Output.
func (ow *OutWriter) dispatch(cfg *contract.Config, what string, o output) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(ow.stdout, cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, o.json)
		}, "Wrote JSON "+what); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(ow.stdout, cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, o.csvHeader, o.csvRows)
		}, "Wrote CSV "+what); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeWithFile(ow.stdout, cfg.OutputFile, o.parquet, "Wrote Parquet "+what); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		if err := writeWithFile(ow.stdout, cfg.OutputFile, o.table, "Wrote "+what+" table"); err != nil {
			return fmt.Errorf("error writing table output: %w", err)
		}
	}
	return nil
}

// palette returns color functions, or plain formatting when colors are off.
func palette(cfg *contract.Config) (red, green, yellow func(...any) string) {
	if cfg.UseColors && cfg.OutputFile == "" {
		return color.New(color.FgRed).SprintFunc(),
			color.New(color.FgGreen).SprintFunc(),
			color.New(color.FgYellow).SprintFunc()
	}
	return fmt.Sprint, fmt.Sprint, fmt.Sprint
}
