// Package core has the pipeline stages: normalization, comparison, threshold and deviation analysis.
package core

import (
	"context"
	"path/filepath"
	"time"

	"github.com/solarlab/pvcompare/internal/chart"
	"github.com/solarlab/pvcompare/internal/contract"
	"github.com/solarlab/pvcompare/internal/outwriter"
	"github.com/solarlab/pvcompare/internal/tabular"
	"github.com/solarlab/pvcompare/schema"
)

// ExecutorFunc defines the function signature for executing a pipeline stage.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// writer renders every stage result in the configured output format.
var writer = outwriter.NewOutWriter()

// ExecuteFetch requests modeled generation from source and writes the raw samples.
func ExecuteFetch(ctx context.Context, cfg *contract.Config, source contract.SolarSource, mgr contract.CacheManager) error {
	start := time.Now()
	result, err := GetFetchResults(ctx, cfg, source, mgr)
	if err != nil {
		return err
	}
	return writer.WriteSamples(result, cfg, time.Since(start))
}

// ExecuteNormalize aggregates raw samples into Canonical Buckets and writes them.
func ExecuteNormalize(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	buckets, err := GetNormalizeResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return writer.WriteBuckets(buckets, cfg, time.Since(start))
}

// ExecuteCompare writes the comparison of the reference and variant buckets.
// An empty alignment is a warning and still produces an empty table.
func ExecuteCompare(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	result, err := GetCompareResults(ctx, cfg, mgr)
	if err := warnEmpty(err, "No shared (month, hour) keys between reference and variant"); err != nil {
		return err
	}
	return writer.WriteComparison(result, cfg, time.Since(start))
}

// ExecuteThreshold writes the threshold counts of a bucket file.
func ExecuteThreshold(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	result, err := GetThresholdResults(ctx, cfg, mgr)
	if err := warnEmpty(err, "No buckets to count"); err != nil {
		return err
	}
	return writer.WriteThresholds(result, cfg, time.Since(start))
}

// ExecuteDeviation writes the per-hour deviation profile of measured against modeled buckets.
func ExecuteDeviation(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	profile, err := GetDeviationResults(ctx, cfg, mgr)
	if err := warnEmpty(err, "No deviations above the minimum"); err != nil {
		return err
	}
	return writer.WriteDeviation(profile, cfg, time.Since(start))
}

// ExecuteFleet writes the orientation and tilt distribution of a system metadata file.
func ExecuteFleet(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	dist, err := GetFleetResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return writer.WriteFleet(dist, cfg, time.Since(start))
}

// RenderExecutor returns the executor that draws one chart kind to a PNG file.
// The chart is written to --output-file, or to the kind's default file name.
func RenderExecutor(kind schema.ChartKind) ExecutorFunc {
	return func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
		run := beginRun(cfg, mgr, schema.RenderStage)
		fig, err := buildChart(ctx, cfg, kind)
		if err != nil {
			run.end(0)
			return err
		}
		path := cfg.OutputFile
		if path == "" {
			path = chart.DefaultFileName(kind)
		}
		if err := chart.Save(path, fig); err != nil {
			run.end(0)
			return err
		}
		run.end(1)
		return nil
	}
}

// buildChart loads the tables a chart kind presents and draws it.
func buildChart(ctx context.Context, cfg *contract.Config, kind schema.ChartKind) (*chart.Figure, error) {
	if kind == schema.ViolinChart {
		measured, modeled, err := readDeviationInputs(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return chart.Violin(ProfileDeviations(measured, modeled, cfg.MinDeviation), cfg.Style)
	}

	if cfg.InputFile == "" {
		return nil, contract.ErrMissingInput
	}
	logStageHeader(ctx, schema.RenderStage, "%s chart of %s", kind, filepath.Base(cfg.InputFile))
	switch kind {
	case schema.GridChart:
		buckets, err := tabular.ReadBuckets(cfg.InputFile)
		if err != nil {
			return nil, err
		}
		return chart.Grid(buckets, cfg.Style)
	case schema.ThresholdChart:
		counts, err := tabular.ReadThresholdCounts(cfg.InputFile)
		if err != nil {
			return nil, err
		}
		return chart.Thresholds(counts, cfg.Style)
	default:
		rows, err := tabular.ReadComparisonRows(cfg.InputFile)
		if err != nil {
			return nil, err
		}
		return chart.Comparison(rows, cfg.Style)
	}
}

// warnEmpty downgrades contract.ErrEmptyAlignment to a warning.
func warnEmpty(err error, msg string) error {
	if err == nil {
		return nil
	}
	if contract.IsEmptyAlignment(err) {
		contract.LogWarn(msg, err)
		return nil
	}
	return err
}
