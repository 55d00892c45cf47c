package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/solarlab/pvcompare/internal/contract"
	"github.com/solarlab/pvcompare/internal/log"
	"github.com/solarlab/pvcompare/internal/tabular"
	"github.com/solarlab/pvcompare/schema"
)

// logStageHeader prints a one-line header for a stage on stderr so it never mixes with table output.
func logStageHeader(ctx context.Context, stage schema.Stage, format string, args ...any) {
	if shouldSuppressHeader(ctx) {
		return
	}
	fmt.Fprintf(os.Stderr, "🔎 %s: %s\n", stage, fmt.Sprintf(format, args...))
}

// GetFetchResults requests modeled generation for the configured systems from source.
// Responses are served from the response cache when one is configured.
func GetFetchResults(ctx context.Context, cfg *contract.Config, source contract.SolarSource, mgr contract.CacheManager) (schema.FetchResult, error) {
	systems, err := fetchSystems(cfg)
	if err != nil {
		return schema.FetchResult{}, err
	}
	logStageHeader(ctx, schema.FetchStage, "%d system(s) at %.5f,%.5f (%s, %d)",
		len(systems), cfg.Latitude, cfg.Longitude, cfg.Resolution, cfg.RefYear)

	run := beginRun(cfg, mgr, schema.FetchStage)
	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetResponseStore()
	}
	result, err := fetchAll(ctx, cfg, source, store, systems)
	if err != nil {
		run.end(0)
		return result, err
	}
	run.end(len(result.Samples))
	return result, nil
}

// GetNormalizeResults reads the raw samples of cfg.InputFile and returns their Canonical Buckets.
func GetNormalizeResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.Bucket, error) {
	if cfg.InputFile == "" {
		return nil, errors.New("a raw sample file is required")
	}
	logStageHeader(ctx, schema.NormalizeStage, "%s (timezone %s)", filepath.Base(cfg.InputFile), cfg.Location)

	run := beginRun(cfg, mgr, schema.NormalizeStage)
	samples, err := tabular.ReadRawSamples(cfg.InputFile, cfg.Location)
	if err != nil {
		run.end(0)
		return nil, err
	}
	buckets := Normalize(samples, cfg.Location, cfg.ResampleHourly)
	log.Ctx(ctx).Debug("normalized samples", "samples", len(samples), "buckets", len(buckets))
	run.end(len(buckets))
	return buckets, nil
}

// GetCompareResults aligns the reference and variant bucket files.
// An empty alignment is returned together with contract.ErrEmptyAlignment.
func GetCompareResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.ComparisonResult, error) {
	if cfg.ReferenceFile == "" || cfg.VariantFile == "" {
		return schema.ComparisonResult{}, errors.New("both --reference and --variant are required")
	}
	logStageHeader(ctx, schema.CompareStage, "%s ↔ %s", filepath.Base(cfg.ReferenceFile), filepath.Base(cfg.VariantFile))

	run := beginRun(cfg, mgr, schema.CompareStage)
	reference, err := tabular.ReadBuckets(cfg.ReferenceFile)
	if err != nil {
		run.end(0)
		return schema.ComparisonResult{}, err
	}
	variant, err := tabular.ReadBuckets(cfg.VariantFile)
	if err != nil {
		run.end(0)
		return schema.ComparisonResult{}, err
	}
	result, err := Compare(reference, variant, CompareOptions{
		ReferenceSeries:  cfg.ReferenceSeries,
		VariantSeries:    cfg.VariantSeries,
		CombineVariant:   cfg.CombineVariant,
		ScaleToReference: cfg.ScaleToReference,
	})
	run.end(len(result.Rows))
	if err != nil && !contract.IsEmptyAlignment(err) {
		return result, err
	}
	return result, err
}

// GetThresholdResults counts buckets of cfg.InputFile reaching each configured peak fraction.
// Input without buckets is returned together with contract.ErrEmptyAlignment.
func GetThresholdResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.ThresholdResult, error) {
	if cfg.InputFile == "" {
		return schema.ThresholdResult{}, errors.New("a bucket file is required")
	}
	logStageHeader(ctx, schema.ThresholdStage, "%s (fractions %v, by month: %t)", filepath.Base(cfg.InputFile), cfg.Fractions, cfg.ByMonth)

	run := beginRun(cfg, mgr, schema.ThresholdStage)
	buckets, err := tabular.ReadBuckets(cfg.InputFile)
	if err != nil {
		run.end(0)
		return schema.ThresholdResult{}, err
	}

	var result schema.ThresholdResult
	switch {
	case cfg.ByMonth:
		var reference []schema.Bucket
		if cfg.PeakReferenceFile != "" {
			if reference, err = tabular.ReadBuckets(cfg.PeakReferenceFile); err != nil {
				run.end(0)
				return schema.ThresholdResult{}, err
			}
		}
		result = AnalyzeMonthlyThresholds(buckets, reference, cfg.Fractions)
	case cfg.PeakReferenceFile != "":
		run.end(0)
		return schema.ThresholdResult{}, errors.New("--peak-reference requires --by-month")
	default:
		result = AnalyzeThresholds(buckets, cfg.Fractions)
	}

	run.recordThresholds(result.Counts)
	run.end(len(result.Counts))
	if len(buckets) == 0 {
		return result, fmt.Errorf("no buckets in %s: %w", filepath.Base(cfg.InputFile), contract.ErrEmptyAlignment)
	}
	return result, nil
}

// GetDeviationResults profiles measured minus modeled deviations per hour of day.
// An empty profile is returned together with contract.ErrEmptyAlignment.
func GetDeviationResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.DeviationProfile, error) {
	measured, modeled, err := readDeviationInputs(ctx, cfg)
	if err != nil {
		return schema.DeviationProfile{}, err
	}

	run := beginRun(cfg, mgr, schema.DeviationStage)
	profile := ProfileDeviations(measured, modeled, cfg.MinDeviation)
	log.Ctx(ctx).Debug("profiled deviations", "hours", len(profile.Hours), "dropped", profile.Dropped)
	run.end(len(profile.Hours))
	if len(profile.Hours) == 0 {
		return profile, fmt.Errorf("no deviations above %g between %s and %s: %w",
			cfg.MinDeviation, filepath.Base(cfg.MeasuredFile), filepath.Base(cfg.ModeledFile), contract.ErrEmptyAlignment)
	}
	return profile, nil
}

func readDeviationInputs(ctx context.Context, cfg *contract.Config) ([]schema.Bucket, []schema.Bucket, error) {
	if cfg.MeasuredFile == "" || cfg.ModeledFile == "" {
		return nil, nil, errors.New("both --measured and --modeled are required")
	}
	logStageHeader(ctx, schema.DeviationStage, "%s - %s (min |d| %g)", filepath.Base(cfg.MeasuredFile), filepath.Base(cfg.ModeledFile), cfg.MinDeviation)

	measured, err := tabular.ReadBuckets(cfg.MeasuredFile)
	if err != nil {
		return nil, nil, err
	}
	modeled, err := tabular.ReadBuckets(cfg.ModeledFile)
	if err != nil {
		return nil, nil, err
	}
	return measured, modeled, nil
}

// GetFleetResults describes the systems of cfg.InputFile, or of --systems when no file is given.
func GetFleetResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.FleetDistribution, error) {
	path := cfg.InputFile
	if path == "" {
		path = cfg.SystemsFile
	}
	if path == "" {
		return schema.FleetDistribution{}, errors.New("a system metadata file is required")
	}
	logStageHeader(ctx, schema.FleetStage, "%s", filepath.Base(path))

	run := beginRun(cfg, mgr, schema.FleetStage)
	systems, err := tabular.ReadSystems(path)
	if err != nil {
		run.end(0)
		return schema.FleetDistribution{}, err
	}
	dist := DescribeFleet(systems)
	run.end(dist.Total)
	return dist, nil
}
