package core

import (
	"time"

	"github.com/solarlab/pvcompare/internal/contract"
	"github.com/solarlab/pvcompare/schema"
)

// stageRun tracks one stage execution in the run store, if one is configured.
// A zero stageRun is valid and records nothing.
type stageRun struct {
	store contract.RunStore
	key   string
}

// beginRun records the start of a stage. Tracking failures are warnings, never fatal.
func beginRun(cfg *contract.Config, mgr contract.CacheManager, stage schema.Stage) stageRun {
	if mgr == nil {
		return stageRun{}
	}
	store := mgr.GetRunStore()
	if store == nil {
		return stageRun{}
	}
	key, err := store.BeginRun(stage, time.Now(), runParams(cfg))
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return stageRun{}
	}
	return stageRun{store: store, key: key}
}

// recordThresholds stores the threshold counts produced by the run.
func (r stageRun) recordThresholds(counts []schema.ThresholdCount) {
	if r.store == nil || r.key == "" {
		return
	}
	if err := r.store.RecordThresholdCounts(r.key, counts); err != nil {
		contract.LogWarn("Failed to record threshold counts", err)
	}
}

// end finalizes the run with the number of rows written.
func (r stageRun) end(rows int) {
	if r.store == nil || r.key == "" {
		return
	}
	if err := r.store.EndRun(r.key, time.Now(), rows); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// runParams captures the settings that change a stage's numbers.
func runParams(cfg *contract.Config) map[string]any {
	params := map[string]any{
		"input_file":      cfg.InputFile,
		"timezone":        cfg.Location.String(),
		"resample_hourly": cfg.ResampleHourly,
		"fractions":       cfg.Fractions,
		"by_month":        cfg.ByMonth,
		"min_deviation":   cfg.MinDeviation,
	}
	optional := map[string]string{
		"systems_file":     cfg.SystemsFile,
		"reference_file":   cfg.ReferenceFile,
		"variant_file":     cfg.VariantFile,
		"peak_reference":   cfg.PeakReferenceFile,
		"measured_file":    cfg.MeasuredFile,
		"modeled_file":     cfg.ModeledFile,
		"reference_series": cfg.ReferenceSeries,
		"variant_series":   cfg.VariantSeries,
	}
	for k, v := range optional {
		if v != "" {
			params[k] = v
		}
	}
	if cfg.CombineVariant {
		params["combine_variant"] = true
	}
	if cfg.ScaleToReference {
		params["scale_to_reference"] = true
	}
	return params
}
