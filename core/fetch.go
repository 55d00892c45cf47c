package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/solarlab/pvcompare/internal/contract"
	"github.com/solarlab/pvcompare/internal/log"
	"github.com/solarlab/pvcompare/internal/tabular"
	"github.com/solarlab/pvcompare/schema"
)

// fetchSystems resolves the systems to request: the systems file when given,
// otherwise the single system described by the flags.
func fetchSystems(cfg *contract.Config) ([]schema.SystemRecord, error) {
	if cfg.SystemsFile != "" {
		systems, err := tabular.ReadSystems(cfg.SystemsFile)
		if err != nil {
			return nil, err
		}
		if len(systems) == 0 {
			return nil, fmt.Errorf("no systems found in %s", cfg.SystemsFile)
		}
		return systems, nil
	}
	s := cfg.System
	if s.ID == "" {
		return nil, errors.New("either --systems or --id with --azimuth, --tilt and --capacity is required")
	}
	if s.Capacity <= 0 {
		return nil, fmt.Errorf("capacity must be positive (received %g)", s.Capacity)
	}
	return []schema.SystemRecord{s}, nil
}

// sourceQuery builds the request for one system from the run configuration.
func sourceQuery(cfg *contract.Config, s schema.SystemRecord) schema.SourceQuery {
	return schema.SourceQuery{
		Endpoint:   cfg.GSABaseURL,
		SystemID:   s.ID,
		Latitude:   cfg.Latitude,
		Longitude:  cfg.Longitude,
		GMTOffset:  cfg.GMTOffset,
		Azimuth:    s.Azimuth,
		Tilt:       s.Tilt,
		Capacity:   s.Capacity,
		Resolution: cfg.Resolution,
		RefYear:    cfg.RefYear,
	}
}

// fetchAll requests modeled generation for every system in order, one request at a time.
// The first failing request aborts the stage.
func fetchAll(ctx context.Context, cfg *contract.Config, source contract.SolarSource, store contract.CacheStore, systems []schema.SystemRecord) (schema.FetchResult, error) {
	result := schema.FetchResult{Systems: systems, Samples: []schema.RawSample{}}
	for _, s := range systems {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		samples, hit, err := cachedFetch(ctx, source, store, sourceQuery(cfg, s))
		if err != nil {
			return result, fmt.Errorf("fetch for system %s failed: %w", s.ID, err)
		}
		if hit {
			result.CacheHits++
		}
		log.Ctx(ctx).Debug("fetched system", "system", s.ID, "samples", len(samples), "cached", hit)
		result.Samples = append(result.Samples, samples...)
	}
	return result, nil
}
