package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang/snappy"
	"github.com/solarlab/pvcompare/internal/contract"
	"github.com/solarlab/pvcompare/internal/log"
	"github.com/solarlab/pvcompare/schema"
)

// currentCacheVersion defines the version of the cached response payload
const currentCacheVersion = 1

// cacheMaxAge bounds how long a cached response is served.
const cacheMaxAge = 7 * 24 * time.Hour

// cachedFetch returns the samples for q from the response cache or, on a miss, from source.
// The second return value reports a cache hit.
func cachedFetch(ctx context.Context, source contract.SolarSource, store contract.CacheStore, q schema.SourceQuery) ([]schema.RawSample, bool, error) {
	if store == nil {
		samples, err := source.Fetch(ctx, q)
		return samples, false, err
	}

	key := generateCacheKey(q)
	if samples := checkCacheHit(store, key); samples != nil {
		log.Ctx(ctx).Debug("response cache hit", "system", q.SystemID, "key", key[:12])
		return samples, true, nil
	}

	samples, err := source.Fetch(ctx, q)
	if err != nil {
		return nil, false, err
	}
	storeSamples(ctx, store, key, samples)
	return samples, false, nil
}

// checkCacheHit attempts to retrieve and validate a cached response
func checkCacheHit(store contract.CacheStore, key string) []schema.RawSample {
	data, version, ts, err := store.Get(key)
	if err != nil || version != currentCacheVersion {
		return nil
	}
	if time.Since(time.Unix(ts, 0)) > cacheMaxAge {
		return nil
	}
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return nil
	}
	var samples []schema.RawSample
	if err := json.Unmarshal(raw, &samples); err != nil {
		return nil
	}
	return samples
}

// storeSamples compresses and stores the samples; failures only cost a future refetch.
func storeSamples(ctx context.Context, store contract.CacheStore, key string, samples []schema.RawSample) {
	data, err := json.Marshal(samples)
	if err != nil {
		return
	}
	if err := store.Set(key, snappy.Encode(nil, data), currentCacheVersion, time.Now().Unix()); err != nil {
		log.Ctx(ctx).Debug("response cache write failed", "error", err)
	}
}

// generateCacheKey creates a unique key from every request parameter that changes the response
func generateCacheKey(q schema.SourceQuery) string {
	key := fmt.Sprintf("%s:%s:%.6f:%.6f:%d:%.3f:%.3f:%.3f:%s:%d",
		strings.TrimRight(q.Endpoint, "/"),
		q.SystemID,
		q.Latitude,
		q.Longitude,
		q.GMTOffset,
		q.Azimuth,
		q.Tilt,
		q.Capacity,
		q.Resolution,
		q.RefYear,
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
