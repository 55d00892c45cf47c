package core

import (
	"math"
	"sort"

	"github.com/solarlab/pvcompare/schema"
	"gonum.org/v1/gonum/stat"
)

// ProfileDeviations collects measured minus modeled differences per hour of day over every
// (series, month) both tables cover. Differences with |d| <= minAbs are dropped. Measured
// series are matched to modeled series by id, or to the only modeled series when ids differ.
func ProfileDeviations(measured, modeled []schema.Bucket, minAbs float64) schema.DeviationProfile {
	profile := schema.DeviationProfile{Hours: []schema.HourDeviation{}, Samples: make(map[int][]float64)}

	modGroups := schema.GroupBuckets(modeled)
	measGroups := schema.GroupBuckets(measured)
	var fallback string
	if ids := schema.SeriesIDs(modeled); len(ids) == 1 {
		fallback = ids[0]
	}

	for _, id := range schema.SeriesIDs(measured) {
		modID := id
		if _, ok := modGroups[modID]; !ok {
			if fallback == "" {
				continue
			}
			modID = fallback
		}
		modIndex := schema.IndexBuckets(modGroups[modID])
		measIndex := schema.IndexBuckets(measGroups[id])
		for _, key := range schema.SortedKeys(measIndex) {
			m, ok := modIndex[key]
			if !ok {
				continue
			}
			d := measIndex[key] - m
			if math.Abs(d) <= minAbs {
				profile.Dropped++
				continue
			}
			profile.Samples[key.Hour] = append(profile.Samples[key.Hour], d)
		}
	}

	for hour := range schema.HoursPerDay {
		values := profile.Samples[hour]
		if len(values) == 0 {
			delete(profile.Samples, hour)
			continue
		}
		sort.Float64s(values)
		profile.Hours = append(profile.Hours, schema.HourDeviation{
			Hour:   hour,
			Count:  len(values),
			Mean:   stat.Mean(values, nil),
			Median: median(values),
			Min:    values[0],
			Max:    values[len(values)-1],
		})
	}
	return profile
}

// median of sorted values, averaging the two middle values for even lengths.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
