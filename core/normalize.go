package core

import (
	"sort"
	"time"

	"github.com/solarlab/pvcompare/schema"
)

// seriesBucket identifies one (series, month, hour) accumulator.
type seriesBucket struct {
	id    string
	month int
	hour  int
}

// localHour identifies one clock hour of one series in the reporting timezone.
type localHour struct {
	id    string
	year  int
	month time.Month
	day   int
	hour  int
}

// accumulator keeps a running mean with the bounds of its contributing values.
type accumulator struct {
	mean  float64
	count int
	min   float64
	max   float64
}

func (a *accumulator) add(v float64) {
	a.count++
	if a.count == 1 {
		a.mean, a.min, a.max = v, v, v
		return
	}
	a.mean += (v - a.mean) / float64(a.count)
	a.min = min(a.min, v)
	a.max = max(a.max, v)
}

// value returns the mean clamped to the observed bounds, guarding against rounding drift.
func (a *accumulator) value() float64 {
	return min(max(a.mean, a.min), a.max)
}

// Normalize groups raw samples into Canonical Buckets keyed by (series, month, hour)
// in loc. Every sample contributes with equal weight unless resampleHourly is set, in
// which case samples are first averaged per clock hour and each hour contributes once.
// Samples are accumulated in a fixed order so equal inputs give bit-identical means.
func Normalize(samples []schema.RawSample, loc *time.Location, resampleHourly bool) []schema.Bucket {
	if loc == nil {
		loc = time.UTC
	}
	sorted := sortedSamples(samples)

	type point struct {
		key   seriesBucket
		value float64
	}
	points := make([]point, 0, len(sorted))
	if resampleHourly {
		for _, h := range resampleToHours(sorted, loc) {
			points = append(points, point{
				key:   seriesBucket{id: h.key.id, month: int(h.key.month), hour: h.key.hour},
				value: h.acc.value(),
			})
		}
	} else {
		for _, s := range sorted {
			ts := s.Timestamp.In(loc)
			points = append(points, point{
				key:   seriesBucket{id: s.SystemID, month: int(ts.Month()), hour: ts.Hour()},
				value: s.Value,
			})
		}
	}

	accs := make(map[seriesBucket]*accumulator)
	for _, p := range points {
		acc, ok := accs[p.key]
		if !ok {
			acc = &accumulator{}
			accs[p.key] = acc
		}
		acc.add(p.value)
	}

	buckets := make([]schema.Bucket, 0, len(accs))
	for k, acc := range accs {
		buckets = append(buckets, schema.Bucket{
			SeriesID: k.id,
			Month:    k.month,
			Hour:     k.hour,
			Mean:     acc.value(),
			Samples:  acc.count,
		})
	}
	schema.SortBuckets(buckets)
	return buckets
}

type hourMean struct {
	key localHour
	acc *accumulator
}

// resampleToHours averages samples per series and local clock hour, in first-seen order.
func resampleToHours(sorted []schema.RawSample, loc *time.Location) []hourMean {
	index := make(map[localHour]int)
	var hours []hourMean
	for _, s := range sorted {
		ts := s.Timestamp.In(loc)
		key := localHour{id: s.SystemID, year: ts.Year(), month: ts.Month(), day: ts.Day(), hour: ts.Hour()}
		i, ok := index[key]
		if !ok {
			i = len(hours)
			index[key] = i
			hours = append(hours, hourMean{key: key, acc: &accumulator{}})
		}
		hours[i].acc.add(s.Value)
	}
	return hours
}

// sortedSamples returns a copy of samples ordered by series, time and value.
func sortedSamples(samples []schema.RawSample) []schema.RawSample {
	sorted := make([]schema.RawSample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.SystemID != b.SystemID {
			return a.SystemID < b.SystemID
		}
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.Value < b.Value
	})
	return sorted
}
