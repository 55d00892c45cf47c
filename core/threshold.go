package core

import (
	"math"
	"sort"

	"github.com/solarlab/pvcompare/schema"
)

// CountAboveThresholds returns the peak of values and, per fraction, how many values
// reach fraction * peak. A non-positive peak is degenerate and yields zero counts.
func CountAboveThresholds(values, fractions []float64) (float64, []int) {
	counts := make([]int, len(fractions))
	if len(values) == 0 {
		return 0, counts
	}
	peak := math.Inf(-1)
	for _, v := range values {
		peak = max(peak, v)
	}
	return peak, countAtOrAbove(values, fractions, peak)
}

// AnalyzeThresholds counts, per series, the buckets at or above each fraction of the series peak.
func AnalyzeThresholds(buckets []schema.Bucket, fractions []float64) schema.ThresholdResult {
	result := schema.ThresholdResult{Counts: []schema.ThresholdCount{}}
	groups := schema.GroupBuckets(buckets)
	for _, id := range schema.SeriesIDs(buckets) {
		values := bucketValues(groups[id])
		peak, counts := CountAboveThresholds(values, fractions)
		result.Counts = append(result.Counts, thresholdRows(id, 0, peak, values, fractions, counts)...)
	}
	result.Totals = thresholdTotals(result.Counts, fractions)
	return result
}

// AnalyzeMonthlyThresholds counts per series and month. The peak of a month is the month's
// own maximum, or the maximum of the reference buckets in that month when reference is given;
// months the reference does not cover are skipped.
func AnalyzeMonthlyThresholds(buckets, reference []schema.Bucket, fractions []float64) schema.ThresholdResult {
	result := schema.ThresholdResult{ByMonth: true, Counts: []schema.ThresholdCount{}}
	refPeaks := monthlyPeaks(reference)

	groups := schema.GroupBuckets(buckets)
	for _, id := range schema.SeriesIDs(buckets) {
		byMonth := make(map[int][]float64)
		for _, b := range groups[id] {
			byMonth[b.Month] = append(byMonth[b.Month], b.Mean)
		}
		months := make([]int, 0, len(byMonth))
		for m := range byMonth {
			months = append(months, m)
		}
		sort.Ints(months)

		for _, month := range months {
			values := byMonth[month]
			peak, counts := CountAboveThresholds(values, fractions)
			if len(reference) > 0 {
				refPeak, ok := refPeaks[month]
				if !ok {
					continue
				}
				peak = refPeak
				counts = countAtOrAbove(values, fractions, peak)
			}
			result.Counts = append(result.Counts, thresholdRows(id, month, peak, values, fractions, counts)...)
		}
	}
	result.Totals = thresholdTotals(result.Counts, fractions)
	return result
}

// countAtOrAbove counts values reaching fraction * peak for an externally supplied peak.
func countAtOrAbove(values, fractions []float64, peak float64) []int {
	counts := make([]int, len(fractions))
	if peak <= 0 {
		return counts
	}
	for i, f := range fractions {
		threshold := f * peak
		for _, v := range values {
			if v >= threshold {
				counts[i]++
			}
		}
	}
	return counts
}

func thresholdRows(id string, month int, peak float64, values, fractions []float64, counts []int) []schema.ThresholdCount {
	rows := make([]schema.ThresholdCount, 0, len(fractions))
	for i, f := range fractions {
		row := schema.ThresholdCount{
			SeriesID:  id,
			Month:     month,
			Fraction:  f,
			Threshold: f * max(peak, 0),
			Peak:      peak,
			Count:     counts[i],
			Total:     len(values),
		}
		if row.Total > 0 {
			row.Percentage = float64(row.Count) / float64(row.Total) * 100
		}
		rows = append(rows, row)
	}
	return rows
}

func thresholdTotals(counts []schema.ThresholdCount, fractions []float64) []schema.ThresholdTotal {
	totals := make([]schema.ThresholdTotal, len(fractions))
	for i, f := range fractions {
		totals[i].Fraction = f
		for _, c := range counts {
			if c.Fraction == f {
				totals[i].Count += c.Count
			}
		}
	}
	return totals
}

func monthlyPeaks(buckets []schema.Bucket) map[int]float64 {
	peaks := make(map[int]float64)
	for _, b := range buckets {
		if p, ok := peaks[b.Month]; !ok || b.Mean > p {
			peaks[b.Month] = b.Mean
		}
	}
	return peaks
}

func bucketValues(buckets []schema.Bucket) []float64 {
	values := make([]float64, len(buckets))
	for i, b := range buckets {
		values[i] = b.Mean
	}
	return values
}
