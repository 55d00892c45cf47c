package core

import (
	"testing"

	"github.com/solarlab/pvcompare/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountAboveThresholds(t *testing.T) {
	tests := []struct {
		name      string
		values    []float64
		fractions []float64
		peak      float64
		counts    []int
	}{
		{"reference example", []float64{100, 80, 65, 50, 10}, []float64{0.5, 0.65, 0.8}, 100, []int{4, 3, 2}},
		{"all zero", []float64{0, 0, 0}, []float64{0.5, 0.8}, 0, []int{0, 0}},
		{"all negative", []float64{-3, -1}, []float64{0.5}, -1, []int{0}},
		{"empty", nil, []float64{0.5}, 0, []int{0}},
		{"full fraction", []float64{10, 10, 9}, []float64{1}, 10, []int{2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			peak, counts := CountAboveThresholds(tt.values, tt.fractions)
			assert.Equal(t, tt.peak, peak)
			assert.Equal(t, tt.counts, counts)
		})
	}
}

func TestAnalyzeThresholds(t *testing.T) {
	var buckets []schema.Bucket
	for i, v := range []float64{100, 80, 65, 50, 10} {
		buckets = append(buckets, bucket("a", 1, i, v))
	}
	buckets = append(buckets, bucket("b", 1, 0, 0))

	result := AnalyzeThresholds(buckets, []float64{0.5, 0.65, 0.8})
	assert.False(t, result.ByMonth)
	require.Len(t, result.Counts, 6)

	a := result.Counts[:3]
	for i, want := range []int{4, 3, 2} {
		assert.Equal(t, "a", a[i].SeriesID)
		assert.Equal(t, 0, a[i].Month)
		assert.Equal(t, 100.0, a[i].Peak)
		assert.Equal(t, want, a[i].Count)
		assert.Equal(t, 5, a[i].Total)
	}
	assert.InDelta(t, 65.0, a[1].Threshold, 1e-9)
	assert.InDelta(t, 80.0, a[0].Percentage, 1e-9)

	for _, c := range result.Counts[3:] {
		assert.Equal(t, 0, c.Count)
		assert.Equal(t, 0.0, c.Threshold)
	}
	assert.Equal(t, []schema.ThresholdTotal{
		{Fraction: 0.5, Count: 4}, {Fraction: 0.65, Count: 3}, {Fraction: 0.8, Count: 2},
	}, result.Totals)
}

func TestAnalyzeMonthlyThresholds(t *testing.T) {
	var buckets []schema.Bucket
	for h := range 24 {
		v := 0.0
		if h >= 8 && h <= 16 {
			v = float64(10 - absInt(12-h)) // peak 10 at noon
		}
		buckets = append(buckets, bucket("a", 6, h, v), bucket("a", 12, h, v/2))
	}

	t.Run("own peak", func(t *testing.T) {
		result := AnalyzeMonthlyThresholds(buckets, nil, []float64{0.8})
		assert.True(t, result.ByMonth)
		require.Len(t, result.Counts, 2)
		june, december := result.Counts[0], result.Counts[1]
		assert.Equal(t, 6, june.Month)
		assert.Equal(t, 10.0, june.Peak)
		assert.Equal(t, 24, june.Total)
		assert.Equal(t, 5, june.Count) // 8, 9, 10, 9, 8
		assert.Equal(t, 12, december.Month)
		assert.Equal(t, 5.0, december.Peak)
		assert.Equal(t, 5, december.Count)
		assert.Equal(t, []schema.ThresholdTotal{{Fraction: 0.8, Count: 10}}, result.Totals)
	})

	t.Run("reference peak", func(t *testing.T) {
		reference := []schema.Bucket{bucket("gsa", 6, 12, 20)}
		result := AnalyzeMonthlyThresholds(buckets, reference, []float64{0.5})
		require.Len(t, result.Counts, 1, "months missing from the reference are skipped")
		assert.Equal(t, 6, result.Counts[0].Month)
		assert.Equal(t, 20.0, result.Counts[0].Peak)
		assert.Equal(t, 1, result.Counts[0].Count) // only noon reaches 10
	})
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
