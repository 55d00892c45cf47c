// Package schema has the tables, models and enums shared by every stage of pvcompare.
package schema

import "time"

// SystemRecord identifies one physical PV installation.
type SystemRecord struct {
	ID       string  `json:"id"`
	Azimuth  float64 `json:"azimuth"`  // Degrees clockwise from north
	Tilt     float64 `json:"tilt"`     // Degrees from horizontal
	Capacity float64 `json:"capacity"` // Rated DC capacity in W
}

// RawSample is one timestamped power or energy reading for a system.
type RawSample struct {
	SystemID  string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// BucketKey is the canonical (month, hour) aggregation key.
type BucketKey struct {
	Month int `json:"month"` // 1..12
	Hour  int `json:"hour"`  // 0..23
}

// Less orders keys by month, then hour.
func (k BucketKey) Less(o BucketKey) bool {
	if k.Month != o.Month {
		return k.Month < o.Month
	}
	return k.Hour < o.Hour
}

// Valid reports whether the key lies within 1..12 and 0..23.
func (k BucketKey) Valid() bool {
	return k.Month >= 1 && k.Month <= 12 && k.Hour >= 0 && k.Hour <= 23
}

// Bucket is the mean value of one series for one canonical key.
type Bucket struct {
	SeriesID string  `json:"id"`
	Month    int     `json:"month"`
	Hour     int     `json:"hour"`
	Mean     float64 `json:"mean_value"`
	Samples  int     `json:"samples,omitempty"` // Contributing values, zero when unknown
}

// Key returns the canonical key of the bucket.
func (b Bucket) Key() BucketKey {
	return BucketKey{Month: b.Month, Hour: b.Hour}
}

// ComparisonRow pairs a reference and a variant bucket sharing one key.
type ComparisonRow struct {
	SeriesID        string   `json:"id"`
	Month           int      `json:"month"`
	Hour            int      `json:"hour"`
	Reference       float64  `json:"reference_value"`
	Variant         float64  `json:"variant_value"`
	Deviation       float64  `json:"deviation"`
	ScaledDeviation *float64 `json:"scaled_deviation"` // nil when the reference value is zero
}

// SeriesPair describes how one reference series was matched to one variant series.
type SeriesPair struct {
	ReferenceID string  `json:"reference_id"`
	VariantID   string  `json:"variant_id"`
	ScaleFactor float64 `json:"scale_factor"`
	Rows        int     `json:"rows"`
}

// ComparisonSummary aggregates a comparison table.
type ComparisonSummary struct {
	Rows                  int     `json:"rows"`
	MeanDeviation         float64 `json:"mean_deviation"`
	MeanAbsoluteDeviation float64 `json:"mean_absolute_deviation"`
	ReferenceTotal        float64 `json:"reference_total"`
	VariantTotal          float64 `json:"variant_total"`
}

// ComparisonResult is the output of the comparator.
type ComparisonResult struct {
	Pairs   []SeriesPair      `json:"pairs"`
	Rows    []ComparisonRow   `json:"rows"`
	Summary ComparisonSummary `json:"summary"`
}

// ThresholdCount is the number of buckets at or above fraction x peak.
// Month is zero when the count covers the whole series.
type ThresholdCount struct {
	SeriesID   string  `json:"id"`
	Month      int     `json:"month"`
	Fraction   float64 `json:"threshold_fraction"`
	Threshold  float64 `json:"threshold_value"`
	Peak       float64 `json:"peak_value"`
	Count      int     `json:"count"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// ThresholdTotal sums the counts of one fraction over a result.
type ThresholdTotal struct {
	Fraction float64 `json:"threshold_fraction"`
	Count    int     `json:"count"`
}

// ThresholdResult is the output of the threshold analyzer.
type ThresholdResult struct {
	ByMonth bool             `json:"by_month"`
	Counts  []ThresholdCount `json:"counts"`
	Totals  []ThresholdTotal `json:"totals"`
}

// HourDeviation summarizes measured minus modeled differences for one hour of day.
type HourDeviation struct {
	Hour   int     `json:"hour"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// DeviationProfile is the per-hour deviation distribution.
type DeviationProfile struct {
	Hours   []HourDeviation   `json:"hours"`
	Dropped int               `json:"dropped"`
	Samples map[int][]float64 `json:"-"` // Kept deviations per hour, sorted ascending
}

// GroupCount is the number of systems in one category.
type GroupCount struct {
	Group string `json:"group"`
	Count int    `json:"count"`
}

// FleetDistribution describes a set of systems by orientation and tilt.
type FleetDistribution struct {
	Total        int          `json:"total"`
	Orientation  []GroupCount `json:"orientation"`
	Tilt         []GroupCount `json:"tilt"`
	MeanCapacity float64      `json:"mean_capacity"`
}

// SourceQuery holds the parameters of one modeled-generation request.
type SourceQuery struct {
	Endpoint   string // service base URL; cached responses are per endpoint
	SystemID   string
	Latitude   float64
	Longitude  float64
	GMTOffset  int
	Azimuth    float64
	Tilt       float64
	Capacity   float64 // W
	Resolution Resolution
	RefYear    int
}

// FetchResult is the output of the fetch stage.
type FetchResult struct {
	Systems   []SystemRecord `json:"systems"`
	Samples   []RawSample    `json:"samples"`
	CacheHits int            `json:"cache_hits"`
}
