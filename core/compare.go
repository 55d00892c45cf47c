package core

import (
	"fmt"
	"math"

	"github.com/solarlab/pvcompare/internal/contract"
	"github.com/solarlab/pvcompare/schema"
)

// CompareOptions controls how reference and variant series are paired.
type CompareOptions struct {
	ReferenceSeries  string // Restrict the reference side to one series
	VariantSeries    string // Pair every reference series with this variant series
	CombineVariant   bool   // Sum all variant series into one before pairing
	ScaleToReference bool   // Scale each variant to its reference peak
}

// Compare aligns reference and variant buckets on their shared (month, hour) keys.
// Series are paired by id unless an explicit or combined variant is requested; a lone
// reference series is paired with a lone variant series when their ids differ.
// When no key is shared the result is empty and contract.ErrEmptyAlignment is returned.
func Compare(reference, variant []schema.Bucket, opts CompareOptions) (schema.ComparisonResult, error) {
	result := schema.ComparisonResult{Pairs: []schema.SeriesPair{}, Rows: []schema.ComparisonRow{}}

	refGroups := schema.GroupBuckets(reference)
	varGroups := schema.GroupBuckets(variant)

	refIDs := schema.SeriesIDs(reference)
	if opts.ReferenceSeries != "" {
		if _, ok := refGroups[opts.ReferenceSeries]; !ok {
			return result, fmt.Errorf("reference series %q not found", opts.ReferenceSeries)
		}
		refIDs = []string{opts.ReferenceSeries}
	}

	fixedVariant := ""
	switch {
	case opts.CombineVariant:
		if len(variant) > 0 {
			varGroups = map[string][]schema.Bucket{schema.CombinedSeries: CombineSeries(variant)}
			fixedVariant = schema.CombinedSeries
		}
	case opts.VariantSeries != "":
		if _, ok := varGroups[opts.VariantSeries]; !ok {
			return result, fmt.Errorf("variant series %q not found", opts.VariantSeries)
		}
		fixedVariant = opts.VariantSeries
	}

	for _, p := range pairSeries(refIDs, varGroups, fixedVariant) {
		refIndex := schema.IndexBuckets(refGroups[p.ReferenceID])
		varIndex := schema.IndexBuckets(varGroups[p.VariantID])

		p.ScaleFactor = 1
		if opts.ScaleToReference {
			p.ScaleFactor = scaleFactor(refIndex, varIndex)
		}

		label := p.ReferenceID
		if p.ReferenceID != p.VariantID {
			label = p.ReferenceID + "/" + p.VariantID
		}
		for _, key := range schema.SortedKeys(refIndex) {
			v, ok := varIndex[key]
			if !ok {
				continue
			}
			result.Rows = append(result.Rows, compareRow(label, key, refIndex[key], v*p.ScaleFactor))
			p.Rows++
		}
		result.Pairs = append(result.Pairs, p)
	}

	result.Summary = summarize(result.Rows)
	if len(result.Rows) == 0 {
		return result, contract.ErrEmptyAlignment
	}
	return result, nil
}

// pairSeries decides which reference series is compared with which variant series.
func pairSeries(refIDs []string, varGroups map[string][]schema.Bucket, fixedVariant string) []schema.SeriesPair {
	var pairs []schema.SeriesPair
	if fixedVariant != "" {
		for _, id := range refIDs {
			pairs = append(pairs, schema.SeriesPair{ReferenceID: id, VariantID: fixedVariant})
		}
		return pairs
	}

	for _, id := range refIDs {
		if _, ok := varGroups[id]; ok {
			pairs = append(pairs, schema.SeriesPair{ReferenceID: id, VariantID: id})
		}
	}
	if len(pairs) == 0 && len(refIDs) == 1 && len(varGroups) == 1 {
		for varID := range varGroups {
			pairs = append(pairs, schema.SeriesPair{ReferenceID: refIDs[0], VariantID: varID})
		}
	}
	return pairs
}

func compareRow(id string, key schema.BucketKey, ref, variant float64) schema.ComparisonRow {
	row := schema.ComparisonRow{
		SeriesID:  id,
		Month:     key.Month,
		Hour:      key.Hour,
		Reference: ref,
		Variant:   variant,
		Deviation: variant - ref,
	}
	if ref != 0 {
		row.ScaledDeviation = schema.Float64Ptr(row.Deviation / ref)
	}
	return row
}

// scaleFactor returns max(reference) / max(variant), or 1 when the variant peak is not positive.
func scaleFactor(ref, variant map[schema.BucketKey]float64) float64 {
	refPeak, varPeak := peakOf(ref), peakOf(variant)
	if varPeak <= 0 {
		return 1
	}
	return refPeak / varPeak
}

func peakOf(index map[schema.BucketKey]float64) float64 {
	peak := math.Inf(-1)
	for _, v := range index {
		peak = max(peak, v)
	}
	if math.IsInf(peak, -1) {
		return 0
	}
	return peak
}

// CombineSeries sums all series into one combined series over the keys every series shares.
func CombineSeries(buckets []schema.Bucket) []schema.Bucket {
	groups := schema.GroupBuckets(buckets)
	ids := schema.SeriesIDs(buckets)
	if len(ids) == 0 {
		return nil
	}

	sums := schema.IndexBuckets(groups[ids[0]])
	for _, id := range ids[1:] {
		index := schema.IndexBuckets(groups[id])
		for key, v := range sums {
			other, ok := index[key]
			if !ok {
				delete(sums, key)
				continue
			}
			sums[key] = v + other
		}
	}

	combined := make([]schema.Bucket, 0, len(sums))
	for _, key := range schema.SortedKeys(sums) {
		combined = append(combined, schema.Bucket{
			SeriesID: schema.CombinedSeries,
			Month:    key.Month,
			Hour:     key.Hour,
			Mean:     sums[key],
		})
	}
	return combined
}

func summarize(rows []schema.ComparisonRow) schema.ComparisonSummary {
	summary := schema.ComparisonSummary{Rows: len(rows)}
	if len(rows) == 0 {
		return summary
	}
	var devSum, absSum float64
	for _, r := range rows {
		devSum += r.Deviation
		absSum += math.Abs(r.Deviation)
		summary.ReferenceTotal += r.Reference
		summary.VariantTotal += r.Variant
	}
	n := float64(len(rows))
	summary.MeanDeviation = devSum / n
	summary.MeanAbsoluteDeviation = absSum / n
	return summary
}
