package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SortBuckets orders buckets by series, month and hour in place.
func SortBuckets(buckets []Bucket) {
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].SeriesID != buckets[j].SeriesID {
			return buckets[i].SeriesID < buckets[j].SeriesID
		}
		return buckets[i].Key().Less(buckets[j].Key())
	})
}

// GroupBuckets splits a bucket table by series id.
func GroupBuckets(buckets []Bucket) map[string][]Bucket {
	groups := make(map[string][]Bucket)
	for _, b := range buckets {
		groups[b.SeriesID] = append(groups[b.SeriesID], b)
	}
	return groups
}

// SeriesIDs returns the distinct series ids of a bucket table in sorted order.
func SeriesIDs(buckets []Bucket) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, b := range buckets {
		if _, ok := seen[b.SeriesID]; ok {
			continue
		}
		seen[b.SeriesID] = struct{}{}
		ids = append(ids, b.SeriesID)
	}
	sort.Strings(ids)
	return ids
}

// IndexBuckets maps each key of a single series to its mean.
func IndexBuckets(buckets []Bucket) map[BucketKey]float64 {
	index := make(map[BucketKey]float64, len(buckets))
	for _, b := range buckets {
		index[b.Key()] = b.Mean
	}
	return index
}

// SortedKeys returns the keys of an index ordered by month, then hour.
func SortedKeys(index map[BucketKey]float64) []BucketKey {
	keys := make([]BucketKey, 0, len(index))
	for k := range index {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// MonthName returns the English name of a month number, or the number itself when out of range.
func MonthName(month int) string {
	if month < 1 || month > MonthsPerYear {
		return strconv.Itoa(month)
	}
	return MonthNames[month-1]
}

// ParseMonth accepts a month number or an English month name (full or three-letter).
func ParseMonth(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > MonthsPerYear {
			return 0, fmt.Errorf("month %d out of range 1..12", n)
		}
		return n, nil
	}
	lower := strings.ToLower(s)
	for i, name := range MonthNames {
		full := strings.ToLower(name)
		if lower == full || (len(lower) == 3 && strings.HasPrefix(full, lower)) {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("unknown month %q", s)
}

// FractionLabel formats a threshold fraction as a percentage label, e.g. 0.65 -> "65%".
func FractionLabel(fraction float64) string {
	return strconv.FormatFloat(fraction*100, 'f', -1, 64) + "%"
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 {
	return &v
}
