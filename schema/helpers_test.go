package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortBuckets(t *testing.T) {
	buckets := []Bucket{
		{SeriesID: "b", Month: 1, Hour: 0},
		{SeriesID: "a", Month: 2, Hour: 3},
		{SeriesID: "a", Month: 1, Hour: 5},
		{SeriesID: "a", Month: 1, Hour: 4},
	}
	SortBuckets(buckets)

	want := []BucketKey{{1, 4}, {1, 5}, {2, 3}, {1, 0}}
	for i, b := range buckets {
		assert.Equal(t, want[i], b.Key(), "position %d", i)
	}
	assert.Equal(t, "b", buckets[3].SeriesID)
}

func TestSeriesIDsAndGroups(t *testing.T) {
	buckets := []Bucket{
		{SeriesID: "west", Month: 1, Hour: 0, Mean: 1},
		{SeriesID: "east", Month: 1, Hour: 0, Mean: 2},
		{SeriesID: "west", Month: 1, Hour: 1, Mean: 3},
	}
	assert.Equal(t, []string{"east", "west"}, SeriesIDs(buckets))

	groups := GroupBuckets(buckets)
	assert.Len(t, groups["west"], 2)
	assert.Len(t, groups["east"], 1)

	index := IndexBuckets(groups["west"])
	assert.Equal(t, 3.0, index[BucketKey{Month: 1, Hour: 1}])
	assert.Equal(t, []BucketKey{{1, 0}, {1, 1}}, SortedKeys(index))
}

func TestBucketKeyValid(t *testing.T) {
	tests := []struct {
		key  BucketKey
		want bool
	}{
		{BucketKey{1, 0}, true},
		{BucketKey{12, 23}, true},
		{BucketKey{0, 0}, false},
		{BucketKey{13, 0}, false},
		{BucketKey{6, 24}, false},
		{BucketKey{6, -1}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.key.Valid(), "%+v", tt.key)
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{"12", 12, false},
		{"January", 1, false},
		{"december", 12, false},
		{"Sep", 9, false},
		{" May ", 5, false},
		{"13", 0, true},
		{"Smarch", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMonth(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMonthNameAndFractionLabel(t *testing.T) {
	assert.Equal(t, "March", MonthName(3))
	assert.Equal(t, "0", MonthName(0))
	assert.Equal(t, "50%", FractionLabel(0.5))
	assert.Equal(t, "65%", FractionLabel(0.65))
	assert.Equal(t, "80%", FractionLabel(0.8))
}
