package tabular

import (
	"strings"
	"testing"
	"time"
)

// FuzzParseBuckets checks that accepted bucket tables only hold valid canonical keys.
func FuzzParseBuckets(f *testing.F) {
	seeds := []string{
		"id,month,hour,mean_value\na,1,0,1\n",
		"ID,Month,Hour 1,Hour 24\nx,December,1,2\n",
		"Month,Hour,101\n6,12,400\n",
		"month;hour;id;mean_value\n1;1;a;1,5\n",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, content string) {
		buckets, err := ParseBuckets("fuzz.csv", strings.NewReader(content))
		if err != nil {
			return
		}
		for _, b := range buckets {
			if !b.Key().Valid() {
				t.Fatalf("invalid key %+v accepted from %q", b.Key(), content)
			}
		}
	})
}

// FuzzParseTimestamp ensures timestamp parsing never panics.
func FuzzParseTimestamp(f *testing.F) {
	for _, seed := range []string{"2024-01-01", "2024-01-01 10:00", "2024-01-01T10:00:00Z", "x"} {
		f.Add(seed)
	}
	f.Fuzz(func(_ *testing.T, raw string) {
		_, _ = ParseTimestamp(raw, time.UTC)
	})
}
