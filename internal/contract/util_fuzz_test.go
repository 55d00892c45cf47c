package contract

import (
	"testing"
)

// FuzzParseFractions checks that accepted fraction lists are sorted, unique and within (0, 1].
func FuzzParseFractions(f *testing.F) {
	seeds := []string{"0.5,0.65,0.8", "1", "0", "", " 0.3 ,0.3", "1e-3", "NaN", "-0.5,2"}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, s string) {
		fractions, err := ParseFractions(s)
		if err != nil {
			return
		}
		for i, v := range fractions {
			if v <= 0 || v > 1 {
				t.Fatalf("fraction %v out of range for input %q", v, s)
			}
			if i > 0 && fractions[i-1] >= v {
				t.Fatalf("fractions not strictly ascending for input %q: %v", s, fractions)
			}
		}
	})
}

// FuzzParseLocation checks that accepted coordinates stay within valid bounds.
func FuzzParseLocation(f *testing.F) {
	for _, seed := range []string{"48.35007,10.901184", "-90,180", "0", "a,b", "1,2,3"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, s string) {
		lat, lon, err := ParseLocation(s)
		if err != nil {
			return
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			t.Fatalf("out of range coordinates %v,%v for input %q", lat, lon, s)
		}
	})
}
