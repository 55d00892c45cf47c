package contract

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// Color variables for console output.
var (
	PositiveColor = color.New(color.FgGreen)              // PositiveColor marks a variant above its reference.
	NegativeColor = color.New(color.FgRed)                // NegativeColor marks a variant below its reference.
	PeakColor     = color.New(color.FgYellow, color.Bold) // PeakColor highlights peak values.
	MutedColor    = color.New(color.FgCyan)               // MutedColor is used for informational values.
)

// ValidDashPatterns lists the named line styles accepted by the chart style.
var ValidDashPatterns = map[string]struct{}{
	"solid":   {},
	"dotted":  {},
	"dashed":  {},
	"dashdot": {},
}

var hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// IsHexColor reports whether s is a #RRGGBB color.
func IsHexColor(s string) bool {
	return hexColorRegex.MatchString(s)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the response cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".pvcompare_cache.db"
	}
	return filepath.Join(homeDir, ".pvcompare_cache.db")
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run tracking.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".pvcompare_runs.db"
	}
	return filepath.Join(homeDir, ".pvcompare_runs.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// ParseFractions parses a comma-separated list of peak fractions such as "0.5,0.65,0.8".
// Every fraction must lie in (0, 1]; the result is sorted ascending without duplicates.
func ParseFractions(s string) ([]float64, error) {
	seen := make(map[float64]struct{})
	var fractions []float64
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid fraction %q: %w", part, err)
		}
		if math.IsNaN(f) || f <= 0 || f > 1 {
			return nil, fmt.Errorf("fraction %q must be greater than 0 and at most 1", part)
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		fractions = append(fractions, f)
	}
	if len(fractions) == 0 {
		return nil, fmt.Errorf("no fractions in %q", s)
	}
	sort.Float64s(fractions)
	return fractions, nil
}

// ParseLocation parses a "lat,lon" pair in decimal degrees.
func ParseLocation(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid location %q. expected lat,lon", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || math.IsNaN(lat) || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("invalid latitude in %q", s)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || math.IsNaN(lon) || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("invalid longitude in %q", s)
	}
	return lat, lon, nil
}

// WriteFileAtomic writes to a temporary file next to path and renames it into place
// once fn succeeds, so a failing writer leaves no partial file behind.
func WriteFileAtomic(path string, fn func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", tmp.Name(), err)
	}
	if err = fn(tmp); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into %s: %w", path, err)
	}
	return nil
}
