//go:build integration

// Package integration contains integration tests for pvcompare.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
package integration

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generateSamples writes June samples for one system, value = 10*hour + day, hours 6..18.
func generateSamples(t *testing.T, dir string) map[int]float64 {
	t.Helper()
	var b strings.Builder
	b.WriteString("id,timestamp,value\n")
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for day := 1; day <= 30; day++ {
		for hour := 6; hour <= 18; hour++ {
			v := float64(10*hour + day)
			fmt.Fprintf(&b, "roof,2024-06-%02dT%02d:00:00Z,%g\n", day, hour, v)
			sums[hour] += v
			counts[hour]++
		}
	}
	writeFixture(t, dir, "samples.csv", b.String())

	means := make(map[int]float64, len(sums))
	for hour, sum := range sums {
		means[hour] = sum / float64(counts[hour])
	}
	return means
}

// readCSV loads a CSV file into header-keyed records.
func readCSV(t *testing.T, path string) []map[string]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(row))
		for i, col := range rows[0] {
			rec[col] = row[i]
		}
		records = append(records, rec)
	}
	return records
}

// TestNormalizeVerification runs pvcompare normalize and checks every bucket mean
// against a mean computed directly from the generated samples.
func TestNormalizeVerification(t *testing.T) {
	dir := t.TempDir()
	expected := generateSamples(t, dir)

	_, err := runCommand(t, dir, "normalize", "samples.csv",
		"--timezone", "UTC", "--output", "csv", "--output-file", "buckets.csv", "--cache-backend", "none")
	require.NoError(t, err)

	records := readCSV(t, filepath.Join(dir, "buckets.csv"))
	require.Len(t, records, len(expected))

	for _, rec := range records {
		t.Run(rec["month"]+"/"+rec["hour"], func(t *testing.T) {
			assert.Equal(t, "roof", rec["id"])
			assert.Equal(t, "6", rec["month"])
			hour, err := strconv.Atoi(rec["hour"])
			require.NoError(t, err)
			mean, err := strconv.ParseFloat(rec["mean_value"], 64)
			require.NoError(t, err)
			assert.InDelta(t, expected[hour], mean, 1e-9)
			assert.Equal(t, "30", rec["samples"])
		})
	}
}

// TestThresholdVerification chains normalize into threshold and checks the count
// against the buckets at or above half the peak.
func TestThresholdVerification(t *testing.T) {
	dir := t.TempDir()
	expected := generateSamples(t, dir)

	_, err := runCommand(t, dir, "normalize", "samples.csv",
		"--timezone", "UTC", "--output", "csv", "--output-file", "buckets.csv", "--cache-backend", "none")
	require.NoError(t, err)

	_, err = runCommand(t, dir, "threshold", "buckets.csv",
		"--fractions", "0.5", "--output", "csv", "--output-file", "counts.csv", "--cache-backend", "none")
	require.NoError(t, err)

	peak := 0.0
	for _, mean := range expected {
		peak = max(peak, mean)
	}
	want := 0
	for _, mean := range expected {
		if mean >= 0.5*peak {
			want++
		}
	}

	records := readCSV(t, filepath.Join(dir, "counts.csv"))
	require.NotEmpty(t, records)
	for _, rec := range records {
		if rec["month"] != "0" {
			continue
		}
		count, err := strconv.Atoi(rec["count"])
		require.NoError(t, err)
		assert.Equal(t, want, count)
	}
}

// TestFleetAndRender covers the metadata and chart stages end to end.
func TestFleetAndRender(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "systems.csv", "id,azimuth,tilt,capacity\nroof,180,30,5000\ngarage,90,45,3000\n")
	generateSamples(t, dir)

	out, err := runCommand(t, dir, "fleet", "systems.csv", "--cache-backend", "none")
	require.NoError(t, err)
	assert.Contains(t, out, "Described 2 systems")

	_, err = runCommand(t, dir, "normalize", "samples.csv",
		"--output", "csv", "--output-file", "buckets.csv", "--cache-backend", "none")
	require.NoError(t, err)

	_, err = runCommand(t, dir, "render", "grid", "buckets.csv", "--output-file", "grid.png", "--cache-backend", "none")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "grid.png"))
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(data[:4]))
}
