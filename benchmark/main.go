// Package main provides a performance benchmarking tool for the pvcompare CLI.
// It generates synthetic sample files of increasing size, runs each pipeline stage
// several times, treating the first successful run as cold and averaging the rest as warm,
// and writes the timings to a CSV file for documentation.
//
// Prerequisites:
// - pvcompare binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where fixture files are generated
package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (cold run and average of warm runs).
type BenchmarkResult struct {
	Fixture  string
	Command  string
	Rows     int
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir  string
	Timeout  time.Duration
	Runs     int
	Fixtures map[string]int // fixture name -> number of systems, one year of hourly rows each
	Order    []string
}

// stage is one pvcompare invocation measured against a fixture.
type stage struct {
	name string
	args func(dir string) []string
}

var stages = []stage{
	{"normalize", func(dir string) []string {
		return []string{"normalize", filepath.Join(dir, "samples.csv"), "--output", "csv",
			"--output-file", filepath.Join(dir, "buckets.csv")}
	}},
	{"normalize-resampled", func(dir string) []string {
		return []string{"normalize", filepath.Join(dir, "samples.csv"), "--resample-hourly", "--output", "csv",
			"--output-file", filepath.Join(dir, "buckets_resampled.csv")}
	}},
	{"threshold", func(dir string) []string {
		return []string{"threshold", filepath.Join(dir, "buckets.csv"), "--by-month", "--output", "csv",
			"--output-file", filepath.Join(dir, "counts.csv")}
	}},
	{"render-grid", func(dir string) []string {
		return []string{"render", "grid", filepath.Join(dir, "buckets.csv"),
			"--output-file", filepath.Join(dir, "grid.png")}
	}},
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir: os.Args[1],
		Timeout: 5 * time.Minute,
		Runs:    4,
		Fixtures: map[string]int{
			"single": 1,
			"small":  10,
			"fleet":  100,
		},
		Order: []string{"single", "small", "fleet"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the pvcompare binary exists and fixtures can be written
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("pvcompare"); err != nil {
		return fmt.Errorf("pvcompare binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// runBenchmarks generates each fixture and executes every stage against it
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d fixtures, %v timeout, %d runs per stage\n",
		len(config.Order), config.Timeout, config.Runs)

	for _, name := range config.Order {
		dir := filepath.Join(config.WorkDir, name)
		rows, err := generateFixture(dir, config.Fixtures[name])
		if err != nil {
			fmt.Printf("Skipping %s: %v\n", name, err)
			continue
		}
		fmt.Printf("Benchmarking %s (%d rows)\n", name, rows)

		for _, s := range stages {
			cold, warm := runBenchmark(config, s.args(dir), config.Runs)
			result := BenchmarkResult{Fixture: name, Command: s.name, Rows: rows, ColdTime: cold, WarmTime: warm}
			fmt.Printf("  %-20s Cold: %s, Warm average: %s\n", s.name, cold, warm)
			results = append(results, result)
		}
	}

	return results
}

// generateFixture writes one year of hourly clear-sky shaped samples per system in long layout.
func generateFixture(dir string, systems int) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	f, err := os.Create(filepath.Join(dir, "samples.csv"))
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"id", "timestamp", "value"}); err != nil {
		return 0, err
	}

	rows := 0
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for sys := range systems {
		id := fmt.Sprintf("system_%03d", sys)
		for ts := start; ts.Year() == 2024; ts = ts.Add(time.Hour) {
			season := 0.6 + 0.4*math.Sin(float64(ts.YearDay()-80)/365*2*math.Pi)
			day := math.Max(0, math.Sin(float64(ts.Hour()-6)/12*math.Pi))
			value := 5000 * season * day
			if err := w.Write([]string{id, ts.Format(time.RFC3339), fmt.Sprintf("%.1f", value)}); err != nil {
				return 0, err
			}
			rows++
		}
	}
	return rows, w.Error()
}

// runBenchmark executes a pvcompare command multiple times and returns cold time and warm average
func runBenchmark(config BenchmarkConfig, args []string, numRuns int) (coldTime, warmAvg string) {
	args = append(args, "--cache-backend", "none")

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("pvcompare", args...)

		done := make(chan error, 1)
		go func() {
			_, err := cmd.CombinedOutput()
			done <- err
		}()

		select {
		case err := <-done:
			if err == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	coldTime, warmAvg = "TIMEOUT", "TIMEOUT"
	if len(times) > 0 {
		coldTime = fmt.Sprintf("%.3fs", times[0])
	}
	if len(times) > 1 {
		var sum float64
		for _, t := range times[1:] {
			sum += t
		}
		warmAvg = fmt.Sprintf("%.3fs", sum/float64(len(times)-1))
	}
	return coldTime, warmAvg
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("pvcompare_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"fixture", "cmd", "rows", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		record := []string{result.Fixture, result.Command, fmt.Sprint(result.Rows), result.ColdTime, result.WarmTime}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results grouped by stage
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, s := range stages {
		fmt.Printf("%s:\n", strings.ToUpper(s.name[:1])+s.name[1:])
		for _, result := range results {
			if result.Command == s.name {
				fmt.Printf("  %-8s (%7d rows): Cold: %s, Warm: %s\n", result.Fixture, result.Rows, result.ColdTime, result.WarmTime)
			}
		}
	}
}
