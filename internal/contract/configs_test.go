package contract

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/solarlab/pvcompare/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		input       *ConfigRawInput
		expectError bool
	}{
		{
			name:        "valid minimal config",
			input:       &ConfigRawInput{},
			expectError: false,
		},
		{
			name:        "valid explicit config",
			input:       &ConfigRawInput{Output: "csv", Precision: 3, Timezone: "Europe/Berlin", Fractions: "0.8,0.5", Resolution: "monthly", Timeout: "5s"},
			expectError: false,
		},
		{
			name:        "invalid output",
			input:       &ConfigRawInput{Output: "xml"},
			expectError: true,
		},
		{
			name:        "parquet without output file",
			input:       &ConfigRawInput{Output: "parquet"},
			expectError: true,
		},
		{
			name:        "precision too high",
			input:       &ConfigRawInput{Precision: 9},
			expectError: true,
		},
		{
			name:        "unknown timezone",
			input:       &ConfigRawInput{Timezone: "Mars/Olympus"},
			expectError: true,
		},
		{
			name:        "invalid color flag",
			input:       &ConfigRawInput{Color: "maybe"},
			expectError: true,
		},
		{
			name:        "invalid resolution",
			input:       &ConfigRawInput{Resolution: "daily"},
			expectError: true,
		},
		{
			name:        "invalid fraction",
			input:       &ConfigRawInput{Fractions: "0.5,1.5"},
			expectError: true,
		},
		{
			name:        "invalid timeout",
			input:       &ConfigRawInput{Timeout: "soon"},
			expectError: true,
		},
		{
			name:        "negative timeout",
			input:       &ConfigRawInput{Timeout: "-1s"},
			expectError: true,
		},
		{
			name:        "invalid location",
			input:       &ConfigRawInput{Location: "48.3"},
			expectError: true,
		},
		{
			name:        "combine with explicit variant series",
			input:       &ConfigRawInput{CombineVariant: true, VariantSeries: "east"},
			expectError: true,
		},
		{
			name:        "invalid cache backend",
			input:       &ConfigRawInput{CacheBackend: "redis"},
			expectError: true,
		},
		{
			name:        "mysql without connection string",
			input:       &ConfigRawInput{RunsBackend: "mysql"},
			expectError: true,
		},
		{
			name:        "sqlite cache and runs sharing a file",
			input:       &ConfigRawInput{CacheDBConnect: "/tmp/pv.db", RunsBackend: "sqlite", RunsDBConnect: "/tmp/pv.db"},
			expectError: true,
		},
		{
			name:        "invalid style color",
			input:       &ConfigRawInput{Style: StyleRawInput{MeanColor: "orange"}},
			expectError: true,
		},
		{
			name:        "invalid dash pattern",
			input:       &ConfigRawInput{Style: StyleRawInput{FractionDashes: []string{"wavy"}}},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := ProcessAndValidate(cfg, tt.input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, &ConfigRawInput{}))

	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, DefaultPrecision, cfg.Precision)
	assert.Equal(t, time.UTC.String(), cfg.Location.String())
	assert.Equal(t, DefaultFractions, cfg.Fractions)
	assert.Equal(t, schema.HourlyResolution, cfg.Resolution)
	assert.Equal(t, DefaultRefYear, cfg.RefYear)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultGSABaseURL, cfg.GSABaseURL)
	assert.Equal(t, DefaultMinDeviation, cfg.MinDeviation)
	assert.InDelta(t, 48.35007, cfg.Latitude, 1e-9)
	assert.InDelta(t, 10.901184, cfg.Longitude, 1e-9)
	assert.Equal(t, schema.SQLiteBackend, cfg.CacheBackend)
	assert.Empty(t, cfg.RunsBackend)
	assert.True(t, cfg.UseColors)
	assert.Equal(t, schema.DefaultChartStyle(), cfg.Style)
}

func TestProcessAndValidateOverrides(t *testing.T) {
	cfg := &Config{}
	input := &ConfigRawInput{
		InputFile:       " raw.csv ",
		Output:          "JSON",
		Color:           "no",
		GSABaseURL:      "http://localhost:8080/",
		Fractions:       "0.8, 0.5, 0.8",
		ReferenceSeries: "gsa",
		VariantSeries:   "east",
		Style: StyleRawInput{
			DPI:            300,
			MeanColor:      "#000000",
			FractionDashes: []string{"dashed"},
		},
	}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, "raw.csv", cfg.InputFile)
	assert.Equal(t, schema.JSONOut, cfg.Output)
	assert.False(t, cfg.UseColors)
	assert.Equal(t, "http://localhost:8080", cfg.GSABaseURL)
	assert.Equal(t, []float64{0.5, 0.8}, cfg.Fractions)
	assert.Equal(t, "gsa", cfg.ReferenceSeries)
	assert.Equal(t, "east", cfg.VariantSeries)
	assert.Equal(t, 300, cfg.Style.DPI)
	assert.Equal(t, "#000000", cfg.Style.MeanColor)
	assert.Equal(t, []string{"dashed"}, cfg.Style.FractionDashes)
	assert.Equal(t, schema.DefaultChartStyle().MedianColor, cfg.Style.MedianColor)
}

func TestProcessAndValidateSeparateRunsFile(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{}
	input := &ConfigRawInput{
		CacheDBConnect: filepath.Join(dir, "cache.db"),
		RunsBackend:    "sqlite",
		RunsDBConnect:  filepath.Join(dir, "runs.db"),
	}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, schema.SQLiteBackend, cfg.RunsBackend)
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Fractions: []float64{0.5}, Style: schema.DefaultChartStyle()}
	clone := cfg.Clone()
	clone.Fractions[0] = 0.9
	clone.Style.SeriesColors[0] = "#FFFFFF"

	assert.Equal(t, 0.5, cfg.Fractions[0])
	assert.Equal(t, "#4E79A7", cfg.Style.SeriesColors[0])
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		conn    string
		wantErr bool
	}{
		{schema.SQLiteBackend, "", false},
		{schema.NoneBackend, "", false},
		{schema.MySQLBackend, "user:pass@tcp(localhost:3306)/pv", false},
		{schema.MySQLBackend, "user:pass@localhost/pv", true},
		{schema.MySQLBackend, "", true},
		{schema.PostgreSQLBackend, "host=localhost dbname=pv", false},
		{schema.PostgreSQLBackend, "host=localhost", true},
	}
	for _, tt := range tests {
		err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
		if tt.wantErr {
			assert.Error(t, err, "%s %q", tt.backend, tt.conn)
		} else {
			assert.NoError(t, err, "%s %q", tt.backend, tt.conn)
		}
	}
}
