package contract

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/solarlab/pvcompare/schema"
)

// Default values for configuration.
const (
	DefaultPrecision    = 2
	MaxPrecision        = 4
	DefaultTimeout      = 30 * time.Second
	DefaultRefYear      = 2024
	DefaultLocation     = "48.35007,10.901184"
	DefaultGSABaseURL   = "https://api.globalsolaratlas.info"
	DefaultMinDeviation = 0.01
	DefaultTimezone     = "UTC"
)

// DefaultFractions are the peak fractions reported by the threshold analyzer.
var DefaultFractions = []float64{0.5, 0.65, 0.8}

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for a pipeline stage.
// This struct remains the "final, validated" config.
type Config struct {
	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	Verbose    bool

	// Location is the reporting timezone used to derive (month, hour) keys.
	Location *time.Location

	// Input files resolved from positional args and per-command flags.
	InputFile         string
	SystemsFile       string
	ReferenceFile     string
	VariantFile       string
	PeakReferenceFile string
	MeasuredFile      string
	ModeledFile       string

	// Single-system fetch, used when SystemsFile is empty.
	System schema.SystemRecord

	Latitude   float64
	Longitude  float64
	GMTOffset  int
	GSABaseURL string
	GSAAPIKey  string // Please use env var as this is plaintext
	Resolution schema.Resolution
	RefYear    int
	Timeout    time.Duration

	ResampleHourly   bool
	ReferenceSeries  string
	VariantSeries    string
	CombineVariant   bool
	ScaleToReference bool
	Fractions        []float64
	ByMonth          bool
	MinDeviation     float64

	Style schema.ChartStyle

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext
}

// StyleRawInput holds chart style overrides from the YAML config file.
type StyleRawInput struct {
	WidthCm        float64  `mapstructure:"width-cm"`
	HeightCm       float64  `mapstructure:"height-cm"`
	DPI            int      `mapstructure:"dpi"`
	LineWidth      float64  `mapstructure:"line-width"`
	ReferenceColor string   `mapstructure:"reference-color"`
	VariantColor   string   `mapstructure:"variant-color"`
	DeviationColor string   `mapstructure:"deviation-color"`
	MeanColor      string   `mapstructure:"mean-color"`
	MedianColor    string   `mapstructure:"median-color"`
	ViolinColor    string   `mapstructure:"violin-color"`
	SeriesColors   []string `mapstructure:"series-colors"`
	MonthColors    []string `mapstructure:"month-colors"`
	FractionDashes []string `mapstructure:"fraction-dashes"`
	GridColumns    int      `mapstructure:"grid-columns"`
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputFile string

	// --- Fields from rootCmd.PersistentFlags() ---
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Precision      int    `mapstructure:"precision"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	Verbose        bool   `mapstructure:"verbose"`
	Timezone       string `mapstructure:"timezone"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	RunsBackend    string `mapstructure:"runs-backend"`
	RunsDBConnect  string `mapstructure:"runs-db-connect"`

	// --- Fields from fetch flags ---
	Systems    string  `mapstructure:"systems"`
	ID         string  `mapstructure:"id"`
	Azimuth    float64 `mapstructure:"azimuth"`
	Tilt       float64 `mapstructure:"tilt"`
	Capacity   float64 `mapstructure:"capacity"`
	Location   string  `mapstructure:"location"`
	GMTOffset  int     `mapstructure:"gmt-offset"`
	GSABaseURL string  `mapstructure:"gsa-base-url"`
	GSAAPIKey  string  `mapstructure:"gsa-api-key"`
	Resolution string  `mapstructure:"resolution"`
	RefYear    int     `mapstructure:"ref-year"`
	Timeout    string  `mapstructure:"timeout"`

	// --- Fields from analysis flags ---
	ResampleHourly   bool    `mapstructure:"resample-hourly"`
	Reference        string  `mapstructure:"reference"`
	Variant          string  `mapstructure:"variant"`
	ReferenceSeries  string  `mapstructure:"reference-series"`
	VariantSeries    string  `mapstructure:"variant-series"`
	CombineVariant   bool    `mapstructure:"combine-variant"`
	ScaleToReference bool    `mapstructure:"scale-to-reference"`
	Fractions        string  `mapstructure:"fractions"`
	ByMonth          bool    `mapstructure:"by-month"`
	PeakReference    string  `mapstructure:"peak-reference"`
	Measured         string  `mapstructure:"measured"`
	Modeled          string  `mapstructure:"modeled"`
	MinDeviation     float64 `mapstructure:"min-deviation"`

	// --- Fields from YAML config only ---
	Style StyleRawInput `mapstructure:"style"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Fractions != nil {
		clone.Fractions = slices.Clone(c.Fractions)
	}
	clone.Style.SeriesColors = slices.Clone(c.Style.SeriesColors)
	clone.Style.MonthColors = slices.Clone(c.Style.MonthColors)
	clone.Style.FractionDashes = slices.Clone(c.Style.FractionDashes)
	return &clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processFetchInputs(cfg, input); err != nil {
		return err
	}
	if err := processAnalysisInputs(cfg, input); err != nil {
		return err
	}
	return processStyle(cfg, input.Style)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the output and presentation fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.InputFile = strings.TrimSpace(input.InputFile)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Verbose = input.Verbose

	colors := true
	if input.Color != "" {
		var err error
		if colors, err = ParseBoolString(input.Color); err != nil {
			return fmt.Errorf("invalid --color value: %w", err)
		}
	}
	cfg.UseColors = colors

	cfg.Precision = input.Precision
	if cfg.Precision == 0 {
		cfg.Precision = DefaultPrecision
	}
	if cfg.Precision < 1 || cfg.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	tz := input.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", tz, err)
	}
	cfg.Location = loc
	return nil
}

// validateBackendConfigs validates cache and run tracking backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache backend: %w", err)
	}

	// --- Runs Backend Validation ---
	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunsBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return fmt.Errorf("runs backend: %w", err)
	}

	// For SQLite, resolve to actual file paths to catch default path conflicts
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunsBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		runsPath := cfg.RunsDBConnect
		if runsPath == "" {
			runsPath = GetRunsDBFilePath()
		}
		if cachePath == runsPath {
			return fmt.Errorf("cache and runs storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// processFetchInputs handles the remote service parameters.
func processFetchInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.SystemsFile = strings.TrimSpace(input.Systems)
	cfg.System = schema.SystemRecord{
		ID:       strings.TrimSpace(input.ID),
		Azimuth:  input.Azimuth,
		Tilt:     input.Tilt,
		Capacity: input.Capacity,
	}

	location := input.Location
	if location == "" {
		location = DefaultLocation
	}
	lat, lon, err := ParseLocation(location)
	if err != nil {
		return err
	}
	cfg.Latitude, cfg.Longitude = lat, lon
	cfg.GMTOffset = input.GMTOffset

	cfg.GSABaseURL = strings.TrimRight(input.GSABaseURL, "/")
	if cfg.GSABaseURL == "" {
		cfg.GSABaseURL = DefaultGSABaseURL
	}
	cfg.GSAAPIKey = input.GSAAPIKey

	cfg.Resolution = schema.Resolution(strings.ToLower(input.Resolution))
	if cfg.Resolution == "" {
		cfg.Resolution = schema.HourlyResolution
	}
	if _, ok := schema.ValidResolutions[cfg.Resolution]; !ok {
		return fmt.Errorf("invalid resolution '%s'. must be hourly, monthly", input.Resolution)
	}

	cfg.RefYear = input.RefYear
	if cfg.RefYear == 0 {
		cfg.RefYear = DefaultRefYear
	}
	if cfg.RefYear < 1970 || cfg.RefYear > 9999 {
		return fmt.Errorf("ref-year must be between 1970 and 9999 (received %d)", cfg.RefYear)
	}

	cfg.Timeout = DefaultTimeout
	if input.Timeout != "" {
		d, err := time.ParseDuration(input.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout '%s': %w", input.Timeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("timeout must be positive (received %s)", input.Timeout)
		}
		cfg.Timeout = d
	}
	return nil
}

// processAnalysisInputs handles comparator, threshold and deviation settings.
func processAnalysisInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.ResampleHourly = input.ResampleHourly
	cfg.ReferenceFile = strings.TrimSpace(input.Reference)
	cfg.VariantFile = strings.TrimSpace(input.Variant)
	cfg.ReferenceSeries = strings.TrimSpace(input.ReferenceSeries)
	cfg.VariantSeries = strings.TrimSpace(input.VariantSeries)
	cfg.CombineVariant = input.CombineVariant
	cfg.ScaleToReference = input.ScaleToReference
	cfg.ByMonth = input.ByMonth
	cfg.PeakReferenceFile = strings.TrimSpace(input.PeakReference)
	cfg.MeasuredFile = strings.TrimSpace(input.Measured)
	cfg.ModeledFile = strings.TrimSpace(input.Modeled)

	if cfg.CombineVariant && cfg.VariantSeries != "" {
		return fmt.Errorf("--combine-variant and --variant-series cannot be used together")
	}

	cfg.Fractions = slices.Clone(DefaultFractions)
	if strings.TrimSpace(input.Fractions) != "" {
		fractions, err := ParseFractions(input.Fractions)
		if err != nil {
			return err
		}
		cfg.Fractions = fractions
	}

	cfg.MinDeviation = input.MinDeviation
	if cfg.MinDeviation == 0 {
		cfg.MinDeviation = DefaultMinDeviation
	}
	if cfg.MinDeviation < 0 {
		return fmt.Errorf("min-deviation cannot be negative (received %g)", input.MinDeviation)
	}
	return nil
}

// processStyle overlays the configured chart style on the defaults.
func processStyle(cfg *Config, raw StyleRawInput) error {
	style := schema.DefaultChartStyle()
	if raw.WidthCm > 0 {
		style.WidthCm = raw.WidthCm
	}
	if raw.HeightCm > 0 {
		style.HeightCm = raw.HeightCm
	}
	if raw.DPI > 0 {
		style.DPI = raw.DPI
	}
	if raw.LineWidth > 0 {
		style.LineWidth = raw.LineWidth
	}
	if raw.GridColumns > 0 {
		style.GridColumns = raw.GridColumns
	}

	colors := map[*string]string{
		&style.ReferenceColor: raw.ReferenceColor,
		&style.VariantColor:   raw.VariantColor,
		&style.DeviationColor: raw.DeviationColor,
		&style.MeanColor:      raw.MeanColor,
		&style.MedianColor:    raw.MedianColor,
		&style.ViolinColor:    raw.ViolinColor,
	}
	for dst, src := range colors {
		if src == "" {
			continue
		}
		if !IsHexColor(src) {
			return fmt.Errorf("invalid style color %q. must be #RRGGBB", src)
		}
		*dst = src
	}
	for _, list := range [][]string{raw.SeriesColors, raw.MonthColors} {
		for _, c := range list {
			if !IsHexColor(c) {
				return fmt.Errorf("invalid style color %q. must be #RRGGBB", c)
			}
		}
	}
	if len(raw.SeriesColors) > 0 {
		style.SeriesColors = slices.Clone(raw.SeriesColors)
	}
	if len(raw.MonthColors) > 0 {
		style.MonthColors = slices.Clone(raw.MonthColors)
	}
	if len(raw.FractionDashes) > 0 {
		for _, d := range raw.FractionDashes {
			if _, ok := ValidDashPatterns[strings.ToLower(d)]; !ok {
				return fmt.Errorf("invalid dash pattern %q. must be solid, dotted, dashed, dashdot", d)
			}
		}
		style.FractionDashes = slices.Clone(raw.FractionDashes)
	}
	cfg.Style = style
	return nil
}
