// Package cmd defines the command-line interface for pvcompare.
package cmd

import (
	"github.com/solarlab/pvcompare/internal/contract"
	"github.com/solarlab/pvcompare/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add pipeline stages to the root command
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(thresholdCmd)
	rootCmd.AddCommand(deviationCmd)
	rootCmd.AddCommand(fleetCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(runsCmd)

	// Add one render subcommand per chart kind
	renderCmd.AddCommand(renderGridCmd)
	renderCmd.AddCommand(renderViolinCmd)
	renderCmd.AddCommand(renderThresholdsCmd)
	renderCmd.AddCommand(renderComparisonCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns in text output")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored deviations in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Print debug logs to stderr")
	rootCmd.PersistentFlags().String("timezone", contract.DefaultTimezone, "IANA timezone used to derive (month, hour) keys")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Response cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("runs-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("runs-db-connect", "", "Database connection string for run tracking (sqlite needs a file separate from the cache)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	bindFlags("root", rootCmd.PersistentFlags())

	// Bind all flags of fetchCmd to Viper
	fetchCmd.Flags().String("systems", "", "System metadata CSV (id;azimuth;tilt;capacity)")
	fetchCmd.Flags().String("id", "", "Series id of a single system")
	fetchCmd.Flags().Float64("azimuth", 180, "Azimuth of a single system in degrees clockwise from north")
	fetchCmd.Flags().Float64("tilt", 30, "Tilt of a single system in degrees from horizontal")
	fetchCmd.Flags().Float64("capacity", 0, "Rated DC capacity of a single system in W")
	fetchCmd.Flags().String("location", contract.DefaultLocation, "Site location as 'lat,lon' in decimal degrees")
	fetchCmd.Flags().Int("gmt-offset", 0, "GMT offset in hours sent to the modeling service")
	fetchCmd.Flags().String("gsa-base-url", contract.DefaultGSABaseURL, "Base URL of the modeling service")
	fetchCmd.Flags().String("gsa-api-key", "", "API key for the modeling service (prefer PVCOMPARE_GSA_API_KEY)")
	fetchCmd.Flags().String("resolution", string(schema.HourlyResolution), "Sample resolution: hourly or monthly")
	fetchCmd.Flags().Int("ref-year", contract.DefaultRefYear, "Reference year stamped on modeled samples")
	fetchCmd.Flags().String("timeout", contract.DefaultTimeout.String(), "Timeout for each request to the modeling service")
	bindFlags("fetch", fetchCmd.Flags())

	// Bind all flags of normalizeCmd to Viper
	normalizeCmd.Flags().Bool("resample-hourly", false, "Average sub-hourly samples per clock hour before the monthly mean")
	bindFlags("normalize", normalizeCmd.Flags())

	// Bind all flags of compareCmd to Viper
	compareCmd.Flags().String("reference", "", "Reference bucket CSV")
	compareCmd.Flags().String("variant", "", "Variant bucket CSV")
	compareCmd.Flags().String("reference-series", "", "Only compare this reference series id")
	compareCmd.Flags().String("variant-series", "", "Compare every reference series against this variant series id")
	compareCmd.Flags().Bool("combine-variant", false, "Sum all variant series into one before comparing")
	compareCmd.Flags().Bool("scale-to-reference", false, "Scale each variant so its peak matches the reference peak")
	bindFlags("compare", compareCmd.Flags())

	// Bind all flags of thresholdCmd to Viper
	thresholdCmd.Flags().String("fractions", "0.5,0.65,0.8", "Comma-separated peak fractions")
	thresholdCmd.Flags().Bool("by-month", false, "Count per month against the monthly peak")
	thresholdCmd.Flags().String("peak-reference", "", "Bucket CSV whose monthly peaks set the thresholds (requires --by-month)")
	bindFlags("threshold", thresholdCmd.Flags())

	// Bind all flags of deviationCmd to Viper
	deviationCmd.Flags().String("measured", "", "Measured bucket CSV")
	deviationCmd.Flags().String("modeled", "", "Modeled bucket CSV")
	deviationCmd.Flags().Float64("min-deviation", contract.DefaultMinDeviation, "Drop deviations whose magnitude is at or below this value")
	bindFlags("deviation", deviationCmd.Flags())

	// The violin chart reads the same inputs as the deviation stage
	renderViolinCmd.Flags().AddFlagSet(deviationCmd.Flags())

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	bindFlags("runs migrate", runsMigrateCmd.Flags())
}

// bindFlags binds a flag set to Viper, exiting on failure.
func bindFlags(name string, flags *pflag.FlagSet) {
	if err := viper.BindPFlags(flags); err != nil {
		contract.LogFatal("Error binding "+name+" flags", err)
	}
}
