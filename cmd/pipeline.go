package cmd

import (
	"github.com/solarlab/pvcompare/core"
	"github.com/solarlab/pvcompare/internal/contract"
	"github.com/solarlab/pvcompare/internal/gsa"
	"github.com/spf13/cobra"
)

// fetchCmd requests modeled generation for one system or a metadata file of systems.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch modeled PV generation from the solar atlas service.",
	Long: `Request one reference year of modeled generation per system and write it as raw samples.

Each system is described by azimuth, tilt and rated DC capacity. Values are returned in Wh
scaled to the system capacity. Responses are cached in the configured cache backend, so
repeated runs for the same system and site do not call the service again.

Examples:
  # Fetch every system of a metadata file
  pvcompare fetch --systems metadata.csv --output csv --output-file gsa_raw.csv

  # Fetch a single east-facing system
  pvcompare fetch --id garage --azimuth 90 --tilt 25 --capacity 4200

  # Daily totals per month instead of hourly values
  pvcompare fetch --systems metadata.csv --resolution monthly`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		client := gsa.NewClient(gsa.HTTPClient(version, cfg.Timeout), cfg.GSABaseURL, cfg.GSAAPIKey)
		if err := core.ExecuteFetch(rootCtx, cfg, client, cacheManager); err != nil {
			contract.LogFatal("Cannot fetch modeled generation", err)
		}
	},
}

// normalizeCmd reduces raw samples to canonical buckets.
var normalizeCmd = &cobra.Command{
	Use:   "normalize <raw.csv>",
	Short: "Reduce raw samples to one mean per (series, month, hour).",
	Long: `Read a raw sample CSV and write the mean value of every (series, month, hour) key.

Accepts the long layout (id,timestamp,value) and the wide measured export
(DateTime,<id1>,<id2>,...). Month and hour are taken in --timezone. Years without data
are left out of the mean, never filled with zeros.

Examples:
  # Normalize a measured export in local time
  pvcompare normalize measured.csv --timezone Europe/Berlin --output csv --output-file measured_buckets.csv

  # Average 15 minute readings per hour first
  pvcompare normalize measured.csv --resample-hourly`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteNormalize(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot normalize samples", err)
		}
	},
}

// compareCmd aligns two bucket tables.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare a variant bucket table against a reference.",
	Long: `Align reference and variant buckets on their shared (month, hour) keys and report
variant minus reference deviations. Keys present on only one side are dropped.

The scaled deviation is the deviation divided by the reference value and is left empty
when the reference value is zero.

Examples:
  # Modeled vs measured, series paired by id
  pvcompare compare --reference measured_buckets.csv --variant gsa_buckets.csv

  # Compare each measured system with the sum of all modeled systems
  pvcompare compare --reference measured_buckets.csv --variant gsa_buckets.csv --combine-variant`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCompare(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot compare buckets", err)
		}
	},
}

// thresholdCmd counts buckets at or above peak fractions.
var thresholdCmd = &cobra.Command{
	Use:   "threshold <buckets.csv>",
	Short: "Count hours at or above fractions of the peak value.",
	Long: `Count the buckets of each series whose value reaches a fraction of the peak.

Without --by-month the peak is the series maximum over the whole year. With --by-month each
month is counted against its own peak, or against the monthly peaks of --peak-reference.

Examples:
  pvcompare threshold gsa_buckets.csv
  pvcompare threshold gsa_buckets.csv --by-month --fractions 0.5,0.8
  pvcompare threshold measured_buckets.csv --by-month --peak-reference gsa_buckets.csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteThreshold(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot count thresholds", err)
		}
	},
}

// deviationCmd profiles measured minus modeled deviations per hour.
var deviationCmd = &cobra.Command{
	Use:   "deviation",
	Short: "Summarize measured minus modeled deviations per hour of day.",
	Long: `Pair measured and modeled buckets on (series, month, hour) and report the count, mean,
median, minimum and maximum of their difference for every hour of the day.

Differences at or below --min-deviation in magnitude are dropped, so night hours where both
sides are zero do not dominate the profile.

Examples:
  pvcompare deviation --measured measured_buckets.csv --modeled gsa_buckets.csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDeviation(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot profile deviations", err)
		}
	},
}

// fleetCmd describes a set of systems by orientation and tilt.
var fleetCmd = &cobra.Command{
	Use:   "fleet <metadata.csv>",
	Short: "Group systems by orientation and tilt band.",
	Long: `Count the systems of a metadata file per compass orientation (North, East, South, West)
and tilt band (< 20, 20 - 40, 40 - 60, > 60) and report their mean capacity.

Examples:
  pvcompare fleet metadata.csv
  pvcompare fleet metadata.csv --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteFleet(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot describe fleet", err)
		}
	},
}
