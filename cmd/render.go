package cmd

import (
	"github.com/solarlab/pvcompare/core"
	"github.com/solarlab/pvcompare/internal/contract"
	"github.com/solarlab/pvcompare/schema"
	"github.com/spf13/cobra"
)

// renderCmd groups the chart commands.
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Draw computed tables as PNG charts.",
	Long: `Draw the tables written by the other stages as PNG charts.

Charts are saved to --output-file, or to a default file name in the current directory.
Colors, dash patterns, size and resolution come from the style block of .pvcompare.yaml.

Subcommands:
  grid        - Monthly diurnal curves, one panel per series
  violin      - Per-hour deviation distributions with mean and median
  thresholds  - Monthly hours above each peak fraction
  comparison  - Reference, variant and deviation per month`,
}

func renderCommand(kind schema.ChartKind, use, short string, args cobra.PositionalArgs) *cobra.Command {
	exec := core.RenderExecutor(kind)
	return &cobra.Command{
		Use:     use,
		Short:   short,
		Args:    args,
		PreRunE: sharedSetupWrapper,
		Run: func(_ *cobra.Command, _ []string) {
			if err := exec(rootCtx, cfg, cacheManager); err != nil {
				contract.LogFatal("Cannot render "+string(kind)+" chart", err)
			}
		},
	}
}

var (
	renderGridCmd = renderCommand(schema.GridChart, "grid <buckets.csv>",
		"Draw monthly diurnal curves for every series.", cobra.ExactArgs(1))
	renderViolinCmd = renderCommand(schema.ViolinChart, "violin",
		"Draw per-hour deviation distributions of --measured against --modeled.", cobra.NoArgs)
	renderThresholdsCmd = renderCommand(schema.ThresholdChart, "thresholds <threshold_counts.csv>",
		"Draw monthly hours above each peak fraction.", cobra.ExactArgs(1))
	renderComparisonCmd = renderCommand(schema.ComparisonChart, "comparison <comparison.csv>",
		"Draw reference, variant and deviation for every month.", cobra.ExactArgs(1))
)
