package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/solarlab/pvcompare/internal/contract"
	"github.com/solarlab/pvcompare/internal/parquet"
	"github.com/solarlab/pvcompare/schema"
)

var (
	deviationHeader = []string{"hour", "count", "mean", "median", "min", "max"}
	fleetHeader     = []string{"dimension", "group", "count"}
)

func parquetDeviation(hours []schema.HourDeviation) []parquet.HourDeviation {
	return parquet.ConvertHourDeviations(hours)
}

func parquetFleet(dist schema.FleetDistribution) []parquet.FleetGroup {
	return parquet.ConvertFleet(dist)
}

func writeCSVDeviation(w *csv.Writer, hours []schema.HourDeviation) error {
	for _, h := range hours {
		row := []string{
			strconv.Itoa(h.Hour),
			strconv.Itoa(h.Count),
			csvFloat(h.Mean),
			csvFloat(h.Median),
			csvFloat(h.Min),
			csvFloat(h.Max),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// writeCSVFleet writes the orientation groups first, then the tilt bands.
func writeCSVFleet(w *csv.Writer, dist schema.FleetDistribution) error {
	for _, g := range parquet.ConvertFleet(dist) {
		if err := w.Write([]string{g.Dimension, g.Group, strconv.Itoa(int(g.Count))}); err != nil {
			return err
		}
	}
	return nil
}

// writeDeviationTable prints the per-hour summary of measured minus modeled values.
func writeDeviationTable(w io.Writer, profile schema.DeviationProfile, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	red, green, yellow := palette(cfg)

	colorMean := func(v float64) string {
		s := fmtFloat(v)
		switch {
		case v > 0:
			return red(s)
		case v < 0:
			return green(s)
		default:
			return yellow(s)
		}
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Hour", "Count", "Mean", "Median", "Min", "Max"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(profile.Hours))
	for _, h := range profile.Hours {
		data = append(data, []string{
			fmt.Sprintf("%02d:00", h.Hour),
			fmt.Sprintf(intFmt, h.Count),
			colorMean(h.Mean),
			fmtFloat(h.Median),
			fmtFloat(h.Min),
			fmtFloat(h.Max),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Profiled %d hours in %v. Dropped %d samples below the minimum deviation of %s\n",
		len(profile.Hours), duration, profile.Dropped, fmtFloat(cfg.MinDeviation))
	return err
}

// writeFleetTable prints orientation and tilt group sizes in one table.
func writeFleetTable(w io.Writer, dist schema.FleetDistribution, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Dimension", "Group", "Systems", "Share %"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	share := func(n int) string {
		if dist.Total == 0 {
			return fmtFloat(0)
		}
		return fmtFloat(float64(n) / float64(dist.Total) * 100)
	}

	var data [][]string
	for _, g := range parquet.ConvertFleet(dist) {
		data = append(data, []string{g.Dimension, g.Group, fmt.Sprintf(intFmt, g.Count), share(int(g.Count))})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Described %d systems in %v. Mean capacity: %s W\n", dist.Total, duration, fmtFloat(dist.MeanCapacity))
	return err
}
