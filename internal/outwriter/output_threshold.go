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

var thresholdHeader = []string{"id", "month", "threshold_fraction", "threshold_value", "peak_value", "count", "total", "percentage"}

func parquetThresholds(counts []schema.ThresholdCount) []parquet.Threshold {
	return parquet.ConvertThresholdCounts(counts)
}

// writeCSVThresholds writes one line per series, month and fraction.
func writeCSVThresholds(w *csv.Writer, counts []schema.ThresholdCount) error {
	for _, c := range counts {
		row := []string{
			c.SeriesID,
			strconv.Itoa(c.Month),
			csvFloat(c.Fraction),
			csvFloat(c.Threshold),
			csvFloat(c.Peak),
			strconv.Itoa(c.Count),
			strconv.Itoa(c.Total),
			csvFloat(c.Percentage),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// writeThresholdTable prints the hour counts per fraction, then the totals.
func writeThresholdTable(w io.Writer, result schema.ThresholdResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Month", "Fraction", "Threshold", "Peak", "Count", "Total", "Share %"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	idWidth := GetMaxTableIDWidth(cfg, 7)
	data := make([][]string, 0, len(result.Counts))
	for _, c := range result.Counts {
		month := "all"
		if c.Month > 0 {
			month = schema.MonthName(c.Month)
		}
		data = append(data, []string{
			truncateID(c.SeriesID, idWidth),
			month,
			schema.FractionLabel(c.Fraction),
			fmtFloat(c.Threshold),
			fmtFloat(c.Peak),
			fmt.Sprintf(intFmt, c.Count),
			fmt.Sprintf(intFmt, c.Total),
			fmtFloat(c.Percentage),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	for _, t := range result.Totals {
		if _, err := fmt.Fprintf(w, "Hours at or above %s of peak: %d\n", schema.FractionLabel(t.Fraction), t.Count); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Counted %d threshold rows in %v. By month: %t\n", len(result.Counts), duration, result.ByMonth)
	return err
}
