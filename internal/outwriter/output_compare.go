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

var comparisonHeader = []string{"id", "month", "hour", "reference_value", "variant_value", "deviation", "scaled_deviation"}

func parquetComparison(rows []schema.ComparisonRow) []parquet.Comparison {
	return parquet.ConvertComparisonRows(rows)
}

// writeCSVComparison writes one line per matched key.
func writeCSVComparison(w *csv.Writer, rows []schema.ComparisonRow) error {
	for _, r := range rows {
		row := []string{
			r.SeriesID,
			strconv.Itoa(r.Month),
			strconv.Itoa(r.Hour),
			csvFloat(r.Reference),
			csvFloat(r.Variant),
			csvFloat(r.Deviation),
			csvOptionalFloat(r.ScaledDeviation),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// writeComparisonTable prints the matched rows with colored deviations followed by the series pairing.
func writeComparisonTable(w io.Writer, result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	red, green, yellow := palette(cfg)

	formatDelta := func(v float64) string {
		switch {
		case v > 0:
			return red(fmt.Sprintf("+%.*f ▲", cfg.Precision, v))
		case v < 0:
			return green(fmt.Sprintf("%.*f ▼", cfg.Precision, v))
		default:
			return yellow(fmt.Sprintf("%.*f", cfg.Precision, v))
		}
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Month", "Hour", "Reference", "Variant", "Deviation", "Scaled"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	idWidth := GetMaxTableIDWidth(cfg, 6)
	data := make([][]string, 0, len(result.Rows))
	for _, r := range result.Rows {
		scaled := "-"
		if r.ScaledDeviation != nil {
			scaled = formatDelta(*r.ScaledDeviation)
		}
		data = append(data, []string{
			truncateID(r.SeriesID, idWidth),
			schema.MonthName(r.Month),
			fmt.Sprintf("%02d:00", r.Hour),
			fmtFloat(r.Reference),
			fmtFloat(r.Variant),
			formatDelta(r.Deviation),
			scaled,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	for _, p := range result.Pairs {
		if _, err := fmt.Fprintf(w, "Paired %s with %s (scale %s, %d rows)\n",
			p.ReferenceID, p.VariantID, fmtFloat(p.ScaleFactor), p.Rows); err != nil {
			return err
		}
	}

	s := result.Summary
	_, err := fmt.Fprintf(w, "Compared %d buckets in %v. Mean deviation: %s, mean absolute deviation: %s. Totals: reference %s, variant %s\n",
		s.Rows, duration, fmtFloat(s.MeanDeviation), fmtFloat(s.MeanAbsoluteDeviation),
		fmtFloat(s.ReferenceTotal), fmtFloat(s.VariantTotal))
	return err
}
