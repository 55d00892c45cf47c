package chart

import (
	"github.com/solarlab/pvcompare/schema"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Grid draws one panel per series with a diurnal curve for each month.
// Months mirrored around midsummer (January/December, February/November, ...) share a color;
// the first month of a pair is solid, the second dotted.
func Grid(buckets []schema.Bucket, style schema.ChartStyle) (*Figure, error) {
	const xLabel, yLabel = "Hour of day", "Mean value"
	if len(buckets) == 0 {
		return emptyFigure(schema.GridChart, style, "Monthly diurnal profile", xLabel, yLabel, 0, schema.HoursPerDay-1), nil
	}

	groups := schema.GroupBuckets(buckets)
	fig := newFigure(schema.GridChart, style, style.GridColumns)
	for _, id := range schema.SeriesIDs(buckets) {
		p := newPanel(id, xLabel, yLabel, 0, schema.HoursPerDay-1)

		byMonth := make(map[int]plotter.XYs)
		series := append([]schema.Bucket(nil), groups[id]...)
		schema.SortBuckets(series)
		for _, b := range series {
			byMonth[b.Month] = append(byMonth[b.Month], plotter.XY{X: float64(b.Hour), Y: b.Mean})
		}

		for month := 1; month <= schema.MonthsPerYear; month++ {
			xys, ok := byMonth[month]
			if !ok {
				continue
			}
			pair := monthPair(month)
			var dashes []vg.Length
			if month > schema.MonthsPerYear/2 {
				dashes = dashPattern("dotted")
			}
			if err := addLine(p, schema.MonthName(month)[:3], xys, pick(style.MonthColors, pair), dashes, style.LineWidth); err != nil {
				return nil, err
			}
		}
		fig.Panels = append(fig.Panels, p)
	}
	return fig, nil
}

// monthPair maps a month to its position counted from the nearest year end: 1 and 12 -> 0, 6 and 7 -> 5.
func monthPair(month int) int {
	return min(month-1, schema.MonthsPerYear-month)
}
