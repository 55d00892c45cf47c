package chart

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/solarlab/pvcompare/schema"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
)

// Thresholds draws the monthly number of hours at or above each peak fraction,
// one line per series and fraction. Whole-series counts are only drawn when the
// table has no monthly rows, as hours against the fraction.
func Thresholds(counts []schema.ThresholdCount, style schema.ChartStyle) (*Figure, error) {
	const title, xLabel, yLabel = "Hours above threshold", "Month", "Hours"

	type lineKey struct {
		series   string
		fraction float64
	}
	lines := make(map[lineKey]plotter.XYs)
	for _, c := range counts {
		if c.Month == 0 {
			continue
		}
		k := lineKey{c.SeriesID, c.Fraction}
		lines[k] = append(lines[k], plotter.XY{X: float64(c.Month), Y: float64(c.Count)})
	}
	if len(lines) == 0 {
		if slices.ContainsFunc(counts, func(c schema.ThresholdCount) bool { return c.Month == 0 }) {
			return wholeSeriesThresholds(counts, style)
		}
		return emptyFigure(schema.ThresholdChart, style, title, xLabel, yLabel, 1, schema.MonthsPerYear), nil
	}

	var seriesIDs []string
	var fractions []float64
	for k := range lines {
		seriesIDs = append(seriesIDs, k.series)
		fractions = append(fractions, k.fraction)
	}
	slices.Sort(seriesIDs)
	seriesIDs = slices.Compact(seriesIDs)
	slices.Sort(fractions)
	fractions = slices.Compact(fractions)

	p := newPanel(title, xLabel, yLabel, 1, schema.MonthsPerYear)
	for si, id := range seriesIDs {
		for fi, fraction := range fractions {
			xys, ok := lines[lineKey{id, fraction}]
			if !ok {
				continue
			}
			slices.SortFunc(xys, func(a, b plotter.XY) int { return cmp.Compare(a.X, b.X) })
			dash := ""
			if len(style.FractionDashes) > 0 {
				dash = style.FractionDashes[fi%len(style.FractionDashes)]
			}
			name := fmt.Sprintf("%s %s", id, schema.FractionLabel(fraction))
			if err := addLine(p, name, xys, pick(style.SeriesColors, si), dashPattern(dash), style.LineWidth); err != nil {
				return nil, err
			}
		}
	}

	fig := newFigure(schema.ThresholdChart, style, 1)
	fig.Panels = append(fig.Panels, p)
	return fig, nil
}

// wholeSeriesThresholds draws one line per series over the peak fractions in percent.
func wholeSeriesThresholds(counts []schema.ThresholdCount, style schema.ChartStyle) (*Figure, error) {
	perSeries := make(map[string]plotter.XYs)
	for _, c := range counts {
		if c.Month == 0 {
			perSeries[c.SeriesID] = append(perSeries[c.SeriesID], plotter.XY{X: c.Fraction * 100, Y: float64(c.Count)})
		}
	}

	p := newPanel("Hours above threshold (whole series)", "Share of peak (%)", "Hours", 0, 100)
	for si, id := range slices.Sorted(maps.Keys(perSeries)) {
		xys := perSeries[id]
		slices.SortFunc(xys, func(a, b plotter.XY) int { return cmp.Compare(a.X, b.X) })
		c := pick(style.SeriesColors, si)
		if err := addLine(p, id, xys, c, nil, style.LineWidth); err != nil {
			return nil, err
		}
		points, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("failed to build points %q: %w", id, err)
		}
		points.GlyphStyle.Color = c
		p.Add(points)
	}

	fig := newFigure(schema.ThresholdChart, style, 1)
	fig.Panels = append(fig.Panels, p)
	return fig, nil
}

// Comparison draws reference, variant and deviation over the hours of the day,
// one panel per series and month.
func Comparison(rows []schema.ComparisonRow, style schema.ChartStyle) (*Figure, error) {
	const xLabel, yLabel = "Hour of day", "Value"
	if len(rows) == 0 {
		return emptyFigure(schema.ComparisonChart, style, "Reference vs variant", xLabel, yLabel, 0, schema.HoursPerDay-1), nil
	}

	sorted := slices.Clone(rows)
	slices.SortFunc(sorted, func(a, b schema.ComparisonRow) int {
		return cmp.Or(
			cmp.Compare(a.SeriesID, b.SeriesID),
			cmp.Compare(a.Month, b.Month),
			cmp.Compare(a.Hour, b.Hour),
		)
	})

	fig := newFigure(schema.ComparisonChart, style, style.GridColumns)
	for start := 0; start < len(sorted); {
		end := start
		for end < len(sorted) && sorted[end].SeriesID == sorted[start].SeriesID && sorted[end].Month == sorted[start].Month {
			end++
		}
		panel, err := comparisonPanel(sorted[start:end], style)
		if err != nil {
			return nil, err
		}
		fig.Panels = append(fig.Panels, panel)
		start = end
	}
	return fig, nil
}

// comparisonPanel draws the rows of one series and month.
func comparisonPanel(rows []schema.ComparisonRow, style schema.ChartStyle) (*plot.Plot, error) {
	title := fmt.Sprintf("%s %s", rows[0].SeriesID, schema.MonthName(rows[0].Month))
	p := newPanel(title, "Hour of day", "Value", 0, schema.HoursPerDay-1)

	ref := make(plotter.XYs, len(rows))
	variant := make(plotter.XYs, len(rows))
	deviation := make(plotter.XYs, len(rows))
	for i, r := range rows {
		x := float64(r.Hour)
		ref[i] = plotter.XY{X: x, Y: r.Reference}
		variant[i] = plotter.XY{X: x, Y: r.Variant}
		deviation[i] = plotter.XY{X: x, Y: r.Deviation}
	}
	if err := addLine(p, "Reference", ref, parseColor(style.ReferenceColor), nil, style.LineWidth); err != nil {
		return nil, err
	}
	if err := addLine(p, "Variant", variant, parseColor(style.VariantColor), nil, style.LineWidth); err != nil {
		return nil, err
	}
	if err := addLine(p, "Deviation", deviation, parseColor(style.DeviationColor), dashPattern("dashed"), style.LineWidth); err != nil {
		return nil, err
	}
	return p, nil
}
