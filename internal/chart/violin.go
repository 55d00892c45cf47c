package chart

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/solarlab/pvcompare/schema"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot/plotter"
)

const (
	violinHalfWidth = 0.4
	violinPoints    = 64
)

// Violin draws the per-hour deviation distribution as mirrored density shapes
// with the hourly mean and median overlaid.
func Violin(profile schema.DeviationProfile, style schema.ChartStyle) (*Figure, error) {
	const title, xLabel, yLabel = "Measured minus modeled by hour", "Hour of day", "Deviation"
	if len(profile.Hours) == 0 {
		return emptyFigure(schema.ViolinChart, style, title, xLabel, yLabel, -1, schema.HoursPerDay), nil
	}

	p := newPanel(title, xLabel, yLabel, -1, schema.HoursPerDay)
	fill := parseColor(style.ViolinColor)

	for _, hour := range slices.Sorted(maps.Keys(profile.Samples)) {
		shape := violinShape(float64(hour), profile.Samples[hour])
		if shape == nil {
			continue
		}
		poly, err := plotter.NewPolygon(shape)
		if err != nil {
			return nil, fmt.Errorf("failed to build violin for hour %d: %w", hour, err)
		}
		poly.Color = fill
		poly.LineStyle.Color = fill
		p.Add(poly)
	}

	means := make(plotter.XYs, 0, len(profile.Hours))
	medians := make(plotter.XYs, 0, len(profile.Hours))
	for _, h := range profile.Hours {
		means = append(means, plotter.XY{X: float64(h.Hour), Y: h.Mean})
		medians = append(medians, plotter.XY{X: float64(h.Hour), Y: h.Median})
	}
	if err := addLine(p, "Mean", means, parseColor(style.MeanColor), nil, style.LineWidth); err != nil {
		return nil, err
	}
	if err := addLine(p, "Median", medians, parseColor(style.MedianColor), nil, style.LineWidth); err != nil {
		return nil, err
	}

	fig := newFigure(schema.ViolinChart, style, 1)
	fig.Panels = append(fig.Panels, p)
	return fig, nil
}

// violinShape returns the outline of a Gaussian kernel density estimate of values
// centered on x, or nil when the values have no spread.
func violinShape(x float64, values []float64) plotter.XYs {
	if len(values) < 2 {
		return nil
	}
	sd := stat.StdDev(values, nil)
	if sd == 0 || math.IsNaN(sd) {
		return nil
	}
	// Scott's rule
	bandwidth := sd * math.Pow(float64(len(values)), -1.0/5)

	lo, hi := slices.Min(values), slices.Max(values)
	step := (hi - lo) / float64(violinPoints-1)

	ys := make([]float64, violinPoints)
	density := make([]float64, violinPoints)
	peak := 0.0
	for i := range violinPoints {
		y := lo + float64(i)*step
		ys[i] = y
		density[i] = kde(y, values, bandwidth)
		peak = max(peak, density[i])
	}

	outline := make(plotter.XYs, 0, 2*violinPoints)
	for i := range violinPoints {
		outline = append(outline, plotter.XY{X: x - density[i]/peak*violinHalfWidth, Y: ys[i]})
	}
	for i := violinPoints - 1; i >= 0; i-- {
		outline = append(outline, plotter.XY{X: x + density[i]/peak*violinHalfWidth, Y: ys[i]})
	}
	return outline
}

// kde evaluates a Gaussian kernel density estimate at y.
func kde(y float64, values []float64, bandwidth float64) float64 {
	kernel := distuv.Normal{Mu: 0, Sigma: bandwidth}
	sum := 0.0
	for _, v := range values {
		sum += kernel.Prob(y - v)
	}
	return sum / float64(len(values))
}
