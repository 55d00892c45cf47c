// Package chart draws computed tables as PNG figures with gonum/plot.
package chart

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/solarlab/pvcompare/internal/contract"
	"github.com/solarlab/pvcompare/schema"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Figure is a set of panels tiled into one image.
type Figure struct {
	Kind    schema.ChartKind
	Panels  []*plot.Plot
	Columns int
	Width   vg.Length
	Height  vg.Length
	DPI     int
}

// newFigure sizes an empty figure from the style.
func newFigure(kind schema.ChartKind, style schema.ChartStyle, columns int) *Figure {
	if columns < 1 {
		columns = 1
	}
	dpi := style.DPI
	if dpi <= 0 {
		dpi = schema.DefaultChartStyle().DPI
	}
	return &Figure{
		Kind:    kind,
		Columns: columns,
		Width:   vg.Length(style.WidthCm) * vg.Centimeter,
		Height:  vg.Length(style.HeightCm) * vg.Centimeter,
		DPI:     dpi,
	}
}

// Rows returns the number of tile rows needed for the panels.
func (f *Figure) Rows() int {
	cols := f.columns()
	rows := (len(f.Panels) + cols - 1) / cols
	return max(rows, 1)
}

func (f *Figure) columns() int {
	return max(min(f.Columns, len(f.Panels)), 1)
}

// WriteTo renders the figure as PNG.
func (f *Figure) WriteTo(w io.Writer) (int64, error) {
	img := vgimg.NewWith(vgimg.UseWH(f.Width, f.Height), vgimg.UseDPI(f.DPI))
	dc := draw.New(img)

	tiles := draw.Tiles{
		Rows:      f.Rows(),
		Cols:      f.columns(),
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	for i, p := range f.Panels {
		p.Draw(tiles.At(dc, i%tiles.Cols, i/tiles.Cols))
	}

	png := vgimg.PngCanvas{Canvas: img}
	return png.WriteTo(w)
}

// Save writes the figure to path as PNG. A failing render leaves no file.
func Save(path string, fig *Figure) error {
	if err := contract.WriteFileAtomic(path, func(w io.Writer) error {
		_, err := fig.WriteTo(w)
		return err
	}); err != nil {
		return fmt.Errorf("failed to save %s chart: %w", fig.Kind, err)
	}
	return nil
}

// DefaultFileName returns the file a chart kind is saved to when no output file is given.
func DefaultFileName(kind schema.ChartKind) string {
	switch kind {
	case schema.GridChart:
		return "monthly_grid.png"
	case schema.ViolinChart:
		return "deviation_violin.png"
	case schema.ThresholdChart:
		return "hours_above_threshold.png"
	default:
		return "comparison.png"
	}
}

// newPanel returns a plot with a title, axis labels and a fixed x range.
func newPanel(title, xLabel, yLabel string, xMin, xMax float64) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.X.Min = xMin
	p.X.Max = xMax
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	return p
}

// emptyFigure is drawn when there is nothing to plot.
func emptyFigure(kind schema.ChartKind, style schema.ChartStyle, title, xLabel, yLabel string, xMin, xMax float64) *Figure {
	fig := newFigure(kind, style, 1)
	fig.Panels = []*plot.Plot{newPanel(title+" (no data)", xLabel, yLabel, xMin, xMax)}
	return fig
}

// addLine draws xys with the given color and dash pattern, adding a legend entry when name is set.
func addLine(p *plot.Plot, name string, xys plotter.XYs, c color.Color, dashes []vg.Length, width float64) error {
	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("failed to build line %q: %w", name, err)
	}
	line.Color = c
	line.Width = vg.Points(width)
	line.Dashes = dashes
	p.Add(line)
	if name != "" {
		p.Legend.Add(name, line)
	}
	return nil
}

// parseColor reads a #RRGGBB string, falling back to black.
func parseColor(hex string) color.Color {
	var r, g, b uint8
	if _, err := fmt.Sscanf(strings.TrimPrefix(hex, "#"), "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.Black
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// pick returns the i-th color of a palette, cycling when the palette is short.
func pick(palette []string, i int) color.Color {
	if len(palette) == 0 {
		return color.Black
	}
	return parseColor(palette[i%len(palette)])
}

// dashPattern converts a named dash pattern into segment lengths.
func dashPattern(name string) []vg.Length {
	switch strings.ToLower(name) {
	case "dotted":
		return []vg.Length{vg.Points(1), vg.Points(3)}
	case "dashed":
		return []vg.Length{vg.Points(6), vg.Points(3)}
	case "dashdot":
		return []vg.Length{vg.Points(6), vg.Points(3), vg.Points(1), vg.Points(3)}
	default:
		return nil
	}
}
