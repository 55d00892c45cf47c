package chart

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/solarlab/pvcompare/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallStyle() schema.ChartStyle {
	style := schema.DefaultChartStyle()
	style.WidthCm = 8
	style.HeightCm = 6
	style.DPI = 50
	return style
}

func decodePNG(t *testing.T, fig *Figure) {
	t.Helper()
	var buf bytes.Buffer
	_, err := fig.WriteTo(&buf)
	require.NoError(t, err)
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Positive(t, img.Bounds().Dx())
	assert.Positive(t, img.Bounds().Dy())
}

func TestEmptyInputsDrawEmptyCharts(t *testing.T) {
	style := smallStyle()

	grid, err := Grid(nil, style)
	require.NoError(t, err)
	violin, err := Violin(schema.DeviationProfile{}, style)
	require.NoError(t, err)
	thresholds, err := Thresholds(nil, style)
	require.NoError(t, err)
	comparison, err := Comparison(nil, style)
	require.NoError(t, err)

	for _, fig := range []*Figure{grid, violin, thresholds, comparison} {
		require.Len(t, fig.Panels, 1, "%s", fig.Kind)
		assert.Contains(t, fig.Panels[0].Title.Text, "no data")
		decodePNG(t, fig)
	}
}

func TestGridOnePanelPerSeries(t *testing.T) {
	var buckets []schema.Bucket
	for _, id := range []string{"west", "east"} {
		for month := 1; month <= 12; month++ {
			for hour := 0; hour < 24; hour++ {
				buckets = append(buckets, schema.Bucket{SeriesID: id, Month: month, Hour: hour, Mean: float64(hour * month)})
			}
		}
	}

	fig, err := Grid(buckets, smallStyle())
	require.NoError(t, err)
	require.Len(t, fig.Panels, 2)
	assert.Equal(t, "east", fig.Panels[0].Title.Text)
	assert.Equal(t, "west", fig.Panels[1].Title.Text)
	assert.Equal(t, 1, fig.Rows())
	decodePNG(t, fig)
}

func TestMonthPair(t *testing.T) {
	assert.Equal(t, 0, monthPair(1))
	assert.Equal(t, 0, monthPair(12))
	assert.Equal(t, 1, monthPair(2))
	assert.Equal(t, 1, monthPair(11))
	assert.Equal(t, 5, monthPair(6))
	assert.Equal(t, 5, monthPair(7))
}

func TestViolin(t *testing.T) {
	profile := schema.DeviationProfile{
		Hours: []schema.HourDeviation{
			{Hour: 10, Count: 4, Mean: 2.5, Median: 2.5, Min: 1, Max: 4},
			{Hour: 11, Count: 1, Mean: 7, Median: 7, Min: 7, Max: 7},
		},
		Samples: map[int][]float64{10: {1, 2, 3, 4}, 11: {7}},
	}

	fig, err := Violin(profile, smallStyle())
	require.NoError(t, err)
	require.Len(t, fig.Panels, 1)
	decodePNG(t, fig)
}

func TestViolinShape(t *testing.T) {
	assert.Nil(t, violinShape(3, []float64{5}))
	assert.Nil(t, violinShape(3, []float64{5, 5, 5}))

	shape := violinShape(3, []float64{1, 2, 2, 3, 8})
	require.Len(t, shape, 2*violinPoints)
	for _, pt := range shape {
		assert.InDelta(t, 3, pt.X, violinHalfWidth+1e-9)
		assert.GreaterOrEqual(t, pt.Y, 1.0)
		assert.LessOrEqual(t, pt.Y, 8.0+1e-9)
	}
}

func TestKDEIntegratesToOne(t *testing.T) {
	values := []float64{-1, 0, 0.5, 2}
	sum, step := 0.0, 0.01
	for y := -20.0; y <= 20; y += step {
		sum += kde(y, values, 0.8) * step
	}
	assert.InDelta(t, 1, sum, 1e-3)
}

func TestThresholdsPrefersMonthlyCounts(t *testing.T) {
	counts := []schema.ThresholdCount{
		{SeriesID: "ref", Month: 0, Fraction: 0.5, Count: 100},
		{SeriesID: "ref", Month: 2, Fraction: 0.5, Count: 40},
		{SeriesID: "ref", Month: 1, Fraction: 0.5, Count: 30},
		{SeriesID: "ref", Month: 1, Fraction: 0.8, Count: 10},
	}

	fig, err := Thresholds(counts, smallStyle())
	require.NoError(t, err)
	require.Len(t, fig.Panels, 1)
	assert.Equal(t, "Hours above threshold", fig.Panels[0].Title.Text)
	decodePNG(t, fig)

	assert.Equal(t, "Month", fig.Panels[0].X.Label.Text)
}

func TestThresholdsWholeSeriesCounts(t *testing.T) {
	counts := []schema.ThresholdCount{
		{SeriesID: "ref", Month: 0, Fraction: 0.8, Count: 2},
		{SeriesID: "ref", Month: 0, Fraction: 0.5, Count: 4},
		{SeriesID: "east", Month: 0, Fraction: 0.5, Count: 3},
	}

	fig, err := Thresholds(counts, smallStyle())
	require.NoError(t, err)
	require.Len(t, fig.Panels, 1)
	assert.NotContains(t, fig.Panels[0].Title.Text, "no data")
	assert.Equal(t, "Share of peak (%)", fig.Panels[0].X.Label.Text)
	decodePNG(t, fig)
}

func TestComparisonPanelsPerMonth(t *testing.T) {
	rows := []schema.ComparisonRow{
		{SeriesID: "ref", Month: 2, Hour: 12, Reference: 10, Variant: 12, Deviation: 2},
		{SeriesID: "ref", Month: 1, Hour: 12, Reference: 10, Variant: 9, Deviation: -1},
		{SeriesID: "ref", Month: 1, Hour: 11, Reference: 8, Variant: 8, Deviation: 0},
	}

	fig, err := Comparison(rows, smallStyle())
	require.NoError(t, err)
	require.Len(t, fig.Panels, 2)
	assert.Equal(t, "ref January", fig.Panels[0].Title.Text)
	assert.Equal(t, "ref February", fig.Panels[1].Title.Text)
	decodePNG(t, fig)
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName(schema.GridChart))
	fig, err := Grid(nil, smallStyle())
	require.NoError(t, err)

	require.NoError(t, Save(path, fig))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	require.NoError(t, err)
}

func TestDefaultFileName(t *testing.T) {
	assert.Equal(t, "monthly_grid.png", DefaultFileName(schema.GridChart))
	assert.Equal(t, "deviation_violin.png", DefaultFileName(schema.ViolinChart))
	assert.Equal(t, "hours_above_threshold.png", DefaultFileName(schema.ThresholdChart))
	assert.Equal(t, "comparison.png", DefaultFileName(schema.ComparisonChart))
}

func TestStyleHelpers(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 0x4e, G: 0x79, B: 0xa7, A: 0xff}, parseColor("#4E79A7"))
	assert.Equal(t, color.Black, parseColor("nope"))
	assert.Equal(t, parseColor("#000001"), pick([]string{"#000000", "#000001"}, 3))
	assert.Nil(t, dashPattern("solid"))
	assert.Len(t, dashPattern("dashdot"), 4)
}
