package schema

// ChartStyle holds the presentation settings shared by all charts.
// Colors are hex strings such as "#4E79A7"; dash patterns are named
// solid, dotted, dashed or dashdot.
type ChartStyle struct {
	WidthCm        float64  `json:"width_cm"`
	HeightCm       float64  `json:"height_cm"`
	DPI            int      `json:"dpi"`
	LineWidth      float64  `json:"line_width"`
	ReferenceColor string   `json:"reference_color"`
	VariantColor   string   `json:"variant_color"`
	DeviationColor string   `json:"deviation_color"`
	MeanColor      string   `json:"mean_color"`
	MedianColor    string   `json:"median_color"`
	ViolinColor    string   `json:"violin_color"`
	SeriesColors   []string `json:"series_colors"`
	MonthColors    []string `json:"month_colors"` // One per month pair, January/December first
	FractionDashes []string `json:"fraction_dashes"`
	GridColumns    int      `json:"grid_columns"`
}

// DefaultChartStyle returns the stock palette used by the published figures.
func DefaultChartStyle() ChartStyle {
	return ChartStyle{
		WidthCm:        35,
		HeightCm:       18,
		DPI:            150,
		LineWidth:      1.5,
		ReferenceColor: "#4E79A7",
		VariantColor:   "#F28E2B",
		DeviationColor: "#E15759",
		MeanColor:      "#FF8A37",
		MedianColor:    "#537EFF",
		ViolinColor:    "#A0CBE8",
		SeriesColors:   []string{"#4E79A7", "#F28E2B", "#59A14F", "#E15759", "#76B7B2", "#EDC948"},
		MonthColors:    []string{"#1F77B4", "#FF7F0E", "#2CA02C", "#D62728", "#9467BD", "#8C564B"},
		FractionDashes: []string{"dotted", "dashdot", "solid"},
		GridColumns:    3,
	}
}
