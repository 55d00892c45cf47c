package tabular

import (
	"fmt"
	"io"

	"github.com/solarlab/pvcompare/schema"
)

// ReadComparisonRows loads a comparison table written by the compare stage.
func ReadComparisonRows(path string) ([]schema.ComparisonRow, error) {
	t, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	return parseComparisonRows(t)
}

// ParseComparisonRows decodes a comparison table from a CSV stream.
func ParseComparisonRows(name string, r io.Reader) ([]schema.ComparisonRow, error) {
	t, err := load(name, r)
	if err != nil {
		return nil, err
	}
	return parseComparisonRows(t)
}

func parseComparisonRows(t *table) ([]schema.ComparisonRow, error) {
	cols, err := t.requireAll("month", "hour", "reference_value", "variant_value", "deviation")
	if err != nil {
		return nil, err
	}
	idCol, hasID := t.column("id")
	scaledCol, hasScaled := t.column("scaled_deviation")

	rows := make([]schema.ComparisonRow, 0, len(t.rows))
	for row := range t.rows {
		var r schema.ComparisonRow
		if hasID {
			r.SeriesID = t.cell(row, idCol)
		}
		if r.Month, err = t.month(row, cols[0]); err != nil {
			return nil, err
		}
		if r.Hour, err = t.hour(row, cols[1]); err != nil {
			return nil, err
		}
		if r.Reference, err = t.float(row, cols[2]); err != nil {
			return nil, err
		}
		if r.Variant, err = t.float(row, cols[3]); err != nil {
			return nil, err
		}
		if r.Deviation, err = t.float(row, cols[4]); err != nil {
			return nil, err
		}
		if hasScaled {
			if r.ScaledDeviation, err = t.optionalFloat(row, scaledCol); err != nil {
				return nil, err
			}
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// ReadThresholdCounts loads a threshold table written by the threshold stage.
func ReadThresholdCounts(path string) ([]schema.ThresholdCount, error) {
	t, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	return parseThresholdCounts(t)
}

// ParseThresholdCounts decodes a threshold table from a CSV stream.
func ParseThresholdCounts(name string, r io.Reader) ([]schema.ThresholdCount, error) {
	t, err := load(name, r)
	if err != nil {
		return nil, err
	}
	return parseThresholdCounts(t)
}

// parseThresholdCounts reads threshold tables; id, month and threshold_value may be absent.
// A missing month is a whole-series count and a missing threshold is fraction*peak.
func parseThresholdCounts(t *table) ([]schema.ThresholdCount, error) {
	cols, err := t.requireAll("threshold_fraction", "peak_value", "count")
	if err != nil {
		return nil, err
	}
	idCol, hasID := t.column("id")
	monthCol, hasMonth := t.column("month")
	thresholdCol, hasThreshold := t.column("threshold_value")
	totalCol, hasTotal := t.column("total")
	pctCol, hasPct := t.column("percentage")

	counts := make([]schema.ThresholdCount, 0, len(t.rows))
	for row := range t.rows {
		var c schema.ThresholdCount
		if hasID {
			c.SeriesID = t.cell(row, idCol)
		}
		if hasMonth {
			if c.Month, err = t.countMonth(row, monthCol); err != nil {
				return nil, err
			}
		}
		if c.Fraction, err = t.float(row, cols[0]); err != nil {
			return nil, err
		}
		if c.Peak, err = t.float(row, cols[1]); err != nil {
			return nil, err
		}
		if c.Count, err = t.integer(row, cols[2]); err != nil {
			return nil, err
		}
		c.Threshold = c.Fraction * c.Peak
		if hasThreshold {
			if c.Threshold, err = t.float(row, thresholdCol); err != nil {
				return nil, err
			}
		}
		if hasTotal {
			if c.Total, err = t.integer(row, totalCol); err != nil {
				return nil, err
			}
		}
		if hasPct {
			if c.Percentage, err = t.float(row, pctCol); err != nil {
				return nil, err
			}
		}
		counts = append(counts, c)
	}
	return counts, nil
}

// countMonth reads a month number or name; 0 marks a whole-series count.
func (t *table) countMonth(row, col int) (int, error) {
	if raw := t.cell(row, col); raw == "" || raw == "0" {
		return 0, nil
	}
	if m, err := t.integer(row, col); err == nil {
		if m < 0 || m > 12 {
			return 0, t.fail(row, t.columns[col], fmt.Errorf("month %d out of range 0..12", m))
		}
		return m, nil
	}
	return t.month(row, col)
}

func (t *table) requireAll(names ...string) ([]int, error) {
	cols := make([]int, len(names))
	for i, name := range names {
		c, err := t.require(name)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	return cols, nil
}
