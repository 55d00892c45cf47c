package tabular

import (
	"errors"
	"io"
	"time"

	"github.com/solarlab/pvcompare/schema"
)

var (
	timestampAliases = []string{"datetime", "time", "date"}
	valueAliases     = []string{"power_or_energy", "power", "energy", "generation"}
)

// ReadRawSamples loads Raw Samples from a CSV file in long (id,timestamp,value)
// or wide (DateTime,<id1>,<id2>,...) layout. Naive timestamps are read in loc.
func ReadRawSamples(path string, loc *time.Location) ([]schema.RawSample, error) {
	t, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	return parseRawSamples(t, loc)
}

// ParseRawSamples decodes Raw Samples from a CSV stream.
func ParseRawSamples(name string, r io.Reader, loc *time.Location) ([]schema.RawSample, error) {
	t, err := load(name, r)
	if err != nil {
		return nil, err
	}
	return parseRawSamples(t, loc)
}

func parseRawSamples(t *table, loc *time.Location) ([]schema.RawSample, error) {
	tsCol, err := t.require("timestamp", timestampAliases...)
	if err != nil {
		return nil, err
	}
	idCol, hasID := t.column("id")
	valCol, hasValue := t.column(append([]string{"value"}, valueAliases...)...)
	if hasID && hasValue {
		return parseLongSamples(t, loc, tsCol, idCol, valCol)
	}
	if hasID || hasValue {
		name := "value"
		if hasValue {
			name = "id"
		}
		_, err := t.require(name)
		return nil, err
	}
	return parseWideSamples(t, loc, tsCol)
}

func parseLongSamples(t *table, loc *time.Location, tsCol, idCol, valCol int) ([]schema.RawSample, error) {
	samples := make([]schema.RawSample, 0, len(t.rows))
	for row := range t.rows {
		id := t.cell(row, idCol)
		if id == "" {
			return nil, t.fail(row, t.columns[idCol], errors.New("empty id"))
		}
		ts, err := t.timestamp(row, tsCol, loc)
		if err != nil {
			return nil, err
		}
		v, err := t.float(row, valCol)
		if err != nil {
			return nil, err
		}
		samples = append(samples, schema.RawSample{SystemID: id, Timestamp: ts, Value: v})
	}
	return samples, nil
}

// parseWideSamples treats every non-timestamp column as one system; empty cells are skipped.
func parseWideSamples(t *table, loc *time.Location, tsCol int) ([]schema.RawSample, error) {
	if len(t.columns) < 2 {
		return nil, t.headerError("id", errors.New("wide layout needs at least one id column"))
	}
	var samples []schema.RawSample
	for row := range t.rows {
		ts, err := t.timestamp(row, tsCol, loc)
		if err != nil {
			return nil, err
		}
		for col, id := range t.columns {
			if col == tsCol || t.cell(row, col) == "" {
				continue
			}
			v, err := t.float(row, col)
			if err != nil {
				return nil, err
			}
			samples = append(samples, schema.RawSample{SystemID: id, Timestamp: ts, Value: v})
		}
	}
	return samples, nil
}
