package tabular

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/solarlab/pvcompare/schema"
)

var (
	meanAliases   = []string{"mean", "value", "generation"}
	hourColRegex  = regexp.MustCompile(`(?i)^hour\s*(\d{1,2})$`)
	wideIDAliases = []string{"id", "orientation"}
)

type seriesKey struct {
	id  string
	key schema.BucketKey
}

// ReadBuckets loads Canonical Buckets from a CSV file. Three layouts are accepted:
// long (id,month,hour,mean_value), wide per hour (ID,Month,Hour 1..Hour 24)
// and wide per series (Month,Hour,<id1>,<id2>,...).
func ReadBuckets(path string) ([]schema.Bucket, error) {
	t, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	return parseBuckets(t)
}

// ParseBuckets decodes Canonical Buckets from a CSV stream.
func ParseBuckets(name string, r io.Reader) ([]schema.Bucket, error) {
	t, err := load(name, r)
	if err != nil {
		return nil, err
	}
	return parseBuckets(t)
}

func parseBuckets(t *table) ([]schema.Bucket, error) {
	monthCol, err := t.require("month")
	if err != nil {
		return nil, err
	}

	var buckets []schema.Bucket
	hourCols := t.hourColumns()
	hourCol, hasHour := t.column("hour")
	switch {
	case len(hourCols) > 0:
		buckets, err = parseHourWideBuckets(t, monthCol, hourCols)
	case !hasHour:
		_, err = t.require("hour")
	default:
		idCol, hasID := t.column("id")
		meanCol, hasMean := t.column(append([]string{"mean_value"}, meanAliases...)...)
		if hasID && hasMean {
			buckets, err = parseLongBuckets(t, idCol, monthCol, hourCol, meanCol)
		} else {
			buckets, err = parseSeriesWideBuckets(t, monthCol, hourCol)
		}
	}
	if err != nil {
		return nil, err
	}
	schema.SortBuckets(buckets)
	return buckets, nil
}

// hourColumns maps "Hour N" header positions to hour N-1.
func (t *table) hourColumns() map[int]int {
	cols := make(map[int]int)
	for i, name := range t.columns {
		m := hourColRegex.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		if n >= 1 && n <= schema.HoursPerDay {
			cols[i] = n - 1
		}
	}
	return cols
}

func (t *table) month(row, col int) (int, error) {
	m, err := schema.ParseMonth(t.cell(row, col))
	if err != nil {
		return 0, t.fail(row, t.columns[col], err)
	}
	return m, nil
}

func (t *table) hour(row, col int) (int, error) {
	h, err := t.integer(row, col)
	if err != nil {
		return 0, err
	}
	if h < 0 || h >= schema.HoursPerDay {
		return 0, t.fail(row, t.columns[col], fmt.Errorf("hour %d out of range 0..23", h))
	}
	return h, nil
}

func parseLongBuckets(t *table, idCol, monthCol, hourCol, meanCol int) ([]schema.Bucket, error) {
	seen := make(map[seriesKey]struct{}, len(t.rows))
	buckets := make([]schema.Bucket, 0, len(t.rows))
	for row := range t.rows {
		b := schema.Bucket{SeriesID: t.cell(row, idCol)}
		if b.SeriesID == "" {
			return nil, t.fail(row, t.columns[idCol], errors.New("empty id"))
		}
		var err error
		if b.Month, err = t.month(row, monthCol); err != nil {
			return nil, err
		}
		if b.Hour, err = t.hour(row, hourCol); err != nil {
			return nil, err
		}
		if b.Mean, err = t.float(row, meanCol); err != nil {
			return nil, err
		}
		if err := t.checkDuplicate(seen, row, b); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, nil
}

func parseHourWideBuckets(t *table, monthCol int, hourCols map[int]int) ([]schema.Bucket, error) {
	idCol, ok := t.column(wideIDAliases...)
	if !ok {
		return nil, t.headerError("id", errors.New("missing column"))
	}
	seen := make(map[seriesKey]struct{})
	var buckets []schema.Bucket
	for row := range t.rows {
		id := t.cell(row, idCol)
		if id == "" {
			return nil, t.fail(row, t.columns[idCol], errors.New("empty id"))
		}
		month, err := t.month(row, monthCol)
		if err != nil {
			return nil, err
		}
		for col, hour := range hourCols {
			if t.cell(row, col) == "" {
				continue
			}
			v, err := t.float(row, col)
			if err != nil {
				return nil, err
			}
			b := schema.Bucket{SeriesID: id, Month: month, Hour: hour, Mean: v}
			if err := t.checkDuplicate(seen, row, b); err != nil {
				return nil, err
			}
			buckets = append(buckets, b)
		}
	}
	return buckets, nil
}

func parseSeriesWideBuckets(t *table, monthCol, hourCol int) ([]schema.Bucket, error) {
	var idCols []int
	for i, name := range t.columns {
		if i == monthCol || i == hourCol || strings.EqualFold(name, "year") {
			continue
		}
		idCols = append(idCols, i)
	}
	if len(idCols) == 0 {
		return nil, t.headerError("mean_value", errors.New("missing column"))
	}

	seen := make(map[seriesKey]struct{})
	var buckets []schema.Bucket
	for row := range t.rows {
		month, err := t.month(row, monthCol)
		if err != nil {
			return nil, err
		}
		hour, err := t.hour(row, hourCol)
		if err != nil {
			return nil, err
		}
		for _, col := range idCols {
			if t.cell(row, col) == "" {
				continue
			}
			v, err := t.float(row, col)
			if err != nil {
				return nil, err
			}
			b := schema.Bucket{SeriesID: t.columns[col], Month: month, Hour: hour, Mean: v}
			if err := t.checkDuplicate(seen, row, b); err != nil {
				return nil, err
			}
			buckets = append(buckets, b)
		}
	}
	return buckets, nil
}

func (t *table) checkDuplicate(seen map[seriesKey]struct{}, row int, b schema.Bucket) error {
	k := seriesKey{id: b.SeriesID, key: b.Key()}
	if _, dup := seen[k]; dup {
		return t.fail(row, "", fmt.Errorf("duplicate bucket for %s month %d hour %d", b.SeriesID, b.Month, b.Hour))
	}
	seen[k] = struct{}{}
	return nil
}
