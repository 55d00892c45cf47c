// Package tabular reads the labeled CSV tables exchanged between pipeline stages.
package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/solarlab/pvcompare/internal/contract"
)

// timestampLayouts are tried in order when parsing timestamp cells.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// table is a fully loaded CSV file with a case-insensitive header index.
type table struct {
	file    string
	columns []string
	index   map[string]int
	rows    [][]string
	lines   []int // file line of each row
}

// loadFile reads a whole CSV file and closes it before returning.
func loadFile(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &contract.InputFormatError{File: path, Err: err}
	}
	defer func() { _ = f.Close() }()
	return load(path, f)
}

// load reads a CSV stream whose delimiter is sniffed from the header line.
func load(name string, r io.Reader) (*table, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, &contract.InputFormatError{File: name, Err: err}
	}

	cr := csv.NewReader(br)
	cr.Comma = sniffDelimiter(head)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &contract.InputFormatError{File: name, Err: errors.New("empty file, expected a header line")}
	}
	if err != nil {
		return nil, &contract.InputFormatError{File: name, Line: 1, Err: err}
	}

	t := &table{file: name, index: make(map[string]int, len(header))}
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		t.columns = append(t.columns, col)
		key := strings.ToLower(col)
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			line := 0
			if errors.As(err, &pe) {
				line = pe.Line
			}
			return nil, &contract.InputFormatError{File: name, Line: line, Err: err}
		}
		if isBlank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)
		t.rows = append(t.rows, rec)
		t.lines = append(t.lines, line)
	}
	return t, nil
}

// sniffDelimiter picks ';' when the header line holds more semicolons than commas.
func sniffDelimiter(head []byte) rune {
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	if bytes.Count(head, []byte{';'}) > bytes.Count(head, []byte{','}) {
		return ';'
	}
	return ','
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// column returns the position of the first alias present in the header.
func (t *table) column(aliases ...string) (int, bool) {
	for _, a := range aliases {
		if i, ok := t.index[strings.ToLower(a)]; ok {
			return i, true
		}
	}
	return -1, false
}

// require returns the position of a mandatory column.
func (t *table) require(name string, aliases ...string) (int, error) {
	if i, ok := t.column(append([]string{name}, aliases...)...); ok {
		return i, nil
	}
	return -1, t.headerError(name, errors.New("missing column"))
}

func (t *table) headerError(column string, err error) error {
	return &contract.InputFormatError{File: t.file, Line: 1, Column: column, Err: err}
}

// cell returns the trimmed value at col, or "" for short records.
func (t *table) cell(row, col int) string {
	rec := t.rows[row]
	if col < 0 || col >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[col])
}

func (t *table) fail(row int, column string, err error) error {
	return &contract.InputFormatError{File: t.file, Line: t.lines[row], Column: column, Err: err}
}

// float parses a finite number; decimal commas are accepted for ';' separated exports.
func (t *table) float(row, col int) (float64, error) {
	raw := t.cell(row, col)
	if raw == "" {
		return 0, t.fail(row, t.columns[col], errors.New("empty value"))
	}
	v, err := parseFloat(raw)
	if err != nil {
		return 0, t.fail(row, t.columns[col], err)
	}
	return v, nil
}

// optionalFloat parses a number that may be left empty.
func (t *table) optionalFloat(row, col int) (*float64, error) {
	if t.cell(row, col) == "" {
		return nil, nil
	}
	v, err := t.float(row, col)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (t *table) integer(row, col int) (int, error) {
	raw := t.cell(row, col)
	v, err := strconv.Atoi(raw)
	if err != nil {
		f, ferr := parseFloat(raw)
		if ferr != nil || f != math.Trunc(f) {
			return 0, t.fail(row, t.columns[col], fmt.Errorf("invalid integer %q", raw))
		}
		v = int(f)
	}
	return v, nil
}

func (t *table) timestamp(row, col int, loc *time.Location) (time.Time, error) {
	raw := t.cell(row, col)
	ts, err := ParseTimestamp(raw, loc)
	if err != nil {
		return time.Time{}, t.fail(row, t.columns[col], err)
	}
	return ts, nil
}

func parseFloat(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil && strings.Count(raw, ",") == 1 && !strings.Contains(raw, ".") {
		v, err = strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite number %q", raw)
	}
	return v, nil
}

// ParseTimestamp parses a timestamp cell. Values without an offset are read in loc.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	raw = strings.TrimSpace(raw)
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts, nil
	}
	for _, layout := range timestampLayouts[1:] {
		if ts, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
}
