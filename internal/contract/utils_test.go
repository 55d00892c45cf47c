package contract

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFractions(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []float64
		wantErr bool
	}{
		{name: "defaults", input: "0.5,0.65,0.8", want: []float64{0.5, 0.65, 0.8}},
		{name: "unsorted with spaces", input: " 0.8 , 0.5", want: []float64{0.5, 0.8}},
		{name: "duplicates", input: "0.5,0.5", want: []float64{0.5}},
		{name: "full peak", input: "1", want: []float64{1}},
		{name: "zero", input: "0", wantErr: true},
		{name: "above one", input: "1.2", wantErr: true},
		{name: "not a number", input: "half", wantErr: true},
		{name: "empty", input: " , ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFractions(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLocation(t *testing.T) {
	lat, lon, err := ParseLocation("52.0907, 5.1214")
	require.NoError(t, err)
	assert.InDelta(t, 52.0907, lat, 1e-9)
	assert.InDelta(t, 5.1214, lon, 1e-9)

	for _, bad := range []string{"", "52", "91,0", "0,181", "a,b", "1,2,3"} {
		_, _, err := ParseLocation(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("perhaps")
	assert.Error(t, err)
}

func TestIsHexColor(t *testing.T) {
	assert.True(t, IsHexColor("#4E79A7"))
	assert.True(t, IsHexColor("#ff8a37"))
	assert.False(t, IsHexColor("4E79A7"))
	assert.False(t, IsHexColor("#FFF"))
	assert.False(t, IsHexColor("#GGGGGG"))
}

func TestGetDBFilePaths(t *testing.T) {
	assert.Contains(t, GetCacheDBFilePath(), ".pvcompare_cache.db")
	assert.Contains(t, GetRunsDBFilePath(), ".pvcompare_runs.db")
	assert.NotEqual(t, GetCacheDBFilePath(), GetRunsDBFilePath())
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	t.Run("success replaces file", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))
		err := WriteFileAtomic(path, func(w io.Writer) error {
			_, err := fmt.Fprint(w, "id,month,hour,mean_value\n")
			return err
		})
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "id,month,hour,mean_value\n", string(data))
	})

	t.Run("failure keeps previous file and leaves no temp", func(t *testing.T) {
		boom := errors.New("boom")
		err := WriteFileAtomic(path, func(w io.Writer) error {
			_, _ = fmt.Fprint(w, "partial")
			return boom
		})
		assert.ErrorIs(t, err, boom)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "id,month,hour,mean_value\n", string(data))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestErrorTypes(t *testing.T) {
	inner := errors.New(`strconv.ParseFloat: parsing "x": invalid syntax`)
	inputErr := &InputFormatError{File: "raw.csv", Line: 3, Column: "value", Err: inner}
	assert.Equal(t, `raw.csv:3: column "value": `+inner.Error(), inputErr.Error())
	assert.ErrorIs(t, fmt.Errorf("normalize: %w", inputErr), inner)

	var target *InputFormatError
	require.ErrorAs(t, fmt.Errorf("wrapped: %w", inputErr), &target)
	assert.Equal(t, 3, target.Line)

	whole := &InputFormatError{File: "raw.csv", Err: errors.New("missing header")}
	assert.Equal(t, "raw.csv: missing header", whole.Error())

	remote := &RemoteServiceError{Status: 503, Err: errors.New("unavailable")}
	assert.Contains(t, remote.Error(), "503")
	var remoteTarget *RemoteServiceError
	assert.ErrorAs(t, fmt.Errorf("fetch: %w", remote), &remoteTarget)

	assert.True(t, IsEmptyAlignment(fmt.Errorf("compare: %w", ErrEmptyAlignment)))
	assert.False(t, IsEmptyAlignment(inner))
}
