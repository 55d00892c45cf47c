package gsa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/solarlab/pvcompare/internal/contract"
	"github.com/solarlab/pvcompare/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// matrix returns a 12x24 PVOUT_specific matrix with 500 Wh/kWp at noon and 250 at 13:00.
func matrix() [][]float64 {
	m := make([][]float64, 12)
	for i := range m {
		m[i] = make([]float64, 24)
		m[i][12] = 500
		m[i][13] = 250
	}
	return m
}

func pvcalcBody(m [][]float64) map[string]any {
	return map[string]any{
		"monthly-hourly": map[string]any{
			"data": map[string]any{"PVOUT_specific": m},
		},
	}
}

func testQuery(res schema.Resolution) schema.SourceQuery {
	return schema.SourceQuery{
		SystemID:   "east",
		Latitude:   48.35007,
		Longitude:  10.901184,
		GMTOffset:  1,
		Azimuth:    90,
		Tilt:       55,
		Capacity:   1711.125,
		Resolution: res,
		RefYear:    2024,
	}
}

func TestFetchHourly(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/data/pvcalc", r.URL.Path)
		assert.Equal(t, "48.35007,10.901184", r.URL.Query().Get("loc"))
		assert.Equal(t, "1", r.URL.Query().Get("gmtOffset"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "pvcompare/test", r.Header.Get("User-Agent"))

		var body pvcalcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "rooftopSmall", body.Type)
		assert.Equal(t, "capacity", body.SystemSize.Type)
		assert.InDelta(t, 1.711125, body.SystemSize.Value, 1e-9)
		assert.Equal(t, 90.0, body.Orientation.Azimuth)
		assert.Equal(t, 55.0, body.Orientation.Tilt)

		_ = json.NewEncoder(w).Encode(pvcalcBody(matrix()))
	}))
	defer ts.Close()

	client := NewClient(HTTPClient("test", time.Second), ts.URL, "secret")
	samples, err := client.Fetch(context.Background(), testQuery(schema.HourlyResolution))
	require.NoError(t, err)
	require.Len(t, samples, 288)

	noon := samples[12]
	assert.Equal(t, "east", noon.SystemID)
	assert.True(t, time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC).Equal(noon.Timestamp), noon.Timestamp)
	assert.Equal(t, 855.56, noon.Value) // 500 / 1000 * 1711.125, rounded
	assert.Equal(t, 0.0, samples[0].Value)
	assert.True(t, time.Date(2024, 12, 1, 22, 0, 0, 0, time.UTC).Equal(samples[287].Timestamp), samples[287].Timestamp)
}

func TestFetchKeepsHourInGMTOffset(t *testing.T) {
	m := make([][]float64, 12)
	for i := range m {
		m[i] = make([]float64, 24)
	}
	m[5][12] = 1000

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(pvcalcBody(m))
	}))
	defer ts.Close()

	tests := []struct {
		name    string
		offset  int
		utcHour int
	}{
		{"utc", 0, 12},
		{"east of utc", 1, 11},
		{"west of utc", -5, 17},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := testQuery(schema.HourlyResolution)
			q.GMTOffset = tt.offset
			samples, err := NewClient(ts.Client(), ts.URL, "").Fetch(context.Background(), q)
			require.NoError(t, err)

			peak := samples[5*24+12]
			require.Positive(t, peak.Value)
			local := peak.Timestamp.In(time.FixedZone("", tt.offset*3600))
			assert.Equal(t, time.June, local.Month())
			assert.Equal(t, 12, local.Hour())
			assert.Equal(t, tt.utcHour, peak.Timestamp.UTC().Hour())
		})
	}
}

func TestFetchMonthly(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(pvcalcBody(matrix()))
	}))
	defer ts.Close()

	client := NewClient(ts.Client(), ts.URL, "")
	samples, err := client.Fetch(context.Background(), testQuery(schema.MonthlyResolution))
	require.NoError(t, err)
	require.Len(t, samples, 12)
	assert.Equal(t, 0, samples[5].Timestamp.Hour())
	assert.Equal(t, time.June, samples[5].Timestamp.Month())
	assert.InDelta(t, 855.56+427.78, samples[5].Value, 1e-9)
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`},
		{"rate limited", http.StatusTooManyRequests, ``},
		{"not json", http.StatusOK, `<html>`},
		{"missing matrix", http.StatusOK, `{"monthly-hourly":{"data":{}}}`},
		{"short month", http.StatusOK, `{"monthly-hourly":{"data":{"PVOUT_specific":[[1,2,3]]}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			client := NewClient(ts.Client(), ts.URL, "")
			_, err := client.Fetch(context.Background(), testQuery(schema.HourlyResolution))

			var remote *contract.RemoteServiceError
			require.ErrorAs(t, err, &remote)
			assert.Equal(t, tt.status, remote.Status)
		})
	}
}

func TestFetchTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(pvcalcBody(matrix()))
	}))
	defer ts.Close()

	client := NewClient(HTTPClient("test", 20*time.Millisecond), ts.URL, "")
	_, err := client.Fetch(context.Background(), testQuery(schema.HourlyResolution))

	var remote *contract.RemoteServiceError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, 0, remote.Status)
}

func TestFetchUnsupportedResolution(t *testing.T) {
	client := NewClient(http.DefaultClient, "http://127.0.0.1:0", "")
	_, err := client.Fetch(context.Background(), testQuery("daily"))
	assert.Error(t, err)
}
