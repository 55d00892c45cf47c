// Package gsa requests modeled PV generation from the Global Solar Atlas pvcalc service.
package gsa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/solarlab/pvcompare/internal/contract"
	"github.com/solarlab/pvcompare/internal/log"
	"github.com/solarlab/pvcompare/schema"
)

const pvcalcPath = "/data/pvcalc"

// Client fetches monthly-hourly specific yield for one system at a time.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

var _ contract.SolarSource = &Client{} // Compile-time check

// NewClient returns a client for the service at baseURL. apiKey may be empty.
func NewClient(httpClient *http.Client, baseURL, apiKey string) *Client {
	return &Client{client: httpClient, baseURL: baseURL, apiKey: apiKey}
}

type systemSize struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"` // kW
}

type orientation struct {
	Azimuth float64 `json:"azimuth"`
	Tilt    float64 `json:"tilt"`
}

type pvcalcRequest struct {
	Type        string      `json:"type"`
	SystemSize  systemSize  `json:"systemSize"`
	Orientation orientation `json:"orientation"`
}

type pvcalcResponse struct {
	MonthlyHourly struct {
		Data struct {
			PVOUTSpecific [][]float64 `json:"PVOUT_specific"`
		} `json:"data"`
	} `json:"monthly-hourly"`
}

// Fetch returns the modeled generation of one reference year in Wh scaled to q.Capacity.
// Hourly resolution yields one sample per (month, hour); monthly yields one daily total per month.
func (c *Client) Fetch(ctx context.Context, q schema.SourceQuery) ([]schema.RawSample, error) {
	if q.Resolution != schema.HourlyResolution && q.Resolution != schema.MonthlyResolution {
		return nil, fmt.Errorf("unsupported resolution %q", q.Resolution)
	}

	req, err := c.newRequest(ctx, q)
	if err != nil {
		return nil, err
	}
	matrix, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).DebugContext(ctx, "pvcalc response", slog.String("system", q.SystemID), slog.Int("months", len(matrix)))
	return toSamples(q, matrix), nil
}

func (c *Client) newRequest(ctx context.Context, q schema.SourceQuery) (*http.Request, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	u.Path, err = url.JoinPath(u.Path, pvcalcPath)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("loc", strconv.FormatFloat(q.Latitude, 'f', -1, 64)+","+strconv.FormatFloat(q.Longitude, 'f', -1, 64))
	params.Set("gmtOffset", strconv.Itoa(q.GMTOffset))
	u.RawQuery = params.Encode()

	body, err := json.Marshal(pvcalcRequest{
		Type:        "rooftopSmall",
		SystemSize:  systemSize{Type: "capacity", Value: q.Capacity / 1000},
		Orientation: orientation{Azimuth: q.Azimuth, Tilt: q.Tilt},
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	return req, nil
}

// doRequest sends req once and returns the validated 12x24 specific yield matrix.
func (c *Client) doRequest(req *http.Request) ([][]float64, error) {
	ctx := req.Context()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &contract.RemoteServiceError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &contract.RemoteServiceError{Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Ctx(ctx).ErrorContext(ctx, "pvcalc request failed", slog.Int("status", resp.StatusCode), slog.String("body", truncate(body, 512)))
		return nil, &contract.RemoteServiceError{Status: resp.StatusCode, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var pr pvcalcResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to decode pvcalc response", slog.Any("error", err))
		return nil, &contract.RemoteServiceError{Status: resp.StatusCode, Err: fmt.Errorf("malformed payload: %w", err)}
	}
	matrix := pr.MonthlyHourly.Data.PVOUTSpecific
	if err := validateMatrix(matrix); err != nil {
		return nil, &contract.RemoteServiceError{Status: resp.StatusCode, Err: err}
	}
	return matrix, nil
}

func validateMatrix(matrix [][]float64) error {
	if len(matrix) != schema.MonthsPerYear {
		return fmt.Errorf("malformed payload: expected %d months of PVOUT_specific, got %d", schema.MonthsPerYear, len(matrix))
	}
	for i, month := range matrix {
		if len(month) != schema.HoursPerDay {
			return fmt.Errorf("malformed payload: month %d has %d hours, expected %d", i+1, len(month), schema.HoursPerDay)
		}
		for _, v := range month {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.New("malformed payload: non-finite PVOUT_specific value")
			}
		}
	}
	return nil
}

// toSamples scales Wh/kWp to Wh for the system capacity in W, rounded to two decimals.
// Hours in the matrix are local to the requested GMT offset.
func toSamples(q schema.SourceQuery, matrix [][]float64) []schema.RawSample {
	zone := time.UTC
	if q.GMTOffset != 0 {
		zone = time.FixedZone(fmt.Sprintf("UTC%+d", q.GMTOffset), q.GMTOffset*3600)
	}
	var samples []schema.RawSample
	for m, month := range matrix {
		day := time.Date(q.RefYear, time.Month(m+1), 1, 0, 0, 0, 0, zone)
		if q.Resolution == schema.MonthlyResolution {
			var total float64
			for _, v := range month {
				total += scale(v, q.Capacity)
			}
			samples = append(samples, schema.RawSample{SystemID: q.SystemID, Timestamp: day, Value: round2(total)})
			continue
		}
		for h, v := range month {
			samples = append(samples, schema.RawSample{
				SystemID:  q.SystemID,
				Timestamp: day.Add(time.Duration(h) * time.Hour),
				Value:     scale(v, q.Capacity),
			})
		}
	}
	return samples
}

func scale(specific, capacityW float64) float64 {
	return round2(specific / 1000 * capacityW)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
