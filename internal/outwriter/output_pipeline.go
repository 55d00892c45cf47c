package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/solarlab/pvcompare/internal/contract"
	"github.com/solarlab/pvcompare/internal/parquet"
	"github.com/solarlab/pvcompare/schema"
)

var (
	sampleHeader = []string{"id", "timestamp", "value"}
	bucketHeader = []string{"id", "month", "hour", "mean_value", "samples"}
)

func parquetSamples(samples []schema.RawSample) []parquet.Sample {
	return parquet.ConvertSamples(samples)
}

func parquetBuckets(buckets []schema.Bucket) []parquet.Bucket {
	return parquet.ConvertBuckets(buckets)
}

// writeCSVSamples writes raw samples in the long layout.
func writeCSVSamples(w *csv.Writer, samples []schema.RawSample) error {
	for _, s := range samples {
		row := []string{s.SystemID, s.Timestamp.Format(contract.DateTimeFormat), csvFloat(s.Value)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// writeCSVBuckets writes canonical buckets in the long layout.
func writeCSVBuckets(w *csv.Writer, buckets []schema.Bucket) error {
	for _, b := range buckets {
		row := []string{
			b.SeriesID,
			strconv.Itoa(b.Month),
			strconv.Itoa(b.Hour),
			csvFloat(b.Mean),
			strconv.Itoa(b.Samples),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// writeSamplesTable summarizes fetched samples per system; a year of hourly rows is too long to print.
func writeSamplesTable(w io.Writer, result schema.FetchResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	type summary struct {
		count      int
		total, max float64
	}
	perSystem := make(map[string]*summary, len(result.Systems))
	for _, s := range result.Samples {
		sum, ok := perSystem[s.SystemID]
		if !ok {
			sum = &summary{}
			perSystem[s.SystemID] = sum
		}
		sum.count++
		sum.total += s.Value
		sum.max = max(sum.max, s.Value)
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Azimuth", "Tilt", "Capacity W", "Samples", "Total", "Peak"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	idWidth := GetMaxTableIDWidth(cfg, 6)
	var data [][]string
	for _, sys := range result.Systems {
		sum := perSystem[sys.ID]
		if sum == nil {
			sum = &summary{}
		}
		data = append(data, []string{
			truncateID(sys.ID, idWidth),
			fmtFloat(sys.Azimuth),
			fmtFloat(sys.Tilt),
			fmtFloat(sys.Capacity),
			fmt.Sprintf(intFmt, sum.count),
			fmtFloat(sum.total),
			fmtFloat(sum.max),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Fetched %d samples for %d systems in %v (%d from cache). Cache backend: %s\n",
		len(result.Samples), len(result.Systems), duration, result.CacheHits, cfg.CacheBackend)
	return err
}

// writeBucketsTable prints one row per canonical bucket.
func writeBucketsTable(w io.Writer, buckets []schema.Bucket, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Month", "Hour", "Mean", "Samples"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	idWidth := GetMaxTableIDWidth(cfg, 4)
	data := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		data = append(data, []string{
			truncateID(b.SeriesID, idWidth),
			schema.MonthName(b.Month),
			fmt.Sprintf("%02d:00", b.Hour),
			fmtFloat(b.Mean),
			fmt.Sprintf(intFmt, b.Samples),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Normalized %d buckets for %d series in %v. Timezone: %s\n",
		len(buckets), len(schema.SeriesIDs(buckets)), duration, cfg.Location)
	return err
}
