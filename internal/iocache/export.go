package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/solarlab/pvcompare/internal/contract"
	"github.com/solarlab/pvcompare/internal/parquet"
)

// ExportRuns writes the run history and stored threshold counts to two Parquet files
// named after outputFile, reporting progress to w.
func ExportRuns(w io.Writer, store contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is not configured. Set --runs-backend to export runs")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	counts, err := store.GetAllThresholdCounts()
	if err != nil {
		return fmt.Errorf("failed to retrieve threshold counts: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	runRows := parquet.ConvertRunRecords(runs)
	if err := contract.WriteFileAtomic(runsFile, func(out io.Writer) error {
		return parquet.Write(out, runRows)
	}); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(runRows), runsFile)

	countsFile := outputFile + ".threshold_counts.parquet"
	countRows := parquet.ConvertRunThresholdRecords(counts)
	if err := contract.WriteFileAtomic(countsFile, func(out io.Writer) error {
		return parquet.Write(out, countRows)
	}); err != nil {
		return fmt.Errorf("failed to write threshold counts: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d threshold counts to: %s\n", len(countRows), countsFile)

	return nil
}
