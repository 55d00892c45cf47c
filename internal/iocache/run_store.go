package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/solarlab/pvcompare/internal/contract"
	"github.com/solarlab/pvcompare/schema"
)

// Table names for run tracking.
const (
	runsTable            = "pvcompare_runs"
	thresholdCountsTable = "pvcompare_threshold_counts"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetRunsDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize run tracking: %w", err)
	}

	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{db: db, backend: backend}, nil
}

// createRunTables creates the run tracking tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{thresholdCountsTable, getCreateThresholdCountsQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for pvcompare_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_key CHAR(36) PRIMARY KEY,
				stage VARCHAR(32) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms BIGINT,
				rows_written BIGINT,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_key TEXT PRIMARY KEY,
				stage TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms BIGINT,
				rows_written BIGINT,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_key TEXT PRIMARY KEY,
				stage TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				rows_written INTEGER,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateThresholdCountsQuery returns the CREATE TABLE query for pvcompare_threshold_counts.
func getCreateThresholdCountsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(thresholdCountsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_key CHAR(36) NOT NULL,
				series_id VARCHAR(255) NOT NULL,
				month INT NOT NULL,
				threshold_fraction DOUBLE NOT NULL,
				threshold_value DOUBLE NOT NULL,
				peak_value DOUBLE NOT NULL,
				hour_count INT NOT NULL,
				hour_total INT NOT NULL,
				PRIMARY KEY (run_key, series_id, month, threshold_fraction)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_key TEXT NOT NULL,
				series_id TEXT NOT NULL,
				month INT NOT NULL,
				threshold_fraction DOUBLE PRECISION NOT NULL,
				threshold_value DOUBLE PRECISION NOT NULL,
				peak_value DOUBLE PRECISION NOT NULL,
				hour_count INT NOT NULL,
				hour_total INT NOT NULL,
				PRIMARY KEY (run_key, series_id, month, threshold_fraction)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_key TEXT NOT NULL,
				series_id TEXT NOT NULL,
				month INTEGER NOT NULL,
				threshold_fraction REAL NOT NULL,
				threshold_value REAL NOT NULL,
				peak_value REAL NOT NULL,
				hour_count INTEGER NOT NULL,
				hour_total INTEGER NOT NULL,
				PRIMARY KEY (run_key, series_id, month, threshold_fraction)
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new run and returns its key.
func (rs *RunStoreImpl) BeginRun(stage schema.Stage, startTime time.Time, configParams map[string]any) (string, error) {
	if rs.db == nil {
		return "", nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config params: %w", err)
	}

	runKey := uuid.NewString()
	query := fmt.Sprintf(`INSERT INTO %s (run_key, stage, start_time, config_params) VALUES (%s)`,
		quoteTableName(runsTable, rs.backend), placeholderList(rs.backend, 4))
	if _, err := rs.db.Exec(query, runKey, string(stage), formatTime(startTime, rs.backend), string(configJSON)); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return runKey, nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runKey string, endTime time.Time, rowsWritten int) error {
	if rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	var start timeScanner
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_key = %s`, quotedTableName, placeholder(rs.backend, 1))
	if err := rs.db.QueryRow(query, runKey).Scan(&start); err != nil {
		return fmt.Errorf("failed to get start_time for run %s: %w", runKey, err)
	}
	durationMs := endTime.Sub(start.t).Milliseconds()

	update := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, rows_written = %s WHERE run_key = %s`,
		quotedTableName,
		placeholder(rs.backend, 1), placeholder(rs.backend, 2), placeholder(rs.backend, 3), placeholder(rs.backend, 4))
	if _, err := rs.db.Exec(update, formatTime(endTime, rs.backend), durationMs, rowsWritten, runKey); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// RecordThresholdCounts stores every count of a run in one transaction.
func (rs *RunStoreImpl) RecordThresholdCounts(runKey string, counts []schema.ThresholdCount) error {
	if rs.db == nil || len(counts) == 0 {
		return nil
	}

	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`INSERT INTO %s (run_key, series_id, month, threshold_fraction, threshold_value, peak_value, hour_count, hour_total) VALUES (%s)`,
		quoteTableName(thresholdCountsTable, rs.backend), placeholderList(rs.backend, 8))
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare threshold insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, c := range counts {
		if _, err := stmt.Exec(runKey, c.SeriesID, c.Month, c.Fraction, c.Threshold, c.Peak, c.Count, c.Total); err != nil {
			return fmt.Errorf("failed to insert threshold count for %s: %w", c.SeriesID, err)
		}
	}
	return tx.Commit()
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, rs.backend)
	row := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns))
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var last, oldest timeScanner
		row = rs.db.QueryRow(fmt.Sprintf("SELECT run_key, start_time FROM %s ORDER BY start_time DESC LIMIT 1", quotedRuns))
		if err := row.Scan(&status.LastRunKey, &last); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunTime = last.t

		row = rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY start_time ASC LIMIT 1", quotedRuns))
		if err := row.Scan(&oldest); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest.t

		row = rs.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(rows_written), 0) FROM %s", quotedRuns))
		if err := row.Scan(&status.TotalRowsWritten); err != nil {
			return status, fmt.Errorf("failed to get total rows written: %w", err)
		}
	}

	for _, table := range []string{runsTable, thresholdCountsTable} {
		var count int64
		row = rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend)))
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all runs ordered by start time.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_key, stage, start_time, end_time, run_duration_ms, rows_written, config_params FROM %s ORDER BY start_time, run_key",
		quoteTableName(runsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var start, end timeScanner
		if err := rows.Scan(&record.RunKey, &record.Stage, &start, &end, &record.RunDurationMs, &record.RowsWritten, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		record.StartTime = start.t
		record.EndTime = end.ptr()
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllThresholdCounts retrieves every stored threshold count.
func (rs *RunStoreImpl) GetAllThresholdCounts() ([]schema.RunThresholdRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_key, series_id, month, threshold_fraction, threshold_value, peak_value, hour_count, hour_total
		FROM %s ORDER BY run_key, series_id, month, threshold_fraction`, quoteTableName(thresholdCountsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query threshold counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunThresholdRecord
	for rows.Next() {
		var r schema.RunThresholdRecord
		if err := rows.Scan(&r.RunKey, &r.SeriesID, &r.Month, &r.Fraction, &r.Threshold, &r.Peak, &r.Count, &r.Total); err != nil {
			return nil, fmt.Errorf("failed to scan threshold count: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating threshold counts: %w", err)
	}
	return results, nil
}
