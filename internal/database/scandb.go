package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/vexscan/vexscan/internal/model"
)

// ScanDB provides SQLite-based storage for crawled pages and scan reports.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file for all targets rather
// than separate files per target. This simplifies history queries and
// backup/restore operations.
type ScanDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ScanDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ScanDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ScanDB, error) {
	dbPath := filepath.Join(dbDir, "vexscan.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; multiple connections just
	// contend on the write lock.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &ScanDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (sdb *ScanDB) Close() error {
	return sdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (sdb *ScanDB) createTables() error {
	schema := `
	-- Page records store individual rendered pages
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		target TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		status_code INTEGER,
		title TEXT,
		html_hash TEXT,
		screenshot_path TEXT,
		depth INTEGER DEFAULT 0,
		UNIQUE(url, target)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	CREATE INDEX IF NOT EXISTS idx_pages_target ON pages(target);
	CREATE INDEX IF NOT EXISTS idx_pages_timestamp ON pages(timestamp);

	-- Scan reports store complete scan results as JSON
	CREATE TABLE IF NOT EXISTS scan_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		target TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL,
		risk_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reports_target ON scan_reports(target);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON scan_reports(timestamp);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// PageRecord represents a stored page result.
type PageRecord struct {
	ID             int64
	URL            string
	Target         string
	Timestamp      time.Time
	StatusCode     int
	Title          string
	HTMLHash       string
	ScreenshotPath string
	Depth          int
}

// InsertPage inserts or updates a page record for the given target.
// Uses UPSERT to handle duplicates (same URL + target).
func (sdb *ScanDB) InsertPage(ctx context.Context, target string, page *model.Page) (int64, error) {
	query := `
	INSERT INTO pages (url, target, status_code, title, html_hash, screenshot_path, depth)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url, target) DO UPDATE SET
		status_code = excluded.status_code,
		title = excluded.title,
		html_hash = excluded.html_hash,
		screenshot_path = excluded.screenshot_path,
		depth = excluded.depth,
		timestamp = CURRENT_TIMESTAMP
	`

	result, err := sdb.db.ExecContext(ctx, query,
		page.URL,
		target,
		page.StatusCode,
		page.Title,
		page.Hash,
		page.ScreenshotPath,
		page.Depth,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert page: %w", err)
	}

	return result.LastInsertId()
}

// GetPage retrieves a page record by URL and target.
func (sdb *ScanDB) GetPage(ctx context.Context, url, target string) (*PageRecord, error) {
	query := `
	SELECT id, url, target, timestamp, status_code, title, html_hash, screenshot_path, depth
	FROM pages
	WHERE url = ? AND target = ?
	`

	var record PageRecord
	var timestamp string

	err := sdb.db.QueryRowContext(ctx, query, url, target).Scan(
		&record.ID,
		&record.URL,
		&record.Target,
		&timestamp,
		&record.StatusCode,
		&record.Title,
		&record.HTMLHash,
		&record.ScreenshotPath,
		&record.Depth,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}

	record.Timestamp = parseTimestamp(timestamp)
	return &record, nil
}

// HasRecentCrawl checks if a URL was crawled within the specified duration.
func (sdb *ScanDB) HasRecentCrawl(ctx context.Context, url string, duration time.Duration) (bool, error) {
	query := `
	SELECT COUNT(*) FROM pages
	WHERE url = ? AND timestamp > datetime('now', ?)
	`

	// SQLite datetime modifier format
	modifier := fmt.Sprintf("-%d seconds", int(duration.Seconds()))

	var count int
	err := sdb.db.QueryRowContext(ctx, query, url, modifier).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check recent crawl: %w", err)
	}

	return count > 0, nil
}

// SaveScanReport saves a complete scan report as JSON.
func (sdb *ScanDB) SaveScanReport(ctx context.Context, report *model.ScanReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	riskSummary := map[string]int{
		"critical": 0,
		"high":     0,
		"medium":   0,
		"low":      0,
		"info":     0,
	}
	if report.Summary != nil {
		riskSummary["critical"] = report.Summary.CriticalCount
		riskSummary["high"] = report.Summary.HighCount
		riskSummary["medium"] = report.Summary.MediumCount
		riskSummary["low"] = report.Summary.LowCount
		riskSummary["info"] = report.Summary.InfoCount
	}
	riskJSON, _ := json.Marshal(riskSummary) //nolint:errcheck,errchkjson // riskSummary is a simple map; Marshal won't fail

	query := `
	INSERT INTO scan_reports (target, report_json, risk_summary)
	VALUES (?, ?, ?)
	`

	_, err = sdb.db.ExecContext(ctx, query,
		report.Target,
		string(reportJSON),
		string(riskJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save scan report: %w", err)
	}

	return nil
}

// GetLatestScanReport retrieves the most recent scan report for a target.
func (sdb *ScanDB) GetLatestScanReport(ctx context.Context, target string) (*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_reports
	WHERE target = ?
	ORDER BY timestamp DESC
	LIMIT 1
	`

	var reportJSON string
	err := sdb.db.QueryRowContext(ctx, query, target).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}

	var report model.ScanReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// ListScannedTargets returns a list of all scanned targets.
func (sdb *ScanDB) ListScannedTargets(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT target FROM scan_reports
	ORDER BY target
	`

	rows, err := sdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	defer rows.Close()

	var targets []string
	for rows.Next() {
		var target string
		if err := rows.Scan(&target); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		targets = append(targets, target)
	}

	return targets, rows.Err()
}

// GetScanHistory retrieves all scan reports for a target.
func (sdb *ScanDB) GetScanHistory(ctx context.Context, target string) ([]*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_reports
	WHERE target = ?
	ORDER BY timestamp DESC
	`

	rows, err := sdb.db.QueryContext(ctx, query, target)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	defer rows.Close()

	var reports []*model.ScanReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		var report model.ScanReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// ScanReportMetadata contains summary information about a scan report.
// This is used for displaying scan history without loading the full report.
type ScanReportMetadata struct {
	// ID is the unique identifier of the scan report in the database.
	ID int64 `json:"id"`

	// Target is the scanned site.
	Target string `json:"target"`

	// Timestamp is when the scan was performed.
	Timestamp time.Time `json:"timestamp"`

	// RiskSummary contains counts of findings by severity level.
	RiskSummary map[string]int `json:"risk_summary,omitempty"`
}

// ListScans retrieves metadata for stored scans, newest first. When
// target is empty, scans for all targets are returned.
func (sdb *ScanDB) ListScans(ctx context.Context, target string) ([]ScanReportMetadata, error) {
	query := `
	SELECT id, target, timestamp, risk_summary
	FROM scan_reports
	`
	args := make([]interface{}, 0, 1)
	if target != "" {
		query += " WHERE target = ?"
		args = append(args, target)
	}
	query += " ORDER BY timestamp DESC"

	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	var results []ScanReportMetadata
	for rows.Next() {
		var meta ScanReportMetadata
		var timestamp string
		var riskJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Target, &timestamp, &riskJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)

		if riskJSON.Valid && riskJSON.String != "" {
			if err := json.Unmarshal([]byte(riskJSON.String), &meta.RiskSummary); err != nil {
				meta.RiskSummary = make(map[string]int)
			}
		} else {
			meta.RiskSummary = make(map[string]int)
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetScanReportByID retrieves a scan report by its database ID.
func (sdb *ScanDB) GetScanReportByID(ctx context.Context, id int64) (*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_reports
	WHERE id = ?
	`

	var reportJSON string
	err := sdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}

	var report model.ScanReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
