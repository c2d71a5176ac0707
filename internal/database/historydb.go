package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/urlextract/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "urlextract.db"

// HistoryDB stores finished crawl reports in SQLite.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist,
// ErrDatabaseNotFound is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per finished crawl; report_json holds the full report
	CREATE TABLE IF NOT EXISTS crawl_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed TEXT NOT NULL,
		domain TEXT NOT NULL,
		base_url TEXT NOT NULL,
		depth INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		found_count INTEGER NOT NULL,
		administrative_count INTEGER NOT NULL,
		administrative_site INTEGER NOT NULL,
		cancelled INTEGER NOT NULL,
		error TEXT,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_domain ON crawl_reports(domain);

	-- Found URLs of each report; tier is empty for unclassified URLs
	CREATE TABLE IF NOT EXISTS found_urls (
		report_id INTEGER NOT NULL REFERENCES crawl_reports(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		tier TEXT NOT NULL DEFAULT '',
		UNIQUE(report_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_found_url ON found_urls(url);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// Save stores report. It satisfies pipeline.Saver.
func (hdb *HistoryDB) Save(ctx context.Context, report *model.CrawlReport) error {
	_, err := hdb.SaveReport(ctx, report)
	return err
}

// SaveReport stores report and its found URLs in one transaction and
// returns the new report ID.
func (hdb *HistoryDB) SaveReport(ctx context.Context, report *model.CrawlReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // no-op after commit
	}()

	result, err := tx.ExecContext(ctx, `
	INSERT INTO crawl_reports (seed, domain, base_url, depth, started_at, finished_at,
		found_count, administrative_count, administrative_site, cancelled, error, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.Seed,
		report.Domain,
		report.BaseURL.String(),
		report.Depth,
		formatTimestamp(report.StartedAt),
		formatTimestamp(report.FinishedAt),
		report.FoundCount(),
		report.AdministrativeCount(),
		report.AdministrativeSite,
		report.Cancelled,
		report.ErrorMessage,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save crawl report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read report id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO found_urls (report_id, url, tier) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare url insert: %w", err)
	}
	defer stmt.Close()

	tiers := tierIndex(report.Classification)
	for _, u := range report.Found {
		if _, err := stmt.ExecContext(ctx, id, u.String(), string(tiers[u])); err != nil {
			return 0, fmt.Errorf("failed to save url %s: %w", u, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit report: %w", err)
	}
	return id, nil
}

// tierIndex maps every classified URL to its tier.
func tierIndex(c *model.ClassificationResult) map[model.CanonicalURL]model.Tier {
	index := make(map[model.CanonicalURL]model.Tier, c.Total())
	for _, tier := range model.Tiers {
		for _, u := range c.ByTier(tier) {
			index[u] = tier
		}
	}
	return index
}

// GetReportByID retrieves a crawl report by its database ID.
// It returns nil and no error if the ID is unknown.
func (hdb *HistoryDB) GetReportByID(ctx context.Context, id int64) (*model.CrawlReport, error) {
	return hdb.queryReport(ctx, `SELECT report_json FROM crawl_reports WHERE id = ?`, id)
}

// GetLatestReport retrieves the most recent crawl report for domain.
// It returns nil and no error if the domain was never crawled.
func (hdb *HistoryDB) GetLatestReport(ctx context.Context, domain string) (*model.CrawlReport, error) {
	return hdb.queryReport(ctx, `
	SELECT report_json FROM crawl_reports
	WHERE domain = ?
	ORDER BY id DESC
	LIMIT 1
	`, domain)
}

func (hdb *HistoryDB) queryReport(ctx context.Context, query string, args ...any) (*model.CrawlReport, error) {
	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, query, args...).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl report: %w", err)
	}

	var report model.CrawlReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// ListDomains returns every crawled domain, sorted.
func (hdb *HistoryDB) ListDomains(ctx context.Context) ([]string, error) {
	rows, err := hdb.db.QueryContext(ctx, `SELECT DISTINCT domain FROM crawl_reports ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var domain string
		if err := rows.Scan(&domain); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, domain)
	}
	return domains, rows.Err()
}

// ReportMetadata contains summary information about a stored report.
// It is used for listing history without loading full reports.
type ReportMetadata struct {
	ID                  int64     `json:"id"`
	Seed                string    `json:"seed"`
	Domain              string    `json:"domain"`
	BaseURL             string    `json:"base_url"`
	Depth               int       `json:"depth"`
	StartedAt           time.Time `json:"started_at"`
	FinishedAt          time.Time `json:"finished_at"`
	FoundCount          int       `json:"found"`
	AdministrativeCount int       `json:"administrative"`
	AdministrativeSite  bool      `json:"administrative_site"`
	Cancelled           bool      `json:"cancelled"`
	Error               string    `json:"error,omitempty"`
}

// ListReports returns report metadata, newest first. An empty domain lists
// every domain. A limit of zero or less means no limit.
func (hdb *HistoryDB) ListReports(ctx context.Context, domain string, limit int) ([]ReportMetadata, error) {
	query := `
	SELECT id, seed, domain, base_url, depth, started_at, finished_at,
		found_count, administrative_count, administrative_site, cancelled, COALESCE(error, '')
	FROM crawl_reports
	WHERE 1=1
	`
	args := make([]any, 0, 2)

	if domain != "" {
		query += " AND domain = ?"
		args = append(args, domain)
	}
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var results []ReportMetadata
	for rows.Next() {
		var meta ReportMetadata
		var started, finished string
		if err := rows.Scan(
			&meta.ID,
			&meta.Seed,
			&meta.Domain,
			&meta.BaseURL,
			&meta.Depth,
			&started,
			&finished,
			&meta.FoundCount,
			&meta.AdministrativeCount,
			&meta.AdministrativeSite,
			&meta.Cancelled,
			&meta.Error,
		); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		meta.StartedAt = parseTimestamp(started)
		meta.FinishedAt = parseTimestamp(finished)
		results = append(results, meta)
	}
	return results, rows.Err()
}

// StoredURL is a found URL together with its tier.
// Tier is empty when the URL was not classified.
type StoredURL struct {
	URL  model.CanonicalURL
	Tier model.Tier
}

// DomainURLs returns every distinct URL ever found for domain, sorted.
// When a URL was classified in several reports the latest tier wins.
func (hdb *HistoryDB) DomainURLs(ctx context.Context, domain string) ([]StoredURL, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT f.url, f.tier
	FROM found_urls f
	JOIN crawl_reports r ON r.id = f.report_id
	WHERE r.domain = ?
	ORDER BY f.url, r.id
	`, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to query urls: %w", err)
	}
	defer rows.Close()

	var results []StoredURL
	for rows.Next() {
		var u, tier string
		if err := rows.Scan(&u, &tier); err != nil {
			return nil, fmt.Errorf("failed to scan url: %w", err)
		}
		if n := len(results); n > 0 && results[n-1].URL == model.CanonicalURL(u) {
			results[n-1].Tier = model.Tier(tier)
			continue
		}
		results = append(results, StoredURL{URL: model.CanonicalURL(u), Tier: model.Tier(tier)})
	}
	return results, rows.Err()
}

// formatTimestamp renders t for storage.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, it returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
