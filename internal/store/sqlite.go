package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/osvald0/linkedin-scraper/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	url TEXT NOT NULL UNIQUE,
	posted_date TIMESTAMP,
	posted_date_raw TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	scraped_at TIMESTAMP,
	success BOOLEAN NOT NULL DEFAULT 1,
	error TEXT NOT NULL DEFAULT '',
	stored_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_jobs_scraped_at ON jobs(scraped_at);
`

// insertQuery writes one record per URL. On conflict the row is replaced
// only when it upgrades an earlier failed scrape to a successful one;
// anything else is a no-op, which keeps reruns idempotent.
const insertQuery = `
INSERT INTO jobs (job_id, title, company, location, description, url,
	posted_date, posted_date_raw, source, scraped_at, success, error, stored_at)
VALUES (:job_id, :title, :company, :location, :description, :url,
	:posted_date, :posted_date_raw, :source, :scraped_at, :success, :error, :stored_at)
ON CONFLICT(url) DO UPDATE SET
	job_id = excluded.job_id,
	title = excluded.title,
	company = excluded.company,
	location = excluded.location,
	description = excluded.description,
	posted_date = excluded.posted_date,
	posted_date_raw = excluded.posted_date_raw,
	source = excluded.source,
	scraped_at = excluded.scraped_at,
	success = excluded.success,
	error = excluded.error,
	stored_at = excluded.stored_at
WHERE jobs.success = 0 AND excluded.success = 1`

// SQLite keeps postings in a single-file database. A single connection is
// enough for this sequential workload and avoids writer contention.
type SQLite struct {
	db *sqlx.DB
}

// OpenSQLite opens or creates the database at path and applies the schema.
func OpenSQLite(path string) (*SQLite, error) {
	// _time_format makes the driver store time.Time in a form it can read back
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_time_format=sqlite", path)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Save implements Store.
func (s *SQLite) Save(ctx context.Context, rec models.Record) (bool, error) {
	res, err := s.db.NamedExecContext(ctx, insertQuery, rec)
	if err != nil {
		return false, fmt.Errorf("insert %s: %w", rec.URL, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected for %s: %w", rec.URL, err)
	}
	return n > 0, nil
}

// KnownURLs implements Store.
func (s *SQLite) KnownURLs(ctx context.Context) ([]string, error) {
	var urls []string
	if err := s.db.SelectContext(ctx, &urls, "SELECT url FROM jobs WHERE success = 1 ORDER BY id"); err != nil {
		return nil, fmt.Errorf("select known urls: %w", err)
	}
	return urls, nil
}

// Count implements Store.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT count(*) FROM jobs WHERE success = 1"); err != nil {
		return 0, fmt.Errorf("count postings: %w", err)
	}
	return n, nil
}

// Close implements Store.
func (s *SQLite) Close() error {
	return s.db.Close()
}
