package models

import "time"

// JobPosting is a single listing extracted from a rendered page.
// URL is the canonical posting link and serves as the identity for
// deduplication everywhere downstream.
type JobPosting struct {
	JobID         string     `json:"job_id" db:"job_id"`
	Title         string     `json:"title" db:"title"`
	Company       string     `json:"company" db:"company"`
	Location      string     `json:"location,omitempty" db:"location"`
	Description   string     `json:"description" db:"description"`
	URL           string     `json:"url" db:"url"`
	PostedDate    *time.Time `json:"posted_date,omitempty" db:"posted_date"`
	PostedDateRaw string     `json:"posted_date_raw,omitempty" db:"posted_date_raw"`
	Source        string     `json:"source" db:"source"`
	ScrapedAt     time.Time  `json:"scraped_at" db:"scraped_at"`
}

// Record is the persisted form of a posting. Detail fetches that errored are
// stored too, with Success false and the error text, so a later run can see
// what happened and retry them.
type Record struct {
	JobPosting
	Success  bool      `json:"success" db:"success"`
	Error    string    `json:"error,omitempty" db:"error"`
	StoredAt time.Time `json:"stored_at" db:"stored_at"`
}

// NewRecord wraps a successfully scraped posting for storage.
func NewRecord(p JobPosting) Record {
	return Record{JobPosting: p, Success: true, StoredAt: time.Now()}
}

// NewFailedRecord remembers a posting whose detail page could not be scraped.
// Only identity fields of p are expected to be set.
func NewFailedRecord(p JobPosting, cause error) Record {
	return Record{JobPosting: p, Success: false, Error: cause.Error(), StoredAt: time.Now()}
}
