// Package store persists scraped postings and enforces the one record per
// URL rule. Two backends exist: a sqlite database and a plain JSON file,
// selected by configuration.
package store

import (
	"context"
	"fmt"

	"github.com/osvald0/linkedin-scraper/internal/models"
)

// Store is what the rest of the program sees of persistence.
type Store interface {
	// Save writes the record unless the URL is already stored. It returns
	// true when the record was actually written. A successful record does
	// replace an earlier failed one for the same URL, so retried postings
	// are upgraded instead of duplicated.
	Save(ctx context.Context, rec models.Record) (bool, error)

	// KnownURLs lists the URLs of successfully stored postings. Failed
	// records are not included, so they get another chance next run.
	KnownURLs(ctx context.Context) ([]string, error)

	// Count reports how many successful postings the store holds.
	Count(ctx context.Context) (int, error)

	Close() error
}

// Open builds the backend selected by name with its backing file.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "sqlite":
		return OpenSQLite(path)
	case "json":
		return OpenJSONFile(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
