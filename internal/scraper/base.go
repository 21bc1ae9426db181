// Package scraper defines what every site scraper produces, independent of
// the site it targets.
package scraper

import (
	"context"

	"github.com/playwright-community/playwright-go"

	"github.com/osvald0/linkedin-scraper/internal/models"
)

// Result is the outcome of one scraping run over a site.
type Result struct {
	Postings []models.JobPosting // fully parsed postings, not yet filtered
	Failed   []models.Record     // detail pages that could not be scraped
	Pages    int                 // result pages visited, for the summary log
	Skipped  int                 // postings skipped because the store already has them
}

// Scraper is the interface a site scraper implements. Authenticate is
// separate from Scrape so a login failure can abort the run before any
// search traffic happens.
type Scraper interface {
	// Authenticate establishes a logged-in session on the page, reusing
	// saved cookies when they still work.
	Authenticate(ctx context.Context, page playwright.Page) error

	// Scrape walks the configured searches and collects postings. Failures
	// on individual postings land in Result.Failed; only site-level
	// problems (a search page that won't load) are returned as an error.
	Scrape(ctx context.Context, page playwright.Page) (Result, error)

	// Name is the site name used in logs and stored records.
	Name() string
}
