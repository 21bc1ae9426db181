// Package linkedin drives the authenticated jobs UI: login (or cookie
// reuse), one search per configured location, pagination up to the page
// limit and a detail page visit per unseen posting. Page content is parsed
// offline by parser.go so the extraction logic stays testable.
package linkedin

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/playwright-community/playwright-go"
	"golang.org/x/time/rate"

	"github.com/osvald0/linkedin-scraper/internal/browser"
	"github.com/osvald0/linkedin-scraper/internal/config"
	"github.com/osvald0/linkedin-scraper/internal/dedup"
	"github.com/osvald0/linkedin-scraper/internal/models"
	"github.com/osvald0/linkedin-scraper/internal/scraper"
	"github.com/osvald0/linkedin-scraper/utils"
)

const (
	loginURL   = "https://www.linkedin.com/login"
	feedURL    = "https://www.linkedin.com/feed/"
	searchBase = "https://www.linkedin.com/jobs/search/"

	selGlobalNav = "#global-nav"
	selNextPage  = "li.active + li"
	selShowMore  = `button[data-testid="expandable-text-button"]`
)

// Scraper runs the whole site interaction for one process.
type Scraper struct {
	cfg   *config.Config
	seen  *dedup.Index
	lim   *rate.Limiter
	shots *utils.Screenshots
}

// New builds the scraper. The limiter paces navigations to one every two
// seconds so a run stays polite regardless of how many postings it walks.
func New(cfg *config.Config, seen *dedup.Index) *Scraper {
	return &Scraper{
		cfg:   cfg,
		seen:  seen,
		lim:   rate.NewLimiter(rate.Every(2*time.Second), 1),
		shots: utils.NewScreenshots("logs/screenshots"),
	}
}

// Name implements scraper.Scraper.
func (s *Scraper) Name() string { return "linkedin" }

// Authenticate reuses the cookie session when it is still valid, otherwise
// goes through the login form and saves the fresh cookies for next time.
func (s *Scraper) Authenticate(ctx context.Context, page playwright.Page) error {
	if err := s.lim.Wait(ctx); err != nil {
		return err
	}
	if _, err := page.Goto(feedURL, s.gotoOpts()); err != nil {
		return fmt.Errorf("load feed: %w", err)
	}
	if _, err := page.WaitForSelector(selGlobalNav, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(5000),
	}); err == nil {
		log.Printf("[INFO] ✅ session restored from saved cookies")
		return nil
	}

	log.Printf("[INFO] 🔐 logging in as %s", s.cfg.Email)
	if err := s.lim.Wait(ctx); err != nil {
		return err
	}
	if _, err := page.Goto(loginURL, s.gotoOpts()); err != nil {
		return fmt.Errorf("load login page: %w", err)
	}
	if err := page.Locator("#username").Fill(s.cfg.Email); err != nil {
		return fmt.Errorf("fill email: %w", err)
	}
	if err := page.Locator("#password").Fill(s.cfg.Password); err != nil {
		return fmt.Errorf("fill password: %w", err)
	}
	if err := page.Locator(`button[type="submit"]`).Click(); err != nil {
		return fmt.Errorf("submit login form: %w", err)
	}

	if _, err := page.WaitForSelector(selGlobalNav, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		s.shots.Capture(page, "login-failed")
		if strings.Contains(page.URL(), "checkpoint") {
			return fmt.Errorf("login stopped at a verification checkpoint, complete it once in a headful run")
		}
		return fmt.Errorf("login not confirmed: %w", err)
	}
	log.Printf("[INFO] ✅ login confirmed")

	if s.cfg.CookiesFile != "" {
		if err := browser.SaveCookies(page.Context(), s.cfg.CookiesFile); err != nil {
			log.Printf("[WARN] can't save session cookies: %v", err)
		}
	}
	return nil
}

// Scrape implements scraper.Scraper. A search page that fails to load is
// fatal; a single posting that fails to scrape is recorded and skipped.
func (s *Scraper) Scrape(ctx context.Context, page playwright.Page) (scraper.Result, error) {
	var res scraper.Result
	visited := map[string]bool{} // postings handled in this run, across locations

	for i, geoID := range s.cfg.GeoIDs {
		loc := s.cfg.Locations[i]
		log.Printf("[INFO] 🔍 searching %q in %s", s.cfg.Keywords, loc)

		refs, pages, err := s.collectRefs(ctx, page, geoID)
		if err != nil {
			return res, fmt.Errorf("search %s: %w", loc, err)
		}
		res.Pages += pages
		log.Printf("[INFO] 📄 %s: %d postings over %d pages", loc, len(refs), pages)

		for _, ref := range refs {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			if visited[ref.URL] {
				continue
			}
			visited[ref.URL] = true
			if s.seen.Seen(ref.URL) {
				res.Skipped++
				continue
			}

			p, err := s.fetchDetail(ctx, page, ref)
			if err != nil {
				log.Printf("[WARN] posting %s failed: %v", ref.URL, err)
				stub := models.JobPosting{JobID: ref.ID, URL: ref.URL, Source: s.Name(), ScrapedAt: time.Now()}
				res.Failed = append(res.Failed, models.NewFailedRecord(stub, err))
				continue
			}
			res.Postings = append(res.Postings, p)
			log.Printf("[DEBUG] scraped %q at %s", p.Title, p.Company)
		}
	}
	return res, nil
}

// collectRefs walks the result pages of one location search and gathers
// posting references, up to the configured page limit.
func (s *Scraper) collectRefs(ctx context.Context, page playwright.Page, geoID string) ([]jobRef, int, error) {
	if err := s.lim.Wait(ctx); err != nil {
		return nil, 0, err
	}
	if _, err := page.Goto(s.searchURL(geoID), s.gotoOpts()); err != nil {
		return nil, 0, fmt.Errorf("load search page: %w", err)
	}

	var refs []jobRef
	seen := map[string]bool{}
	pages := 0

	for pages < s.cfg.PageLimit {
		if err := ctx.Err(); err != nil {
			return refs, pages, err
		}

		if _, err := page.WaitForSelector(selJobCard, playwright.PageWaitForSelectorOptions{
			Timeout: playwright.Float(15000),
		}); err != nil {
			// no cards is an empty result set, not a failure
			log.Printf("[INFO] no job cards on results page %d", pages+1)
			break
		}
		pages++

		html, err := page.Content()
		if err != nil {
			return refs, pages, fmt.Errorf("read results page %d: %w", pages, err)
		}
		pageRefs, err := parseJobRefs(html)
		if err != nil {
			return refs, pages, err
		}
		added := 0
		for _, r := range pageRefs {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			refs = append(refs, r)
			added++
		}
		log.Printf("[DEBUG] results page %d: %d cards, %d new", pages, len(pageRefs), added)

		if pages == s.cfg.PageLimit {
			break
		}
		next := page.Locator(selNextPage)
		if n, err := next.Count(); err != nil || n == 0 {
			break // already on the last page
		}
		if err := s.lim.Wait(ctx); err != nil {
			return refs, pages, err
		}
		if err := next.First().Click(); err != nil {
			log.Printf("[WARN] can't open next results page: %v", err)
			break
		}
		// the list swaps in place, give it a moment before re-reading
		page.WaitForTimeout(1500)
	}
	return refs, pages, nil
}

// fetchDetail loads one posting page and parses it.
func (s *Scraper) fetchDetail(ctx context.Context, page playwright.Page, ref jobRef) (models.JobPosting, error) {
	if err := s.lim.Wait(ctx); err != nil {
		return models.JobPosting{}, err
	}
	if _, err := page.Goto(ref.URL, s.gotoOpts()); err != nil {
		return models.JobPosting{}, fmt.Errorf("load posting: %w", err)
	}
	if _, err := page.WaitForSelector(selTitle, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(5000),
	}); err != nil {
		return models.JobPosting{}, fmt.Errorf("posting content not found")
	}

	// expand the truncated description before snapshotting the page
	showMore := page.Locator(selShowMore).First()
	if visible, _ := showMore.IsVisible(); visible {
		if err := showMore.Click(playwright.LocatorClickOptions{Force: playwright.Bool(true)}); err == nil {
			page.WaitForTimeout(300)
		}
	}

	html, err := page.Content()
	if err != nil {
		return models.JobPosting{}, fmt.Errorf("read posting page: %w", err)
	}
	return parseJobDetail(html, ref, time.Now())
}

func (s *Scraper) searchURL(geoID string) string {
	q := url.Values{}
	q.Set("keywords", s.cfg.Keywords)
	q.Set("geoId", geoID)
	if s.cfg.TPR != "" {
		q.Set("f_TPR", s.cfg.TPR)
	}
	return searchBase + "?" + q.Encode()
}

func (s *Scraper) gotoOpts() playwright.PageGotoOptions {
	return playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(s.cfg.NavTimeout.Milliseconds())),
	}
}
