package linkedin

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/osvald0/linkedin-scraper/internal/models"
)

// selectors for the authenticated jobs UI
const (
	selJobCard     = `[data-job-id]`
	selTitle       = ".job-details-jobs-unified-top-card__job-title, h1"
	selCompany     = ".job-details-jobs-unified-top-card__company-name"
	selPrimaryDesc = ".job-details-jobs-unified-top-card__primary-description-container"
	selDescription = ".jobs-description__content, #job-details"
)

// jobRef points at one search result card.
type jobRef struct {
	ID  string
	URL string
}

// canonicalURL is the stable link for a posting. Search pages reference
// the same job through varying tracking URLs; the /jobs/view/ form is
// unique per posting and is what deduplication keys on.
func canonicalURL(id string) string {
	return fmt.Sprintf("https://www.linkedin.com/jobs/view/%s/", id)
}

// parseJobRefs pulls the job ids out of a rendered search results page.
// The filter bar carries data-job-id="search" and cards can repeat in the
// DOM, so both are dropped here, preserving page order.
func parseJobRefs(html string) ([]jobRef, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	var refs []jobRef
	seen := map[string]bool{}
	doc.Find(selJobCard).Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("data-job-id")
		if id == "" || id == "search" || seen[id] {
			return
		}
		seen[id] = true
		refs = append(refs, jobRef{ID: id, URL: canonicalURL(id)})
	})
	return refs, nil
}

// parseJobDetail turns a rendered posting page into a JobPosting. Title,
// company and description are mandatory, the rest is best-effort.
func parseJobDetail(html string, ref jobRef, now time.Time) (models.JobPosting, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.JobPosting{}, fmt.Errorf("parse posting page: %w", err)
	}

	p := models.JobPosting{
		JobID:     ref.ID,
		URL:       ref.URL,
		Source:    "linkedin",
		ScrapedAt: now,
	}

	p.Title = cleanText(doc.Find(selTitle).First().Text())
	if p.Title == "" {
		return models.JobPosting{}, fmt.Errorf("no job title on page")
	}
	p.Company = cleanText(doc.Find(selCompany).First().Text())
	if p.Company == "" {
		return models.JobPosting{}, fmt.Errorf("no company name on page")
	}
	p.Description = cleanText(doc.Find(selDescription).First().Text())
	if p.Description == "" {
		return models.JobPosting{}, fmt.Errorf("no description on page")
	}

	// the top card packs location and posting age into one line separated
	// by middle dots: "Amsterdam, Netherlands · 3 days ago · 52 applicants"
	if primary := doc.Find(selPrimaryDesc).First(); primary.Length() > 0 {
		parts := strings.Split(primary.Text(), "·")
		if len(parts) > 0 {
			p.Location = cleanText(parts[0])
		}
		for _, part := range parts[1:] {
			if raw := cleanText(part); relativeDateRe.MatchString(raw) {
				p.PostedDateRaw = raw
				break
			}
		}
	}

	// prefer an absolute date when the page carries one
	if dt, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		if ts, err := time.Parse("2006-01-02", dt); err == nil {
			p.PostedDate = &ts
			if p.PostedDateRaw == "" {
				p.PostedDateRaw = dt
			}
		}
	}
	if p.PostedDate == nil && p.PostedDateRaw != "" {
		p.PostedDate = parseRelativeDate(p.PostedDateRaw, now)
	}

	return p, nil
}

// cleanText collapses the whitespace runs Text() leaves behind when the
// markup is heavily nested.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
