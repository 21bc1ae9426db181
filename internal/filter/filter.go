// Package filter decides which scraped postings are worth keeping.
// All text matching is case-insensitive and diacritic-insensitive, so
// "Développeur Go" matches the keyword "developpeur".
package filter

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/osvald0/linkedin-scraper/internal/models"
)

// Criteria is the compiled filter applied to every posting. Build it with
// New so the keyword lists are normalized once instead of per posting.
type Criteria struct {
	include []string
	exclude []string
	window  Window
}

// New normalizes the keyword lists and couples them with the recency window.
// Empty and whitespace-only keywords are dropped; an empty include list
// means every description passes the inclusion test.
func New(include, exclude []string, w Window) Criteria {
	return Criteria{
		include: normalizeAll(include),
		exclude: normalizeAll(exclude),
		window:  w,
	}
}

// Accept reports whether the posting passes all predicates, matching
// keywords against the description only. When it does not pass, reason
// names the first predicate that failed, for the skip log.
func (c Criteria) Accept(p models.JobPosting, now time.Time) (bool, string) {
	text := normalize(p.Description)

	if len(c.include) > 0 && !containsAny(text, c.include) {
		return false, "no include keyword"
	}

	for _, kw := range c.exclude {
		if strings.Contains(text, kw) {
			return false, fmt.Sprintf("exclude keyword %q", kw)
		}
	}

	if ok, reason := c.window.Contains(p.PostedDate, now); !ok {
		return false, reason
	}

	return true, ""
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func normalizeAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if n := normalize(kw); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// normalize lowercases and strips diacritics so keyword matching does not
// depend on how the posting author spelled accented characters.
func normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
