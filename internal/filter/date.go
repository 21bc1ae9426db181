package filter

import "time"

// futureSkew tolerates postings dated slightly ahead of local time, which
// happens when the site renders dates in a different timezone.
const futureSkew = 48 * time.Hour

// Window is the recency constraint on posting dates. A zero Span disables
// the constraint entirely, including for postings with no parseable date.
type Window struct {
	Name string        // configured name, e.g. "past_week"
	Span time.Duration // 0 means unbounded
}

// Contains reports whether a posting dated posted falls inside the window
// as of now. A nil posted date fails every bounded window: if the page did
// not say when the job went up, we cannot claim it is recent.
func (w Window) Contains(posted *time.Time, now time.Time) (bool, string) {
	if w.Span == 0 {
		return true, ""
	}
	if posted == nil {
		return false, "posted date unknown"
	}
	age := now.Sub(*posted)
	if age < -futureSkew {
		return false, "posted date in the future"
	}
	if age > w.Span {
		return false, "posted date outside window"
	}
	return true, ""
}
