package linkedin

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// relativeDateRe matches the "3 days ago" / "Reposted 2 weeks ago" wording
// of the top card. The optional "+" shows up on capped counts ("30+ days ago").
var relativeDateRe = regexp.MustCompile(`(?i)(\d+)\+?\s*(minute|hour|day|week|month)s?\s+ago`)

// parseRelativeDate resolves a relative posting age against now. It
// returns nil when the text has no recognizable age; months count as 30
// days, which is close enough for window filtering.
func parseRelativeDate(raw string, now time.Time) *time.Time {
	m := relativeDateRe.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}

	var span time.Duration
	switch strings.ToLower(m[2]) {
	case "minute":
		span = time.Duration(n) * time.Minute
	case "hour":
		span = time.Duration(n) * time.Hour
	case "day":
		span = time.Duration(n) * 24 * time.Hour
	case "week":
		span = time.Duration(n) * 7 * 24 * time.Hour
	case "month":
		span = time.Duration(n) * 30 * 24 * time.Hour
	default:
		return nil
	}

	ts := now.Add(-span)
	return &ts
}
