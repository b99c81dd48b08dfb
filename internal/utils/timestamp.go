package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/gnomegl/labslurp/internal/models"
)

const dateLayout = "2006-01-02"

// NormalizeDate turns an inclusive YYYY-MM-DD bound into the day-boundary
// timestamp sent to the API: T00:00:00Z for a lower bound, T23:59:59Z for
// an upper one. Empty input stays empty.
func NormalizeDate(raw string, endOfDay bool) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	day, err := time.Parse(dateLayout, raw)
	if err != nil {
		return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	if endOfDay {
		return day.Format(dateLayout) + "T23:59:59Z", nil
	}
	return day.Format(dateLayout) + "T00:00:00Z", nil
}

// ParseWindow normalizes both bounds. A malformed bound is dropped and
// reported in warnings; the other bound still applies.
func ParseWindow(since, until string) (models.TimeWindow, []string) {
	var (
		window   models.TimeWindow
		warnings []string
		err      error
	)
	if window.Since, err = NormalizeDate(since, false); err != nil {
		warnings = append(warnings, fmt.Sprintf("ignoring --since: %v", err))
	}
	if window.Until, err = NormalizeDate(until, true); err != nil {
		warnings = append(warnings, fmt.Sprintf("ignoring --until: %v", err))
	}
	return window, warnings
}

// DescribeWindow renders a window for headers and summaries.
func DescribeWindow(w models.TimeWindow) string {
	since, until := dateOnly(w.Since), dateOnly(w.Until)
	switch {
	case since == "" && until == "":
		return "all time"
	case since == "":
		return "until " + until
	case until == "":
		return "since " + since
	default:
		return since + " to " + until
	}
}

func dateOnly(ts string) string {
	if i := strings.IndexByte(ts, 'T'); i > 0 {
		return ts[:i]
	}
	return ts
}

// ActivityPattern is a coarse picture of when a user commits.
type ActivityPattern struct {
	Total          int
	MostActiveHour int
	MostActiveDay  time.Weekday
	WeekendCommits int
	NightCommits   int
}

// AnalyzeActivity buckets commit times by UTC hour and weekday. Commits
// without a committed date are skipped.
func AnalyzeActivity(commits []*models.Commit) ActivityPattern {
	var (
		pattern ActivityPattern
		hours   [24]int
		days    [7]int
	)
	for _, c := range commits {
		if c == nil || c.CommittedDate.IsZero() {
			continue
		}
		t := c.CommittedDate.UTC()
		pattern.Total++
		hours[t.Hour()]++
		days[t.Weekday()]++
		if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
			pattern.WeekendCommits++
		}
		if t.Hour() >= 22 || t.Hour() <= 5 {
			pattern.NightCommits++
		}
	}

	for h, n := range hours {
		if n > hours[pattern.MostActiveHour] {
			pattern.MostActiveHour = h
		}
	}
	for d, n := range days {
		if n > days[pattern.MostActiveDay] {
			pattern.MostActiveDay = time.Weekday(d)
		}
	}
	return pattern
}
