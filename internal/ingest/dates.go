package ingest

import (
	"sort"
	"strings"
	"time"
	"unicode"
)

// Layouts tried, in order, for timestamps found in exports. Slash dates are
// read day first.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006 3:04 PM",
	"02/01/2006 03:04 PM",
	"2/1/2006 3:04 PM",
	"2/1/2006 15:04",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2 January 2006 3:04 PM",
	"2 January 2006",
	"02 Jan 2006 3:04 PM",
	"02 Jan 2006 15:04",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseTimestamp parses an export timestamp, returning false for empty or
// unrecognized values.
func ParseTimestamp(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDate parses raw and truncates it to a UTC calendar date.
func ParseDate(raw string) (time.Time, bool) {
	t, ok := ParseTimestamp(raw)
	if !ok {
		return time.Time{}, false
	}
	return dateOnly(t), true
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// fillWithMode replaces zero dates with the most frequent date. Ties resolve
// to the earliest date. It reports false when no date is set.
func fillWithMode(dates []time.Time) bool {
	counts := make(map[time.Time]int)
	for _, d := range dates {
		if !d.IsZero() {
			counts[d]++
		}
	}
	if len(counts) == 0 {
		return false
	}

	mode := Mode(counts)
	for i := range dates {
		if dates[i].IsZero() {
			dates[i] = mode
		}
	}
	return true
}

// Mode returns the most frequent date in counts, preferring the earliest on ties.
func Mode(counts map[time.Time]int) time.Time {
	keys := make([]time.Time, 0, len(counts))
	for d := range counts {
		keys = append(keys, d)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	var best time.Time
	bestCount := 0
	for _, d := range keys {
		if counts[d] > bestCount {
			best = d
			bestCount = counts[d]
		}
	}
	return best
}

// auditName is the parsed form of an auditName cell such as
// "2024-05-01/101/Harbour View" or "01/05/2024/101/Harbour View".
type auditName struct {
	date     time.Time
	unit     string
	building string
}

func parseAuditName(raw string) auditName {
	var parsed auditName

	segments := strings.Split(raw, "/")
	for i := range segments {
		segments[i] = strings.TrimSpace(segments[i])
	}

	if len(segments) >= 3 && isDayFirstDate(segments[0], segments[1], segments[2]) {
		joined := strings.Join(segments[:3], "/")
		if d, ok := ParseDate(joined); ok {
			parsed.date = d
			segments = append([]string{joined}, segments[3:]...)
		}
	} else if len(segments) > 0 {
		if d, ok := ParseDate(segments[0]); ok {
			parsed.date = d
		}
	}

	if len(segments) >= 3 {
		candidate := segments[1]
		if len([]rune(candidate)) <= 6 && strings.IndexFunc(candidate, unicode.IsDigit) >= 0 {
			parsed.unit = candidate
		}
		parsed.building = segments[2]
	}

	return parsed
}

func isDayFirstDate(day, month, year string) bool {
	return isDigits(day, 1, 2) && isDigits(month, 1, 2) && isDigits(year, 4, 4)
}

func isDigits(s string, minLen, maxLen int) bool {
	if len(s) < minLen || len(s) > maxLen {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
