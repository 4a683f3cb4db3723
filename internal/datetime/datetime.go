// Package datetime parses the assortment of timestamp formats that reach the
// server (GitHub API values, user-supplied filter bounds, CLI flags) into
// comparable instants.
package datetime

import (
	"regexp"
	"strings"
	"time"
)

var (
	offsetPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}[+-]\d{2}:\d{2}$`)
	naivePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}$`)
	datePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// isoLayouts accept an optional fractional second after the seconds field.
var isoLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02T15Z07:00",
	"2006-01-02 15Z07:00",
}

// fallbackLayouts are tried in order; month-first wins over day-first.
var fallbackLayouts = []string{
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006",
	"2/1/2006",
}

var lastResortLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15",
}

// Parse converts s into a timestamp, or returns nil when no supported format matches.
// Values without an explicit offset are read as UTC. The first matching format wins.
func Parse(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	// 1. GitHub style "Z" suffix. A miss here is final.
	if strings.HasSuffix(s, "Z") {
		return parseFirst(strings.TrimSuffix(s, "Z")+"+00:00", isoLayouts)
	}

	// 2. Explicit numeric offset
	if offsetPattern.MatchString(s) {
		return parseFirst(s, []string{"2006-01-02T15:04:05Z07:00"})
	}

	// 3. No offset
	if naivePattern.MatchString(s) {
		return parseFirst(s, []string{"2006-01-02T15:04:05"})
	}

	// 4. Date only, start of day
	if datePattern.MatchString(s) {
		return parseFirst(s, []string{"2006-01-02"})
	}

	// 5. Common fallbacks
	if t := parseFirst(s, fallbackLayouts); t != nil {
		return t
	}

	// 6. Generic ISO-8601
	return parseFirst(s, lastResortLayouts)
}

func parseFirst(s string, layouts []string) *time.Time {
	for _, layout := range layouts {
		// ParseInLocation with UTC keeps offset-bearing values in a fixed zone
		// instead of being folded into time.Local.
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t
		}
	}
	return nil
}

// EnsureAware returns t with a zone attached. A Go time always carries a
// location (the zero Location is UTC), so non-nil values pass through unchanged.
func EnsureAware(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	out := *t
	return &out
}

// NormalizeForComparison returns t converted to UTC. Use it whenever two
// timestamps from different sources are compared.
func NormalizeForComparison(t *time.Time) *time.Time {
	aware := EnsureAware(t)
	if aware == nil {
		return nil
	}
	utc := aware.UTC()
	return &utc
}

// ParseDate parses a strict YYYY-MM-DD value as midnight UTC.
func ParseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return nil
	}
	return &t
}

// FormatDisplay renders t for humans, or "N/A" when t is nil.
func FormatDisplay(t *time.Time) string {
	n := NormalizeForComparison(t)
	if n == nil {
		return "N/A"
	}
	return n.Format("2006-01-02 15:04:05 UTC")
}

// Before reports whether a is strictly before b after normalization.
// It is false when either side is nil.
func Before(a, b *time.Time) bool {
	na, nb := NormalizeForComparison(a), NormalizeForComparison(b)
	return na != nil && nb != nil && na.Before(*nb)
}

// After reports whether a is strictly after b after normalization.
// It is false when either side is nil.
func After(a, b *time.Time) bool {
	na, nb := NormalizeForComparison(a), NormalizeForComparison(b)
	return na != nil && nb != nil && na.After(*nb)
}
