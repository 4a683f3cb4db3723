package visuals

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Thousands formats n with comma separators.
func Thousands(n int) string {
	return printer.Sprintf("%d", n)
}

// Signed formats n with separators and an explicit leading sign for non-negative values.
func Signed(n int) string {
	if n >= 0 {
		return "+" + Thousands(n)
	}
	return Thousands(n)
}

// Period renders an observed window as "January 02, 2006 - January 09, 2006".
func Period(start, end time.Time) string {
	const layout = "January 02, 2006"
	return start.UTC().Format(layout) + " - " + end.UTC().Format(layout)
}

// dayLabel converts a YYYY-MM-DD bucket key with the given layout.
func dayLabel(date, layout string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format(layout)
}
