package normalizer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var (
	isoPrefixPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	dmyPattern       = regexp.MustCompile(`^\d{1,2}[/-]\d{1,2}[/-]\d{4}$`)
)

// maxBareDay is the clamp applied to bare day-of-month cells so the derived
// date is valid in any month without a per-month length lookup.
const maxBareDay = 28

// ResolveDate turns a raw cell into a calendar date. monthIndex is 0-based
// (0 = January) and, together with year, supplies the context for bare
// day-of-month cells. Resolution order, first match wins:
//
//  1. ISO prefix YYYY-MM-DD (first 10 characters)
//  2. DD/MM/YYYY or DD-MM-YYYY
//  3. bare integer in [1,31], clamped to 28 and combined with the context
//  4. Excel serial date number
//
// The second return is false when no rung matches or the matched text is not
// a real calendar day (e.g. "31/02/2025"); the caller discards the row.
// ResolveDate never fails louder than that.
func ResolveDate(raw string, year, monthIndex int) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if isoPrefixPattern.MatchString(s) || dmyPattern.MatchString(s) {
		return ResolveExplicitDate(s)
	}

	if day, err := strconv.Atoi(s); err == nil {
		if day >= 1 && day <= 31 {
			if day > maxBareDay {
				day = maxBareDay
			}
			return time.Date(year, time.Month(monthIndex+1), day, 0, 0, 0, 0, time.UTC), true
		}
	}

	// Excel stores native dates as day serials; anything below 60 would
	// collide with the bare-day rung above.
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= 60 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// ResolveExplicitDate accepts only fully spelled dates: an ISO YYYY-MM-DD
// prefix, DD/MM/YYYY or DD-MM-YYYY. Flat tables use it directly since they
// carry no month/year context for bare-day or serial cells.
func ResolveExplicitDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if isoPrefixPattern.MatchString(s) {
		t, err := time.Parse("2006-01-02", s[:10])
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	if dmyPattern.MatchString(s) {
		sep := "/"
		if strings.Contains(s, "-") {
			sep = "-"
		}
		for _, layout := range []string{"02" + sep + "01" + sep + "2006", "2" + sep + "1" + sep + "2006"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}

	return time.Time{}, false
}

// ResolveDueDay parses a fixed-expense due day, clamped to [1,28].
// Unparseable input defaults to 1.
func ResolveDueDay(raw string) int {
	s := strings.TrimSpace(raw)
	day, err := strconv.Atoi(s)
	if err != nil {
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			day = int(f)
		} else {
			return 1
		}
	}
	if day < 1 {
		return 1
	}
	if day > maxBareDay {
		return maxBareDay
	}
	return day
}
