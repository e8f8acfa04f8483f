package composer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	isoDateLayout     = "2006-01-02"
	displayDateLayout = "02.01.2006"

	minYear = 1900
	maxYear = 2100
)

var displayDatePattern = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)

var isoLayouts = []string{
	isoDateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// NormalizeDate accepts DD.MM.YYYY or an ISO date/timestamp and returns the
// calendar date as YYYY-MM-DD. Dates that do not exist are rejected.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty date")
	}

	if displayDatePattern.MatchString(s) {
		day, _ := strconv.Atoi(s[0:2])
		month, _ := strconv.Atoi(s[3:5])
		year, _ := strconv.Atoi(s[6:10])

		if day < 1 || day > 31 {
			return "", fmt.Errorf("day %d out of range", day)
		}
		if month < 1 || month > 12 {
			return "", fmt.Errorf("month %d out of range", month)
		}
		if year < minYear || year > maxYear {
			return "", fmt.Errorf("year %d out of range", year)
		}

		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		// time.Date normalizes 31.02 into March; a moved month means the day does not exist.
		if int(t.Month()) != month || t.Day() != day {
			return "", fmt.Errorf("%s is not a calendar date", s)
		}
		return t.Format(isoDateLayout), nil
	}

	for _, layout := range isoLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Year() < minYear || t.Year() > maxYear {
			return "", fmt.Errorf("year %d out of range", t.Year())
		}
		return t.Format(isoDateLayout), nil
	}
	return "", fmt.Errorf("unrecognized date %q", s)
}

// FormatDisplayDate renders a YYYY-MM-DD date as DD.MM.YYYY.
func FormatDisplayDate(iso string) (string, error) {
	t, err := time.Parse(isoDateLayout, iso)
	if err != nil {
		return "", fmt.Errorf("parse date: %w", err)
	}
	return t.Format(displayDateLayout), nil
}
