package composer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	wordsPerMinute = 200
	maxReadingTime = 999

	excerptLength = 200
	ellipsis      = "..."
)

var maxReadingTimeDec = decimal.NewFromInt(maxReadingTime)

// EstimateReadingTime returns ceil(words/200), at least one minute.
func EstimateReadingTime(content string) int {
	words := len(strings.Fields(content))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	if minutes > maxReadingTime {
		return maxReadingTime
	}
	return minutes
}

// ParseReadingTime accepts a number in (0, 999] and rounds it to whole minutes.
func ParseReadingTime(raw string) (int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("reading time %q is not a number", raw)
	}
	if !d.IsPositive() || d.GreaterThan(maxReadingTimeDec) {
		return 0, fmt.Errorf("reading time %s outside (0, %d]", d, maxReadingTime)
	}
	minutes := d.Round(0).IntPart()
	if minutes < 1 {
		return 0, fmt.Errorf("reading time %s rounds to zero", d)
	}
	return int(minutes), nil
}

// DeriveExcerpt returns the first 200 characters of content plus an ellipsis.
func DeriveExcerpt(content string) string {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) <= excerptLength {
		return content + ellipsis
	}
	return string([]rune(content)[:excerptLength]) + ellipsis
}
