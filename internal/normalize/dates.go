package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

// Month names in the genitive form used inside dates ("12 января 2020").
var monthNames = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4, "may": 5,
	"june": 6, "july": 7, "august": 8, "september": 9, "october": 10,
	"november": 11, "december": 12,
	"января": 1, "февраля": 2, "марта": 3, "апреля": 4, "мая": 5,
	"июня": 6, "июля": 7, "августа": 8, "сентября": 9, "октября": 10,
	"ноября": 11, "декабря": 12,
}

var (
	monthNameDateRe = regexp.MustCompile(`(?i)(\d{1,2})\s+([a-zа-я]+)\s+(\d{4})`)
	isoDateRe       = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
	dottedDateRe    = regexp.MustCompile(`(\d{2})\.(\d{2})\.(\d{4})`)
)

// extractDate finds the first plausible date in text, trying the formats
// in fixed priority: spelled-out month, ISO, DD.MM.YYYY. Returns an ISO
// date string or "".
func extractDate(text string) string {
	if m := monthNameDateRe.FindStringSubmatch(text); m != nil {
		if month, ok := monthNames[strings.ToLower(m[2])]; ok {
			day := atoi(m[1])
			year := atoi(m[3])
			if validDate(year, month, day) {
				return isoDate(year, month, day)
			}
		}
	}
	if m := isoDateRe.FindStringSubmatch(text); m != nil {
		year, month, day := atoi(m[1]), atoi(m[2]), atoi(m[3])
		if validDate(year, month, day) {
			return isoDate(year, month, day)
		}
	}
	if m := dottedDateRe.FindStringSubmatch(text); m != nil {
		day, month, year := atoi(m[1]), atoi(m[2]), atoi(m[3])
		if validDate(year, month, day) {
			return isoDate(year, month, day)
		}
	}
	return ""
}

func validDate(year, month, day int) bool {
	return year >= 1800 && year <= 2200 && month >= 1 && month <= 12 && day >= 1 && day <= 31
}

func isoDate(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
