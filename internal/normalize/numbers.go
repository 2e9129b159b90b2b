package normalize

import (
	"regexp"
	"strings"
)

var (
	caseNumberRe = regexp.MustCompile(`(?i)(?:case\s+no\.?|дело\s*№|№\s*дела)\s*([A-Za-zА-Яа-я0-9][\w/.-]*(?:/\d+)?)`)
	appNumberRe  = regexp.MustCompile(`(?i)application\s+no\.?\s*(\d+/\d+)`)
	actNumberRe  = regexp.MustCompile(`(?i)(?:no\.?|№)\s*([A-ZА-Я]{0,4}-?\d+(?:-[A-ZА-Я\d]+)*)`)
)

// extractCaseNumber returns the first case number in the header window,
// preferring the ECHR application-number shape.
func extractCaseNumber(text string) string {
	window := text
	if len(window) > headerWindow {
		window = window[:headerWindow]
	}
	if m := appNumberRe.FindStringSubmatch(window); m != nil {
		return m[1]
	}
	if m := caseNumberRe.FindStringSubmatch(window); m != nil {
		return strings.TrimRight(m[1], ".,;")
	}
	return ""
}

func extractActNumber(text string) string {
	window := text
	if len(window) > headerWindow {
		window = window[:headerWindow]
	}
	if m := actNumberRe.FindStringSubmatch(window); m != nil {
		return strings.TrimRight(m[1], ".,;")
	}
	return ""
}
