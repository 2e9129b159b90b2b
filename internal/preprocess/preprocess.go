package preprocess

import (
	"regexp"
	"strings"
)

// Options controls the source-format specific rules.
type Options struct {
	IsHTML     bool
	IsMarkdown bool
}

// Result reports what the cleaner did. Cleaned is the canonical text all
// downstream offsets refer to.
type Result struct {
	Cleaned      string
	RulesApplied []string
	CharsRemoved int
}

const (
	repeatedLineMin    = 3
	repeatedLineMaxLen = 120
	garbledMaxLen      = 40
	garbledDiversity   = 0.30
)

var (
	invisibleRe  = regexp.MustCompile(`[\x{00AD}\x{200B}-\x{200F}\x{2060}\x{FEFF}]`)
	pageNumRe    = regexp.MustCompile(`^\s*(?:-\s*)?\d{1,4}(?:\s*-)?\s*$|^\s*(?:Page|Стр\.?|страница)\s*\d+(?:\s*(?:of|из)\s*\d+)?\s*$`)
	bareURLRe    = regexp.MustCompile(`^\s*(?:https?://\S+|www\.\S+)\s*$`)
	navLineRe    = regexp.MustCompile(`(?i)^\s*(?:home|print|share|download|назад|печать|скачать)\s*[|>»]*\s*$`)
	horizSpaceRe = regexp.MustCompile(`[ \t\x{00a0}]+`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
	latinOnlyRe  = regexp.MustCompile(`^[\x20-\x7e]+$`)

	htmlCommentRe = regexp.MustCompile(`(?s)<!--.*?-->`)
	htmlScriptRe  = regexp.MustCompile(`(?is)<(script|style)\b.*?</(script|style)>`)
	htmlBreakRe   = regexp.MustCompile(`(?i)<(?:br\s*/?|/p|/div|/tr|/li|/h[1-6])>`)
	htmlTagRe     = regexp.MustCompile(`(?s)<[^>]*>`)
)

// Fixed entity table; anything outside it passes through untouched so the
// cleaner stays deterministic across library versions.
var htmlEntities = map[string]string{
	"&nbsp;":  " ",
	"&amp;":   "&",
	"&lt;":    "<",
	"&gt;":    ">",
	"&quot;":  `"`,
	"&#39;":   "'",
	"&apos;":  "'",
	"&laquo;": "«",
	"&raquo;": "»",
	"&mdash;": "—",
	"&ndash;": "–",
	"&sect;":  "§",
	"&para;":  "¶",
}

// Clean applies the fixed rule pipeline to raw text. It is pure and
// deterministic; identical input always yields identical output.
func Clean(raw string, opts Options) Result {
	res := Result{}
	text := raw

	apply := func(rule string, next string) {
		if next != text {
			res.RulesApplied = append(res.RulesApplied, rule)
			text = next
		}
	}

	apply("strip_invisible", invisibleRe.ReplaceAllString(text, ""))
	if opts.IsHTML {
		apply("strip_html", stripHTML(text))
	}
	if opts.IsMarkdown {
		apply("markdown_to_text", markdownToText(text))
	}
	apply("drop_page_numbers", dropLines(text, func(line string) bool {
		return pageNumRe.MatchString(line)
	}))
	apply("drop_repeated_lines", dropRepeatedLines(text))
	apply("drop_url_lines", dropLines(text, func(line string) bool {
		return bareURLRe.MatchString(line) || navLineRe.MatchString(line)
	}))
	apply("drop_garbled_lines", dropLines(text, isGarbledLine))
	apply("normalize_whitespace", normalizeWhitespace(text))

	res.Cleaned = text
	res.CharsRemoved = len(raw) - len(text)
	if res.CharsRemoved < 0 {
		res.CharsRemoved = 0
	}
	return res
}

func stripHTML(text string) string {
	text = htmlCommentRe.ReplaceAllString(text, "")
	text = htmlScriptRe.ReplaceAllString(text, "")
	text = htmlBreakRe.ReplaceAllString(text, "\n")
	text = htmlTagRe.ReplaceAllString(text, "")
	for entity, repl := range htmlEntities {
		text = strings.ReplaceAll(text, entity, repl)
	}
	return text
}

func dropLines(text string, drop func(string) bool) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" && drop(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// dropRepeatedLines removes short lines occurring repeatedMin+ times, the
// usual shape of scanned headers and footers. Long lines are never dropped
// so repeated statutory phrases survive.
func dropRepeatedLines(text string) string {
	lines := strings.Split(text, "\n")
	counts := make(map[string]int, len(lines))
	for _, line := range lines {
		key := strings.TrimSpace(line)
		if key == "" || len(key) >= repeatedLineMaxLen {
			continue
		}
		counts[key]++
	}
	kept := lines[:0]
	for _, line := range lines {
		key := strings.TrimSpace(line)
		if key != "" && len(key) < repeatedLineMaxLen && counts[key] >= repeatedLineMin {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// isGarbledLine flags short all-Latin fragments with low character
// diversity, the typical residue of bad OCR. Structure markers such as
// article headers never match: they carry digits and enough distinct
// letters to clear the diversity bar.
func isGarbledLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || len(trimmed) > garbledMaxLen {
		return false
	}
	if !latinOnlyRe.MatchString(trimmed) {
		return false
	}
	letters := 0
	distinct := make(map[rune]bool)
	for _, r := range trimmed {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			letters++
			distinct[toLower(r)] = true
		}
	}
	if letters < 4 {
		return false
	}
	ratio := float64(len(distinct)) / float64(letters)
	return ratio < garbledDiversity
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

func normalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(horizSpaceRe.ReplaceAllString(line, " "), " ")
	}
	text = strings.Join(lines, "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
