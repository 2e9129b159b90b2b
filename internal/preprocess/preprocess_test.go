package preprocess

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanDropsPageNumbers(t *testing.T) {
	raw := "Article 1. Scope\n- 2 -\nThis law applies broadly.\nPage 3 of 10\nArticle 2. Terms"
	res := Clean(raw, Options{})
	require.NotContains(t, res.Cleaned, "- 2 -")
	require.NotContains(t, res.Cleaned, "Page 3 of 10")
	require.Contains(t, res.Cleaned, "Article 1. Scope")
	require.Contains(t, res.Cleaned, "Article 2. Terms")
	require.Contains(t, res.RulesApplied, "drop_page_numbers")
}

func TestCleanDropsRepeatedHeaderLines(t *testing.T) {
	footer := "Official Gazette of the Republic"
	var sb strings.Builder
	for i := 0; i < 4; i++ {
		sb.WriteString("Some statutory text paragraph number ")
		sb.WriteString(strings.Repeat("x", i+1))
		sb.WriteString("\n")
		sb.WriteString(footer)
		sb.WriteString("\n")
	}
	res := Clean(sb.String(), Options{})
	require.NotContains(t, res.Cleaned, footer)
	require.Contains(t, res.RulesApplied, "drop_repeated_lines")
}

func TestCleanDropsGarbledLines(t *testing.T) {
	raw := "Article 1. Definitions\naaa bbb aa ab\nA term means a defined notion."
	res := Clean(raw, Options{})
	require.NotContains(t, res.Cleaned, "aaa bbb")
	require.Contains(t, res.Cleaned, "Article 1. Definitions")
}

func TestCleanKeepsStructureMarkers(t *testing.T) {
	raw := "Статья 12. Порядок\nArticle 12. Procedure\n1. Something."
	res := Clean(raw, Options{})
	require.Contains(t, res.Cleaned, "Статья 12.")
	require.Contains(t, res.Cleaned, "Article 12.")
}

func TestCleanNormalizesWhitespace(t *testing.T) {
	raw := "Title line   with\tspaces  \r\n\r\n\r\n\r\nNext paragraph here\r\n"
	res := Clean(raw, Options{})
	require.Equal(t, "Title line with spaces\n\nNext paragraph here", res.Cleaned)
	require.Contains(t, res.RulesApplied, "normalize_whitespace")
}

func TestCleanStripsHTML(t *testing.T) {
	raw := "<html><head><style>body{}</style></head><body>" +
		"<!-- nav --><p>Article 1.&nbsp;Scope</p><p>Applies &laquo;everywhere&raquo;.</p></body></html>"
	res := Clean(raw, Options{IsHTML: true})
	require.NotContains(t, res.Cleaned, "<")
	require.Contains(t, res.Cleaned, "Article 1. Scope")
	require.Contains(t, res.Cleaned, "«everywhere»")
	require.Contains(t, res.RulesApplied, "strip_html")
}

func TestCleanMarkdown(t *testing.T) {
	raw := "# Commentary on Article 5\n\nThe *provision* establishes liability.\n"
	res := Clean(raw, Options{IsMarkdown: true})
	require.Contains(t, res.Cleaned, "Commentary on Article 5")
	require.Contains(t, res.Cleaned, "The provision establishes liability.")
	require.NotContains(t, res.Cleaned, "#")
	require.NotContains(t, res.Cleaned, "*")
}

func TestCleanDeterministic(t *testing.T) {
	raw := "Article 1. Scope\n- 4 -\nSome text​ with zero width.\n\n\n\nEnd."
	first := Clean(raw, Options{})
	second := Clean(raw, Options{})
	require.Equal(t, first.Cleaned, second.Cleaned)
	require.Equal(t, first.RulesApplied, second.RulesApplied)
	require.Equal(t, first.CharsRemoved, second.CharsRemoved)
	require.Positive(t, first.CharsRemoved)
}

func TestCleanEmptyInput(t *testing.T) {
	res := Clean("", Options{})
	require.Empty(t, res.Cleaned)
	require.Zero(t, res.CharsRemoved)
}
