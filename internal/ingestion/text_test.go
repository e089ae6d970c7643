package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"only whitespace", "   \n  \n  ", ""},
		{"collapses inline spaces", "Line    with \t multiple    spaces", "Line with multiple spaces"},
		{"normalizes line endings", "Line 1\r\nLine 2\rLine 3\nLine 4", "Line 1\nLine 2\nLine 3\nLine 4"},
		{"keeps one blank line between paragraphs", "Para 1\n\n\n\n\nPara 2", "Para 1\n\nPara 2"},
		{"trims lines", "  indented\ntrailing   ", "indented\ntrailing"},
		{"drops zero-width characters", "\ufeffzero\u200bwidth", "zerowidth"},
		{"non-breaking space", "a\u00a0\u00a0b", "a b"},
		{"keeps unicode", "Test with émojis 🚀 and spéciàl chàracters", "Test with émojis 🚀 and spéciàl chàracters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestCleanText_Deterministic(t *testing.T) {
	input := "Test content   with   spaces\n\n\nMultiple   blank   lines"
	assert.Equal(t, CleanText(input), CleanText(input))
}

func TestStripMarkdown(t *testing.T) {
	input := "# Title\n\nSome **bold** and *italic* and `code`.\n\n" +
		"- First item\n* Second item\n1. Third item\n\n" +
		"> Quoted line\n\n---\n\n" +
		"See [the guide](https://example.com) and ![diagram](img.png).\n" +
		"```go\nfmt.Println()\n```\n"

	got := CleanText(StripMarkdown(input))
	assert.Equal(t, "Title\n\nSome bold and italic and code.\n\n"+
		"First item\nSecond item\nThird item\n\n"+
		"Quoted line\n\n"+
		"See the guide and diagram.\n"+
		"fmt.Println()", got)
}

func TestStripMarkdown_NestedEmphasis(t *testing.T) {
	assert.Equal(t, "very important", StripMarkdown("**_very important_**"))
}
