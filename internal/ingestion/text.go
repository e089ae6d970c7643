// Package ingestion loads document text from local files, URLs and readers
// and normalizes it for analysis.
package ingestion

import (
	"regexp"
	"strings"
)

var (
	inlineSpace    = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
	excessBlank    = regexp.MustCompile(`\n{3,}`)
	mdHeading      = regexp.MustCompile(`(?m)^[ \t]{0,3}#{1,6}[ \t]+`)
	mdBullet       = regexp.MustCompile(`(?m)^[ \t]*(?:[-*+]|\d+[.)])[ \t]+`)
	mdQuote        = regexp.MustCompile(`(?m)^[ \t]*>[ \t]?`)
	mdRule         = regexp.MustCompile(`(?m)^[ \t]*(?:-{3,}|\*{3,}|_{3,})[ \t]*$`)
	mdFence        = regexp.MustCompile("(?m)^[ \t]*```.*(?:\n|$)")
	mdImage        = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	mdLink         = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	mdEmphasis     = regexp.MustCompile(`(\*\*|__|\*|_|~~)([^\s*_~](?:[^*_~]*[^\s*_~])?)(\*\*|__|\*|_|~~)`)
	mdInlineCode   = regexp.MustCompile("`([^`]*)`")
	zeroWidthChars = strings.NewReplacer("\u200b", "", "\u200c", "", "\u200d", "", "\ufeff", "")
)

// CleanText normalizes line endings, collapses runs of inline whitespace,
// trims every line, keeps at most one blank line between paragraphs and trims the result.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = zeroWidthChars.Replace(content)

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineSpace.ReplaceAllString(line, " "))
	}

	result := strings.Join(lines, "\n")
	result = excessBlank.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// StripMarkdown removes Markdown syntax so only the prose is analyzed.
// Headings, list markers, quotes, rules and fences are dropped; links and
// images keep their text; emphasis and inline code keep their content.
func StripMarkdown(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = mdFence.ReplaceAllString(content, "")
	content = mdRule.ReplaceAllString(content, "")
	content = mdHeading.ReplaceAllString(content, "")
	content = mdQuote.ReplaceAllString(content, "")
	content = mdBullet.ReplaceAllString(content, "")
	content = mdImage.ReplaceAllString(content, "$1")
	content = mdLink.ReplaceAllString(content, "$1")
	content = mdInlineCode.ReplaceAllString(content, "$1")
	for prev := ""; prev != content; {
		prev = content
		content = mdEmphasis.ReplaceAllString(content, "$2")
	}
	return content
}
