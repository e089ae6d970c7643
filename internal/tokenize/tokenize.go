// Package tokenize splits document text into sentences and words.
// Readability and word frequency share these rules so their counts agree.
package tokenize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Sentences splits text into sentences. A sentence ends at a run of '.', '!' or '?'
// followed by whitespace or end of text, or at a line break. Empty fragments are dropped.
func Sentences(text string) []string {
	text = norm.NFC.String(text)
	runes := []rune(text)

	var sentences []string
	start := 0
	flush := func(end int) {
		s := strings.TrimSpace(string(runes[start:end]))
		if s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' {
			flush(i)
			continue
		}
		if !isTerminator(r) {
			continue
		}
		j := i + 1
		for j < len(runes) && (isTerminator(runes[j]) || isCloser(runes[j])) {
			j++
		}
		if j == len(runes) || unicode.IsSpace(runes[j]) {
			flush(j)
		}
		i = j - 1
	}
	flush(len(runes))
	return sentences
}

// Words returns the word tokens of s in order, punctuation stripped.
// A word is a run of letters, digits and combining marks; apostrophes and
// hyphens are kept when they join two word characters.
func Words(s string) []string {
	s = norm.NFC.String(s)
	spans := WordSpans(s)
	words := make([]string, 0, len(spans))
	for _, sp := range spans {
		words = append(words, s[sp.Start:sp.End])
	}
	return words
}

// Span is the byte range [Start, End) of one word within a string.
type Span struct {
	Start, End int
}

// WordSpans locates the words of s without normalizing it, using the same
// boundaries as Words. Anything between spans is whitespace or punctuation.
func WordSpans(s string) []Span {
	var spans []Span
	start := -1
	for i, r := range s {
		switch {
		case isWordRune(r):
			if start < 0 {
				start = i
			}
		case isJoiner(r) && start >= 0 && wordRuneAt(s, i+utf8.RuneLen(r)):
		default:
			if start >= 0 {
				spans = append(spans, Span{Start: start, End: i})
				start = -1
			}
		}
	}
	if start >= 0 {
		spans = append(spans, Span{Start: start, End: len(s)})
	}
	return spans
}

func wordRuneAt(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return isWordRune(r)
}

// Folder case-folds words for counting and stopword lookup.
type Folder struct {
	caser cases.Caser
}

// NewFolder returns a Folder for the given BCP-47 language tag.
// An empty or "und" tag uses language-independent Unicode case folding.
func NewFolder(lang string) (*Folder, error) {
	if lang == "" || lang == "und" {
		return &Folder{caser: cases.Fold()}, nil
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, err
	}
	return &Folder{caser: cases.Lower(tag)}, nil
}

// Fold returns the normalized form of word
func (f *Folder) Fold(word string) string {
	return strings.ReplaceAll(f.caser.String(norm.NFC.String(word)), "’", "'")
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func isJoiner(r rune) bool {
	return r == '\'' || r == '’' || r == '-'
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '。' || r == '！' || r == '？'
}

func isCloser(r rune) bool {
	return r == '"' || r == '\'' || r == ')' || r == ']' || r == '”' || r == '’'
}
