package wordfreq

import (
	"github.com/jonathan/writing-optimizer/internal/tokenize"
	"github.com/jonathan/writing-optimizer/internal/types"
)

// Highlight splits text into word tokens and the whitespace or punctuation between
// them, and tags every word token that matches an overused word with that word's
// rank and colour. Word boundaries are the ones Annotate counts with, so each
// counted occurrence is tagged. Concatenating the token texts reproduces the input.
func Highlight(text string, words []types.OverusedWord, lang string) ([]types.AnnotatedToken, error) {
	folder, err := tokenize.NewFolder(lang)
	if err != nil {
		return nil, &types.ValidationError{Field: "language", Message: err.Error()}
	}
	byWord := make(map[string]types.OverusedWord, len(words))
	for _, w := range words {
		byWord[w.Word] = w
	}

	var tokens []types.AnnotatedToken
	pos := 0
	for _, sp := range tokenize.WordSpans(text) {
		if sp.Start > pos {
			tokens = append(tokens, types.AnnotatedToken{Text: text[pos:sp.Start]})
		}
		tok := types.AnnotatedToken{Text: text[sp.Start:sp.End]}
		if w, ok := byWord[folder.Fold(tok.Text)]; ok {
			tok.Word = w.Word
			tok.Rank = w.Rank
			tok.Color = w.Color
		}
		tokens = append(tokens, tok)
		pos = sp.End
	}
	if pos < len(text) {
		tokens = append(tokens, types.AnnotatedToken{Text: text[pos:]})
	}
	return tokens, nil
}
