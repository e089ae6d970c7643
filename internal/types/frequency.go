package types

// WordFrequencyTable maps a normalized word to its occurrence count.
type WordFrequencyTable map[string]int

// Total returns the sum of all counts in the table
func (t WordFrequencyTable) Total() int {
	total := 0
	for _, c := range t {
		total += c
	}
	return total
}

// SentenceLengths holds word counts per sentence in document order.
type SentenceLengths []int

// WordCount is one ranked entry of a frequency table
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// OverusedWord is a top-N word with its rank (1-based) and highlight colour.
type OverusedWord struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
	Rank  int    `json:"rank"`
	Color string `json:"color"`
}

// WordFrequencyReport bundles the three outputs of one annotation pass.
type WordFrequencyReport struct {
	Table           WordFrequencyTable `json:"table"`
	Ranked          []WordCount        `json:"ranked"`
	Overused        []OverusedWord     `json:"overused"`
	SentenceLengths SentenceLengths    `json:"sentence_lengths"`
	TotalTokens     int                `json:"total_tokens"`
}

// SentenceStats summarizes a sentence length distribution.
type SentenceStats struct {
	Count   int     `json:"count"`
	Min     int     `json:"min"`
	Max     int     `json:"max"`
	Mean    float64 `json:"mean"`
	Verdict string  `json:"verdict"`
}

// AnnotatedToken is a fragment of the original text: one word, or the whitespace and
// punctuation between words. Highlighted word fragments carry the rank and colour of
// the overused word they match.
type AnnotatedToken struct {
	Text  string `json:"text"`
	Word  string `json:"word,omitempty"`
	Rank  int    `json:"rank,omitempty"`
	Color string `json:"color,omitempty"`
}

// Highlighted reports whether the token matched an overused word
func (t AnnotatedToken) Highlighted() bool {
	return t.Rank > 0
}
