// Package wordfreq ranks repeated words, tags overused words for highlighting,
// and measures sentence lengths. It supplies data only; rendering is left to callers.
package wordfreq

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/jonathan/writing-optimizer/internal/tokenize"
	"github.com/jonathan/writing-optimizer/internal/types"
)

// DefaultTopN is the number of overused words reported when none is requested.
const DefaultTopN = 10

// Palette holds the highlight colours, one per rank bucket.
var Palette = []string{
	"#f59e0b", "#34d399", "#60a5fa", "#f472b6",
	"#a78bfa", "#fb923c", "#38bdf8", "#4ade80",
}

// Options configures one annotation pass.
type Options struct {
	TopN      int
	Stopwords StopwordSet
	// MinLength drops words shorter than this many runes from the frequency table.
	MinLength int
	// Language is a BCP-47 tag controlling case folding; empty means language independent.
	Language string
}

// DefaultOptions returns English defaults with the standard top-N.
func DefaultOptions() Options {
	sw, _ := Stopwords(StopwordsEnglish)
	return Options{TopN: DefaultTopN, Stopwords: sw, MinLength: 1}
}

// Annotate tokenizes text in a single pass and returns the ranked frequency table,
// the top-N overused words, and the per-sentence word counts.
func Annotate(text string, opts Options) (*types.WordFrequencyReport, error) {
	if err := types.RequireText("text", text); err != nil {
		return nil, err
	}
	if opts.TopN < 0 {
		return nil, &types.ValidationError{Field: "top_n", Message: fmt.Sprintf("must be non-negative, got %d", opts.TopN)}
	}
	if opts.TopN == 0 {
		opts.TopN = DefaultTopN
	}
	folder, err := tokenize.NewFolder(opts.Language)
	if err != nil {
		return nil, &types.ValidationError{Field: "language", Message: err.Error()}
	}

	report := &types.WordFrequencyReport{
		Table:           types.WordFrequencyTable{},
		SentenceLengths: types.SentenceLengths{},
	}
	firstSeen := map[string]int{}

	for _, sentence := range tokenize.Sentences(text) {
		words := tokenize.Words(sentence)
		if len(words) == 0 {
			continue
		}
		report.SentenceLengths = append(report.SentenceLengths, len(words))

		for _, w := range words {
			folded := folder.Fold(w)
			if opts.Stopwords.Contains(folded) || utf8.RuneCountInString(folded) < opts.MinLength {
				continue
			}
			report.TotalTokens++
			if _, ok := firstSeen[folded]; !ok {
				firstSeen[folded] = len(firstSeen)
			}
			report.Table[folded]++
		}
	}

	report.Ranked = Rank(report.Table, firstSeen)
	report.Overused = overused(report.Ranked, opts.TopN)
	return report, nil
}

// Rank orders a frequency table by count descending. Ties keep first-occurrence
// order when order is given, otherwise they fall back to alphabetical order.
func Rank(table types.WordFrequencyTable, order map[string]int) []types.WordCount {
	ranked := make([]types.WordCount, 0, len(table))
	for w, c := range table {
		ranked = append(ranked, types.WordCount{Word: w, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		oi, iok := order[ranked[i].Word]
		oj, jok := order[ranked[j].Word]
		if iok && jok {
			return oi < oj
		}
		return ranked[i].Word < ranked[j].Word
	})
	return ranked
}

// ColorForRank returns the palette colour of a 1-based rank
func ColorForRank(rank int) string {
	if rank < 1 {
		return ""
	}
	return Palette[(rank-1)%len(Palette)]
}

// SentenceSummary reports min, max, mean and a verdict for a sentence length
// distribution: under 10 words on average reads choppy, over 25 reads dense.
func SentenceSummary(lengths types.SentenceLengths) types.SentenceStats {
	if len(lengths) == 0 {
		return types.SentenceStats{Verdict: "no sentences"}
	}
	stats := types.SentenceStats{Count: len(lengths), Min: lengths[0], Max: lengths[0]}
	total := 0
	for _, n := range lengths {
		total += n
		stats.Min = min(stats.Min, n)
		stats.Max = max(stats.Max, n)
	}
	stats.Mean = float64(total) / float64(len(lengths))

	switch {
	case stats.Mean < 10:
		stats.Verdict = "choppy"
	case stats.Mean > 25:
		stats.Verdict = "dense"
	default:
		stats.Verdict = "balanced"
	}
	return stats
}

func overused(ranked []types.WordCount, topN int) []types.OverusedWord {
	n := min(topN, len(ranked))
	out := make([]types.OverusedWord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, types.OverusedWord{
			Word:  ranked[i].Word,
			Count: ranked[i].Count,
			Rank:  i + 1,
			Color: ColorForRank(i + 1),
		})
	}
	return out
}
