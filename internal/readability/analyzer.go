// Package readability computes readability statistics using published formulas
// (Flesch-Kincaid Grade Level, Flesch Reading Ease, SMOG, Automated Readability Index).
package readability

import (
	"math"

	"github.com/jonathan/writing-optimizer/internal/tokenize"
	"github.com/jonathan/writing-optimizer/internal/types"
)

// Options configures tokenizer-independent choices of the analyzer.
type Options struct {
	// Syllables counts syllables per word. Nil means CountVowelGroups.
	Syllables SyllableCounter
}

// DefaultOptions returns the English defaults
func DefaultOptions() Options {
	return Options{Syllables: CountVowelGroups}
}

// Analyze computes ReadabilityMetrics for text. Empty or whitespace-only text is a
// ValidationError. Texts shorter than three sentences still produce a SMOG value.
func Analyze(text string, opts Options) (*types.ReadabilityMetrics, error) {
	if err := types.RequireText("text", text); err != nil {
		return nil, err
	}
	count := opts.Syllables
	if count == nil {
		count = CountVowelGroups
	}

	m := &types.ReadabilityMetrics{}
	for _, sentence := range tokenize.Sentences(text) {
		words := tokenize.Words(sentence)
		if len(words) == 0 {
			continue
		}
		m.SentenceCount++
		for _, w := range words {
			s := count(w)
			m.WordCount++
			m.SyllableCount += s
			if s >= 3 {
				m.PolysyllableCount++
			}
		}
	}
	if m.WordCount == 0 {
		return nil, &types.ValidationError{Field: "text", Message: "text contains no words"}
	}

	letters := countLetters(text)
	wps := float64(m.WordCount) / float64(m.SentenceCount)
	spw := float64(m.SyllableCount) / float64(m.WordCount)

	m.AvgSentenceLength = round2(wps)
	m.AvgSyllablesPerWord = round2(spw)
	m.GradeLevel = round2(math.Max(0, FleschKincaidGrade(wps, spw)))
	m.ReadingEase = round2(FleschReadingEase(wps, spw))
	m.SMOGIndex = round2(SMOG(m.PolysyllableCount, m.SentenceCount))
	m.ARI = round2(math.Max(0, AutomatedReadabilityIndex(letters, m.WordCount, m.SentenceCount)))
	m.EaseLabel = EaseLabel(m.ReadingEase)

	return m, nil
}

// FleschKincaidGrade returns 0.39*(words/sentence) + 11.8*(syllables/word) - 15.59
func FleschKincaidGrade(wordsPerSentence, syllablesPerWord float64) float64 {
	return 0.39*wordsPerSentence + 11.8*syllablesPerWord - 15.59
}

// FleschReadingEase returns 206.835 - 1.015*(words/sentence) - 84.6*(syllables/word)
func FleschReadingEase(wordsPerSentence, syllablesPerWord float64) float64 {
	return 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
}

// SMOG returns 1.0430*sqrt(polysyllables*30/sentences) + 3.1291.
// The 30-sentence normalization is applied to any sample size.
func SMOG(polysyllables, sentences int) float64 {
	if sentences <= 0 {
		return 0
	}
	return 1.0430*math.Sqrt(float64(polysyllables)*30/float64(sentences)) + 3.1291
}

// AutomatedReadabilityIndex returns 4.71*(characters/words) + 0.5*(words/sentences) - 21.43
func AutomatedReadabilityIndex(characters, words, sentences int) float64 {
	if words == 0 || sentences == 0 {
		return 0
	}
	return 4.71*float64(characters)/float64(words) + 0.5*float64(words)/float64(sentences) - 21.43
}

// EaseLabel converts a Flesch Reading Ease score into a human label.
func EaseLabel(score float64) string {
	switch {
	case score >= 90:
		return "Very Easy"
	case score >= 70:
		return "Easy"
	case score >= 60:
		return "Standard"
	case score >= 50:
		return "Fairly Difficult"
	case score >= 30:
		return "Difficult"
	default:
		return "Very Confusing"
	}
}

func countLetters(text string) int {
	n := 0
	for _, w := range tokenize.Words(text) {
		for _, r := range w {
			if r != '\'' && r != '’' && r != '-' {
				n++
			}
		}
	}
	return n
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
