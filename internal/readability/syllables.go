package readability

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SyllableCounter counts syllables in a single word.
type SyllableCounter func(word string) int

// Named syllable-counting algorithms.
const (
	// AlgorithmVowelGroups counts runs of vowels with English silent-e and consonant+le adjustments.
	AlgorithmVowelGroups = "vowel-groups"
	// AlgorithmLettersPerThree approximates one syllable per three letters; script independent.
	AlgorithmLettersPerThree = "letters-per-3"
)

// SyllableAlgorithm resolves a named syllable counter.
func SyllableAlgorithm(name string) (SyllableCounter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", AlgorithmVowelGroups:
		return CountVowelGroups, nil
	case AlgorithmLettersPerThree:
		return CountLettersPerThree, nil
	default:
		return nil, fmt.Errorf("unknown syllable algorithm %q", name)
	}
}

// CountVowelGroups counts syllables as groups of consecutive vowels (a, e, i, o, u, y),
// dropping a trailing silent 'e' and restoring one for consonant+"le" endings.
// Every word has at least one syllable.
func CountVowelGroups(word string) int {
	word = strings.ToLower(word)
	if word == "" {
		return 0
	}

	groups := 0
	prevVowel := false
	for _, r := range word {
		v := isVowel(r)
		if v && !prevVowel {
			groups++
		}
		prevVowel = v
	}

	if strings.HasSuffix(word, "e") && groups > 1 {
		groups--
		if strings.HasSuffix(word, "le") && len(word) > 2 && !isVowel(rune(word[len(word)-3])) {
			groups++
		}
	}

	if strings.HasSuffix(word, "es") || strings.HasSuffix(word, "ed") {
		if len(word) > 3 && groups > 1 && !strings.ContainsRune("tdsxzc", rune(word[len(word)-3])) {
			groups--
		}
	}

	if groups < 1 {
		groups = 1
	}
	return groups
}

// CountLettersPerThree estimates syllables as ceil(letters/3), at least one
func CountLettersPerThree(word string) int {
	letters := 0
	for _, r := range word {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters == 0 {
		if utf8.RuneCountInString(word) == 0 {
			return 0
		}
		return 1
	}
	return (letters + 2) / 3
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y',
		'á', 'é', 'í', 'ó', 'ú', 'à', 'è', 'ì', 'ò', 'ù', 'â', 'ê', 'î', 'ô', 'û', 'ä', 'ë', 'ï', 'ö', 'ü', 'ÿ':
		return true
	}
	return false
}
