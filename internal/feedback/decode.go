package feedback

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/writing-optimizer/internal/types"
)

// Response grammar, one field per line:
//
//	CLARITY_SCORE: 82          (also "Clarity Score", "Clarity", "Score"; "82/100" accepted)
//	TONE: Formal
//	SUGGESTION_1: ...          (repeatable), or
//	SUGGESTIONS: 1) ... 2) ... (inline, or numbered/bulleted lines below)
//
// Labels are case-insensitive and may be separated from the value by ':' or a spaced '-'.
var (
	labelPattern = regexp.MustCompile(
		`(?i)^\s*(?:[#>*_]+\s*)?(clarity[ _]?score|clarity|score|tone|suggestions|suggestion[ _]?\d+)\s*[*_]*\s*(?::|-\s)\s*(.*)$`)
	scorePattern   = regexp.MustCompile(`(?i)^["']?(\d{1,3})["']?\s*(?:/\s*100|out of 100)?\s*\.?$`)
	lineMarker     = regexp.MustCompile(`(?m)^[ \t]*(?:[-*•+]|\d{1,2}[.)])[ \t]+`)
	lineBullet     = regexp.MustCompile(`(?m)^[ \t]*[-*•+][ \t]+`)
	inlineNumber   = regexp.MustCompile(`(?:^|\s)(\d{1,2})[.)][ \t]+`)
	emphasisMarker = regexp.MustCompile(`\*\*|__`)
)

type field int

const (
	fieldNone field = iota
	fieldClarity
	fieldTone
	fieldSuggestions
	fieldSuggestion
)

func classify(label string) field {
	label = strings.ToLower(label)
	switch {
	case strings.HasPrefix(label, "clarity"), label == "score":
		return fieldClarity
	case label == "tone":
		return fieldTone
	case label == "suggestions":
		return fieldSuggestions
	case strings.HasPrefix(label, "suggestion"):
		return fieldSuggestion
	}
	return fieldNone
}

// Decode maps a raw model response onto an AnalysisResult or fails with a *ParseError.
// It never fills a missing or malformed field with a default.
func Decode(raw string) (*types.AnalysisResult, error) {
	fail := func(format string, args ...any) error {
		return &ParseError{Message: fmt.Sprintf(format, args...), Raw: raw}
	}

	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = emphasisMarker.ReplaceAllString(text, "")

	var (
		scoreValue  string
		haveScore   bool
		tone        string
		haveTone    bool
		suggestions []string
		block       []string
		inBlock     bool
	)
	flush := func() {
		if inBlock {
			suggestions = append(suggestions, splitItems(strings.Join(block, "\n"))...)
			block, inBlock = nil, false
		}
	}

	for _, line := range strings.Split(text, "\n") {
		// Inside a suggestions block a marked list item is content even when it
		// opens with a word like "Clarity:".
		if inBlock && lineMarker.MatchString(line) {
			block = append(block, line)
			continue
		}
		m := labelPattern.FindStringSubmatch(line)
		if m == nil {
			if inBlock {
				block = append(block, line)
			}
			continue
		}
		value := strings.TrimSpace(m[2])
		switch classify(m[1]) {
		case fieldClarity:
			flush()
			if haveScore {
				return nil, fail("clarity score given more than once")
			}
			scoreValue, haveScore = value, true
		case fieldTone:
			flush()
			if haveTone {
				return nil, fail("tone given more than once")
			}
			tone, haveTone = value, true
		case fieldSuggestions:
			flush()
			inBlock = true
			block = append(block, value)
		case fieldSuggestion:
			flush()
			if item := cleanItem(value); item != "" {
				suggestions = append(suggestions, item)
			}
		}
	}
	flush()

	if !haveScore {
		return nil, fail("missing clarity score")
	}
	score, err := parseScore(scoreValue)
	if err != nil {
		return nil, &ParseError{Message: "invalid clarity score", Raw: raw, Cause: err}
	}

	tone = strings.Trim(strings.TrimSpace(tone), `"'.`)
	if !haveTone || tone == "" {
		return nil, fail("missing tone")
	}

	if len(suggestions) == 0 {
		return nil, fail("missing suggestions")
	}
	if len(suggestions) > types.MaxSuggestions {
		return nil, fail("%d suggestions given, at most %d allowed", len(suggestions), types.MaxSuggestions)
	}

	result := &types.AnalysisResult{
		ClarityScore: score,
		Tone:         tone,
		Suggestions:  suggestions,
		Raw:          raw,
	}
	if err := result.Validate(); err != nil {
		return nil, &ParseError{Message: "decoded result is invalid", Raw: raw, Cause: err}
	}
	return result, nil
}

func parseScore(value string) (int, error) {
	m := scorePattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return 0, fmt.Errorf("%q is not an integer score", value)
	}
	score, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, err
	}
	if score < types.MinClarityScore || score > types.MaxClarityScore {
		return 0, fmt.Errorf("%d is outside [%d, %d]", score, types.MinClarityScore, types.MaxClarityScore)
	}
	return score, nil
}

// splitItems breaks a suggestions block into items. In a bulleted list ("-", "*")
// every bullet or number at the start of a line opens an item. Otherwise numbers
// ("1.", "2)") open items only when they count up from 1, so "under 20." inside
// a sentence stays put; line-start numbers are the fallback when they do not.
// With no markers at all each line is one item.
func splitItems(block string) []string {
	var items []string
	add := func(s string) {
		if item := cleanItem(s); item != "" {
			items = append(items, item)
		}
	}

	var locs [][]int
	if lineBullet.MatchString(block) {
		locs = lineMarker.FindAllStringIndex(block, -1)
	} else if locs = inlineSequence(block); len(locs) == 0 {
		locs = lineMarker.FindAllStringIndex(block, -1)
	}
	if len(locs) == 0 {
		for _, line := range strings.Split(block, "\n") {
			add(line)
		}
		return items
	}

	add(block[:locs[0][0]])
	for i, loc := range locs {
		end := len(block)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		add(block[loc[1]:end])
	}
	return items
}

// inlineSequence returns the inline number markers that read 1, 2, 3, ... in order.
func inlineSequence(block string) [][]int {
	var locs [][]int
	next := 1
	for _, m := range inlineNumber.FindAllStringSubmatchIndex(block, -1) {
		n, err := strconv.Atoi(block[m[2]:m[3]])
		if err != nil || n != next {
			continue
		}
		locs = append(locs, []int{m[0], m[1]})
		next++
	}
	return locs
}

func cleanItem(s string) string {
	return strings.Trim(strings.Join(strings.Fields(s), " "), `"'`)
}
