package types

// ReadabilityMetrics holds locally computed readability statistics.
// It is a pure derived value of the text and is never cached.
type ReadabilityMetrics struct {
	GradeLevel          float64 `json:"grade_level"`
	ReadingEase         float64 `json:"reading_ease"`
	EaseLabel           string  `json:"ease_label"`
	SMOGIndex           float64 `json:"smog_index"`
	ARI                 float64 `json:"ari"`
	AvgSentenceLength   float64 `json:"avg_sentence_length"`
	AvgSyllablesPerWord float64 `json:"avg_syllables_per_word"`

	WordCount         int `json:"word_count"`
	SentenceCount     int `json:"sentence_count"`
	SyllableCount     int `json:"syllable_count"`
	PolysyllableCount int `json:"polysyllable_count"`
}
