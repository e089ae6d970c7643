package types

import (
	"github.com/go-playground/validator/v10"
)

// Clarity score bounds shared by the AI feedback decoder and request validation.
const (
	MinClarityScore = 0
	MaxClarityScore = 100
	MaxSuggestions  = 3
)

// AnalysisResult is the structured feedback produced by one language-model call.
// It is immutable once produced.
type AnalysisResult struct {
	ClarityScore int      `json:"clarity_score" validate:"min=0,max=100"`
	Tone         string   `json:"tone" validate:"required"`
	Suggestions  []string `json:"suggestions" validate:"max=3,dive,required"`
	Raw          string   `json:"raw,omitempty" validate:"-"`
}

// Validate checks the result invariants (score range, suggestion count).
func (r *AnalysisResult) Validate() error {
	return validator.New().Struct(r)
}
