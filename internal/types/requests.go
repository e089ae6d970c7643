package types

import (
	"github.com/go-playground/validator/v10"
)

// AnalyzeRequest is the input of one analysis action.
// Exactly one of DocumentID or Text is normally set; Text wins when both are.
type AnalyzeRequest struct {
	DocumentID    string `json:"document_id,omitempty"`
	Text          string `json:"text,omitempty" validate:"required_without=DocumentID"`
	Style         string `json:"style,omitempty"`
	TargetClarity *int   `json:"target_clarity,omitempty" validate:"omitempty,min=0,max=100"`
	TopN          int    `json:"top_n,omitempty" validate:"min=0,max=100"`
}

// Validate validates the AnalyzeRequest using the validator.
func (r *AnalyzeRequest) Validate() error {
	return FromValidator(validator.New().Struct(r))
}

// SaveRequest carries replacement text for a document.
type SaveRequest struct {
	Text string `json:"text" validate:"required"`
}

// Validate validates the SaveRequest using the validator.
func (r *SaveRequest) Validate() error {
	if err := FromValidator(validator.New().Struct(r)); err != nil {
		return err
	}
	return RequireText("text", r.Text)
}

// HighlightRequest asks for overused-word annotation of a text
type HighlightRequest struct {
	Text string `json:"text" validate:"required"`
	TopN int    `json:"top_n,omitempty" validate:"min=0,max=100"`
}

// Validate validates the HighlightRequest using the validator.
func (r *HighlightRequest) Validate() error {
	return FromValidator(validator.New().Struct(r))
}

// AnalysisReport merges every result of one analysis action for display.
type AnalysisReport struct {
	DocumentID  string               `json:"document_id,omitempty"`
	Style       WritingStyle         `json:"style"`
	Target      int                  `json:"target_clarity"`
	Feedback    *AnalysisResult      `json:"feedback"`
	Readability *ReadabilityMetrics  `json:"readability"`
	Frequency   *WordFrequencyReport `json:"frequency"`
	Sentences   SentenceStats        `json:"sentences"`
	Session     *SessionEntry        `json:"session,omitempty"`
}
