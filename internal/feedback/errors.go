package feedback

import "fmt"

// ProviderError is a failed or timed-out call to the language-model service.
type ProviderError struct {
	Message string
	Timeout bool
	Cause   error
}

func (e *ProviderError) Error() string {
	prefix := "provider error"
	if e.Timeout {
		prefix = "provider timeout"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// ParseError is a model response that cannot be mapped to an AnalysisResult.
// Raw holds the response exactly as received.
type ParseError struct {
	Message string
	Raw     string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
