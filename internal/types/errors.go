package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError indicates empty text or out-of-range user input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// RequireText returns a ValidationError when text is empty or whitespace only.
func RequireText(field, text string) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Field: field, Message: "text is empty"}
	}
	return nil
}

// ValidateClarityTarget checks a user-supplied target clarity score
func ValidateClarityTarget(target int) error {
	if target < MinClarityScore || target > MaxClarityScore {
		return &ValidationError{
			Field:   "target_clarity",
			Message: fmt.Sprintf("must be between %d and %d, got %d", MinClarityScore, MaxClarityScore, target),
		}
	}
	return nil
}

// FromValidator converts validator.ValidationErrors into a *ValidationError
// naming the first failing field by its JSON name. Other errors pass through.
func FromValidator(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return &ValidationError{
		Field:   jsonName(fe.Field()),
		Message: describe(fe),
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return fmt.Sprintf("is required when %s is empty", jsonName(fe.Param()))
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// jsonName turns a Go field name such as TargetClarity into target_clarity.
func jsonName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(field[i-1] >= 'A' && field[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
