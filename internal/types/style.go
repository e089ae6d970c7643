package types

import (
	"fmt"
	"strings"
)

// WritingStyle selects prompt wording for AI feedback. It carries no other state.
type WritingStyle string

// The fixed set of writing style profiles.
const (
	StyleGeneral   WritingStyle = "General"
	StyleAcademic  WritingStyle = "Academic"
	StyleBusiness  WritingStyle = "Business"
	StyleCreative  WritingStyle = "Creative"
	StyleTechnical WritingStyle = "Technical"
	StyleCasual    WritingStyle = "Casual"
)

// AllStyles returns every style profile in display order.
func AllStyles() []WritingStyle {
	return []WritingStyle{
		StyleGeneral,
		StyleAcademic,
		StyleBusiness,
		StyleCreative,
		StyleTechnical,
		StyleCasual,
	}
}

// ParseStyle resolves a style name case-insensitively. An empty name yields StyleGeneral.
func ParseStyle(name string) (WritingStyle, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return StyleGeneral, nil
	}
	for _, s := range AllStyles() {
		if strings.EqualFold(string(s), name) {
			return s, nil
		}
	}
	return "", &ValidationError{
		Field:   "style",
		Message: fmt.Sprintf("unknown writing style %q (want one of %s)", name, styleNames()),
	}
}

// Valid reports whether s is one of the fixed style profiles
func (s WritingStyle) Valid() bool {
	for _, known := range AllStyles() {
		if s == known {
			return true
		}
	}
	return false
}

func styleNames() string {
	names := make([]string, 0, len(AllStyles()))
	for _, s := range AllStyles() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
