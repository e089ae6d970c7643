// Package types provides type definitions for structured data used throughout the writing optimizer.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// Document is a transient local copy of a remote document.
// The document service is the source of truth; a Document is replaced on every fetch or save.
type Document struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// WordCount returns the number of whitespace-separated words in the document text
func (d *Document) WordCount() int {
	if d == nil {
		return 0
	}
	return len(strings.Fields(d.Text))
}
