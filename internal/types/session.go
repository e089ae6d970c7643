package types

import (
	"time"
)

// SessionEntry is one row of the in-memory session history.
// Entries are append-only and never mutated.
type SessionEntry struct {
	SequenceIndex int       `json:"sequence_index"`
	DocumentID    string    `json:"document_id"`
	RecordedAt    time.Time `json:"recorded_at"`
	ClarityScore  int       `json:"clarity_score"`
	GradeLevel    float64   `json:"grade_level"`
}

// SessionSummary describes the trend across a session history.
type SessionSummary struct {
	Entries      int           `json:"entries"`
	Latest       *SessionEntry `json:"latest,omitempty"`
	ClarityDelta int           `json:"clarity_delta"`
	GradeDelta   float64       `json:"grade_delta"`
}
