// Package session keeps the in-memory, append-only history of analyses for one running session.
package session

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/writing-optimizer/internal/types"
)

// Store records one entry per successful analysis and returns them in recording order.
type Store interface {
	Record(documentID string, clarityScore int, gradeLevel float64) types.SessionEntry
	History() []types.SessionEntry
}

// Tracker is the process-local Store. It is safe for concurrent readers
// alongside the single writing flow. History is lost on restart.
type Tracker struct {
	id      string
	now     func() time.Time
	mu      sync.RWMutex
	entries []types.SessionEntry
}

// NewTracker starts an empty session
func NewTracker() *Tracker {
	return &Tracker{id: uuid.NewString(), now: time.Now}
}

// ID identifies this session
func (t *Tracker) ID() string {
	return t.id
}

// Record appends an entry with the next 1-based sequence index. An empty
// document id is labelled "Doc N".
func (t *Tracker) Record(documentID string, clarityScore int, gradeLevel float64) types.SessionEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	index := len(t.entries) + 1
	label := strings.TrimSpace(documentID)
	if label == "" {
		label = fmt.Sprintf("Doc %d", index)
	}
	entry := types.SessionEntry{
		SequenceIndex: index,
		DocumentID:    label,
		RecordedAt:    t.now().UTC(),
		ClarityScore:  clarityScore,
		GradeLevel:    gradeLevel,
	}
	t.entries = append(t.entries, entry)
	return entry
}

// History returns a copy of every entry in recording order.
func (t *Tracker) History() []types.SessionEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]types.SessionEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len reports the number of recorded entries
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Summarize reports the latest entry and the change from first to last.
func Summarize(history []types.SessionEntry) types.SessionSummary {
	summary := types.SessionSummary{Entries: len(history)}
	if len(history) == 0 {
		return summary
	}
	first, last := history[0], history[len(history)-1]
	summary.Latest = &last
	summary.ClarityDelta = last.ClarityScore - first.ClarityScore
	summary.GradeDelta = math.Round((last.GradeLevel-first.GradeLevel)*100) / 100
	return summary
}

// Summary summarizes the tracker's current history
func (t *Tracker) Summary() types.SessionSummary {
	return Summarize(t.History())
}
