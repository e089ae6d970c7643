// Package pipeline provides the high-level orchestration of one analysis action:
// fetch, local analytics, AI feedback and session recording.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/writing-optimizer/internal/readability"
	"github.com/jonathan/writing-optimizer/internal/session"
	"github.com/jonathan/writing-optimizer/internal/types"
	"github.com/jonathan/writing-optimizer/internal/wordfreq"
)

// Step names reported through ProgressEvent.
const (
	StepFetch       = "fetch"
	StepReadability = "readability"
	StepFrequency   = "frequency"
	StepFeedback    = "feedback"
	StepSession     = "session"
	StepSave        = "save"
)

// Categories group steps for display.
const (
	CategoryDocument  = "document"
	CategoryAnalytics = "analytics"
	CategoryAI        = "ai"
)

// DefaultTargetClarity is used when a request carries no target.
const DefaultTargetClarity = 70

// ErrNoDocumentService is returned when a document operation is requested but
// the assistant was built without a gateway.
var ErrNoDocumentService = errors.New("no document service configured")

// ProgressEvent represents a progress update during an analysis action
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when analysis progress occurs
type ProgressCallback func(event ProgressEvent)

// DocumentGateway reads and replaces the text of a remote document.
type DocumentGateway interface {
	Fetch(ctx context.Context, documentID string) (string, error)
	Save(ctx context.Context, documentID, text string) error
}

// FeedbackClient requests structured AI feedback for a text.
type FeedbackClient interface {
	Analyze(ctx context.Context, text string, style types.WritingStyle, targetClarity int) (*types.AnalysisResult, error)
}

// Options wires the assistant's collaborators. Docs may be nil when only
// pasted text is analyzed; Feedback and Store are required.
type Options struct {
	Docs          DocumentGateway
	Feedback      FeedbackClient
	Store         session.Store
	Readability   readability.Options
	WordFreq      wordfreq.Options
	TargetClarity int
}

// Assistant coordinates one user action at a time. It holds no document state;
// the remote document service remains the source of truth.
type Assistant struct {
	docs          DocumentGateway
	feedback      FeedbackClient
	store         session.Store
	readability   readability.Options
	wordfreq      wordfreq.Options
	targetClarity int
}

// NewAssistant creates an Assistant from opts.
func NewAssistant(opts Options) (*Assistant, error) {
	if opts.Feedback == nil {
		return nil, errors.New("feedback client is required")
	}
	if opts.Store == nil {
		return nil, errors.New("session store is required")
	}
	target := opts.TargetClarity
	if target == 0 {
		target = DefaultTargetClarity
	}
	if err := types.ValidateClarityTarget(target); err != nil {
		return nil, err
	}
	return &Assistant{
		docs:          opts.Docs,
		feedback:      opts.Feedback,
		store:         opts.Store,
		readability:   opts.Readability,
		wordfreq:      opts.WordFreq,
		targetClarity: target,
	}, nil
}

// Store returns the session store that analyses are recorded into.
func (a *Assistant) Store() session.Store {
	return a.store
}

// Fetch returns the current plain text of a remote document.
func (a *Assistant) Fetch(ctx context.Context, documentID string) (*types.Document, error) {
	if a.docs == nil {
		return nil, ErrNoDocumentService
	}
	text, err := a.docs.Fetch(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return &types.Document{ID: documentID, Text: text}, nil
}

// Save replaces the entire body of a remote document with text.
// Empty text is rejected before any remote call.
func (a *Assistant) Save(ctx context.Context, documentID, text string) error {
	if err := types.RequireText("text", text); err != nil {
		return err
	}
	if a.docs == nil {
		return ErrNoDocumentService
	}
	return a.docs.Save(ctx, documentID, text)
}

// Highlight annotates text with the top-N overused words.
func (a *Assistant) Highlight(text string, topN int) (*types.WordFrequencyReport, []types.AnnotatedToken, error) {
	opts := a.wordfreq
	if topN > 0 {
		opts.TopN = topN
	}
	report, err := wordfreq.Annotate(text, opts)
	if err != nil {
		return nil, nil, err
	}
	tokens, err := wordfreq.Highlight(text, report.Overused, opts.Language)
	if err != nil {
		return nil, nil, err
	}
	return report, tokens, nil
}

// Analyze runs one analysis action. When req.Text is empty the document named by
// req.DocumentID is fetched first. Readability, word frequency and AI feedback run
// concurrently; a session entry is recorded only when all of them succeed.
func (a *Assistant) Analyze(ctx context.Context, req *types.AnalyzeRequest, onProgress ProgressCallback) (*types.AnalysisReport, error) {
	if req == nil {
		return nil, &types.ValidationError{Message: "request is required"}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	style, err := types.ParseStyle(req.Style)
	if err != nil {
		return nil, err
	}
	target := a.targetClarity
	if req.TargetClarity != nil {
		target = *req.TargetClarity
	}

	emit := progressEmitter(onProgress)

	text := req.Text
	if text == "" {
		doc, err := a.Fetch(ctx, req.DocumentID)
		if err != nil {
			return nil, fmt.Errorf("fetch failed: %w", err)
		}
		text = doc.Text
		emit(StepFetch, CategoryDocument, fmt.Sprintf("Fetched %d words from %s", doc.WordCount(), req.DocumentID), nil)
	}
	if err := types.RequireText("text", text); err != nil {
		return nil, err
	}

	wfOpts := a.wordfreq
	if req.TopN > 0 {
		wfOpts.TopN = req.TopN
	}

	g, gCtx := errgroup.WithContext(ctx)

	var metrics *types.ReadabilityMetrics
	var frequency *types.WordFrequencyReport
	var feedback *types.AnalysisResult

	g.Go(func() error {
		m, err := readability.Analyze(text, a.readability)
		if err != nil {
			return err
		}
		metrics = m
		emit(StepReadability, CategoryAnalytics, fmt.Sprintf("Grade level %.1f (%s)", m.GradeLevel, m.EaseLabel), m)
		return nil
	})

	g.Go(func() error {
		f, err := wordfreq.Annotate(text, wfOpts)
		if err != nil {
			return err
		}
		frequency = f
		emit(StepFrequency, CategoryAnalytics, fmt.Sprintf("Ranked %d distinct words", len(f.Ranked)), f.Overused)
		return nil
	})

	g.Go(func() error {
		r, err := a.feedback.Analyze(gCtx, text, style, target)
		if err != nil {
			return err
		}
		feedback = r
		emit(StepFeedback, CategoryAI, fmt.Sprintf("Clarity %d/100, tone %s", r.ClarityScore, r.Tone), r)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &types.AnalysisReport{
		DocumentID:  req.DocumentID,
		Style:       style,
		Target:      target,
		Feedback:    feedback,
		Readability: metrics,
		Frequency:   frequency,
		Sentences:   wordfreq.SentenceSummary(frequency.SentenceLengths),
	}

	entry := a.store.Record(req.DocumentID, feedback.ClarityScore, metrics.GradeLevel)
	report.Session = &entry
	emit(StepSession, CategoryAnalytics, fmt.Sprintf("Recorded entry %d", entry.SequenceIndex), entry)

	return report, nil
}

// progressEmitter serializes callback invocations from concurrent branches.
func progressEmitter(cb ProgressCallback) func(step, category, message string, content any) {
	var mu sync.Mutex
	return func(step, category, message string, content any) {
		if cb == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		cb(ProgressEvent{
			Step:     step,
			Category: category,
			Message:  message,
			Content:  content,
		})
	}
}
