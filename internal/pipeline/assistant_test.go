package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jonathan/writing-optimizer/internal/feedback"
	"github.com/jonathan/writing-optimizer/internal/readability"
	"github.com/jonathan/writing-optimizer/internal/session"
	"github.com/jonathan/writing-optimizer/internal/types"
	"github.com/jonathan/writing-optimizer/internal/wordfreq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catText = "The cat sat. The cat sat on the mat. The cat was happy."

type fakeDocs struct {
	mu    sync.Mutex
	texts map[string]string
	err   error
	saves int
}

func (f *fakeDocs) Fetch(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.texts[id], nil
}

func (f *fakeDocs) Save(_ context.Context, id, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saves++
	f.texts[id] = text
	return nil
}

type fakeFeedback struct {
	result *types.AnalysisResult
	err    error
	block  bool

	gotStyle  types.WritingStyle
	gotTarget int
}

func (f *fakeFeedback) Analyze(ctx context.Context, _ string, style types.WritingStyle, target int) (*types.AnalysisResult, error) {
	f.gotStyle = style
	f.gotTarget = target
	if f.block {
		<-ctx.Done()
		return nil, &feedback.ProviderError{Message: "request timed out", Timeout: true, Cause: ctx.Err()}
	}
	return f.result, f.err
}

func newAssistant(t *testing.T, docs DocumentGateway, fb FeedbackClient) (*Assistant, *session.Tracker) {
	t.Helper()
	tracker := session.NewTracker()
	a, err := NewAssistant(Options{
		Docs:        docs,
		Feedback:    fb,
		Store:       tracker,
		Readability: readability.DefaultOptions(),
		WordFreq:    wordfreq.DefaultOptions(),
	})
	require.NoError(t, err)
	return a, tracker
}

func okFeedback() *fakeFeedback {
	return &fakeFeedback{result: &types.AnalysisResult{
		ClarityScore: 78,
		Tone:         "Neutral",
		Suggestions:  []string{"Vary sentence openings"},
	}}
}

func TestNewAssistant_RequiresCollaborators(t *testing.T) {
	_, err := NewAssistant(Options{Store: session.NewTracker()})
	assert.Error(t, err)

	_, err = NewAssistant(Options{Feedback: okFeedback()})
	assert.Error(t, err)

	_, err = NewAssistant(Options{Feedback: okFeedback(), Store: session.NewTracker(), TargetClarity: 120})
	var verr *types.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAnalyze_PastedText(t *testing.T) {
	fb := okFeedback()
	a, tracker := newAssistant(t, nil, fb)

	var mu sync.Mutex
	var steps []string
	report, err := a.Analyze(context.Background(), &types.AnalyzeRequest{Text: catText, Style: "business"}, func(e ProgressEvent) {
		mu.Lock()
		steps = append(steps, e.Step)
		mu.Unlock()
	})
	require.NoError(t, err)

	assert.Equal(t, types.StyleBusiness, report.Style)
	assert.Equal(t, DefaultTargetClarity, report.Target)
	assert.Equal(t, DefaultTargetClarity, fb.gotTarget)
	assert.Equal(t, 78, report.Feedback.ClarityScore)

	require.NotEmpty(t, report.Frequency.Overused)
	assert.Equal(t, "cat", report.Frequency.Overused[0].Word)
	assert.Equal(t, types.SentenceLengths{3, 6, 4}, report.Frequency.SentenceLengths)
	assert.Equal(t, 3, report.Sentences.Count)
	assert.Equal(t, 3, report.Readability.SentenceCount)

	require.NotNil(t, report.Session)
	assert.Equal(t, 1, report.Session.SequenceIndex)
	assert.Equal(t, 1, tracker.Len())

	assert.ElementsMatch(t, []string{StepReadability, StepFrequency, StepFeedback, StepSession}, steps)
	assert.Equal(t, StepSession, steps[len(steps)-1])
}

func TestAnalyze_FetchesDocumentWhenTextEmpty(t *testing.T) {
	docs := &fakeDocs{texts: map[string]string{"doc-1": catText}}
	a, tracker := newAssistant(t, docs, okFeedback())

	target := 85
	report, err := a.Analyze(context.Background(), &types.AnalyzeRequest{DocumentID: "doc-1", TargetClarity: &target}, nil)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", report.DocumentID)
	assert.Equal(t, 85, report.Target)
	assert.Equal(t, "doc-1", tracker.History()[0].DocumentID)
}

func TestAnalyze_TimeoutRecordsNothing(t *testing.T) {
	fb := &fakeFeedback{block: true}
	a, tracker := newAssistant(t, nil, fb)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := a.Analyze(ctx, &types.AnalyzeRequest{Text: catText}, nil)
	assert.Nil(t, report)
	var perr *feedback.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.True(t, perr.Timeout)
	assert.Equal(t, 0, tracker.Len())
}

func TestAnalyze_ParseErrorRecordsNothing(t *testing.T) {
	fb := &fakeFeedback{err: &feedback.ParseError{Message: "clarity score out of range", Raw: "Clarity: 150"}}
	a, tracker := newAssistant(t, nil, fb)

	_, err := a.Analyze(context.Background(), &types.AnalyzeRequest{Text: catText}, nil)
	var perr *feedback.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 0, tracker.Len())
}

func TestAnalyze_RepeatedAnalysesAppend(t *testing.T) {
	a, tracker := newAssistant(t, nil, okFeedback())

	for i := 0; i < 4; i++ {
		_, err := a.Analyze(context.Background(), &types.AnalyzeRequest{Text: catText}, nil)
		require.NoError(t, err)
	}

	history := tracker.History()
	require.Len(t, history, 4)
	for i, e := range history {
		assert.Equal(t, i+1, e.SequenceIndex)
	}
}

func TestAnalyze_ValidationErrors(t *testing.T) {
	a, tracker := newAssistant(t, &fakeDocs{texts: map[string]string{"blank": "   \n "}}, okFeedback())
	bad := 101

	tests := []struct {
		name  string
		req   *types.AnalyzeRequest
		field string
	}{
		{name: "nil request", req: nil},
		{name: "no text or document", req: &types.AnalyzeRequest{}, field: "text"},
		{name: "target out of range", req: &types.AnalyzeRequest{Text: catText, TargetClarity: &bad}, field: "target_clarity"},
		{name: "unknown style", req: &types.AnalyzeRequest{Text: catText, Style: "Poetic"}, field: "style"},
		{name: "whitespace text", req: &types.AnalyzeRequest{Text: "   "}, field: "text"},
		{name: "blank document", req: &types.AnalyzeRequest{DocumentID: "blank"}, field: "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Analyze(context.Background(), tt.req, nil)
			var verr *types.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
	assert.Equal(t, 0, tracker.Len())
}

func TestAnalyze_FetchErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	a, _ := newAssistant(t, &fakeDocs{err: boom}, okFeedback())

	_, err := a.Analyze(context.Background(), &types.AnalyzeRequest{DocumentID: "doc-1"}, nil)
	assert.ErrorIs(t, err, boom)
}

func TestSave(t *testing.T) {
	docs := &fakeDocs{texts: map[string]string{}}
	a, _ := newAssistant(t, docs, okFeedback())

	require.NoError(t, a.Save(context.Background(), "doc-1", "Hello"))
	assert.Equal(t, "Hello", docs.texts["doc-1"])

	err := a.Save(context.Background(), "doc-1", "  ")
	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, docs.saves)

	doc, err := a.Fetch(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Hello", doc.Text)
}

func TestNoDocumentService(t *testing.T) {
	a, _ := newAssistant(t, nil, okFeedback())

	_, err := a.Fetch(context.Background(), "doc-1")
	assert.ErrorIs(t, err, ErrNoDocumentService)
	assert.ErrorIs(t, a.Save(context.Background(), "doc-1", "text"), ErrNoDocumentService)
	_, err = a.Analyze(context.Background(), &types.AnalyzeRequest{DocumentID: "doc-1"}, nil)
	assert.ErrorIs(t, err, ErrNoDocumentService)
}

func TestHighlight(t *testing.T) {
	a, _ := newAssistant(t, nil, okFeedback())

	report, tokens, err := a.Highlight(catText, 1)
	require.NoError(t, err)
	require.Len(t, report.Overused, 1)
	assert.Equal(t, "cat", report.Overused[0].Word)

	highlighted := 0
	for _, tok := range tokens {
		if tok.Highlighted() {
			highlighted++
			assert.Equal(t, "cat", tok.Word)
		}
	}
	assert.Equal(t, 3, highlighted)
}
