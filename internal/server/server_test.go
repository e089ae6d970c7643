package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/writing-optimizer/internal/feedback"
	"github.com/jonathan/writing-optimizer/internal/gdocs"
	"github.com/jonathan/writing-optimizer/internal/metrics"
	"github.com/jonathan/writing-optimizer/internal/pipeline"
	"github.com/jonathan/writing-optimizer/internal/readability"
	"github.com/jonathan/writing-optimizer/internal/server/ratelimit"
	"github.com/jonathan/writing-optimizer/internal/session"
	"github.com/jonathan/writing-optimizer/internal/types"
	"github.com/jonathan/writing-optimizer/internal/wordfreq"
)

const catText = "The cat sat. The cat sat on the mat. The cat was happy."

type fakeDocs struct {
	mu    sync.Mutex
	texts map[string]string
	err   error
}

func (f *fakeDocs) Fetch(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	text, ok := f.texts[id]
	if !ok {
		return "", &gdocs.NotFoundError{DocumentID: id}
	}
	return text, nil
}

func (f *fakeDocs) Save(_ context.Context, id, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.texts[id] = text
	return nil
}

type fakeFeedback struct {
	result *types.AnalysisResult
	err    error
}

func (f *fakeFeedback) Analyze(context.Context, string, types.WritingStyle, int) (*types.AnalysisResult, error) {
	return f.result, f.err
}

type testServer struct {
	*Server
	docs     *fakeDocs
	feedback *fakeFeedback
	tracker  *session.Tracker
}

func newTestServer(t *testing.T, rl *ratelimit.Config) *testServer {
	t.Helper()
	docs := &fakeDocs{texts: map[string]string{"doc-1": catText}}
	fb := &fakeFeedback{result: &types.AnalysisResult{
		ClarityScore: 81,
		Tone:         "Neutral",
		Suggestions:  []string{"Vary sentence openings", "Cut repeated words"},
	}}
	tracker := session.NewTracker()
	assistant, err := pipeline.NewAssistant(pipeline.Options{
		Docs:        docs,
		Feedback:    fb,
		Store:       tracker,
		Readability: readability.DefaultOptions(),
		WordFreq:    wordfreq.DefaultOptions(),
	})
	require.NoError(t, err)

	if rl == nil {
		rl = &ratelimit.Config{Enabled: false}
	}
	s, err := New(Config{
		Assistant: assistant,
		Metrics:   metrics.New(),
		RateLimit: rl,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(s.rateLimiter.Stop)
	return &testServer{Server: s, docs: docs, feedback: fb, tracker: tracker}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestNew_RequiresAssistant(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, rec)["status"])
}

func TestHandleStyles(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(t, http.MethodGet, "/styles", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[StylesResponse](t, rec)
	assert.Len(t, resp.Styles, 6)
	assert.Equal(t, types.StyleGeneral, resp.Default)
}

func TestHandleGetDocument(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/documents/doc-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decodeBody[DocumentResponse](t, rec)
	assert.Equal(t, catText, doc.Text)
	assert.Equal(t, 13, doc.WordCount)

	rec = ts.do(t, http.MethodGet, "/documents/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeBody[ErrorResponse](t, rec).Code)
}

func TestHandleSaveDocument(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPut, "/documents/doc-1", `{"text": "Rewritten."}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Rewritten.", ts.docs.texts["doc-1"])

	rec = ts.do(t, http.MethodPut, "/documents/doc-1", `{"text": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "text", decodeBody[ErrorResponse](t, rec).Field)

	rec = ts.do(t, http.MethodPut, "/documents/doc-1", `{"text": "   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Rewritten.", ts.docs.texts["doc-1"])
}

func TestHandleSaveDocument_Conflict(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.docs.err = &gdocs.ConflictError{DocumentID: "doc-1", Message: "revision changed"}

	rec := ts.do(t, http.MethodPut, "/documents/doc-1", `{"text": "New"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decodeBody[ErrorResponse](t, rec).Code)
}

func TestHandleAnalyze(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/analyze", `{"text": "`+catText+`", "style": "business", "target_clarity": 75}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	report := decodeBody[types.AnalysisReport](t, rec)
	assert.Equal(t, types.StyleBusiness, report.Style)
	assert.Equal(t, 75, report.Target)
	assert.Equal(t, 81, report.Feedback.ClarityScore)
	assert.Equal(t, "cat", report.Frequency.Overused[0].Word)
	require.NotNil(t, report.Session)
	assert.Equal(t, 1, report.Session.SequenceIndex)
	assert.Equal(t, 1, ts.tracker.Len())
}

func TestHandleAnalyze_ReportMatchesSchema(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/analyze", `{"document_id": "doc-1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NoError(t, validateReport(rec.Body.Bytes()))
}

func TestHandleAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		fbErr    error
		wantCode int
		wantKind string
	}{
		{name: "malformed json", body: `{"text": `, wantCode: http.StatusBadRequest, wantKind: "validation_error"},
		{name: "neither text nor document", body: `{"style": "general"}`, wantCode: http.StatusBadRequest, wantKind: "validation_error"},
		{name: "target out of range", body: `{"text": "Hi.", "target_clarity": 150}`, wantCode: http.StatusBadRequest, wantKind: "validation_error"},
		{name: "whitespace text", body: `{"text": "   "}`, wantCode: http.StatusBadRequest, wantKind: "validation_error"},
		{name: "unknown document", body: `{"document_id": "nope"}`, wantCode: http.StatusNotFound, wantKind: "not_found"},
		{
			name:     "provider timeout",
			body:     `{"text": "Hi there."}`,
			fbErr:    &feedback.ProviderError{Message: "request timed out", Timeout: true, Cause: context.DeadlineExceeded},
			wantCode: http.StatusGatewayTimeout,
			wantKind: "provider_timeout",
		},
		{
			name:     "provider failure",
			body:     `{"text": "Hi there."}`,
			fbErr:    &feedback.ProviderError{Message: "status 500"},
			wantCode: http.StatusBadGateway,
			wantKind: "provider_error",
		},
		{
			name:     "unparseable reply",
			body:     `{"text": "Hi there."}`,
			fbErr:    &feedback.ParseError{Message: "clarity score out of range", Raw: "Clarity: 150"},
			wantCode: http.StatusUnprocessableEntity,
			wantKind: "parse_error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			if tt.fbErr != nil {
				ts.feedback.err = tt.fbErr
				ts.feedback.result = nil
			}
			rec := ts.do(t, http.MethodPost, "/analyze", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			resp := decodeBody[ErrorResponse](t, rec)
			assert.Equal(t, tt.wantKind, resp.Code)
			assert.Equal(t, 0, ts.tracker.Len())
		})
	}
}

func TestHandleAnalyze_ParseErrorCarriesRaw(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.feedback.err = &feedback.ParseError{Message: "missing tone", Raw: "Clarity: 80"}
	ts.feedback.result = nil

	rec := ts.do(t, http.MethodPost, "/analyze", `{"text": "Hi."}`)
	assert.Equal(t, "Clarity: 80", decodeBody[ErrorResponse](t, rec).Raw)
}

func TestHandleAnalyzeStream(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/analyze/stream", `{"document_id": "doc-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	events := readSSE(t, rec.Body.String())
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.name)
	}
	assert.Contains(t, names, "step")
	assert.Equal(t, []string{"result", "complete"}, names[len(names)-2:])

	var step pipeline.ProgressEvent
	require.NoError(t, json.Unmarshal([]byte(events[0].data), &step))
	assert.Equal(t, pipeline.StepFetch, step.Step)
	assert.NotEmpty(t, step.RunID)

	var done map[string]string
	require.NoError(t, json.Unmarshal([]byte(events[len(events)-1].data), &done))
	assert.Equal(t, "completed", done["status"])
	assert.Equal(t, step.RunID, done["run_id"])
}

func TestHandleAnalyzeStream_Error(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.feedback.err = &feedback.ProviderError{Message: "down"}
	ts.feedback.result = nil

	rec := ts.do(t, http.MethodPost, "/analyze/stream", `{"text": "Hi there."}`)
	events := readSSE(t, rec.Body.String())
	require.GreaterOrEqual(t, len(events), 2)

	errEvent := events[len(events)-2]
	assert.Equal(t, "error", errEvent.name)
	assert.Contains(t, errEvent.data, "provider_error")
	assert.Contains(t, events[len(events)-1].data, "failed")
}

func TestHandleHighlight(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/highlight", `{"text": "`+catText+`", "top_n": 2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[HighlightResponse](t, rec)
	require.Len(t, resp.Overused, 2)
	assert.Equal(t, "cat", resp.Overused[0].Word)
	assert.Equal(t, types.SentenceLengths{3, 6, 4}, resp.SentenceLengths)

	var rebuilt strings.Builder
	for _, tok := range resp.Tokens {
		rebuilt.WriteString(tok.Text)
	}
	assert.Equal(t, catText, rebuilt.String())

	rec = ts.do(t, http.MethodPost, "/highlight", `{"text": "x", "top_n": -1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHistory(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/session/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"entries":[]`)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/analyze", `{"text": "`+catText+`"}`).Code)
	}

	rec = ts.do(t, http.MethodGet, "/session/history", "")
	resp := decodeBody[HistoryResponse](t, rec)
	require.Len(t, resp.Entries, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{resp.Entries[0].SequenceIndex, resp.Entries[1].SequenceIndex, resp.Entries[2].SequenceIndex})
	assert.Equal(t, 3, resp.Summary.Entries)
	assert.Equal(t, ts.tracker.ID(), resp.SessionID)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.do(t, http.MethodPost, "/analyze", `{"text": "`+catText+`"}`)

	rec := ts.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `writing_optimizer_analyses_total{outcome="ok",style="General"} 1`)
	assert.Contains(t, body, `writing_optimizer_http_requests_total{code="200",method="POST",route="POST /analyze"} 1`)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, &ratelimit.Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: []ratelimit.EndpointConfig{{Path: "/highlight", Method: "POST", Limit: 2, Window: time.Hour, Burst: 2}},
	})

	body := `{"text": "Short text."}`
	for i := 0; i < 2; i++ {
		rec := ts.do(t, http.MethodPost, "/highlight", body)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := ts.do(t, http.MethodPost, "/highlight", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decodeBody[map[string]any](t, rec)["code"])
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServe_GracefulShutdown(t *testing.T) {
	ts := newTestServer(t, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ts.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

type sseEvent struct {
	id   string
	name string
	data string
}

func readSSE(t *testing.T, body string) []sseEvent {
	t.Helper()
	var events []sseEvent
	var current sseEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "id: "):
			current.id = strings.TrimPrefix(line, "id: ")
		case strings.HasPrefix(line, "event: "):
			current.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.data = strings.TrimPrefix(line, "data: ")
		case line == "" && current.name != "":
			events = append(events, current)
			current = sseEvent{}
		}
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestHandleAnalyze_DefaultStyle(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.defaultStyle = types.StyleAcademic

	rec := ts.do(t, http.MethodPost, "/analyze", `{"text": "`+catText+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, types.StyleAcademic, decodeBody[types.AnalysisReport](t, rec).Style)

	rec = ts.do(t, http.MethodPost, "/analyze", `{"text": "`+catText+`", "style": "casual"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, types.StyleCasual, decodeBody[types.AnalysisReport](t, rec).Style)
}

func TestRequestID(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/health", "")
	generated := rec.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}
