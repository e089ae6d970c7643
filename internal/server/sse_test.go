package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/writing-optimizer/internal/pipeline"
	"github.com/jonathan/writing-optimizer/internal/types"
)

type noFlushWriter struct {
	header http.Header
}

func (w *noFlushWriter) Header() http.Header { return w.header }
func (w *noFlushWriter) Write(p []byte) (int, error) { return len(p), nil }
func (w *noFlushWriter) WriteHeader(int) {}

type brokenWriter struct {
	*httptest.ResponseRecorder
	writes int
}

func (w *brokenWriter) Write([]byte) (int, error) {
	w.writes++
	return 0, errors.New("client gone")
}

func TestAnalysisStream_Sequence(t *testing.T) {
	rec := httptest.NewRecorder()
	stream, err := openAnalysisStream(rec, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	require.NoError(t, stream.Step(pipeline.ProgressEvent{Step: pipeline.StepReadability, Message: "ok"}))
	require.NoError(t, stream.Result(&types.AnalysisReport{Style: types.StyleGeneral}))
	require.NoError(t, stream.Complete("completed"))

	events := readSSE(t, rec.Body.String())
	require.Len(t, events, 3)
	assert.Equal(t, []string{"run-1-1", "run-1-2", "run-1-3"}, []string{events[0].id, events[1].id, events[2].id})
	assert.Equal(t, EventStep, events[0].name)
	assert.Contains(t, events[0].data, `"run_id":"run-1"`)
	assert.Equal(t, EventResult, events[1].name)
	assert.JSONEq(t, `{"run_id":"run-1","status":"completed"}`, events[2].data)
}

func TestAnalysisStream_StopsAfterWriteError(t *testing.T) {
	w := &brokenWriter{ResponseRecorder: httptest.NewRecorder()}
	stream, err := openAnalysisStream(w, "run-2")
	require.NoError(t, err)

	first := stream.Fail(ErrorResponse{Error: "x", Code: "provider_error"})
	require.Error(t, first)
	assert.Equal(t, first, stream.Complete("failed"))
	assert.Equal(t, 1, w.writes)
}

func TestAnalysisStream_RequiresFlusher(t *testing.T) {
	_, err := openAnalysisStream(&noFlushWriter{header: http.Header{}}, "run-3")
	assert.ErrorIs(t, err, errStreamingUnsupported)
}
