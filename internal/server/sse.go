package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jonathan/writing-optimizer/internal/pipeline"
	"github.com/jonathan/writing-optimizer/internal/types"
)

// SSE event names of the analysis stream, in the order a client sees them:
// any number of step events, then result or error, then complete.
const (
	EventStep     = "step"
	EventResult   = "result"
	EventError    = "error"
	EventComplete = "complete"
)

var errStreamingUnsupported = errors.New("streaming not supported")

// analysisStream writes one analysis run as Server-Sent Events. Every event
// carries the run id and a sequence number as its SSE id.
type analysisStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	runID   string
	seq     int
	err     error
}

// openAnalysisStream sends the stream headers. It fails before writing anything
// when w cannot flush.
func openAnalysisStream(w http.ResponseWriter, runID string) (*analysisStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &analysisStream{w: w, flusher: flusher, runID: runID}, nil
}

// send writes one event. After the first write error the stream is dead and
// later sends return that error without writing.
func (s *analysisStream) send(event string, data any) error {
	if s.err != nil {
		return s.err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}

	s.seq++
	_, err = fmt.Fprintf(s.w, "id: %s-%s\nevent: %s\ndata: %s\n\n", s.runID, strconv.Itoa(s.seq), event, payload)
	if err != nil {
		s.err = err
		return err
	}
	s.flusher.Flush()
	return nil
}

// Step forwards a pipeline progress event.
func (s *analysisStream) Step(event pipeline.ProgressEvent) error {
	event.RunID = s.runID
	return s.send(EventStep, event)
}

// Result sends the finished report.
func (s *analysisStream) Result(report *types.AnalysisReport) error {
	return s.send(EventResult, report)
}

// Fail sends the error of a failed run.
func (s *analysisStream) Fail(resp ErrorResponse) error {
	return s.send(EventError, resp)
}

// Complete ends the run with "completed" or "failed".
func (s *analysisStream) Complete(status string) error {
	return s.send(EventComplete, map[string]string{"run_id": s.runID, "status": status})
}
