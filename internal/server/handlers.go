package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/writing-optimizer/internal/pipeline"
	"github.com/jonathan/writing-optimizer/internal/schemas"
	"github.com/jonathan/writing-optimizer/internal/session"
	"github.com/jonathan/writing-optimizer/internal/types"
	"github.com/jonathan/writing-optimizer/internal/wordfreq"
)

// DocumentResponse is the body of GET /documents/{id}
type DocumentResponse struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	WordCount int    `json:"word_count"`
}

// SaveResponse is the body of a successful PUT /documents/{id}
type SaveResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// HighlightResponse carries overused words and the annotated text fragments.
type HighlightResponse struct {
	Overused        []types.OverusedWord   `json:"overused"`
	Tokens          []types.AnnotatedToken `json:"tokens"`
	SentenceLengths types.SentenceLengths  `json:"sentence_lengths"`
	Sentences       types.SentenceStats    `json:"sentences"`
}

// HistoryResponse is the body of GET /session/history
type HistoryResponse struct {
	SessionID string               `json:"session_id,omitempty"`
	Entries   []types.SessionEntry `json:"entries"`
	Summary   types.SessionSummary `json:"summary"`
}

// StylesResponse lists the writing style profiles.
type StylesResponse struct {
	Styles  []types.WritingStyle `json:"styles"`
	Default types.WritingStyle   `json:"default"`
}

// decodeJSON reads the body, checks it against the named schema and unmarshals it.
func (s *Server) decodeJSON(r *http.Request, schema string, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.maxBodyBytes+1))
	if err != nil {
		return &types.ValidationError{Field: "body", Message: "failed to read request body: " + err.Error()}
	}
	if int64(len(body)) > s.maxBodyBytes {
		return &types.ValidationError{Field: "body", Message: "request body too large"}
	}
	if !json.Valid(body) {
		return &types.ValidationError{Field: "body", Message: "invalid JSON"}
	}
	if err := schemas.Validate(schema, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &types.ValidationError{Field: "body", Message: err.Error()}
	}
	return nil
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStyles(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, StylesResponse{Styles: types.AllStyles(), Default: s.defaultStyle})
}

// handleGetDocument fetches the current text of a remote document
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.assistant.Fetch(r.Context(), r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, DocumentResponse{ID: doc.ID, Text: doc.Text, WordCount: doc.WordCount()})
}

// handleSaveDocument replaces the body of a remote document
func (s *Server) handleSaveDocument(w http.ResponseWriter, r *http.Request) {
	var req types.SaveRequest
	if err := s.decodeJSON(r, schemas.SaveRequest, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, err)
		return
	}

	id := r.PathValue("id")
	if err := s.assistant.Save(r.Context(), id, req.Text); err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, SaveResponse{ID: id, Status: "saved"})
}

// handleAnalyze runs one analysis action and returns the full report
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req types.AnalyzeRequest
	if err := s.decodeJSON(r, schemas.AnalyzeRequest, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	if req.Style == "" {
		req.Style = string(s.defaultStyle)
	}
	report, err := s.assistant.Analyze(r.Context(), &req, nil)
	s.observeAnalysis(req.Style, err)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}

// handleAnalyzeStream runs one analysis action and streams progress via SSE
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	var req types.AnalyzeRequest
	if err := s.decodeJSON(r, schemas.AnalyzeRequest, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	if req.Style == "" {
		req.Style = string(s.defaultStyle)
	}

	runID := uuid.NewString()
	stream, err := openAnalysisStream(w, runID)
	if err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "internal_error"})
		return
	}
	s.logger.Debug("starting streaming analysis", "run_id", runID)

	report, err := s.assistant.Analyze(r.Context(), &req, func(event pipeline.ProgressEvent) {
		if err := stream.Step(event); err != nil {
			s.logger.Warn("error writing SSE event", "run_id", runID, "error", err)
		}
	})
	s.observeAnalysis(req.Style, err)

	status := "completed"
	if err != nil {
		status = "failed"
		err = stream.Fail(toErrorResponse(err))
	} else {
		err = stream.Result(report)
	}
	if err == nil {
		err = stream.Complete(status)
	}
	if err != nil {
		s.logger.Warn("analysis stream closed early", "run_id", runID, "error", err)
	}
}

// handleHighlight annotates pasted text with its overused words
func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	var req types.HighlightRequest
	if err := s.decodeJSON(r, schemas.HighlightRequest, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, err)
		return
	}

	report, tokens, err := s.assistant.Highlight(req.Text, req.TopN)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, HighlightResponse{
		Overused:        report.Overused,
		Tokens:          tokens,
		SentenceLengths: report.SentenceLengths,
		Sentences:       wordfreq.SentenceSummary(report.SentenceLengths),
	})
}

// handleHistory returns the session history with its trend summary
func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	store := s.assistant.Store()
	history := store.History()
	if history == nil {
		history = []types.SessionEntry{}
	}
	resp := HistoryResponse{
		Entries: history,
		Summary: session.Summarize(history),
	}
	if tracker, ok := store.(*session.Tracker); ok {
		resp.SessionID = tracker.ID()
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) observeAnalysis(styleName string, err error) {
	style, parseErr := types.ParseStyle(styleName)
	if parseErr != nil {
		style = types.StyleGeneral
	}
	s.metrics.ObserveAnalysis(style, len(s.assistant.Store().History()), err)
}
