// Package gdocs fetches and replaces the text of Google Docs documents and
// owns the OAuth credential lifecycle used to reach them.
package gdocs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonathan/writing-optimizer/internal/types"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

// DefaultTimeout bounds each Docs API call.
const DefaultTimeout = 30 * time.Second

// DocumentService is the subset of the Docs API the gateway uses.
type DocumentService interface {
	Get(ctx context.Context, documentID string) (*docs.Document, error)
	BatchUpdate(ctx context.Context, documentID string, req *docs.BatchUpdateDocumentRequest) (*docs.BatchUpdateDocumentResponse, error)
}

type apiService struct {
	svc *docs.Service
}

func (s *apiService) Get(ctx context.Context, documentID string) (*docs.Document, error) {
	return s.svc.Documents.Get(documentID).Context(ctx).Do()
}

func (s *apiService) BatchUpdate(ctx context.Context, documentID string, req *docs.BatchUpdateDocumentRequest) (*docs.BatchUpdateDocumentResponse, error) {
	return s.svc.Documents.BatchUpdate(documentID, req).Context(ctx).Do()
}

// Gateway reads and writes whole-document text. It never retries; a failed
// call surfaces immediately as *AuthError, *NotFoundError, *ConflictError or a
// wrapped transport error.
type Gateway struct {
	svc     DocumentService
	timeout time.Duration
	observe func(op string, err error)
}

// GatewayOption configures a Gateway
type GatewayOption func(*Gateway)

// WithTimeout bounds each API call. Non-positive values keep the default.
func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithObserver registers a callback invoked after each fetch or save.
func WithObserver(fn func(op string, err error)) GatewayOption {
	return func(g *Gateway) { g.observe = fn }
}

// NewGateway connects to the Docs API with a token from the provider.
func NewGateway(ctx context.Context, auth TokenProvider, opts ...GatewayOption) (*Gateway, error) {
	ts, err := auth.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := docs.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create Docs service: %w", err)
	}
	return NewGatewayWithService(&apiService{svc: svc}, opts...), nil
}

// NewGatewayWithService builds a gateway over any DocumentService.
func NewGatewayWithService(svc DocumentService, opts ...GatewayOption) *Gateway {
	g := &Gateway{svc: svc, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Fetch returns the document's full plain text.
func (g *Gateway) Fetch(ctx context.Context, documentID string) (text string, err error) {
	defer func() { g.report("fetch", err) }()

	documentID, err = normalizeID(documentID)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	doc, err := g.svc.Get(ctx, documentID)
	if err != nil {
		return "", classify("fetch", documentID, err)
	}
	slog.Debug("fetched document", "document_id", documentID, "revision", doc.RevisionId)
	return PlainText(doc), nil
}

// Save replaces the document's body text with text in a single batch update
// pinned to the revision that was just read.
func (g *Gateway) Save(ctx context.Context, documentID, text string) (err error) {
	defer func() { g.report("save", err) }()

	documentID, err = normalizeID(documentID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	doc, err := g.svc.Get(ctx, documentID)
	if err != nil {
		return classify("save", documentID, err)
	}
	end := bodyEnd(doc)
	if end < 1 {
		return &ConflictError{DocumentID: documentID, Message: "document body has an unexpected shape"}
	}

	reqs := replaceAllRequests(end, text)
	if len(reqs) == 0 {
		return nil
	}

	_, err = g.svc.BatchUpdate(ctx, documentID, &docs.BatchUpdateDocumentRequest{
		Requests:     reqs,
		WriteControl: &docs.WriteControl{RequiredRevisionId: doc.RevisionId},
	})
	if err != nil {
		return classify("save", documentID, err)
	}
	slog.Debug("saved document", "document_id", documentID, "base_revision", doc.RevisionId, "requests", len(reqs))
	return nil
}

func (g *Gateway) report(op string, err error) {
	if g.observe != nil {
		g.observe(op, err)
	}
}

// normalizeID accepts a bare document id or a full docs.google.com URL.
func normalizeID(documentID string) (string, error) {
	id := strings.TrimSpace(documentID)
	if i := strings.Index(id, "/document/d/"); i >= 0 {
		id = id[i+len("/document/d/"):]
		if j := strings.IndexAny(id, "/?#"); j >= 0 {
			id = id[:j]
		}
	}
	if id == "" {
		return "", &types.ValidationError{Field: "document_id", Message: "document id is empty"}
	}
	return id, nil
}
