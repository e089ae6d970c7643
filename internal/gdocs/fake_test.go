package gdocs

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"unicode/utf16"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/googleapi"
)

// fakeDocs keeps one document per id as body text (always newline-terminated)
// and applies delete/insert requests at UTF-16 indices the way the Docs API does.
type fakeDocs struct {
	mu        sync.Mutex
	bodies    map[string][]uint16
	revisions map[string]int
	getErr    error
	updateErr error
	updates   []*docs.BatchUpdateDocumentRequest
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{bodies: map[string][]uint16{}, revisions: map[string]int{}}
}

func (f *fakeDocs) put(id, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[id] = utf16.Encode([]rune(text + "\n"))
	f.revisions[id]++
}

func (f *fakeDocs) revision(id string) string {
	return fmt.Sprintf("rev-%d", f.revisions[id])
}

func (f *fakeDocs) Get(_ context.Context, id string) (*docs.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	body, ok := f.bodies[id]
	if !ok {
		return nil, &googleapi.Error{Code: http.StatusNotFound, Message: "Requested entity was not found."}
	}

	content := []*docs.StructuralElement{{StartIndex: 0, EndIndex: 1, SectionBreak: &docs.SectionBreak{}}}
	start := int64(1)
	for _, para := range strings.SplitAfter(string(utf16.Decode(body)), "\n") {
		if para == "" {
			continue
		}
		end := start + int64(len(utf16.Encode([]rune(para))))
		content = append(content, &docs.StructuralElement{
			StartIndex: start,
			EndIndex:   end,
			Paragraph: &docs.Paragraph{Elements: []*docs.ParagraphElement{{
				StartIndex: start,
				EndIndex:   end,
				TextRun:    &docs.TextRun{Content: para},
			}}},
		})
		start = end
	}
	return &docs.Document{DocumentId: id, RevisionId: f.revision(id), Body: &docs.Body{Content: content}}, nil
}

func (f *fakeDocs) BatchUpdate(_ context.Context, id string, req *docs.BatchUpdateDocumentRequest) (*docs.BatchUpdateDocumentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, req)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	body, ok := f.bodies[id]
	if !ok {
		return nil, &googleapi.Error{Code: http.StatusNotFound}
	}
	if req.WriteControl != nil && req.WriteControl.RequiredRevisionId != f.revision(id) {
		return nil, &googleapi.Error{
			Code:    http.StatusBadRequest,
			Message: "The required revision ID does not match the latest revision.",
			Errors:  []googleapi.ErrorItem{{Reason: "failedPrecondition"}},
		}
	}

	for _, r := range req.Requests {
		switch {
		case r.DeleteContentRange != nil:
			lo, hi := r.DeleteContentRange.Range.StartIndex-1, r.DeleteContentRange.Range.EndIndex-1
			if lo < 0 || hi > int64(len(body))-1 || lo >= hi {
				return nil, &googleapi.Error{Code: http.StatusBadRequest, Message: "Invalid deletion range"}
			}
			body = append(body[:lo:lo], body[hi:]...)
		case r.InsertText != nil:
			at := r.InsertText.Location.Index - 1
			if at < 0 || at > int64(len(body))-1 {
				return nil, &googleapi.Error{Code: http.StatusBadRequest, Message: "Invalid insertion index"}
			}
			ins := utf16.Encode([]rune(r.InsertText.Text))
			next := make([]uint16, 0, len(body)+len(ins))
			next = append(next, body[:at]...)
			next = append(next, ins...)
			body = append(next, body[at:]...)
		}
	}
	f.bodies[id] = body
	f.revisions[id]++
	return &docs.BatchUpdateDocumentResponse{DocumentId: id}, nil
}
