package gdocs

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jonathan/writing-optimizer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/googleapi"
)

func TestFetch(t *testing.T) {
	fake := newFakeDocs()
	fake.put("doc-1", "First paragraph.\nSecond paragraph.")
	gw := NewGatewayWithService(fake)

	text, err := gw.Fetch(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", text)
}

func TestFetch_AcceptsDocumentURL(t *testing.T) {
	fake := newFakeDocs()
	fake.put("abc123", "Hello.")
	gw := NewGatewayWithService(fake)

	text, err := gw.Fetch(context.Background(), "https://docs.google.com/document/d/abc123/edit?tab=t.0")
	require.NoError(t, err)
	assert.Equal(t, "Hello.", text)
}

func TestFetch_Errors(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		err   error
		check func(t *testing.T, err error)
	}{
		{
			name: "missing document",
			id:   "nope",
			check: func(t *testing.T, err error) {
				var nf *NotFoundError
				require.ErrorAs(t, err, &nf)
				assert.Equal(t, "nope", nf.DocumentID)
			},
		},
		{
			name: "empty id",
			id:   "  ",
			check: func(t *testing.T, err error) {
				var ve *types.ValidationError
				require.ErrorAs(t, err, &ve)
			},
		},
		{
			name: "forbidden",
			id:   "doc-1",
			err:  &googleapi.Error{Code: http.StatusForbidden},
			check: func(t *testing.T, err error) {
				var ae *AuthError
				require.ErrorAs(t, err, &ae)
			},
		},
		{
			name: "unauthorized",
			id:   "doc-1",
			err:  &googleapi.Error{Code: http.StatusUnauthorized},
			check: func(t *testing.T, err error) {
				var ae *AuthError
				require.ErrorAs(t, err, &ae)
			},
		},
		{
			name: "token refresh failure passes through",
			id:   "doc-1",
			err:  &AuthError{Message: "token refresh failed"},
			check: func(t *testing.T, err error) {
				var ae *AuthError
				require.ErrorAs(t, err, &ae)
				assert.Contains(t, err.Error(), "token refresh failed")
			},
		},
		{
			name: "server error is wrapped",
			id:   "doc-1",
			err:  &googleapi.Error{Code: http.StatusInternalServerError, Message: "backend"},
			check: func(t *testing.T, err error) {
				var apiErr *googleapi.Error
				require.ErrorAs(t, err, &apiErr)
				assert.Contains(t, err.Error(), "fetch \"doc-1\"")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeDocs()
			fake.put("doc-1", "text")
			fake.getErr = tt.err
			var observed []string
			gw := NewGatewayWithService(fake, WithObserver(func(op string, err error) {
				if err != nil {
					observed = append(observed, op)
				}
			}))

			_, err := gw.Fetch(context.Background(), tt.id)
			require.Error(t, err)
			tt.check(t, err)
			assert.Equal(t, []string{"fetch"}, observed)
		})
	}
}

func TestSaveThenFetch_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		original string
		edited   string
	}{
		{"replace text", "Old draft with several words.\nAnd a second line.", "New draft.\nShorter."},
		{"empty document", "", "Fresh content."},
		{"non-BMP characters", "Emoji 😀 before.", "Emoji 🎉 after, ünïcödé."},
		{"same length", "abc", "xyz"},
		{"leading indentation", "Old.", "  indented first line\nsecond"},
		{"trailing newline", "Old.", "ends with newline\n"},
		{"blank lines kept", "Old.", "\n\nafter two blank lines\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeDocs()
			fake.put("doc", tt.original)
			gw := NewGatewayWithService(fake)

			require.NoError(t, gw.Save(context.Background(), "doc", tt.edited))
			got, err := gw.Fetch(context.Background(), "doc")
			require.NoError(t, err)
			assert.Equal(t, tt.edited, got)
		})
	}
}

func TestSave_RequestShape(t *testing.T) {
	fake := newFakeDocs()
	fake.put("doc", "Hello world")
	gw := NewGatewayWithService(fake)

	require.NoError(t, gw.Save(context.Background(), "doc", "Hi"))
	require.Len(t, fake.updates, 1)

	req := fake.updates[0]
	require.NotNil(t, req.WriteControl)
	assert.Equal(t, "rev-1", req.WriteControl.RequiredRevisionId)
	require.Len(t, req.Requests, 2)
	assert.Equal(t, &docs.Range{StartIndex: 1, EndIndex: 12}, req.Requests[0].DeleteContentRange.Range)
	assert.Equal(t, int64(1), req.Requests[1].InsertText.Location.Index)
	assert.Equal(t, "Hi", req.Requests[1].InsertText.Text)
}

func TestSave_EmptyOverEmptyIsNoop(t *testing.T) {
	fake := newFakeDocs()
	fake.put("doc", "")
	gw := NewGatewayWithService(fake)

	require.NoError(t, gw.Save(context.Background(), "doc", ""))
	assert.Empty(t, fake.updates)
}

func TestSave_RevisionConflict(t *testing.T) {
	fake := newFakeDocs()
	fake.put("doc", "base")
	fake.updateErr = &googleapi.Error{
		Code:   http.StatusBadRequest,
		Errors: []googleapi.ErrorItem{{Reason: "failedPrecondition"}},
	}
	gw := NewGatewayWithService(fake)

	err := gw.Save(context.Background(), "doc", "edited")
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "doc", conflict.DocumentID)
}

func TestSave_HTTPConflict(t *testing.T) {
	fake := newFakeDocs()
	fake.put("doc", "base")
	fake.updateErr = &googleapi.Error{Code: http.StatusConflict}
	gw := NewGatewayWithService(fake)

	err := gw.Save(context.Background(), "doc", "edited")
	var conflict *ConflictError
	assert.True(t, errors.As(err, &conflict))
}

func TestSave_UnexpectedShape(t *testing.T) {
	gw := NewGatewayWithService(&shapelessDocs{})

	err := gw.Save(context.Background(), "doc", "edited")
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Message, "unexpected shape")
}

func TestSave_DoesNotRetry(t *testing.T) {
	fake := newFakeDocs()
	fake.put("doc", "base")
	fake.updateErr = &googleapi.Error{Code: http.StatusServiceUnavailable}
	gw := NewGatewayWithService(fake)

	require.Error(t, gw.Save(context.Background(), "doc", "edited"))
	assert.Len(t, fake.updates, 1)
}

type shapelessDocs struct{}

func (shapelessDocs) Get(context.Context, string) (*docs.Document, error) {
	return &docs.Document{DocumentId: "doc"}, nil
}

func (shapelessDocs) BatchUpdate(context.Context, string, *docs.BatchUpdateDocumentRequest) (*docs.BatchUpdateDocumentResponse, error) {
	return nil, errors.New("should not be called")
}

func TestPlainText_IncludesTables(t *testing.T) {
	run := func(s string) *docs.StructuralElement {
		return &docs.StructuralElement{Paragraph: &docs.Paragraph{Elements: []*docs.ParagraphElement{{TextRun: &docs.TextRun{Content: s}}}}}
	}
	doc := &docs.Document{Body: &docs.Body{Content: []*docs.StructuralElement{
		{SectionBreak: &docs.SectionBreak{}},
		run("Intro.\n"),
		{Table: &docs.Table{TableRows: []*docs.TableRow{{TableCells: []*docs.TableCell{
			{Content: []*docs.StructuralElement{run("Cell A\n")}},
			{Content: []*docs.StructuralElement{run("Cell B\n")}},
		}}}}},
		run("Outro.\n"),
	}}}

	assert.Equal(t, "Intro.\nCell A\nCell B\nOutro.", PlainText(doc))
	assert.Equal(t, "", PlainText(nil))
}
