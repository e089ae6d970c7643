package gdocs

import (
	"strings"

	"google.golang.org/api/docs/v1"
)

// PlainText concatenates the text runs of every paragraph in the document body,
// including paragraphs nested in tables and tables of contents. Only the body's
// terminating newline is dropped, so text written by Save reads back unchanged.
func PlainText(doc *docs.Document) string {
	if doc == nil || doc.Body == nil {
		return ""
	}
	var b strings.Builder
	writeElements(&b, doc.Body.Content)
	return strings.TrimSuffix(b.String(), "\n")
}

func writeElements(b *strings.Builder, elements []*docs.StructuralElement) {
	for _, el := range elements {
		switch {
		case el.Paragraph != nil:
			for _, pe := range el.Paragraph.Elements {
				if pe.TextRun != nil {
					b.WriteString(pe.TextRun.Content)
				}
			}
		case el.Table != nil:
			for _, row := range el.Table.TableRows {
				for _, cell := range row.TableCells {
					writeElements(b, cell.Content)
				}
			}
		case el.TableOfContents != nil:
			writeElements(b, el.TableOfContents.Content)
		}
	}
}

// bodyEnd returns the end index of the last structural element, or 0 for an empty body.
func bodyEnd(doc *docs.Document) int64 {
	if doc == nil || doc.Body == nil || len(doc.Body.Content) == 0 {
		return 0
	}
	return doc.Body.Content[len(doc.Body.Content)-1].EndIndex
}

// replaceAllRequests builds the edits that replace the body text. The first
// index is the section break and the final newline cannot be deleted, so the
// deletable range is [1, end-1).
func replaceAllRequests(end int64, text string) []*docs.Request {
	var reqs []*docs.Request
	if end-1 > 1 {
		reqs = append(reqs, &docs.Request{
			DeleteContentRange: &docs.DeleteContentRangeRequest{
				Range: &docs.Range{StartIndex: 1, EndIndex: end - 1},
			},
		})
	}
	if text != "" {
		reqs = append(reqs, &docs.Request{
			InsertText: &docs.InsertTextRequest{
				Location: &docs.Location{Index: 1},
				Text:     text,
			},
		})
	}
	return reqs
}
