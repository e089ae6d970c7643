package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonathan/writing-optimizer/internal/fetch"
	"github.com/jonathan/writing-optimizer/internal/types"
)

// IngestFromURL fetches a page and returns its cleaned main text.
// Editor links to Google Docs are rewritten to the plain-text export, which
// works for documents shared publicly; private documents go through the gateway.
func IngestFromURL(ctx context.Context, urlStr string, opts *fetch.Options) (string, *Metadata, error) {
	source := fetch.DetectSource(urlStr)
	target := fetch.ExportURL(urlStr)
	slog.Debug("ingesting URL", "url", urlStr, "source", source, "target", target)

	result, err := fetch.URL(ctx, target, opts)
	if err != nil {
		return "", nil, err
	}

	var text, format string
	if result.IsHTML() {
		format = "html"
		text, err = fetch.ExtractMainText(result.Body,
			fetch.SourceContentSelectors(source), fetch.SourceNoiseSelectors(source)...)
		if err != nil {
			return "", nil, fmt.Errorf("content extraction failed: %w", err)
		}
	} else {
		format = "txt"
		text = result.Body
	}

	cleaned := CleanText(text)
	if err := types.RequireText("url", cleaned); err != nil {
		return "", nil, fmt.Errorf("no readable text at %s: %w", urlStr, err)
	}
	return cleaned, NewMetadata(KindURL, urlStr, format, cleaned), nil
}
