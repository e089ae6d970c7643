package ingestion

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/writing-optimizer/internal/types"
	"github.com/ledongthuc/pdf"
)

// MaxInputBytes bounds text read from a file or reader.
const MaxInputBytes = 20 << 20

// ErrUnsupportedFormat is returned for file extensions with no extractor.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// IngestFromFile extracts and cleans the text of a .txt, .md, .pdf or .docx file.
func IngestFromFile(path string) (string, *Metadata, error) {
	format := formatOf(path)

	var (
		text string
		err  error
	)
	switch format {
	case "txt", "md":
		var raw []byte
		raw, err = readLimited(path)
		text = string(raw)
		if format == "md" {
			text = StripMarkdown(text)
		}
	case "pdf":
		text, err = parsePDF(path)
	case "docx":
		var raw []byte
		if raw, err = readLimited(path); err == nil {
			text, err = parseDOCX(raw)
		}
	default:
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return "", nil, err
	}

	cleaned := CleanText(text)
	if err := types.RequireText("file", cleaned); err != nil {
		return "", nil, fmt.Errorf("no extractable text in %s: %w", path, err)
	}
	return cleaned, NewMetadata(KindFile, path, format, cleaned), nil
}

// IngestFromReader cleans text read from r, such as standard input.
func IngestFromReader(r io.Reader) (string, *Metadata, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxInputBytes))
	if err != nil {
		return "", nil, fmt.Errorf("failed to read input: %w", err)
	}
	cleaned := CleanText(string(raw))
	if err := types.RequireText("input", cleaned); err != nil {
		return "", nil, err
	}
	return cleaned, NewMetadata(KindStdin, "", "txt", cleaned), nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text", "":
		return "txt"
	case ".md", ".markdown":
		return "md"
	case ".pdf":
		return "pdf"
	case ".docx":
		return "docx"
	}
	return ""
}

func readLimited(path string) ([]byte, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("file not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	raw, err := io.ReadAll(io.LimitReader(f, MaxInputBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return raw, nil
}

func parsePDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("file not found: %w", err)
		}
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, pageErr := p.GetPlainText(nil)
		if pageErr != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

// parseDOCX reads the paragraphs of word/document.xml, one per line.
func parseDOCX(raw []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open docx zip: %w", err)
	}

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return "", fmt.Errorf("word/document.xml not found")
	}
	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer func() { _ = rc.Close() }()

	decoder := xml.NewDecoder(io.LimitReader(rc, MaxInputBytes))
	var b strings.Builder
	inText := false
	for {
		tok, tokenErr := decoder.Token()
		if tokenErr == io.EOF {
			break
		}
		if tokenErr != nil {
			return "", fmt.Errorf("decode document.xml: %w", tokenErr)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteString("\t")
			case "br":
				b.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}
