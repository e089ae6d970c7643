package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Kind says where ingested text came from.
type Kind string

// Ingestion sources
const (
	KindFile  Kind = "file"
	KindURL   Kind = "url"
	KindStdin Kind = "stdin"
)

// Metadata describes one ingested document
type Metadata struct {
	Kind      Kind   `json:"kind"`
	Source    string `json:"source,omitempty"` // file path or URL
	Format    string `json:"format"`           // txt, md, pdf, docx, html
	Timestamp string `json:"timestamp"`        // RFC3339
	Hash      string `json:"hash"`             // SHA-256 of the cleaned text
	Words     int    `json:"words"`
}

// NewMetadata stamps cleaned content with its hash, word count and the current time.
func NewMetadata(kind Kind, source, format, content string) *Metadata {
	sum := sha256.Sum256([]byte(content))
	return &Metadata{
		Kind:      kind,
		Source:    source,
		Format:    format,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      hex.EncodeToString(sum[:]),
		Words:     len(strings.Fields(content)),
	}
}
