package fetch

import (
	"net/url"
	"strings"
)

// Source classifies a URL so the right selectors and rewrites apply.
type Source string

const (
	// SourceGoogleDoc is an editor URL: docs.google.com/document/d/<id>/...
	SourceGoogleDoc Source = "google-doc"
	// SourceGoogleDocPublished is a "Publish to the web" URL: docs.google.com/document/d/e/<key>/pub
	SourceGoogleDocPublished Source = "google-doc-published"
	// SourceWeb is any other page
	SourceWeb Source = "web"
)

// DetectSource identifies the kind of page behind a URL.
func DetectSource(urlStr string) Source {
	parsed, err := url.Parse(urlStr)
	if err != nil || !strings.EqualFold(parsed.Host, "docs.google.com") {
		return SourceWeb
	}
	if !strings.HasPrefix(parsed.Path, "/document/d/") {
		return SourceWeb
	}
	if strings.HasPrefix(parsed.Path, "/document/d/e/") {
		return SourceGoogleDocPublished
	}
	return SourceGoogleDoc
}

// GoogleDocID returns the document id in an editor URL, or "".
func GoogleDocID(urlStr string) string {
	if DetectSource(urlStr) != SourceGoogleDoc {
		return ""
	}
	parsed, _ := url.Parse(urlStr)
	rest := strings.TrimPrefix(parsed.Path, "/document/d/")
	if i := strings.Index(rest, "/"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

// ExportURL rewrites an editor URL to its plain-text export, which is readable
// without OAuth when the document is shared publicly. Other URLs are returned unchanged.
func ExportURL(urlStr string) string {
	id := GoogleDocID(urlStr)
	if id == "" {
		return urlStr
	}
	return "https://docs.google.com/document/d/" + id + "/export?format=txt"
}

// SourceContentSelectors returns the content selectors to try for a source.
func SourceContentSelectors(source Source) []string {
	switch source {
	case SourceGoogleDocPublished:
		return []string{
			"#contents",
			".doc-content",
		}
	default:
		return DefaultTextSelectors()
	}
}

// SourceNoiseSelectors returns elements to strip before extracting text.
func SourceNoiseSelectors(source Source) []string {
	common := []string{
		"form",
		".social-share",
		".share-buttons",
		".cookie-consent",
		".gdpr-notice",
	}
	switch source {
	case SourceGoogleDocPublished:
		return append(common,
			"#header",
			"#footer",
			"#banners",
			".dash",
		)
	default:
		return common
	}
}
