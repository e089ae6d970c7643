// Package fetch retrieves web pages and reduces their HTML to readable text.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Request defaults.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (compatible; WritingOptimizer/1.0)"
	MaxBodyBytes     = 10 << 20
)

// ErrLoginRequired means the page redirected to a Google sign-in form, which is
// what a private document's export link does.
var ErrLoginRequired = errors.New("page requires a Google sign-in; open it with --doc instead")

// Result is one fetched page.
type Result struct {
	URL         string // final URL after redirects
	Body        string
	ContentType string
	StatusCode  int
}

// IsHTML reports whether the response declared an HTML content type.
func (r *Result) IsHTML() bool {
	return mediaType(r.ContentType) == "text/html" || mediaType(r.ContentType) == "application/xhtml+xml"
}

// Error describes a failed fetch.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures a Fetcher. Zero fields take the defaults.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	Client    *http.Client
}

// DefaultOptions returns the default fetch options.
func DefaultOptions() *Options {
	return &Options{Timeout: DefaultTimeout, UserAgent: DefaultUserAgent}
}

// Fetcher downloads text pages over HTTP(S).
type Fetcher struct {
	client    *http.Client
	userAgent string
	headers   map[string]string
}

// New builds a Fetcher from opts; nil opts means DefaultOptions.
func New(opts *Options) *Fetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	f := &Fetcher{client: opts.Client, userAgent: opts.UserAgent, headers: opts.Headers}
	if f.client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		f.client = &http.Client{Timeout: timeout}
	}
	if f.userAgent == "" {
		f.userAgent = DefaultUserAgent
	}
	return f
}

// URL fetches one page with a Fetcher built from opts.
func URL(ctx context.Context, rawURL string, opts *Options) (*Result, error) {
	return New(opts).Get(ctx, rawURL)
}

// Get downloads rawURL. A non-200 status returns both the result and an *Error;
// a sign-in redirect or a binary content type returns only an *Error.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*Result, error) {
	if err := checkURL(rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.1")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	final := resp.Request.URL
	slog.Debug("fetched page", "url", rawURL, "final", final.String(), "status", resp.StatusCode, "elapsed", time.Since(start))
	if isSignInPage(final) {
		return nil, &Error{URL: rawURL, Message: "redirected to sign-in", StatusCode: resp.StatusCode, Cause: ErrLoginRequired}
	}

	contentType := resp.Header.Get("Content-Type")
	if !isTextual(contentType) {
		return nil, &Error{URL: rawURL, Message: fmt.Sprintf("unsupported content type %q", contentType), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to read response body", Cause: err}
	}

	result := &Result{URL: final.String(), Body: string(body), ContentType: contentType, StatusCode: resp.StatusCode}
	if resp.StatusCode != http.StatusOK {
		return result, &Error{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode), StatusCode: resp.StatusCode}
	}
	return result, nil
}

func checkURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &Error{URL: rawURL, Message: "unsupported scheme " + u.Scheme}
	}
	return nil
}

func isSignInPage(u *url.URL) bool {
	return strings.EqualFold(u.Host, "accounts.google.com")
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

// isTextual accepts text/*, XHTML and a missing content type.
func isTextual(contentType string) bool {
	mt := mediaType(contentType)
	return mt == "" || strings.HasPrefix(mt, "text/") || mt == "application/xhtml+xml"
}

// pageNoise is removed from every page before extraction.
const pageNoise = "nav, footer, header, aside, script, style, noscript, template, iframe, svg, .cookie-banner, .popup"

// blockElements end a line of extracted text.
const blockElements = "p, h1, h2, h3, h4, h5, h6, li, br, div, tr, blockquote, pre"

// ExtractMainText returns the readable text of the first element matching one of
// contentSelectors, or of <body> when none match. Page noise and noiseSelectors
// are dropped first; each block element becomes its own line.
func ExtractMainText(html string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	noise := pageNoise
	if len(noiseSelectors) > 0 {
		noise += ", " + strings.Join(noiseSelectors, ", ")
	}
	doc.Find(noise).Remove()

	root := doc.Find("body")
	for _, sel := range contentSelectors {
		if match := doc.Find(sel).First(); match.Length() > 0 {
			root = match
			break
		}
	}

	root.Find(blockElements).AppendHtml("\n")

	var lines []string
	for _, line := range strings.Split(root.Text(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// DefaultTextSelectors are the usual containers of an article's body.
func DefaultTextSelectors() []string {
	return []string{"main", "article", "[role=main]", ".content", "#content", ".post-content", ".entry-content"}
}
