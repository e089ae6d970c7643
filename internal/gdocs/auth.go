package gdocs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/docs/v1"
)

// Default locations of the OAuth client descriptor and the cached user token.
const (
	DefaultCredentialsFile = "credentials.json"
	DefaultTokenFile       = "token.json"
)

// TokenProvider yields an OAuth2 token source with document read/write scope.
type TokenProvider interface {
	TokenSource(ctx context.Context) (oauth2.TokenSource, error)
}

// LoadOAuthConfig reads a client descriptor downloaded from the Google Cloud console.
func LoadOAuthConfig(credentialsFile string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, &AuthError{Message: fmt.Sprintf("cannot read OAuth client file %s", credentialsFile), Cause: err}
	}
	cfg, err := google.ConfigFromJSON(data, docs.DocumentsScope)
	if err != nil {
		return nil, &AuthError{Message: "invalid OAuth client file", Cause: err}
	}
	return cfg, nil
}

// SelectAuth returns CachedTokenAuth when tokenFile exists and InteractiveConsentAuth otherwise.
func SelectAuth(cfg *oauth2.Config, tokenFile string, out io.Writer) TokenProvider {
	if _, err := os.Stat(tokenFile); err == nil {
		return &CachedTokenAuth{Config: cfg, TokenFile: tokenFile}
	}
	return &InteractiveConsentAuth{Config: cfg, TokenFile: tokenFile, Out: out}
}

// CachedTokenAuth reuses a token saved by an earlier consent. Expired access
// tokens are refreshed silently and the refreshed token is written back.
type CachedTokenAuth struct {
	Config    *oauth2.Config
	TokenFile string
}

// TokenSource implements TokenProvider
func (a *CachedTokenAuth) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	tok, err := ReadToken(a.TokenFile)
	if err != nil {
		return nil, err
	}
	if !tok.Valid() && tok.RefreshToken == "" {
		return nil, &AuthError{Message: "cached token expired and has no refresh token; run the auth command again"}
	}

	base := a.Config.TokenSource(ctx, tok)
	return oauth2.ReuseTokenSource(tok, &persistingSource{
		base:      base,
		tokenFile: a.TokenFile,
		last:      tok.AccessToken,
	}), nil
}

// persistingSource writes each newly issued token to disk.
type persistingSource struct {
	base      oauth2.TokenSource
	tokenFile string

	mu   sync.Mutex
	last string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, &AuthError{Message: "token refresh failed", Cause: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := WriteToken(s.tokenFile, tok); err != nil {
			slog.Warn("could not persist refreshed token", "file", s.tokenFile, "error", err)
		} else {
			slog.Debug("refreshed OAuth token", "expiry", tok.Expiry)
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}

// InteractiveConsentAuth runs the browser consent flow once. It listens on a
// loopback port for the redirect, exchanges the code and caches the token.
type InteractiveConsentAuth struct {
	Config    *oauth2.Config
	TokenFile string
	Out       io.Writer
	// ListenAddr defaults to 127.0.0.1:0.
	ListenAddr string
}

// TokenSource implements TokenProvider
func (a *InteractiveConsentAuth) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	tok, cfg, err := a.consent(ctx)
	if err != nil {
		return nil, err
	}
	return cfg.TokenSource(ctx, tok), nil
}

func (a *InteractiveConsentAuth) consent(ctx context.Context) (*oauth2.Token, *oauth2.Config, error) {
	addr := a.ListenAddr
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, &AuthError{Message: "cannot listen for OAuth redirect", Cause: err}
	}

	cfg := *a.Config
	cfg.RedirectURL = "http://" + ln.Addr().String() + "/"
	state := uuid.NewString()

	out := a.Out
	if out == nil {
		out = os.Stderr
	}
	_, _ = fmt.Fprintf(out, "Open this URL in your browser to grant document access:\n\n%s\n\n",
		cfg.AuthCodeURL(state, oauth2.AccessTypeOffline))

	code, err := waitForCode(ctx, ln, state)
	if err != nil {
		return nil, nil, err
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, nil, &AuthError{Message: "authorization code exchange failed", Cause: err}
	}
	if a.TokenFile != "" {
		if err := WriteToken(a.TokenFile, tok); err != nil {
			return nil, nil, err
		}
	}
	return tok, &cfg, nil
}

type redirectResult struct {
	code string
	err  error
}

// waitForCode serves one OAuth redirect on ln and returns its authorization code.
func waitForCode(ctx context.Context, ln net.Listener, state string) (string, error) {
	results := make(chan redirectResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res redirectResult
		switch {
		case q.Get("state") != state:
			res.err = &AuthError{Message: "OAuth redirect state mismatch"}
		case q.Get("error") != "":
			res.err = &AuthError{Message: "consent denied: " + q.Get("error")}
		case q.Get("code") == "":
			res.err = &AuthError{Message: "OAuth redirect carried no code"}
		default:
			res.code = q.Get("code")
		}
		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			_, _ = io.WriteString(w, "Authorization complete. You can close this tab.\n")
		}
		select {
		case results <- res:
		default:
		}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	select {
	case <-ctx.Done():
		return "", &AuthError{Message: "timed out waiting for consent", Cause: ctx.Err()}
	case res := <-results:
		return res.code, res.err
	}
}

// ReadToken loads a cached token. A missing file is an *AuthError.
func ReadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &AuthError{Message: fmt.Sprintf("no cached token at %s; run the auth command first", path)}
	}
	if err != nil {
		return nil, &AuthError{Message: "cannot read cached token", Cause: err}
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, &AuthError{Message: "cached token is corrupt", Cause: err}
	}
	return &tok, nil
}

// WriteToken stores a token with owner-only permissions.
func WriteToken(path string, tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
