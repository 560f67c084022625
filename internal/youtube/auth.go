package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	yt "google.golang.org/api/youtube/v3"
)

// LoadToken reads an OAuth2 token stored as JSON.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, fmt.Errorf("token file %s has neither access nor refresh token", path)
	}
	return &tok, nil
}

// SaveToken writes tok as JSON, replacing path atomically.
func SaveToken(path string, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".token-*")
	if err != nil {
		return fmt.Errorf("create temp token: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write token: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close token: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace token: %w", err)
	}
	return nil
}

// TokenSource returns a token source for the stored user token. If the
// OAuth client secret file exists the token is refreshed when it expires
// and each new token is saved back to tokenPath; otherwise the stored
// token is used as is.
func TokenSource(ctx context.Context, tokenPath, clientSecretPath string, log *slog.Logger) (oauth2.TokenSource, error) {
	tok, err := LoadToken(tokenPath)
	if err != nil {
		return nil, err
	}

	secret, err := os.ReadFile(clientSecretPath) //nolint:gosec // path comes from configuration
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn("client secret not found; youtube token will not be refreshed", "path", clientSecretPath)
		return oauth2.StaticTokenSource(tok), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read client secret: %w", err)
	}

	cfg, err := google.ConfigFromJSON(secret, yt.YoutubeForceSslScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secret: %w", err)
	}
	return &savingTokenSource{
		base: cfg.TokenSource(ctx, tok),
		path: tokenPath,
		last: tok.AccessToken,
		log:  log,
	}, nil
}

// savingTokenSource persists every token that differs from the last one seen.
type savingTokenSource struct {
	mu   sync.Mutex
	base oauth2.TokenSource
	path string
	last string
	log  *slog.Logger
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := SaveToken(s.path, tok); err != nil {
			s.log.Error("save refreshed youtube token", "path", s.path, "error", err)
		} else {
			s.log.Info("youtube token refreshed", "expiry", tok.Expiry)
		}
	}
	return tok, nil
}
