package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/arredohq/arredo/internal/shared"
	"golang.org/x/oauth2"
)

// TokenStore persists the CRM token pair to disk between invocations.
// The CLI has no long-lived process, so every command reloads the token.
type TokenStore struct {
	path string
}

// NewTokenStore creates a store writing to the given path.
func NewTokenStore(path string) *TokenStore {
	if path == "" {
		path = "auth.json"
	}
	return &TokenStore{path: path}
}

// Load reads the persisted token. A missing file yields ErrNotAuthenticated.
func (s *TokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: run `arredo login` first", shared.ErrNotAuthenticated)
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}

	return &token, nil
}

// Save writes the token with owner-only permissions.
func (s *TokenStore) Save(token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// Clear removes the persisted token.
func (s *TokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// StaticToken wraps a bare access token (e.g. imported from a cURL command)
// as an [oauth2.Token] with no expiry.
func StaticToken(accessToken string) *oauth2.Token {
	return &oauth2.Token{AccessToken: accessToken}
}

// refreshingTokenSource implements [oauth2.TokenSource] against the CRM's
// refresh endpoint, persisting each refreshed pair back to the store.
type refreshingTokenSource struct {
	mu         sync.Mutex
	baseURL    string
	httpClient *http.Client
	store      *TokenStore
	current    *oauth2.Token
}

// NewTokenSource returns a token source seeded with token that refreshes
// through the CRM when the access token expires.
func NewTokenSource(baseURL string, client *http.Client, store *TokenStore, token *oauth2.Token) oauth2.TokenSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &refreshingTokenSource{
		baseURL:    baseURL,
		httpClient: client,
		store:      store,
		current:    token,
	}
}

func (ts *refreshingTokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.current != nil && ts.current.Valid() {
		return ts.current, nil
	}

	if ts.current == nil || ts.current.RefreshToken == "" {
		return nil, shared.ErrNoRefreshToken
	}

	refreshed, err := ts.refresh(ts.current.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	ts.current = refreshed
	if ts.store != nil {
		if err := ts.store.Save(refreshed); err != nil {
			return nil, err
		}
	}

	return refreshed, nil
}

func (ts *refreshingTokenSource) refresh(refreshToken string) (*oauth2.Token, error) {
	payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, ts.baseURL+"/auth/refresh", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var pair TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return nil, err
	}

	return PairToken(&pair), nil
}

// PairToken converts a CRM token pair into an [oauth2.Token]. The CRM does
// not report expiry, so tokens are treated as short-lived and refreshed
// eagerly after an hour.
func PairToken(pair *TokenPair) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Expiry:       time.Now().Add(time.Hour),
	}
}
