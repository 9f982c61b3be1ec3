package spapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// tokenExpiryMargin drops a cached access token this long before LWA says it expires.
const tokenExpiryMargin = time.Minute

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Token is an LWA access token.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"-"`
}

// LWATokenSource exchanges a refresh token for access tokens and reuses each
// until shortly before it expires.
type LWATokenSource struct {
	httpClient   HTTPDoer
	tokenURL     string
	clientID     string
	clientSecret string
	refreshToken string
	nowFunc      func() time.Time

	mu      sync.Mutex
	current *Token
}

// NewLWATokenSource returns a token source. httpClient may be nil.
func NewLWATokenSource(httpClient HTTPDoer, tokenURL, clientID, clientSecret, refreshToken string) *LWATokenSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &LWATokenSource{
		httpClient:   httpClient,
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		nowFunc:      time.Now,
	}
}

// AccessToken returns a valid access token string.
func (s *LWATokenSource) AccessToken(ctx context.Context) (string, error) {
	tok, err := s.Token(ctx)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// Token returns the cached token or performs the refresh-token grant.
func (s *LWATokenSource) Token(ctx context.Context) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.nowFunc().Before(s.current.ExpiresAt.Add(-tokenExpiryMargin)) {
		return s.current, nil
	}

	tok, err := s.exchange(ctx)
	if err != nil {
		return nil, err
	}
	s.current = tok
	return tok, nil
}

func (s *LWATokenSource) exchange(ctx context.Context) (*Token, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {s.refreshToken},
		"client_id":     {s.clientID},
		"client_secret": {s.clientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build lwa request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lwa token exchange: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read lwa response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newLWAError(resp.StatusCode, body)
	}

	var tok Token
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, fmt.Errorf("decode lwa response: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, &Error{StatusCode: resp.StatusCode, Code: "LWA_ERROR", Message: "token response without access_token"}
	}
	tok.ExpiresAt = s.nowFunc().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return &tok, nil
}

// newLWAError maps an OAuth error body ({"error","error_description"}).
func newLWAError(status int, body []byte) *Error {
	e := &Error{StatusCode: status, Code: "LWA_ERROR", Message: http.StatusText(status), Details: string(body)}
	var oauth struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &oauth); err == nil && oauth.Error != "" {
		e.Code = oauth.Error
		if oauth.Description != "" {
			e.Message = oauth.Description
		}
	}
	return e
}
