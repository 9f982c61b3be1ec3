package spapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLWATokenSource_ExchangeAndReuse(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "Atzr|refresh", r.PostForm.Get("refresh_token"))
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "client-secret", r.PostForm.Get("client_secret"))

		_, _ = w.Write([]byte(`{"access_token":"Atza|access","token_type":"bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewLWATokenSource(srv.Client(), srv.URL, "client-id", "client-secret", "Atzr|refresh")
	s.nowFunc = func() time.Time { return now }

	tok, err := s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Atza|access", tok.AccessToken)
	assert.Equal(t, "bearer", tok.TokenType)
	assert.Equal(t, now.Add(time.Hour), tok.ExpiresAt)

	now = now.Add(58 * time.Minute)
	access, err := s.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Atza|access", access)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	now = now.Add(time.Minute)
	_, err = s.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "token refreshed inside the expiry margin")
}

func TestLWATokenSource_OAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"The request has an invalid grant parameter : refresh_token"}`))
	}))
	defer srv.Close()

	s := NewLWATokenSource(srv.Client(), srv.URL, "id", "secret", "expired")
	_, err := s.Token(context.Background())

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "invalid_grant", apiErr.Code)
	assert.Contains(t, apiErr.Message, "invalid grant parameter")
}

func TestLWATokenSource_MissingAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token_type":"bearer"}`))
	}))
	defer srv.Close()

	s := NewLWATokenSource(srv.Client(), srv.URL, "id", "secret", "refresh")
	_, err := s.Token(context.Background())
	assert.Error(t, err)
}
