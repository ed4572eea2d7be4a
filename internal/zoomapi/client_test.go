package zoomapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestClient(serverURL string, sendVerifier bool) *Client {
	return NewClient(Options{
		PlatformHost:     serverURL,
		ClientID:         "client-id",
		ClientSecret:     "client-secret",
		RedirectURL:      "https://app.example.com/auth",
		SendCodeVerifier: sendVerifier,
		Timeout:          2 * time.Second,
	})
}

func TestExchangeCode(t *testing.T) {
	tests := []struct {
		name         string
		sendVerifier bool
	}{
		{name: "with code verifier", sendVerifier: true},
		{name: "without code verifier", sendVerifier: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/oauth/token", r.URL.Path)

				user, pass, ok := r.BasicAuth()
				assert.True(t, ok, "expected basic auth")
				assert.Equal(t, "client-id", user)
				assert.Equal(t, "client-secret", pass)

				require.NoError(t, r.ParseForm())
				assert.Equal(t, "the-code", r.PostForm.Get("code"))
				assert.Equal(t, "https://app.example.com/auth", r.PostForm.Get("redirect_uri"))
				assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
				assert.Empty(t, r.PostForm.Get("client_secret"))
				if tt.sendVerifier {
					assert.Equal(t, "the-verifier", r.PostForm.Get("code_verifier"))
				} else {
					assert.False(t, r.PostForm.Has("code_verifier"))
				}

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"access_token":"access-123","token_type":"bearer","expires_in":3600}`))
			}))
			defer server.Close()

			token, err := newTestClient(server.URL, tt.sendVerifier).ExchangeCode(context.Background(), "the-code", "the-verifier")
			require.NoError(t, err)
			assert.Equal(t, "access-123", token.AccessToken)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestExchangeCodeErrors(t *testing.T) {
	t.Run("non 2xx is an upstream error", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL, true).ExchangeCode(context.Background(), "the-code", "v")
		require.Error(t, err)

		var uerr *UpstreamError
		require.True(t, errors.As(err, &uerr))
		assert.Equal(t, OpTokenExchange, uerr.Op)
		assert.Equal(t, http.StatusBadRequest, uerr.StatusCode)
		assert.Equal(t, int32(1), calls.Load(), "codes are single use and must not be retried")
	})

	t.Run("malformed json", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL, true).ExchangeCode(context.Background(), "the-code", "v")
		var uerr *UpstreamError
		require.True(t, errors.As(err, &uerr))
		assert.Equal(t, OpTokenExchange, uerr.Op)
	})

	t.Run("missing access token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"token_type":"bearer"}`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL, true).ExchangeCode(context.Background(), "the-code", "v")
		var uerr *UpstreamError
		require.True(t, errors.As(err, &uerr))
	})

	t.Run("unresponsive upstream times out", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		}))
		defer server.Close()

		client := NewClient(Options{
			PlatformHost: server.URL,
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			Timeout:      50 * time.Millisecond,
		})

		start := time.Now()
		_, err := client.ExchangeCode(context.Background(), "the-code", "v")
		require.Error(t, err)
		assert.Less(t, time.Since(start), 2*time.Second)
	})
}

func TestDeepLink(t *testing.T) {
	t.Run("sends bearer token and action", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, DeepLinkPath, r.URL.Path)
			assert.Equal(t, "Bearer access-123", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body deepLinkRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

			var action DeepLinkAction
			require.NoError(t, json.Unmarshal([]byte(body.Action), &action))
			assert.Equal(t, DefaultDeepLinkAction(), action)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"deeplink":"zoommtg://zoom.us/app?token=abc"}`))
		}))
		defer server.Close()

		link, err := newTestClient(server.URL, true).DeepLink(context.Background(), &oauth2.Token{AccessToken: "access-123", TokenType: "bearer"}, DefaultDeepLinkAction())
		require.NoError(t, err)
		assert.Equal(t, "zoommtg://zoom.us/app?token=abc", link)
	})

	t.Run("uses api host when set", func(t *testing.T) {
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"deeplink":"zoommtg://api"}`))
		}))
		defer api.Close()

		client := NewClient(Options{PlatformHost: "http://127.0.0.1:1", APIHost: api.URL + "/"})
		link, err := client.DeepLink(context.Background(), &oauth2.Token{AccessToken: "t"}, DefaultDeepLinkAction())
		require.NoError(t, err)
		assert.Equal(t, "zoommtg://api", link)
	})

	t.Run("non 2xx", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":124,"message":"Invalid access token."}`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL, true).DeepLink(context.Background(), &oauth2.Token{AccessToken: "t"}, DefaultDeepLinkAction())
		var uerr *UpstreamError
		require.True(t, errors.As(err, &uerr))
		assert.Equal(t, OpDeepLink, uerr.Op)
		assert.Equal(t, http.StatusUnauthorized, uerr.StatusCode)
	})

	t.Run("missing deeplink", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL, true).DeepLink(context.Background(), &oauth2.Token{AccessToken: "t"}, DefaultDeepLinkAction())
		var uerr *UpstreamError
		require.True(t, errors.As(err, &uerr))
		assert.Contains(t, uerr.Error(), "missing deeplink")
	})

	t.Run("malformed json", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL, true).DeepLink(context.Background(), &oauth2.Token{AccessToken: "t"}, DefaultDeepLinkAction())
		assert.Error(t, err)
	})
}
