// Package zoomapi talks to the platform on behalf of the callback handler:
// it exchanges the authorization code for an access token and uses that
// token once to request a deep link. Nothing is retried since codes are
// single use, and nothing is persisted.
package zoomapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dgellow/zoomapp-front/internal/ioutil"
	"github.com/dgellow/zoomapp-front/internal/log"
	"github.com/dgellow/zoomapp-front/internal/pkce"
	"github.com/dgellow/zoomapp-front/internal/urlutil"
	"golang.org/x/oauth2"
)

// DeepLinkPath is the deep-link endpoint on the API host.
const DeepLinkPath = "/v2/zoomapp/deeplink"

const maxResponseBytes = 1 << 20

// Operation names used in errors and metrics.
const (
	OpTokenExchange = "token_exchange"
	OpDeepLink      = "deeplink"
)

// UpstreamError is a failed call to the platform. StatusCode is zero when no
// response was received.
type UpstreamError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Options configures a Client.
type Options struct {
	PlatformHost string
	// APIHost serves the deep-link endpoint. Defaults to PlatformHost.
	APIHost      string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// SendCodeVerifier adds code_verifier to the token request. Some platform
	// revisions ignore it, others require it.
	SendCodeVerifier bool
	Timeout          time.Duration
	// HTTPClient is the base client for both calls; tests point it at a fake.
	HTTPClient *http.Client
}

// Client is safe for concurrent use; it holds only read-only configuration.
type Client struct {
	config       oauth2.Config
	apiHost      string
	sendVerifier bool
	timeout      time.Duration
	httpClient   *http.Client
}

// NewClient creates a platform client.
func NewClient(opts Options) *Client {
	apiHost := opts.APIHost
	if apiHost == "" {
		apiHost = opts.PlatformHost
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}

	return &Client{
		config: oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURL,
			Endpoint:     pkce.Endpoint(opts.PlatformHost),
		},
		apiHost:      apiHost,
		sendVerifier: opts.SendCodeVerifier,
		timeout:      timeout,
		httpClient:   httpClient,
	}
}

func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return context.WithTimeout(ctx, c.timeout)
}

// ExchangeCode trades an authorization code for an access token using HTTP
// Basic client authentication.
func (c *Client) ExchangeCode(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	var opts []oauth2.AuthCodeOption
	if c.sendVerifier && verifier != "" {
		opts = append(opts, oauth2.VerifierOption(verifier))
	}

	start := time.Now()
	token, err := c.config.Exchange(ctx, code, opts...)
	if err != nil {
		uerr := &UpstreamError{Op: OpTokenExchange, Err: err}
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil {
			uerr.StatusCode = rerr.Response.StatusCode
		}
		observeUpstream(OpTokenExchange, uerr.StatusCode, start)
		return nil, uerr
	}
	observeUpstream(OpTokenExchange, http.StatusOK, start)

	log.LogDebugWithFields("zoomapi", "Access token obtained", map[string]any{
		"token_type":    token.Type(),
		"duration_ms":   time.Since(start).Milliseconds(),
		"code_verifier": c.sendVerifier,
	})
	return token, nil
}

// DeepLinkAction is the in-app target of a deep link.
type DeepLinkAction struct {
	URL      string `json:"url"`
	RoleName string `json:"role_name"`
	Verified int    `json:"verified"`
	RoleID   int    `json:"role_id"`
}

// DefaultDeepLinkAction opens the app root as owner.
func DefaultDeepLinkAction() DeepLinkAction {
	return DeepLinkAction{
		URL:      "/",
		RoleName: "Owner",
		Verified: 1,
		RoleID:   0,
	}
}

// The endpoint expects action as a JSON document serialized into a string.
type deepLinkRequest struct {
	Action string `json:"action"`
}

type deepLinkResponse struct {
	DeepLink string `json:"deeplink"`
}

// DeepLink requests a one-time deep link with token as Bearer credentials.
func (c *Client) DeepLink(ctx context.Context, token *oauth2.Token, action DeepLinkAction) (string, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	actionJSON, err := json.Marshal(action)
	if err != nil {
		return "", &UpstreamError{Op: OpDeepLink, Err: fmt.Errorf("marshal action: %w", err)}
	}
	body, err := json.Marshal(deepLinkRequest{Action: string(actionJSON)})
	if err != nil {
		return "", &UpstreamError{Op: OpDeepLink, Err: fmt.Errorf("marshal body: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlutil.JoinPath(c.apiHost, DeepLinkPath), bytes.NewReader(body))
	if err != nil {
		return "", &UpstreamError{Op: OpDeepLink, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		observeUpstream(OpDeepLink, 0, start)
		return "", &UpstreamError{Op: OpDeepLink, Err: err}
	}
	defer resp.Body.Close()
	observeUpstream(OpDeepLink, resp.StatusCode, start)

	data, err := ioutil.ReadAtMost(resp.Body, maxResponseBytes)
	if err != nil {
		return "", &UpstreamError{Op: OpDeepLink, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &UpstreamError{Op: OpDeepLink, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected response: %s", ioutil.Snippet(data, 256))}
	}

	var out deepLinkResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", &UpstreamError{Op: OpDeepLink, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if out.DeepLink == "" {
		return "", &UpstreamError{Op: OpDeepLink, StatusCode: resp.StatusCode, Err: errors.New("response missing deeplink")}
	}

	log.LogDebugWithFields("zoomapi", "Deep link obtained", map[string]any{
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return out.DeepLink, nil
}
