package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/dgellow/zoomapp-front/internal/callback"
	"github.com/dgellow/zoomapp-front/internal/cookie"
	"github.com/dgellow/zoomapp-front/internal/log"
	"github.com/dgellow/zoomapp-front/internal/pkce"
	"github.com/dgellow/zoomapp-front/internal/zoomapi"
	"golang.org/x/oauth2"
)

// TokenExchanger trades an authorization code for an access token.
type TokenExchanger interface {
	ExchangeCode(ctx context.Context, code, verifier string) (*oauth2.Token, error)
}

// DeepLinker requests a deep link with an access token.
type DeepLinker interface {
	DeepLink(ctx context.Context, token *oauth2.Token, action zoomapi.DeepLinkAction) (string, error)
}

// AuthConfig is the install flow configuration.
type AuthConfig struct {
	PlatformHost string
	ClientID     string
	RedirectURL  string
	// CallbackPath scopes the install cookies.
	CallbackPath string
}

// AuthHandlers serves the install redirect and the OAuth callback.
type AuthHandlers struct {
	config    AuthConfig
	exchanger TokenExchanger
	linker    DeepLinker
	action    zoomapi.DeepLinkAction
}

// NewAuthHandlers creates the install and callback handlers.
func NewAuthHandlers(cfg AuthConfig, exchanger TokenExchanger, linker DeepLinker) *AuthHandlers {
	return &AuthHandlers{
		config:    cfg,
		exchanger: exchanger,
		linker:    linker,
		action:    zoomapi.DefaultDeepLinkAction(),
	}
}

// InstallHandler starts the install flow: it issues a fresh state and
// verifier as cookies and redirects to the authorize endpoint.
func (h *AuthHandlers) InstallHandler(w http.ResponseWriter, r *http.Request) {
	redirect, err := pkce.BuildInstallRedirect(h.config.PlatformHost, h.config.ClientID, h.config.RedirectURL)
	if err != nil {
		log.LogErrorWithFields("auth", "Failed to build install redirect", map[string]any{
			"error": err.Error(),
		})
		http.Error(w, "failed to start install", http.StatusInternalServerError)
		return
	}

	cookie.SetState(w, redirect.State, h.config.CallbackPath)
	cookie.SetVerifier(w, redirect.Verifier, h.config.CallbackPath)
	installs.Inc()

	log.LogDebugWithFields("auth", "Redirecting to authorize endpoint", map[string]any{
		"remote_addr": r.RemoteAddr,
	})
	http.Redirect(w, r, redirect.URL, http.StatusFound)
}

// CallbackHandler completes the install flow. The install cookies are
// cleared before anything else so a state can only be used once.
func (h *AuthHandlers) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	cookie.ClearInstall(w, h.config.CallbackPath)

	query, cookies := callback.FromRequest(r)
	param, err := callback.Validate(query, cookies)
	if err != nil {
		callbacks.WithLabelValues(callbackInvalid).Inc()
		log.LogWarnWithFields("auth", "Callback validation failed", map[string]any{
			"reason": err.Error(),
		})
		http.Error(w, "validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	token, err := h.exchanger.ExchangeCode(ctx, param.Code, param.Verifier)
	if err != nil {
		callbacks.WithLabelValues(callbackExchangeFailed).Inc()
		logUpstreamFailure("Token exchange failed", err)
		http.Error(w, "failed to obtain access token", http.StatusInternalServerError)
		return
	}

	link, err := h.linker.DeepLink(ctx, token, h.action)
	if err != nil {
		callbacks.WithLabelValues(callbackDeepLinkFailed).Inc()
		logUpstreamFailure("Deep link request failed", err)
		http.Error(w, "failed to obtain deep link", http.StatusInternalServerError)
		return
	}

	callbacks.WithLabelValues(callbackSuccess).Inc()
	log.LogInfoWithFields("auth", "Install completed", nil)
	http.Redirect(w, r, link, http.StatusFound)
}

func logUpstreamFailure(message string, err error) {
	fields := map[string]any{"error": err.Error()}
	var uerr *zoomapi.UpstreamError
	if errors.As(err, &uerr) {
		fields["op"] = uerr.Op
		fields["status"] = uerr.StatusCode
	}
	log.LogErrorWithFields("auth", message, fields)
}
