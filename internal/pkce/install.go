// Package pkce builds the install redirect for the Authorization Code flow
// with PKCE. Nothing is stored server side: the state and verifier travel to
// the browser as cookies and come back on the callback.
package pkce

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/dgellow/zoomapp-front/internal/crypto"
	"github.com/dgellow/zoomapp-front/internal/urlutil"
	"golang.org/x/oauth2"
)

const (
	AuthorizePath = "/oauth/authorize"
	TokenPath     = "/oauth/token"

	ChallengeMethod = "S256"
)

// InstallState is one install attempt. Challenge goes to the authorization
// endpoint and is never handed back to the client.
type InstallState struct {
	State     string
	Verifier  string
	Challenge string
}

// InstallRedirect is everything the install handler needs to answer.
type InstallRedirect struct {
	URL      string
	State    string
	Verifier string
}

// NewInstallState generates a fresh state and verifier. Both are 32 random
// bytes encoded as unpadded base64url, so the verifier is plain ASCII from
// the unreserved URI set accepted by token endpoints.
func NewInstallState() (*InstallState, error) {
	state, err := crypto.GenerateSecureToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}
	verifier, err := crypto.GenerateSecureToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verifier: %w", err)
	}
	return &InstallState{
		State:     state,
		Verifier:  verifier,
		Challenge: Challenge(verifier),
	}, nil
}

// Challenge returns base64(SHA-256(verifier)) in the standard alphabet.
func Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Endpoint returns the OAuth endpoints on platformHost. Client credentials
// go in a Basic Authorization header.
func Endpoint(platformHost string) oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   urlutil.JoinPath(platformHost, AuthorizePath),
		TokenURL:  urlutil.JoinPath(platformHost, TokenPath),
		AuthStyle: oauth2.AuthStyleInHeader,
	}
}

// AuthorizeURL builds the authorization URL for an install attempt.
func AuthorizeURL(platformHost, clientID, redirectURI string, st *InstallState) string {
	conf := oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURI,
		Endpoint:    Endpoint(platformHost),
	}
	return conf.AuthCodeURL(st.State,
		oauth2.SetAuthURLParam("code_challenge", st.Challenge),
		oauth2.SetAuthURLParam("code_challenge_method", ChallengeMethod),
	)
}

// BuildInstallRedirect generates a new install attempt and its
// authorization URL.
func BuildInstallRedirect(platformHost, clientID, redirectURI string) (*InstallRedirect, error) {
	st, err := NewInstallState()
	if err != nil {
		return nil, err
	}
	return &InstallRedirect{
		URL:      AuthorizeURL(platformHost, clientID, redirectURI, st),
		State:    st.State,
		Verifier: st.Verifier,
	}, nil
}
