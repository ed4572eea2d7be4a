// Package callback checks an OAuth callback against the state and verifier
// issued at install time before anything is sent to the platform.
package callback

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/dgellow/zoomapp-front/internal/cookie"
)

const (
	MinCodeLength = 32
	MaxCodeLength = 64
)

// Query holds the callback query parameters.
type Query struct {
	Code  string
	State string
	// Error is set by the platform when the user declined the install.
	Error string
}

// Cookies holds the install cookies echoed back by the browser. A nil field
// means the cookie was absent.
type Cookies struct {
	State    *string
	Verifier *string
}

// AuthParam is what the token exchange needs.
type AuthParam struct {
	Code     string
	Verifier string
}

// ValidationError reports the first check a callback failed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func fail(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// FromRequest reads the callback query and install cookies from r.
func FromRequest(r *http.Request) (Query, Cookies) {
	values := r.URL.Query()
	q := Query{
		Code:  values.Get("code"),
		State: values.Get("state"),
		Error: values.Get("error"),
	}
	c := Cookies{
		State:    cookie.Lookup(r, cookie.StateCookie),
		Verifier: cookie.Lookup(r, cookie.VerifierCookie),
	}
	return q, c
}

// Validate runs the callback checks in order and stops at the first one that
// fails. It makes no network calls.
func Validate(q Query, c Cookies) (*AuthParam, error) {
	if q.Error != "" {
		return nil, fail("authorization denied: %s", q.Error)
	}

	if q.Code == "" {
		return nil, fail("code must be a valid string")
	}
	if len(q.Code) < MinCodeLength || len(q.Code) > MaxCodeLength {
		return nil, fail("code does not fit size requirements (%d-%d characters, got %d)", MinCodeLength, MaxCodeLength, len(q.Code))
	}

	if q.State == "" {
		return nil, fail("state must be a string")
	}

	if c.State == nil {
		return nil, fail("cookie %s must be defined", cookie.StateCookie)
	}
	if subtle.ConstantTimeCompare([]byte(q.State), []byte(*c.State)) != 1 {
		return nil, fail("invalid state parameter")
	}

	if c.Verifier == nil || *c.Verifier == "" {
		return nil, fail("cookie %s must be defined", cookie.VerifierCookie)
	}

	return &AuthParam{
		Code:     q.Code,
		Verifier: *c.Verifier,
	}, nil
}
