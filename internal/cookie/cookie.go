package cookie

import (
	"net/http"
	"time"

	"github.com/dgellow/zoomapp-front/internal/envutil"
	"github.com/dgellow/zoomapp-front/internal/log"
)

// Cookie names carrying the install attempt across the OAuth round trip
const (
	StateCookie    = "state"
	VerifierCookie = "verifier"
)

// InstallMaxAge bounds how long a user can take on the consent screen
const InstallMaxAge = 10 * time.Minute

// setInstall sets a short-lived, HTTP-only cookie scoped to the callback path.
// Lax is required: the callback is a top-level navigation from the platform.
func setInstall(w http.ResponseWriter, name, value, path string) {
	secure := !envutil.IsDev()
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(InstallMaxAge.Seconds()),
	})

	log.LogTraceWithFields("cookie", "Install cookie set", map[string]any{
		"name":     name,
		"path":     path,
		"maxAge":   InstallMaxAge.String(),
		"secure":   secure,
		"sameSite": "Lax",
	})
}

// SetState sets the state cookie
func SetState(w http.ResponseWriter, value, path string) {
	setInstall(w, StateCookie, value, path)
}

// SetVerifier sets the PKCE verifier cookie
func SetVerifier(w http.ResponseWriter, value, path string) {
	setInstall(w, VerifierCookie, value, path)
}

// Clear removes a cookie by setting MaxAge to -1. path must match the path
// the cookie was set with.
func Clear(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		HttpOnly: true,
		Secure:   !envutil.IsDev(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// ClearInstall removes both install cookies
func ClearInstall(w http.ResponseWriter, path string) {
	Clear(w, StateCookie, path)
	Clear(w, VerifierCookie, path)
	log.LogTraceWithFields("cookie", "Install cookies cleared", map[string]any{
		"path": path,
	})
}

// Get retrieves a cookie value from the request
func Get(r *http.Request, name string) (string, error) {
	cookie, err := r.Cookie(name)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

// Lookup returns a pointer to the cookie value, or nil when the request does
// not carry the cookie
func Lookup(r *http.Request, name string) *string {
	value, err := Get(r, name)
	if err != nil {
		return nil
	}
	return &value
}
