package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/dgellow/zoomapp-front/internal/appcontext"
	"github.com/dgellow/zoomapp-front/internal/log"
)

// ContextHeader is the encrypted app context attached by the host client.
const ContextHeader = "X-Zoom-App-Context"

// MaxContextHeaderLength is the largest header value handed to the
// decryptor.
const MaxContextHeaderLength = 512

// ContextDecryptor is the part of appcontext.Decryptor the middleware uses.
type ContextDecryptor interface {
	Decrypt(headerValue string) (*appcontext.Claims, error)
}

// ContextOptions configures NewContextMiddleware.
type ContextOptions struct {
	// Fallback serves requests without a context header.
	Fallback http.Handler
	// EnforceExpiry rejects claims whose exp has passed.
	EnforceExpiry bool
	// Now defaults to time.Now.
	Now func() time.Time
}

// contextErrorStatus maps a decryption error to a response status and a
// metrics label.
func contextErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, appcontext.ErrMalformed):
		return http.StatusBadRequest, resultMalformed
	case errors.Is(err, appcontext.ErrDecode):
		return http.StatusBadRequest, resultDecode
	case errors.Is(err, appcontext.ErrDeserialization):
		return http.StatusBadRequest, resultDeserialization
	case errors.Is(err, appcontext.ErrAuthenticationFailed):
		return http.StatusUnauthorized, resultAuthFailed
	case errors.Is(err, appcontext.ErrExpired):
		return http.StatusUnauthorized, resultExpired
	default:
		return http.StatusUnauthorized, resultError
	}
}

// NewContextMiddleware verifies the app context header and attaches its
// claims to the request context. Requests without the header get the
// fallback page and never reach next.
func NewContextMiddleware(decryptor ContextDecryptor, opts ContextOptions) MiddlewareFunc {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = NewFallbackHandler("/install")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			value := r.Header.Get(ContextHeader)
			if value == "" {
				contextVerifications.WithLabelValues(resultMissing).Inc()
				fallback.ServeHTTP(w, r)
				return
			}

			if len(value) > MaxContextHeaderLength {
				contextVerifications.WithLabelValues(resultOversize).Inc()
				log.LogDebugWithFields("context", "Context header too large", map[string]any{
					"length": len(value),
					"path":   r.URL.Path,
				})
				http.Error(w, "app context header exceeds maximum length", http.StatusBadRequest)
				return
			}

			claims, err := decryptor.Decrypt(value)
			if err == nil && opts.EnforceExpiry && claims.Expired(now()) {
				err = appcontext.ErrExpired
			}
			if err != nil {
				status, result := contextErrorStatus(err)
				contextVerifications.WithLabelValues(result).Inc()
				log.LogWarnWithFields("context", "Context verification failed", map[string]any{
					"result": result,
					"error":  err.Error(),
					"path":   r.URL.Path,
				})
				http.Error(w, err.Error(), status)
				return
			}

			contextVerifications.WithLabelValues(resultOK).Inc()
			log.LogTraceWithFields("context", "Context verified", map[string]any{
				"uid":  claims.UID,
				"path": r.URL.Path,
			})
			next.ServeHTTP(w, r.WithContext(appcontext.WithClaims(r.Context(), claims)))
		})
	}
}
