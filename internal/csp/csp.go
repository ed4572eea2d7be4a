// Package csp composes the Content-Security-Policy and the companion
// security headers sent with every response.
package csp

import (
	"net/http"
	"strings"

	"github.com/dgellow/zoomapp-front/internal/urlutil"
)

// AppsSDKURL is the only third-party script the embedded page may load.
const AppsSDKURL = "https://appssdk.zoom.us/sdk.min.js"

// Directive is a single policy directive. Order matters: Compose renders
// directives exactly in slice order.
type Directive struct {
	Name  string
	Value string
}

// Compose renders directives as "name value;" pairs concatenated without
// separators. A directive with no value renders as "name ;".
func Compose(directives []Directive) string {
	var b strings.Builder
	for _, d := range directives {
		b.WriteString(d.Name)
		b.WriteByte(' ')
		b.WriteString(d.Value)
		b.WriteByte(';')
	}
	return b.String()
}

// Default returns the policy for the app served at redirectURL.
func Default(redirectURL string) []Directive {
	host := urlutil.Host(redirectURL)

	return []Directive{
		{"default-src", "'self' 'unsafe-inline' 'unsafe-eval'"},
		{"style-src", "'self' 'unsafe-inline' 'unsafe-eval'"},
		{"script-src", AppsSDKURL + " 'self' 'unsafe-inline' 'unsafe-eval'"},
		{"img-src", "'self' data: https://" + host},
		{"connect-src", "'self' wss://" + host},
		{"base-uri", "'self'"},
		{"form-action", "'self'"},
		{"font-src", "'self' https: data:"},
		{"frame-ancestors", "'self'"},
		{"object-src", "'none'"},
		{"script-src-attr", "'none'"},
		{"upgrade-insecure-requests", ""},
	}
}

// Headers returns the full security header set for redirectURL.
func Headers(redirectURL string) http.Header {
	h := http.Header{}
	h.Set("Content-Security-Policy", Compose(Default(redirectURL)))
	h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	h.Set("Referrer-Policy", "same-origin")
	h.Set("X-Frame-Options", "SAMEORIGIN")
	h.Set("X-Content-Type-Options", "nosniff")
	return h
}
