package server

import (
	"net/http"

	"github.com/dgellow/zoomapp-front/internal/appcontext"
	jsonwriter "github.com/dgellow/zoomapp-front/internal/json"
)

// NewFallbackHandler serves the page shown when the app is opened directly
// in a browser.
func NewFallbackHandler(installPath string) http.Handler {
	data := FallbackPageData{InstallPath: installPath}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		renderHTML(w, fallbackPageTemplate, data)
	})
}

// ContextAPIHandler returns the verified claims as JSON.
func ContextAPIHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := appcontext.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "missing app context", http.StatusUnauthorized)
		return
	}
	_ = jsonwriter.Write(w, claims)
}

// HomeHandler greets the verified user.
func HomeHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := appcontext.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "missing app context", http.StatusUnauthorized)
		return
	}
	renderHTML(w, homePageTemplate, HomePageData{
		UserID:    claims.UID,
		MeetingID: claims.MID,
		Theme:     claims.Theme,
	})
}
