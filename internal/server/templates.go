package server

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"

	"github.com/dgellow/zoomapp-front/internal/log"
)

//go:embed templates/fallback.html
var fallbackPageTemplateHTML string

//go:embed templates/home.html
var homePageTemplateHTML string

var fallbackPageTemplate = template.Must(template.New("fallback").Parse(fallbackPageTemplateHTML))
var homePageTemplate = template.Must(template.New("home").Parse(homePageTemplateHTML))

// FallbackPageData is rendered when a page is opened outside the host client.
type FallbackPageData struct {
	InstallPath string
}

// HomePageData is rendered for a verified request to the root path.
type HomePageData struct {
	UserID    string
	MeetingID string
	Theme     string
}

// renderHTML buffers the template so a failed render can still produce a
// clean 500.
func renderHTML(w http.ResponseWriter, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		log.LogErrorWithFields("server", "Failed to render template", map[string]any{
			"template": tmpl.Name(),
			"error":    err.Error(),
		})
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
