// Package proxy forwards verified requests to the application origin.
package proxy

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dgellow/zoomapp-front/internal/appcontext"
	jsonwriter "github.com/dgellow/zoomapp-front/internal/json"
	"github.com/dgellow/zoomapp-front/internal/log"
)

// Headers carrying the verified identity upstream. Client-supplied copies are
// always dropped.
const (
	HeaderUserID    = "X-Zoom-App-Uid"
	HeaderMeetingID = "X-Zoom-App-Mid"
)

// ContextHeader is the encrypted app context; it is consumed here and never
// forwarded.
const ContextHeader = "X-Zoom-App-Context"

var hopByHop = map[string]bool{
	"connection":          true,
	"keep-alive":          true,
	"proxy-authenticate":  true,
	"proxy-authorization": true,
	"proxy-connection":    true,
	"te":                  true,
	"trailer":             true,
	"transfer-encoding":   true,
	"upgrade":             true,
}

var stripped = map[string]bool{
	strings.ToLower(HeaderUserID):    true,
	strings.ToLower(HeaderMeetingID): true,
	strings.ToLower(ContextHeader):   true,
}

// HTTPProxy forwards requests to a single upstream origin.
type HTTPProxy struct {
	target     *url.URL
	httpClient *http.Client
}

// NewHTTPProxy creates a proxy for target. Redirects from the upstream are
// returned to the client rather than followed.
func NewHTTPProxy(target string, timeout time.Duration) (*HTTPProxy, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parsing proxy target: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("proxy target must be absolute, got %q", target)
	}

	return &HTTPProxy{
		target: u,
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

func (p *HTTPProxy) upstreamURL(r *http.Request) string {
	u := *p.target
	u.Path = strings.TrimRight(p.target.Path, "/") + r.URL.Path
	u.RawPath = ""
	u.RawQuery = r.URL.RawQuery
	return u.String()
}

func (p *HTTPProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	upstreamReq, err := http.NewRequestWithContext(r.Context(), r.Method, p.upstreamURL(r), r.Body)
	if err != nil {
		jsonwriter.WriteInternalServerError(w, "Failed to create upstream request")
		return
	}
	upstreamReq.ContentLength = r.ContentLength

	copyRequestHeaders(upstreamReq.Header, r.Header)
	setForwardedHeaders(upstreamReq.Header, r)

	if claims, ok := appcontext.ClaimsFromContext(r.Context()); ok {
		upstreamReq.Header.Set(HeaderUserID, claims.UID)
		upstreamReq.Header.Set(HeaderMeetingID, claims.MID)
	}

	resp, err := p.httpClient.Do(upstreamReq)
	if err != nil {
		log.LogErrorWithFields("proxy", "Upstream request failed", map[string]any{
			"error":  err.Error(),
			"method": r.Method,
			"path":   r.URL.Path,
		})
		jsonwriter.WriteBadGateway(w, "Failed to reach upstream")
		return
	}
	defer resp.Body.Close()

	copyResponseHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		log.LogWarnWithFields("proxy", "Response copy interrupted", map[string]any{
			"error": err.Error(),
			"path":  r.URL.Path,
		})
		return
	}

	log.LogTraceWithFields("proxy", "Request proxied", map[string]any{
		"method":      r.Method,
		"path":        r.URL.Path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

// connectionTokens returns the headers named in Connection, which are
// hop-by-hop for this request only.
func connectionTokens(h http.Header) map[string]bool {
	tokens := map[string]bool{}
	for _, v := range h.Values("Connection") {
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				tokens[strings.ToLower(f)] = true
			}
		}
	}
	return tokens
}

func copyRequestHeaders(dst, src http.Header) {
	extra := connectionTokens(src)
	for key, values := range src {
		lower := strings.ToLower(key)
		if hopByHop[lower] || stripped[lower] || extra[lower] {
			continue
		}
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}

func setForwardedHeaders(dst http.Header, r *http.Request) {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		if prior := r.Header.Get("X-Forwarded-For"); prior != "" {
			host = prior + ", " + host
		}
		dst.Set("X-Forwarded-For", host)
	}
	dst.Set("X-Forwarded-Host", r.Host)
	proto := "http"
	if r.TLS != nil {
		proto = "https"
	}
	dst.Set("X-Forwarded-Proto", proto)
}

// copyResponseHeaders leaves headers already set on dst, such as the security
// headers, untouched.
func copyResponseHeaders(dst, src http.Header) {
	extra := connectionTokens(src)
	for key, values := range src {
		lower := strings.ToLower(key)
		if hopByHop[lower] || extra[lower] {
			continue
		}
		if _, exists := dst[key]; exists {
			continue
		}
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}
