package config

import (
	"encoding/json"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/dgellow/zoomapp-front/internal/appcontext"
)

// Secret is a string type that redacts itself when printed
type Secret string

// String implements fmt.Stringer to redact the secret
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "***"
}

// MarshalJSON implements json.Marshaler to prevent secrets in JSON logs
func (s Secret) MarshalJSON() ([]byte, error) {
	if s == "" {
		return json.Marshal("")
	}
	return json.Marshal("***")
}

const (
	DefaultPort            = 3000
	DefaultBind            = "127.0.0.1"
	DefaultPlatformHost    = "https://zoom.us"
	DefaultUpstreamTimeout = 10 * time.Second
	DefaultAuthRate        = 10.0
	DefaultAuthBurst       = 20
	DefaultCallbackPath    = "/auth"
)

// Config is built once at startup and never mutated afterwards.
type Config struct {
	Port int    `json:"port"`
	Bind string `json:"bind"`

	RedirectURL  string `json:"redirectUrl"`
	PlatformHost string `json:"host"`
	APIHost      string `json:"apiHost,omitempty"`
	ClientID     string `json:"clientId"`
	ClientSecret Secret `json:"clientSecret"`

	// ContextSecret falls back to ClientSecret when empty.
	ContextSecret   Secret              `json:"contextSecret"`
	ContextEncoding appcontext.Encoding `json:"contextEncoding"`
	EnforceExpiry   bool                `json:"enforceExpiry"`

	SendCodeVerifier bool          `json:"sendCodeVerifier"`
	ProxyTarget      string        `json:"proxyTarget,omitempty"`
	UpstreamTimeout  time.Duration `json:"upstreamTimeout"`

	MetricsAddr string  `json:"metricsAddr,omitempty"`
	AuthRate    float64 `json:"authRate"`
	AuthBurst   int     `json:"authBurst"`

	LogLevel  string `json:"logLevel"`
	LogFormat string `json:"logFormat"`
}

// Default returns a config with every optional field at its default.
func Default() Config {
	return Config{
		Port:             DefaultPort,
		Bind:             DefaultBind,
		PlatformHost:     DefaultPlatformHost,
		ContextEncoding:  appcontext.EncodingAuto,
		SendCodeVerifier: true,
		UpstreamTimeout:  DefaultUpstreamTimeout,
		AuthRate:         DefaultAuthRate,
		AuthBurst:        DefaultAuthBurst,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// ListenAddr is the host:port of the main listener.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

// CallbackPath is the path component of the redirect URL.
func (c *Config) CallbackPath() string {
	u, err := url.Parse(c.RedirectURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return DefaultCallbackPath
	}
	return u.Path
}

// EffectiveContextSecret is the secret used for context decryption.
func (c *Config) EffectiveContextSecret() string {
	if c.ContextSecret != "" {
		return string(c.ContextSecret)
	}
	return string(c.ClientSecret)
}

// EffectiveAPIHost is the host serving the deep-link endpoint.
func (c *Config) EffectiveAPIHost() string {
	if c.APIHost != "" {
		return c.APIHost
	}
	return c.PlatformHost
}
