package config

import (
	"github.com/dgellow/zoomapp-front/internal/appcontext"
	"github.com/urfave/cli/v2"
)

// Flag names shared by the commands that read them.
const (
	FlagPort             = "port"
	FlagBind             = "bind"
	FlagRedirectURL      = "redirect-url"
	FlagHost             = "host"
	FlagAPIHost          = "api-host"
	FlagClientID         = "client-id"
	FlagClientSecret     = "client-secret"
	FlagContextSecret    = "context-secret"
	FlagContextEncoding  = "context-encoding"
	FlagEnforceExpiry    = "enforce-expiry"
	FlagSendCodeVerifier = "send-code-verifier"
	FlagProxyTarget      = "proxy-target"
	FlagUpstreamTimeout  = "upstream-timeout"
	FlagMetricsAddr      = "metrics-addr"
	FlagAuthRate         = "auth-rate"
	FlagAuthBurst        = "auth-burst"
	FlagLogLevel         = "log-level"
	FlagLogFormat        = "log-format"
)

// SecretFlags are the flags needed to encrypt or decrypt a context.
func SecretFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    FlagClientSecret,
			Usage:   "OAuth client secret",
			EnvVars: []string{"ZM_CLIENT_SECRET"},
		},
		&cli.StringFlag{
			Name:    FlagContextSecret,
			Usage:   "shared secret for app context decryption (defaults to the client secret)",
			EnvVars: []string{"ZM_CONTEXT_SECRET"},
		},
		&cli.StringFlag{
			Name:    FlagContextEncoding,
			Usage:   "base64 variant of the context header: std, url or auto",
			EnvVars: []string{"ZM_CONTEXT_ENCODING"},
			Value:   string(appcontext.EncodingAuto),
		},
	}
}

// Flags returns every server flag.
func Flags() []cli.Flag {
	d := Default()
	flags := []cli.Flag{
		&cli.IntFlag{
			Name:    FlagPort,
			Usage:   "listen port",
			EnvVars: []string{"ZOOM_APP_PORT"},
			Value:   d.Port,
		},
		&cli.StringFlag{
			Name:    FlagBind,
			Usage:   "listen host",
			EnvVars: []string{"ZOOM_APP_BIND"},
			Value:   d.Bind,
		},
		&cli.StringFlag{
			Name:    FlagRedirectURL,
			Usage:   "OAuth redirect URL, its path is the callback route",
			EnvVars: []string{"ZM_REDIRECT_URL"},
		},
		&cli.StringFlag{
			Name:    FlagHost,
			Usage:   "platform host for authorize and token endpoints",
			EnvVars: []string{"ZM_HOST"},
			Value:   d.PlatformHost,
		},
		&cli.StringFlag{
			Name:    FlagAPIHost,
			Usage:   "API host for the deep-link endpoint (defaults to --host)",
			EnvVars: []string{"ZM_API_HOST"},
		},
		&cli.StringFlag{
			Name:    FlagClientID,
			Usage:   "OAuth client id",
			EnvVars: []string{"ZM_CLIENT_ID"},
		},
		&cli.BoolFlag{
			Name:    FlagEnforceExpiry,
			Usage:   "reject app contexts whose exp has passed",
			EnvVars: []string{"ZM_ENFORCE_EXPIRY"},
		},
		&cli.BoolFlag{
			Name:    FlagSendCodeVerifier,
			Usage:   "include code_verifier in the token exchange",
			EnvVars: []string{"ZM_SEND_CODE_VERIFIER"},
			Value:   d.SendCodeVerifier,
		},
		&cli.StringFlag{
			Name:    FlagProxyTarget,
			Usage:   "upstream origin verified requests are forwarded to",
			EnvVars: []string{"ZOOM_APP_PROXY_TARGET"},
		},
		&cli.DurationFlag{
			Name:    FlagUpstreamTimeout,
			Usage:   "timeout for platform and proxy calls",
			EnvVars: []string{"ZOOM_APP_UPSTREAM_TIMEOUT"},
			Value:   d.UpstreamTimeout,
		},
		&cli.StringFlag{
			Name:    FlagMetricsAddr,
			Usage:   "listen address for /metrics and /health, disabled when empty",
			EnvVars: []string{"ZOOM_APP_METRICS_ADDR"},
		},
		&cli.Float64Flag{
			Name:    FlagAuthRate,
			Usage:   "requests per second allowed on install and callback routes",
			EnvVars: []string{"ZOOM_APP_AUTH_RATE"},
			Value:   d.AuthRate,
		},
		&cli.IntFlag{
			Name:    FlagAuthBurst,
			Usage:   "burst size for install and callback routes",
			EnvVars: []string{"ZOOM_APP_AUTH_BURST"},
			Value:   d.AuthBurst,
		},
		&cli.StringFlag{
			Name:    FlagLogLevel,
			Usage:   "log level: error, warn, info, debug or trace",
			EnvVars: []string{"LOG_LEVEL"},
			Value:   d.LogLevel,
		},
		&cli.StringFlag{
			Name:    FlagLogFormat,
			Usage:   "log format: text or json",
			EnvVars: []string{"LOG_FORMAT"},
			Value:   d.LogFormat,
		},
	}
	return append(flags, SecretFlags()...)
}

// FromCLI builds a Config from parsed flags. It does not validate.
func FromCLI(cctx *cli.Context) Config {
	return Config{
		Port:             cctx.Int(FlagPort),
		Bind:             cctx.String(FlagBind),
		RedirectURL:      cctx.String(FlagRedirectURL),
		PlatformHost:     cctx.String(FlagHost),
		APIHost:          cctx.String(FlagAPIHost),
		ClientID:         cctx.String(FlagClientID),
		ClientSecret:     Secret(cctx.String(FlagClientSecret)),
		ContextSecret:    Secret(cctx.String(FlagContextSecret)),
		ContextEncoding:  appcontext.Encoding(cctx.String(FlagContextEncoding)),
		EnforceExpiry:    cctx.Bool(FlagEnforceExpiry),
		SendCodeVerifier: cctx.Bool(FlagSendCodeVerifier),
		ProxyTarget:      cctx.String(FlagProxyTarget),
		UpstreamTimeout:  cctx.Duration(FlagUpstreamTimeout),
		MetricsAddr:      cctx.String(FlagMetricsAddr),
		AuthRate:         cctx.Float64(FlagAuthRate),
		AuthBurst:        cctx.Int(FlagAuthBurst),
		LogLevel:         cctx.String(FlagLogLevel),
		LogFormat:        cctx.String(FlagLogFormat),
	}
}
