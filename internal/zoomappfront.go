package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgellow/zoomapp-front/internal/appcontext"
	"github.com/dgellow/zoomapp-front/internal/config"
	"github.com/dgellow/zoomapp-front/internal/csp"
	"github.com/dgellow/zoomapp-front/internal/log"
	"github.com/dgellow/zoomapp-front/internal/proxy"
	"github.com/dgellow/zoomapp-front/internal/server"
	"github.com/dgellow/zoomapp-front/internal/zoomapi"
	"golang.org/x/sync/errgroup"
)

// InstallPath starts the install flow.
const InstallPath = "/install"

const shutdownTimeout = 30 * time.Second

// ZoomAppFront is the assembled gateway: the main listener and, when
// configured, the metrics listener.
type ZoomAppFront struct {
	config        config.Config
	handler       http.Handler
	httpServer    *server.HTTPServer
	metricsServer *server.HTTPServer
}

// dependencies are the collaborators behind the routes; tests swap them for
// mocks.
type dependencies struct {
	decryptor server.ContextDecryptor
	exchanger server.TokenExchanger
	linker    server.DeepLinker
	// upstream serves verified requests that match no local route. Nil
	// means only the local home page exists.
	upstream http.Handler
}

// NewZoomAppFront validates cfg and builds every component.
func NewZoomAppFront(cfg config.Config) (*ZoomAppFront, error) {
	result := config.Validate(&cfg)
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	for _, warn := range result.Warnings {
		log.LogWarnWithFields("zoomappfront", warn.Message, map[string]any{
			"field": warn.Path,
		})
	}

	client := zoomapi.NewClient(zoomapi.Options{
		PlatformHost:     cfg.PlatformHost,
		APIHost:          cfg.EffectiveAPIHost(),
		ClientID:         cfg.ClientID,
		ClientSecret:     string(cfg.ClientSecret),
		RedirectURL:      cfg.RedirectURL,
		SendCodeVerifier: cfg.SendCodeVerifier,
		Timeout:          cfg.UpstreamTimeout,
	})

	deps := dependencies{
		decryptor: appcontext.NewDecryptor(cfg.EffectiveContextSecret(), cfg.ContextEncoding),
		exchanger: client,
		linker:    client,
	}
	if cfg.ProxyTarget != "" {
		p, err := proxy.NewHTTPProxy(cfg.ProxyTarget, cfg.UpstreamTimeout)
		if err != nil {
			return nil, err
		}
		deps.upstream = p
	}

	handler, err := buildHTTPHandler(&cfg, deps)
	if err != nil {
		return nil, err
	}

	app := &ZoomAppFront{
		config:     cfg,
		handler:    handler,
		httpServer: server.NewHTTPServer("main", handler, cfg.ListenAddr()),
	}
	if cfg.MetricsAddr != "" {
		app.metricsServer = server.NewHTTPServer("metrics", server.NewMetricsHandler(), cfg.MetricsAddr)
	}

	log.LogInfoWithFields("zoomappfront", "Application built", map[string]any{
		"addr":          cfg.ListenAddr(),
		"callback_path": cfg.CallbackPath(),
		"proxy_target":  cfg.ProxyTarget,
		"metrics_addr":  cfg.MetricsAddr,
		"encoding":      cfg.ContextEncoding,
	})
	return app, nil
}

// Handler is the main listener's handler.
func (a *ZoomAppFront) Handler() http.Handler {
	return a.handler
}

func buildHTTPHandler(cfg *config.Config, deps dependencies) (http.Handler, error) {
	callbackPath := cfg.CallbackPath()
	if callbackPath == InstallPath {
		return nil, fmt.Errorf("callback path must not be %s", InstallPath)
	}

	auth := server.NewAuthHandlers(server.AuthConfig{
		PlatformHost: cfg.PlatformHost,
		ClientID:     cfg.ClientID,
		RedirectURL:  cfg.RedirectURL,
		CallbackPath: callbackPath,
	}, deps.exchanger, deps.linker)

	limit := server.NewRateLimitMiddleware(cfg.AuthRate, cfg.AuthBurst)

	// Routes behind context verification.
	app := http.NewServeMux()
	app.HandleFunc("GET /api/context", server.ContextAPIHandler)
	if deps.upstream != nil {
		app.Handle("/", deps.upstream)
	} else {
		app.HandleFunc("GET /{$}", server.HomeHandler)
	}

	verify := server.NewContextMiddleware(deps.decryptor, server.ContextOptions{
		Fallback:      server.NewFallbackHandler(InstallPath),
		EnforceExpiry: cfg.EnforceExpiry,
	})

	mux := http.NewServeMux()
	mux.Handle(InstallPath, limit(http.HandlerFunc(auth.InstallHandler)))
	mux.Handle(callbackPath, limit(http.HandlerFunc(auth.CallbackHandler)))
	mux.Handle("/", verify(app))

	gzip, err := server.NewGzipMiddleware()
	if err != nil {
		return nil, fmt.Errorf("creating gzip middleware: %w", err)
	}

	return server.ChainMiddleware(mux,
		gzip,
		server.NewSecurityHeadersMiddleware(csp.Headers(cfg.RedirectURL)),
		server.NewRecoverMiddleware("zoomappfront"),
		server.NewLoggerMiddleware("http"),
	), nil
}

// Run serves until ctx is cancelled, SIGINT or SIGTERM arrives, or a
// listener fails, then shuts every listener down.
func (a *ZoomAppFront) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	servers := []*server.HTTPServer{a.httpServer}
	if a.metricsServer != nil {
		servers = append(servers, a.metricsServer)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			if err := srv.Start(); err != nil {
				return fmt.Errorf("%s: %w", srv.Addr(), err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()

		reason := "context cancelled"
		if ctx.Err() == nil {
			reason = "listener failed"
		}
		log.LogInfoWithFields("zoomappfront", "Starting graceful shutdown", map[string]any{
			"reason":  reason,
			"timeout": shutdownTimeout.String(),
		})

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Stop(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	err := g.Wait()
	log.LogInfoWithFields("zoomappfront", "Application shutdown complete", nil)
	return err
}
