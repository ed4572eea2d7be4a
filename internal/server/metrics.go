package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Verification results.
const (
	resultOK              = "ok"
	resultMissing         = "missing"
	resultOversize        = "oversize"
	resultMalformed       = "malformed"
	resultDecode          = "decode"
	resultAuthFailed      = "auth_failed"
	resultDeserialization = "deserialization"
	resultExpired         = "expired"
	resultError           = "error"
)

// Callback results.
const (
	callbackSuccess        = "success"
	callbackInvalid        = "invalid"
	callbackExchangeFailed = "exchange_failed"
	callbackDeepLinkFailed = "deeplink_failed"
)

var (
	contextVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zoomapp_context_verifications_total",
		Help: "App context header verifications by result",
	}, []string{"result"})

	installs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zoomapp_installs_total",
		Help: "Install redirects issued",
	})

	callbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zoomapp_callbacks_total",
		Help: "OAuth callbacks by result",
	}, []string{"result"})

	rateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zoomapp_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	}, []string{"path"})
)
