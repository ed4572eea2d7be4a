package zoomapi

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "zoomapp_upstream_request_duration_seconds",
	Help:    "Duration of calls to the platform API",
	Buckets: prometheus.DefBuckets,
}, []string{"call", "status"})

func observeUpstream(op string, status int, start time.Time) {
	label := "error"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	upstreamDuration.WithLabelValues(op, label).Observe(time.Since(start).Seconds())
}
