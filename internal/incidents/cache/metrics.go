package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cacheRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "incidentlog",
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "Incident cache lookups by result",
	},
	[]string{"result"},
)

func recordCacheRequest(result string) {
	cacheRequests.WithLabelValues(result).Inc()
}
