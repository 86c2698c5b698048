package incidents

import (
	"github.com/bissquit/incident-log/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "incidentlog"

var (
	incidentsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "incidents",
			Name:      "created_total",
			Help:      "Total incidents created",
		},
		[]string{"severity"},
	)

	incidentsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "incidents",
			Name:      "deleted_total",
			Help:      "Total incidents deleted",
		},
	)

	incidentsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "incidents",
			Name:      "rejected_total",
			Help:      "Total incident submissions rejected by validation",
		},
		[]string{"kind"},
	)
)

func recordCreated(severity domain.Severity) {
	incidentsCreated.WithLabelValues(severity.String()).Inc()
}

func recordDeleted() {
	incidentsDeleted.Inc()
}

func recordRejected(kind ValidationKind) {
	incidentsRejected.WithLabelValues(string(kind)).Inc()
}
