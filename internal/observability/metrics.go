package observability

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	linkFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "satlink",
			Subsystem: "link",
			Name:      "frames_total",
			Help:      "Frames offered to the impaired link.",
		},
		[]string{"direction", "outcome"},
	)
	arqRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "satlink",
			Subsystem: "endpoint",
			Name:      "retries_total",
			Help:      "Reliable-send attempts beyond the first.",
		},
		[]string{"role"},
	)
	naks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "satlink",
			Subsystem: "endpoint",
			Name:      "naks_total",
			Help:      "Negative acknowledgments by role and flow.",
		},
		[]string{"role", "flow"},
	)
	deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "satlink",
			Subsystem: "endpoint",
			Name:      "deliveries_total",
			Help:      "Reliable-send outcomes.",
		},
		[]string{"role", "success"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(linkFrames, arqRetries, naks, deliveries)
	})
}

func RecordLinkFrame(direction string, dropped bool) {
	RegisterMetrics()
	outcome := "delivered"
	if dropped {
		outcome = "dropped"
	}
	linkFrames.WithLabelValues(direction, outcome).Inc()
}

func RecordRetry(role string) {
	RegisterMetrics()
	arqRetries.WithLabelValues(role).Inc()
}

// RecordNak counts one nak; flow is "sent" or "received".
func RecordNak(role, flow string) {
	RegisterMetrics()
	naks.WithLabelValues(role, flow).Inc()
}

func RecordDelivery(role string, success bool) {
	RegisterMetrics()
	deliveries.WithLabelValues(role, strconv.FormatBool(success)).Inc()
}
