package probe

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-kadtable/internal/core/metrics"
)

// proberMetrics 探测器指标
type proberMetrics struct {
	sent       prometheus.Counter
	dropped    prometheus.Counter
	sendErrors prometheus.Counter
	replies    *prometheus.CounterVec
	pending    prometheus.Gauge
}

func newProberMetrics(reg prometheus.Registerer) *proberMetrics {
	return &proberMetrics{
		sent: metrics.Register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kadtable_probe_sent_total",
			Help: "HELLO probes handed to the sender.",
		})),
		dropped: metrics.Register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kadtable_probe_dropped_total",
			Help: "Probes dropped because the queue was full.",
		})),
		sendErrors: metrics.Register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kadtable_probe_send_errors_total",
			Help: "Probes the sender failed to send.",
		})),
		replies: metrics.Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kadtable_probe_replies_total",
			Help: "Probe replies, by outcome.",
		}, []string{"outcome"})),
		pending: metrics.Register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kadtable_probe_pending",
			Help: "Outstanding probe nonces.",
		})),
	}
}
