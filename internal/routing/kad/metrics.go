package kad

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-kadtable/internal/core/metrics"
)

// 拒绝原因
const (
	rejectSelf    = "self"
	rejectVersion = "version"
	rejectFull    = "full"
)

// tableMetrics 路由表指标
type tableMetrics struct {
	contacts      prometheus.Gauge
	leaves        prometheus.Gauge
	probes        prometheus.Counter
	expired       prometheus.Counter
	splits        prometheus.Counter
	merges        prometheus.Counter
	evictions     prometheus.Counter
	sweeps        prometheus.Counter
	rejected      *prometheus.CounterVec
	sweepDuration prometheus.Histogram
}

// newTableMetrics 创建并注册指标，reg 为 nil 时只创建不注册
func newTableMetrics(reg prometheus.Registerer) *tableMetrics {
	return &tableMetrics{
		contacts: metrics.Register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kadtable_contacts",
			Help: "Number of contacts in the routing table.",
		})),
		leaves: metrics.Register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kadtable_leaves",
			Help: "Number of leaf buckets in the zone tree.",
		})),
		probes: metrics.Register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kadtable_probes_total",
			Help: "Liveness probes issued by maintenance sweeps.",
		})),
		expired: metrics.Register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kadtable_expired_total",
			Help: "Contacts removed after their reply window elapsed.",
		})),
		splits: metrics.Register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kadtable_splits_total",
			Help: "Leaf splits.",
		})),
		merges: metrics.Register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kadtable_merges_total",
			Help: "Sibling leaf merges.",
		})),
		evictions: metrics.Register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kadtable_evictions_total",
			Help: "Stale contacts evicted to admit a newcomer.",
		})),
		sweeps: metrics.Register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kadtable_sweeps_total",
			Help: "Maintenance sweeps run.",
		})),
		rejected: metrics.Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kadtable_rejected_total",
			Help: "Contacts rejected on admission, by reason.",
		}, []string{"reason"})),
		sweepDuration: metrics.Register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kadtable_sweep_duration_seconds",
			Help:    "Time spent in one maintenance sweep.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		})),
	}
}
