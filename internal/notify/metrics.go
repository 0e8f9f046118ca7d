package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tartampluch/go-medreminder/internal/config"
)

// Metrics groups the dispatcher's Prometheus collectors.
type Metrics struct {
	Submitted  prometheus.Counter
	Fired      *prometheus.CounterVec
	Registered prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Name:      config.MetricSubmitted,
			Help:      config.MetricHelpSubmitted,
		}),
		Fired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Name:      config.MetricFired,
			Help:      config.MetricHelpFired,
		}, []string{config.MetricLabelResult}),
		Registered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: config.MetricsNamespace,
			Name:      config.MetricRegistered,
			Help:      config.MetricHelpRegistered,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Submitted, m.Fired, m.Registered)
	}
	return m
}
