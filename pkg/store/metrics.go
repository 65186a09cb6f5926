package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the store's Prometheus metrics. Every metric is labeled
// with the key namespace.
type Metrics struct {
	SourceSubscriptions *prometheus.GaugeVec
	Observers           *prometheus.GaugeVec
	Updates             *prometheus.CounterVec
	Writes              *prometheus.CounterVec
	SourceErrors        *prometheus.CounterVec
}

// NewMetrics creates the store metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SourceSubscriptions: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "uxsdk_store_source_subscriptions",
				Help: "Number of open source subscriptions",
			},
			[]string{"namespace"},
		),
		Observers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "uxsdk_store_observers",
				Help: "Number of store observers",
			},
			[]string{"namespace"},
		),
		Updates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uxsdk_store_updates_total",
				Help: "Total number of values received from the source",
			},
			[]string{"namespace"},
		),
		Writes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uxsdk_store_writes_total",
				Help: "Total number of writes by result",
			},
			[]string{"namespace", "result"},
		),
		SourceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uxsdk_store_source_errors_total",
				Help: "Total number of source errors by kind",
			},
			[]string{"namespace", "kind"},
		),
	}
}
