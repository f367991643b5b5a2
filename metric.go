package brickfolio

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricNameSpace = "brickfolio"
)

var (
	catalogSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: MetricNameSpace,
			Name:      "catalog_properties",
			Help:      "properties currently reflected from the ledger",
		},
	)
	activeOrders = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: MetricNameSpace,
			Name:      "marketplace_active_orders",
			Help:      "active sell orders on the resale book",
		},
	)
	txCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "ledger_tx_total",
			Help:      "submitted ledger transactions by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		catalogSize,
		activeOrders,
		txCounter,
	)
}

func metricTx(kind string, ok bool) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	txCounter.WithLabelValues(kind, outcome).Inc()
}
