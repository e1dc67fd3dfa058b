package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "checkout"

type Metrics struct {
	OrdersCreated   prometheus.Counter
	OrdersRemoved   *prometheus.CounterVec
	Captures        *prometheus.CounterVec
	ProviderRetries *prometheus.CounterVec
	SweepRuns       *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders created.",
		}),
		OrdersRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_removed_total",
			Help:      "Orders removed, by reason.",
		}, []string{"reason"}),
		Captures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_captures_total",
			Help:      "Capture requests, by result.",
		}, []string{"result"}),
		ProviderRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_retries_total",
			Help:      "Retried payment provider calls, by operation.",
		}, []string{"op"}),
		SweepRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "runs_total",
			Help:      "Expiration sweep cycles, by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(m.OrdersCreated, m.OrdersRemoved, m.Captures, m.ProviderRetries, m.SweepRuns)
	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}
