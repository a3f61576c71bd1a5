// Package metrics exposes Prometheus collectors for the admin token broker.
//
// All recording methods are safe on a nil *Registry so components can be
// constructed without metrics in tests.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tagora"

const (
	SweepReasonExpired  = "expired"
	SweepReasonConsumed = "consumed"

	DeliveryResultSent   = "sent"
	DeliveryResultFailed = "failed"
)

type Registry struct {
	registry *prometheus.Registry

	tokensIssued  prometheus.Counter
	issueFailures prometheus.Counter
	validations   *prometheus.CounterVec
	swept         *prometheus.CounterVec
	deliveries    *prometheus.CounterVec
}

func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admin_token",
			Name:      "issued_total",
			Help:      "Admin tokens issued.",
		}),
		issueFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admin_token",
			Name:      "issue_failures_total",
			Help:      "Admin token issuances that failed to mint a credential.",
		}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admin_token",
			Name:      "validations_total",
			Help:      "Admin token validations by outcome.",
		}, []string{"outcome"}),
		swept: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admin_token",
			Name:      "swept_total",
			Help:      "Admin token records removed from memory by reason.",
		}, []string{"reason"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admin_token",
			Name:      "deliveries_total",
			Help:      "Out-of-band admin token deliveries by result.",
		}, []string{"channel", "result"}),
	}

	reg.MustRegister(r.tokensIssued, r.issueFailures, r.validations, r.swept, r.deliveries)
	return r
}

// RegisterActiveTokens exposes a live gauge computed by fn at scrape time.
func (r *Registry) RegisterActiveTokens(fn func() float64) error {
	if r == nil {
		return nil
	}
	return r.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "admin_token",
		Name:      "active",
		Help:      "Admin tokens currently unused and unexpired.",
	}, fn))
}

func (r *Registry) IncIssued() {
	if r == nil {
		return
	}
	r.tokensIssued.Inc()
}

func (r *Registry) IncIssueFailure() {
	if r == nil {
		return
	}
	r.issueFailures.Inc()
}

func (r *Registry) ObserveValidation(outcome string) {
	if r == nil {
		return
	}
	r.validations.WithLabelValues(outcome).Inc()
}

func (r *Registry) AddSwept(reason string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.swept.WithLabelValues(reason).Add(float64(n))
}

func (r *Registry) ObserveDelivery(channel, result string) {
	if r == nil {
		return
	}
	r.deliveries.WithLabelValues(channel, result).Inc()
}

func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
