// Package metrics exposes prometheus counters for the notification pipeline.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"order-fulfillment/order-processing/config"
)

var Module = fx.Module("metrics",
	fx.Provide(func() prometheus.Registerer { return prometheus.DefaultRegisterer }),
	fx.Provide(func() prometheus.Gatherer { return prometheus.DefaultGatherer }),
	fx.Provide(func(reg prometheus.Registerer, cfg config.Config) *Metrics {
		return New(reg, cfg.ServiceName, cfg.Environment)
	}),
)

type Metrics struct {
	renders          *prometheus.CounterVec
	renderDuration   prometheus.Histogram
	operatorFallback *prometheus.CounterVec
	dispatches       *prometheus.CounterVec
}

func New(registerer prometheus.Registerer, service, env string) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	service = strings.TrimSpace(service)
	if service == "" {
		service = "order-notify"
	}
	env = strings.TrimSpace(env)
	if env == "" {
		env = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": service,
		"env":     env,
	}

	renders := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "order_invoice_renders_total",
			Help:        "Invoice documents rendered by result.",
			ConstLabels: constLabels,
		},
		[]string{"result"}, // success | failed
	)
	renderDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:        "order_invoice_render_seconds",
			Help:        "Time spent rendering one invoice document.",
			Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			ConstLabels: constLabels,
		},
	)
	operatorFallback := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "order_operator_email_fallback_total",
			Help:        "Operator address resolutions that used the configured fallback.",
			ConstLabels: constLabels,
		},
		[]string{"reason"}, // not_set | lookup_failed
	)
	dispatches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "order_invoice_emails_total",
			Help:        "Invoice emails attempted by recipient role and result.",
			ConstLabels: constLabels,
		},
		[]string{"role", "result"}, // operator|customer, sent|failed
	)

	registerer.MustRegister(renders, renderDuration, operatorFallback, dispatches)

	return &Metrics{
		renders:          renders,
		renderDuration:   renderDuration,
		operatorFallback: operatorFallback,
		dispatches:       dispatches,
	}
}

func (m *Metrics) ObserveRender(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failed"
	}
	m.renders.WithLabelValues(result).Inc()
	m.renderDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) IncOperatorFallback(reason string) {
	if m == nil {
		return
	}
	m.operatorFallback.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncDispatch(role, result string) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(role, result).Inc()
}
