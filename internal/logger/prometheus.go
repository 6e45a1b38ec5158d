package logger

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// MetricsNamespace prefixes the metrics of this package.
const MetricsNamespace = "webtrees"

var (
	logStatements *prometheus.CounterVec //nolint:gochecknoglobals
	registerOnce  sync.Once              //nolint:gochecknoglobals
)

// PrometheusHook counts log events per level.
type PrometheusHook struct {
	counter *prometheus.CounterVec
}

// Run implements zerolog.Hook.
func (h PrometheusHook) Run(_ *zerolog.Event, level zerolog.Level, _ string) {
	if level == zerolog.NoLevel || h.counter == nil {
		return
	}

	h.counter.WithLabelValues(level.String()).Inc()
}

// NewPrometheusHook returns the hook behind webtrees_log_statements_total.
// The counter is registered once per process and keeps the first service label.
func NewPrometheusHook(service string) PrometheusHook {
	registerOnce.Do(func() {
		logStatements = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   MetricsNamespace,
				Name:        "log_statements_total",
				Help:        "Number of log statements, differentiated by log level.",
				ConstLabels: prometheus.Labels{"service": service},
			},
			[]string{"level"},
		)
	})

	return PrometheusHook{counter: logStatements}
}
