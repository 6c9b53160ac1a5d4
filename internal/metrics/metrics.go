package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coreman2200/rkconfig/internal/protocol"
)

const namespace = "rkconfig"

// Metrics holds the collectors for frame building and report transmission.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	framesBuilt *prometheus.CounterVec // frames produced, by section kind
	buildErrors *prometheus.CounterVec // failed builds, by reason
	reportsSent prometheus.Counter
	sendErrors  prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		framesBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_built_total",
			Help:      "Frames produced by the buffer builder",
		}, []string{"kind"}),
		buildErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "build_errors_total",
			Help:      "Configurations rejected by the buffer builder",
		}, []string{"reason"}),
		reportsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_sent_total",
			Help:      "Frames written to a keyboard",
		}),
		sendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_errors_total",
			Help:      "Failed frame writes",
		}),
	}
	m.registry.MustRegister(m.framesBuilt, m.buildErrors, m.reportsSent, m.sendErrors)
	return m
}

// Registry exposes the private registry for scraping and tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveBuild(sections []protocol.Section, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.buildErrors.WithLabelValues(reason(err)).Inc()
		return
	}
	for _, s := range sections {
		m.framesBuilt.WithLabelValues(string(s.Kind)).Add(float64(len(s.Frames)))
	}
}

func (m *Metrics) ObserveSend(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.sendErrors.Inc()
		return
	}
	m.reportsSent.Inc()
}

func reason(err error) string {
	switch {
	case errors.Is(err, protocol.ErrMissingCustomColors):
		return "missing_custom_colors"
	case errors.Is(err, protocol.ErrMissingColor):
		return "missing_color"
	}
	return "other"
}
