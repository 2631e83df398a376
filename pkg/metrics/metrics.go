package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sink counts lifecycle outcomes. kind is the sensor kind, or "" for camera-level events.
type Sink interface {
	Inc(event string, kind string)
}

type Nop struct{}

func (Nop) Inc(string, string) {}

// Prometheus keeps its own registry so several instances can live in one process.
type Prometheus struct {
	registry *prometheus.Registry
	events   *prometheus.CounterVec
}

func NewPrometheus() *Prometheus {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "iot",
		Subsystem: "camera_service",
		Name:      "lifecycle_events_total",
		Help:      "Camera, sensor and location lifecycle outcomes.",
	}, []string{"event", "kind"})
	registry.MustRegister(events)

	return &Prometheus{registry: registry, events: events}
}

func (p *Prometheus) Inc(event string, kind string) {
	p.events.WithLabelValues(event, strings.ToLower(kind)).Inc()
}

// Counter exposes one series, mostly for tests.
func (p *Prometheus) Counter(event string, kind string) prometheus.Counter {
	return p.events.WithLabelValues(event, strings.ToLower(kind))
}

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
