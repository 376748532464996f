package daemon

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jmylchreest/popkit/internal/model"
)

// Metrics holds the Prometheus collectors for popkitd. A nil *Metrics
// records nothing.
type Metrics struct {
	PopupsTotal       *prometheus.CounterVec
	OutcomesTotal     *prometheus.CounterVec
	ShowFailuresTotal prometheus.Counter
	SoundErrorsTotal  prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		PopupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "popkitd_popups_total",
			Help: "Popups routed to the display, by kind and mode",
		}, []string{"kind", "mode", "source"}),
		OutcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "popkitd_outcomes_total",
			Help: "Popup results, by choice and dismiss reason",
		}, []string{"choice", "reason"}),
		ShowFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "popkitd_show_failures_total",
			Help: "Popups the display could not show",
		}),
		SoundErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "popkitd_sound_errors_total",
			Help: "Popup sounds that failed to play",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.PopupsTotal,
		m.OutcomesTotal,
		m.ShowFailuresTotal,
		m.SoundErrorsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) popup(req *model.Request, popkit bool) {
	if m == nil {
		return
	}
	source := "foreign"
	if popkit {
		source = "popkit"
	}
	m.PopupsTotal.WithLabelValues(string(req.Kind), string(req.Mode), source).Inc()
}

func (m *Metrics) outcome(o model.Outcome) {
	if m == nil {
		return
	}
	m.OutcomesTotal.WithLabelValues(string(o.Choice), string(o.Reason)).Inc()
}

func (m *Metrics) showFailure() {
	if m == nil {
		return
	}
	m.ShowFailuresTotal.Inc()
}

func (m *Metrics) soundError() {
	if m == nil {
		return
	}
	m.SoundErrorsTotal.Inc()
}
