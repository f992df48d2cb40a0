// Package metrics exposes session counters in the Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gazeuke"

// Recorder implements contracts.Metrics on a private registry.
type Recorder struct {
	reg        *prometheus.Registry
	selections *prometheus.CounterVec
	dwell      *prometheus.CounterVec
	samples    *prometheus.CounterVec
	playback   *prometheus.CounterVec
}

// New creates a recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selections_total",
			Help:      "Selections that triggered a note, by origin.",
		}, []string{"origin"}),
		dwell: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dwell_transitions_total",
			Help:      "Dwell state edges, by direction.",
		}, []string{"direction"}),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gaze_samples_total",
			Help:      "Gaze samples fed to the dwell detector.",
		}, []string{"result"}),
		playback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playback_runs_total",
			Help:      "Playback passes, by outcome.",
		}, []string{"result"}),
	}
	r.reg.MustRegister(r.selections, r.dwell, r.samples, r.playback)
	return r
}

func (r *Recorder) SelectionTriggered(origin string) {
	r.selections.WithLabelValues(origin).Inc()
}

func (r *Recorder) DwellTransition(inDwell bool) {
	dir := "exit"
	if inDwell {
		dir = "enter"
	}
	r.dwell.WithLabelValues(dir).Inc()
}

func (r *Recorder) GazeSample(accepted bool) {
	res := "rejected"
	if accepted {
		res = "accepted"
	}
	r.samples.WithLabelValues(res).Inc()
}

func (r *Recorder) PlaybackRun(result string) {
	r.playback.WithLabelValues(result).Inc()
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// Handler serves the registry, instrumented with its own request metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(r.reg, promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}))
}
