package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	phaseDuration *prom.HistogramVec
	phaseResults  *prom.CounterVec
	injections    *prom.CounterVec
	assetBytes    *prom.GaugeVec
}

// NewPrometheusRecorder constructs and registers the pipeline metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		phaseDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "webupdate",
			Name:      "phase_duration_seconds",
			Help:      "Duration of pipeline phases",
			Buckets:   prom.DefBuckets,
		}, []string{"phase"}),
		phaseResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "webupdate",
			Name:      "phase_results_total",
			Help:      "Pipeline phase results by outcome",
		}, []string{"phase", "result"}),
		injections: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "webupdate",
			Name:      "html_injections_total",
			Help:      "Entry document injections by mode and outcome",
		}, []string{"mode", "result"}),
		assetBytes: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "webupdate",
			Name:      "asset_bytes",
			Help:      "Size of the generated assets of the last run",
		}, []string{"asset"}),
	}
	reg.MustRegister(pr.phaseDuration, pr.phaseResults, pr.injections, pr.assetBytes)
	return pr
}

func (p *PrometheusRecorder) ObservePhaseDuration(phase string, d time.Duration) {
	if p == nil {
		return
	}
	p.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPhaseResult(phase string, result ResultLabel) {
	if p == nil {
		return
	}
	p.phaseResults.WithLabelValues(phase, string(result)).Inc()
}

func (p *PrometheusRecorder) IncInjection(mode string, result ResultLabel) {
	if p == nil {
		return
	}
	p.injections.WithLabelValues(mode, string(result)).Inc()
}

func (p *PrometheusRecorder) SetAssetBytes(asset string, n int) {
	if p == nil {
		return
	}
	p.assetBytes.WithLabelValues(asset).Set(float64(n))
}
