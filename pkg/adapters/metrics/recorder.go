package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"

	"externalconfig/pkg/agents/summary"
	"externalconfig/pkg/core"
)

// Recorder exposes helpers for recording Prometheus metrics about claim reconciliations.
type Recorder struct {
	reconciliations *prometheus.CounterVec
	failures        *prometheus.CounterVec
	durations       *prometheus.HistogramVec
	targetBytes     *prometheus.GaugeVec
}

var (
	defaultOnce     sync.Once
	defaultRecorder *Recorder
)

// Default returns the shared recorder registered with controller-runtime.
func Default() *Recorder {
	defaultOnce.Do(func() { defaultRecorder = NewRecorder(ctrlmetrics.Registry) })
	return defaultRecorder
}

// NewRecorder constructs a Recorder and registers the metrics with the provided registerer.
// If reg is nil the default Prometheus registerer is used.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &Recorder{
		reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "external_config_reconciliations_total",
			Help: "Total number of claim reconciliations partitioned by kind and target action.",
		}, []string{"kind", "action"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "external_config_reconcile_failures_total",
			Help: "Total number of failed claim reconciliations partitioned by kind and error.",
		}, []string{"kind", "error"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "external_config_reconcile_duration_seconds",
			Help:    "Duration of claim reconciliations in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		targetBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "external_config_target_bytes",
			Help: "Rendered size of the most recent target written for a claim.",
		}, []string{"kind", "namespace", "name"}),
	}
	r.reconciliations = registerCounterVec(reg, r.reconciliations)
	r.failures = registerCounterVec(reg, r.failures)
	r.durations = registerHistogramVec(reg, r.durations)
	r.targetBytes = registerGaugeVec(reg, r.targetBytes)
	return r
}

// ObserveReconcile records a successful reconciliation with its duration.
func (r *Recorder) ObserveReconcile(kind, namespace, name string, sum *summary.Summary, duration time.Duration) {
	if r == nil {
		return
	}
	action := string(summary.ActionUnchanged)
	if sum != nil {
		action = string(sum.Action)
		r.targetBytes.WithLabelValues(kind, namespace, name).Set(float64(sum.Bytes))
	}
	r.reconciliations.WithLabelValues(kind, action).Inc()
	r.durations.WithLabelValues(kind).Observe(duration.Seconds())
}

// ObserveError increments the failure counter labelled with the error kind.
func (r *Recorder) ObserveError(kind string, err error, duration time.Duration) {
	if r == nil || err == nil {
		return
	}
	r.failures.WithLabelValues(kind, core.MetricLabel(err)).Inc()
	r.durations.WithLabelValues(kind).Observe(duration.Seconds())
}

// Forget drops the per-claim series of a deleted claim.
func (r *Recorder) Forget(kind, namespace, name string) {
	if r == nil {
		return
	}
	r.targetBytes.DeleteLabelValues(kind, namespace, name)
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := reg.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func registerGaugeVec(reg prometheus.Registerer, g *prometheus.GaugeVec) *prometheus.GaugeVec {
	if err := reg.Register(g); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing
			}
		}
		panic(err)
	}
	return g
}

func registerHistogramVec(reg prometheus.Registerer, h *prometheus.HistogramVec) *prometheus.HistogramVec {
	if err := reg.Register(h); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing
			}
		}
		panic(err)
	}
	return h
}
