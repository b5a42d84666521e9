// Package metrics holds process-wide collectors shared by the store clients
// and the lease coordinator.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	registerOnce sync.Once

	storeFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "external_config_store_fetches_total",
		Help: "Total number of configuration store fetches grouped by provider and outcome.",
	}, []string{"provider", "outcome"})

	storeFetchSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "external_config_store_fetch_seconds",
		Help:    "Histogram of configuration store fetch latency in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"provider"})

	leaderGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "external_config_leader",
		Help: "Set to 1 while this pod holds the leader lease.",
	}, []string{"pod"})
)

func ensureRegistered() {
	registerOnce.Do(func() {
		ctrlmetrics.Registry.MustRegister(storeFetchesTotal, storeFetchSeconds, leaderGauge)
	})
}

// RecordStoreFetch updates the fetch counters for a single store request.
func RecordStoreFetch(provider string, duration time.Duration, fetchErr error) {
	ensureRegistered()

	outcome := OutcomeSuccess
	if fetchErr != nil {
		outcome = OutcomeError
	}

	storeFetchesTotal.WithLabelValues(provider, outcome).Inc()
	storeFetchSeconds.WithLabelValues(provider).Observe(duration.Seconds())
}

// SetLeader flips the leader gauge for pod.
func SetLeader(pod string, leading bool) {
	ensureRegistered()

	value := 0.0
	if leading {
		value = 1
	}
	leaderGauge.WithLabelValues(pod).Set(value)
}
