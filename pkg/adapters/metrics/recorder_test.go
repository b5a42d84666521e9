package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"externalconfig/pkg/agents/summary"
	"externalconfig/pkg/core"
)

func TestRecorderObserveReconcile(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)

	rec.ObserveReconcile("ConfigMapClaim", "apps", "claim", &summary.Summary{Action: summary.ActionCreated, Bytes: 42}, 250*time.Millisecond)
	rec.ObserveReconcile("ConfigMapClaim", "apps", "claim", &summary.Summary{Action: summary.ActionUnchanged, Bytes: 42}, 100*time.Millisecond)

	if got := testutil.ToFloat64(rec.reconciliations.WithLabelValues("ConfigMapClaim", "created")); got != 1 {
		t.Fatalf("expected created counter 1, got %f", got)
	}
	if got := testutil.ToFloat64(rec.reconciliations.WithLabelValues("ConfigMapClaim", "unchanged")); got != 1 {
		t.Fatalf("expected unchanged counter 1, got %f", got)
	}
	if got := testutil.ToFloat64(rec.targetBytes.WithLabelValues("ConfigMapClaim", "apps", "claim")); got != 42 {
		t.Fatalf("expected target bytes 42, got %f", got)
	}
	if count := testutil.CollectAndCount(rec.durations); count != 1 {
		t.Fatalf("expected one histogram series, got %d", count)
	}

	rec.Forget("ConfigMapClaim", "apps", "claim")
	if count := testutil.CollectAndCount(rec.targetBytes); count != 0 {
		t.Fatalf("expected target bytes series removed, got %d", count)
	}
}

func TestRecorderObserveErrorLabelsTaxonomy(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)

	storeErr := &core.FinalizerError{Phase: core.PhaseApplying, Err: &core.ConfigStoreError{Filename: "a.json", Err: errors.New("down")}}
	rec.ObserveError("SecretClaim", storeErr, time.Second)
	rec.ObserveError("SecretClaim", storeErr, time.Second)
	rec.ObserveError("SecretClaim", core.ErrParse, time.Second)
	rec.ObserveError("SecretClaim", nil, time.Second)

	if got := testutil.ToFloat64(rec.failures.WithLabelValues("SecretClaim", "config_store_error")); got != 2 {
		t.Fatalf("expected 2 store errors, got %f", got)
	}
	if got := testutil.ToFloat64(rec.failures.WithLabelValues("SecretClaim", "parse_error")); got != 1 {
		t.Fatalf("expected 1 parse error, got %f", got)
	}
}

func TestNewRecorderReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewRecorder(reg)
	second := NewRecorder(reg)

	second.ObserveError("ConfigMapClaim", core.ErrParse, time.Millisecond)
	if got := testutil.ToFloat64(first.failures.WithLabelValues("ConfigMapClaim", "parse_error")); got != 1 {
		t.Fatalf("expected shared collector, got %f", got)
	}
}

func TestRecorderNilSafe(t *testing.T) {
	var rec *Recorder
	rec.ObserveReconcile("k", "ns", "n", nil, time.Second)
	rec.ObserveError("k", core.ErrParse, time.Second)
	rec.Forget("k", "ns", "n")
}
