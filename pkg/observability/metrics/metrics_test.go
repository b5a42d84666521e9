package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordStoreFetch(t *testing.T) {
	ensureRegistered()
	storeFetchesTotal.Reset()
	storeFetchSeconds.Reset()

	RecordStoreFetch("http", 20*time.Millisecond, nil)
	RecordStoreFetch("http", 30*time.Millisecond, assertErr{})
	RecordStoreFetch("http", 10*time.Millisecond, nil)

	if got := testutil.ToFloat64(storeFetchesTotal.WithLabelValues("http", OutcomeSuccess)); got != 2 {
		t.Fatalf("expected 2 successful fetches, got %v", got)
	}
	if got := testutil.ToFloat64(storeFetchesTotal.WithLabelValues("http", OutcomeError)); got != 1 {
		t.Fatalf("expected 1 failed fetch, got %v", got)
	}
	if count := testutil.CollectAndCount(storeFetchSeconds); count != 1 {
		t.Fatalf("expected one histogram series, got %d", count)
	}
}

func TestSetLeader(t *testing.T) {
	ensureRegistered()
	leaderGauge.Reset()

	SetLeader("pod-a", true)
	if got := testutil.ToFloat64(leaderGauge.WithLabelValues("pod-a")); got != 1 {
		t.Fatalf("expected leader gauge 1, got %v", got)
	}

	SetLeader("pod-a", false)
	if got := testutil.ToFloat64(leaderGauge.WithLabelValues("pod-a")); got != 0 {
		t.Fatalf("expected leader gauge 0, got %v", got)
	}
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
