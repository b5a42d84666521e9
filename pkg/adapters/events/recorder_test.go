package events

import (
	"fmt"
	"strings"
	"testing"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/tools/record"

	"externalconfig/pkg/agents/summary"
	configv1alpha1 "externalconfig/pkg/api/v1alpha1"
)

func drain(fake *record.FakeRecorder) []string {
	var events []string
	for {
		select {
		case event := <-fake.Events:
			events = append(events, event)
		default:
			return events
		}
	}
}

func TestRecorderHelpers(t *testing.T) {
	fake := record.NewFakeRecorder(10)
	rec := NewRecorder(fake)
	obj := &configv1alpha1.ConfigMapClaim{ObjectMeta: metav1.ObjectMeta{Namespace: "apps", Name: "claim"}}

	rec.Summary(obj, &summary.Summary{TargetKind: "ConfigMap", TargetName: "cfg", Action: summary.ActionCreated, Files: []summary.FileOutcome{{Filename: "a.json"}}})
	rec.Summary(obj, &summary.Summary{TargetKind: "ConfigMap", TargetName: "cfg", Action: summary.ActionUpdated})
	rec.Summary(obj, &summary.Summary{TargetKind: "ConfigMap", TargetName: "cfg", Action: summary.ActionUnchanged})
	rec.Summary(obj, &summary.Summary{TargetKind: "ConfigMap", TargetName: "cfg", Action: summary.ActionSkipped, Reason: summary.ReasonCreationPolicyNone})
	rec.SizeWarning(obj, 950000, 1048576)
	rec.Error(obj, fmt.Errorf("boom"))
	rec.CleanupError(obj, fmt.Errorf("stuck"))

	events := drain(fake)
	if len(events) != 6 {
		t.Fatalf("expected 6 events (unchanged is silent), got %d: %v", len(events), events)
	}
	expected := []string{
		"Normal TargetCreated ConfigMap apps/cfg created with 1 files",
		"Normal TargetUpdated",
		"Normal TargetSkipped",
		"Warning TargetSizeWarning",
		"Warning ReconcileError reconciliation error: boom",
		"Warning CleanupError",
	}
	for index, prefix := range expected {
		if !strings.HasPrefix(events[index], prefix) {
			t.Fatalf("event %d: expected prefix %q, got %q", index, prefix, events[index])
		}
	}
}

func TestRecorderNilSafe(t *testing.T) {
	var rec *Recorder
	rec.Error(nil, fmt.Errorf("boom"))
	rec.Summary(nil, &summary.Summary{Action: summary.ActionCreated})

	NewRecorder(nil).SizeWarning(nil, 1, 2)
}
