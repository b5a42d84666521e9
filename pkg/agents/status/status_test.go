package status

import (
	"errors"
	"testing"
	"time"

	"externalconfig/pkg/agents/summary"
	"externalconfig/pkg/core"
)

func findCondition(conditions []core.Condition, conditionType string) core.Condition {
	for _, cond := range conditions {
		if cond.Type == conditionType {
			return cond
		}
	}
	return core.Condition{}
}

func sampleSummary() *summary.Summary {
	return &summary.Summary{
		TargetKind: "ConfigMap",
		TargetName: "app-config",
		Action:     summary.ActionUpdated,
		Reason:     summary.ReasonApplied,
		Files: []summary.FileOutcome{
			{Filename: "b.yaml", Format: "yaml"},
			{Filename: "a.json", Format: "json"},
		},
	}
}

func TestComputeReady(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	status := Compute(core.ClaimStatus{}, sampleSummary(), nil, now)

	if status.LastSynced != now.Format(time.RFC3339) {
		t.Fatalf("lastSynced not set: %q", status.LastSynced)
	}
	if len(status.SyncedFiles) != 2 || status.SyncedFiles[0] != "a.json" {
		t.Fatalf("expected sorted synced files, got %v", status.SyncedFiles)
	}
	if len(status.Conditions) != 2 || status.Conditions[0].Type != core.CondReady {
		t.Fatalf("expected Ready then Degraded, got %+v", status.Conditions)
	}
	ready := findCondition(status.Conditions, core.CondReady)
	if ready.Status != "True" || ready.Reason != "Reconciled" {
		t.Fatalf("ready condition unexpected: %+v", ready)
	}
	degraded := findCondition(status.Conditions, core.CondDegraded)
	if degraded.Status != "False" {
		t.Fatalf("degraded condition unexpected: %+v", degraded)
	}
}

func TestComputeErrorKeepsLastSuccess(t *testing.T) {
	previous := core.ClaimStatus{LastSynced: "2023-12-31T00:00:00Z", SyncedFiles: []string{"a.json"}}
	err := &core.FinalizerError{Phase: core.PhaseApplying, Err: &core.ConfigStoreError{Filename: "a.json", Err: errors.New("down")}}

	status := Compute(previous, nil, err, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	if status.LastSynced != previous.LastSynced || len(status.SyncedFiles) != 1 {
		t.Fatalf("failed reconcile must not touch sync fields: %+v", status)
	}
	ready := findCondition(status.Conditions, core.CondReady)
	if ready.Status != "False" || ready.Reason != "Error" {
		t.Fatalf("expected ready false, got %+v", ready)
	}
	degraded := findCondition(status.Conditions, core.CondDegraded)
	if degraded.Status != "True" || degraded.Reason != "ConfigStoreError" {
		t.Fatalf("expected degraded with taxonomy reason, got %+v", degraded)
	}
}

func TestComputeSkippedTarget(t *testing.T) {
	sum := sampleSummary()
	sum.Action = summary.ActionSkipped
	sum.Reason = summary.ReasonCreationPolicyNone

	status := Compute(core.ClaimStatus{}, sum, nil, time.Now())
	ready := findCondition(status.Conditions, core.CondReady)
	if ready.Status != "True" || ready.Reason != summary.ReasonCreationPolicyNone {
		t.Fatalf("expected ready with skip reason, got %+v", ready)
	}
}

func TestComputePreservesTransitionTime(t *testing.T) {
	first := Compute(core.ClaimStatus{}, sampleSummary(), nil, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	second := Compute(first, sampleSummary(), nil, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

	before := findCondition(first.Conditions, core.CondReady)
	after := findCondition(second.Conditions, core.CondReady)
	if before.LastTransitionTime != after.LastTransitionTime {
		t.Fatalf("unchanged condition must keep its transition time: %s vs %s", before.LastTransitionTime, after.LastTransitionTime)
	}
	if second.LastSynced == first.LastSynced {
		t.Fatalf("lastSynced must advance on every success")
	}
}
