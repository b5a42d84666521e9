package status

import (
	"fmt"
	"time"

	"github.com/huandu/xstrings"

	"externalconfig/pkg/agents/summary"
	"externalconfig/pkg/core"
)

// Compute builds the claim status from the summary and error of a reconcile.
// A failed reconcile keeps lastSynced and syncedFiles from the previous
// successful one.
func Compute(previous core.ClaimStatus, sum *summary.Summary, reconcileErr error, now time.Time) core.ClaimStatus {
	status := previous
	timestamp := now.UTC().Format(time.RFC3339)

	if reconcileErr == nil {
		status.LastSynced = timestamp
		status.SyncedFiles = sum.Filenames()
	}
	status.Conditions = mergeConditions(previous.Conditions, desiredConditions(sum, reconcileErr, timestamp))
	return status
}

func desiredConditions(sum *summary.Summary, reconcileErr error, timestamp string) []core.Condition {
	ready := core.Condition{Type: core.CondReady, LastTransitionTime: timestamp}
	degraded := core.Condition{Type: core.CondDegraded, LastTransitionTime: timestamp}

	switch {
	case reconcileErr != nil:
		ready.Status = "False"
		ready.Reason = "Error"
		ready.Message = fmt.Sprintf("reconciliation failed: %v", reconcileErr)
		degraded.Status = "True"
		degraded.Reason = reasonFor(reconcileErr)
		degraded.Message = ready.Message
	case sum != nil && sum.Action == summary.ActionSkipped:
		ready.Status = "True"
		ready.Reason = sum.Reason
		ready.Message = fmt.Sprintf("resolved %d files, target not written", len(sum.Files))
		degraded.Status = "False"
		degraded.Reason = "Healthy"
		degraded.Message = "no errors"
	default:
		ready.Status = "True"
		ready.Reason = "Reconciled"
		if sum != nil {
			ready.Message = fmt.Sprintf("%s %s has %d files", sum.TargetKind, sum.TargetName, len(sum.Files))
		} else {
			ready.Message = "reconciliation succeeded"
		}
		degraded.Status = "False"
		degraded.Reason = "Healthy"
		degraded.Message = "no errors"
	}

	return []core.Condition{ready, degraded}
}

// reasonFor turns the error taxonomy label into a condition reason.
func reasonFor(err error) string {
	return xstrings.ToPascalCase(core.MetricLabel(err))
}

func mergeConditions(previous []core.Condition, desired []core.Condition) []core.Condition {
	byType := map[string]core.Condition{}
	for _, cond := range previous {
		byType[cond.Type] = cond
	}
	result := make([]core.Condition, 0, len(desired))
	for _, cond := range desired {
		if prev, ok := byType[cond.Type]; ok {
			if prev.Status == cond.Status && prev.Reason == cond.Reason && prev.Message == cond.Message {
				cond.LastTransitionTime = prev.LastTransitionTime
			}
		}
		result = append(result, cond)
	}
	return result
}
