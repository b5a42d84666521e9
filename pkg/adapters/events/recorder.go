package events

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/tools/record"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"externalconfig/pkg/agents/summary"
)

// Event reasons emitted on claims.
const (
	ReasonTargetCreated = "TargetCreated"
	ReasonTargetUpdated = "TargetUpdated"
	ReasonTargetSkipped = "TargetSkipped"
	ReasonSizeWarning   = "TargetSizeWarning"
	ReasonReconcileErr  = "ReconcileError"
	ReasonCleanupErr    = "CleanupError"
)

// Recorder wraps an EventRecorder with helpers for claim reconciliation.
//
// The helper methods guard against nil receivers so tests can pass a nil
// recorder when event emission is not under test.
type Recorder struct {
	recorder record.EventRecorder
}

// NewRecorder constructs a Recorder from the provided EventRecorder.
func NewRecorder(rec record.EventRecorder) *Recorder {
	return &Recorder{recorder: rec}
}

// Summary emits the event matching the action taken on the target.
func (r *Recorder) Summary(obj client.Object, sum *summary.Summary) {
	if r == nil || r.recorder == nil || sum == nil {
		return
	}
	switch sum.Action {
	case summary.ActionCreated:
		r.recorder.Eventf(obj, corev1.EventTypeNormal, ReasonTargetCreated, "%s %s/%s created with %d files", sum.TargetKind, obj.GetNamespace(), sum.TargetName, len(sum.Files))
	case summary.ActionUpdated:
		r.recorder.Eventf(obj, corev1.EventTypeNormal, ReasonTargetUpdated, "%s %s/%s updated", sum.TargetKind, obj.GetNamespace(), sum.TargetName)
	case summary.ActionSkipped:
		r.recorder.Eventf(obj, corev1.EventTypeNormal, ReasonTargetSkipped, "%s %s/%s not written: %s", sum.TargetKind, obj.GetNamespace(), sum.TargetName, sum.Reason)
	}
}

// SizeWarning records that the rendered target is close to the size limit.
func (r *Recorder) SizeWarning(obj client.Object, bytes, limit int) {
	if r == nil || r.recorder == nil {
		return
	}
	r.recorder.Eventf(obj, corev1.EventTypeWarning, ReasonSizeWarning, "rendered data is %d bytes, limit is %d", bytes, limit)
}

// Error records an event indicating reconciliation failed.
func (r *Recorder) Error(obj client.Object, err error) {
	if r == nil || r.recorder == nil || err == nil {
		return
	}
	r.recorder.Eventf(obj, corev1.EventTypeWarning, ReasonReconcileErr, "reconciliation error: %v", err)
}

// CleanupError records an event indicating finalization failed.
func (r *Recorder) CleanupError(obj client.Object, err error) {
	if r == nil || r.recorder == nil || err == nil {
		return
	}
	r.recorder.Eventf(obj, corev1.EventTypeWarning, ReasonCleanupErr, "cleanup error: %v", err)
}
