package claim

import (
	"time"

	ctrl "sigs.k8s.io/controller-runtime"
)

// Action tells the controller when a claim should be looked at again.
type Action struct {
	RequeueAfter time.Duration
}

// Requeue schedules the next reconcile after d.
func Requeue(d time.Duration) Action { return Action{RequeueAfter: d} }

// AwaitChange waits for the next watch event.
func AwaitChange() Action { return Action{} }

// Result converts the action for controller-runtime.
func (action Action) Result() ctrl.Result {
	return ctrl.Result{RequeueAfter: action.RequeueAfter}
}
