package claim

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	"externalconfig/pkg/adapters/events"
	"externalconfig/pkg/adapters/metrics"
	"externalconfig/pkg/agents/status"
	"externalconfig/pkg/agents/summary"
	configv1alpha1 "externalconfig/pkg/api/v1alpha1"
	"externalconfig/pkg/core"
	"externalconfig/pkg/observability/diagnostics"
)

// Controller reconciles one claim kind with a controller-runtime manager.
type Controller[T configv1alpha1.Claim] struct {
	client.Client
	logger   logr.Logger
	kind     string
	newClaim func() T
	engine   Reconcilable
	events   *events.Recorder
	metrics  *metrics.Recorder
	// diagnostics is optional.
	diagnostics *diagnostics.State
	now         func() time.Time
}

// NewController wires a Controller for the kind produced by newClaim.
func NewController[T configv1alpha1.Claim](kubeClient client.Client, kind string, newClaim func() T, engine Reconcilable, recorder *events.Recorder, metricsRecorder *metrics.Recorder) *Controller[T] {
	return &Controller[T]{
		Client:   kubeClient,
		logger:   ctrl.Log.WithName("controllers").WithName(kind),
		kind:     kind,
		newClaim: newClaim,
		engine:   engine,
		events:   recorder,
		metrics:  metricsRecorder,
		now:      time.Now,
	}
}

// WithDiagnostics makes the controller report reconcile activity to state.
func (controller *Controller[T]) WithDiagnostics(state *diagnostics.State) *Controller[T] {
	controller.diagnostics = state
	return controller
}

var _ reconcile.Reconciler = &Controller[*configv1alpha1.ConfigMapClaim]{}

// Reconcile drives the claim through its finalizer states. Failures are
// recorded on the claim and retried after a fixed delay.
func (controller *Controller[T]) Reconcile(requestContext context.Context, reconcileRequest ctrl.Request) (ctrl.Result, error) {
	requestLogger := controller.logger.WithValues("claim", reconcileRequest.NamespacedName)
	requestContext = log.IntoContext(requestContext, requestLogger)

	claim := controller.newClaim()
	if err := controller.Get(requestContext, reconcileRequest.NamespacedName, claim); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, core.NewPlatformAPIError("get claim", err)
	}

	start := controller.now()
	controller.diagnostics.Touch(start)
	if !claim.GetDeletionTimestamp().IsZero() {
		return controller.finalize(requestContext, requestLogger, claim, start)
	}

	if !controllerutil.ContainsFinalizer(claim, core.Finalizer) {
		controllerutil.AddFinalizer(claim, core.Finalizer)
		if err := controller.Update(requestContext, claim); err != nil {
			if apierrors.IsConflict(err) {
				return ctrl.Result{RequeueAfter: core.ConflictRequeueInterval}, nil
			}
			return ctrl.Result{}, core.NewPlatformAPIError("add claim finalizer", err)
		}
	}

	spec := claim.ClaimSpec()
	core.DefaultClaimSpec(spec)
	statusPatch := client.MergeFrom(claim.DeepCopyObject().(client.Object))

	var (
		action Action
		sum    *summary.Summary
		err    = core.ValidateClaimSpec(spec)
	)
	if err == nil {
		action, sum, err = controller.engine.Reconcile(requestContext, claim)
	}
	duration := controller.now().Sub(start)

	if err != nil {
		err = &core.FinalizerError{Phase: core.PhaseApplying, Err: err}
		requestLogger.Error(err, "reconciliation failed", "category", core.ClassifyError(err))
		controller.events.Error(claim, err)
		controller.metrics.ObserveError(controller.kind, err, duration)
		controller.patchStatus(requestContext, requestLogger, claim, statusPatch, nil, err)
		return ctrl.Result{RequeueAfter: core.ErrorRequeueInterval}, nil
	}

	controller.events.Summary(claim, sum)
	controller.metrics.ObserveReconcile(controller.kind, claim.GetNamespace(), claim.GetName(), sum, duration)
	if patchErr := controller.patchStatus(requestContext, requestLogger, claim, statusPatch, sum, nil); patchErr != nil {
		if apierrors.IsConflict(patchErr) {
			return ctrl.Result{RequeueAfter: core.ConflictRequeueInterval}, nil
		}
		return ctrl.Result{RequeueAfter: core.ErrorRequeueInterval}, nil
	}

	requestLogger.V(1).Info("reconciled", "action", sum.Action, "requeueAfter", action.RequeueAfter)
	return action.Result(), nil
}

func (controller *Controller[T]) finalize(requestContext context.Context, requestLogger logr.Logger, claim T, start time.Time) (ctrl.Result, error) {
	if !controllerutil.ContainsFinalizer(claim, core.Finalizer) {
		return ctrl.Result{}, nil
	}

	action, err := controller.engine.Cleanup(requestContext, claim)
	if err == nil {
		controllerutil.RemoveFinalizer(claim, core.Finalizer)
		if updateErr := controller.Update(requestContext, claim); updateErr != nil {
			err = core.NewPlatformAPIError("remove claim finalizer", updateErr)
		}
	}

	if err != nil {
		err = &core.FinalizerError{Phase: core.PhaseCleaning, Err: err}
		requestLogger.Error(err, "cleanup failed", "category", core.ClassifyError(err))
		controller.events.CleanupError(claim, err)
		controller.metrics.ObserveError(controller.kind, err, controller.now().Sub(start))
		return ctrl.Result{RequeueAfter: core.ErrorRequeueInterval}, nil
	}

	controller.metrics.Forget(controller.kind, claim.GetNamespace(), claim.GetName())
	requestLogger.Info("claim finalized")
	return action.Result(), nil
}

func (controller *Controller[T]) patchStatus(requestContext context.Context, requestLogger logr.Logger, claim T, patch client.Patch, sum *summary.Summary, reconcileErr error) error {
	current := claim.ClaimStatus()
	*current = status.Compute(*current, sum, reconcileErr, controller.now())

	if err := controller.Status().Patch(requestContext, claim, patch); err != nil {
		requestLogger.Error(err, "update status failed")
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}
