package claim

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	"externalconfig/pkg/adapters/events"
	"externalconfig/pkg/adapters/metrics"
	"externalconfig/pkg/agents/summary"
	configv1alpha1 "externalconfig/pkg/api/v1alpha1"
	"externalconfig/pkg/core"
	"externalconfig/pkg/observability/diagnostics"
)

type stubEngine struct {
	action       Action
	summary      *summary.Summary
	reconcileErr error
	cleanupErr   error
	reconciles   int
	cleanups     int
}

func (stub *stubEngine) Reconcile(context.Context, configv1alpha1.Claim) (Action, *summary.Summary, error) {
	stub.reconciles++
	return stub.action, stub.summary, stub.reconcileErr
}

func (stub *stubEngine) Cleanup(context.Context, configv1alpha1.Claim) (Action, error) {
	stub.cleanups++
	return AwaitChange(), stub.cleanupErr
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestController(t *testing.T, engine Reconcilable, objects ...client.Object) (*Controller[*configv1alpha1.ConfigMapClaim], client.Client, *record.FakeRecorder) {
	t.Helper()
	kubeClient := fake.NewClientBuilder().
		WithScheme(testScheme(t)).
		WithObjects(objects...).
		WithStatusSubresource(&configv1alpha1.ConfigMapClaim{}).
		Build()
	fakeRecorder := record.NewFakeRecorder(10)
	controller := NewController(kubeClient, "ConfigMapClaim",
		func() *configv1alpha1.ConfigMapClaim { return &configv1alpha1.ConfigMapClaim{} },
		engine, events.NewRecorder(fakeRecorder), metrics.NewRecorder(prometheus.NewRegistry()))
	controller.now = func() time.Time { return fixedNow }
	return controller, kubeClient, fakeRecorder
}

func request(namespace, name string) ctrl.Request {
	return ctrl.Request{NamespacedName: types.NamespacedName{Namespace: namespace, Name: name}}
}

func TestControllerIgnoresMissingClaim(t *testing.T) {
	engine := &stubEngine{}
	controller, _, _ := newTestController(t, engine)

	result, err := controller.Reconcile(context.Background(), request("apps", "gone"))
	if err != nil || result != (ctrl.Result{}) {
		t.Fatalf("expected no-op, got %+v, %v", result, err)
	}
	if engine.reconciles != 0 {
		t.Fatalf("engine must not run for a missing claim")
	}
}

func TestControllerReconcilesLiveClaim(t *testing.T) {
	engine := &stubEngine{
		action:  Requeue(time.Minute),
		summary: &summary.Summary{TargetKind: "ConfigMap", TargetName: "app-config", Action: summary.ActionCreated, Files: []summary.FileOutcome{{Filename: "app.json"}}},
	}
	claim := newConfigMapClaim("")
	controller, kubeClient, fakeRecorder := newTestController(t, engine, claim)
	state := diagnostics.NewState(diagnostics.DefaultReporter, time.Time{})
	controller.WithDiagnostics(state)

	result, err := controller.Reconcile(context.Background(), request("apps", "claim"))
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !state.Snapshot().LastEvent.Equal(fixedNow) {
		t.Fatalf("expected diagnostics to record the reconcile, got %v", state.Snapshot().LastEvent)
	}
	if result.RequeueAfter != time.Minute {
		t.Fatalf("expected requeue after a minute, got %+v", result)
	}

	var stored configv1alpha1.ConfigMapClaim
	if err := kubeClient.Get(context.Background(), types.NamespacedName{Namespace: "apps", Name: "claim"}, &stored); err != nil {
		t.Fatalf("get claim: %v", err)
	}
	if !controllerutil.ContainsFinalizer(&stored, core.Finalizer) {
		t.Fatalf("expected claim finalizer")
	}
	if !configv1alpha1.IsReady(&stored) {
		t.Fatalf("expected Ready condition, got %+v", stored.Status.Conditions)
	}
	if stored.Status.LastSynced != fixedNow.Format(time.RFC3339) {
		t.Fatalf("unexpected lastSynced %q", stored.Status.LastSynced)
	}
	if len(stored.Status.SyncedFiles) != 1 || stored.Status.SyncedFiles[0] != "app.json" {
		t.Fatalf("unexpected synced files %v", stored.Status.SyncedFiles)
	}

	select {
	case event := <-fakeRecorder.Events:
		if !strings.HasPrefix(event, "Normal "+events.ReasonTargetCreated) {
			t.Fatalf("unexpected event %q", event)
		}
	default:
		t.Fatalf("expected a creation event")
	}
}

func TestControllerRetriesFinalizerConflictShortly(t *testing.T) {
	engine := &stubEngine{}
	kubeClient := fake.NewClientBuilder().
		WithScheme(testScheme(t)).
		WithObjects(newConfigMapClaim(core.CreationPolicyOwned)).
		WithStatusSubresource(&configv1alpha1.ConfigMapClaim{}).
		WithInterceptorFuncs(interceptor.Funcs{
			Update: func(_ context.Context, _ client.WithWatch, obj client.Object, _ ...client.UpdateOption) error {
				return apierrors.NewConflict(schema.GroupResource{Resource: "configmapclaims"}, obj.GetName(), errors.New("stale"))
			},
		}).
		Build()
	controller := NewController(kubeClient, "ConfigMapClaim",
		func() *configv1alpha1.ConfigMapClaim { return &configv1alpha1.ConfigMapClaim{} },
		engine, events.NewRecorder(record.NewFakeRecorder(10)), metrics.NewRecorder(prometheus.NewRegistry()))

	result, err := controller.Reconcile(context.Background(), request("apps", "claim"))
	if err != nil {
		t.Fatalf("conflicts must not surface as errors, got %v", err)
	}
	if result.RequeueAfter != core.ConflictRequeueInterval {
		t.Fatalf("expected a short requeue after a conflict, got %+v", result)
	}
	if engine.reconciles != 0 {
		t.Fatalf("engine must wait for the finalizer to be stored")
	}
}

func TestControllerRecordsFailures(t *testing.T) {
	engine := &stubEngine{reconcileErr: &core.ConfigStoreError{Filename: "app.json", Err: errors.New("down")}}
	controller, kubeClient, fakeRecorder := newTestController(t, engine, newConfigMapClaim(core.CreationPolicyOwned))

	result, err := controller.Reconcile(context.Background(), request("apps", "claim"))
	if err != nil {
		t.Fatalf("errors are absorbed into a requeue, got %v", err)
	}
	if result.RequeueAfter != core.ErrorRequeueInterval {
		t.Fatalf("expected fixed error requeue, got %+v", result)
	}

	var stored configv1alpha1.ConfigMapClaim
	if err := kubeClient.Get(context.Background(), types.NamespacedName{Namespace: "apps", Name: "claim"}, &stored); err != nil {
		t.Fatalf("get claim: %v", err)
	}
	degraded := configv1alpha1.FindCondition(&stored.Status, core.CondDegraded)
	if degraded == nil || degraded.Status != "True" || degraded.Reason != "ConfigStoreError" {
		t.Fatalf("unexpected degraded condition %+v", degraded)
	}
	if configv1alpha1.IsReady(&stored) {
		t.Fatalf("claim must not be ready")
	}

	event := <-fakeRecorder.Events
	if !strings.HasPrefix(event, "Warning "+events.ReasonReconcileErr) || !strings.Contains(event, string(core.PhaseApplying)) {
		t.Fatalf("unexpected event %q", event)
	}
}

func TestControllerRejectsInvalidSpec(t *testing.T) {
	engine := &stubEngine{}
	claim := newConfigMapClaim(core.CreationPolicyOwned)
	claim.Spec.Data = nil
	controller, _, _ := newTestController(t, engine, claim)

	result, err := controller.Reconcile(context.Background(), request("apps", "claim"))
	if err != nil || result.RequeueAfter != core.ErrorRequeueInterval {
		t.Fatalf("expected error requeue, got %+v, %v", result, err)
	}
	if engine.reconciles != 0 {
		t.Fatalf("engine must not run for an invalid spec")
	}
}

func deletingClaim() *configv1alpha1.ConfigMapClaim {
	claim := newConfigMapClaim(core.CreationPolicyOwned)
	now := metav1.NewTime(fixedNow)
	claim.DeletionTimestamp = &now
	claim.Finalizers = []string{core.Finalizer}
	return claim
}

func TestControllerFinalizesDeletedClaim(t *testing.T) {
	engine := &stubEngine{}
	controller, kubeClient, _ := newTestController(t, engine, deletingClaim())

	result, err := controller.Reconcile(context.Background(), request("apps", "claim"))
	if err != nil || result != (ctrl.Result{}) {
		t.Fatalf("expected clean finalization, got %+v, %v", result, err)
	}
	if engine.cleanups != 1 || engine.reconciles != 0 {
		t.Fatalf("expected only cleanup, got %d cleanups and %d reconciles", engine.cleanups, engine.reconciles)
	}

	var stored configv1alpha1.ConfigMapClaim
	err = kubeClient.Get(context.Background(), types.NamespacedName{Namespace: "apps", Name: "claim"}, &stored)
	if !apierrors.IsNotFound(err) {
		t.Fatalf("expected claim to be gone once the finalizer is removed, got %v", err)
	}
}

func TestControllerKeepsFinalizerWhenCleanupFails(t *testing.T) {
	engine := &stubEngine{cleanupErr: errors.New("target stuck")}
	controller, kubeClient, fakeRecorder := newTestController(t, engine, deletingClaim())

	result, err := controller.Reconcile(context.Background(), request("apps", "claim"))
	if err != nil || result.RequeueAfter != core.ErrorRequeueInterval {
		t.Fatalf("expected error requeue, got %+v, %v", result, err)
	}

	var stored configv1alpha1.ConfigMapClaim
	if err := kubeClient.Get(context.Background(), types.NamespacedName{Namespace: "apps", Name: "claim"}, &stored); err != nil {
		t.Fatalf("get claim: %v", err)
	}
	if !controllerutil.ContainsFinalizer(&stored, core.Finalizer) {
		t.Fatalf("finalizer must stay until cleanup succeeds")
	}

	event := <-fakeRecorder.Events
	if !strings.HasPrefix(event, "Warning "+events.ReasonCleanupErr) || !strings.Contains(event, string(core.PhaseCleaning)) {
		t.Fatalf("unexpected event %q", event)
	}
}
