package claim

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"externalconfig/pkg/adapters"
	"externalconfig/pkg/adapters/events"
	"externalconfig/pkg/agents/summary"
	configv1alpha1 "externalconfig/pkg/api/v1alpha1"
	"externalconfig/pkg/core"
	"externalconfig/pkg/discovery"
)

// Reconcilable is the capability the controller drives for a claim kind.
type Reconcilable interface {
	Reconcile(ctx context.Context, claim configv1alpha1.Claim) (Action, *summary.Summary, error)
	Cleanup(ctx context.Context, claim configv1alpha1.Claim) (Action, error)
}

// Resolver turns the data section of a claim into rendered files.
type Resolver interface {
	Resolve(ctx context.Context, namespace string, data map[string]core.ClaimRef) (map[string]string, []discovery.FileResult, error)
}

var _ Resolver = &discovery.Discoverer{}

// Engine materialises claims into one kind of target object.
type Engine struct {
	kubeClient adapters.KubeClient
	resolver   Resolver
	target     Target
	scheme     *runtime.Scheme
	events     *events.Recorder
}

var _ Reconcilable = &Engine{}

// NewEngine wires an Engine. The scheme must know the claim kinds so owner
// references can be built.
func NewEngine(kubeClient adapters.KubeClient, resolver Resolver, target Target, scheme *runtime.Scheme, recorder *events.Recorder) *Engine {
	return &Engine{
		kubeClient: kubeClient,
		resolver:   resolver,
		target:     target,
		scheme:     scheme,
		events:     recorder,
	}
}

// Reconcile resolves every declared file and converges the target on the
// result. claim.ClaimSpec() must already be defaulted.
func (engine *Engine) Reconcile(ctx context.Context, claim configv1alpha1.Claim) (Action, *summary.Summary, error) {
	spec := claim.ClaimSpec()
	logger := log.FromContext(ctx).WithValues("target", spec.Target.Name, "kind", engine.target.Kind())

	data, files, err := engine.resolver.Resolve(ctx, claim.GetNamespace(), spec.Data)
	if err != nil {
		return AwaitChange(), nil, fmt.Errorf("resolve data: %w", err)
	}

	size := core.CheckTargetSize(data)
	if size.Block {
		return AwaitChange(), nil, fmt.Errorf("%s %s is %d bytes: %w", engine.target.Kind(), spec.Target.Name, size.Bytes, core.ErrTargetTooLarge)
	}
	if size.Warn {
		engine.events.SizeWarning(claim, size.Bytes, core.TargetSizeLimitBytes)
	}

	sum := newSummary(engine.target.Kind(), spec.Target.Name, files, size.Bytes)
	refresh := Requeue(core.RefreshInterval(spec))

	if spec.Target.CreationPolicy == core.CreationPolicyNone {
		sum.Action = summary.ActionSkipped
		sum.Reason = summary.ReasonCreationPolicyNone
		return refresh, sum, nil
	}

	desired, err := engine.desired(claim, data)
	if err != nil {
		return AwaitChange(), nil, err
	}

	current := engine.target.NewObject(claim.GetNamespace(), spec.Target.Name)
	found, err := engine.kubeClient.GetTarget(ctx, current)
	if err != nil {
		return AwaitChange(), nil, fmt.Errorf("get target: %w", err)
	}

	if !found {
		if spec.Target.CreationPolicy == core.CreationPolicyMerge {
			return AwaitChange(), nil, fmt.Errorf("%s %s must exist for creation policy %s", engine.target.Kind(), spec.Target.Name, core.CreationPolicyMerge)
		}
		if err := engine.kubeClient.CreateTarget(ctx, desired); err != nil {
			return AwaitChange(), nil, fmt.Errorf("create target: %w", err)
		}
		logger.Info("target created", "files", len(data))
		sum.Action = summary.ActionCreated
		sum.Reason = summary.ReasonApplied
		return refresh, sum, nil
	}

	if sameData(engine.target.Data(current), data, spec.Target.CreationPolicy == core.CreationPolicyMerge) {
		logger.V(1).Info("target already in sync")
		sum.Action = summary.ActionUnchanged
		sum.Reason = summary.ReasonAlreadySynced
		return refresh, sum, nil
	}

	if err := engine.kubeClient.ApplyTarget(ctx, desired); err != nil {
		return AwaitChange(), nil, fmt.Errorf("apply target: %w", err)
	}
	logger.Info("target updated", "files", len(data))
	sum.Action = summary.ActionUpdated
	sum.Reason = summary.ReasonApplied
	return refresh, sum, nil
}

// Cleanup releases the target finalizer. The target itself is left to
// owner-reference garbage collection.
func (engine *Engine) Cleanup(ctx context.Context, claim configv1alpha1.Claim) (Action, error) {
	current := engine.target.NewObject(claim.GetNamespace(), claim.ClaimSpec().Target.Name)
	found, err := engine.kubeClient.GetTarget(ctx, current)
	if err != nil {
		return AwaitChange(), fmt.Errorf("get target: %w", err)
	}
	if !found || !controllerutil.RemoveFinalizer(current, core.Finalizer) {
		return AwaitChange(), nil
	}
	if err := engine.kubeClient.UpdateTarget(ctx, current); err != nil {
		return AwaitChange(), fmt.Errorf("release target finalizer: %w", err)
	}
	log.FromContext(ctx).V(1).Info("target finalizer removed", "target", current.GetName())
	return AwaitChange(), nil
}

func (engine *Engine) desired(claim configv1alpha1.Claim, data map[string]string) (client.Object, error) {
	spec := claim.ClaimSpec()
	desired := engine.target.Desired(claim.GetNamespace(), spec.Target.Name, data)

	desired.SetLabels(map[string]string{core.ManagedLabel: "true"})
	desired.SetAnnotations(map[string]string{
		core.ClaimAnnotation:       claim.GetNamespace() + "/" + claim.GetName(),
		core.ContentHashAnnotation: core.ContentHash(data),
	})
	controllerutil.AddFinalizer(desired, core.Finalizer)

	if spec.Target.CreationPolicy == core.CreationPolicyOwned {
		if err := controllerutil.SetControllerReference(claim, desired, engine.scheme); err != nil {
			return nil, fmt.Errorf("set owner reference: %w", err)
		}
	}
	return desired, nil
}

// sameData compares logical content. With subset set, keys the claim does not
// produce are ignored.
func sameData(current, desired map[string]string, subset bool) bool {
	if !subset && len(current) != len(desired) {
		return false
	}
	for key, value := range desired {
		existing, ok := current[key]
		if !ok || existing != value {
			return false
		}
	}
	return true
}

func newSummary(kind, name string, files []discovery.FileResult, bytes int) *summary.Summary {
	sum := &summary.Summary{TargetKind: kind, TargetName: name, Bytes: bytes}
	for _, file := range files {
		sum.Files = append(sum.Files, summary.FileOutcome{
			Filename: file.Filename,
			Format:   string(file.Format),
			Strategy: file.Strategy,
			Sources:  append([]string(nil), file.Sources...),
		})
	}
	return sum
}
