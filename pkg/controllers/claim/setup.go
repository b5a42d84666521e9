package claim

import (
	corev1 "k8s.io/api/core/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/event"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	"externalconfig/pkg/adapters"
	"externalconfig/pkg/adapters/events"
	"externalconfig/pkg/adapters/metrics"
	configv1alpha1 "externalconfig/pkg/api/v1alpha1"
	"externalconfig/pkg/observability/diagnostics"
)

// Options tune the claim controllers.
type Options struct {
	MaxConcurrentReconciles int
	Diagnostics             *diagnostics.State
}

// SetupConfigMapClaims registers the ConfigMapClaim controller with the manager.
func SetupConfigMapClaims(manager ctrl.Manager, resolver Resolver, options Options) error {
	return setup(manager, "ConfigMapClaim", func() *configv1alpha1.ConfigMapClaim { return &configv1alpha1.ConfigMapClaim{} },
		ConfigMapTarget{}, &corev1.ConfigMap{}, resolver, options)
}

// SetupSecretClaims registers the SecretClaim controller with the manager.
func SetupSecretClaims(manager ctrl.Manager, resolver Resolver, options Options) error {
	return setup(manager, "SecretClaim", func() *configv1alpha1.SecretClaim { return &configv1alpha1.SecretClaim{} },
		SecretTarget{}, &corev1.Secret{}, resolver, options)
}

func setup[T configv1alpha1.Claim](manager ctrl.Manager, kind string, newClaim func() T, target Target, owned client.Object, resolver Resolver, options Options) error {
	recorder := events.NewRecorder(manager.GetEventRecorderFor("configmap-claim-controller"))
	engine := NewEngine(adapters.NewControllerRuntimeClient(manager.GetClient()), resolver, target, manager.GetScheme(), recorder)
	reconciler := NewController(manager.GetClient(), kind, newClaim, engine, recorder, metrics.Default()).
		WithDiagnostics(options.Diagnostics)

	if options.MaxConcurrentReconciles < 1 {
		options.MaxConcurrentReconciles = 1
	}

	return ctrl.NewControllerManagedBy(manager).
		Named(kind).
		WithOptions(controller.Options{MaxConcurrentReconciles: options.MaxConcurrentReconciles}).
		For(newClaim(), builder.WithPredicates(predicate.Or[client.Object](predicate.GenerationChangedPredicate{}, deleting))).
		Owns(owned).
		Complete(reconciler)
}

// deleting lets updates that start deletion through even though they do not
// bump the generation.
var deleting = predicate.Funcs{
	UpdateFunc: func(updateEvent event.UpdateEvent) bool {
		return updateEvent.ObjectNew != nil && !updateEvent.ObjectNew.GetDeletionTimestamp().IsZero()
	},
}
