package adapters

import (
	"context"

	"sigs.k8s.io/controller-runtime/pkg/client"

	"externalconfig/pkg/core"
)

// KubeClient is the cluster port used by the claim engine.
type KubeClient interface {
	// GetProvider resolves a store reference to its provider. Namespaced stores
	// are read from namespace; cluster stores ignore it.
	GetProvider(ctx context.Context, namespace string, ref core.ConfigurationStoreRef) (core.Provider, error)
	// GetTarget loads the object named by obj's namespace and name into obj.
	// found=false indicates it does not exist.
	GetTarget(ctx context.Context, obj client.Object) (found bool, err error)
	// CreateTarget creates obj.
	CreateTarget(ctx context.Context, obj client.Object) error
	// ApplyTarget server-side applies obj, forcing ownership of conflicting fields.
	ApplyTarget(ctx context.Context, obj client.Object) error
	// UpdateTarget replaces obj.
	UpdateTarget(ctx context.Context, obj client.Object) error
}
