package adapters

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	configv1alpha1 "externalconfig/pkg/api/v1alpha1"
	"externalconfig/pkg/core"
)

type controllerRuntimeClient struct {
	client client.Client
}

// NewControllerRuntimeClient returns a KubeClient backed by a controller-runtime client.Client.
func NewControllerRuntimeClient(kubeClient client.Client) KubeClient {
	return &controllerRuntimeClient{client: kubeClient}
}

// GetProvider reads the referenced store and validates its provider union.
func (clientAdapter *controllerRuntimeClient) GetProvider(requestContext context.Context, namespace string, ref core.ConfigurationStoreRef) (core.Provider, error) {
	var spec core.ConfigurationStoreSpec

	switch ref.Kind {
	case core.StoreKindNamespaced:
		var store configv1alpha1.ConfigurationStore
		if err := clientAdapter.client.Get(requestContext, types.NamespacedName{Namespace: namespace, Name: ref.Name}, &store); err != nil {
			return core.Provider{}, core.NewPlatformAPIError(fmt.Sprintf("get %s %s/%s", ref.Kind, namespace, ref.Name), err)
		}
		spec = store.Spec
	case core.StoreKindCluster:
		var store configv1alpha1.ClusterConfigurationStore
		if err := clientAdapter.client.Get(requestContext, types.NamespacedName{Name: ref.Name}, &store); err != nil {
			return core.Provider{}, core.NewPlatformAPIError(fmt.Sprintf("get %s %s", ref.Kind, ref.Name), err)
		}
		spec = store.Spec
	default:
		return core.Provider{}, fmt.Errorf("unsupported store kind %q", ref.Kind)
	}

	if err := core.ValidateStoreSpec(&spec); err != nil {
		return core.Provider{}, fmt.Errorf("%s %s: %w", ref.Kind, ref.Name, err)
	}
	return spec.Provider, nil
}

// GetTarget loads the target, reporting found=false on NotFound.
func (clientAdapter *controllerRuntimeClient) GetTarget(requestContext context.Context, obj client.Object) (bool, error) {
	if err := clientAdapter.client.Get(requestContext, client.ObjectKeyFromObject(obj), obj); err != nil {
		if apierrors.IsNotFound(err) {
			return false, nil
		}
		return false, core.NewPlatformAPIError("get target", err)
	}
	return true, nil
}

// CreateTarget creates the target object.
func (clientAdapter *controllerRuntimeClient) CreateTarget(requestContext context.Context, obj client.Object) error {
	return core.NewPlatformAPIError("create target",
		clientAdapter.client.Create(requestContext, obj, client.FieldOwner(core.FieldManager)))
}

// ApplyTarget server-side applies the desired target as the claim field manager.
func (clientAdapter *controllerRuntimeClient) ApplyTarget(requestContext context.Context, obj client.Object) error {
	obj.SetResourceVersion("")
	obj.SetManagedFields(nil)
	return core.NewPlatformAPIError("apply target",
		clientAdapter.client.Patch(requestContext, obj, client.Apply, client.ForceOwnership, client.FieldOwner(core.FieldManager)))
}

// UpdateTarget replaces the target object.
func (clientAdapter *controllerRuntimeClient) UpdateTarget(requestContext context.Context, obj client.Object) error {
	return core.NewPlatformAPIError("update target", clientAdapter.client.Update(requestContext, obj))
}
