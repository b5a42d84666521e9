package v1alpha1

import (
	"k8s.io/apimachinery/pkg/runtime"

	"externalconfig/pkg/core"
)

var (
	_ runtime.Object = &ConfigMapClaim{}
	_ runtime.Object = &ConfigMapClaimList{}
	_ runtime.Object = &SecretClaim{}
	_ runtime.Object = &SecretClaimList{}
	_ runtime.Object = &ConfigurationStore{}
	_ runtime.Object = &ConfigurationStoreList{}
	_ runtime.Object = &ClusterConfigurationStore{}
	_ runtime.Object = &ClusterConfigurationStoreList{}
)

// DeepCopyInto copies the receiver into out.
func (configMapClaim *ConfigMapClaim) DeepCopyInto(out *ConfigMapClaim) {
	if configMapClaim == nil || out == nil {
		return
	}
	*out = *configMapClaim
	configMapClaim.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	out.Spec = deepCopyClaimSpec(&configMapClaim.Spec)
	out.Status = deepCopyClaimStatus(&configMapClaim.Status)
}

// DeepCopy creates a new deep copy of the receiver.
func (configMapClaim *ConfigMapClaim) DeepCopy() *ConfigMapClaim {
	if configMapClaim == nil {
		return nil
	}
	out := new(ConfigMapClaim)
	configMapClaim.DeepCopyInto(out)
	return out
}

// DeepCopyObject returns a deep copy as a runtime.Object.
func (configMapClaim *ConfigMapClaim) DeepCopyObject() runtime.Object {
	if configMapClaim == nil {
		return nil
	}
	return configMapClaim.DeepCopy()
}

// DeepCopyInto copies the receiver into out.
func (configMapClaimList *ConfigMapClaimList) DeepCopyInto(out *ConfigMapClaimList) {
	if configMapClaimList == nil || out == nil {
		return
	}
	*out = *configMapClaimList
	configMapClaimList.ListMeta.DeepCopyInto(&out.ListMeta)
	if configMapClaimList.Items != nil {
		out.Items = make([]ConfigMapClaim, len(configMapClaimList.Items))
		for index := range configMapClaimList.Items {
			configMapClaimList.Items[index].DeepCopyInto(&out.Items[index])
		}
	}
}

// DeepCopy creates a new deep copy of the list.
func (configMapClaimList *ConfigMapClaimList) DeepCopy() *ConfigMapClaimList {
	if configMapClaimList == nil {
		return nil
	}
	out := new(ConfigMapClaimList)
	configMapClaimList.DeepCopyInto(out)
	return out
}

// DeepCopyObject returns a deep copy of the list as a runtime.Object.
func (configMapClaimList *ConfigMapClaimList) DeepCopyObject() runtime.Object {
	if configMapClaimList == nil {
		return nil
	}
	return configMapClaimList.DeepCopy()
}

// DeepCopyInto copies the receiver into out.
func (secretClaim *SecretClaim) DeepCopyInto(out *SecretClaim) {
	if secretClaim == nil || out == nil {
		return
	}
	*out = *secretClaim
	secretClaim.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	out.Spec = deepCopyClaimSpec(&secretClaim.Spec)
	out.Status = deepCopyClaimStatus(&secretClaim.Status)
}

// DeepCopy creates a new deep copy of the receiver.
func (secretClaim *SecretClaim) DeepCopy() *SecretClaim {
	if secretClaim == nil {
		return nil
	}
	out := new(SecretClaim)
	secretClaim.DeepCopyInto(out)
	return out
}

// DeepCopyObject returns a deep copy as a runtime.Object.
func (secretClaim *SecretClaim) DeepCopyObject() runtime.Object {
	if secretClaim == nil {
		return nil
	}
	return secretClaim.DeepCopy()
}

// DeepCopyInto copies the receiver into out.
func (secretClaimList *SecretClaimList) DeepCopyInto(out *SecretClaimList) {
	if secretClaimList == nil || out == nil {
		return
	}
	*out = *secretClaimList
	secretClaimList.ListMeta.DeepCopyInto(&out.ListMeta)
	if secretClaimList.Items != nil {
		out.Items = make([]SecretClaim, len(secretClaimList.Items))
		for index := range secretClaimList.Items {
			secretClaimList.Items[index].DeepCopyInto(&out.Items[index])
		}
	}
}

// DeepCopy creates a new deep copy of the list.
func (secretClaimList *SecretClaimList) DeepCopy() *SecretClaimList {
	if secretClaimList == nil {
		return nil
	}
	out := new(SecretClaimList)
	secretClaimList.DeepCopyInto(out)
	return out
}

// DeepCopyObject returns a deep copy of the list as a runtime.Object.
func (secretClaimList *SecretClaimList) DeepCopyObject() runtime.Object {
	if secretClaimList == nil {
		return nil
	}
	return secretClaimList.DeepCopy()
}

// DeepCopyInto copies the receiver into out.
func (configurationStore *ConfigurationStore) DeepCopyInto(out *ConfigurationStore) {
	if configurationStore == nil || out == nil {
		return
	}
	*out = *configurationStore
	configurationStore.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	out.Spec = deepCopyStoreSpec(&configurationStore.Spec)
}

// DeepCopy creates a new deep copy of the receiver.
func (configurationStore *ConfigurationStore) DeepCopy() *ConfigurationStore {
	if configurationStore == nil {
		return nil
	}
	out := new(ConfigurationStore)
	configurationStore.DeepCopyInto(out)
	return out
}

// DeepCopyObject returns a deep copy as a runtime.Object.
func (configurationStore *ConfigurationStore) DeepCopyObject() runtime.Object {
	if configurationStore == nil {
		return nil
	}
	return configurationStore.DeepCopy()
}

// DeepCopyInto copies the receiver into out.
func (configurationStoreList *ConfigurationStoreList) DeepCopyInto(out *ConfigurationStoreList) {
	if configurationStoreList == nil || out == nil {
		return
	}
	*out = *configurationStoreList
	configurationStoreList.ListMeta.DeepCopyInto(&out.ListMeta)
	if configurationStoreList.Items != nil {
		out.Items = make([]ConfigurationStore, len(configurationStoreList.Items))
		for index := range configurationStoreList.Items {
			configurationStoreList.Items[index].DeepCopyInto(&out.Items[index])
		}
	}
}

// DeepCopy creates a new deep copy of the list.
func (configurationStoreList *ConfigurationStoreList) DeepCopy() *ConfigurationStoreList {
	if configurationStoreList == nil {
		return nil
	}
	out := new(ConfigurationStoreList)
	configurationStoreList.DeepCopyInto(out)
	return out
}

// DeepCopyObject returns a deep copy of the list as a runtime.Object.
func (configurationStoreList *ConfigurationStoreList) DeepCopyObject() runtime.Object {
	if configurationStoreList == nil {
		return nil
	}
	return configurationStoreList.DeepCopy()
}

// DeepCopyInto copies the receiver into out.
func (clusterStore *ClusterConfigurationStore) DeepCopyInto(out *ClusterConfigurationStore) {
	if clusterStore == nil || out == nil {
		return
	}
	*out = *clusterStore
	clusterStore.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	out.Spec = deepCopyStoreSpec(&clusterStore.Spec)
}

// DeepCopy creates a new deep copy of the receiver.
func (clusterStore *ClusterConfigurationStore) DeepCopy() *ClusterConfigurationStore {
	if clusterStore == nil {
		return nil
	}
	out := new(ClusterConfigurationStore)
	clusterStore.DeepCopyInto(out)
	return out
}

// DeepCopyObject returns a deep copy as a runtime.Object.
func (clusterStore *ClusterConfigurationStore) DeepCopyObject() runtime.Object {
	if clusterStore == nil {
		return nil
	}
	return clusterStore.DeepCopy()
}

// DeepCopyInto copies the receiver into out.
func (clusterStoreList *ClusterConfigurationStoreList) DeepCopyInto(out *ClusterConfigurationStoreList) {
	if clusterStoreList == nil || out == nil {
		return
	}
	*out = *clusterStoreList
	clusterStoreList.ListMeta.DeepCopyInto(&out.ListMeta)
	if clusterStoreList.Items != nil {
		out.Items = make([]ClusterConfigurationStore, len(clusterStoreList.Items))
		for index := range clusterStoreList.Items {
			clusterStoreList.Items[index].DeepCopyInto(&out.Items[index])
		}
	}
}

// DeepCopy creates a new deep copy of the list.
func (clusterStoreList *ClusterConfigurationStoreList) DeepCopy() *ClusterConfigurationStoreList {
	if clusterStoreList == nil {
		return nil
	}
	out := new(ClusterConfigurationStoreList)
	clusterStoreList.DeepCopyInto(out)
	return out
}

// DeepCopyObject returns a deep copy of the list as a runtime.Object.
func (clusterStoreList *ClusterConfigurationStoreList) DeepCopyObject() runtime.Object {
	if clusterStoreList == nil {
		return nil
	}
	return clusterStoreList.DeepCopy()
}

func deepCopyClaimSpec(source *core.ClaimSpec) core.ClaimSpec {
	if source == nil {
		return core.ClaimSpec{}
	}
	copiedSpec := *source

	if source.Data != nil {
		copiedSpec.Data = make(map[string]core.ClaimRef, len(source.Data))
		for filename, ref := range source.Data {
			copiedRef := ref
			if ref.From != nil {
				copiedRef.From = make([]core.StoreParametrization, len(ref.From))
				for index, param := range ref.From {
					copiedRef.From[index] = param
					copiedRef.From[index].ConfigurationStoreParams = copyStringMap(param.ConfigurationStoreParams)
				}
			}
			copiedSpec.Data[filename] = copiedRef
		}
	}

	return copiedSpec
}

func deepCopyClaimStatus(source *core.ClaimStatus) core.ClaimStatus {
	if source == nil {
		return core.ClaimStatus{}
	}
	copiedStatus := *source

	if source.Conditions != nil {
		copiedStatus.Conditions = append([]core.Condition(nil), source.Conditions...)
	}
	if source.SyncedFiles != nil {
		copiedStatus.SyncedFiles = append([]string(nil), source.SyncedFiles...)
	}

	return copiedStatus
}

func deepCopyStoreSpec(source *core.ConfigurationStoreSpec) core.ConfigurationStoreSpec {
	if source == nil {
		return core.ConfigurationStoreSpec{}
	}
	copiedSpec := *source

	if source.Provider.HTTP != nil {
		httpCopy := *source.Provider.HTTP
		httpCopy.Headers = copyStringMap(source.Provider.HTTP.Headers)
		httpCopy.QueryParams = copyStringMap(source.Provider.HTTP.QueryParams)
		copiedSpec.Provider.HTTP = &httpCopy
	}
	if source.Provider.Vault != nil {
		vaultCopy := *source.Provider.Vault
		copiedSpec.Provider.Vault = &vaultCopy
	}

	return copiedSpec
}

func copyStringMap(source map[string]string) map[string]string {
	if source == nil {
		return nil
	}
	copied := make(map[string]string, len(source))
	for key, value := range source {
		copied[key] = value
	}
	return copied
}
