package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"externalconfig/pkg/core"
)

// ConfigurationStoreSpec declares the backend a store reads from.
type ConfigurationStoreSpec = core.ConfigurationStoreSpec

// ConfigurationStoreStatus is shared by both store kinds.
type ConfigurationStoreStatus struct {
	LastSynced string `json:"lastSynced,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced,shortName=cs

// ConfigurationStore is a namespaced configuration backend.
type ConfigurationStore struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ConfigurationStoreSpec   `json:"spec,omitempty"`
	Status ConfigurationStoreStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// ConfigurationStoreList contains a list of ConfigurationStore.
type ConfigurationStoreList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []ConfigurationStore `json:"items"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Cluster,shortName=ccs

// ClusterConfigurationStore is a configuration backend visible to claims in
// every namespace.
type ClusterConfigurationStore struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ConfigurationStoreSpec   `json:"spec,omitempty"`
	Status ConfigurationStoreStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// ClusterConfigurationStoreList contains a list of ClusterConfigurationStore.
type ClusterConfigurationStoreList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []ClusterConfigurationStore `json:"items"`
}

func init() {
	SchemeBuilder.Register(
		&ConfigurationStore{}, &ConfigurationStoreList{},
		&ClusterConfigurationStore{}, &ClusterConfigurationStoreList{},
	)
}
