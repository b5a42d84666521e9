package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"externalconfig/pkg/core"
)

// ClaimSpec is shared by ConfigMapClaim and SecretClaim.
type ClaimSpec = core.ClaimSpec

// ClaimStatus is shared by ConfigMapClaim and SecretClaim.
type ClaimStatus = core.ClaimStatus

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced,shortName=cmc
// +kubebuilder:printcolumn:name="Target",type="string",JSONPath=".spec.target.name"
// +kubebuilder:printcolumn:name="Last Synced",type="string",JSONPath=".status.lastSynced"
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp"

// ConfigMapClaim materializes a ConfigMap from configuration stores.
type ConfigMapClaim struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ClaimSpec   `json:"spec,omitempty"`
	Status ClaimStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// ConfigMapClaimList contains a list of ConfigMapClaim.
type ConfigMapClaimList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []ConfigMapClaim `json:"items"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced,shortName=sc
// +kubebuilder:printcolumn:name="Target",type="string",JSONPath=".spec.target.name"
// +kubebuilder:printcolumn:name="Last Synced",type="string",JSONPath=".status.lastSynced"
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp"

// SecretClaim materializes a Secret from configuration stores.
type SecretClaim struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ClaimSpec   `json:"spec,omitempty"`
	Status ClaimStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// SecretClaimList contains a list of SecretClaim.
type SecretClaimList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []SecretClaim `json:"items"`
}

func init() {
	SchemeBuilder.Register(
		&ConfigMapClaim{}, &ConfigMapClaimList{},
		&SecretClaim{}, &SecretClaimList{},
	)
}
