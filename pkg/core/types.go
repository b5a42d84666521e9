package core

// ClaimSpec models the desired state shared by ConfigMapClaim and SecretClaim.
type ClaimSpec struct {
	Data            map[string]ClaimRef `json:"data"`
	Target          ClaimTarget         `json:"target"`
	RefreshInterval string              `json:"refreshInterval,omitempty"` // Go or spelled-out duration ("2h 30m", "1day"), default 5m
}

// ClaimTarget names the generated ConfigMap or Secret.
type ClaimTarget struct {
	Name           string `json:"name"`
	CreationPolicy string `json:"creationPolicy,omitempty"` // Owned|Orphan|Merge|None
}

// ClaimRef describes how one file is assembled from stores.
type ClaimRef struct {
	From     []StoreParametrization `json:"from"`
	Strategy string                 `json:"strategy,omitempty"` // Merge|Fallback
}

// StoreParametrization points at a store and carries per-reference query parameters.
type StoreParametrization struct {
	ConfigurationStoreRef    ConfigurationStoreRef `json:"configurationStoreRef"`
	ConfigurationStoreParams map[string]string     `json:"configurationStoreParams,omitempty"`
}

// ConfigurationStoreRef references a ConfigurationStore or ClusterConfigurationStore.
type ConfigurationStoreRef struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// ClaimStatus reports controller state.
type ClaimStatus struct {
	Conditions  []Condition `json:"conditions,omitempty"`
	LastSynced  string      `json:"lastSynced,omitempty"` // RFC3339
	SyncedFiles []string    `json:"syncedFiles,omitempty"`
}

// Condition is a standard status condition.
type Condition struct {
	Type               string `json:"type"`
	Status             string `json:"status"` // True|False|Unknown
	Reason             string `json:"reason,omitempty"`
	Message            string `json:"message,omitempty"`
	LastTransitionTime string `json:"lastTransitionTime,omitempty"`
}

// ConfigurationStoreSpec is shared by both store kinds.
type ConfigurationStoreSpec struct {
	Provider Provider `json:"provider"`
}

// Provider is a tagged union; exactly one member is set.
type Provider struct {
	HTTP  *HTTPProvider  `json:"http,omitempty"`
	Vault *VaultProvider `json:"vault,omitempty"`
}

// HTTPProvider fetches configuration from an HTTP endpoint.
type HTTPProvider struct {
	URL         string            `json:"url"`
	Headers     map[string]string `json:"headers,omitempty"`
	QueryParams map[string]string `json:"queryParams,omitempty"`
}

// VaultProvider is a placeholder for a secret engine backend.
type VaultProvider struct {
	Server string `json:"server"`
}
