package stores

import (
	"context"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"externalconfig/pkg/core"
	"externalconfig/pkg/observability/metrics"
)

// VaultPlaceholder is the fixed payload served by VaultStore.
const VaultPlaceholder = "Vault config"

// VaultStore stands in for a secret engine backend and always serves
// VaultPlaceholder.
type VaultStore struct {
	server string
}

func NewVaultStore(provider core.VaultProvider) *VaultStore {
	return &VaultStore{server: provider.Server}
}

func (store *VaultStore) GetConfig(ctx context.Context, _, _ map[string]string) (string, error) {
	started := time.Now()
	log.FromContext(ctx).V(1).Info("serving placeholder vault configuration", "server", store.server)
	metrics.RecordStoreFetch(ProviderVault, time.Since(started), nil)
	return VaultPlaceholder, nil
}
