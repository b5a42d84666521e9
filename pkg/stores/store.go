// Package stores fetches raw configuration text from the backends a
// ConfigurationStore or ClusterConfigurationStore describes.
package stores

import (
	"context"
	"errors"

	"externalconfig/pkg/core"
)

const (
	ProviderHTTP  = "http"
	ProviderVault = "vault"
)

// ConfigStore returns the raw configuration text served by one backend.
// queryParams and headers are merged over the store's own defaults.
type ConfigStore interface {
	GetConfig(ctx context.Context, queryParams, headers map[string]string) (string, error)
}

// Factory builds a ConfigStore for a provider.
type Factory func(provider core.Provider) (ConfigStore, error)

// NewFromProvider builds the store matching the provider union member that is set.
func NewFromProvider(provider core.Provider) (ConfigStore, error) {
	switch {
	case provider.HTTP != nil:
		return NewHTTPStore(*provider.HTTP), nil
	case provider.Vault != nil:
		return NewVaultStore(*provider.Vault), nil
	default:
		return nil, errors.New("configuration store declares no provider")
	}
}

// MergeParams overlays overrides on defaults without modifying either map.
func MergeParams(defaults, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(defaults)+len(overrides))
	for key, value := range defaults {
		merged[key] = value
	}
	for key, value := range overrides {
		merged[key] = value
	}
	return merged
}
