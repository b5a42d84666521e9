package core

import (
	"fmt"
	"sort"
	"time"
)

// ValidateClaimSpec enforces the guardrails the CRD schema cannot express.
func ValidateClaimSpec(spec *ClaimSpec) error {
	if spec == nil {
		return fmt.Errorf("spec is required")
	}

	if spec.Target.Name == "" {
		return fmt.Errorf("target.name is required")
	}

	switch spec.Target.CreationPolicy {
	case "", CreationPolicyOwned, CreationPolicyOrphan, CreationPolicyMerge, CreationPolicyNone:
	default:
		return fmt.Errorf("invalid target.creationPolicy: %s", spec.Target.CreationPolicy)
	}

	if len(spec.Data) == 0 {
		return fmt.Errorf("data must declare at least one file")
	}

	for _, filename := range SortedFilenames(spec.Data) {
		claimRef := spec.Data[filename]

		if len(claimRef.From) == 0 {
			return fmt.Errorf("data[%s].from must not be empty", filename)
		}

		if claimRef.Strategy != "" && claimRef.Strategy != StrategyMerge && claimRef.Strategy != StrategyFallback {
			return fmt.Errorf("invalid data[%s].strategy: %s", filename, claimRef.Strategy)
		}

		for index, source := range claimRef.From {
			if source.ConfigurationStoreRef.Name == "" {
				return fmt.Errorf("data[%s].from[%d].configurationStoreRef.name is required", filename, index)
			}

			switch source.ConfigurationStoreRef.Kind {
			case StoreKindNamespaced, StoreKindCluster:
			default:
				return fmt.Errorf("invalid data[%s].from[%d].configurationStoreRef.kind: %s", filename, index, source.ConfigurationStoreRef.Kind)
			}
		}
	}

	if spec.RefreshInterval != "" {
		interval, err := ParseInterval(spec.RefreshInterval)
		if err != nil {
			return fmt.Errorf("invalid refreshInterval: %w", err)
		}

		if interval <= 0 {
			return fmt.Errorf("refreshInterval must be positive")
		}
	}

	return nil
}

// DefaultClaimSpec applies safe defaults consistent with CRD defaults.
func DefaultClaimSpec(spec *ClaimSpec) {
	if spec.Target.CreationPolicy == "" {
		spec.Target.CreationPolicy = CreationPolicyOwned
	}

	if spec.RefreshInterval == "" {
		spec.RefreshInterval = DefaultRefreshInterval.String()
	}

	for filename, claimRef := range spec.Data {
		if claimRef.Strategy == "" {
			claimRef.Strategy = StrategyFallback
			spec.Data[filename] = claimRef
		}
	}
}

// RefreshInterval returns the parsed refresh interval, falling back to the default.
func RefreshInterval(spec *ClaimSpec) time.Duration {
	if spec == nil || spec.RefreshInterval == "" {
		return DefaultRefreshInterval
	}

	interval, err := ParseInterval(spec.RefreshInterval)
	if err != nil || interval <= 0 {
		return DefaultRefreshInterval
	}

	return interval
}

// ValidateStoreSpec checks that exactly one provider is configured.
func ValidateStoreSpec(spec *ConfigurationStoreSpec) error {
	if spec == nil {
		return fmt.Errorf("spec is required")
	}

	switch {
	case spec.Provider.HTTP != nil && spec.Provider.Vault != nil:
		return fmt.Errorf("provider must set exactly one of http or vault")
	case spec.Provider.HTTP != nil:
		if spec.Provider.HTTP.URL == "" {
			return fmt.Errorf("provider.http.url is required")
		}
	case spec.Provider.Vault != nil:
		if spec.Provider.Vault.Server == "" {
			return fmt.Errorf("provider.vault.server is required")
		}
	default:
		return fmt.Errorf("provider must set exactly one of http or vault")
	}

	return nil
}

// SortedFilenames returns the declared filenames in a deterministic order.
func SortedFilenames(data map[string]ClaimRef) []string {
	filenames := make([]string, 0, len(data))
	for filename := range data {
		filenames = append(filenames, filename)
	}
	sort.Strings(filenames)
	return filenames
}
