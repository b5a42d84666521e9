package v1alpha1

import (
	"sigs.k8s.io/controller-runtime/pkg/client"

	"externalconfig/pkg/core"
)

// Claim is implemented by every kind the claim controller reconciles.
type Claim interface {
	client.Object
	ClaimSpec() *core.ClaimSpec
	ClaimStatus() *core.ClaimStatus
}

var (
	_ Claim = &ConfigMapClaim{}
	_ Claim = &SecretClaim{}
)

func (configMapClaim *ConfigMapClaim) ClaimSpec() *core.ClaimSpec { return &configMapClaim.Spec }

func (configMapClaim *ConfigMapClaim) ClaimStatus() *core.ClaimStatus { return &configMapClaim.Status }

func (secretClaim *SecretClaim) ClaimSpec() *core.ClaimSpec { return &secretClaim.Spec }

func (secretClaim *SecretClaim) ClaimStatus() *core.ClaimStatus { return &secretClaim.Status }

// FindCondition returns the condition of the given type, or nil.
func FindCondition(status *core.ClaimStatus, conditionType string) *core.Condition {
	if status == nil {
		return nil
	}
	for index := range status.Conditions {
		if status.Conditions[index].Type == conditionType {
			return &status.Conditions[index]
		}
	}
	return nil
}

// IsReady reports whether the claim's Ready condition is True.
func IsReady(claim Claim) bool {
	condition := FindCondition(claim.ClaimStatus(), core.CondReady)
	return condition != nil && condition.Status == "True"
}
