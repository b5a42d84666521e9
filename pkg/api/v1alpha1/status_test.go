package v1alpha1

import (
	"testing"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"

	"externalconfig/pkg/core"
)

func sampleSpec() core.ClaimSpec {
	return core.ClaimSpec{
		Target: core.ClaimTarget{Name: "app-config", CreationPolicy: core.CreationPolicyOwned},
		Data: map[string]core.ClaimRef{
			"app.yaml": {
				Strategy: core.StrategyMerge,
				From: []core.StoreParametrization{{
					ConfigurationStoreRef:    core.ConfigurationStoreRef{Name: "central", Kind: core.StoreKindCluster},
					ConfigurationStoreParams: map[string]string{"app": "billing"},
				}},
			},
		},
	}
}

func TestClaimAccessorsReturnLiveFields(t *testing.T) {
	claims := []Claim{
		&ConfigMapClaim{ObjectMeta: metav1.ObjectMeta{Namespace: "apps", Name: "cm"}},
		&SecretClaim{ObjectMeta: metav1.ObjectMeta{Namespace: "apps", Name: "secret"}},
	}
	for _, claim := range claims {
		claim.ClaimSpec().Target.Name = "changed"
		claim.ClaimStatus().SyncedFiles = []string{"a.json"}

		if claim.ClaimSpec().Target.Name != "changed" {
			t.Fatalf("%T: spec accessor must point at the object", claim)
		}
		if len(claim.ClaimStatus().SyncedFiles) != 1 {
			t.Fatalf("%T: status accessor must point at the object", claim)
		}
	}
}

func TestDeepCopyIsolatesNestedFields(t *testing.T) {
	original := &ConfigMapClaim{
		ObjectMeta: metav1.ObjectMeta{Namespace: "apps", Name: "cm", Finalizers: []string{core.Finalizer}},
		Spec:       sampleSpec(),
		Status: core.ClaimStatus{
			Conditions:  []core.Condition{{Type: core.CondReady, Status: "True"}},
			SyncedFiles: []string{"app.yaml"},
		},
	}

	copied := original.DeepCopy()
	copied.Spec.Data["app.yaml"].From[0].ConfigurationStoreParams["app"] = "other"
	copied.Status.Conditions[0].Status = "False"
	copied.Status.SyncedFiles[0] = "other.yaml"
	copied.Finalizers[0] = "other"

	if original.Spec.Data["app.yaml"].From[0].ConfigurationStoreParams["app"] != "billing" {
		t.Fatalf("store params leaked into the original")
	}
	if original.Status.Conditions[0].Status != "True" || original.Status.SyncedFiles[0] != "app.yaml" {
		t.Fatalf("status leaked into the original: %+v", original.Status)
	}
	if original.Finalizers[0] != core.Finalizer {
		t.Fatalf("metadata leaked into the original")
	}
}

func TestStoreDeepCopyIsolatesProvider(t *testing.T) {
	original := &ClusterConfigurationStore{
		Spec: core.ConfigurationStoreSpec{Provider: core.Provider{HTTP: &core.HTTPProvider{
			URL:     "config.local",
			Headers: map[string]string{"Authorization": "token"},
		}}},
	}

	copied := original.DeepCopyObject().(*ClusterConfigurationStore)
	copied.Spec.Provider.HTTP.URL = "elsewhere"
	copied.Spec.Provider.HTTP.Headers["Authorization"] = "changed"

	if original.Spec.Provider.HTTP.URL != "config.local" || original.Spec.Provider.HTTP.Headers["Authorization"] != "token" {
		t.Fatalf("provider leaked into the original: %+v", original.Spec.Provider.HTTP)
	}
}

func TestSchemeRegistersAllKinds(t *testing.T) {
	scheme := runtime.NewScheme()
	if err := AddToScheme(scheme); err != nil {
		t.Fatalf("add to scheme: %v", err)
	}
	for _, kind := range []string{"ConfigMapClaim", "SecretClaim", "ConfigurationStore", "ClusterConfigurationStore", "SecretClaimList"} {
		if !scheme.Recognizes(GroupVersion.WithKind(kind)) {
			t.Fatalf("kind %s not registered", kind)
		}
	}
}

func TestIsReady(t *testing.T) {
	claim := &SecretClaim{}
	if IsReady(claim) {
		t.Fatalf("claim without conditions must not be ready")
	}
	claim.Status.Conditions = []core.Condition{{Type: core.CondDegraded, Status: "False"}, {Type: core.CondReady, Status: "True"}}
	if !IsReady(claim) {
		t.Fatalf("expected ready claim")
	}
	if FindCondition(claim.ClaimStatus(), core.CondDegraded).Status != "False" {
		t.Fatalf("expected degraded condition lookup")
	}
}
