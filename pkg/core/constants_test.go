package core_test

import (
	"testing"
	"time"

	core "externalconfig/pkg/core"
)

func TestConstantsStability(t *testing.T) {
	if core.ManagedLabel != "external-config.com/managed" {
		t.Fatalf("ManagedLabel changed: %s", core.ManagedLabel)
	}
	if core.Finalizer != "external-config.com/finalizer" {
		t.Fatalf("Finalizer changed: %s", core.Finalizer)
	}
	if core.FieldManager != "configmap-claim-controller" {
		t.Fatalf("FieldManager changed: %s", core.FieldManager)
	}
	if core.DefaultRefreshInterval != 5*time.Minute {
		t.Fatalf("DefaultRefreshInterval changed: %s", core.DefaultRefreshInterval)
	}
	if core.ErrorRequeueInterval != time.Minute {
		t.Fatalf("ErrorRequeueInterval changed: %s", core.ErrorRequeueInterval)
	}
}
