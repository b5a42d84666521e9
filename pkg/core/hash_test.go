package core_test

import (
	"strings"
	"testing"

	core "externalconfig/pkg/core"
)

func TestContentHashDeterministicAndOrderIndependent(t *testing.T) {
	firstDataSet := map[string]string{"a.json": "{}", "b.yaml": "x: 1\n", "c.env": "A=1"}
	secondDataSet := map[string]string{"c.env": "A=1", "b.yaml": "x: 1\n", "a.json": "{}"}

	firstHash := core.ContentHash(firstDataSet)
	secondHash := core.ContentHash(secondDataSet)

	if !strings.HasPrefix(firstHash, "sha256:") {
		t.Fatalf("hash should carry its algorithm, got %q", firstHash)
	}

	if firstHash != secondHash {
		t.Fatalf("hash must be order independent: %s vs %s", firstHash, secondHash)
	}
}

func TestContentHashSeparatesKeysFromValues(t *testing.T) {
	if core.ContentHash(map[string]string{"ab": "c"}) == core.ContentHash(map[string]string{"a": "bc"}) {
		t.Fatalf("hash must not collide when the key/value boundary moves")
	}
}

func TestContentHashEmpty(t *testing.T) {
	if hashValue := core.ContentHash(nil); hashValue != "" {
		t.Fatalf("expected empty hash for nil, got %q", hashValue)
	}
}
