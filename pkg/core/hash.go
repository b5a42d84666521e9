package core

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// ContentHash returns a stable sha256 digest of rendered target data.
// Keys are sorted and each pair is written as key\x00value\n so map order never matters.
func ContentHash(data map[string]string) string {
	if len(data) == 0 {
		return ""
	}
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	digest := sha256.New()
	for _, key := range keys {
		digest.Write([]byte(key))
		digest.Write([]byte{0})
		digest.Write([]byte(data[key]))
		digest.Write([]byte{'\n'})
	}
	return "sha256:" + hex.EncodeToString(digest.Sum(nil))
}
