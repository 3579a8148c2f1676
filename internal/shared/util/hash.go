package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// OwnerKey maps an owner name to a stable path segment. Only the first 16
// bytes of the digest are kept.
func OwnerKey(owner string) string {
	sum := sha256.Sum256([]byte(owner))
	return hex.EncodeToString(sum[:16])
}
