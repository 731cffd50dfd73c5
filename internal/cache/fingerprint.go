// internal/cache/fingerprint.go
package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"recipe-engine/internal/models"
)

// Fingerprint derives the stable cache key for a request. The request is
// canonicalized first (normalized term, sorted filters, sorted availability
// ids), so two logically identical requests differing only in key or id
// ordering hash identically.
func Fingerprint(req models.SearchRequest) string {
	sum := sha256.Sum256([]byte(req.CanonicalKey()))
	return hex.EncodeToString(sum[:])
}
