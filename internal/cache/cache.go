package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// PageKey generates a cache key for a fetched page
func PageKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "claimscan:page:v1:" + hex.EncodeToString(hash[:])
}

// VerdictKey generates a cache key for an escalation verdict. Keyed on the
// rule plus the matched span and its window, so an identical candidate is
// never escalated twice across runs.
func VerdictKey(ruleID, matched, window string) string {
	hash := sha256.Sum256([]byte(ruleID + "\x00" + matched + "\x00" + window))
	return "claimscan:verdict:v1:" + hex.EncodeToString(hash[:])
}
