// Package cache provides the TTL key-value stores used to memoize search
// results: an in-process LRU for single-instance deployments and a Redis
// store for deployments with several server instances.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const keyNamespace = "codearchive:"

// Kinds of cached values
const (
	KindSearch = "search"
	KindLookup = "lookup"
)

var tenantEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// Key builds a tenant-scoped cache key. parts are hashed, so arbitrary
// query text never appears in the key itself.
func Key(tenantID, kind string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return tenantPrefix(tenantID) + kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// tenantPrefix is the prefix shared by every key of a tenant. Escaping
// keeps tenant "a" from matching keys of tenant "a:b".
func tenantPrefix(tenantID string) string {
	return keyNamespace + tenantEscaper.Replace(tenantID) + ":"
}
