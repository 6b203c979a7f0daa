// Package cache provides short-lived in-process caching of fetched documents.
package cache

import (
	"strings"
	"time"
)

// Cache stores raw documents by key with a per-entry TTL
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
}

// RobotsKey returns the cache key for a host's robots.txt
func RobotsKey(scheme, host string) string {
	return "claimoverlap:robots:" + strings.ToLower(scheme+"://"+host)
}
