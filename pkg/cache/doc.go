// Package cache provides an optional Redis-backed response cache for
// GET requests, keyed by endpoint signature.
//
// Helix responses carry no freshness headers, so entries live for a
// fixed TTL configured on the manager. The dispatcher consults the
// cache before acquiring the rate-limit gate: a hit costs neither
// quota nor serialization.
//
// Example usage:
//
//	manager := cache.NewManager(redisClient, 60*time.Second)
//	entry, err := manager.Get(ctx, route.Signature())
//	if err == cache.ErrCacheMiss {
//		// fetch from Helix, then manager.Set(...)
//	}
//
// The cache is strictly opt-in; a dispatcher constructed without a
// manager never touches Redis.
package cache
