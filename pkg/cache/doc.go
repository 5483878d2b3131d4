// Package cache stores short-lived values behind a small generic interface
// with an in-memory and a Redis implementation.
//
// Set with a zero TTL applies the cache default. A negative TTL never
// expires.
//
//	previews := cache.NewMemory[newsletter.Result](cache.WithDefaultTTL(time.Hour))
//	defer previews.Close()
//
// [Refresh] recomputes a value and stores it, collapsing concurrent calls for
// the same key into one computation.
package cache
