// Package cache provides a generic, thread-safe LRU cache whose entries
// optionally expire after a fixed time-to-live.
//
// The records layer uses it to keep the full row snapshot of a table for a
// short window so repeated listings do not hit the remote store.
//
//	c := cache.NewLRUCache[string, []Row](16, cache.WithTTL(time.Minute))
//	c.Put("Users", rows)
//	rows, ok := c.Get("Users") // false once the minute has passed
//
// Expired entries are dropped lazily on access. Capacity is enforced on
// every Put by evicting the least recently used entry.
package cache
