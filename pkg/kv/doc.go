// Package kv is a small key-value store abstraction with in-memory and
// Redis-backed implementations. Sessions and the post cache sit on it.
//
//	store := memory.NewStore()
//	defer store.Close()
//
//	err := store.Set(ctx, "blog:session:abc", payload, 24*time.Hour)
//	value, err := store.Get(ctx, "blog:session:abc")
//	if errors.Is(err, kv.ErrNotFound) {
//		// expired or never set
//	}
//
// Both backends pass the suite in kvtest, so callers can swap one for the
// other without changing behaviour.
package kv
