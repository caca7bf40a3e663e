// Package cache provides the remember/forget cache shared by the configuration services.
//
// A Store sits on top of a Backend: Memory (patrickmn/go-cache, per process) or
// Redis (go-redis, shared between the API server and CLI runs). Values are JSON
// encoded so both backends behave the same.
//
// # Semantics
//
//   - Remember: read-through with singleflight protection against stampedes.
//   - Forget: synchronous invalidation. A producer that started before a Forget
//     still returns its value to its caller but does not write it back, so the
//     next read rebuilds from current data.
//
// # Usage
//
//	store := cache.NewStore(cache.NewMemory(), "krosmoz:", logger)
//	slots, err := cache.Remember(ctx, store, "equipment_slots", time.Hour, loadSlots)
//	_ = store.Forget(ctx, "equipment_slots")
package cache
