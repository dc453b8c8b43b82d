// Package resource implements the Controller shared by concurrent parses.
//
// The Controller manages three resource types:
//
//   - Memory: budget for response arenas (non-blocking, fail-fast)
//   - Parse slots: limit on parses running at the same time
//   - IO: rate limit on bytes read from reply bodies
//
// # Memory Management
//
// AcquireMemory never waits. If the budget would be exceeded it returns
// ErrMemoryLimitExceeded and the arena reports the allocation as denied:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20,
//	})
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
// This allows optional resource limiting without nil checks everywhere.
package resource
