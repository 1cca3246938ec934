// Package resource implements a memory budget shared by self-referential cells.
//
// Every cell places its owner and dependent in one joined block. When a
// Controller is attached to a cell (selfcell.WithMemoryController), the size
// of that block is reserved against the budget before the owner is placed and
// released again when the cell is destroyed or its owner is extracted.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20, // 64MB of joined blocks
//	})
//
//	cell, err := selfcell.TryNew(src, parse, selfcell.WithMemoryController(rc))
//	if errors.Is(err, resource.ErrMemoryLimitExceeded) {
//	    // caller decides retry/backoff
//	}
//
// # Blocking vs. Fail-Fast
//
// TryAcquireMemory never blocks and is used by the synchronous constructors.
// AcquireMemory waits until enough budget is released or ctx is canceled; it
// backs the context-aware constructors.
//
// # Construction Rate
//
// Config.ConstructionsPerSecond additionally limits how fast new blocks are
// admitted. Fail-fast constructors get ErrRateLimited; context-aware ones
// wait for the limiter.
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
// This allows optional budgeting without nil checks everywhere.
package resource
