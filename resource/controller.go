package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

var (
	// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
	ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

	// ErrRateLimited is returned when the construction rate limit is reached.
	ErrRateLimited = errors.New("construction rate limit exceeded")
)

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for managed memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// ConstructionsPerSecond limits how fast new blocks may be reserved.
	// If 0, constructions are not rate limited.
	ConstructionsPerSecond float64

	// ConstructionBurst is the number of constructions allowed at once.
	// Defaults to max(1, ConstructionsPerSecond).
	ConstructionBurst int
}

// Controller tracks and limits the memory held by joined blocks.
type Controller struct {
	cfg Config

	memSem   *semaphore.Weighted // nil if unlimited
	memUsed  atomic.Int64
	memPeak  atomic.Int64
	reserved atomic.Int64 // outstanding reservations

	limiter *rate.Limiter // nil if unlimited
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.ConstructionsPerSecond > 0 {
		burst := cfg.ConstructionBurst
		if burst <= 0 {
			burst = max(1, int(cfg.ConstructionsPerSecond))
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.ConstructionsPerSecond), burst)
	}

	return c
}

// AcquireMemory attempts to reserve memory.
// If a hard limit is configured and usage would exceed it,
// this blocks until memory is available or ctx is canceled.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil {
		return nil
	}
	if bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if bytes > c.cfg.MemoryLimitBytes {
			// semaphore.Acquire would block until ctx is done.
			return ErrMemoryLimitExceeded
		}
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.account(bytes)
	return nil
}

// TryAcquireMemory attempts to reserve memory without blocking.
// Returns true if acquired, false if limit would be exceeded.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil {
		return true
	}
	if bytes <= 0 {
		return true
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return false
		}
	}

	c.account(bytes)
	return true
}

func (c *Controller) account(bytes int64) {
	c.reserved.Add(1)
	used := c.memUsed.Add(bytes)
	for {
		peak := c.memPeak.Load()
		if used <= peak || c.memPeak.CompareAndSwap(peak, used) {
			return
		}
	}
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil {
		return
	}
	if bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
	c.reserved.Add(-1)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryPeak returns the high-water mark of memory usage in bytes.
func (c *Controller) MemoryPeak() int64 {
	if c == nil {
		return 0
	}
	return c.memPeak.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// Reservations returns the number of outstanding reservations.
// With cells this equals the number of live joined blocks.
func (c *Controller) Reservations() int64 {
	if c == nil {
		return 0
	}
	return c.reserved.Load()
}

// AcquireConstruction waits until the construction rate limit admits one
// more construction or ctx is done.
func (c *Controller) AcquireConstruction(ctx context.Context) error {
	if c == nil || c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// TryAcquireConstruction reports whether a construction is admitted now.
func (c *Controller) TryAcquireConstruction() bool {
	if c == nil || c.limiter == nil {
		return true
	}
	return c.limiter.Allow()
}
