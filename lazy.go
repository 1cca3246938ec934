package selfcell

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/selfcell/internal/joined"
	"github.com/hupe1980/selfcell/internal/once"
)

// LazyCell binds an owner to a dependent that is built on first access.
//
// Owner, GetOrInit, Get and IsInitialized are safe for concurrent use.
// Concurrent first callers of GetOrInit block while one of them runs its
// builder; exactly one builder result is published and returned to all of
// them. Take, Destroy and IntoOwner require exclusive access.
type LazyCell[O, D any] struct {
	block *joined.Block[O, once.Slot]
	cfg   *config
}

// NewLazy moves owner into a new lazy cell. No dependent is built.
//
// NewLazy panics with an error wrapping ErrMemoryLimitExceeded if a
// configured memory controller refuses the block.
func NewLazy[O, D any](owner O, opts ...Option) *LazyCell[O, D] {
	c, err := newLazy[O, D](owner, newConfig[O, D](opts))
	if err != nil {
		panic(err)
	}
	return c
}

// TryNewLazy is like NewLazy but returns the memory controller's refusal as
// an error. The owner is dropped in that case.
func TryNewLazy[O, D any](owner O, opts ...Option) (*LazyCell[O, D], error) {
	return newLazy[O, D](owner, newConfig[O, D](opts))
}

func newLazy[O, D any](owner O, cfg *config) (*LazyCell[O, D], error) {
	start := time.Now()

	b, err := joined.Alloc[O, once.Slot](cfg.memory)
	if err != nil {
		err = fmt.Errorf("selfcell: allocating joined block: %w", err)
		if derr := joined.Drop(&owner); derr != nil {
			err = errors.Join(err, derr)
		}
		cfg.recordConstruct(context.Background(), start, 0, err)
		return nil, err
	}

	b.PlaceOwner(owner)
	b.MarkLive()
	cfg.recordConstruct(context.Background(), start, b.Size(), nil)

	return &LazyCell[O, D]{block: b, cfg: cfg}, nil
}

func (c *LazyCell[O, D]) live() *joined.Block[O, once.Slot] {
	if c.Consumed() {
		panic(ErrConsumed)
	}
	return c.block
}

// Consumed reports whether the cell has been destroyed or its owner
// extracted, through this handle or any copy of it.
func (c *LazyCell[O, D]) Consumed() bool {
	return c.block == nil || c.block.State() != joined.Live
}

// Owner returns the owner at its permanent address. The owner must not be
// modified through the returned pointer.
func (c *LazyCell[O, D]) Owner() *O {
	return &c.live().Owner
}

// GetOrInit returns the dependent, building it with build if it has not been
// published yet. Once published, later builders never run.
//
// If build panics the cell stays uninitialized and the panic propagates.
// build must not call back into c.
func (c *LazyCell[O, D]) GetOrInit(build func(owner *O) D) *D {
	b := c.live()
	if v, ok := once.Load[D](&b.Dependent); ok {
		return v
	}

	start := time.Now()
	v, won := once.GetOrInit(&b.Dependent, func() D {
		return build(&b.Owner)
	})
	if won {
		took := time.Since(start)
		c.cfg.metrics.RecordLazyInit(took)
		c.cfg.logger.LogLazyInit(context.Background(), took)
	}
	return v
}

// Get returns the dependent if it has been published.
func (c *LazyCell[O, D]) Get() (*D, bool) {
	return once.Load[D](&c.live().Dependent)
}

// IsInitialized reports whether a dependent has been published.
func (c *LazyCell[O, D]) IsInitialized() bool {
	return c.live().Dependent.State() == once.Initialized
}

// Take removes the published dependent and returns it without dropping it,
// leaving the cell uninitialized. The returned value may still reference the
// owner and must not outlive the cell.
func (c *LazyCell[O, D]) Take() (D, bool) {
	return once.Take[D](&c.live().Dependent)
}

// Clone returns a new lazy cell holding a copy of the owner. The clone
// starts uninitialized.
func (c *LazyCell[O, D]) Clone(cloneOwner func(owner *O) O) (*LazyCell[O, D], error) {
	return newLazy[O, D](cloneOwner(&c.live().Owner), c.cfg)
}

// Destroy drops the dependent if one was published, then the owner, and
// frees the joined block. Destroying a consumed cell returns ErrConsumed.
func (c *LazyCell[O, D]) Destroy() error {
	if c.Consumed() {
		c.block = nil
		return ErrConsumed
	}
	_, err := c.teardown(false)
	return err
}

// Close implements io.Closer by calling Destroy.
func (c *LazyCell[O, D]) Close() error {
	return c.Destroy()
}

// IntoOwner drops the dependent if one was published, frees the joined block
// and returns the owner without dropping it.
func (c *LazyCell[O, D]) IntoOwner() O {
	c.live()
	owner, _ := c.teardown(true)
	return owner
}

func (c *LazyCell[O, D]) teardown(keepOwner bool) (owner O, err error) {
	b := c.block
	c.block = nil

	op := "destroy"
	if keepOwner {
		op = "into_owner"
	}

	start := time.Now()
	settled := false
	defer func() {
		if !settled {
			c.cfg.recordTeardownPanic(start, op)
			release(b)
		}
	}()

	if dep, ok := once.Take[D](&b.Dependent); ok {
		err = joined.Drop(&dep)
	}
	if derr := b.DropDependent(); derr != nil {
		err = errors.Join(err, derr)
	}
	if keepOwner {
		owner = b.TakeOwner()
	} else if oerr := b.DropOwner(); oerr != nil {
		err = errors.Join(err, oerr)
	}
	b.Free()
	settled = true

	c.cfg.recordDestroy(start, op, err)
	return owner, err
}
