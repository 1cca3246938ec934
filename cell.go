package selfcell

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/selfcell/internal/joined"
)

var errConstructPanic = errors.New("selfcell: dependent builder panicked")

// Builder builds a dependent from the owner at its permanent address.
//
// A builder must not let the dependent capture references to anything other
// than *owner, and must not retain owner beyond the returned dependent.
type Builder[O, D any] func(ctx context.Context, owner *O) (D, error)

// Cell binds an owner and a dependent built from the owner's address into one
// value.
//
// A Cell is safe for concurrent use by multiple goroutines as long as only
// Owner, With, WithDependent and BorrowDependent are used concurrently, and
// the owner and dependent types are themselves safe for concurrent reads.
// WithMut, WithDependentMut, Destroy and IntoOwner require exclusive access.
type Cell[O, D any] struct {
	block *joined.Block[O, D]
	build Builder[O, D]
	cfg   *config
}

// New moves owner into a new cell and builds the dependent from it.
//
// New panics with ErrZeroSizeLayout if O and D are both zero-sized, with a
// *VarianceError if D embeds Covariant unsoundly, and with an error wrapping
// ErrMemoryLimitExceeded if a configured memory controller refuses the block.
// A panic in build is propagated after the owner has been dropped.
func New[O, D any](owner O, build func(owner *O) D, opts ...Option) *Cell[O, D] {
	b := func(_ context.Context, o *O) (D, error) {
		return build(o), nil
	}
	c, _, err := construct(context.Background(), owner, b, newConfig[O, D](opts), false, dropOwnerOnFailure)
	if err != nil {
		panic(err)
	}
	return c
}

// TryNew is like New for fallible builders.
//
// If build returns an error, the owner is dropped and the error is returned
// wrapped in a *ConstructionError.
func TryNew[O, D any](owner O, build func(owner *O) (D, error), opts ...Option) (*Cell[O, D], error) {
	b := func(_ context.Context, o *O) (D, error) {
		return build(o)
	}
	c, _, err := construct(context.Background(), owner, b, newConfig[O, D](opts), false, dropOwnerOnFailure)
	return c, err
}

// TryNewOrRecover is like TryNew but hands the owner back on failure instead
// of dropping it.
//
// The returned owner is only meaningful when err is non-nil. The builder must
// not have leaked or altered anything through the owner pointer before
// failing; this is not checked.
func TryNewOrRecover[O, D any](owner O, build func(owner *O) (D, error), opts ...Option) (*Cell[O, D], O, error) {
	b := func(_ context.Context, o *O) (D, error) {
		return build(o)
	}
	return construct(context.Background(), owner, b, newConfig[O, D](opts), false, returnOwnerOnFailure)
}

// TryNewContext is like TryNew for builders that take a context.
//
// If a memory controller is configured, TryNewContext waits for budget until
// ctx is done. A ctx that is already done when the owner has been placed
// fails the construction without calling build.
func TryNewContext[O, D any](ctx context.Context, owner O, build Builder[O, D], opts ...Option) (*Cell[O, D], error) {
	c, _, err := construct(ctx, owner, build, newConfig[O, D](opts), true, dropOwnerOnFailure)
	return c, err
}

type failMode uint8

const (
	dropOwnerOnFailure failMode = iota
	returnOwnerOnFailure
)

func construct[O, D any](
	ctx context.Context,
	owner O,
	build Builder[O, D],
	cfg *config,
	wait bool,
	mode failMode,
) (_ *Cell[O, D], recovered O, err error) {
	admitTypes[O, D](&owner)
	start := time.Now()

	var b *joined.Block[O, D]
	if wait {
		b, err = joined.AllocContext[O, D](ctx, cfg.memory)
	} else {
		b, err = joined.Alloc[O, D](cfg.memory)
	}
	if err != nil {
		err = fmt.Errorf("selfcell: allocating joined block: %w", err)
		if mode == returnOwnerOnFailure {
			recovered = owner
		} else if derr := joined.Drop(&owner); derr != nil {
			err = errors.Join(err, derr)
		}
		cfg.recordConstruct(ctx, start, 0, err)
		return nil, recovered, err
	}

	b.PlaceOwner(owner)

	settled := false
	defer func() {
		if !settled {
			cfg.recordConstruct(ctx, start, b.Size(), errConstructPanic)
			release(b)
		}
	}()

	var dep D
	berr := ctx.Err()
	if berr == nil {
		dep, berr = build(ctx, &b.Owner)
	}
	if berr != nil {
		err = &ConstructionError{
			OwnerType:     typeName[O](),
			DependentType: typeName[D](),
			cause:         berr,
		}
		if mode == returnOwnerOnFailure {
			recovered = b.TakeOwner()
		} else if derr := b.DropOwner(); derr != nil {
			err = errors.Join(err, derr)
		}
		b.Free()
		settled = true
		cfg.recordConstruct(ctx, start, b.Size(), err)
		return nil, recovered, err
	}

	b.PlaceDependent(dep)
	settled = true
	cfg.recordConstruct(ctx, start, b.Size(), nil)

	return &Cell[O, D]{block: b, build: build, cfg: cfg}, recovered, nil
}

// admitTypes panics if D declares covariance it does not have or if the
// joined layout is zero-sized. The owner is dropped before the panic leaves.
func admitTypes[O, D any](owner *O) {
	ok := false
	defer func() {
		if !ok {
			_ = joined.Drop(owner)
		}
	}()
	verifyDependent[D]()
	joined.SizeOf[O, D]()
	ok = true
}

func (cfg *config) recordConstruct(ctx context.Context, start time.Time, size int64, err error) {
	cfg.metrics.RecordConstruct(time.Since(start), err)
	cfg.logger.LogConstruct(ctx, size, err)
}

// live returns the block of c. Copies of a handle share the block, so a
// block torn down through another copy counts as consumed too.
func (c *Cell[O, D]) live() *joined.Block[O, D] {
	if c.Consumed() {
		panic(ErrConsumed)
	}
	return c.block
}

// Consumed reports whether the cell has been destroyed or its owner
// extracted, through this handle or any copy of it.
func (c *Cell[O, D]) Consumed() bool {
	return c.block == nil || c.block.State() != joined.Live
}

// Owner returns the owner at its permanent address. The owner must not be
// modified through the returned pointer.
func (c *Cell[O, D]) Owner() *O {
	return &c.live().Owner
}

// With calls fn with the owner and the dependent. Neither pointer may be
// retained after fn returns, and neither value may be modified.
func (c *Cell[O, D]) With(fn func(owner *O, dependent *D)) {
	b := c.live()
	fn(&b.Owner, &b.Dependent)
}

// WithMut calls fn with the owner and exclusive access to the dependent.
//
// fn may modify or replace the dependent, provided every reference the new
// value holds points into *owner. The owner must not be modified.
func (c *Cell[O, D]) WithMut(fn func(owner *O, dependent *D)) {
	b := c.live()
	fn(&b.Owner, &b.Dependent)
}

// WithDependent calls fn with the owner and dependent of c and returns its
// result. The result must not retain either pointer.
func WithDependent[O, D, R any](c *Cell[O, D], fn func(owner *O, dependent *D) R) R {
	b := c.live()
	return fn(&b.Owner, &b.Dependent)
}

// WithDependentMut is like WithDependent with exclusive access to the
// dependent, as in (*Cell).WithMut.
func WithDependentMut[O, D, R any](c *Cell[O, D], fn func(owner *O, dependent *D) R) R {
	b := c.live()
	return fn(&b.Owner, &b.Dependent)
}

// Clone builds a new cell from a copy of the owner, re-running the builder
// the cell was constructed with. The new dependent never aliases the
// original's.
func (c *Cell[O, D]) Clone(cloneOwner func(owner *O) O) (*Cell[O, D], error) {
	return c.clone(context.Background(), cloneOwner, false)
}

// CloneContext is like Clone with a context for the builder. Like
// TryNewContext it waits for memory and rate budget until ctx is done, where
// Clone fails fast.
func (c *Cell[O, D]) CloneContext(ctx context.Context, cloneOwner func(owner *O) O) (*Cell[O, D], error) {
	return c.clone(ctx, cloneOwner, true)
}

func (c *Cell[O, D]) clone(ctx context.Context, cloneOwner func(owner *O) O, wait bool) (*Cell[O, D], error) {
	owner := cloneOwner(&c.live().Owner)
	clone, _, err := construct(ctx, owner, c.build, c.cfg, wait, dropOwnerOnFailure)
	return clone, err
}

// Destroy drops the dependent, then the owner, and frees the joined block.
// Errors returned by io.Closer hooks are joined. Destroying a consumed cell
// returns ErrConsumed.
//
// If the dependent's hook panics, the owner is still dropped and the block
// freed before the panic propagates.
func (c *Cell[O, D]) Destroy() error {
	if c.Consumed() {
		c.block = nil
		return ErrConsumed
	}
	b := c.block
	c.block = nil

	const op = "destroy"
	start := time.Now()
	settled := false
	defer func() {
		if !settled {
			c.cfg.recordTeardownPanic(start, op)
			release(b)
		}
	}()

	err := b.DropDependent()
	if oerr := b.DropOwner(); oerr != nil {
		err = errors.Join(err, oerr)
	}
	b.Free()
	settled = true

	c.cfg.recordDestroy(start, op, err)
	return err
}

// Close implements io.Closer by calling Destroy. A cell used as the owner or
// dependent of another cell is torn down with it.
func (c *Cell[O, D]) Close() error {
	return c.Destroy()
}

// IntoOwner drops the dependent, frees the joined block and returns the
// owner without dropping it. The cell is consumed.
//
// If the dependent's hook panics, the owner is dropped and the block freed
// before the panic propagates; no owner is returned. An io.Closer error from
// the dependent is logged.
func (c *Cell[O, D]) IntoOwner() O {
	b := c.live()
	c.block = nil

	const op = "into_owner"
	start := time.Now()
	settled := false
	defer func() {
		if !settled {
			c.cfg.recordTeardownPanic(start, op)
			release(b)
		}
	}()

	err := b.DropDependent()
	owner := b.TakeOwner()
	b.Free()
	settled = true

	c.cfg.recordDestroy(start, op, err)
	return owner
}

func (cfg *config) recordDestroy(start time.Time, op string, err error) {
	cfg.metrics.RecordDestroy(time.Since(start), err)
	cfg.logger.LogDestroy(context.Background(), op, err)
}

func (cfg *config) recordTeardownPanic(start time.Time, op string) {
	cfg.metrics.RecordDestroy(time.Since(start), errTeardownPanic)
	cfg.logger.LogTeardownPanic(context.Background(), op)
}
