package joined

import (
	"context"
	"errors"
	"fmt"
	"unsafe"

	"github.com/hupe1980/selfcell/internal/conv"
	"github.com/hupe1980/selfcell/resource"
)

// ErrZeroSizeLayout is the panic value of Alloc for zero-sized layouts.
var ErrZeroSizeLayout = errors.New("joined: owner and dependent are zero-sized; no address to anchor the dependent")

// MemoryAcquirer is an interface for acquiring memory.
type MemoryAcquirer interface {
	AcquireMemory(ctx context.Context, amount int64) error
	TryAcquireMemory(amount int64) bool
	ReleaseMemory(amount int64)
}

// Admitter is optionally implemented by a MemoryAcquirer that also limits
// the rate of allocations.
type Admitter interface {
	AcquireConstruction(ctx context.Context) error
	TryAcquireConstruction() bool
}

// State is the lifecycle state of a Block.
type State uint8

const (
	Vacant State = iota
	OwnerPlaced
	Live
	Retired
)

func (s State) String() string {
	switch s {
	case Vacant:
		return "vacant"
	case OwnerPlaced:
		return "owner-placed"
	case Live:
		return "live"
	case Retired:
		return "retired"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Layout describes the combined size and alignment of a Block's payload.
type Layout struct {
	Size  uintptr
	Align uintptr
	// DependentOffset is the offset of the dependent slot from the owner slot.
	DependentOffset uintptr
}

type payload[O, D any] struct {
	owner     O
	dependent D
}

// LayoutOf returns the layout of the joined owner/dependent pair.
func LayoutOf[O, D any]() Layout {
	var p payload[O, D]
	return Layout{
		Size:            unsafe.Sizeof(p),
		Align:           unsafe.Alignof(p),
		DependentOffset: unsafe.Offsetof(p.dependent),
	}
}

// Block is a joined allocation holding an owner and its dependent.
//
// Owner and Dependent are exported so callers can take their addresses;
// all state changes must go through the Block methods.
type Block[O, D any] struct {
	Owner     O
	Dependent D

	state    State
	reserved int64
	acq      MemoryAcquirer
}

// Alloc allocates a vacant block.
//
// If acq is non-nil the layout size is reserved without blocking first;
// resource.ErrMemoryLimitExceeded is returned when the budget refuses it, and
// resource.ErrRateLimited when an Admitter refuses the allocation.
func Alloc[O, D any](acq MemoryAcquirer) (*Block[O, D], error) {
	size := SizeOf[O, D]()
	if acq != nil && !acq.TryAcquireMemory(size) {
		return nil, resource.ErrMemoryLimitExceeded
	}
	// Memory first: a refused reservation must not spend a rate token.
	if a, ok := acq.(Admitter); ok && !a.TryAcquireConstruction() {
		acq.ReleaseMemory(size)
		return nil, resource.ErrRateLimited
	}
	return &Block[O, D]{reserved: size, acq: acq}, nil
}

// AllocContext is like Alloc but waits for budget until ctx is done.
func AllocContext[O, D any](ctx context.Context, acq MemoryAcquirer) (*Block[O, D], error) {
	size := SizeOf[O, D]()
	if a, ok := acq.(Admitter); ok {
		if err := a.AcquireConstruction(ctx); err != nil {
			return nil, err
		}
	}
	if acq != nil {
		if err := acq.AcquireMemory(ctx, size); err != nil {
			return nil, err
		}
	}
	return &Block[O, D]{reserved: size, acq: acq}, nil
}

// SizeOf returns the payload size of a Block[O, D] in bytes.
// It panics with ErrZeroSizeLayout for zero-sized layouts.
func SizeOf[O, D any]() int64 {
	l := LayoutOf[O, D]()
	if l.Size == 0 {
		panic(ErrZeroSizeLayout)
	}
	size, err := conv.UintptrToInt64(l.Size)
	if err != nil {
		panic(fmt.Errorf("joined: %w", err))
	}
	return size
}

// Size returns the number of bytes reserved for the block.
func (b *Block[O, D]) Size() int64 {
	return b.reserved
}

// State returns the current lifecycle state.
func (b *Block[O, D]) State() State {
	return b.state
}

func (b *Block[O, D]) transition(from, to State) {
	if b.state != from {
		panic(fmt.Sprintf("joined: illegal transition %s -> %s (state is %s)", from, to, b.state))
	}
	b.state = to
}

// PlaceOwner moves owner into its permanent slot.
func (b *Block[O, D]) PlaceOwner(owner O) {
	b.transition(Vacant, OwnerPlaced)
	b.Owner = owner
}

// PlaceDependent stores the dependent built against &b.Owner.
func (b *Block[O, D]) PlaceDependent(dependent D) {
	b.transition(OwnerPlaced, Live)
	b.Dependent = dependent
}

// MarkLive declares the zero Dependent a valid value (used for lazily
// populated slots that manage their own contents).
func (b *Block[O, D]) MarkLive() {
	b.transition(OwnerPlaced, Live)
}

// DropDependent runs the dependent's destructor hook and clears the slot.
//
// The state is advanced before the hook runs, so a panicking hook still
// leaves the block ready for DropOwner.
func (b *Block[O, D]) DropDependent() error {
	b.transition(Live, OwnerPlaced)
	err := Drop(&b.Dependent)
	var zero D
	b.Dependent = zero
	return err
}

// DropOwner runs the owner's destructor hook and clears the slot.
func (b *Block[O, D]) DropOwner() error {
	b.transition(OwnerPlaced, Vacant)
	err := Drop(&b.Owner)
	var zero O
	b.Owner = zero
	return err
}

// TakeOwner moves the owner out of the block without running its hook.
func (b *Block[O, D]) TakeOwner() O {
	b.transition(OwnerPlaced, Vacant)
	owner := b.Owner
	var zero O
	b.Owner = zero
	return owner
}

// Free retires the block and returns its reservation to the acquirer.
func (b *Block[O, D]) Free() {
	b.transition(Vacant, Retired)
	if b.acq != nil {
		b.acq.ReleaseMemory(b.reserved)
	}
	b.acq = nil
}
