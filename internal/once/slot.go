package once

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// State is the initialization state of a Slot.
type State uint32

const (
	Empty State = iota
	Initializing
	Initialized
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Initializing:
		return "initializing"
	case Initialized:
		return "initialized"
	default:
		return fmt.Sprintf("State(%d)", uint32(s))
	}
}

// TypeMismatchError reports a read of a slot with a type other than the
// type of its published value.
type TypeMismatchError struct {
	Published reflect.Type
	Requested reflect.Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("once: slot holds %s, requested %s", e.Published, e.Requested)
}

type published struct {
	typ reflect.Type
	ptr any // *T
}

// Slot is a one-shot initialization slot. The zero value is an empty slot.
// A Slot must not be copied after first use.
type Slot struct {
	state atomic.Uint32
	value atomic.Pointer[published]
	mu    sync.Mutex // serializes initializers
}

// State returns the current state.
//
// A published value always reads as Initialized, so State agrees with Load
// even while the initializer is still finishing.
func (s *Slot) State() State {
	if s.value.Load() != nil {
		return Initialized
	}
	return State(s.state.Load())
}

// GetOrInit returns the published value, running f to produce it if the slot
// is empty. won reports whether this call's f produced the value.
//
// If f panics the slot returns to Empty and the panic propagates.
func GetOrInit[T any](s *Slot, f func() T) (v *T, won bool) {
	if p := s.value.Load(); p != nil {
		return cast[T](p), false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double check under lock
	if p := s.value.Load(); p != nil {
		return cast[T](p), false
	}

	s.state.Store(uint32(Initializing))
	ok := false
	defer func() {
		if !ok {
			s.state.Store(uint32(Empty))
		}
	}()

	v = new(T)
	*v = f()

	s.value.Store(&published{typ: reflect.TypeFor[T](), ptr: v})
	s.state.Store(uint32(Initialized))
	ok = true
	return v, true
}

// Load returns the published value, if any.
func Load[T any](s *Slot) (*T, bool) {
	p := s.value.Load()
	if p == nil {
		return nil, false
	}
	return cast[T](p), true
}

// Take removes and returns the published value, resetting the slot to Empty.
//
// Take requires exclusive access: no GetOrInit or Load may run concurrently.
func Take[T any](s *Slot) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	p := s.value.Load()
	if p == nil {
		return zero, false
	}
	v := *cast[T](p)
	s.state.Store(uint32(Empty))
	s.value.Store(nil)
	return v, true
}

func cast[T any](p *published) *T {
	if want := reflect.TypeFor[T](); p.typ != want {
		panic(&TypeMismatchError{Published: p.typ, Requested: want})
	}
	return p.ptr.(*T)
}
