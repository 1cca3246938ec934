package testutil

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
)

// DropLog records the order in which tracked values are dropped.
// It is thread-safe.
type DropLog struct {
	mu   sync.Mutex
	tags []string
}

// Record appends tag to the log.
func (l *DropLog) Record(tag string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tags = append(l.tags, tag)
}

// Tags returns a copy of the recorded tags in drop order.
func (l *DropLog) Tags() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.tags)
}

// Counter counts tracked values created and dropped.
type Counter struct {
	created atomic.Int64
	dropped atomic.Int64
}

// Created returns the number of tracked values created.
func (c *Counter) Created() int64 {
	return c.created.Load()
}

// Dropped returns the number of tracked values dropped.
func (c *Counter) Dropped() int64 {
	return c.dropped.Load()
}

// Live returns the number of tracked values not yet dropped.
func (c *Counter) Live() int64 {
	return c.created.Load() - c.dropped.Load()
}

// Tracked is an owner or dependent that records its drop.
//
// Dropping the same Tracked twice panics.
type Tracked struct {
	Tag string
	// PanicOnDrop makes Drop panic after recording.
	PanicOnDrop bool

	log     *DropLog
	counter *Counter
	dropped *atomic.Bool
}

// NewTracked creates a tracked value. log and counter may be nil.
func NewTracked(tag string, log *DropLog, counter *Counter) Tracked {
	if counter != nil {
		counter.created.Add(1)
	}
	return Tracked{
		Tag:     tag,
		log:     log,
		counter: counter,
		dropped: new(atomic.Bool),
	}
}

// Dropped reports whether the value has been dropped.
func (t *Tracked) Dropped() bool {
	return t.dropped != nil && t.dropped.Load()
}

// Drop implements selfcell.Dropper.
func (t *Tracked) Drop() {
	if t.dropped == nil {
		return // zero value, never created through NewTracked
	}
	if !t.dropped.CompareAndSwap(false, true) {
		panic(fmt.Sprintf("testutil: %q dropped twice", t.Tag))
	}
	if t.log != nil {
		t.log.Record(t.Tag)
	}
	if t.counter != nil {
		t.counter.dropped.Add(1)
	}
	if t.PanicOnDrop {
		panic(fmt.Sprintf("testutil: %q panicked on drop", t.Tag))
	}
}
