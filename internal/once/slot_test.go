package once

import (
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestSlot_GetOrInit(t *testing.T) {
	var s Slot
	assert.Equal(t, Empty, s.State())

	_, ok := Load[int](&s)
	assert.False(t, ok)

	v, won := GetOrInit(&s, func() int { return 42 })
	require.True(t, won)
	assert.Equal(t, 42, *v)
	assert.Equal(t, Initialized, s.State())

	again, won := GetOrInit(&s, func() int {
		t.Fatal("second builder must not run")
		return 0
	})
	assert.False(t, won)
	assert.Same(t, v, again)

	loaded, ok := Load[int](&s)
	require.True(t, ok)
	assert.Same(t, v, loaded)
}

func TestSlot_PanicRollsBack(t *testing.T) {
	var s Slot

	assert.PanicsWithValue(t, "boom", func() {
		GetOrInit(&s, func() string { panic("boom") })
	})
	assert.Equal(t, Empty, s.State())
	_, ok := Load[string](&s)
	assert.False(t, ok)

	v, won := GetOrInit(&s, func() string { return "recovered" })
	assert.True(t, won)
	assert.Equal(t, "recovered", *v)
}

func TestSlot_ConcurrentSinglePublication(t *testing.T) {
	var (
		s      Slot
		builds atomic.Int32
		start  = make(chan struct{})
		seen   sync.Map
	)

	const racers = 64
	var g errgroup.Group
	for i := range racers {
		g.Go(func() error {
			<-start
			v, _ := GetOrInit(&s, func() []int {
				builds.Add(1)
				return []int{i}
			})
			seen.Store(v, struct{}{})
			return nil
		})
	}
	close(start)
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), builds.Load())

	distinct := 0
	seen.Range(func(_, _ any) bool {
		distinct++
		return true
	})
	assert.Equal(t, 1, distinct, "all racers must observe the same published value")
}

func TestSlot_StateAgreesWithLoad(t *testing.T) {
	for range 200 {
		var s Slot
		var g errgroup.Group
		g.Go(func() error {
			GetOrInit(&s, func() int { return 1 })
			return nil
		})
		for range 4 {
			g.Go(func() error {
				for {
					if _, ok := Load[int](&s); ok {
						assert.Equal(t, Initialized, s.State())
						return nil
					}
				}
			})
		}
		require.NoError(t, g.Wait())
	}
}

func TestSlot_TypeMismatch(t *testing.T) {
	var s Slot
	GetOrInit(&s, func() int { return 1 })

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(*TypeMismatchError)
		require.True(t, ok, "panic value %T", r)
		assert.Equal(t, reflect.TypeFor[int](), err.Published)
		assert.Equal(t, reflect.TypeFor[int64](), err.Requested)
		assert.Equal(t, "once: slot holds int, requested int64", err.Error())
	}()
	GetOrInit(&s, func() int64 { return 2 })
}

func TestSlot_Take(t *testing.T) {
	var s Slot

	_, ok := Take[string](&s)
	assert.False(t, ok)

	GetOrInit(&s, func() string { return "first" })
	v, ok := Take[string](&s)
	require.True(t, ok)
	assert.Equal(t, "first", v)
	assert.Equal(t, Empty, s.State())

	next, won := GetOrInit(&s, func() string { return "second" })
	assert.True(t, won)
	assert.Equal(t, "second", *next)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "empty", Empty.String())
	assert.Equal(t, "initializing", Initializing.String())
	assert.Equal(t, "initialized", Initialized.String())
	assert.Equal(t, "State(7)", State(7).String())
}
