package variance

import (
	"io"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

type substrings struct {
	parts []string
	first *string
}

type node struct {
	next  *node
	label string
}

type lazyAST struct {
	once sync.Once
	ast  []string
}

type counted struct {
	hits atomic.Int64
}

type nested struct {
	inner []struct {
		mu *sync.Mutex
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		typ    reflect.Type
		class  Class
		path   string
		reason string
	}{
		{"string", reflect.TypeFor[string](), Covariant, "", ""},
		{"slice of strings", reflect.TypeFor[[]string](), Covariant, "", ""},
		{"struct with pointers", reflect.TypeFor[substrings](), Covariant, "", ""},
		{"recursive", reflect.TypeFor[node](), Covariant, "", ""},
		{"array", reflect.TypeFor[[4]int](), Covariant, "", ""},
		{"sync.Once field", reflect.TypeFor[lazyAST](), NotCovariant, "variance.lazyAST.once", "sync.Once"},
		{"atomic field", reflect.TypeFor[counted](), NotCovariant, "variance.counted.hits", "atomic.Int64"},
		{"deep mutex", reflect.TypeFor[nested](), NotCovariant, "variance.nested.inner[].mu", "sync.Mutex"},
		{"map", reflect.TypeFor[map[string]int](), NotCovariant, "map[string]int", "map"},
		{"chan", reflect.TypeFor[chan int](), NotCovariant, "chan int", "channel"},
		{"func", reflect.TypeFor[func(*string) int](), NotCovariant, "func(*string) int", "func"},
		{"interface", reflect.TypeFor[io.Reader](), NotCovariant, "io.Reader", "interface io.Reader"},
		{"unsafe pointer", reflect.TypeFor[unsafe.Pointer](), NotCovariant, "unsafe.Pointer", "unsafe.Pointer"},
		{"generic atomic", reflect.TypeFor[atomic.Pointer[string]](), NotCovariant, "atomic.Pointer[string]", "atomic.Pointer[string]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Classify(tt.typ)
			assert.Equal(t, tt.class, r.Class)
			assert.Equal(t, tt.path, r.Path)
			assert.Equal(t, tt.reason, r.Reason)
		})
	}
}

func TestClassify_Cached(t *testing.T) {
	typ := reflect.TypeFor[lazyAST]()
	first := Classify(typ)
	cached, ok := cache.Load(typ)
	assert.True(t, ok)
	assert.Equal(t, first, cached)
	assert.Equal(t, first, Classify(typ))
}

func TestClass_String(t *testing.T) {
	assert.Equal(t, "covariant", Covariant.String())
	assert.Equal(t, "not-covariant", NotCovariant.String())
}
