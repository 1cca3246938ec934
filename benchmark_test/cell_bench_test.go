package benchmark_test

import (
	"context"
	"strings"
	"testing"

	"github.com/hupe1980/selfcell"
	"github.com/hupe1980/selfcell/resource"
)

type fields struct {
	selfcell.Covariant
	List []string
}

func split(owner *string) fields {
	return fields{List: strings.Fields(*owner)}
}

var src = strings.Repeat("lorem ipsum dolor sit amet ", 16)

func BenchmarkNewDestroy(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		c := selfcell.New(src, split)
		if err := c.Destroy(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkNewDestroy_MemoryController(b *testing.B) {
	b.ReportAllocs()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20})
	for i := 0; i < b.N; i++ {
		c := selfcell.New(src, split, selfcell.WithMemoryController(rc))
		if err := c.Destroy(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTryNewContext(b *testing.B) {
	b.ReportAllocs()
	ctx := context.Background()
	build := func(_ context.Context, owner *string) (fields, error) {
		return split(owner), nil
	}
	for i := 0; i < b.N; i++ {
		c, err := selfcell.TryNewContext(ctx, src, build)
		if err != nil {
			b.Fatal(err)
		}
		_ = c.IntoOwner()
	}
}

func BenchmarkBorrowDependent_Parallel(b *testing.B) {
	c := selfcell.New(src, split)
	defer c.Destroy()

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		n := 0
		for pb.Next() {
			n += len(selfcell.BorrowDependent(c).List)
		}
		_ = n
	})
}

func BenchmarkLazyGetOrInit_Hot(b *testing.B) {
	c := selfcell.NewLazy[string, fields](src)
	defer c.Destroy()
	c.GetOrInit(split)

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			c.GetOrInit(split)
		}
	})
}

func BenchmarkLazyGetOrInit_Cold(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		c := selfcell.NewLazy[string, fields](src)
		c.GetOrInit(split)
		if err := c.Destroy(); err != nil {
			b.Fatal(err)
		}
	}
}
