package variance

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Class is the variance classification of a type.
type Class uint8

const (
	Covariant Class = iota
	NotCovariant
)

func (c Class) String() string {
	if c == Covariant {
		return "covariant"
	}
	return "not-covariant"
}

// Result is the classification of a type. For NotCovariant results, Path and
// Reason name the first offending component.
type Result struct {
	Class  Class
	Path   string
	Reason string
}

var cache sync.Map // reflect.Type -> Result

// Classify returns the classification of t.
func Classify(t reflect.Type) Result {
	if r, ok := cache.Load(t); ok {
		return r.(Result)
	}
	w := walker{visiting: make(map[reflect.Type]bool)}
	r := Result{Class: Covariant}
	if path, reason, bad := w.walk(t, nil); bad {
		r = Result{
			Class:  NotCovariant,
			Path:   t.String() + strings.Join(path, ""),
			Reason: reason,
		}
	}
	actual, _ := cache.LoadOrStore(t, r)
	return actual.(Result)
}

type walker struct {
	visiting map[reflect.Type]bool
}

func (w *walker) walk(t reflect.Type, path []string) ([]string, string, bool) {
	if w.visiting[t] {
		// Recursive types are decided by their non-recursive components.
		return nil, "", false
	}

	if reason, bad := interiorMutable(t); bad {
		return path, reason, true
	}

	switch t.Kind() {
	case reflect.Chan:
		return path, "channel", true
	case reflect.Map:
		return path, "map", true
	case reflect.Func:
		return path, "func", true
	case reflect.Interface:
		return path, "interface " + t.String(), true
	case reflect.UnsafePointer:
		return path, "unsafe.Pointer", true
	case reflect.Pointer:
		w.visiting[t] = true
		defer delete(w.visiting, t)
		return w.walk(t.Elem(), path)
	case reflect.Slice:
		w.visiting[t] = true
		defer delete(w.visiting, t)
		return w.walk(t.Elem(), append(path, "[]"))
	case reflect.Array:
		return w.walk(t.Elem(), append(path, fmt.Sprintf("[%d]", t.Len())))
	case reflect.Struct:
		w.visiting[t] = true
		defer delete(w.visiting, t)
		for i := range t.NumField() {
			f := t.Field(i)
			if p, reason, bad := w.walk(f.Type, append(path, "."+f.Name)); bad {
				return p, reason, true
			}
		}
	}
	return nil, "", false
}

func interiorMutable(t reflect.Type) (string, bool) {
	switch t.PkgPath() {
	case "sync":
		switch t.Name() {
		case "Mutex", "RWMutex", "Once", "WaitGroup", "Cond", "Map", "Pool":
			return "sync." + t.Name(), true
		}
	case "sync/atomic":
		return "atomic." + t.Name(), true
	}
	return "", false
}
