package joined

import (
	"io"
	"reflect"
)

// Dropper is implemented by values that must release resources when the
// cell holding them is torn down.
type Dropper interface {
	Drop()
}

// Drop runs the destructor hook of *p, if any.
//
// Hooks are looked up on p first (covering pointer and value receivers) and
// then on *p, so owners that are themselves pointers or interfaces are found.
// Dropper takes precedence over io.Closer.
func Drop[T any](p *T) error {
	if handled, err := runHook(p); handled {
		return err
	}
	v := any(*p)
	if v == nil || isNilPointer(v) {
		return nil
	}
	_, err := runHook(v)
	return err
}

func runHook(v any) (handled bool, err error) {
	switch h := v.(type) {
	case Dropper:
		h.Drop()
		return true, nil
	case io.Closer:
		return true, h.Close()
	}
	return false, nil
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
