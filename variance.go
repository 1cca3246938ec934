package selfcell

import (
	"reflect"

	"github.com/hupe1980/selfcell/internal/variance"
)

// Covariant is embedded by dependent types to declare that copies of them may
// be handed out of a cell with BorrowDependent.
//
//	type Words struct {
//	    selfcell.Covariant
//	    List []string
//	}
//
// The declaration is checked structurally: a declared type that contains a
// sync primitive, an atomic, a channel, a map, a func, an interface or an
// unsafe.Pointer is rejected with a *VarianceError panic the first time it is
// verified. Write
//
//	var _ = selfcell.MustCovariant[Words]()
//
// next to the type to run the check at package initialization.
type Covariant struct{}

func (Covariant) covariant() {}

// Covariance is satisfied exactly by types that embed Covariant.
type Covariance interface {
	covariant()
}

// VarianceClass classifies dependent types.
type VarianceClass = variance.Class

const (
	// ClassCovariant permits BorrowDependent.
	ClassCovariant = variance.Covariant
	// ClassNotCovariant restricts access to With and WithMut.
	ClassNotCovariant = variance.NotCovariant
)

// ClassOf reports the variance class of D. Only types that embed Covariant
// and pass the structural check are ClassCovariant.
func ClassOf[D any]() VarianceClass {
	if !declaredCovariant[D]() {
		return ClassNotCovariant
	}
	return variance.Classify(reflect.TypeFor[D]()).Class
}

// MustCovariant verifies the covariance declaration of D and panics with a
// *VarianceError if it is unsound.
func MustCovariant[D Covariance]() VarianceClass {
	verifyDependent[D]()
	return ClassCovariant
}

// BorrowDependent returns a copy of the dependent of c.
//
// The copy shares every reference the dependent holds into the owner.
// It is only available for dependent types that embed Covariant.
func BorrowDependent[O any, D Covariance](c *Cell[O, D]) D {
	return c.live().Dependent
}

func declaredCovariant[D any]() bool {
	var zero D
	_, ok := any(zero).(Covariance)
	return ok
}

// verifyDependent panics if D declares covariance it does not have.
func verifyDependent[D any]() {
	if !declaredCovariant[D]() {
		return
	}
	if r := variance.Classify(reflect.TypeFor[D]()); r.Class != variance.Covariant {
		panic(varianceError(typeName[D](), r))
	}
}
