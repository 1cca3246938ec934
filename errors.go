package selfcell

import (
	"errors"
	"fmt"

	"github.com/hupe1980/selfcell/internal/joined"
	"github.com/hupe1980/selfcell/internal/variance"
	"github.com/hupe1980/selfcell/resource"
)

var (
	// ErrConsumed is returned (or used as panic value) when a cell is used
	// after Destroy or IntoOwner.
	ErrConsumed = errors.New("selfcell: cell already consumed")

	// ErrZeroSizeLayout is the panic value when owner and dependent are both
	// zero-sized.
	ErrZeroSizeLayout = joined.ErrZeroSizeLayout

	// ErrNotCovariant is wrapped by every *VarianceError.
	ErrNotCovariant = errors.New("selfcell: dependent type is not covariant")

	// ErrMemoryLimitExceeded is returned when the configured memory
	// controller refuses the joined allocation.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded

	// ErrRateLimited is returned when the configured controller's
	// construction rate limit refuses a new cell.
	ErrRateLimited = resource.ErrRateLimited

	// errTeardownPanic is reported to the metrics collector when a
	// destructor hook panicked.
	errTeardownPanic = errors.New("selfcell: destructor hook panicked")
)

// ConstructionError reports a dependent builder that returned an error.
//
// The builder's error can be accessed via errors.Unwrap.
type ConstructionError struct {
	OwnerType     string
	DependentType string
	cause         error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("selfcell: building %s from %s: %v", e.DependentType, e.OwnerType, e.cause)
}

func (e *ConstructionError) Unwrap() error { return e.cause }

// VarianceError reports a dependent type that embeds Covariant but contains
// a component that makes handing out copies unsound.
type VarianceError struct {
	Type   string
	Path   string
	Reason string
}

func (e *VarianceError) Error() string {
	return fmt.Sprintf("selfcell: %s is declared covariant but %s is %s", e.Type, e.Path, e.Reason)
}

func (e *VarianceError) Unwrap() error { return ErrNotCovariant }

func varianceError(typ string, r variance.Result) *VarianceError {
	return &VarianceError{Type: typ, Path: r.Path, Reason: r.Reason}
}
