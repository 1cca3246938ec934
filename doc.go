// Package selfcell binds an owner value and a dependent value built from the
// owner's address into one ordinary value.
//
// A dependent typically holds slices, substrings or pointers into its owner:
// the tokens of a parsed document, the fields of a decoded record, an index
// over a buffer. Keeping both in one Cell lets callers pass the pair around,
// store it, share it between goroutines and tear it down as a unit, without
// juggling two values whose lifetimes must be kept in sync by hand.
//
// # Quick Start
//
//	type Words struct {
//	    selfcell.Covariant
//	    List []string
//	}
//
//	cell := selfcell.New("a[i * x[y]] * sin(z)", func(src *string) Words {
//	    return Words{List: strings.Fields(*src)}
//	})
//	defer cell.Destroy()
//
//	fmt.Println(*cell.Owner())                       // the source
//	fmt.Println(selfcell.BorrowDependent(cell).List) // substrings of the source
//
// # Protocol
//
// Construction allocates one joined block, moves the owner into it and calls
// the builder with the owner's permanent address. Failed or panicking builders
// drop the owner (TryNew) or hand it back (TryNewOrRecover) and free the block.
//
// Teardown drops the dependent strictly before the owner. Values implementing
// Dropper or io.Closer have their hook called; a panicking dependent hook
// still drops the owner and frees the block before the panic propagates.
// IntoOwner drops the dependent and returns the owner instead of dropping it.
//
// Access is either scoped (With, WithMut, WithDependent, WithDependentMut,
// always available) or direct (BorrowDependent, only for dependent types that
// embed Covariant and pass the structural covariance check).
//
// # Lazy Dependents
//
// LazyCell defers building the dependent to the first GetOrInit. Concurrent
// first callers are resolved by a one-shot slot: exactly one builder result is
// published and every caller observes it.
//
//	lazy := selfcell.NewLazy[string, AST](src)
//	ast := lazy.GetOrInit(parse) // parsed once
//
// # Memory Budget
//
// WithMemoryController accounts every joined block against a
// resource.Controller. Fail-fast constructors return ErrMemoryLimitExceeded or
// ErrRateLimited when the controller refuses; TryNewContext waits instead.
//
// # Caller Obligations
//
// A builder must only let the dependent reference the owner, never other data
// with a shorter life, and the owner must not be modified through the
// pointers the cell hands out. Neither is checked at run time.
package selfcell
