package selfcell

import "github.com/hupe1980/selfcell/internal/joined"

// Dropper is implemented by owners and dependents that must release
// resources when their cell is torn down.
//
// Teardown calls Drop on the dependent strictly before the owner. Values that
// implement io.Closer instead have Close called at the same point, and its
// error is reported by Destroy. Values implementing neither are left to the
// garbage collector.
type Dropper = joined.Dropper

// release tears down whatever is still placed in b and frees it.
//
// It is the drop guard of every construction and teardown path: a panicking
// dependent hook still drops the owner, and a panicking owner hook still
// frees the block.
func release[O, D any](b *joined.Block[O, D]) {
	defer func() {
		defer func() {
			if b.State() == joined.Vacant {
				b.Free()
			}
		}()
		if b.State() == joined.OwnerPlaced {
			_ = b.DropOwner()
		}
	}()
	if b.State() == joined.Live {
		_ = b.DropDependent()
	}
}
