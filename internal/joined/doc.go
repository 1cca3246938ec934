// Package joined provides the joined allocation behind a self-referential cell.
//
// A Block holds an owner and a dependent in one heap object. The owner is
// placed first; its address is then handed to the dependent builder, and the
// Go runtime never moves heap objects, so the address stays valid for as long
// as the block is reachable.
//
// # Lifecycle
//
//	Vacant ──PlaceOwner──▶ OwnerPlaced ──PlaceDependent/MarkLive──▶ Live
//	  ▲                        │  ▲                                   │
//	  └──DropOwner/TakeOwner───┘  └──────────DropDependent────────────┘
//
//	Vacant ──Free──▶ Retired
//
// Every transition is asserted. An illegal transition (placing twice,
// dropping the owner while the dependent is live, freeing twice) panics.
//
// # Zero-Size Layouts
//
// The runtime backs every zero-sized allocation with one shared address, so a
// block whose owner and dependent are both zero-sized has no identity to anchor
// a self-reference. Alloc panics with ErrZeroSizeLayout for such layouts.
package joined
