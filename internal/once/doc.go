// Package once provides the one-shot initialization slot used by lazily
// built dependents.
//
// # States
//
//	Empty ──first GetOrInit──▶ Initializing ──builder returns──▶ Initialized
//	  ▲                             │                                 │
//	  └────────builder panics───────┘                                 │
//	  └────────────────────────────Take───────────────────────────────┘
//
// Exactly one builder result is ever published. Concurrent first callers
// block on the slot's mutex while the winner builds; once the winner
// publishes, every caller observes the same value. Publication goes through
// an atomic pointer, so the winner's write happens-before every later read.
//
// # Type Identity
//
// The published value is stored with its reflect.Type. Reading it back with
// any other type panics with *TypeMismatchError rather than reinterpreting
// memory.
//
// A builder must not call back into the slot it is initializing; like
// sync.Once this deadlocks.
package once
