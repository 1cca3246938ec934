// Package variance classifies dependent types by whether a copy of a value
// may be handed out of its cell.
//
// A type is covariant when copying a value of it neither copies
// synchronization state nor opens a side channel through which the copy and
// the stored value can keep influencing each other. The classifier walks the
// type structurally (through pointers, slices, arrays and struct fields) and
// rejects:
//
//   - sync primitives (Mutex, RWMutex, Once, WaitGroup, Cond, Map, Pool)
//   - sync/atomic types
//   - channels, maps and funcs
//   - interfaces, whose dynamic contents cannot be inspected statically
//   - unsafe.Pointer
//
// Results are cached per type.
package variance
