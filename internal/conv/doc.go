// Package conv provides safe integer type conversion utilities.
//
// These functions perform bounds checking to prevent overflow when turning
// memory layout sizes (uintptr) into the signed byte counts used for memory
// accounting.
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices, bounded counters), use direct type casts instead to avoid overhead.
package conv
