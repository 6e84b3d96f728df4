// Package args provides the normalized invocation-argument container used by
// every executor backend.
//
// An ExecutableArgument is an immutable snapshot of one call's arguments:
//   - an ordered positional list (nil values permitted)
//   - a name -> value map
//   - a symbolic view of the same map (Symbol keys), always key-for-key equal
//
// Lookups never mutate the container. Out-of-range positional lookups return a
// *RangeError, which callers propagate unchanged.
package args
