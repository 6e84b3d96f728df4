// Package decl provides the declaration metadata model for mirror.
//
// Declarations describe declared types (classes, mixins, enums, records,
// functions, closures) and their members (fields, methods, constructors).
// They are built lazily from raw scan input (RawLibrary) and never mutated
// after construction.
//
// Identity:
//   - Library URI: the owning library, kept as a lookup key, never a pointer
//   - Qualified name: "<libraryURI>.<Name>", unique within the graph
//   - Reference: "<libraryURI>#<Name>", the cache key used by the resolver
//
// Equality is structural. Every declaration exposes an ordered list of
// semantically relevant properties (EqualityProps); Equal compares those lists
// pairwise so that a declaration evicted from the cache and rebuilt from the
// same input compares equal to the instance a consumer still holds.
//
// LinkDeclaration is the lightweight, lazily-resolvable reference used for
// supertypes, field types and type arguments. It resolves through a Resolver
// handle and yields nil, not an error, when the target cannot be materialized.
//
// This package imports nothing internal.
package decl
