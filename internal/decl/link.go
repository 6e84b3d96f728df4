package decl

import (
	"context"
	"strings"
	"sync"
)

// LinkDeclaration is a lightweight, lazily-resolvable reference to a type
// declaration. Links are used for supertypes, member types and type
// arguments so that building one declaration never forces the whole graph.
//
// The resolver handle is weak: a link never owns the declaration it points
// to, and a failed resolution leaves the link unresolved instead of failing
// the caller.
type LinkDeclaration struct {
	name       string
	libraryURI string
	kind       TypeKind
	nullable   bool
	typeArgs   []*LinkDeclaration
	resolver   Resolver

	mu     sync.Mutex
	target Declaration
}

// LinkOptions configures NewLink.
type LinkOptions struct {
	Kind          TypeKind
	Nullable      bool
	TypeArguments []*LinkDeclaration
	Resolver      Resolver
}

// NewLink creates a link to the declaration name in libraryURI.
// An empty libraryURI denotes a builtin type, which never resolves.
func NewLink(libraryURI, name string, opts LinkOptions) *LinkDeclaration {
	args := make([]*LinkDeclaration, len(opts.TypeArguments))
	copy(args, opts.TypeArguments)
	return &LinkDeclaration{
		name:       name,
		libraryURI: libraryURI,
		kind:       opts.Kind,
		nullable:   opts.Nullable,
		typeArgs:   args,
		resolver:   opts.Resolver,
	}
}

// Name returns the simple name of the target.
func (l *LinkDeclaration) Name() string { return l.name }

// LibraryURI returns the target's library URI.
func (l *LinkDeclaration) LibraryURI() string { return l.libraryURI }

// QualifiedName returns the target's qualified name.
func (l *LinkDeclaration) QualifiedName() string { return QualifiedName(l.libraryURI, l.name) }

// Reference returns the target's canonical reference.
func (l *LinkDeclaration) Reference() string { return Reference(l.libraryURI, l.name) }

// Kind returns the target kind as known at link time (may be unknown).
func (l *LinkDeclaration) Kind() TypeKind { return l.kind }

// IsNullable reports whether the linked type was declared nullable.
func (l *LinkDeclaration) IsNullable() bool { return l.nullable }

// IsBuiltin reports whether the link names a builtin type.
func (l *LinkDeclaration) IsBuiltin() bool { return l.libraryURI == "" }

// IsPublic reports whether the linked name is public by naming convention.
func (l *LinkDeclaration) IsPublic() bool { return !strings.HasPrefix(l.name, "_") }

// IsSynthetic always returns false; links are references, not declarations.
func (l *LinkDeclaration) IsSynthetic() bool { return false }

// Annotations returns nil; annotations live on the resolved target.
func (l *LinkDeclaration) Annotations() []*Annotation { return nil }

// TypeArguments returns a copy of the type argument links.
func (l *LinkDeclaration) TypeArguments() []*LinkDeclaration {
	out := make([]*LinkDeclaration, len(l.typeArgs))
	copy(out, l.typeArgs)
	return out
}

// Target resolves the link, caching the first successful result.
// Returns nil if the target cannot be resolved; a later call retries.
func (l *LinkDeclaration) Target(ctx context.Context) Declaration {
	if d, ok := l.Resolved(); ok {
		return d
	}
	if l.resolver == nil || l.IsBuiltin() {
		return nil
	}

	// Resolve without holding the lock: resolution may follow links back here.
	d, err := l.resolver.Resolve(ctx, l.Reference())
	if err != nil || isNil(d) {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.target == nil {
		l.target = d
	}
	return l.target
}

// Resolved returns the cached target without triggering resolution.
func (l *LinkDeclaration) Resolved() (Declaration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.target, l.target != nil
}

// String renders the link as a type expression, e.g. "pkg.Map<pkg.K, int>?".
func (l *LinkDeclaration) String() string {
	var b strings.Builder
	b.WriteString(l.QualifiedName())
	if len(l.typeArgs) > 0 {
		b.WriteByte('<')
		for i, a := range l.typeArgs {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteByte('>')
	}
	if l.nullable {
		b.WriteByte('?')
	}
	return b.String()
}

// EqualityProps compares links by what they name, never by resolution state.
func (l *LinkDeclaration) EqualityProps() []any {
	return []any{l.QualifiedName(), l.nullable, l.typeArgs}
}
