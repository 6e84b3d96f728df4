package resolve

import (
	"sort"

	"github.com/roach88/mirror/internal/decl"
)

// ClassReference is a view over the cache that enumerates known subclasses
// of one type. Only declarations already cached are considered, so results
// grow as more of the graph is resolved.
type ClassReference struct {
	r             *Resolver
	qualifiedName string
}

// ClassReference returns a subclass view for the type with the given
// qualified name. The type itself need not be resolved.
func (r *Resolver) ClassReference(qualifiedName string) *ClassReference {
	return &ClassReference{r: r, qualifiedName: qualifiedName}
}

// QualifiedName returns the supertype this view searches for.
func (c *ClassReference) QualifiedName() string { return c.qualifiedName }

// Subclasses returns cached declarations that extend, implement or mix in
// the type, directly or transitively, sorted by qualified name. Transitive
// steps follow only supertypes that are themselves cached.
func (c *ClassReference) Subclasses() []*decl.ClassDeclaration {
	var out []*decl.ClassDeclaration
	for _, d := range c.r.cache.Values() {
		cls, ok := decl.AsClass(d)
		if !ok || cls.QualifiedName() == c.qualifiedName {
			continue
		}
		if c.extends(cls, map[string]bool{}) {
			out = append(out, cls)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QualifiedName() < out[j].QualifiedName() })
	return out
}

func (c *ClassReference) extends(cls *decl.ClassDeclaration, seen map[string]bool) bool {
	if seen[cls.QualifiedName()] {
		return false
	}
	seen[cls.QualifiedName()] = true
	for _, st := range cls.Supertypes() {
		if st.QualifiedName() == c.qualifiedName {
			return true
		}
		parent, ok := c.cached(st)
		if ok && c.extends(parent, seen) {
			return true
		}
	}
	return false
}

// cached returns the supertype's declaration from the link or the cache,
// never triggering resolution.
func (c *ClassReference) cached(l *decl.LinkDeclaration) (*decl.ClassDeclaration, bool) {
	if d, ok := l.Resolved(); ok {
		return decl.AsClass(d)
	}
	if d, ok := c.r.cache.Peek(l.Reference()); ok {
		return decl.AsClass(d)
	}
	return nil, false
}

// AnnotatedMethodReference is a view over the cache listing methods that
// carry a given annotation.
type AnnotatedMethodReference struct {
	r          *Resolver
	annotation string
}

// AnnotatedMethodReference returns a view for methods annotated with the
// annotation type of the given qualified name.
func (r *Resolver) AnnotatedMethodReference(annotationQualifiedName string) *AnnotatedMethodReference {
	return &AnnotatedMethodReference{r: r, annotation: annotationQualifiedName}
}

// Annotation returns the annotation type this view searches for.
func (a *AnnotatedMethodReference) Annotation() string { return a.annotation }

// Methods returns cached methods and constructors carrying the annotation,
// sorted by qualified name.
func (a *AnnotatedMethodReference) Methods() []*decl.MethodDeclaration {
	var out []*decl.MethodDeclaration
	for _, d := range a.r.cache.Values() {
		cls, ok := decl.AsClass(d)
		if !ok {
			continue
		}
		for _, m := range append(cls.Methods(), cls.Constructors()...) {
			if m.HasAnnotation(a.annotation) {
				out = append(out, m)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QualifiedName() < out[j].QualifiedName() })
	return out
}
