package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/mirror/internal/resolve"
	"github.com/roach88/mirror/internal/source"
)

// SubclassesResult lists the known subclasses of a type.
type SubclassesResult struct {
	Type       string   `json:"type"`
	Resolved   int      `json:"resolved"`
	Subclasses []string `json:"subclasses"`
}

// AnnotatedResult lists the known members carrying an annotation.
type AnnotatedResult struct {
	Annotation string       `json:"annotation"`
	Resolved   int          `json:"resolved"`
	Members    []MemberView `json:"members"`
}

// NewSubclassesCommand creates the subclasses command.
func NewSubclassesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subclasses <qualified-name> [reference...]",
		Short: "List subclasses of a type",
		Long: `List declarations that extend, implement or mix in a type, directly
or transitively.

Only resolved declarations are searched. The listed references are
resolved first; with none listed, every declaration in the store and
the configured library directories is resolved.

Examples:
  mirror subclasses example.com/shop.Entity
  mirror subclasses example.com/shop.Entity 'example.com/shop#Cart'`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubclasses(cmd.Context(), rootOpts, args[0], args[1:], cmd)
		},
	}
	return cmd
}

// NewAnnotatedCommand creates the annotated command.
func NewAnnotatedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotated <annotation-qualified-name> [reference...]",
		Short: "List methods carrying an annotation",
		Long: `List methods and constructors annotated with the given annotation type.

Only resolved declarations are searched. The listed references are
resolved first; with none listed, every declaration in the store and
the configured library directories is resolved.

Examples:
  mirror annotated example.com/shop.Reflectable`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotated(cmd.Context(), rootOpts, args[0], args[1:], cmd)
		},
	}
	return cmd
}

// openWarmSession opens a session that retains resolved declarations and
// resolves refs, or every known declaration when refs is empty.
func openWarmSession(ctx context.Context, opts *RootOptions, refs []string, formatter *OutputFormatter) (*session, int, error) {
	retain := resolve.Retain
	s, err := openSession(opts, &retain)
	if err != nil {
		return nil, 0, err
	}
	if len(refs) == 0 {
		refs, err = s.references(ctx)
		if err != nil {
			s.Close()
			return nil, 0, WrapExitError(ExitCommandError, "failed to list libraries", err)
		}
	}

	resolved := 0
	for _, ref := range refs {
		d, err := s.resolver.Resolve(ctx, ref)
		if err != nil {
			s.Close()
			return nil, 0, formatter.Fail(ExitCommandError, source.ErrCodeGeneric, err.Error())
		}
		if d == nil {
			formatter.VerboseLog("Not found: %s", ref)
			continue
		}
		resolved++
	}
	formatter.VerboseLog("Resolved %d of %d reference(s)", resolved, len(refs))
	return s, resolved, nil
}

func closeSession(s *session) {
	if err := s.Close(); err != nil {
		slog.Error("error closing session", "error", err)
	}
}

func runSubclasses(ctx context.Context, opts *RootOptions, typeName string, refs []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts, cmd)

	s, resolved, err := openWarmSession(ctx, opts, refs, formatter)
	if err != nil {
		return err
	}
	defer closeSession(s)

	result := SubclassesResult{Type: typeName, Resolved: resolved, Subclasses: []string{}}
	for _, cls := range s.resolver.ClassReference(typeName).Subclasses() {
		result.Subclasses = append(result.Subclasses, cls.QualifiedName())
	}

	return formatter.Success(result, func(w io.Writer) {
		if len(result.Subclasses) == 0 {
			fmt.Fprintf(w, "No known subclasses of %s\n", typeName)
			return
		}
		fmt.Fprintf(w, "Subclasses of %s:\n", typeName)
		for _, name := range result.Subclasses {
			fmt.Fprintf(w, "  %s\n", name)
		}
	})
}

func runAnnotated(ctx context.Context, opts *RootOptions, annotation string, refs []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts, cmd)

	s, resolved, err := openWarmSession(ctx, opts, refs, formatter)
	if err != nil {
		return err
	}
	defer closeSession(s)

	result := AnnotatedResult{Annotation: annotation, Resolved: resolved, Members: []MemberView{}}
	for _, m := range s.resolver.AnnotatedMethodReference(annotation).Methods() {
		result.Members = append(result.Members, memberView(m))
	}

	return formatter.Success(result, func(w io.Writer) {
		if len(result.Members) == 0 {
			fmt.Fprintf(w, "No known members annotated with @%s\n", annotation)
			return
		}
		fmt.Fprintf(w, "Members annotated with @%s:\n", annotation)
		for _, m := range result.Members {
			fmt.Fprintf(w, "  %s\n", m.QualifiedName)
		}
	})
}
