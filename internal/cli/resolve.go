package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mirror/internal/decl"
	"github.com/roach88/mirror/internal/source"
)

// ResolveResult holds the declarations found for the requested names.
type ResolveResult struct {
	Declarations []DeclarationView `json:"declarations"`
	Missing      []string          `json:"missing,omitempty"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <reference>...",
		Short: "Resolve declarations by canonical reference",
		Long: `Resolve declarations by canonical reference ("<library-uri>#<Name>")
against the snapshot store and configured library directories.

Examples:
  mirror resolve 'example.com/shop#Cart'
  mirror resolve 'example.com/shop#Cart' 'example.com/shop#Item' --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context(), rootOpts, args, cmd, func(s *session, ctx context.Context, name string) (decl.Declaration, error) {
				return s.resolver.Resolve(ctx, name)
			})
		},
	}
	return cmd
}

// NewLookupCommand creates the lookup command.
func NewLookupCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <qualified-name>...",
		Short: "Look up declarations by qualified name",
		Long: `Look up declarations by qualified name ("<library-uri>.<Name>").

Examples:
  mirror lookup example.com/shop.Cart`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context(), rootOpts, args, cmd, func(s *session, ctx context.Context, name string) (decl.Declaration, error) {
				return s.resolver.Lookup(ctx, name)
			})
		},
	}
	return cmd
}

type resolveFunc func(s *session, ctx context.Context, name string) (decl.Declaration, error)

func runResolve(ctx context.Context, opts *RootOptions, names []string, cmd *cobra.Command, resolve resolveFunc) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts, cmd)

	s, err := openSession(opts, nil)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil {
			slog.Error("error closing session", "error", closeErr)
		}
	}()

	result := ResolveResult{Declarations: []DeclarationView{}}
	for _, name := range names {
		d, err := resolve(s, ctx, name)
		if err != nil {
			return formatter.Fail(ExitCommandError, source.ErrCodeGeneric, err.Error())
		}
		if d == nil {
			formatter.VerboseLog("Not found: %s", name)
			result.Missing = append(result.Missing, name)
			continue
		}
		result.Declarations = append(result.Declarations, viewOf(d))
	}

	text := func(w io.Writer) {
		for i, v := range result.Declarations {
			if i > 0 {
				fmt.Fprintln(w)
			}
			writeDeclaration(w, v)
		}
		for _, name := range result.Missing {
			fmt.Fprintf(w, "✗ not found: %s\n", name)
		}
	}
	if len(result.Missing) > 0 {
		message := "not found: " + strings.Join(result.Missing, ", ")
		if err := formatter.Failure(result, source.ErrCodeNotFound, message, text); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", source.ErrCodeNotFound, message))
	}
	return formatter.Success(result, text)
}
