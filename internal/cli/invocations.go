package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/mirror/internal/executor"
	"github.com/roach88/mirror/internal/source"
	"github.com/roach88/mirror/internal/store"
)

// InvocationsOptions holds flags for the invocations command.
type InvocationsOptions struct {
	*RootOptions
	store.InvocationFilter
}

// InvocationsResult holds the matching invocation records.
type InvocationsResult struct {
	Invocations []store.InvocationRecord `json:"invocations"`
	Failed      int                      `json:"failed"`
}

var (
	validOperations = []string{"construct", "invoke", "get", "set"}
	validOutcomes   = []string{store.OutcomeOK, store.OutcomeError}
	validBackends   = []string{
		string(executor.BackendPrecomputed),
		string(executor.BackendLive),
		string(executor.BackendResolving),
	}
)

// NewInvocationsCommand creates the invocations command.
func NewInvocationsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvocationsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invocations",
		Short: "List recorded invocations",
		Long: `List invocations recorded by the executor, ordered by sequence number.

Examples:
  mirror invocations
  mirror invocations --type example.com/shop.Cart --outcome error
  mirror invocations --after 120 --limit 20 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvocations(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "", "filter by qualified type name")
	cmd.Flags().StringVar(&opts.Member, "member", "", "filter by member name")
	cmd.Flags().StringVar(&opts.Backend, "backend", "", "filter by backend (precomputed|live|resolving)")
	cmd.Flags().StringVar(&opts.Operation, "op", "", "filter by operation (construct|invoke|get|set)")
	cmd.Flags().StringVar(&opts.Outcome, "outcome", "", "filter by outcome (ok|error)")
	cmd.Flags().Int64Var(&opts.AfterSeq, "after", 0, "only records with a greater sequence number")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of records (0 = all)")

	return cmd
}

func runInvocations(ctx context.Context, opts *InvocationsOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	for _, check := range []struct {
		flag, value string
		valid       []string
	}{
		{"backend", opts.Backend, validBackends},
		{"op", opts.Operation, validOperations},
		{"outcome", opts.Outcome, validOutcomes},
	} {
		if check.value != "" && !slices.Contains(check.valid, check.value) {
			return formatter.Fail(ExitCommandError, source.ErrCodeGeneric,
				fmt.Sprintf("invalid --%s %q: must be one of %v", check.flag, check.value, check.valid))
		}
	}
	if opts.Limit < 0 {
		return formatter.Fail(ExitCommandError, source.ErrCodeGeneric, "--limit must not be negative")
	}

	_, st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing store", "error", closeErr)
		}
	}()

	records, err := st.Invocations(ctx, opts.InvocationFilter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to query invocations", err)
	}

	result := InvocationsResult{Invocations: records}
	for _, rec := range records {
		if rec.Outcome == store.OutcomeError {
			result.Failed++
		}
	}

	return formatter.Success(result, func(w io.Writer) {
		if len(records) == 0 {
			fmt.Fprintln(w, "No recorded invocations")
			return
		}
		for _, rec := range records {
			target := rec.Type
			if rec.Member != "" {
				target += "." + rec.Member
			}
			fmt.Fprintf(w, "%6d  %-11s %-9s %s %s", rec.Seq, rec.Backend, rec.Operation, target, rec.Args)
			if rec.Outcome == store.OutcomeError {
				fmt.Fprintf(w, "  ✗ %s %s\n", rec.ErrorCode, rec.ErrorMessage)
			} else {
				fmt.Fprintf(w, "  → %s\n", rec.Result)
			}
		}
		fmt.Fprintf(w, "\n%d invocation(s), %d failed\n", len(records), result.Failed)
	})
}
