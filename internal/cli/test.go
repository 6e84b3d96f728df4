package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/mirror/internal/config"
	"github.com/roach88/mirror/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // rewrite golden files
	Filter string // glob over scenario names
	Golden string // golden directory; default <scenarios-dir>/golden
}

// ScenarioResult holds the result of a single scenario.
type ScenarioResult struct {
	Name    string   `json:"name"`
	Backend string   `json:"backend"`
	Pass    bool     `json:"pass"`
	Golden  string   `json:"golden,omitempty"` // "match", "updated", "missing"
	Errors  []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run invocation scenarios against the fixture types",
		Long: `Run YAML invocation scenarios and compare their traces with golden files.

Resolving scenarios compose the backends as the executor section of the
configuration says (primary, fallback, off_context, introspection);
fallback and off_context set in a scenario take precedence.

A scenario without a golden file passes on its expectations and
assertions alone. --update writes the golden file of every scenario run.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (bad directory, invalid scenario, bad config)

Examples:
  mirror test ./scenarios
  mirror test ./scenarios --filter "greeter_*"
  mirror test ./scenarios --golden ./golden --update`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "run only scenarios whose name matches this glob")
	cmd.Flags().StringVar(&opts.Golden, "golden", "", "golden file directory (default <scenarios-dir>/golden)")

	return cmd
}

func runTests(opts *TestOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if _, err := filepath.Match(opts.Filter, ""); err != nil {
		return formatter.Fail(ExitCommandError, "E_BAD_FILTER", fmt.Sprintf("invalid filter %q: %v", opts.Filter, err))
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return formatter.Fail(ExitCommandError, "E_NOT_FOUND", fmt.Sprintf("scenarios directory not found: %s", dir))
	}

	scenarios, err := harness.LoadScenarios(dir)
	if err != nil {
		return formatter.Fail(ExitCommandError, "E_SCENARIO", err.Error())
	}

	goldenDir := opts.Golden
	if goldenDir == "" {
		goldenDir = filepath.Join(dir, "golden")
	}
	settings := harness.WithSettings(cfg.ExecutorSettings())
	formatter.VerboseLog("Executor settings: %+v", cfg.ExecutorSettings())

	result := TestResult{Scenarios: []ScenarioResult{}}
	for _, s := range scenarios {
		if opts.Filter != "" {
			if ok, _ := filepath.Match(opts.Filter, s.Name); !ok {
				continue
			}
		}
		sr := runScenario(s, goldenDir, opts.Update, settings)
		result.Scenarios = append(result.Scenarios, sr)
		result.Total++
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	text := func(w io.Writer) {
		for _, sr := range result.Scenarios {
			writeScenario(w, sr)
		}
		if result.Total == 0 {
			fmt.Fprintln(w, "No scenarios matched.")
			return
		}
		fmt.Fprintf(w, "\nTest Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	}

	if result.Failed > 0 {
		msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
		if err := formatter.Failure(result, "E_TEST_FAILED", msg, text); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return formatter.Success(result, func(w io.Writer) {
		text(w)
		if result.Total > 0 {
			fmt.Fprintln(w, "✓ All scenarios passed")
		}
	})
}

// runScenario runs one scenario and checks or rewrites its golden file.
func runScenario(s *harness.Scenario, goldenDir string, update bool, opts ...harness.Option) ScenarioResult {
	sr := ScenarioResult{Name: s.Name, Backend: s.Backend}
	fail := func(format string, args ...any) ScenarioResult {
		sr.Pass = false
		sr.Errors = append(sr.Errors, fmt.Sprintf(format, args...))
		return sr
	}

	result, err := harness.Run(s, opts...)
	if err != nil {
		return fail("execution failed: %v", err)
	}
	sr.Pass = result.Pass
	sr.Errors = result.Errors

	data, err := harness.Snapshot(s, result).Render()
	if err != nil {
		return fail("failed to render trace: %v", err)
	}
	path := filepath.Join(goldenDir, harness.GoldenName(s))

	if update {
		if err := os.MkdirAll(goldenDir, 0o755); err != nil {
			return fail("failed to create golden directory: %v", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fail("failed to write golden file: %v", err)
		}
		sr.Golden = "updated"
		return sr
	}

	want, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		sr.Golden = "missing"
	case err != nil:
		return fail("failed to read golden file: %v", err)
	case !bytes.Equal(want, data):
		return fail("trace does not match %s (run with --update to regenerate)", path)
	default:
		sr.Golden = "match"
	}
	return sr
}

func writeScenario(w io.Writer, sr ScenarioResult) {
	mark := "✓"
	if !sr.Pass {
		mark = "✗"
	}
	suffix := ""
	switch sr.Golden {
	case "updated":
		suffix = " (golden updated)"
	case "missing":
		suffix = " (no golden file)"
	}
	fmt.Fprintf(w, "%s %s [%s]%s\n", mark, sr.Name, sr.Backend, suffix)
	for _, e := range sr.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}
