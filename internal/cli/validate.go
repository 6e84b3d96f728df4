package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/mirror/internal/decl"
	"github.com/roach88/mirror/internal/source"
)

// Issue is one coded problem found while loading or validating libraries.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool     `json:"valid"`
	Libraries []string `json:"libraries,omitempty"`
	Errors    []Issue  `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <dir>",
		Short: "Validate library files without storing them",
		Long: `Validate YAML and CUE library files.

Checks that every file decodes, that each library has a unique uri,
that declaration names are unique, that every declaration builds and
that local type references name a declared type.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	libs, issues, err := loadAndValidate(dir, formatter)
	if err != nil {
		return err
	}

	result := ValidationResult{Valid: len(issues) == 0, Errors: issues}
	for _, lib := range libs {
		result.Libraries = append(result.Libraries, lib.URI)
	}
	if !result.Valid {
		return outputIssues(formatter, result, issues)
	}
	return formatter.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %d librar%s valid\n", len(libs), plural(len(libs), "y", "ies"))
	})
}

// loadAndValidate loads dir and validates each library. Failures that leave
// nothing to validate (missing directory, no files) are written and
// returned as command errors; every other problem is returned as an issue.
func loadAndValidate(dir string, formatter *OutputFormatter) ([]decl.RawLibrary, []Issue, error) {
	libs, loadErrs := source.Load(dir)
	if len(libs) == 0 && len(loadErrs) > 0 {
		issue := issueOf(loadErrs[0])
		if issue.Code == source.ErrCodeNotFound || issue.Code == source.ErrCodeNoFiles || issue.Code == source.ErrCodeScanError {
			return nil, nil, formatter.Fail(ExitCommandError, issue.Code, issue.Message)
		}
	}
	formatter.VerboseLog("Loaded %d librar%s from %s", len(libs), plural(len(libs), "y", "ies"), dir)

	var issues []Issue
	for _, err := range loadErrs {
		issues = append(issues, issueOf(err))
	}
	for _, lib := range libs {
		formatter.VerboseLog("Validating library: %s", lib.URI)
		for _, err := range source.Validate(lib) {
			issues = append(issues, issueOf(err))
		}
	}
	return libs, issues, nil
}

func issueOf(err error) Issue {
	var le *source.LoadError
	if !errors.As(err, &le) {
		return Issue{Code: source.ErrCodeGeneric, Message: err.Error()}
	}
	issue := Issue{Code: le.Code, Message: le.Message, File: le.File}
	if le.Pos.IsValid() {
		issue.File = le.Pos.Filename()
		issue.Line = le.Pos.Line()
	}
	return issue
}

// outputIssues reports validation problems; they are failures (exit 1).
func outputIssues(formatter *OutputFormatter, data any, issues []Issue) error {
	err := formatter.Failure(data, issues[0].Code, issues[0].Message, func(w io.Writer) {
		fmt.Fprintln(w, "✗ Validation failed")
		fmt.Fprintln(w)
		for _, issue := range issues {
			switch {
			case issue.Line > 0:
				fmt.Fprintf(w, "%s:%d\n", issue.File, issue.Line)
			case issue.File != "":
				fmt.Fprintln(w, issue.File)
			}
			fmt.Fprintf(w, "  %s: %s\n\n", issue.Code, issue.Message)
		}
	})
	if err != nil {
		return err
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
