package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// IngestedLibrary reports the outcome for one library.
type IngestedLibrary struct {
	URI          string `json:"uri"`
	Declarations int    `json:"declarations"`
	Changed      bool   `json:"changed"`
}

// IngestResult holds ingest results.
type IngestResult struct {
	Store     string            `json:"store"`
	Libraries []IngestedLibrary `json:"libraries"`
	Changed   int               `json:"changed"`
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <dir>",
		Short: "Validate library files and store them as snapshots",
		Long: `Validate YAML and CUE library files and store each library in the
snapshot store named by store.path.

Nothing is stored if any library fails validation. Libraries whose
content is unchanged since the last ingest are left untouched.

Examples:
  mirror ingest ./libraries
  mirror ingest ./libraries --config ./mirror.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context(), rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runIngest(ctx context.Context, opts *RootOptions, dir string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts, cmd)

	libs, issues, err := loadAndValidate(dir, formatter)
	if err != nil {
		return err
	}
	if len(issues) > 0 {
		return outputIssues(formatter, ValidationResult{Valid: false, Errors: issues}, issues)
	}

	cfg, st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing store", "error", closeErr)
		}
	}()

	result := IngestResult{Store: cfg.Store.Path, Libraries: []IngestedLibrary{}}
	for _, lib := range libs {
		changed, err := st.PutLibrary(ctx, lib)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to store library", err)
		}
		slog.Debug("library stored", "library", lib.URI, "changed", changed)
		result.Libraries = append(result.Libraries, IngestedLibrary{
			URI:          lib.URI,
			Declarations: len(lib.Declarations),
			Changed:      changed,
		})
		if changed {
			result.Changed++
		}
	}

	return formatter.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Ingested %d librar%s into %s (%d changed)\n",
			len(result.Libraries), plural(len(result.Libraries), "y", "ies"), result.Store, result.Changed)
		for _, lib := range result.Libraries {
			mark := " "
			if lib.Changed {
				mark = "*"
			}
			fmt.Fprintf(w, "  %s %s (%d declarations)\n", mark, lib.URI, lib.Declarations)
		}
	})
}
