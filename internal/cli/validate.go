package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/clartest/internal/harness"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run the scenarios listed in the manifest",
		Long: `Run every scenario file the manifest lists under its contracts.

Scenario paths are relative to the manifest's directory. Contracts without
scenarios are counted as skipped.

Examples:
  clartest validate --manifest ./Clarinet.cue
  clartest validate --manifest ./Clarinet.cue --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, filter, cmd)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "only run scenarios whose name contains this text")

	return cmd
}

func runValidate(opts *RootOptions, filter string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	m, err := loadManifest(opts)
	if err != nil {
		return formatter.Fail(ErrCodeManifest, err)
	}

	h := harness.New(m, harness.WithLogger(newLogger(opts)))
	result, err := h.ValidateContractsFiltered(cmd.Context(), filter)
	if err != nil {
		return formatter.Fail(ErrCodeGeneric, WrapExitError(ExitCommandError, "validation interrupted", err))
	}

	if formatter.IsJSON() {
		if err := formatter.Report(result, result.Failed, "scenario"); err != nil {
			return err
		}
	} else {
		outputValidateText(formatter, result)
	}

	if !result.OK() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

func outputValidateText(f *OutputFormatter, result *harness.ValidationResult) {
	w := f.Writer
	for _, s := range result.Scenarios {
		name := s.Name
		if name == "" {
			name = s.ScenarioPath
		}
		printResult(w, ScenarioResult{Name: s.Contract + ": " + name, Pass: s.Pass, Errors: s.Errors})
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Validation Summary: %d contract(s), %d scenario(s): %d passed, %d failed, %d skipped\n",
		result.TotalContracts, result.TotalScenarios, result.Passed, result.Failed, result.Skipped)
	if result.OK() {
		fmt.Fprintln(w, "✓ All scenarios passed")
	}
}
