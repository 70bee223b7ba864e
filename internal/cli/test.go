package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/clartest/internal/clarinet"
	"github.com/roach88/clartest/internal/harness"
	"github.com/roach88/clartest/internal/simnet"
)

// Kinds of test results.
const (
	KindTest     = "test"     // registered Go test
	KindScenario = "scenario" // YAML scenario
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update   bool   // regenerate golden files
	Filter   string // substring filter on test and scenario names
	Database string // optional chain log

	// Registry supplies the Go tests. Defaults to clarinet.DefaultRegistry.
	Registry *clarinet.Registry
}

// ScenarioResult holds the result of a single test or scenario.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Kind   string   `json:"kind"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

func (r *TestResult) add(s ScenarioResult) {
	r.Scenarios = append(r.Scenarios, s)
	r.Total++
	if s.Pass {
		r.Passed++
	} else {
		r.Failed++
	}
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test [scenarios-dir]",
		Short: "Run registered contract tests and YAML scenarios",
		Long: `Run every registered contract test, then every YAML scenario in
scenarios-dir, each on a fresh simulated chain.

A scenario with a golden file at <scenarios-dir>/golden/<file>.golden must
also reproduce that trace byte for byte.

Exit codes:
  0 - All tests passed
  1 - One or more tests failed
  2 - Command error (invalid manifest, missing paths, etc.)

Examples:
  clartest test
  clartest test ./scenarios
  clartest test ./scenarios --filter property
  clartest test ./scenarios --update
  clartest test --db ./chain.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runTests(cmd.Context(), opts, dir, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run tests whose name contains this text")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record every chain in this SQLite database")

	return cmd
}

func runTests(ctx context.Context, opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	var scenarioFiles []string
	if scenariosDir != "" {
		if _, err := os.Stat(scenariosDir); errors.Is(err, fs.ErrNotExist) {
			return formatter.Fail(ErrCodeNotFound,
				NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir)))
		}
		files, err := findScenarioFiles(scenariosDir)
		if err != nil {
			return formatter.Fail(ErrCodeNotFound, WrapExitError(ExitCommandError, "failed to find scenarios", err))
		}
		scenarioFiles = files
	}

	m, err := loadManifest(opts.RootOptions)
	if err != nil {
		return formatter.Fail(ErrCodeManifest, err)
	}

	logger := newLogger(opts.RootOptions)
	chainOpts := []simnet.Option{simnet.WithLogger(logger)}
	harnessOpts := []harness.Option{harness.WithLogger(logger)}
	if opts.Database != "" {
		st, err := openStore(opts.Database, false)
		if err != nil {
			return formatter.Fail(ErrCodeStore, err)
		}
		defer st.Close()
		chainOpts = append(chainOpts, simnet.WithStore(st))
		harnessOpts = append(harnessOpts, harness.WithStore(st))
		formatter.VerboseLog("Recording chains in %s", opts.Database)
	}

	registry := opts.Registry
	if registry == nil {
		registry = clarinet.DefaultRegistry
	}

	result := TestResult{Scenarios: []ScenarioResult{}}
	w := io.Discard
	if !formatter.IsJSON() {
		w = formatter.Writer
	}

	// Registered Go tests
	runner := clarinet.NewRunner(
		simnet.NewSessionFactory(m.AccountMap(), m.Deployments(), chainOpts...),
		clarinet.WithLogger(logger),
		clarinet.WithFilter(opts.Filter),
	)
	report, runErr := runner.Run(ctx, registry.Tests())
	for _, tr := range report.Results {
		sr := ScenarioResult{Name: tr.Name, Kind: KindTest, Pass: tr.Pass}
		if !tr.Pass {
			sr.Errors = []string{tr.Error}
		}
		printResult(w, sr)
		result.add(sr)
	}
	if runErr != nil {
		return formatter.Fail(ErrCodeGeneric, WrapExitError(ExitCommandError, "test run interrupted", runErr))
	}

	// YAML scenarios
	h := harness.New(m, harnessOpts...)
	for _, file := range scenarioFiles {
		sr, ok := runScenarioFile(ctx, h, file, opts)
		if !ok {
			continue
		}
		printResult(w, sr)
		result.add(sr)
	}

	if formatter.IsJSON() {
		if err := formatter.Report(result, result.Failed, "test"); err != nil {
			return err
		}
	} else {
		outputTestText(w, result)
	}

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d test(s) failed", result.Failed))
	}
	return nil
}

// findScenarioFiles finds all YAML scenario files under dir, skipping
// golden directories.
func findScenarioFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "golden" && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// runScenarioFile loads and runs one scenario file. It reports false if the
// scenario is filtered out.
func runScenarioFile(ctx context.Context, h *harness.Harness, file string, opts *TestOptions) (ScenarioResult, bool) {
	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return ScenarioResult{
			Name:   filepath.Base(file),
			Kind:   KindScenario,
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}, true
	}
	if opts.Filter != "" && !strings.Contains(scenario.Name, opts.Filter) {
		return ScenarioResult{}, false
	}

	sr := ScenarioResult{Name: scenario.Name, Kind: KindScenario}

	result, err := h.Run(ctx, scenario)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("execution failed: %v", err)}
		return sr, true
	}

	snapshot, err := harness.Snapshot(scenario.Name, result)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("failed to snapshot trace: %v", err)}
		return sr, true
	}

	goldenPath := goldenFilePath(file)
	if opts.Update {
		if err := writeGoldenFile(goldenPath, snapshot); err != nil {
			sr.Errors = []string{fmt.Sprintf("failed to update golden file: %v", err)}
			return sr, true
		}
	} else {
		match, err := compareWithGolden(goldenPath, snapshot)
		if err != nil {
			sr.Errors = []string{fmt.Sprintf("golden comparison failed: %v", err)}
			return sr, true
		}
		if !match {
			sr.Errors = append(sr.Errors, "trace does not match golden file (run with --update to regenerate)")
		}
	}

	sr.Errors = append(sr.Errors, result.Errors...)
	sr.Pass = len(sr.Errors) == 0
	return sr, true
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// writeGoldenFile writes the current trace as the golden file.
func writeGoldenFile(goldenPath string, snapshot []byte) error {
	if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(goldenPath, snapshot, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// compareWithGolden compares a snapshot with the golden file. A missing
// golden file matches anything.
func compareWithGolden(goldenPath string, snapshot []byte) (bool, error) {
	golden, err := os.ReadFile(goldenPath)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}
	return bytes.Equal(golden, snapshot), nil
}

func printResult(w io.Writer, sr ScenarioResult) {
	if sr.Pass {
		fmt.Fprintf(w, "✓ %s\n", sr.Name)
		return
	}
	fmt.Fprintf(w, "✗ %s\n", sr.Name)
	for _, e := range sr.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

// outputTestText prints the summary line.
func outputTestText(w io.Writer, result TestResult) {
	if result.Total == 0 {
		fmt.Fprintln(w, "No tests found.")
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.Failed == 0 {
		fmt.Fprintln(w, "✓ All tests passed")
	}
}
