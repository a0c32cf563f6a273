package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"opharness/internal/config"
	"opharness/internal/console"
	"opharness/internal/report"
	"opharness/internal/runner"
	"opharness/internal/subject"
	"opharness/internal/suite"
	"opharness/internal/vector"
)

var downloadFlag bool

// runCmd executes the selected cases against the subject binary
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run conformance cases against the subject binary",
	Long: `Runs each selected opcode's vector file through the subject binary.

A case passes when the subject exits 0. Cases with no local vector file
are skipped; use --download (or the fetch command) to populate the data
directory first.

Examples:
  opharness run                     # Test all implemented opcodes
  opharness run -o a9               # Test only LDA immediate (opcode A9)
  opharness run --suite branch      # Test a named suite
  opharness run --continue          # Continue testing after failures
  opharness run --parallel          # Run cases over a worker pool
  opharness run --timeout 60s       # Allow 60 seconds per case`,
	RunE: runRun,
}

func init() {
	defaults := config.DefaultConfig()
	runCmd.Flags().StringVarP(&opcodeFlag, "opcode", "o", "", "Test only this opcode (hex, e.g. a9)")
	runCmd.Flags().StringVar(&suiteName, "suite", "", "Test a named suite from the suites file")
	runCmd.Flags().StringVar(&suitesPath, "suites", suite.DefaultPath, "Path to the suites file")
	runCmd.Flags().StringVarP(&binaryPath, "binary", "b", defaults.Subject.Binary, "Path to the harte test binary")
	runCmd.Flags().StringVarP(&dataDir, "data-dir", "d", defaults.Vectors.Dir, "Path to the test data directory")
	runCmd.Flags().DurationVar(&timeoutFlag, "timeout", 30*time.Second, "Timeout per case")
	runCmd.Flags().BoolVar(&parallelFlag, "parallel", false, "Run cases in parallel")
	runCmd.Flags().IntVar(&maxWorkers, "max-workers", 4, "Maximum parallel workers")
	runCmd.Flags().BoolVarP(&continueFlag, "continue", "c", false, "Continue testing after failures")
	runCmd.Flags().StringVar(&baseURL, "base-url", defaults.Vectors.BaseURL, "Remote vector base URL")
	runCmd.Flags().BoolVar(&downloadFlag, "download", false, "Download missing vectors before running")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	s := resolveSettings(cmd)
	rep := console.New(cmd.OutOrStdout(), s.noColor, verbose)

	ids, err := selectScope()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := vector.Store{Dir: s.dataDir}

	if downloadFlag {
		fetcher := &vector.Fetcher{BaseURL: s.baseURL, Store: store, Logger: logger}
		rep.Infof("Downloading test data to %s", store.Dir)
		fsum, err := fetcher.Ensure(ctx, ids, rep.FetchEvent)
		if err != nil {
			return newExitError(exitFailure, "download interrupted")
		}
		rep.FetchSummary(fsum)
	}

	inv := &subject.Invoker{
		BinaryPath: s.binary,
		Store:      store,
		Timeout:    s.timeout,
		Logger:     logger,
	}
	if err := inv.Preflight(); err != nil {
		if reportPrerequisite(rep, err) {
			return newExitError(exitFailure, "")
		}
		return err
	}
	rep.Infof("Using binary: %s", s.binary)
	rep.Infof("Using test data: %s", store.Dir)
	rep.Infof("%s", scopeLine(ids))

	sum, runErr := runAndReport(ctx, inv, s, rep, ids)
	if runErr != nil {
		return newExitError(exitFailure, "run interrupted")
	}
	if !sum.Success() {
		return newExitError(exitFailure, "")
	}
	return nil
}

// runAndReport drives one pass over ids, printing per-case lines as they
// finish and the summary at the end. The error is non-nil only when the
// context ended the run early; the summary still covers what completed.
func runAndReport(ctx context.Context, inv *subject.Invoker, s settings, rep console.Reporter, ids []string) (report.Summary, error) {
	coord := &runner.Coordinator{Runner: inv, Logger: logger}
	results, err := coord.Run(ctx, ids, runner.Options{
		Parallel:          s.parallel,
		MaxWorkers:        s.workers,
		ContinueOnFailure: s.continueOn,
		OnResult:          rep.Result,
	})
	if err == nil && !s.parallel && !s.continueOn && len(results) < len(ids) {
		rep.Errorf("Stopping on first failure. Use --continue to test all opcodes.")
	}
	sum := report.Summarize(results)
	rep.Summary(sum)
	return sum, err
}

// reportPrerequisite prints a preflight failure with its hint and reports
// whether err actually was one.
func reportPrerequisite(rep console.Reporter, err error) bool {
	var prereq *subject.PrerequisiteError
	if !errors.As(err, &prereq) {
		return false
	}
	rep.Errorf("%s", prereq.Problem)
	if prereq.Hint != "" {
		rep.Infof("%s", prereq.Hint)
	}
	return true
}
