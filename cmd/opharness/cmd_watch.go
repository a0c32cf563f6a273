package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"opharness/internal/config"
	"opharness/internal/console"
	"opharness/internal/subject"
	"opharness/internal/suite"
	"opharness/internal/vector"
	"opharness/internal/watch"
)

// watchCmd reruns the cases after every rebuild of the subject binary
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run cases whenever the subject binary is rebuilt",
	Long: `Runs the selected cases once, then watches the subject binary and
re-runs the cases after each rebuild. Rapid build events are debounced
into a single pass. Stop with Ctrl-C.

Examples:
  opharness watch                   # Watch and re-test everything
  opharness watch -o a9 --continue  # Iterate on one opcode`,
	RunE: runWatch,
}

func init() {
	defaults := config.DefaultConfig()
	watchCmd.Flags().StringVarP(&opcodeFlag, "opcode", "o", "", "Test only this opcode (hex, e.g. a9)")
	watchCmd.Flags().StringVar(&suiteName, "suite", "", "Test a named suite from the suites file")
	watchCmd.Flags().StringVar(&suitesPath, "suites", suite.DefaultPath, "Path to the suites file")
	watchCmd.Flags().StringVarP(&binaryPath, "binary", "b", defaults.Subject.Binary, "Path to the harte test binary")
	watchCmd.Flags().StringVarP(&dataDir, "data-dir", "d", defaults.Vectors.Dir, "Path to the test data directory")
	watchCmd.Flags().DurationVar(&timeoutFlag, "timeout", 30*time.Second, "Timeout per case")
	watchCmd.Flags().BoolVar(&parallelFlag, "parallel", false, "Run cases in parallel")
	watchCmd.Flags().IntVar(&maxWorkers, "max-workers", 4, "Maximum parallel workers")
	watchCmd.Flags().BoolVarP(&continueFlag, "continue", "c", false, "Continue testing after failures")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	s := resolveSettings(cmd)
	rep := console.New(cmd.OutOrStdout(), s.noColor, verbose)

	ids, err := selectScope()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(s.binary, 0, logger)
	if err != nil {
		return err
	}
	defer w.Stop()
	if err := w.Start(ctx); err != nil {
		return err
	}

	rep.Infof("%s", scopeLine(ids))
	for {
		watchPass(ctx, s, rep, ids)
		if ctx.Err() != nil {
			return nil
		}

		rep.Infof("Watching %s for rebuilds (Ctrl-C to stop)", s.binary)
		select {
		case <-ctx.Done():
			return nil
		case <-w.C():
			rep.Infof("Binary rebuilt, re-running")
		}
	}
}

// watchPass runs one iteration of the watch loop. Failures never end the
// loop; the next rebuild gets a fresh pass.
func watchPass(ctx context.Context, s settings, rep console.Reporter, ids []string) {
	inv := &subject.Invoker{
		BinaryPath: s.binary,
		Store:      vector.Store{Dir: s.dataDir},
		Timeout:    s.timeout,
		Logger:     logger,
	}
	if err := inv.Preflight(); err != nil {
		if !reportPrerequisite(rep, err) {
			rep.Errorf("%v", err)
		}
		return
	}
	_, _ = runAndReport(ctx, inv, s, rep, ids)
}
