package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"opharness/internal/config"
	"opharness/internal/console"
	"opharness/internal/suite"
	"opharness/internal/vector"
)

// fetchCmd downloads vector files without running anything
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download missing test vectors",
	Long: `Downloads vector files for the selected opcodes into the data
directory. Vectors already present are never re-fetched, and a failed
download for one opcode does not stop the rest.

Examples:
  opharness fetch                   # Fetch vectors for every opcode
  opharness fetch -o a9             # Fetch one vector
  opharness fetch --suite branch    # Fetch a suite's vectors`,
	RunE: runFetch,
}

func init() {
	defaults := config.DefaultConfig()
	fetchCmd.Flags().StringVarP(&opcodeFlag, "opcode", "o", "", "Fetch only this opcode (hex, e.g. a9)")
	fetchCmd.Flags().StringVar(&suiteName, "suite", "", "Fetch a named suite from the suites file")
	fetchCmd.Flags().StringVar(&suitesPath, "suites", suite.DefaultPath, "Path to the suites file")
	fetchCmd.Flags().StringVarP(&dataDir, "data-dir", "d", defaults.Vectors.Dir, "Path to the test data directory")
	fetchCmd.Flags().StringVar(&baseURL, "base-url", defaults.Vectors.BaseURL, "Remote vector base URL")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	s := resolveSettings(cmd)
	rep := console.New(cmd.OutOrStdout(), s.noColor, verbose)

	ids, err := selectScope()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := vector.Store{Dir: s.dataDir}
	fetcher := &vector.Fetcher{BaseURL: s.baseURL, Store: store, Logger: logger}

	rep.Infof("Downloading test data to %s", store.Dir)
	fsum, err := fetcher.Ensure(ctx, ids, rep.FetchEvent)
	if err != nil {
		return newExitError(exitFailure, "download interrupted")
	}
	rep.Infof("Downloaded %d test files, %d already present", fsum.Downloaded, fsum.AlreadyPresent)
	rep.FetchSummary(fsum)

	if !fsum.OK() {
		return newExitError(exitFailure, "")
	}
	return nil
}
