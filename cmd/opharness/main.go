// Command opharness drives the harte conformance binary over Tom Harte's
// single-step 6502 ProcessorTests: one JSON vector file per opcode, one
// subject invocation per case, pass iff the subject exits 0.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"opharness/internal/config"
	"opharness/internal/registry"
	"opharness/internal/suite"
)

var (
	// Global flags
	verbose bool
	noColor bool
	cfgFile string

	// Scope flags shared by run, fetch, watch, and list
	opcodeFlag string
	suiteName  string
	suitesPath string

	// Run flags shared by run and watch
	binaryPath   string
	dataDir      string
	timeoutFlag  time.Duration
	baseURL      string
	parallelFlag bool
	maxWorkers   int
	continueFlag bool

	// Logger
	logger *zap.Logger

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "opharness",
	Short: "opharness - 6502 opcode conformance harness",
	Long: `opharness drives the harte test binary against Tom Harte's
single-step 6502 ProcessorTests: one JSON vector file per opcode, one
subject invocation per case.

The subject passes a case by exiting 0. Cases with no local vector file
are skipped, hung subjects are killed at the per-case timeout, and the
process exits 0 only when no case failed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath())
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file (default: opharness.yaml)")
}

func main() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintln(os.Stderr, msg)
	}
	os.Exit(exitCode(err))
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return "opharness.yaml"
}

// settings are the effective knobs for one invocation: flags beat
// environment beat the config file beat built-in defaults. The config
// layer already folded environment and file over the defaults, so only
// explicitly set flags override here.
type settings struct {
	binary     string
	dataDir    string
	baseURL    string
	timeout    time.Duration
	parallel   bool
	workers    int
	continueOn bool
	noColor    bool
}

func resolveSettings(cmd *cobra.Command) settings {
	s := settings{
		binary:     cfg.Subject.Binary,
		dataDir:    cfg.Vectors.Dir,
		baseURL:    cfg.Vectors.BaseURL,
		timeout:    cfg.GetTimeout(),
		parallel:   cfg.Run.Parallel,
		workers:    cfg.Run.MaxWorkers,
		continueOn: cfg.Run.ContinueOnFailure,
		noColor:    cfg.UI.NoColor || noColor,
	}

	f := cmd.Flags()
	if f.Changed("binary") {
		s.binary = binaryPath
	}
	if f.Changed("data-dir") {
		s.dataDir = dataDir
	}
	if f.Changed("base-url") {
		s.baseURL = baseURL
	}
	if f.Changed("timeout") {
		s.timeout = timeoutFlag
	}
	if f.Changed("parallel") {
		s.parallel = parallelFlag
	}
	if f.Changed("max-workers") {
		s.workers = maxWorkers
	}
	if f.Changed("continue") {
		s.continueOn = continueFlag
	}
	return s
}

// selectScope resolves which opcodes a command targets: a single -o
// opcode, a named suite, or the full registry. Opcodes outside the
// registry are allowed; a missing vector just skips the case.
func selectScope() ([]string, error) {
	if opcodeFlag != "" {
		op, err := registry.Normalize(opcodeFlag)
		if err != nil {
			return nil, err
		}
		return []string{op}, nil
	}
	if suiteName != "" {
		f, err := suite.Load(suitesPath)
		if err != nil {
			return nil, err
		}
		st, ok := f.Get(suiteName)
		if !ok {
			return nil, fmt.Errorf("suite %q not found in %s (available: %s)",
				suiteName, suitesPath, strings.Join(f.Names(), ", "))
		}
		return st.Opcodes, nil
	}
	return registry.All(), nil
}

func scopeLine(ids []string) string {
	switch {
	case opcodeFlag != "":
		return fmt.Sprintf("Testing single opcode: %s", ids[0])
	case suiteName != "":
		return fmt.Sprintf("Testing suite %s (%d opcodes)...", suiteName, len(ids))
	default:
		return fmt.Sprintf("Testing %d implemented opcodes...", len(ids))
	}
}
