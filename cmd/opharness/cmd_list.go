package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"opharness/internal/registry"
	"opharness/internal/suite"
)

// listCmd prints the known opcodes or the available suites
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List implemented opcodes and suites",
	Long: `Lists the opcodes the harness tests by default, ten per row.

With --suite, lists that suite's opcodes instead. With only --suites,
lists the suite names defined in the file.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&suiteName, "suite", "", "List one suite's opcodes")
	listCmd.Flags().StringVar(&suitesPath, "suites", suite.DefaultPath, "Path to the suites file")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()

	if suiteName != "" {
		f, err := suite.Load(suitesPath)
		if err != nil {
			return err
		}
		st, ok := f.Get(suiteName)
		if !ok {
			return fmt.Errorf("suite %q not found in %s", suiteName, suitesPath)
		}
		fmt.Fprintf(w, "Suite %s (%d opcodes):\n\n", st.Name, len(st.Opcodes))
		printOpcodeGrid(w, st.Opcodes)
		return nil
	}

	if cmd.Flags().Changed("suites") {
		f, err := suite.Load(suitesPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Suites in %s:\n", suitesPath)
		for _, name := range f.Names() {
			st, _ := f.Get(name)
			fmt.Fprintf(w, "  %s (%d opcodes)\n", name, len(st.Opcodes))
		}
		return nil
	}

	fmt.Fprintf(w, "Implemented opcodes (%d total):\n\n", registry.Count())
	printOpcodeGrid(w, registry.All())
	return nil
}

// printOpcodeGrid writes opcodes ten per line.
func printOpcodeGrid(w io.Writer, ids []string) {
	for i, op := range ids {
		fmt.Fprintf(w, "%s ", op)
		if (i+1)%10 == 0 {
			fmt.Fprintln(w)
		}
	}
	if len(ids)%10 != 0 {
		fmt.Fprintln(w)
	}
}
