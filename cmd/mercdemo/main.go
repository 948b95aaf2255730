// Command mercdemo is a small Cobra-based CLI exercising the Symbol
// Pool, Term Pool, Rewrite Engine and Decision-Diagram Store end to end
// (spec.md §8 scenarios 1, 3 and 5, runnable as commands instead of test
// cases).
// It contains no core logic of its own: every subcommand only calls the
// public contracts pkg/term, pkg/rewrite and pkg/ldd already expose.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "mercdemo",
		Short: "Demonstrates the Symbol/Term/Rewrite/Decision-Diagram packages",
	}
	root.AddCommand(newTermCmd(), newRewriteCmd(), newLDDCmd(), newBenchCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
