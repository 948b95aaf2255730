package main

import (
	"github.com/spf13/cobra"

	"github.com/mmgbartels/merc/pkg/rewrite"
	"github.com/mmgbartels/merc/pkg/symbol"
	"github.com/mmgbartels/merc/pkg/term"
)

// newBenchCmd rewrites each given term-text to normal form against one
// rule set and exports the resulting Stats as CSV (pkg/rewrite's
// WriteBenchCSV), one row per input term. This is the runnable form of
// spec.md §6's observability figures, letting a user compare rewrite cost
// across inputs the way cmd/mercdemo's other subcommands demo a single
// scenario each.
func newBenchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bench <rules-file> <term-text>...",
		Short: "Rewrite each term-text to normal form and export step counts as CSV",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sp := symbol.New()
			rules, err := loadRuleFile(sp, args[0])
			if err != nil {
				return err
			}
			engine, err := rewrite.Compile(rules)
			if err != nil {
				return err
			}

			tp := term.New(sp)
			defer tp.Close()
			w := tp.NewWorker()
			defer w.Close()

			results := make([]rewrite.BenchResult, 0, len(args)-1)
			for _, text := range args[1:] {
				input, err := tp.FromText(w, sp, text)
				if err != nil {
					return err
				}
				var stats rewrite.Stats
				result, err := engine.Rewrite(tp, w, input, &stats)
				input.Release()
				if err != nil {
					return err
				}
				result.Release()
				results = append(results, rewrite.BenchResult{Name: text, Stats: stats})
			}

			return rewrite.WriteBenchCSV(cmd.OutOrStdout(), results)
		},
	}
}
