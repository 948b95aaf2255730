package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmgbartels/merc/pkg/rewrite"
	"github.com/mmgbartels/merc/pkg/symbol"
	"github.com/mmgbartels/merc/pkg/term"
)

func newRewriteCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "rewrite", Short: "Run the rewrite engine to normal form"}
	cmd.AddCommand(newRewriteRunCmd())
	return cmd
}

func newRewriteRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <rules-file> <term-text>",
		Short: "Compile a rule set and rewrite a term to normal form",
		Args:  cobra.ExactArgs(2),
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

			input, err := tp.FromText(w, sp, args[1])
			if err != nil {
				return err
			}
			defer input.Release()

			var stats rewrite.Stats
			result, err := engine.Rewrite(tp, w, input, &stats)
			if err != nil {
				return err
			}
			defer result.Release()

			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", result.String())
			fmt.Fprintf(cmd.OutOrStdout(), "recursions=%d steps=%d symbol_comparisons=%d\n",
				stats.Recursions, stats.RewriteSteps, stats.SymbolComparisons)
			return nil
		},
	}
}

// loadRuleFile parses a text file of unconditional rules, one per
// non-blank, non-'#'-prefixed line, in "lhs => rhs" form using
// parsePattern's uppercase-is-variable convention. Conditional rules
// (spec.md §4.3.1's third component) need no CLI text form of their own:
// this demo's rule sets are built to exercise normal-form rewriting end
// to end, not to be a general rule-authoring surface.
func loadRuleFile(sp *symbol.Pool, path string) ([]rewrite.Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rules []rewrite.Rule
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=>", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("rule file %s:%d: expected 'lhs => rhs'", path, lineNo)
		}
		lhs, err := parsePattern(sp, strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("rule file %s:%d: %w", path, lineNo, err)
		}
		rhs, err := parsePattern(sp, strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("rule file %s:%d: %w", path, lineNo, err)
		}
		rules = append(rules, rewrite.Rule{LHS: lhs, RHS: rhs})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}
