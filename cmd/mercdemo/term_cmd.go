package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmgbartels/merc/pkg/symbol"
	"github.com/mmgbartels/merc/pkg/term"
)

func newTermCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "term",
		Short: "Build and inspect terms in a Term Pool",
	}
	cmd.AddCommand(newTermBuildCmd(), newTermShareCheckCmd())
	return cmd
}

func newTermBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build <term-text>",
		Short: "Parse and build a term, printing its canonical text form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sp := symbol.New()
			tp := term.New(sp)
			defer tp.Close()
			w := tp.NewWorker()
			defer w.Close()

			h, err := tp.FromText(w, sp, args[0])
			if err != nil {
				return err
			}
			defer h.Release()

			fmt.Fprintln(cmd.OutOrStdout(), h.String())
			return nil
		},
	}
}

// newTermShareCheckCmd is spec.md §8 scenario 1 as a runnable command:
// build the same term text twice and report whether the pool returned
// the identical, maximally-shared node both times.
func newTermShareCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "share-check <term-text>",
		Short: "Build a term twice and report whether the two builds share one node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sp := symbol.New()
			tp := term.New(sp)
			defer tp.Close()
			w := tp.NewWorker()
			defer w.Close()

			h1, err := tp.FromText(w, sp, args[0])
			if err != nil {
				return err
			}
			defer h1.Release()

			h2, err := tp.FromText(w, sp, args[0])
			if err != nil {
				return err
			}
			defer h2.Release()

			shared := h1.Ref().Equal(h2.Ref())
			fmt.Fprintf(cmd.OutOrStdout(), "%s shared=%t (pointer %d)\n", h1.String(), shared, h1.Ref().PointerID())
			return nil
		},
	}
}
