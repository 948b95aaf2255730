package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmgbartels/merc/pkg/ldd"
)

func newLDDCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "ldd", Short: "Build and combine List Decision Diagrams"}
	cmd.AddCommand(newLDDUnionCmd(), newLDDLenCmd())
	return cmd
}

// newLDDUnionCmd is spec.md §8 scenario 5 as a runnable command: build
// two vector sets, union them, and print the result.
func newLDDUnionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "union <vectors-a> <vectors-b>",
		Short: "Union two vector sets, each given as \"1,2;3,4\"",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := ldd.New()
			defer s.Close()
			w := s.NewWorker()
			defer w.Close()

			va, err := parseVectors(args[0])
			if err != nil {
				return err
			}
			vb, err := parseVectors(args[1])
			if err != nil {
				return err
			}

			ha, err := s.FromSlices(w, va)
			if err != nil {
				return err
			}
			defer ha.Release()
			hb, err := s.FromSlices(w, vb)
			if err != nil {
				return err
			}
			defer hb.Release()

			u, err := s.Union(w, ha, hb)
			if err != nil {
				return err
			}
			defer u.Release()

			vecs, err := s.ToSlice(u)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatVectors(vecs))
			return nil
		},
	}
}

func newLDDLenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "len <vectors>",
		Short: "Print the number of vectors in a set given as \"1,2;3,4\"",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := ldd.New()
			defer s.Close()
			w := s.NewWorker()
			defer w.Close()

			vs, err := parseVectors(args[0])
			if err != nil {
				return err
			}
			h, err := s.FromSlices(w, vs)
			if err != nil {
				return err
			}
			defer h.Release()

			fmt.Fprintln(cmd.OutOrStdout(), s.Len(w, h))
			return nil
		},
	}
}

// parseVectors reads "1,2;3,4" as [][]uint32{{1,2},{3,4}}.
func parseVectors(s string) ([][]uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out [][]uint32
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			out = append(out, []uint32{})
			continue
		}
		var vec []uint32
		for _, tok := range strings.Split(part, ",") {
			v, err := strconv.ParseUint(strings.TrimSpace(tok), 10, 32)
			if err != nil {
				return nil, fmt.Errorf("ldd: invalid vector element %q: %w", tok, err)
			}
			vec = append(vec, uint32(v))
		}
		out = append(out, vec)
	}
	return out, nil
}

func formatVectors(vs [][]uint32) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		elems := make([]string, len(v))
		for j, e := range v {
			elems[j] = strconv.FormatUint(uint64(e), 10)
		}
		parts[i] = strings.Join(elems, ",")
	}
	return strings.Join(parts, ";")
}
