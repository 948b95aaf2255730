package ldd

import (
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// parseGoldenVectors reads the "1,2;3,4" text dump format cmd/mercdemo's
// ldd subcommand prints (parseVectors/formatVectors in
// cmd/mercdemo/ldd_cmd.go) back into [][]uint32, so the golden fixture
// stays in the same human-readable form a user running the CLI would see.
func parseGoldenVectors(t *testing.T, path string) [][]uint32 {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return nil
	}
	var out [][]uint32
	for _, part := range strings.Split(s, ";") {
		var vec []uint32
		for _, tok := range strings.Split(part, ",") {
			v, err := strconv.ParseUint(tok, 10, 32)
			if err != nil {
				t.Fatalf("%s: invalid vector element %q: %v", path, tok, err)
			}
			vec = append(vec, uint32(v))
		}
		out = append(out, vec)
	}
	return out
}

// TestUnionGolden unions {1,2;1,3} with {1,2;2,1} and diffs the resulting
// vector set against testdata/union.golden with go-cmp. The expected order
// follows directly from the node-table invariant that right-sibling values
// strictly increase (store.go's internKey rejects value >= right.n.value),
// so ToSlice's depth-first walk always yields vectors in ascending
// lexicographic order: (1,2), (1,3), (2,1).
func TestUnionGolden(t *testing.T) {
	s := newTestStore(t)
	w := s.NewWorker()
	defer w.Close()

	ha, err := s.FromSlices(w, [][]uint32{{1, 2}, {1, 3}})
	if err != nil {
		t.Fatal(err)
	}
	defer ha.Release()
	hb, err := s.FromSlices(w, [][]uint32{{1, 2}, {2, 1}})
	if err != nil {
		t.Fatal(err)
	}
	defer hb.Release()

	u, err := s.Union(w, ha, hb)
	if err != nil {
		t.Fatal(err)
	}
	defer u.Release()

	got, err := s.ToSlice(u)
	if err != nil {
		t.Fatal(err)
	}
	want := parseGoldenVectors(t, "testdata/union.golden")

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("union.golden mismatch (-want +got):\n%s", diff)
	}
}
