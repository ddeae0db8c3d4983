package binding

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestContextDescendCopies(t *testing.T) {
	parent := Root().Descend("outer", 0)
	first := parent.Descend("inner", 0)
	second := parent.Descend("inner", 1)

	if got := first.Path("leaf"); got != "outer[0].inner[0].leaf" {
		t.Fatalf("unexpected first path %q", got)
	}
	if got := second.Path("leaf"); got != "outer[0].inner[1].leaf" {
		t.Fatalf("unexpected second path %q", got)
	}
	if parent.Depth() != 1 {
		t.Fatalf("parent context mutated: depth %d", parent.Depth())
	}
}

func TestContextSpecView(t *testing.T) {
	ctx := Root().Descend("outer", 2).Descend("inner", 5)

	if diff := cmp.Diff([]string{"outer", "inner"}, ctx.ParentFieldPath()); diff != "" {
		t.Fatalf("parent field path mismatch (-want +got):\n%s", diff)
	}
	idx, ok := ctx.ListIndex()
	if !ok || idx != 5 {
		t.Fatalf("expected list index 5, got %d (ok=%v)", idx, ok)
	}
	if _, ok := Root().ListIndex(); ok {
		t.Fatalf("root context must not report a list index")
	}
}

func TestContextRowPath(t *testing.T) {
	ctx := Root().Descend("outer", 1)
	if got := ctx.RowPath("inner", 0); got != "outer[1].inner[0]" {
		t.Fatalf("unexpected row path %q", got)
	}
}
