package chemgraph_test

import (
	"context"
	"reflect"
	"testing"

	"chemsafe/internal/chemgraph"
	"chemsafe/internal/database/relational"
)

func TestTransitiveIncompatibilitiesOrdering(t *testing.T) {
	// A - B, A - C, B - D. Depth groups come first, targets sorted inside.
	src := &stubSource{
		incompat: []relational.IncompatibilityRow{
			incompatRow("A", "C", "R1"),
			incompatRow("A", "B", "R2"),
			incompatRow("B", "D", "R3"),
		},
	}
	g := chemgraph.New()
	g.Build(context.Background(), src)

	got, err := g.TransitiveIncompatibilities(context.Background(), "A", 3)
	if err != nil {
		t.Fatal(err)
	}

	want := []chemgraph.ClosureEntry{
		{Target: "B", Rule: "R2", Source: "test", Depth: 1},
		{Target: "C", Rule: "R1", Source: "test", Depth: 1},
		{Target: "D", Rule: "R3", Source: "test", Depth: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("closure = %v, want %v", got, want)
	}
}

func TestTransitiveIncompatibilitiesMinDepth(t *testing.T) {
	// D is reachable at depth 1 directly and at depth 2 through B; only the
	// depth-1 entry survives.
	src := &stubSource{
		incompat: []relational.IncompatibilityRow{
			incompatRow("A", "B", "R1"),
			incompatRow("A", "D", "R2"),
			incompatRow("B", "D", "R3"),
		},
	}
	g := chemgraph.New()
	g.Build(context.Background(), src)

	got, err := g.TransitiveIncompatibilities(context.Background(), "A", 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range got {
		if e.Target == "D" && (e.Depth != 1 || e.Rule != "R2") {
			t.Errorf("D attributed %+v, want depth 1 via R2", e)
		}
	}
}

func TestTransitiveIncompatibilitiesParallelEdgeTieBreak(t *testing.T) {
	// Two rules cover the same pair; the lexicographically smaller rule code
	// wins attribution regardless of store order.
	src := &stubSource{
		incompat: []relational.IncompatibilityRow{
			incompatRow("A", "B", "R9"),
			incompatRow("A", "B", "R1"),
		},
	}
	g := chemgraph.New()
	g.Build(context.Background(), src)

	got, err := g.TransitiveIncompatibilities(context.Background(), "A", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Rule != "R1" {
		t.Errorf("closure = %v, want single entry attributed to R1", got)
	}
}

func TestTransitiveIncompatibilitiesDepthBound(t *testing.T) {
	src := &stubSource{
		incompat: []relational.IncompatibilityRow{
			incompatRow("A", "B", "R1"),
			incompatRow("B", "C", "R2"),
			incompatRow("C", "D", "R3"),
		},
	}
	g := chemgraph.New()
	g.Build(context.Background(), src)

	got, err := g.TransitiveIncompatibilities(context.Background(), "A", 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range got {
		if e.Depth > 2 {
			t.Errorf("entry beyond depth bound: %+v", e)
		}
		if e.Target == "D" {
			t.Errorf("D should be unreachable within 2 hops: %+v", e)
		}
	}
	if len(got) != 2 {
		t.Errorf("expected B and C only, got %v", got)
	}
}

func TestTransitiveIncompatibilitiesUnknownSource(t *testing.T) {
	g := chemgraph.New()
	got, err := g.TransitiveIncompatibilities(context.Background(), "Z", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("unknown source should yield empty closure, got %v", got)
	}
}

func TestTransitiveIncompatibilitiesCancelled(t *testing.T) {
	g := chemgraph.New()
	g.Build(context.Background(), &stubSource{
		incompat: []relational.IncompatibilityRow{incompatRow("A", "B", "R1")},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.TransitiveIncompatibilities(ctx, "A", 3); err == nil {
		t.Error("expected context error after cancellation")
	}
}
