package mcpserver

import (
	"context"
	"testing"

	"chemsafe/internal/chemgraph"
	"chemsafe/internal/database"
	"chemsafe/internal/database/relational"
	"chemsafe/internal/hazard"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	client, err := relational.NewInMemoryDB()
	if err != nil {
		t.Fatalf("open in-memory duckdb: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	repo := relational.NewRepo(client.DB())
	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	chemicals := []relational.ChemicalRow{
		{CAS: "7664-93-9", Name: "Sulfuric acid", Supplier: "Acme"},
		{CAS: "1310-73-2", Name: "Sodium hydroxide", Supplier: "Acme"},
		{CAS: "74-90-8", Name: "Hydrogen cyanide"},
	}
	for _, row := range chemicals {
		if err := repo.UpsertChemical(ctx, row); err != nil {
			t.Fatalf("seed chemical: %v", err)
		}
	}
	rules := []relational.IncompatibilityRow{
		{SourceCAS: "7664-93-9", TargetCAS: "1310-73-2", RuleCode: "R1", SourceLabel: "test"},
		{SourceCAS: "1310-73-2", TargetCAS: "74-90-8", RuleCode: "R2", SourceLabel: "test"},
	}
	for _, row := range rules {
		if err := repo.InsertIncompatibility(ctx, row); err != nil {
			t.Fatalf("seed rule: %v", err)
		}
	}

	g := chemgraph.New()
	assessor := hazard.NewService(hazard.DefaultConfig())
	worker, err := database.NewGraphWorker(repo, g, assessor)
	if err != nil {
		t.Fatal(err)
	}

	srv, err := NewServer(Config{ServerName: "chemsafe-test", ServerVersion: "0.0.0"}, repo, g, worker, nil)
	if err != nil {
		t.Fatal(err)
	}
	return srv
}

func TestNewServerValidation(t *testing.T) {
	if _, err := NewServer(Config{}, nil, nil, nil, nil); err == nil {
		t.Error("expected error for missing dependencies")
	}
}

func TestClampDepth(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, defaultDepth},
		{-5, defaultDepth},
		{1, 1},
		{10, 10},
		{50, maxDepth},
	}
	for _, tt := range tests {
		if got := clampDepth(tt.in); got != tt.want {
			t.Errorf("clampDepth(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestHandleFindIncompatible(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	_, result, err := srv.handleFindIncompatible(ctx, nil, TraversalArgs{CAS: "7664-93-9", MaxDepth: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Results) != 2 {
		t.Fatalf("results = %v, want 2 hops", result.Results)
	}
	if result.Results[0].Key != "1310-73-2" || result.Results[0].Distance != 1 {
		t.Errorf("first hop = %+v", result.Results[0])
	}
	if result.Results[1].Key != "74-90-8" || result.Results[1].Distance != 2 {
		t.Errorf("second hop = %+v", result.Results[1])
	}

	// unknown source is an empty answer, not an error
	_, result, err = srv.handleFindIncompatible(ctx, nil, TraversalArgs{CAS: "no-such"})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Results) != 0 {
		t.Errorf("unknown source should be empty, got %v", result.Results)
	}
}

func TestHandleFindChains(t *testing.T) {
	srv := newTestServer(t)

	_, result, err := srv.handleFindChains(context.Background(), nil, TraversalArgs{CAS: "7664-93-9", MaxDepth: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Chains) != 2 {
		t.Fatalf("chains = %v, want the one- and two-edge prefixes", result.Chains)
	}
}

func TestHandleTransitiveMatchesTraversal(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	_, transitive, err := srv.handleTransitive(ctx, nil, TraversalArgs{CAS: "7664-93-9", MaxDepth: 3})
	if err != nil {
		t.Fatal(err)
	}
	_, bfs, err := srv.handleFindIncompatible(ctx, nil, TraversalArgs{CAS: "7664-93-9", MaxDepth: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(transitive.Results) != len(bfs.Results) {
		t.Fatalf("paths disagree: relational %v, in-memory %v", transitive.Results, bfs.Results)
	}
	for i, e := range transitive.Results {
		if e.TargetCAS != bfs.Results[i].Key || e.Depth != bfs.Results[i].Distance {
			t.Errorf("row %d disagrees: relational %+v, in-memory %+v", i, e, bfs.Results[i])
		}
	}
}

func TestHandleClusters(t *testing.T) {
	srv := newTestServer(t)

	_, result, err := srv.handleClusters(context.Background(), nil, ClustersArgs{MinConnections: 2})
	if err != nil {
		t.Fatal(err)
	}
	// mirrored store: only the middle chemical reaches two distinct targets
	if len(result.Clusters) != 1 || result.Clusters[0].CAS != "1310-73-2" {
		t.Errorf("clusters = %v, want only 1310-73-2", result.Clusters)
	}
}

func TestHandleSimilarValidatesCriterion(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	if _, _, err := srv.handleSimilar(ctx, nil, SimilarArgs{CAS: "7664-93-9", Criterion: "bogus"}); err == nil {
		t.Error("invalid criterion should error")
	}

	_, result, err := srv.handleSimilar(ctx, nil, SimilarArgs{CAS: "7664-93-9", Criterion: "supplier"})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Similar) != 1 || result.Similar[0] != "1310-73-2" {
		t.Errorf("similar = %v, want [1310-73-2]", result.Similar)
	}
}

func TestHandleNeighborhood(t *testing.T) {
	srv := newTestServer(t)

	_, result, err := srv.handleNeighborhood(context.Background(), nil, NeighborhoodArgs{CAS: "7664-93-9", Radius: 2})
	if err != nil {
		t.Fatal(err)
	}
	if result.Center == nil || result.Center.Name != "Sulfuric acid" {
		t.Fatalf("center = %+v", result.Center)
	}
	if len(result.InRadius) != 2 {
		t.Errorf("in-radius = %v", result.InRadius)
	}
}

func TestHandleStats(t *testing.T) {
	srv := newTestServer(t)

	_, result, err := srv.handleStats(context.Background(), nil, StatsArgs{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Stats.ChemicalCount != 3 {
		t.Errorf("chemical count = %d, want 3", result.Stats.ChemicalCount)
	}
	if result.Report == nil {
		t.Error("report view should be present after the initial build")
	}
}

func TestHandleRebuild(t *testing.T) {
	srv := newTestServer(t)

	_, result, err := srv.handleRebuild(context.Background(), nil, RebuildArgs{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Build.Failed != 0 {
		t.Errorf("rebuild reported failed phases: %+v", result.Build)
	}
	if result.Stats.NodeCount != 3 {
		t.Errorf("node count = %d, want 3", result.Stats.NodeCount)
	}
}
