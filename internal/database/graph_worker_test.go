package database_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"chemsafe/internal/chemgraph"
	"chemsafe/internal/database"
	"chemsafe/internal/database/graph"
	"chemsafe/internal/database/relational"
	"chemsafe/internal/hazard"
)

// seededRepo builds a store with two chemicals and one incompatibility, the
// smallest fixture a refresh can do useful work on.
func seededRepo(t *testing.T) *relational.Repo {
	t.Helper()
	repo := newSeededRepo(t, []relational.IncompatibilityRow{
		{SourceCAS: "7664-93-9", TargetCAS: "1310-73-2", RuleCode: "R1", SourceLabel: "test"},
	})
	ctx := context.Background()
	chemicals := []relational.ChemicalRow{
		{CAS: "7664-93-9", Name: "Sulfuric acid"},
		{CAS: "1310-73-2", Name: "Sodium hydroxide"},
	}
	for _, row := range chemicals {
		if err := repo.UpsertChemical(ctx, row); err != nil {
			t.Fatalf("seed chemical: %v", err)
		}
	}
	return repo
}

// mockGraphClient records mirror calls without a Neo4j instance.
type mockGraphClient struct {
	mu       sync.Mutex
	ingested []chemgraph.GraphExport
	resets   int
	closed   bool
}

var _ graph.GraphClient = (*mockGraphClient)(nil)

func (m *mockGraphClient) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockGraphClient) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
	return nil
}

func (m *mockGraphClient) IngestGraph(ctx context.Context, export chemgraph.GraphExport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingested = append(m.ingested, export)
	return nil
}

func (m *mockGraphClient) ExecuteCypher(ctx context.Context, query string) ([]map[string]any, error) {
	return []map[string]any{}, nil
}

func (m *mockGraphClient) snapshot() (int, int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ingested), m.resets, m.closed
}

func TestWorkerRefreshOnce(t *testing.T) {
	repo := seededRepo(t)
	g := chemgraph.New()
	assessor := hazard.NewService(hazard.DefaultConfig())

	worker, err := database.NewGraphWorker(repo, g, assessor)
	if err != nil {
		t.Fatal(err)
	}

	if worker.LastPayload() != nil {
		t.Error("payload should be nil before the first refresh")
	}

	payload, err := worker.RefreshOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if payload.Build.NodeCount == 0 || payload.Build.EdgeCount == 0 {
		t.Errorf("refresh produced an empty graph: %+v", payload.Build)
	}
	if len(payload.Assessments) == 0 {
		t.Error("refresh produced no assessments")
	}
	if worker.LastPayload() != payload {
		t.Error("LastPayload should return the most recent refresh")
	}

	// the graph the worker rebuilt answers queries directly
	if hops := g.FindIncompatible("7664-93-9", 1); len(hops) == 0 {
		t.Error("rebuilt graph missing seeded incompatibility")
	}
}

func TestWorkerMirrorPush(t *testing.T) {
	repo := seededRepo(t)
	g := chemgraph.New()
	mock := &mockGraphClient{}

	worker, err := database.NewGraphWorker(repo, g, nil, database.WithGraphMirror(mock))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := worker.RefreshOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	worker.Stop() // waits for the async push, then resets and closes the mirror

	ingests, resets, closed := mock.snapshot()
	if ingests != 1 {
		t.Errorf("expected 1 mirror ingest, got %d", ingests)
	}
	if resets == 0 {
		t.Error("stop should reset the mirror")
	}
	if !closed {
		t.Error("stop should close the mirror")
	}
}

func TestWorkerRefreshAfterStopSkipsMirror(t *testing.T) {
	repo := seededRepo(t)
	g := chemgraph.New()
	mock := &mockGraphClient{}

	worker, err := database.NewGraphWorker(repo, g, nil, database.WithGraphMirror(mock))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := worker.RefreshOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	worker.Stop()

	// The rebuild still works, but nothing may be pushed at the closed mirror.
	payload, err := worker.RefreshOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if payload.Build.NodeCount == 0 {
		t.Errorf("refresh after stop should still rebuild: %+v", payload.Build)
	}
	worker.Stop()

	ingests, _, closed := mock.snapshot()
	if ingests != 1 {
		t.Errorf("expected only the pre-stop ingest, got %d", ingests)
	}
	if !closed {
		t.Error("mirror should be closed")
	}
}

func TestWorkerStartStop(t *testing.T) {
	repo := seededRepo(t)
	g := chemgraph.New()

	worker, err := database.NewGraphWorker(repo, g, nil,
		database.WithRefreshInterval(time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := worker.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := worker.Start(ctx); err == nil {
		t.Error("second start should fail while running")
	}
	worker.Stop()

	// restart after stop is allowed
	if err := worker.Start(ctx); err != nil {
		t.Errorf("restart after stop: %v", err)
	}
	worker.Stop()
}

func TestNewGraphWorkerValidation(t *testing.T) {
	if _, err := database.NewGraphWorker(nil, nil, nil); err == nil {
		t.Error("expected error for missing source and graph")
	}
}
