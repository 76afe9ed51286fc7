// Package database orchestrates the two execution paths over the store: the
// in-memory graph (built by the worker, queried by traversal) and the
// relational query engine (read directly off DuckDB). It also owns the
// optional Neo4j mirror push.
package database

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"chemsafe/internal/chemgraph"
	"chemsafe/internal/database/graph"
	"chemsafe/internal/hazard"
	"chemsafe/internal/output"
)

const defaultRefreshInterval = 5 * time.Minute

// GraphWorker serializes graph rebuilds against queries and pushes each
// fresh build to the Neo4j mirror asynchronously. One rebuild is in flight
// at a time.
type GraphWorker struct {
	source      chemgraph.Source
	graph       *chemgraph.Graph
	assessor    *hazard.Service
	graphClient graph.GraphClient
	interval    time.Duration

	mu         sync.Mutex
	cancel     context.CancelFunc
	running    bool
	mirrorDown bool
	wg         sync.WaitGroup

	payloadMu sync.RWMutex
	payload   *output.RefreshPayload
}

// WorkerOption configures a GraphWorker.
type WorkerOption func(*GraphWorker)

// WithRefreshInterval sets the periodic refresh interval.
func WithRefreshInterval(d time.Duration) WorkerOption {
	return func(w *GraphWorker) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithGraphMirror attaches a Neo4j mirror that receives every fresh build.
func WithGraphMirror(client graph.GraphClient) WorkerOption {
	return func(w *GraphWorker) {
		w.graphClient = client
	}
}

// NewGraphWorker creates a worker over the given store source and graph.
func NewGraphWorker(src chemgraph.Source, g *chemgraph.Graph, assessor *hazard.Service, opts ...WorkerOption) (*GraphWorker, error) {
	if src == nil || g == nil {
		return nil, errors.New("source and graph are required")
	}
	w := &GraphWorker{
		source:   src,
		graph:    g,
		assessor: assessor,
		interval: defaultRefreshInterval,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Start begins the periodic refresh loop.
func (w *GraphWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("worker already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.wg.Add(1)
	w.mu.Unlock()

	go w.loop(ctx)
	return nil
}

// Stop gracefully stops the worker.
func (w *GraphWorker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.running = false
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()

	// A RefreshOnce that slipped past the wait above may still spawn a
	// mirror push. Taking the rebuild lock to flip mirrorDown fences off
	// later refreshes; the second wait drains any push already in flight.
	w.mu.Lock()
	w.mirrorDown = true
	w.mu.Unlock()
	w.wg.Wait()

	// The mirror is an ephemeral session view; clear it on shutdown.
	if w.graphClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		w.graphClient.Reset(ctx)
		w.graphClient.Close(ctx)
	}
}

// RefreshOnce executes a single rebuild cycle immediately.
func (w *GraphWorker) RefreshOnce(ctx context.Context) (*output.RefreshPayload, error) {
	return w.execute(ctx)
}

// LastPayload returns the most recent refresh payload, or nil before the
// first successful refresh.
func (w *GraphWorker) LastPayload() *output.RefreshPayload {
	w.payloadMu.RLock()
	defer w.payloadMu.RUnlock()
	return w.payload
}

func (w *GraphWorker) loop(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.execute(ctx); err != nil {
				slog.Error("graph refresh failed", "component", "worker", "error", err)
			}
		}
	}
}

func (w *GraphWorker) execute(ctx context.Context) (*output.RefreshPayload, error) {
	// Only one rebuild at a time; graph-level locking protects traversals.
	w.mu.Lock()
	defer w.mu.Unlock()

	payload, err := output.RunRefresh(ctx, w.source, w.graph, w.assessor)
	if err != nil {
		return nil, err
	}

	w.payloadMu.Lock()
	w.payload = payload
	w.payloadMu.Unlock()

	// Push to the graph mirror asynchronously; a detached timeout lets the
	// push finish even when the caller's context ends first. After Stop the
	// mirror client is closed, so refreshes past that point skip the push.
	if w.graphClient != nil && !w.mirrorDown {
		export := payload.Export
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			pushCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := w.graphClient.IngestGraph(pushCtx, export); err != nil {
				slog.Error("graph mirror ingest failed", "component", "worker", "error", err)
			}
		}()
	}
	return payload, nil
}
