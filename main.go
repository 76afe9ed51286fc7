package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"chemsafe/internal/chemgraph"
	"chemsafe/internal/database"
	"chemsafe/internal/database/graph"
	"chemsafe/internal/database/relational"
	"chemsafe/internal/hazard"
	"chemsafe/internal/mcpserver"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real env vars win either way
	_ = godotenv.Load()

	ctx := context.Background()

	client, err := relational.NewDuckDBClient(os.Getenv("CHEMSAFE_DB"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer client.Close()

	repo := relational.NewRepo(client.DB())
	if err := repo.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}

	g := chemgraph.New()
	assessor := hazard.NewService(hazard.DefaultConfig())

	workerOpts := []database.WorkerOption{}
	if d, err := time.ParseDuration(os.Getenv("CHEMSAFE_REFRESH_INTERVAL")); err == nil {
		workerOpts = append(workerOpts, database.WithRefreshInterval(d))
	}

	// The Neo4j mirror is optional; without a URI the server runs on the
	// DuckDB store and the in-memory graph alone.
	var neo4jClient graph.GraphClient
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		neoDB := os.Getenv("NEO4J_DATABASE")
		if neoDB == "" {
			neoDB = "neo4j"
		}
		nc, err := graph.NewNeo4jClient(uri, os.Getenv("NEO4J_USER"), os.Getenv("NEO4J_PASSWORD"), neoDB)
		if err != nil {
			return fmt.Errorf("connect neo4j mirror: %w", err)
		}
		neo4jClient = nc
		workerOpts = append(workerOpts, database.WithGraphMirror(nc))
	}

	worker, err := database.NewGraphWorker(repo, g, assessor, workerOpts...)
	if err != nil {
		return fmt.Errorf("create worker: %w", err)
	}
	if err := worker.Start(ctx); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}

	server, err := mcpserver.NewServer(mcpserver.Config{
		ServerName:    "chemsafe",
		ServerVersion: "1.0.0",
	}, repo, g, worker, neo4jClient)
	if err != nil {
		worker.Stop()
		return fmt.Errorf("create mcp server: %w", err)
	}
	defer server.Close(ctx)

	return server.Start(ctx)
}
