// Package mcpserver exposes the chemical relationship core over MCP: every
// query operation of the in-memory graph and the relational query engine
// becomes a typed tool on a stdio server.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"chemsafe/internal/chemgraph"
	"chemsafe/internal/database"
	"chemsafe/internal/database/graph"
	"chemsafe/internal/database/relational"
	"chemsafe/internal/output"
)

const (
	defaultDepth = 3
	maxDepth     = 10
)

// Server wraps the MCP server with ChemSafe capabilities.
type Server struct {
	mcpServer   *mcp.Server
	repo        *relational.Repo
	chemGraph   *chemgraph.Graph
	worker      *database.GraphWorker
	neo4jClient graph.GraphClient
}

// Config holds configuration for the MCP server.
type Config struct {
	ServerName    string
	ServerVersion string
}

// NewServer creates a new MCP server instance. The Neo4j client is optional;
// without it the query_graph tool is not registered.
func NewServer(cfg Config, repo *relational.Repo, g *chemgraph.Graph, worker *database.GraphWorker, neo4jClient graph.GraphClient) (*Server, error) {
	if repo == nil || g == nil || worker == nil {
		return nil, fmt.Errorf("repo, graph, and worker are required")
	}

	impl := &mcp.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}

	s := &Server{
		mcpServer:   mcp.NewServer(impl, nil),
		repo:        repo,
		chemGraph:   g,
		worker:      worker,
		neo4jClient: neo4jClient,
	}
	s.registerTools()

	// Build the initial graph so traversal tools have something to answer
	fmt.Fprintf(os.Stderr, "Building initial chemical graph...\n")
	if _, err := worker.RefreshOnce(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: initial build failed: %v\n", err)
	}

	return s, nil
}

// RebuildArgs is the (empty) input for rebuild_graph.
type RebuildArgs struct{}

// RebuildResult reports the outcome of a rebuild.
type RebuildResult struct {
	Build chemgraph.BuildReport   `json:"build" jsonschema:"per-phase build report"`
	Stats chemgraph.EnrichedStats `json:"stats" jsonschema:"graph statistics after the rebuild"`
}

// TraversalArgs identifies a source chemical and a depth bound.
type TraversalArgs struct {
	CAS      string `json:"cas" jsonschema:"CAS number of the source chemical"`
	MaxDepth int    `json:"max_depth,omitempty" jsonschema:"maximum number of hops (default 3)"`
}

// IncompatibleResult lists reachable chemicals with hop distances.
type IncompatibleResult struct {
	Results []chemgraph.Hop `json:"results" jsonschema:"reachable chemicals with hop distance"`
}

// ChainsResult lists discovered reaction chains.
type ChainsResult struct {
	Chains [][]string `json:"chains" jsonschema:"reaction chains as CAS sequences"`
}

// TransitiveResult lists relational closure entries.
type TransitiveResult struct {
	Results []relational.TransitiveEntry `json:"results" jsonschema:"closure rows with rule metadata and depth"`
}

// ClustersArgs sets the minimum connection count.
type ClustersArgs struct {
	MinConnections int `json:"min_connections,omitempty" jsonschema:"minimum distinct incompatibility targets (default 2)"`
}

// ClustersResult lists qualifying chemicals.
type ClustersResult struct {
	Clusters []relational.ClusterRow `json:"clusters" jsonschema:"chemicals sorted by connection count"`
}

// SharedArgs names two chemicals to intersect.
type SharedArgs struct {
	CAS1 string `json:"cas1" jsonschema:"first chemical CAS number"`
	CAS2 string `json:"cas2" jsonschema:"second chemical CAS number"`
}

// SharedResult lists chemicals incompatible with both inputs.
type SharedResult struct {
	Shared []relational.SharedRow `json:"shared" jsonschema:"chemicals incompatible with both inputs"`
}

// HazardousArgs sets the exposure threshold.
type HazardousArgs struct {
	Threshold float64 `json:"threshold" jsonschema:"minimum recorded IDLH for both endpoints"`
}

// HazardousResult lists qualifying incompatible pairs.
type HazardousResult struct {
	Pairs []relational.HazardPair `json:"pairs" jsonschema:"incompatible pairs above the threshold"`
}

// NeighborhoodArgs identifies a center chemical and radius.
type NeighborhoodArgs struct {
	CAS    string `json:"cas" jsonschema:"CAS number of the center chemical"`
	Radius int    `json:"radius,omitempty" jsonschema:"hop radius (default 3)"`
}

// SimilarArgs selects a similarity criterion.
type SimilarArgs struct {
	CAS       string `json:"cas" jsonschema:"CAS number of the chemical"`
	Criterion string `json:"criterion" jsonschema:"one of ghs_class, supplier, hazard_profile"`
}

// SimilarResult lists similar chemical keys.
type SimilarResult struct {
	Similar []string `json:"similar" jsonschema:"CAS numbers of similar chemicals"`
}

// SimilarityScoresArgs sets a score threshold.
type SimilarityScoresArgs struct {
	CAS       string  `json:"cas" jsonschema:"CAS number of the chemical"`
	Threshold float64 `json:"threshold,omitempty" jsonschema:"minimum similarity score"`
}

// SimilarityScoresResult lists scored neighbors.
type SimilarityScoresResult struct {
	Results []chemgraph.ScoredKey `json:"results" jsonschema:"similar chemicals sorted by score"`
}

// StatsArgs is the (empty) input for graph_stats.
type StatsArgs struct{}

// StatsResult bundles statistics with the coverage report.
type StatsResult struct {
	Stats  chemgraph.EnrichedStats `json:"stats" jsonschema:"graph statistics and coverage ratios"`
	Report *output.ReportView      `json:"report,omitempty" jsonschema:"sectioned coverage report"`
}

// QueryGraphArgs is the input for the raw Cypher tool.
type QueryGraphArgs struct {
	Cypher string `json:"cypher" jsonschema:"Cypher query to execute against the mirror"`
}

// QueryGraphResult wraps graph query results.
type QueryGraphResult struct {
	Data any `json:"data" jsonschema:"query results"`
}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "rebuild_graph",
		Description: "Rebuild the in-memory chemical relationship graph from the store. Clears all prior graph state and reloads every phase; returns the per-phase build report and fresh statistics.",
	}, s.handleRebuild)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "find_incompatible",
		Description: "Breadth-first discovery of chemicals incompatible with a source chemical, up to max_depth hops. Each result carries its minimum hop distance.",
	}, s.handleFindIncompatible)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "find_reaction_chains",
		Description: "Enumerate multi-step incompatibility chains from a source chemical. Returns every discovered chain prefix up to max_depth edges; no chain revisits a chemical.",
	}, s.handleFindChains)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "transitive_incompatibilities",
		Description: "Transitive incompatibility closure computed with a recursive query directly against the store, with rule metadata per reached chemical. Scales past what the in-memory graph holds.",
	}, s.handleTransitive)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "chemical_clusters",
		Description: "Chemicals whose distinct incompatibility target count meets a minimum, sorted by connection count. Use to find hub chemicals that conflict with many others.",
	}, s.handleClusters)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "shared_incompatibilities",
		Description: "Chemicals incompatible with both of two given chemicals: the intersection of their incompatibility targets, with the rule codes on each side.",
	}, s.handleShared)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "hazardous_pairs",
		Description: "Incompatible pairs where both chemicals have a recorded IDLH exposure threshold at or above the given value.",
	}, s.handleHazardous)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "chemical_neighborhood",
		Description: "A chemical's attribute record together with everything reachable within a radius of incompatibility hops.",
	}, s.handleNeighborhood)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "similar_chemicals",
		Description: "Chemicals similar to a given one by ghs_class, supplier, or hazard_profile (Jaccard over hazard flags).",
	}, s.handleSimilar)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "similarity_scores",
		Description: "Precomputed similarity neighbors of a chemical at or above a score threshold, sorted by score.",
	}, s.handleSimilarityScores)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "graph_stats",
		Description: "Graph statistics: node/edge/chemical counts, average degree, density, edge-type histogram, manufacturer count, and coverage ratios for hazard classes, P-statements, and similarity links.",
	}, s.handleStats)

	if s.neo4jClient != nil {
		mcp.AddTool(s.mcpServer, &mcp.Tool{
			Name:        "query_graph",
			Description: "Execute Cypher queries directly on the Neo4j mirror. Available nodes: Chemical, Manufacturer. Relationships: INCOMPATIBLE_WITH, MANUFACTURED_BY, PRODUCT_FAMILY, SIMILAR_TO.",
		}, s.handleQueryGraph)
	}
}

func clampDepth(d int) int {
	if d <= 0 {
		return defaultDepth
	}
	if d > maxDepth {
		return maxDepth
	}
	return d
}

func (s *Server) handleRebuild(ctx context.Context, _ *mcp.CallToolRequest, _ RebuildArgs) (*mcp.CallToolResult, RebuildResult, error) {
	payload, err := s.worker.RefreshOnce(ctx)
	if err != nil {
		return nil, RebuildResult{}, fmt.Errorf("rebuild failed: %w", err)
	}
	return nil, RebuildResult{Build: payload.Build, Stats: payload.Stats}, nil
}

func (s *Server) handleFindIncompatible(ctx context.Context, _ *mcp.CallToolRequest, args TraversalArgs) (*mcp.CallToolResult, IncompatibleResult, error) {
	results := s.chemGraph.FindIncompatible(args.CAS, clampDepth(args.MaxDepth))
	return nil, IncompatibleResult{Results: results}, nil
}

func (s *Server) handleFindChains(ctx context.Context, _ *mcp.CallToolRequest, args TraversalArgs) (*mcp.CallToolResult, ChainsResult, error) {
	chains := s.chemGraph.FindChains(args.CAS, clampDepth(args.MaxDepth))
	return nil, ChainsResult{Chains: chains}, nil
}

func (s *Server) handleTransitive(ctx context.Context, _ *mcp.CallToolRequest, args TraversalArgs) (*mcp.CallToolResult, TransitiveResult, error) {
	results, err := s.repo.TransitiveIncompatibilities(ctx, args.CAS, clampDepth(args.MaxDepth))
	if err != nil {
		slog.Error("transitive query failed", "component", "mcpserver", "cas", args.CAS, "error", err)
		return nil, TransitiveResult{Results: []relational.TransitiveEntry{}}, nil
	}
	return nil, TransitiveResult{Results: results}, nil
}

func (s *Server) handleClusters(ctx context.Context, _ *mcp.CallToolRequest, args ClustersArgs) (*mcp.CallToolResult, ClustersResult, error) {
	min := args.MinConnections
	if min <= 0 {
		min = 2
	}
	clusters, err := s.repo.ChemicalClusters(ctx, min)
	if err != nil {
		slog.Error("cluster query failed", "component", "mcpserver", "error", err)
		return nil, ClustersResult{Clusters: []relational.ClusterRow{}}, nil
	}
	return nil, ClustersResult{Clusters: clusters}, nil
}

func (s *Server) handleShared(ctx context.Context, _ *mcp.CallToolRequest, args SharedArgs) (*mcp.CallToolResult, SharedResult, error) {
	shared, err := s.repo.SharedIncompatibilities(ctx, args.CAS1, args.CAS2)
	if err != nil {
		slog.Error("shared query failed", "component", "mcpserver", "error", err)
		return nil, SharedResult{Shared: []relational.SharedRow{}}, nil
	}
	return nil, SharedResult{Shared: shared}, nil
}

func (s *Server) handleHazardous(ctx context.Context, _ *mcp.CallToolRequest, args HazardousArgs) (*mcp.CallToolResult, HazardousResult, error) {
	pairs, err := s.repo.HazardousClusters(ctx, args.Threshold)
	if err != nil {
		slog.Error("hazardous query failed", "component", "mcpserver", "error", err)
		return nil, HazardousResult{Pairs: []relational.HazardPair{}}, nil
	}
	return nil, HazardousResult{Pairs: pairs}, nil
}

func (s *Server) handleNeighborhood(ctx context.Context, _ *mcp.CallToolRequest, args NeighborhoodArgs) (*mcp.CallToolResult, *relational.NeighborhoodResult, error) {
	result, err := s.repo.Neighborhood(ctx, args.CAS, clampDepth(args.Radius))
	if err != nil {
		slog.Error("neighborhood query failed", "component", "mcpserver", "cas", args.CAS, "error", err)
		return nil, &relational.NeighborhoodResult{
			InRadius:   []string{},
			Transitive: []relational.TransitiveEntry{},
		}, nil
	}
	return nil, result, nil
}

func (s *Server) handleSimilar(ctx context.Context, _ *mcp.CallToolRequest, args SimilarArgs) (*mcp.CallToolResult, SimilarResult, error) {
	switch args.Criterion {
	case chemgraph.CriterionGHSClass, chemgraph.CriterionSupplier, chemgraph.CriterionHazardProfile:
	default:
		return nil, SimilarResult{}, fmt.Errorf("invalid criterion: %s (must be ghs_class, supplier, or hazard_profile)", args.Criterion)
	}
	return nil, SimilarResult{Similar: s.chemGraph.SimilarBy(args.CAS, args.Criterion)}, nil
}

func (s *Server) handleSimilarityScores(ctx context.Context, _ *mcp.CallToolRequest, args SimilarityScoresArgs) (*mcp.CallToolResult, SimilarityScoresResult, error) {
	return nil, SimilarityScoresResult{Results: s.chemGraph.SimilarByScore(args.CAS, args.Threshold)}, nil
}

func (s *Server) handleStats(ctx context.Context, _ *mcp.CallToolRequest, _ StatsArgs) (*mcp.CallToolResult, StatsResult, error) {
	result := StatsResult{Stats: s.chemGraph.EnrichedStats()}
	if payload := s.worker.LastPayload(); payload != nil {
		view := output.BuildReportView(payload)
		result.Report = &view
	}
	return nil, result, nil
}

func (s *Server) handleQueryGraph(ctx context.Context, _ *mcp.CallToolRequest, args QueryGraphArgs) (*mcp.CallToolResult, QueryGraphResult, error) {
	result, err := s.neo4jClient.ExecuteCypher(ctx, args.Cypher)
	if err != nil {
		return nil, QueryGraphResult{}, fmt.Errorf("cypher query failed: %w", err)
	}
	return nil, QueryGraphResult{Data: result}, nil
}

// Start starts the MCP server using stdio transport.
func (s *Server) Start(ctx context.Context) error {
	fmt.Fprintf(os.Stderr, "Starting ChemSafe MCP Server on stdio...\n")
	transport := &mcp.StdioTransport{}
	return s.mcpServer.Run(ctx, transport)
}

// Close cleans up resources.
func (s *Server) Close(ctx context.Context) error {
	s.worker.Stop()
	return nil
}
