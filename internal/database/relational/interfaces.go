// Package relational interfaces for the query surface.
package relational

import "context"

// =============================================================================
// CORE INTERFACES
// =============================================================================

// QueryEngine is the relational execution path for relationship questions:
// closure, clustering and neighborhood answers computed directly against the
// store. *Repo satisfies it.
type QueryEngine interface {
	// TransitiveIncompatibilities computes bounded closure via a recursive query.
	TransitiveIncompatibilities(ctx context.Context, source string, maxDepth int) ([]TransitiveEntry, error)
	// ChemicalClusters returns chemicals with at least minConnections distinct targets.
	ChemicalClusters(ctx context.Context, minConnections int) ([]ClusterRow, error)
	// SharedIncompatibilities intersects the outgoing targets of two chemicals.
	SharedIncompatibilities(ctx context.Context, cas1, cas2 string) ([]SharedRow, error)
	// HazardousClusters filters incompatible pairs by recorded exposure threshold.
	HazardousClusters(ctx context.Context, threshold float64) ([]HazardPair, error)
	// Neighborhood aggregates a chemical lookup with its bounded closure.
	Neighborhood(ctx context.Context, cas string, radius int) (*NeighborhoodResult, error)
}
