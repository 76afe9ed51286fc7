package database

import (
	"context"

	"chemsafe/internal/chemgraph"
	"chemsafe/internal/database/relational"
)

// RelationalClosure adapts the relational query engine to the
// chemgraph.ClosureProvider contract, so the recursive-query path and the
// in-memory traversal path are interchangeable strategies.
type RelationalClosure struct {
	Repo *relational.Repo
}

var _ chemgraph.ClosureProvider = RelationalClosure{}

func (c RelationalClosure) TransitiveIncompatibilities(ctx context.Context, source string, maxDepth int) ([]chemgraph.ClosureEntry, error) {
	rows, err := c.Repo.TransitiveIncompatibilities(ctx, source, maxDepth)
	if err != nil {
		return nil, err
	}
	out := make([]chemgraph.ClosureEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, chemgraph.ClosureEntry{
			Target:        row.TargetCAS,
			Rule:          row.RuleCode,
			Source:        row.SourceLabel,
			Justification: row.Justification,
			Depth:         row.Depth,
		})
	}
	return out, nil
}
