package output

import (
	"context"
	"fmt"

	"chemsafe/internal/chemgraph"
	"chemsafe/internal/hazard"
)

// RefreshPayload is the final data object produced by one refresh cycle,
// ready for reporting and for the graph-database mirror.
type RefreshPayload struct {
	Build       chemgraph.BuildReport
	Stats       chemgraph.EnrichedStats
	Assessments []hazard.Assessment
	Export      chemgraph.GraphExport
}

// RunRefresh executes the full refresh pipeline: Build -> Stats -> Assess ->
// Bundle. The build itself is fault-isolated per phase; RunRefresh only
// fails when the graph could not be populated at all.
func RunRefresh(ctx context.Context, src chemgraph.Source, g *chemgraph.Graph, assessor *hazard.Service) (*RefreshPayload, error) {
	build := g.Build(ctx, src)
	if build.Failed == len(build.Phases) {
		return nil, fmt.Errorf("all %d build phases failed", build.Failed)
	}

	payload := &RefreshPayload{
		Build:  build,
		Stats:  g.EnrichedStats(),
		Export: g.Export(),
	}

	if assessor != nil {
		for _, node := range payload.Export.Nodes {
			if node.Attrs.Kind != chemgraph.KindChemical {
				continue
			}
			payload.Assessments = append(payload.Assessments, assessor.Assess(node.Key, node.Attrs))
		}
	}
	return payload, nil
}
