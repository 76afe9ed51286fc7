package chemgraph

// ExportedNode is a point-in-time copy of one node for external consumers.
type ExportedNode struct {
	Key   string
	Attrs NodeAttrs
}

// ExportedEdge is a point-in-time copy of one edge, with endpoints resolved
// back to their keys.
type ExportedEdge struct {
	SrcKey string
	DstKey string
	Kind   EdgeKind
	Attrs  EdgeAttrs
}

// GraphExport is a snapshot of the full graph, safe to hand to slow
// consumers (the Neo4j mirror) without holding the graph lock.
type GraphExport struct {
	Nodes []ExportedNode
	Edges []ExportedEdge
}

// Export copies the current graph contents under the read lock.
func (g *Graph) Export() GraphExport {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ex := GraphExport{
		Nodes: make([]ExportedNode, 0, len(g.nodes)),
		Edges: make([]ExportedEdge, 0, g.edgeCount),
	}
	for _, node := range g.nodes {
		ex.Nodes = append(ex.Nodes, ExportedNode{Key: node.Key, Attrs: node.Attrs})
	}
	for _, edges := range g.out {
		for _, e := range edges {
			ex.Edges = append(ex.Edges, ExportedEdge{
				SrcKey: g.nodes[e.Src].Key,
				DstKey: g.nodes[e.Dst].Key,
				Kind:   e.Kind,
				Attrs:  e.Attrs,
			})
		}
	}
	return ex
}
