// Package chemgraph holds the in-memory chemical relationship graph: a
// directed multigraph of chemicals and manufacturers built from the
// relational store, plus the traversal, similarity and statistics operations
// that run over it.
//
// Nodes live in an arena addressed by stable integer indices with a
// key-to-index lookup table; edges are (src, dst, kind, attrs) tuples in an
// adjacency list keyed by the source index. No node owns another, so cyclic
// relationships cost nothing structurally.
//
// Concurrency: a Graph carries a RWMutex. Build replaces all state under the
// write lock; every query operation takes the read lock, so reads may run
// concurrently with each other but never with a build.
package chemgraph

import "sync"

// Node is an arena entry: a stable key plus its attribute bag.
type Node struct {
	Key   string
	Attrs NodeAttrs
}

// Edge is a directed, attributed edge between two arena indices. The same
// ordered pair may appear more than once (multigraph).
type Edge struct {
	Src   int
	Dst   int
	Kind  EdgeKind
	Attrs EdgeAttrs
}

// Graph is the in-memory chemical relationship graph. The zero value is not
// usable; construct with New.
type Graph struct {
	mu sync.RWMutex

	nodes []Node
	index map[string]int
	out   [][]Edge // adjacency, aligned with nodes

	edgeCount int
}

// New returns an empty graph. It stays empty until Build runs.
func New() *Graph {
	return &Graph{
		index: make(map[string]int),
	}
}

// reset drops all nodes and edges. Caller holds the write lock.
func (g *Graph) reset() {
	g.nodes = nil
	g.out = nil
	g.index = make(map[string]int)
	g.edgeCount = 0
}

// ensureNode returns the arena index for key, creating a minimal chemical
// node if the key is new. Caller holds the write lock.
func (g *Graph) ensureNode(key string) int {
	if idx, ok := g.index[key]; ok {
		return idx
	}
	idx := len(g.nodes)
	g.nodes = append(g.nodes, Node{Key: key, Attrs: NodeAttrs{Kind: KindChemical}})
	g.out = append(g.out, nil)
	g.index[key] = idx
	return idx
}

// mergeNode creates or augments a node. Re-adding a key merges attributes
// additively, it never destroys existing ones. Caller holds the write lock.
func (g *Graph) mergeNode(key string, attrs NodeAttrs) int {
	idx := g.ensureNode(key)
	g.nodes[idx].Attrs.merge(attrs)
	return idx
}

// addEdge appends one directed edge, creating missing endpoints on demand.
// Caller holds the write lock.
func (g *Graph) addEdge(srcKey, dstKey string, kind EdgeKind, attrs EdgeAttrs) {
	src := g.ensureNode(srcKey)
	dst := g.ensureNode(dstKey)
	g.out[src] = append(g.out[src], Edge{Src: src, Dst: dst, Kind: kind, Attrs: attrs})
	g.edgeCount++
}

// NodeCount returns the number of nodes currently in the graph.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// EdgeCount returns the number of directed edges currently in the graph.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edgeCount
}

// Node returns the attribute bag for key and whether the key exists.
func (g *Graph) Node(key string) (NodeAttrs, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	idx, ok := g.index[key]
	if !ok {
		return NodeAttrs{}, false
	}
	return g.nodes[idx].Attrs, true
}

// HasNode reports whether key is present.
func (g *Graph) HasNode(key string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.index[key]
	return ok
}

// ManufacturerKey derives the node key for a manufacturer name.
func ManufacturerKey(name string) string {
	return "mfg:" + name
}
