package chemgraph

// Hop is one BFS discovery: a reachable chemical and its shortest
// incompatibility-path length from the query source.
type Hop struct {
	Key      string `json:"cas"`
	Distance int    `json:"hop_distance"`
}

// FindIncompatible runs a breadth-first traversal from source restricted to
// incompatible_with edges. Every node reachable within maxDepth hops appears
// exactly once, at its minimum hop distance, in discovery order. Edges of
// other kinds do not influence reachability or distance. An unknown source
// yields an empty list.
func (g *Graph) FindIncompatible(source string, maxDepth int) []Hop {
	if maxDepth < 1 {
		maxDepth = 1
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	start, ok := g.index[source]
	if !ok {
		return []Hop{}
	}

	results := []Hop{}
	dist := map[int]int{start: 0}
	frontier := []int{start}

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []int
		for _, idx := range frontier {
			for _, e := range g.out[idx] {
				if e.Kind != EdgeIncompatibleWith {
					continue
				}
				if _, seen := dist[e.Dst]; seen {
					continue
				}
				dist[e.Dst] = depth
				next = append(next, e.Dst)
				results = append(results, Hop{Key: g.nodes[e.Dst].Key, Distance: depth})
			}
		}
		frontier = next
	}
	return results
}

// FindChains enumerates reaction chains from source by depth-first search
// over incompatible_with edges. Every time the current path grows by one
// edge the resulting prefix is emitted, so the output holds every discovered
// chain, not only maximal ones. A node already on the current path is never
// revisited, which rules out cycles; a chain never exceeds maxDepth edges.
// An unknown source yields an empty list.
func (g *Graph) FindChains(source string, maxDepth int) [][]string {
	if maxDepth < 1 {
		maxDepth = 1
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	start, ok := g.index[source]
	if !ok {
		return [][]string{}
	}

	chains := [][]string{}
	path := []int{start}
	onPath := map[int]bool{start: true}

	var extend func()
	extend = func() {
		if len(path)-1 >= maxDepth {
			return
		}
		tip := path[len(path)-1]
		visitedHere := map[int]bool{}
		for _, e := range g.out[tip] {
			if e.Kind != EdgeIncompatibleWith || onPath[e.Dst] || visitedHere[e.Dst] {
				continue
			}
			visitedHere[e.Dst] = true

			path = append(path, e.Dst)
			onPath[e.Dst] = true

			chain := make([]string, len(path))
			for i, idx := range path {
				chain[i] = g.nodes[idx].Key
			}
			chains = append(chains, chain)

			extend()

			onPath[e.Dst] = false
			path = path[:len(path)-1]
		}
	}
	extend()
	return chains
}
