package chemgraph

import (
	"context"
	"sort"
)

// ClosureEntry is one row of a transitive-incompatibility answer: the
// reached chemical, the rule metadata of the edge that reached it, and the
// hop depth.
type ClosureEntry struct {
	Target        string `json:"cas"`
	Rule          string `json:"rule"`
	Source        string `json:"source"`
	Justification string `json:"justification"`
	Depth         int    `json:"depth"`
}

// ClosureProvider computes bounded transitive incompatibility closure.
// Two independent implementations exist: the in-memory graph here and the
// relational engine's recursive query. Both must agree on depth and ordering
// for the same dataset.
type ClosureProvider interface {
	TransitiveIncompatibilities(ctx context.Context, source string, maxDepth int) ([]ClosureEntry, error)
}

// TransitiveIncompatibilities is the in-memory ClosureProvider. Each
// reachable chemical appears once at its minimum depth, ordered by
// (depth ascending, target ascending). When parallel edges reach a target at
// the same depth, the lexicographically smallest (rule, source,
// justification) triple wins, which keeps attribution deterministic and
// aligned with the relational engine.
func (g *Graph) TransitiveIncompatibilities(ctx context.Context, source string, maxDepth int) ([]ClosureEntry, error) {
	if maxDepth < 1 {
		maxDepth = 1
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	start, ok := g.index[source]
	if !ok {
		return []ClosureEntry{}, nil
	}

	entries := map[int]ClosureEntry{}
	dist := map[int]int{start: 0}
	frontier := []int{start}

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// collect the frontier for the next level first so parallel edges at
		// the current level can compete on attribution
		var next []int
		for _, idx := range frontier {
			for _, e := range g.out[idx] {
				if e.Kind != EdgeIncompatibleWith {
					continue
				}
				if d, seen := dist[e.Dst]; seen && d < depth {
					continue
				}
				candidate := ClosureEntry{
					Target:        g.nodes[e.Dst].Key,
					Rule:          e.Attrs.RuleCode,
					Source:        e.Attrs.Source,
					Justification: e.Attrs.Justification,
					Depth:         depth,
				}
				if _, seen := dist[e.Dst]; !seen {
					dist[e.Dst] = depth
					next = append(next, e.Dst)
					entries[e.Dst] = candidate
					continue
				}
				if existing := entries[e.Dst]; lessAttribution(candidate, existing) {
					entries[e.Dst] = candidate
				}
			}
		}
		frontier = next
	}

	out := make([]ClosureEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Depth != out[j].Depth {
			return out[i].Depth < out[j].Depth
		}
		return out[i].Target < out[j].Target
	})
	return out, nil
}

func lessAttribution(a, b ClosureEntry) bool {
	if a.Rule != b.Rule {
		return a.Rule < b.Rule
	}
	if a.Source != b.Source {
		return a.Source < b.Source
	}
	return a.Justification < b.Justification
}
