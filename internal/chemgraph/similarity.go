package chemgraph

import "sort"

// Similarity criteria accepted by SimilarBy.
const (
	CriterionGHSClass      = "ghs_class"
	CriterionSupplier      = "supplier"
	CriterionHazardProfile = "hazard_profile"
)

// hazardProfileThreshold is the fixed Jaccard cutoff for hazard-profile
// similarity: strictly greater qualifies.
const hazardProfileThreshold = 0.5

// Jaccard returns |A∩B| / |A∪B| over the truthy keys of two hazard-flag
// sets. Two empty sets score 0.0; identical non-empty sets score 1.0.
func Jaccard(a, b map[string]bool) float64 {
	union := map[string]bool{}
	for k, v := range a {
		if v {
			union[k] = true
		}
	}
	intersection := 0
	for k, v := range b {
		if !v {
			continue
		}
		if union[k] {
			intersection++
		}
		union[k] = true
	}
	if len(union) == 0 {
		return 0.0
	}
	return float64(intersection) / float64(len(union))
}

// SimilarBy returns the keys of chemicals similar to key under the given
// criterion: attribute equality for ghs_class and supplier, Jaccard over
// truthy hazard flags (> 0.5) for hazard_profile. The queried chemical is
// never in its own result. Unknown key or criterion yields an empty list.
func (g *Graph) SimilarBy(key, criterion string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	self, ok := g.index[key]
	if !ok {
		return []string{}
	}
	ref := g.nodes[self].Attrs

	matches := []string{}
	for idx, node := range g.nodes {
		if idx == self || node.Attrs.Kind != KindChemical {
			continue
		}
		var match bool
		switch criterion {
		case CriterionGHSClass:
			match = ref.GHSClass != "" && node.Attrs.GHSClass == ref.GHSClass
		case CriterionSupplier:
			match = ref.Supplier != "" && node.Attrs.Supplier == ref.Supplier
		case CriterionHazardProfile:
			match = Jaccard(ref.HazardFlags, node.Attrs.HazardFlags) > hazardProfileThreshold
		}
		if match {
			matches = append(matches, node.Key)
		}
	}
	return matches
}

// ScoredKey pairs a chemical key with a precomputed similarity score.
type ScoredKey struct {
	Key   string  `json:"cas"`
	Score float64 `json:"score"`
}

// SimilarByScore returns the similar_to neighbors of key with a score of at
// least threshold, sorted by score descending (key ascending on ties).
// Sourced from precomputed similarity edges, not ad hoc computation.
func (g *Graph) SimilarByScore(key string, threshold float64) []ScoredKey {
	g.mu.RLock()
	defer g.mu.RUnlock()

	idx, ok := g.index[key]
	if !ok {
		return []ScoredKey{}
	}

	results := []ScoredKey{}
	seen := map[int]bool{}
	for _, e := range g.out[idx] {
		if e.Kind != EdgeSimilarTo || e.Attrs.Score < threshold || seen[e.Dst] {
			continue
		}
		seen[e.Dst] = true
		results = append(results, ScoredKey{Key: g.nodes[e.Dst].Key, Score: e.Attrs.Score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Key < results[j].Key
	})
	return results
}
