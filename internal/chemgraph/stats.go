package chemgraph

import "fmt"

// Stats are the basic aggregate measures of the graph.
type Stats struct {
	NodeCount     int              `json:"node_count"`
	EdgeCount     int              `json:"edge_count"`
	ChemicalCount int              `json:"chemical_count"`
	AvgDegree     float64          `json:"avg_degree"`
	Density       float64          `json:"density"`
	EdgeKinds     map[EdgeKind]int `json:"edge_type_histogram"`
}

// EnrichedStats extends Stats with manufacturer count and coverage ratios,
// each expressed as a "covered/total" pair over the chemical population.
type EnrichedStats struct {
	Stats
	ManufacturerCount   int    `json:"manufacturer_count"`
	HazardClassCoverage string `json:"hazard_class_coverage"`
	PStatementCoverage  string `json:"p_statement_coverage"`
	SimilarityCoverage  string `json:"similarity_coverage"`
}

// Stats computes aggregate graph measures. Average degree counts in- plus
// out-degree over all nodes and is 0 for an empty graph; density follows the
// directed formula e/(n·(n−1)) and is 0 when n <= 1.
func (g *Graph) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.statsLocked()
}

func (g *Graph) statsLocked() Stats {
	s := Stats{
		NodeCount: len(g.nodes),
		EdgeCount: g.edgeCount,
		EdgeKinds: map[EdgeKind]int{},
	}
	for _, node := range g.nodes {
		if node.Attrs.Kind == KindChemical {
			s.ChemicalCount++
		}
	}
	for _, edges := range g.out {
		for _, e := range edges {
			s.EdgeKinds[e.Kind]++
		}
	}
	if s.NodeCount > 0 {
		s.AvgDegree = float64(2*s.EdgeCount) / float64(s.NodeCount)
	}
	if s.NodeCount > 1 {
		s.Density = float64(s.EdgeCount) / float64(s.NodeCount*(s.NodeCount-1))
	}
	return s
}

// EnrichedStats extends Stats with manufacturer count and hazard-class,
// P-statement and similarity-link coverage over the chemical population.
func (g *Graph) EnrichedStats() EnrichedStats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	es := EnrichedStats{Stats: g.statsLocked()}

	var withClasses, withStatements, withSimilarity int
	for idx, node := range g.nodes {
		switch node.Attrs.Kind {
		case KindManufacturer:
			es.ManufacturerCount++
			continue
		case KindChemical:
		default:
			continue
		}
		if len(node.Attrs.HazardClasses) > 0 {
			withClasses++
		}
		if len(node.Attrs.PStatements) > 0 {
			withStatements++
		}
		for _, e := range g.out[idx] {
			if e.Kind == EdgeSimilarTo {
				withSimilarity++
				break
			}
		}
	}

	total := es.ChemicalCount
	es.HazardClassCoverage = coverage(withClasses, total)
	es.PStatementCoverage = coverage(withStatements, total)
	es.SimilarityCoverage = coverage(withSimilarity, total)
	return es
}

func coverage(covered, total int) string {
	return fmt.Sprintf("%d/%d", covered, total)
}
