package chemgraph

import (
	"context"
	"log/slog"
	"strings"

	"chemsafe/internal/database/relational"
)

// Source is the read contract the builder needs from the relational store.
// *relational.Repo satisfies it.
type Source interface {
	ChemicalRows(ctx context.Context) ([]relational.ChemicalRow, error)
	IncompatibilityRows(ctx context.Context) ([]relational.IncompatibilityRow, error)
	HazardFlagRows(ctx context.Context) ([]relational.HazardFlagRow, error)
	ExposureLimitRows(ctx context.Context) ([]relational.ExposureLimitRow, error)
	ClassificationRows(ctx context.Context) ([]relational.ClassificationRow, error)
	PStatementRows(ctx context.Context) ([]relational.PStatementRow, error)
	GHSRows(ctx context.Context) ([]relational.GHSRow, error)
	ManufacturerRows(ctx context.Context) ([]relational.ManufacturerRow, error)
	ProductFamilyRows(ctx context.Context) ([]relational.ProductFamilyRow, error)
	SimilarityRows(ctx context.Context) ([]relational.SimilarityRow, error)
}

// PhaseResult records the outcome of one build phase.
type PhaseResult struct {
	Name    string `json:"name"`
	Rows    int    `json:"rows"`
	Skipped int    `json:"skipped"`
	Err     string `json:"error,omitempty"`
}

// BuildReport summarizes a full rebuild.
type BuildReport struct {
	Phases    []PhaseResult `json:"phases"`
	Failed    int           `json:"failed_phases"`
	NodeCount int           `json:"node_count"`
	EdgeCount int           `json:"edge_count"`
}

// Build deterministically reconstructs the graph from src. Prior state is
// always cleared first; there is no incremental merge. Phases run in a fixed
// order and are fault-isolated: a phase that fails to read its rows is logged
// and skipped without aborting the phases after it.
func (g *Graph) Build(ctx context.Context, src Source) BuildReport {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.reset()

	phases := []struct {
		name string
		run  func(context.Context, Source) (int, int, error)
	}{
		{"chemical_nodes", g.loadChemicals},
		{"incompatibility_edges", g.loadIncompatibilities},
		{"hazard_flags", g.loadHazardFlags},
		{"hazard_classifications", g.loadClassifications},
		{"p_statements", g.loadPStatements},
		{"ghs_classes", g.loadGHS},
		{"manufacturer_edges", g.loadManufacturers},
		{"product_family_edges", g.loadProductFamilies},
		{"similarity_edges", g.loadSimilarities},
	}

	report := BuildReport{}
	for _, p := range phases {
		rows, skipped, err := p.run(ctx, src)
		result := PhaseResult{Name: p.name, Rows: rows, Skipped: skipped}
		if err != nil {
			result.Err = err.Error()
			report.Failed++
			slog.Error("build phase failed, skipping",
				"component", "chemgraph", "phase", p.name, "error", err)
		}
		report.Phases = append(report.Phases, result)
	}

	report.NodeCount = len(g.nodes)
	report.EdgeCount = g.edgeCount
	slog.Info("graph build complete",
		"component", "chemgraph",
		"nodes", report.NodeCount,
		"edges", report.EdgeCount,
		"failed_phases", report.Failed)
	return report
}

// placeholderKey reports whether a stored chemical key is null-ish and the
// row carrying it should be skipped.
func placeholderKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", "-", "n/a", "na", "none", "null", "unknown":
		return true
	}
	return false
}

func (g *Graph) loadChemicals(ctx context.Context, src Source) (int, int, error) {
	rows, err := src.ChemicalRows(ctx)
	if err != nil {
		return 0, 0, err
	}
	skipped := 0
	for _, row := range rows {
		if placeholderKey(row.CAS) {
			skipped++
			continue
		}
		g.mergeNode(row.CAS, NodeAttrs{
			Kind:            KindChemical,
			Name:            row.Name,
			Formula:         row.Formula,
			MolecularWeight: row.MolecularWeight,
			Supplier:        row.Supplier,
			Confidence:      row.Confidence,
		})
	}
	return len(rows), skipped, nil
}

// loadIncompatibilities mirrors every stored rule: the stored direction plus
// the reverse with the group labels swapped. Stores populated through the
// ingestion convention already hold both directions; mirroring here keeps the
// bidirectional invariant even over partially-loaded data.
func (g *Graph) loadIncompatibilities(ctx context.Context, src Source) (int, int, error) {
	rows, err := src.IncompatibilityRows(ctx)
	if err != nil {
		return 0, 0, err
	}
	skipped := 0
	for _, row := range rows {
		if placeholderKey(row.SourceCAS) || placeholderKey(row.TargetCAS) {
			skipped++
			continue
		}
		if row.SourceCAS == row.TargetCAS {
			// no chemical is incompatible with itself
			skipped++
			continue
		}
		if g.hasIncompatibleEdge(row.SourceCAS, row.TargetCAS, row.RuleCode) {
			skipped++
			continue
		}
		forward := EdgeAttrs{
			RuleCode:      row.RuleCode,
			Source:        row.SourceLabel,
			Justification: row.Justification,
			GroupSource:   row.GroupSource,
			GroupTarget:   row.GroupTarget,
		}
		reverse := forward
		reverse.GroupSource, reverse.GroupTarget = forward.GroupTarget, forward.GroupSource
		g.addEdge(row.SourceCAS, row.TargetCAS, EdgeIncompatibleWith, forward)
		g.addEdge(row.TargetCAS, row.SourceCAS, EdgeIncompatibleWith, reverse)
	}
	return len(rows), skipped, nil
}

// hasIncompatibleEdge reports whether an incompatibility edge with the given
// rule code already exists between the two keys. Keeps mirrored store rows
// from doubling into four edges. Caller holds the write lock.
func (g *Graph) hasIncompatibleEdge(srcKey, dstKey, rule string) bool {
	src, ok := g.index[srcKey]
	if !ok {
		return false
	}
	dst, ok := g.index[dstKey]
	if !ok {
		return false
	}
	for _, e := range g.out[src] {
		if e.Kind == EdgeIncompatibleWith && e.Dst == dst && e.Attrs.RuleCode == rule {
			return true
		}
	}
	return false
}

func (g *Graph) loadHazardFlags(ctx context.Context, src Source) (int, int, error) {
	flags, err := src.HazardFlagRows(ctx)
	if err != nil {
		return 0, 0, err
	}
	skipped := 0
	for _, row := range flags {
		if placeholderKey(row.CAS) {
			skipped++
			continue
		}
		g.mergeNode(row.CAS, NodeAttrs{
			Kind:        KindChemical,
			HazardFlags: map[string]bool{row.Flag: row.Value},
		})
	}

	limits, err := src.ExposureLimitRows(ctx)
	if err != nil {
		return len(flags), skipped, err
	}
	for _, row := range limits {
		if placeholderKey(row.CAS) {
			skipped++
			continue
		}
		g.mergeNode(row.CAS, NodeAttrs{
			Kind: KindChemical,
			IDLH: row.IDLH,
			PEL:  row.PEL,
			REL:  row.REL,
		})
	}
	return len(flags) + len(limits), skipped, nil
}

func (g *Graph) loadClassifications(ctx context.Context, src Source) (int, int, error) {
	rows, err := src.ClassificationRows(ctx)
	if err != nil {
		return 0, 0, err
	}
	skipped := 0
	for _, row := range rows {
		if placeholderKey(row.CAS) || row.Classification == "" {
			skipped++
			continue
		}
		g.mergeNode(row.CAS, NodeAttrs{
			Kind:          KindChemical,
			HazardClasses: []string{row.Classification},
		})
	}
	return len(rows), skipped, nil
}

func (g *Graph) loadPStatements(ctx context.Context, src Source) (int, int, error) {
	rows, err := src.PStatementRows(ctx)
	if err != nil {
		return 0, 0, err
	}
	skipped := 0
	for _, row := range rows {
		if placeholderKey(row.CAS) || row.Code == "" {
			skipped++
			continue
		}
		g.mergeNode(row.CAS, NodeAttrs{
			Kind:        KindChemical,
			PStatements: []string{row.Code},
		})
	}
	return len(rows), skipped, nil
}

func (g *Graph) loadGHS(ctx context.Context, src Source) (int, int, error) {
	rows, err := src.GHSRows(ctx)
	if err != nil {
		return 0, 0, err
	}
	skipped := 0
	for _, row := range rows {
		if placeholderKey(row.CAS) {
			skipped++
			continue
		}
		g.mergeNode(row.CAS, NodeAttrs{
			Kind:     KindChemical,
			GHSClass: row.GHSClass,
			EnvRisk:  row.EnvRisk,
		})
	}
	return len(rows), skipped, nil
}

func (g *Graph) loadManufacturers(ctx context.Context, src Source) (int, int, error) {
	rows, err := src.ManufacturerRows(ctx)
	if err != nil {
		return 0, 0, err
	}
	skipped := 0
	for _, row := range rows {
		if placeholderKey(row.CAS) || row.Manufacturer == "" {
			skipped++
			continue
		}
		mfgKey := ManufacturerKey(row.Manufacturer)
		g.mergeNode(mfgKey, NodeAttrs{Kind: KindManufacturer, Name: row.Manufacturer})
		g.addEdge(row.CAS, mfgKey, EdgeManufacturedBy, EdgeAttrs{})
	}
	return len(rows), skipped, nil
}

func (g *Graph) loadProductFamilies(ctx context.Context, src Source) (int, int, error) {
	rows, err := src.ProductFamilyRows(ctx)
	if err != nil {
		return 0, 0, err
	}
	skipped := 0
	for _, row := range rows {
		if placeholderKey(row.CASA) || placeholderKey(row.CASB) || row.CASA == row.CASB {
			skipped++
			continue
		}
		attrs := EdgeAttrs{Source: row.Manufacturer}
		g.addEdge(row.CASA, row.CASB, EdgeProductFamily, attrs)
		g.addEdge(row.CASB, row.CASA, EdgeProductFamily, attrs)
	}
	return len(rows), skipped, nil
}

func (g *Graph) loadSimilarities(ctx context.Context, src Source) (int, int, error) {
	rows, err := src.SimilarityRows(ctx)
	if err != nil {
		return 0, 0, err
	}
	skipped := 0
	for _, row := range rows {
		if placeholderKey(row.CASA) || placeholderKey(row.CASB) || row.CASA == row.CASB {
			skipped++
			continue
		}
		attrs := EdgeAttrs{Score: row.Score, SimilarityType: row.Type}
		g.addEdge(row.CASA, row.CASB, EdgeSimilarTo, attrs)
		g.addEdge(row.CASB, row.CASA, EdgeSimilarTo, attrs)
	}
	return len(rows), skipped, nil
}
