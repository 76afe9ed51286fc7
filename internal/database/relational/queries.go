package relational

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// The relational query engine answers closure, clustering and neighborhood
// questions directly against the store with recursive and grouped-aggregate
// queries, without materializing the in-memory graph. It must agree with the
// in-memory traversal on hop-distance semantics for the same dataset.

// TransitiveEntry is one row of a recursive closure answer.
type TransitiveEntry struct {
	TargetCAS     string `json:"cas"`
	RuleCode      string `json:"rule"`
	SourceLabel   string `json:"source"`
	Justification string `json:"justification"`
	Depth         int    `json:"depth"`
}

// ClusterRow is one qualifying chemical from the clustering query.
type ClusterRow struct {
	CAS             string   `json:"cas"`
	ConnectionCount int      `json:"connection_count"`
	ConnectedCAS    []string `json:"connected_cas"`
}

// SharedRow is one chemical incompatible with both inputs of a
// shared-incompatibility query.
type SharedRow struct {
	SharedCAS string `json:"cas"`
	Rule1     string `json:"rule1"`
	Rule2     string `json:"rule2"`
	Source1   string `json:"source1"`
	Source2   string `json:"source2"`
}

// HazardPair is one incompatible pair whose endpoints both carry a recorded
// exposure threshold at or above the query threshold.
type HazardPair struct {
	CASA     string  `json:"cas_a"`
	CASB     string  `json:"cas_b"`
	IDLHA    float64 `json:"idlh_a"`
	IDLHB    float64 `json:"idlh_b"`
	RuleCode string  `json:"rule"`
}

// NeighborhoodResult aggregates a center chemical with everything reachable
// within a radius of incompatibility hops.
type NeighborhoodResult struct {
	Center     *ChemicalRow      `json:"center"`
	InRadius   []string          `json:"chemicals_in_radius"`
	Transitive []TransitiveEntry `json:"transitive_incompatibilities"`
}

// TransitiveIncompatibilities computes the bounded transitive
// incompatibility closure of source with a recursive query. Each reachable
// chemical appears once at its minimum depth, ordered by (depth ascending,
// target ascending); ties between parallel rules at the same depth resolve
// to the smallest (rule, source, justification) triple, matching the
// in-memory provider.
func (r *Repo) TransitiveIncompatibilities(ctx context.Context, source string, maxDepth int) ([]TransitiveEntry, error) {
	if maxDepth < 1 {
		maxDepth = 1
	}

	rows, err := r.db.QueryContext(ctx, `
		WITH RECURSIVE closure(cas, rule_code, source_label, justification, depth, path) AS (
			SELECT r.cas_target, r.rule_code,
			       COALESCE(r.source_label, ''), COALESCE(r.justification, ''),
			       1,
			       '|' || CAST(? AS VARCHAR) || '|' || r.cas_target || '|'
			FROM incompatibility_rules r
			WHERE r.cas_source = ?
		  UNION
			SELECT r.cas_target, r.rule_code,
			       COALESCE(r.source_label, ''), COALESCE(r.justification, ''),
			       c.depth + 1,
			       c.path || r.cas_target || '|'
			FROM closure c
			JOIN incompatibility_rules r ON r.cas_source = c.cas
			WHERE c.depth < ?
			  AND c.path NOT LIKE '%|' || r.cas_target || '|%'
		)
		SELECT cas, rule_code, source_label, justification, depth FROM (
			SELECT cas, rule_code, source_label, justification, depth,
			       ROW_NUMBER() OVER (
			           PARTITION BY cas
			           ORDER BY depth, rule_code, source_label, justification) AS rn
			FROM closure
			WHERE cas <> ?
		)
		WHERE rn = 1
		ORDER BY depth, cas`,
		source, source, maxDepth, source)
	if err != nil {
		return nil, fmt.Errorf("transitive closure query: %w", err)
	}
	defer rows.Close()

	out := []TransitiveEntry{}
	for rows.Next() {
		var e TransitiveEntry
		if err := rows.Scan(&e.TargetCAS, &e.RuleCode, &e.SourceLabel, &e.Justification, &e.Depth); err != nil {
			return nil, fmt.Errorf("scan closure row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ChemicalClusters returns every chemical whose distinct outgoing
// incompatibility target count is at least minConnections, sorted by
// connection count descending.
func (r *Repo) ChemicalClusters(ctx context.Context, minConnections int) ([]ClusterRow, error) {
	if minConnections < 1 {
		minConnections = 1
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT cas_source,
		       COUNT(DISTINCT cas_target) AS cnt,
		       STRING_AGG(DISTINCT cas_target, ',' ORDER BY cas_target) AS targets
		FROM incompatibility_rules
		GROUP BY cas_source
		HAVING COUNT(DISTINCT cas_target) >= ?
		ORDER BY cnt DESC, cas_source`,
		minConnections)
	if err != nil {
		return nil, fmt.Errorf("cluster query: %w", err)
	}
	defer rows.Close()

	out := []ClusterRow{}
	for rows.Next() {
		var row ClusterRow
		var targets string
		if err := rows.Scan(&row.CAS, &row.ConnectionCount, &targets); err != nil {
			return nil, fmt.Errorf("scan cluster row: %w", err)
		}
		if targets != "" {
			row.ConnectedCAS = strings.Split(targets, ",")
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// SharedIncompatibilities returns the chemicals incompatible with both cas1
// and cas2: the intersection of their outgoing incompatibility targets,
// excluding the two inputs themselves.
func (r *Repo) SharedIncompatibilities(ctx context.Context, cas1, cas2 string) ([]SharedRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT r1.cas_target,
		       r1.rule_code, r2.rule_code,
		       COALESCE(r1.source_label, ''), COALESCE(r2.source_label, '')
		FROM incompatibility_rules r1
		JOIN incompatibility_rules r2 ON r1.cas_target = r2.cas_target
		WHERE r1.cas_source = ? AND r2.cas_source = ?
		  AND r1.cas_target NOT IN (?, ?)
		ORDER BY r1.cas_target`,
		cas1, cas2, cas1, cas2)
	if err != nil {
		return nil, fmt.Errorf("shared incompatibility query: %w", err)
	}
	defer rows.Close()

	out := []SharedRow{}
	for rows.Next() {
		var row SharedRow
		if err := rows.Scan(&row.SharedCAS, &row.Rule1, &row.Rule2, &row.Source1, &row.Source2); err != nil {
			return nil, fmt.Errorf("scan shared row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// HazardousClusters returns incompatible pairs where both endpoints have a
// recorded IDLH threshold at or above threshold. Pure join-and-filter, no
// traversal depth. Pairs are reported once with the smaller key first.
//
// Threshold direction follows the reference convention (higher recorded
// value qualifies); see DESIGN.md for the open question on IDLH semantics.
func (r *Repo) HazardousClusters(ctx context.Context, threshold float64) ([]HazardPair, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT r.cas_source, r.cas_target, e1.idlh, e2.idlh, r.rule_code
		FROM incompatibility_rules r
		JOIN exposure_limits e1 ON e1.cas = r.cas_source
		JOIN exposure_limits e2 ON e2.cas = r.cas_target
		WHERE e1.idlh IS NOT NULL AND e2.idlh IS NOT NULL
		  AND e1.idlh >= ? AND e2.idlh >= ?
		  AND r.cas_source < r.cas_target
		ORDER BY r.cas_source, r.cas_target`,
		threshold, threshold)
	if err != nil {
		return nil, fmt.Errorf("hazardous cluster query: %w", err)
	}
	defer rows.Close()

	out := []HazardPair{}
	for rows.Next() {
		var row HazardPair
		if err := rows.Scan(&row.CASA, &row.CASB, &row.IDLHA, &row.IDLHB, &row.RuleCode); err != nil {
			return nil, fmt.Errorf("scan hazardous pair: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Neighborhood aggregates a chemical lookup with its bounded transitive
// incompatibilities. An unknown key yields a result with a nil center and
// empty collections.
func (r *Repo) Neighborhood(ctx context.Context, cas string, radius int) (*NeighborhoodResult, error) {
	result := &NeighborhoodResult{
		InRadius:   []string{},
		Transitive: []TransitiveEntry{},
	}

	center, err := r.GetChemical(ctx, cas)
	if err != nil {
		return nil, err
	}
	result.Center = center

	transitive, err := r.TransitiveIncompatibilities(ctx, cas, radius)
	if err != nil {
		return nil, err
	}
	result.Transitive = transitive
	for _, e := range transitive {
		result.InRadius = append(result.InRadius, e.TargetCAS)
	}
	return result, nil
}

// GetChemical looks up one chemical attribute row. A missing key returns
// (nil, nil), not an error.
func (r *Repo) GetChemical(ctx context.Context, cas string) (*ChemicalRow, error) {
	var row ChemicalRow
	var name, formula, supplier sql.NullString
	var weight, confidence sql.NullFloat64
	err := r.db.QueryRowContext(ctx, `
		SELECT cas, name, formula, molecular_weight, supplier, confidence, created_at
		FROM chemicals WHERE cas = ?`, cas).
		Scan(&row.CAS, &name, &formula, &weight, &supplier, &confidence, &row.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chemical %s: %w", cas, err)
	}
	row.Name = name.String
	row.Formula = formula.String
	row.Supplier = supplier.String
	row.MolecularWeight = floatPtr(weight)
	row.Confidence = floatPtr(confidence)
	return &row, nil
}
