package relational

import "time"

// =============================================================================
// ROW MODELS
// =============================================================================
// One struct per table. Optional numerics are pointers so a missing value in
// the store never turns into a sentinel downstream.

// ChemicalRow is one chemical attribute record, keyed by CAS number.
type ChemicalRow struct {
	CAS             string
	Name            string
	Formula         string
	MolecularWeight *float64
	Supplier        string
	Confidence      *float64
	CreatedAt       time.Time
}

// IncompatibilityRow is one directed incompatibility rule. Ingestion writes
// these in mirrored pairs (A->B and B->A with the group labels swapped), so a
// fully-loaded store carries both directions of every relationship.
type IncompatibilityRow struct {
	SourceCAS     string
	TargetCAS     string
	RuleCode      string
	SourceLabel   string
	Justification string
	GroupSource   string
	GroupTarget   string
}

// HazardFlagRow is one boolean hazard flag for a chemical.
type HazardFlagRow struct {
	CAS   string
	Flag  string
	Value bool
}

// ExposureLimitRow carries the recorded exposure thresholds for a chemical.
// Unrecorded limits stay nil.
type ExposureLimitRow struct {
	CAS  string
	IDLH *float64
	PEL  *float64
	REL  *float64
}

// ClassificationRow is one hazard-classification entry (H-statement style).
type ClassificationRow struct {
	CAS            string
	Classification string
}

// PStatementRow is one precautionary-statement code.
type PStatementRow struct {
	CAS  string
	Code string
}

// GHSRow carries the GHS class and environmental-risk flag for a chemical.
type GHSRow struct {
	CAS      string
	GHSClass string
	EnvRisk  bool
}

// ManufacturerRow links a chemical to a manufacturer by name.
type ManufacturerRow struct {
	CAS          string
	Manufacturer string
}

// ProductFamilyRow marks two chemicals as products of the same manufacturer.
type ProductFamilyRow struct {
	CASA         string
	CASB         string
	Manufacturer string
}

// SimilarityRow is one precomputed similarity score between two chemicals.
// Scores are in [0,1]; Type tags how the score was computed upstream.
type SimilarityRow struct {
	CASA  string
	CASB  string
	Score float64
	Type  string
}
