// Lightweight "ORM-ish" layer (models + repo methods) for the chemical-safety
// relationship tables in DuckDB.
//
// Notes:
//   - Relationship tables are append-only; chemicals and per-chemical
//     singletons (exposure limits, GHS class) upsert.
//   - incompatibility_rules holds directed rows. The ingestion convention is
//     mirrored pairs: InsertIncompatibility writes A->B and B->A with the
//     group labels swapped, so directional queries see both directions.
//   - product_family_links and similarity_scores hold one row per unordered
//     pair; the insert normalizes key order.
//
// Driver: github.com/marcboeker/go-duckdb
package relational

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// =============================================================================
// SCHEMA SQL
// =============================================================================

const SchemaSQL = `
CREATE TABLE IF NOT EXISTS chemicals (
  cas               VARCHAR PRIMARY KEY,
  name              VARCHAR,
  formula           VARCHAR,
  molecular_weight  DOUBLE,
  supplier          VARCHAR,
  confidence        DOUBLE,
  created_at        TIMESTAMP NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS incompatibility_rules (
  cas_source     VARCHAR NOT NULL,
  cas_target     VARCHAR NOT NULL,
  rule_code      VARCHAR NOT NULL,
  source_label   VARCHAR,
  justification  VARCHAR,
  group_source   VARCHAR,
  group_target   VARCHAR
);

CREATE TABLE IF NOT EXISTS hazard_flags (
  cas    VARCHAR NOT NULL,
  flag   VARCHAR NOT NULL,
  value  BOOLEAN NOT NULL,
  UNIQUE(cas, flag)
);

CREATE TABLE IF NOT EXISTS exposure_limits (
  cas   VARCHAR PRIMARY KEY,
  idlh  DOUBLE,
  pel   DOUBLE,
  rel   DOUBLE
);

CREATE TABLE IF NOT EXISTS hazard_classifications (
  cas             VARCHAR NOT NULL,
  classification  VARCHAR NOT NULL,
  UNIQUE(cas, classification)
);

CREATE TABLE IF NOT EXISTS p_statements (
  cas   VARCHAR NOT NULL,
  code  VARCHAR NOT NULL,
  UNIQUE(cas, code)
);

CREATE TABLE IF NOT EXISTS ghs_classes (
  cas                 VARCHAR PRIMARY KEY,
  ghs_class           VARCHAR,
  environmental_risk  BOOLEAN NOT NULL DEFAULT false
);

CREATE TABLE IF NOT EXISTS manufacturer_links (
  cas           VARCHAR NOT NULL,
  manufacturer  VARCHAR NOT NULL,
  UNIQUE(cas, manufacturer)
);

CREATE TABLE IF NOT EXISTS product_family_links (
  cas_a         VARCHAR NOT NULL,
  cas_b         VARCHAR NOT NULL,
  manufacturer  VARCHAR,
  UNIQUE(cas_a, cas_b)
);

CREATE TABLE IF NOT EXISTS similarity_scores (
  cas_a            VARCHAR NOT NULL,
  cas_b            VARCHAR NOT NULL,
  score            DOUBLE NOT NULL,
  similarity_type  VARCHAR,
  UNIQUE(cas_a, cas_b, similarity_type)
);
`

// =============================================================================
// REPO
// =============================================================================

// Repo wraps a sql.DB with typed access to the chemical-safety tables.
type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Close() error {
	return nil // the DuckDBClient owns the connection
}

// Migrate creates or updates the schema.
func (r *Repo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, SchemaSQL); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// =============================================================================
// INSERTS (fixtures and the external ingestion pipeline)
// =============================================================================

// UpsertChemical inserts or updates one chemical attribute row.
func (r *Repo) UpsertChemical(ctx context.Context, row ChemicalRow) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chemicals (cas, name, formula, molecular_weight, supplier, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (cas) DO UPDATE SET
			name = COALESCE(excluded.name, chemicals.name),
			formula = COALESCE(excluded.formula, chemicals.formula),
			molecular_weight = COALESCE(excluded.molecular_weight, chemicals.molecular_weight),
			supplier = COALESCE(excluded.supplier, chemicals.supplier),
			confidence = COALESCE(excluded.confidence, chemicals.confidence)`,
		row.CAS, nullEmpty(row.Name), nullEmpty(row.Formula), nullFloatPtr(row.MolecularWeight),
		nullEmpty(row.Supplier), nullFloatPtr(row.Confidence), time.Now())
	if err != nil {
		return fmt.Errorf("upsert chemical %s: %w", row.CAS, err)
	}
	return nil
}

// InsertIncompatibility writes the mirrored pair of directed rule rows.
func (r *Repo) InsertIncompatibility(ctx context.Context, row IncompatibilityRow) error {
	const stmt = `
		INSERT INTO incompatibility_rules
			(cas_source, cas_target, rule_code, source_label, justification, group_source, group_target)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, stmt,
		row.SourceCAS, row.TargetCAS, row.RuleCode, nullEmpty(row.SourceLabel),
		nullEmpty(row.Justification), nullEmpty(row.GroupSource), nullEmpty(row.GroupTarget)); err != nil {
		return fmt.Errorf("insert incompatibility %s->%s: %w", row.SourceCAS, row.TargetCAS, err)
	}
	if _, err := r.db.ExecContext(ctx, stmt,
		row.TargetCAS, row.SourceCAS, row.RuleCode, nullEmpty(row.SourceLabel),
		nullEmpty(row.Justification), nullEmpty(row.GroupTarget), nullEmpty(row.GroupSource)); err != nil {
		return fmt.Errorf("insert incompatibility mirror %s->%s: %w", row.TargetCAS, row.SourceCAS, err)
	}
	return nil
}

// InsertIncompatibilityDirected writes a single directed rule row without the
// mirror. Used by fixtures that model directional store contents.
func (r *Repo) InsertIncompatibilityDirected(ctx context.Context, row IncompatibilityRow) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO incompatibility_rules
			(cas_source, cas_target, rule_code, source_label, justification, group_source, group_target)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		row.SourceCAS, row.TargetCAS, row.RuleCode, nullEmpty(row.SourceLabel),
		nullEmpty(row.Justification), nullEmpty(row.GroupSource), nullEmpty(row.GroupTarget))
	if err != nil {
		return fmt.Errorf("insert incompatibility %s->%s: %w", row.SourceCAS, row.TargetCAS, err)
	}
	return nil
}

// UpsertHazardFlag records one boolean hazard flag.
func (r *Repo) UpsertHazardFlag(ctx context.Context, row HazardFlagRow) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO hazard_flags (cas, flag, value) VALUES (?, ?, ?)
		ON CONFLICT (cas, flag) DO UPDATE SET value = excluded.value`,
		row.CAS, row.Flag, row.Value)
	if err != nil {
		return fmt.Errorf("upsert hazard flag %s/%s: %w", row.CAS, row.Flag, err)
	}
	return nil
}

// UpsertExposureLimits records the exposure thresholds for a chemical.
// Nil limits stay NULL; they are never written as sentinel values.
func (r *Repo) UpsertExposureLimits(ctx context.Context, row ExposureLimitRow) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO exposure_limits (cas, idlh, pel, rel) VALUES (?, ?, ?, ?)
		ON CONFLICT (cas) DO UPDATE SET
			idlh = COALESCE(excluded.idlh, exposure_limits.idlh),
			pel  = COALESCE(excluded.pel, exposure_limits.pel),
			rel  = COALESCE(excluded.rel, exposure_limits.rel)`,
		row.CAS, nullFloatPtr(row.IDLH), nullFloatPtr(row.PEL), nullFloatPtr(row.REL))
	if err != nil {
		return fmt.Errorf("upsert exposure limits %s: %w", row.CAS, err)
	}
	return nil
}

// InsertClassification records one hazard-classification entry.
func (r *Repo) InsertClassification(ctx context.Context, row ClassificationRow) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO hazard_classifications (cas, classification) VALUES (?, ?)
		ON CONFLICT (cas, classification) DO NOTHING`,
		row.CAS, row.Classification)
	if err != nil {
		return fmt.Errorf("insert classification %s: %w", row.CAS, err)
	}
	return nil
}

// InsertPStatement records one precautionary-statement code.
func (r *Repo) InsertPStatement(ctx context.Context, row PStatementRow) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO p_statements (cas, code) VALUES (?, ?)
		ON CONFLICT (cas, code) DO NOTHING`,
		row.CAS, row.Code)
	if err != nil {
		return fmt.Errorf("insert p-statement %s: %w", row.CAS, err)
	}
	return nil
}

// UpsertGHSClass records the GHS class and environmental-risk flag.
func (r *Repo) UpsertGHSClass(ctx context.Context, row GHSRow) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ghs_classes (cas, ghs_class, environmental_risk) VALUES (?, ?, ?)
		ON CONFLICT (cas) DO UPDATE SET
			ghs_class = excluded.ghs_class,
			environmental_risk = excluded.environmental_risk`,
		row.CAS, nullEmpty(row.GHSClass), row.EnvRisk)
	if err != nil {
		return fmt.Errorf("upsert ghs class %s: %w", row.CAS, err)
	}
	return nil
}

// InsertManufacturerLink records one chemical-manufacturer link.
func (r *Repo) InsertManufacturerLink(ctx context.Context, row ManufacturerRow) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO manufacturer_links (cas, manufacturer) VALUES (?, ?)
		ON CONFLICT (cas, manufacturer) DO NOTHING`,
		row.CAS, row.Manufacturer)
	if err != nil {
		return fmt.Errorf("insert manufacturer link %s: %w", row.CAS, err)
	}
	return nil
}

// InsertProductFamily records one product-family pair, normalized so the
// lexicographically smaller key comes first.
func (r *Repo) InsertProductFamily(ctx context.Context, row ProductFamilyRow) error {
	a, b := row.CASA, row.CASB
	if b < a {
		a, b = b, a
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO product_family_links (cas_a, cas_b, manufacturer) VALUES (?, ?, ?)
		ON CONFLICT (cas_a, cas_b) DO NOTHING`,
		a, b, nullEmpty(row.Manufacturer))
	if err != nil {
		return fmt.Errorf("insert product family %s/%s: %w", a, b, err)
	}
	return nil
}

// InsertSimilarity records one precomputed similarity pair, normalized so
// the lexicographically smaller key comes first.
func (r *Repo) InsertSimilarity(ctx context.Context, row SimilarityRow) error {
	a, b := row.CASA, row.CASB
	if b < a {
		a, b = b, a
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO similarity_scores (cas_a, cas_b, score, similarity_type) VALUES (?, ?, ?, ?)
		ON CONFLICT (cas_a, cas_b, similarity_type) DO UPDATE SET score = excluded.score`,
		a, b, row.Score, nullEmpty(row.Type))
	if err != nil {
		return fmt.Errorf("insert similarity %s/%s: %w", a, b, err)
	}
	return nil
}

// =============================================================================
// PHASE READS (the graph builder's Source contract)
// =============================================================================

func (r *Repo) ChemicalRows(ctx context.Context) ([]ChemicalRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT cas, name, formula, molecular_weight, supplier, confidence, created_at
		FROM chemicals ORDER BY cas`)
	if err != nil {
		return nil, fmt.Errorf("query chemicals: %w", err)
	}
	defer rows.Close()

	out := []ChemicalRow{}
	for rows.Next() {
		var row ChemicalRow
		var name, formula, supplier sql.NullString
		var weight, confidence sql.NullFloat64
		if err := rows.Scan(&row.CAS, &name, &formula, &weight, &supplier, &confidence, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chemical: %w", err)
		}
		row.Name = name.String
		row.Formula = formula.String
		row.Supplier = supplier.String
		row.MolecularWeight = floatPtr(weight)
		row.Confidence = floatPtr(confidence)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *Repo) IncompatibilityRows(ctx context.Context) ([]IncompatibilityRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT cas_source, cas_target, rule_code, source_label, justification, group_source, group_target
		FROM incompatibility_rules ORDER BY cas_source, cas_target, rule_code`)
	if err != nil {
		return nil, fmt.Errorf("query incompatibility rules: %w", err)
	}
	defer rows.Close()

	out := []IncompatibilityRow{}
	for rows.Next() {
		var row IncompatibilityRow
		var label, just, gs, gt sql.NullString
		if err := rows.Scan(&row.SourceCAS, &row.TargetCAS, &row.RuleCode, &label, &just, &gs, &gt); err != nil {
			return nil, fmt.Errorf("scan incompatibility rule: %w", err)
		}
		row.SourceLabel = label.String
		row.Justification = just.String
		row.GroupSource = gs.String
		row.GroupTarget = gt.String
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *Repo) HazardFlagRows(ctx context.Context) ([]HazardFlagRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT cas, flag, value FROM hazard_flags ORDER BY cas, flag`)
	if err != nil {
		return nil, fmt.Errorf("query hazard flags: %w", err)
	}
	defer rows.Close()

	out := []HazardFlagRow{}
	for rows.Next() {
		var row HazardFlagRow
		if err := rows.Scan(&row.CAS, &row.Flag, &row.Value); err != nil {
			return nil, fmt.Errorf("scan hazard flag: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *Repo) ExposureLimitRows(ctx context.Context) ([]ExposureLimitRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT cas, idlh, pel, rel FROM exposure_limits ORDER BY cas`)
	if err != nil {
		return nil, fmt.Errorf("query exposure limits: %w", err)
	}
	defer rows.Close()

	out := []ExposureLimitRow{}
	for rows.Next() {
		var row ExposureLimitRow
		var idlh, pel, rel sql.NullFloat64
		if err := rows.Scan(&row.CAS, &idlh, &pel, &rel); err != nil {
			return nil, fmt.Errorf("scan exposure limit: %w", err)
		}
		row.IDLH = floatPtr(idlh)
		row.PEL = floatPtr(pel)
		row.REL = floatPtr(rel)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *Repo) ClassificationRows(ctx context.Context) ([]ClassificationRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT cas, classification FROM hazard_classifications ORDER BY cas, classification`)
	if err != nil {
		return nil, fmt.Errorf("query classifications: %w", err)
	}
	defer rows.Close()

	out := []ClassificationRow{}
	for rows.Next() {
		var row ClassificationRow
		if err := rows.Scan(&row.CAS, &row.Classification); err != nil {
			return nil, fmt.Errorf("scan classification: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *Repo) PStatementRows(ctx context.Context) ([]PStatementRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT cas, code FROM p_statements ORDER BY cas, code`)
	if err != nil {
		return nil, fmt.Errorf("query p-statements: %w", err)
	}
	defer rows.Close()

	out := []PStatementRow{}
	for rows.Next() {
		var row PStatementRow
		if err := rows.Scan(&row.CAS, &row.Code); err != nil {
			return nil, fmt.Errorf("scan p-statement: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *Repo) GHSRows(ctx context.Context) ([]GHSRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT cas, ghs_class, environmental_risk FROM ghs_classes ORDER BY cas`)
	if err != nil {
		return nil, fmt.Errorf("query ghs classes: %w", err)
	}
	defer rows.Close()

	out := []GHSRow{}
	for rows.Next() {
		var row GHSRow
		var class sql.NullString
		if err := rows.Scan(&row.CAS, &class, &row.EnvRisk); err != nil {
			return nil, fmt.Errorf("scan ghs class: %w", err)
		}
		row.GHSClass = class.String
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *Repo) ManufacturerRows(ctx context.Context) ([]ManufacturerRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT cas, manufacturer FROM manufacturer_links ORDER BY cas, manufacturer`)
	if err != nil {
		return nil, fmt.Errorf("query manufacturer links: %w", err)
	}
	defer rows.Close()

	out := []ManufacturerRow{}
	for rows.Next() {
		var row ManufacturerRow
		if err := rows.Scan(&row.CAS, &row.Manufacturer); err != nil {
			return nil, fmt.Errorf("scan manufacturer link: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *Repo) ProductFamilyRows(ctx context.Context) ([]ProductFamilyRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT cas_a, cas_b, manufacturer FROM product_family_links ORDER BY cas_a, cas_b`)
	if err != nil {
		return nil, fmt.Errorf("query product families: %w", err)
	}
	defer rows.Close()

	out := []ProductFamilyRow{}
	for rows.Next() {
		var row ProductFamilyRow
		var mfg sql.NullString
		if err := rows.Scan(&row.CASA, &row.CASB, &mfg); err != nil {
			return nil, fmt.Errorf("scan product family: %w", err)
		}
		row.Manufacturer = mfg.String
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *Repo) SimilarityRows(ctx context.Context) ([]SimilarityRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT cas_a, cas_b, score, similarity_type FROM similarity_scores ORDER BY cas_a, cas_b`)
	if err != nil {
		return nil, fmt.Errorf("query similarity scores: %w", err)
	}
	defer rows.Close()

	out := []SimilarityRow{}
	for rows.Next() {
		var row SimilarityRow
		var simType sql.NullString
		if err := rows.Scan(&row.CASA, &row.CASB, &row.Score, &simType); err != nil {
			return nil, fmt.Errorf("scan similarity score: %w", err)
		}
		row.Type = simType.String
		out = append(out, row)
	}
	return out, rows.Err()
}

// =============================================================================
// NULL HELPERS
// =============================================================================

func nullEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloatPtr(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
