package chemgraph

// NodeKind tags what a node represents.
type NodeKind string

const (
	KindChemical     NodeKind = "chemical"
	KindManufacturer NodeKind = "manufacturer"
)

// EdgeKind classifies a typed relationship between two nodes.
type EdgeKind string

const (
	EdgeIncompatibleWith EdgeKind = "incompatible_with"
	EdgeManufacturedBy   EdgeKind = "manufactured_by"
	EdgeProductFamily    EdgeKind = "product_family"
	EdgeSimilarTo        EdgeKind = "similar_to"
)

// NodeAttrs is the attribute bag for a node. Known fields are typed; anything
// the source schema carries beyond them lands in Extra. Optional numerics are
// pointers so "absent" stays distinguishable from zero.
type NodeAttrs struct {
	Kind NodeKind

	Name            string
	Formula         string
	MolecularWeight *float64
	Supplier        string
	Confidence      *float64

	HazardFlags   map[string]bool
	HazardClasses []string
	PStatements   []string
	GHSClass      string
	EnvRisk       bool

	IDLH *float64
	PEL  *float64
	REL  *float64

	Extra map[string]any
}

// EdgeAttrs is the attribute bag for an edge. Which fields are populated
// depends on the edge kind: incompatibility edges carry rule metadata and
// group labels, similarity edges carry a score and type tag.
type EdgeAttrs struct {
	RuleCode      string
	Source        string
	Justification string
	GroupSource   string
	GroupTarget   string

	Score          float64
	SimilarityType string

	Extra map[string]any
}

// merge overlays other onto a, additively. Scalar fields only change when the
// incoming value is present; flag maps and code lists grow, never shrink.
func (a *NodeAttrs) merge(other NodeAttrs) {
	if other.Kind != "" {
		a.Kind = other.Kind
	}
	if other.Name != "" {
		a.Name = other.Name
	}
	if other.Formula != "" {
		a.Formula = other.Formula
	}
	if other.MolecularWeight != nil {
		a.MolecularWeight = other.MolecularWeight
	}
	if other.Supplier != "" {
		a.Supplier = other.Supplier
	}
	if other.Confidence != nil {
		a.Confidence = other.Confidence
	}
	if other.GHSClass != "" {
		a.GHSClass = other.GHSClass
	}
	if other.EnvRisk {
		a.EnvRisk = true
	}
	if other.IDLH != nil {
		a.IDLH = other.IDLH
	}
	if other.PEL != nil {
		a.PEL = other.PEL
	}
	if other.REL != nil {
		a.REL = other.REL
	}

	for k, v := range other.HazardFlags {
		if a.HazardFlags == nil {
			a.HazardFlags = make(map[string]bool)
		}
		a.HazardFlags[k] = v
	}
	for _, c := range other.HazardClasses {
		a.HazardClasses = appendUnique(a.HazardClasses, c)
	}
	for _, p := range other.PStatements {
		a.PStatements = appendUnique(a.PStatements, p)
	}
	for k, v := range other.Extra {
		if a.Extra == nil {
			a.Extra = make(map[string]any)
		}
		a.Extra[k] = v
	}
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// Float64Ptr is a convenience for building optional numeric attributes.
func Float64Ptr(v float64) *float64 {
	return &v
}
