package schem

// ModelDoc is a models:<cell> document: type/shape/template metadata for
// a non-primitive cell. Conn gives the ordered pin positions used for
// symbol matching (and for SpiceEmitter's subcircuit port ordering); each
// entry in Variants describes one named parameterization of the cell.
type ModelDoc struct {
	ID   string // "models:<cell>"
	Rev  string
	Cell string

	Conn     []Pin
	Variants map[string]*VariantDef

	Deleted bool
}

// VariantType distinguishes a variant realized by a nested schematic from
// one realized directly as a SPICE primitive/subcircuit reference.
type VariantType string

const (
	VariantSchematic VariantType = "schematic"
	VariantSpice     VariantType = "spice"
)

// VariantDef is one models.<variant> entry.
type VariantDef struct {
	Type VariantType
	// Sims holds per-simulator template/vector blocks, keyed by simulator
	// name (e.g. "ngspice", "xyce").
	Sims map[string]*SimBlock
}

// SimBlock carries the simulator-specific template and save-vector
// metadata for one variant.
type SimBlock struct {
	RefTempl  string
	DeclTempl string
	Vectors   []string
	Component string
}

// Sim returns the named simulator block, or nil if this variant has none
// for that simulator.
func (v *VariantDef) Sim(name string) *SimBlock {
	if v == nil || v.Sims == nil {
		return nil
	}
	return v.Sims[name]
}

// Models is the set of models:<cell> documents currently known, keyed by
// cell name (not by full document id) for direct lookup by the geometry,
// netlist, and spice packages.
type Models map[string]*ModelDoc

// Variant looks up cell's variant definition by variant name. ok is false
// if either the cell or the variant is unknown.
func (m Models) Variant(cell, variant string) (*VariantDef, bool) {
	md, ok := m[cell]
	if !ok || md.Variants == nil {
		return nil, false
	}
	v, ok := md.Variants[variant]
	return v, ok
}

// IsSchematicVariant reports whether cell$variant is backed by a nested
// schematic (as opposed to a direct SPICE primitive/subcircuit
// reference) according to the known models.
func (m Models) IsSchematicVariant(cell, variant string) bool {
	v, ok := m.Variant(cell, variant)
	return ok && v.Type == VariantSchematic
}
