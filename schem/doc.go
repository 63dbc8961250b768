package schem

// Identity is the default affine transform: no rotation, no translation.
var Identity = [6]float64{1, 0, 0, 1, 0, 0}

// Cell discriminators recognized as primitive device families. Anything
// else (besides "wire", "port", "text") is a subcircuit instance whose
// cell name selects a models document.
const (
	CellWire      = "wire"
	CellPort      = "port"
	CellText      = "text"
	CellResistor  = "resistor"
	CellCapacitor = "capacitor"
	CellInductor  = "inductor"
	CellDiode     = "diode"
	CellVsource   = "vsource"
	CellIsource   = "isource"
	CellNmos      = "nmos"
	CellPmos      = "pmos"
	CellNpn       = "npn"
	CellPnp       = "pnp"
)

var twoPortCells = map[string]bool{
	CellResistor:  true,
	CellCapacitor: true,
	CellInductor:  true,
	CellDiode:     true,
	CellVsource:   true,
	CellIsource:   true,
}

var mosfetCells = map[string]bool{CellNmos: true, CellPmos: true}
var bjtCells = map[string]bool{CellNpn: true, CellPnp: true}

// IsTwoPort reports whether cell is one of the fixed two-port primitive
// families (R/C/L/D/V/I).
func IsTwoPort(cell string) bool { return twoPortCells[cell] }

// IsMosfet reports whether cell is nmos or pmos.
func IsMosfet(cell string) bool { return mosfetCells[cell] }

// IsBJT reports whether cell is npn or pnp.
func IsBJT(cell string) bool { return bjtCells[cell] }

// IsPrimitive reports whether cell names one of the built-in device
// families with a canonical pin shape (as opposed to a subcircuit
// instance, whose pin shape comes from a models document's conn list).
func IsPrimitive(cell string) bool {
	return IsTwoPort(cell) || IsMosfet(cell) || IsBJT(cell)
}

// Doc is a persisted schematic document: a wire, a port, a primitive
// device placement, or a subcircuit instance. Model (models:<cell>)
// documents are represented separately by ModelDoc.
type Doc struct {
	ID  string // full document id, e.g. "top$top:r1"
	Rev string

	Cell string
	X    int
	Y    int

	// wire-only
	RX int
	RY int

	// optional label: wire label, port name, or device instance name
	Name string

	// device primitives and subcircuit instances
	Transform [6]float64
	Props     *Props

	Deleted bool
}

// IsWire reports whether this document is a wire segment.
func (d *Doc) IsWire() bool { return d.Cell == CellWire }

// IsPort reports whether this document is a port declaration.
func (d *Doc) IsPort() bool { return d.Cell == CellPort }

// IsSubcircuit reports whether this document instantiates a user-defined
// cell rather than a wire, port, text annotation, or built-in primitive.
func (d *Doc) IsSubcircuit() bool {
	return d.Cell != CellWire && d.Cell != CellPort && d.Cell != CellText && !IsPrimitive(d.Cell)
}

// Model returns the props.model value, or "" if unset.
func (d *Doc) Model() string {
	if d.Props == nil {
		return ""
	}
	return d.Props.Model()
}

// EffectiveTransform returns the doc's transform, defaulting to Identity
// when unset (all-zero).
func (d *Doc) EffectiveTransform() [6]float64 {
	if d.Transform == ([6]float64{}) {
		return Identity
	}
	return d.Transform
}

// Pin is a single (x, y, portname) connection point on a canonical pin
// shape or a model-declared conn list.
type Pin struct {
	X    int
	Y    int
	Port string
}
