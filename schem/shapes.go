package schem

// Canonical pin shapes for the fixed primitive families, expressed as a
// small integer grid, the way original_source/pyttoresque/netlist.py
// builds them from an ASCII-art template (shape_ports). D-0,1,1,0
// encodes "D" at (1,0), and so on.
var MosfetShape = []Pin{
	{X: 1, Y: 0, Port: "D"},
	{X: 0, Y: 1, Port: "G"},
	{X: 1, Y: 1, Port: "B"},
	{X: 1, Y: 2, Port: "S"},
}

var BJTShape = []Pin{
	{X: 1, Y: 0, Port: "C"},
	{X: 0, Y: 1, Port: "B"},
	{X: 1, Y: 2, Port: "E"},
}

// TwoPortShape is the canonical two-port shape. Two divergent definitions
// exist in the original source's history (2-wide vs 3-wide grid); the
// 3-wide form with pins at (1,0) and (1,2) is the one adopted here.
var TwoPortShape = []Pin{
	{X: 1, Y: 0, Port: "P"},
	{X: 1, Y: 2, Port: "N"},
}

// ShapeFor returns the canonical pin shape for a primitive cell.
func ShapeFor(cell string) []Pin {
	switch {
	case IsMosfet(cell):
		return MosfetShape
	case IsBJT(cell):
		return BJTShape
	case IsTwoPort(cell):
		return TwoPortShape
	default:
		return nil
	}
}
