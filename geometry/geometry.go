// Package geometry computes the pin layout of a single schematic
// document: where its connection points land on the integer grid after
// rotation, and what net-relevant label (if any) each one carries. It is
// pure and synchronous; nothing here performs I/O.
package geometry

import (
	"math"

	"github.com/NyanCAD/Pyttoresque/schem"
)

// Point is an integer grid coordinate.
type Point struct {
	X, Y int
}

// PinName is the label attached to a grid point: a wire endpoint carries
// no name (""), a device pin carries its port name (e.g. "P", "D"), and a
// port declaration carries its net name. Named is set only for port
// declarations (a port named "" is still named; wire endpoints and device
// pins never are).
type PinName struct {
	Name  string
	Named bool
}

// Pins returns every grid point doc occupies: wire endpoints map to the
// empty, unnamed PinName, device pins to their unnamed port name, and a
// port declaration to its name with Named set.
func Pins(doc *schem.Doc, models schem.Models) map[Point]PinName {
	switch {
	case doc.IsWire():
		return map[Point]PinName{
			{X: doc.X, Y: doc.Y}:                   {},
			{X: doc.X + doc.RX, Y: doc.Y + doc.RY}: {},
		}
	case doc.IsPort():
		return map[Point]PinName{{X: doc.X, Y: doc.Y}: {Name: doc.Name, Named: true}}
	case doc.Cell == schem.CellText:
		return map[Point]PinName{}
	}

	shape := schem.ShapeFor(doc.Cell)
	if shape == nil {
		md, ok := models[doc.Cell]
		if !ok || len(md.Conn) == 0 {
			return map[Point]PinName{}
		}
		shape = md.Conn
	}

	rotated := rotate(shape, doc.EffectiveTransform(), doc.X, doc.Y)
	out := make(map[Point]PinName, len(rotated))
	for pt, port := range rotated {
		out[pt] = PinName{Name: port}
	}
	return out
}

// rotate maps shape (a canonical pin list centered on its own small
// integer grid) through transform and places it at (devx, devy). The
// rotation center is the shape's own midpoint, width/2 − 0.5, so that a
// 180° rotation of a shape with an odd pin span lands back on integer
// coordinates. Results are rounded half-away-from-zero, matching the
// convention the rest of this core's grid arithmetic uses.
func rotate(shape []schem.Pin, transform [6]float64, devx, devy int) map[Point]string {
	if len(shape) == 0 {
		return map[Point]string{}
	}
	a, b, c, d, e, f := transform[0], transform[1], transform[2], transform[3], transform[4], transform[5]

	maxCoord := 0
	for _, p := range shape {
		if p.X > maxCoord {
			maxCoord = p.X
		}
		if p.Y > maxCoord {
			maxCoord = p.Y
		}
	}
	width := float64(maxCoord + 1)
	mid := width/2 - 0.5

	out := make(map[Point]string, len(shape))
	for _, p := range shape {
		x := float64(p.X) - mid
		y := float64(p.Y) - mid
		nx := a*x + c*y + e
		ny := b*x + d*y + f
		px := roundHalfAwayFromZero(float64(devx) + nx + mid)
		py := roundHalfAwayFromZero(float64(devy) + ny + mid)
		out[Point{X: px, Y: py}] = p.Port
	}
	return out
}

func roundHalfAwayFromZero(v float64) int {
	if v >= 0 {
		return int(math.Floor(v + 0.5))
	}
	return int(math.Ceil(v - 0.5))
}
