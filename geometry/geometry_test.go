package geometry

import (
	"testing"

	"github.com/NyanCAD/Pyttoresque/schem"
	"github.com/stretchr/testify/assert"
)

func TestPinsWire(t *testing.T) {
	doc := &schem.Doc{Cell: schem.CellWire, X: 2, Y: 3, RX: 4, RY: 0}
	pins := Pins(doc, nil)
	assert.Len(t, pins, 2)
	assert.Contains(t, pins, Point{X: 2, Y: 3})
	assert.Contains(t, pins, Point{X: 6, Y: 3})
}

func TestPinsPort(t *testing.T) {
	doc := &schem.Doc{Cell: schem.CellPort, X: 1, Y: 1, Name: "vdd"}
	pins := Pins(doc, nil)
	assert.Equal(t, PinName{Name: "vdd", Named: true}, pins[Point{X: 1, Y: 1}])
}

func TestPinsTwoPortIdentity(t *testing.T) {
	doc := &schem.Doc{Cell: schem.CellResistor, X: 5, Y: 5, Transform: schem.Identity}
	pins := Pins(doc, nil)
	assert.Len(t, pins, 2)
	assert.Contains(t, pins, Point{X: 6, Y: 5})
	assert.Contains(t, pins, Point{X: 6, Y: 7})
}

func TestPinsTwoPortRotated180(t *testing.T) {
	// The two-port shape is symmetric about its own center, so a 180°
	// rotation lands on the same two grid points as identity, only with
	// P and N swapped.
	doc := &schem.Doc{Cell: schem.CellResistor, X: 5, Y: 5, Transform: [6]float64{-1, 0, 0, -1, 0, 0}}
	pins := Pins(doc, nil)
	assert.Len(t, pins, 2)
	assert.Equal(t, "N", pins[Point{X: 6, Y: 5}].Name)
	assert.Equal(t, "P", pins[Point{X: 6, Y: 7}].Name)
}

func TestPinsSubcircuitFromModel(t *testing.T) {
	models := schem.Models{
		"myamp": &schem.ModelDoc{
			Cell: "myamp",
			Conn: []schem.Pin{{X: 0, Y: 0, Port: "in"}, {X: 1, Y: 0, Port: "out"}},
		},
	}
	doc := &schem.Doc{Cell: "myamp", X: 0, Y: 0, Transform: schem.Identity}
	pins := Pins(doc, models)
	assert.Len(t, pins, 2)
}

func TestPinsUnknownSubcircuitEmpty(t *testing.T) {
	doc := &schem.Doc{Cell: "mystery", X: 0, Y: 0}
	pins := Pins(doc, schem.Models{})
	assert.Empty(t, pins)
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 1, roundHalfAwayFromZero(0.5))
	assert.Equal(t, -1, roundHalfAwayFromZero(-0.5))
	assert.Equal(t, 2, roundHalfAwayFromZero(1.5))
	assert.Equal(t, -2, roundHalfAwayFromZero(-1.5))
}
