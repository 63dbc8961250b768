package spice

import (
	"errors"
	"testing"

	"github.com/NyanCAD/Pyttoresque/schem"
	"github.com/NyanCAD/Pyttoresque/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func propsOf(pairs ...string) *schem.Props {
	p := schem.NewProps()
	for i := 0; i+1 < len(pairs); i += 2 {
		p.Set(pairs[i], pairs[i+1])
	}
	return p
}

func TestEmitSingleResistor(t *testing.T) {
	snap := schem.NewSnapshot()
	snap.Schematics["top$top"] = schem.Bucket{
		"top$top:vin":  {ID: "top$top:vin", Cell: schem.CellPort, X: 0, Y: 0, Name: "vin"},
		"top$top:vout": {ID: "top$top:vout", Cell: schem.CellPort, X: 2, Y: 2, Name: "vout"},
		"top$top:r1":   {ID: "top$top:r1", Cell: schem.CellResistor, X: 0, Y: 0, Transform: schem.Identity, Name: "r1", Props: propsOf("r", "1k")},
		"top$top:w1":   {ID: "top$top:w1", Cell: schem.CellWire, X: 0, Y: 0, RX: 1, RY: 0},
		"top$top:w2":   {ID: "top$top:w2", Cell: schem.CellWire, X: 1, Y: 2, RX: 1, RY: 0},
	}

	deck, err := Emit("top$top", snap, Options{Sim: "ngspice"})
	require.NoError(t, err)
	assert.Contains(t, deck, "* top$top")
	assert.Contains(t, deck, "Rr1 vin vout r=1k")
	assert.Contains(t, deck, ".end")
}

func TestEmitPropOrderingAndModelPromotion(t *testing.T) {
	snap := schem.NewSnapshot()
	snap.Schematics["top$top"] = schem.Bucket{
		"top$top:vin":  {ID: "top$top:vin", Cell: schem.CellPort, X: 0, Y: 0, Name: "vin"},
		"top$top:vout": {ID: "top$top:vout", Cell: schem.CellPort, X: 2, Y: 2, Name: "vout"},
		"top$top:r1": {
			ID: "top$top:r1", Cell: schem.CellResistor, X: 0, Y: 0, Transform: schem.Identity, Name: "r1",
			Props: propsOf("tc1", "0.01", "model", "myres", "spice", "tol=5%"),
		},
		"top$top:w1": {ID: "top$top:w1", Cell: schem.CellWire, X: 0, Y: 0, RX: 1, RY: 0},
		"top$top:w2": {ID: "top$top:w2", Cell: schem.CellWire, X: 1, Y: 2, RX: 1, RY: 0},
	}

	deck, err := Emit("top$top", snap, Options{Sim: "ngspice"})
	require.NoError(t, err)
	assert.Contains(t, deck, "Rr1 vin vout myres tc1=0.01 tol=5%")
}

func TestEmitDeviceNameDefaultsToID(t *testing.T) {
	// Without an explicit "name" property, the device line falls back to
	// the document id with any "-key" write-back suffix stripped (here
	// there is none, so the full id is used, colon included).
	snap := schem.NewSnapshot()
	snap.Schematics["top$top"] = schem.Bucket{
		"top$top:r1": {ID: "top$top:r1", Cell: schem.CellResistor, X: 0, Y: 0, Transform: schem.Identity},
	}

	deck, err := Emit("top$top", snap, Options{})
	require.NoError(t, err)
	assert.Contains(t, deck, "Rtop$top:r1")
}

func TestEmitSubcircuitDeclaration(t *testing.T) {
	snap := schem.NewSnapshot()
	snap.Models["myamp"] = &schem.ModelDoc{
		Cell: "myamp",
		Conn: []schem.Pin{{X: 0, Y: 0, Port: "in"}, {X: 1, Y: 0, Port: "out"}},
		Variants: map[string]*schem.VariantDef{
			"default": {Type: schem.VariantSchematic},
		},
	}
	snap.Schematics["top$top"] = schem.Bucket{
		"top$top:u1": {
			ID: "top$top:u1", Cell: "myamp", X: 0, Y: 0, Transform: schem.Identity, Name: "u1",
			Props: propsOf("model", "default"),
		},
	}
	snap.Schematics["myamp$default"] = schem.Bucket{
		"myamp$default:r1": {ID: "myamp$default:r1", Cell: schem.CellResistor, X: 0, Y: 0, Transform: schem.Identity},
	}

	deck, err := Emit("top$top", snap, Options{})
	require.NoError(t, err)
	assert.Contains(t, deck, ".subckt default in out")
	assert.Contains(t, deck, ".ends default")
	assert.Contains(t, deck, "Xu1")
}

func TestEmitMissingSubcircuitModelIsMissingModelKind(t *testing.T) {
	snap := schem.NewSnapshot()
	snap.Schematics["top$top"] = schem.Bucket{
		"top$top:vin": {ID: "top$top:vin", Cell: schem.CellPort, Name: "vin"},
	}
	snap.Schematics["myamp$default"] = schem.Bucket{
		"myamp$default:r1": {ID: "myamp$default:r1", Cell: schem.CellResistor, Name: "r1"},
	}

	_, err := Emit("top$top", snap, Options{})
	require.Error(t, err)
	var te *telemetry.Error
	require.True(t, errors.As(err, &te))
	assert.Equal(t, telemetry.KindMissingModel, te.Kind)
}

func TestEmitDeviceWithUnknownCellIsMissingModelKind(t *testing.T) {
	snap := schem.NewSnapshot()
	snap.Schematics["top$top"] = schem.Bucket{
		"top$top:u1": {ID: "top$top:u1", Cell: "mystery", Name: "u1"},
	}

	_, err := Emit("top$top", snap, Options{})
	require.Error(t, err)
	var te *telemetry.Error
	require.True(t, errors.As(err, &te))
	assert.Equal(t, telemetry.KindMissingModel, te.Kind)
}
