package simproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	capnp "zombiezen.com/go/capnproto2"
)

func TestComplexRealImagRoundTrip(t *testing.T) {
	_, seg, err := capnp.NewMessage(capnp.SingleSegment(nil))
	require.NoError(t, err)

	c, err := NewComplex(seg)
	require.NoError(t, err)
	c.SetReal(3.5)
	c.SetImag(-2.25)

	assert.Equal(t, 3.5, c.Real())
	assert.Equal(t, -2.25, c.Imag())
}

// newRootVector allocates a root Vector for testing; the real schema
// only ever places Vector as a list element (see VectorSet.NewData), so
// tests need their own root allocator to exercise it in isolation.
func newRootVector(t *testing.T) Vector {
	t.Helper()
	_, seg, err := capnp.NewMessage(capnp.SingleSegment(nil))
	require.NoError(t, err)
	st, err := capnp.NewRootStruct(seg, capnp.ObjectSize{DataSize: 8, PointerCount: 2})
	require.NoError(t, err)
	return Vector{Struct: st}
}

// This exercises the exact layout bug once present in VectorData: the
// union payload accessors must not collide with the enclosing Vector's
// own Name field, which lives in pointer slot 0.
func TestVectorNameSurvivesRealDataAssignment(t *testing.T) {
	v := newRootVector(t)
	require.NoError(t, v.SetName("v1"))

	fl, err := capnp.NewFloat64List(v.Struct.Segment(), 3)
	require.NoError(t, err)
	fl.Set(0, 1)
	fl.Set(1, 2)
	fl.Set(2, 3)
	require.NoError(t, v.Data().SetReal(fl))

	name, err := v.Name()
	require.NoError(t, err)
	assert.Equal(t, "v1", name)

	assert.Equal(t, uint16(0), v.Data().Which())
	rl, err := v.Data().Real()
	require.NoError(t, err)
	assert.Equal(t, 3, rl.Len())
	assert.Equal(t, 1.0, rl.At(0))
}

func TestVectorNameSurvivesComplexDataAssignment(t *testing.T) {
	v := newRootVector(t)
	require.NoError(t, v.SetName("vout"))

	cl, err := NewComplexList(v.Struct.Segment(), 2)
	require.NoError(t, err)
	cl.At(0).SetReal(1)
	cl.At(0).SetImag(2)
	cl.At(1).SetReal(3)
	cl.At(1).SetImag(4)
	require.NoError(t, v.Data().SetComplex(cl))

	name, err := v.Name()
	require.NoError(t, err)
	assert.Equal(t, "vout", name)

	assert.Equal(t, uint16(1), v.Data().Which())
	got, err := v.Data().Complex()
	require.NoError(t, err)
	require.Equal(t, 2, got.Len())
	assert.Equal(t, 1.0, got.At(0).Real())
	assert.Equal(t, 4.0, got.At(1).Imag())
}

func TestAcTypeString(t *testing.T) {
	assert.Equal(t, "dec", AcTypeDec.String())
	assert.Equal(t, "oct", AcTypeOct.String())
	assert.Equal(t, "lin", AcTypeLin.String())
}
