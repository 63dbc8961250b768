// Package simproto holds hand-maintained Go bindings for the simulator's
// Cap'n Proto schema (simulator.capnp): an external, immutable contract
// this module does not own. The struct layouts below mirror what
// capnpc-go would emit for that schema; they are written by hand because
// the schema compiler is not part of this module's build.
package simproto

import (
	"math"

	capnp "zombiezen.com/go/capnproto2"
)

// AcType selects the frequency sweep used by an AC or noise analysis.
type AcType uint16

const (
	AcTypeDec AcType = iota
	AcTypeOct
	AcTypeLin
)

func (t AcType) String() string {
	switch t {
	case AcTypeDec:
		return "dec"
	case AcTypeOct:
		return "oct"
	case AcTypeLin:
		return "lin"
	default:
		return "unknown"
	}
}

// Complex is a single complex sample: a schema-level real/imag pair,
// wire-compatible with the simulator's complex vector element.
type Complex struct{ Struct capnp.Struct }

// NewComplex allocates a zero-valued Complex in seg.
func NewComplex(seg *capnp.Segment) (Complex, error) {
	st, err := capnp.NewStruct(seg, capnp.ObjectSize{DataSize: 16})
	return Complex{st}, err
}

func (c Complex) Real() float64     { return math.Float64frombits(c.Struct.Uint64(0)) }
func (c Complex) SetReal(v float64) { c.Struct.SetUint64(0, math.Float64bits(v)) }
func (c Complex) Imag() float64     { return math.Float64frombits(c.Struct.Uint64(8)) }
func (c Complex) SetImag(v float64) { c.Struct.SetUint64(8, math.Float64bits(v)) }

// ComplexList is a list of Complex values.
type ComplexList struct{ capnp.List }

// NewComplexList allocates a list of n zero-valued Complex structs in seg.
func NewComplexList(seg *capnp.Segment, n int32) (ComplexList, error) {
	l, err := capnp.NewCompositeList(seg, capnp.ObjectSize{DataSize: 16}, n)
	return ComplexList{l}, err
}

func (l ComplexList) Len() int { return l.List.Len() }
func (l ComplexList) At(i int) Complex {
	return Complex{l.List.Struct(i)}
}

// VectorData is the tagged union carried by a Vector: exactly one of
// Real or Complex is populated, matching the schema's `data :union`.
type VectorData struct{ Struct capnp.Struct }

const (
	vectorDataWhichReal    uint16 = 0
	vectorDataWhichComplex uint16 = 1
)

// Which reports the active branch of the union. Pointer slot 0 on the
// enclosing Vector struct is taken by its Name field, so the union's
// payload (whichever branch is active) lives in pointer slot 1.
func (d VectorData) Which() uint16 { return d.Struct.Uint16(0) }

// Real returns the real-valued payload list. Callers must check Which()
// first: Real and Complex read the same pointer slot, so calling the
// wrong accessor reinterprets the other branch's payload.
func (d VectorData) Real() (capnp.Float64List, error) {
	p, err := d.Struct.Ptr(1)
	if err != nil {
		return capnp.Float64List{}, err
	}
	return capnp.Float64List{List: p.List()}, nil
}

func (d VectorData) SetReal(v capnp.Float64List) error {
	d.Struct.SetUint16(0, vectorDataWhichReal)
	return d.Struct.SetPtr(1, v.List.ToPtr())
}

func (d VectorData) Complex() (ComplexList, error) {
	p, err := d.Struct.Ptr(1)
	if err != nil {
		return ComplexList{}, err
	}
	return ComplexList{p.List()}, nil
}

func (d VectorData) SetComplex(v ComplexList) error {
	d.Struct.SetUint16(0, vectorDataWhichComplex)
	return d.Struct.SetPtr(1, v.List.ToPtr())
}

// Vector is one named simulation output column: either all-real or
// all-complex samples. DataSize holds the union discriminant; the two
// pointer slots are Name and the union's shared payload pointer.
type Vector struct{ Struct capnp.Struct }

func NewVector(seg *capnp.Segment) (Vector, error) {
	st, err := capnp.NewStruct(seg, capnp.ObjectSize{DataSize: 8, PointerCount: 2})
	return Vector{st}, err
}

func (v Vector) Name() (string, error) { return v.Struct.Text(0) }
func (v Vector) SetName(s string) error { return v.Struct.SetText(0, s) }

func (v Vector) Data() VectorData {
	return VectorData{v.Struct}
}

// VectorSet groups the vectors produced by one analysis chunk: Scale
// names the independent-variable vector within Data.
type VectorSet struct{ Struct capnp.Struct }

func NewVectorSet(seg *capnp.Segment) (VectorSet, error) {
	st, err := capnp.NewStruct(seg, capnp.ObjectSize{PointerCount: 3})
	return VectorSet{st}, err
}

func (s VectorSet) Name() (string, error)  { return s.Struct.Text(0) }
func (s VectorSet) SetName(v string) error { return s.Struct.SetText(0, v) }
func (s VectorSet) Scale() (string, error) { return s.Struct.Text(1) }
func (s VectorSet) SetScale(v string) error { return s.Struct.SetText(1, v) }

func (s VectorSet) Data() (VectorList, error) {
	p, err := s.Struct.Ptr(2)
	if err != nil {
		return VectorList{}, err
	}
	return VectorList{p.List()}, nil
}

func (s VectorSet) NewData(n int32) (VectorList, error) {
	l, err := capnp.NewCompositeList(s.Struct.Segment(), capnp.ObjectSize{DataSize: 8, PointerCount: 2}, n)
	if err != nil {
		return VectorList{}, err
	}
	if err := s.Struct.SetPtr(2, l.ToPtr()); err != nil {
		return VectorList{}, err
	}
	return VectorList{l}, nil
}

// VectorList is a list of Vector structs.
type VectorList struct{ capnp.List }

func (l VectorList) Len() int         { return l.List.Len() }
func (l VectorList) At(i int) Vector  { return Vector{l.List.Struct(i)} }

// VectorSetList is a list of VectorSet structs.
type VectorSetList struct{ capnp.List }

func (l VectorSetList) Len() int           { return l.List.Len() }
func (l VectorSetList) At(i int) VectorSet { return VectorSet{l.List.Struct(i)} }

// ReadResult is one chunk yielded by a running command's result stream.
type ReadResult struct{ Struct capnp.Struct }

func NewRootReadResult(seg *capnp.Segment) (ReadResult, error) {
	st, err := capnp.NewRootStruct(seg, capnp.ObjectSize{DataSize: 8, PointerCount: 2})
	return ReadResult{st}, err
}

func (r ReadResult) More() bool      { return r.Struct.Bit(0) }
func (r ReadResult) SetMore(v bool)  { r.Struct.SetBit(0, v) }
func (r ReadResult) Stdout() ([]byte, error) { return r.Struct.Data(0) }
func (r ReadResult) SetStdout(v []byte) error { return r.Struct.SetData(0, v) }

func (r ReadResult) Data() (VectorSetList, error) {
	p, err := r.Struct.Ptr(1)
	if err != nil {
		return VectorSetList{}, err
	}
	return VectorSetList{p.List()}, nil
}

func (r ReadResult) NewData(n int32) (VectorSetList, error) {
	l, err := capnp.NewCompositeList(r.Struct.Segment(), capnp.ObjectSize{PointerCount: 3}, n)
	if err != nil {
		return VectorSetList{}, err
	}
	if err := r.Struct.SetPtr(1, l.ToPtr()); err != nil {
		return VectorSetList{}, err
	}
	return VectorSetList{l}, nil
}

// FileEntry is one file loaded into a simulator: a name and its raw
// in-memory bytes, matching the `loadFiles(list(FileEntry))` parameter.
type FileEntry struct{ Struct capnp.Struct }

func NewFileEntry(seg *capnp.Segment) (FileEntry, error) {
	st, err := capnp.NewStruct(seg, capnp.ObjectSize{PointerCount: 2})
	return FileEntry{st}, err
}

func (f FileEntry) Name() (string, error)      { return f.Struct.Text(0) }
func (f FileEntry) SetName(v string) error     { return f.Struct.SetText(0, v) }
func (f FileEntry) Contents() ([]byte, error)  { return f.Struct.Data(1) }
func (f FileEntry) SetContents(v []byte) error { return f.Struct.SetData(1, v) }

// FileEntryList is a list of FileEntry structs.
type FileEntryList struct{ capnp.List }

func NewFileEntryList(seg *capnp.Segment, n int32) (FileEntryList, error) {
	l, err := capnp.NewCompositeList(seg, capnp.ObjectSize{PointerCount: 2}, n)
	return FileEntryList{l}, err
}

func (l FileEntryList) Len() int            { return l.List.Len() }
func (l FileEntryList) At(i int) FileEntry  { return FileEntry{l.List.Struct(i)} }
