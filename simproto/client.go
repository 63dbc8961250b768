package simproto

import (
	"context"

	capnp "zombiezen.com/go/capnproto2"
)

// Interface IDs below are placeholders for the real simulator.capnp
// schema's 64-bit type hashes; they only need to be internally
// consistent since both ends of a connection load them from the same
// schema file.
const (
	interfaceSimulator uint64 = 0xb4d7e1f9a23c5061
	interfaceFileSet   uint64 = 0xb4d7e1f9a23c5062
	interfaceCommands  uint64 = 0xb4d7e1f9a23c5063
	interfaceResponse  uint64 = 0xb4d7e1f9a23c5064
	interfaceResult    uint64 = 0xb4d7e1f9a23c5065
)

const (
	methodLoadFiles uint16 = 0
	methodLoadPath  uint16 = 1

	methodCommands uint16 = 0

	methodOp    uint16 = 0
	methodTran  uint16 = 1
	methodAC    uint16 = 2
	methodDC    uint16 = 3
	methodNoise uint16 = 4

	methodResult uint16 = 0

	methodRead uint16 = 0
)

// Simulator is the bootstrap capability exposed by Ngspice, Xyce, and
// Cxxrtl: loading a deck (in-memory or by path on the server) returns a
// FileSet capability scoped to that load.
type Simulator struct{ Client capnp.Client }

// LoadFiles loads in-memory file contents into the simulator.
func (s Simulator) LoadFiles(ctx context.Context, files []FileEntry) (FileSet, error) {
	ans, release := s.Client.SendCall(ctx, capnp.Send{
		Method: capnp.Method{InterfaceID: interfaceSimulator, MethodID: methodLoadFiles},
		PlaceParams: func(p capnp.Struct) error {
			list, err := NewFileEntryList(p.Segment(), int32(len(files)))
			if err != nil {
				return err
			}
			for i, f := range files {
				list.List.SetStruct(i, f.Struct)
			}
			return p.SetPtr(0, list.List.ToPtr())
		},
	})
	defer release()
	st, err := ans.Struct()
	if err != nil {
		return FileSet{}, err
	}
	p, err := st.Ptr(0)
	if err != nil {
		return FileSet{}, err
	}
	return FileSet{Client: p.Interface().Client()}, nil
}

// LoadPath loads files already present on the simulator host by name.
func (s Simulator) LoadPath(ctx context.Context, names []string) (FileSet, error) {
	ans, release := s.Client.SendCall(ctx, capnp.Send{
		Method: capnp.Method{InterfaceID: interfaceSimulator, MethodID: methodLoadPath},
		PlaceParams: func(p capnp.Struct) error {
			list, err := capnp.NewTextList(p.Segment(), int32(len(names)))
			if err != nil {
				return err
			}
			for i, n := range names {
				if err := list.Set(i, n); err != nil {
					return err
				}
			}
			return p.SetPtr(0, list.List.ToPtr())
		},
	})
	defer release()
	st, err := ans.Struct()
	if err != nil {
		return FileSet{}, err
	}
	p, err := st.Ptr(0)
	if err != nil {
		return FileSet{}, err
	}
	return FileSet{Client: p.Interface().Client()}, nil
}

// FileSet is a loaded simulation deck, ready to run analysis commands
// against.
type FileSet struct{ Client capnp.Client }

// Commands returns the set of analyses this FileSet can run.
func (f FileSet) Commands() Commands {
	return Commands{Client: f.Client}
}

// Commands is the analysis surface of a loaded FileSet.
type Commands struct{ Client capnp.Client }

func (c Commands) call(ctx context.Context, method uint16, place func(capnp.Struct) error) (Response, error) {
	ans, release := c.Client.SendCall(ctx, capnp.Send{
		Method:      capnp.Method{InterfaceID: interfaceCommands, MethodID: method},
		PlaceParams: place,
	})
	defer release()
	st, err := ans.Struct()
	if err != nil {
		return Response{}, err
	}
	p, err := st.Ptr(0)
	if err != nil {
		return Response{}, err
	}
	return Response{Client: p.Interface().Client()}, nil
}

func setSaveList(p capnp.Struct, ptrIdx uint16, save []string) error {
	list, err := capnp.NewTextList(p.Segment(), int32(len(save)))
	if err != nil {
		return err
	}
	for i, s := range save {
		if err := list.Set(i, s); err != nil {
			return err
		}
	}
	return p.SetPtr(ptrIdx, list.List.ToPtr())
}

// Op runs an operating-point analysis, saving the given vectors.
func (c Commands) Op(ctx context.Context, save []string) (Response, error) {
	return c.call(ctx, methodOp, func(p capnp.Struct) error {
		return setSaveList(p, 0, save)
	})
}

// Tran runs a transient analysis.
func (c Commands) Tran(ctx context.Context, tstep, tstop, tstart float64, save []string) (Response, error) {
	return c.call(ctx, methodTran, func(p capnp.Struct) error {
		p.SetFloat64(0, tstep)
		p.SetFloat64(8, tstop)
		p.SetFloat64(16, tstart)
		return setSaveList(p, 0, save)
	})
}

// AC runs a small-signal AC sweep.
func (c Commands) AC(ctx context.Context, typ AcType, n int, fstart, fstop float64, save []string) (Response, error) {
	return c.call(ctx, methodAC, func(p capnp.Struct) error {
		p.SetUint16(0, uint16(typ))
		p.SetInt32(4, int32(n))
		p.SetFloat64(8, fstart)
		p.SetFloat64(16, fstop)
		return setSaveList(p, 0, save)
	})
}

// DC runs a DC sweep of src from start to stop in increments of step.
func (c Commands) DC(ctx context.Context, src string, start, stop, step float64, save []string) (Response, error) {
	return c.call(ctx, methodDC, func(p capnp.Struct) error {
		if err := p.SetText(0, src); err != nil {
			return err
		}
		p.SetFloat64(0, start)
		p.SetFloat64(8, stop)
		p.SetFloat64(16, step)
		return setSaveList(p, 1, save)
	})
}

// Noise runs a noise analysis between output and input.
func (c Commands) Noise(ctx context.Context, output, input string, typ AcType, n int, fstart, fstop float64, save []string) (Response, error) {
	return c.call(ctx, methodNoise, func(p capnp.Struct) error {
		if err := p.SetText(0, output); err != nil {
			return err
		}
		if err := p.SetText(1, input); err != nil {
			return err
		}
		p.SetUint16(0, uint16(typ))
		p.SetInt32(4, int32(n))
		p.SetFloat64(8, fstart)
		p.SetFloat64(16, fstop)
		return setSaveList(p, 2, save)
	})
}

// Response is a running simulator command: Result exposes the streaming
// read() operation that drains its output chunks.
type Response struct{ Client capnp.Client }

// Result returns the capability used to read this response's output.
func (r Response) Result() Result {
	return Result{Client: r.Client}
}

// Result is the streaming-read half of a Response.
type Result struct{ Client capnp.Client }

// Read blocks for the next chunk of output: stdout bytes and any vector
// sets computed so far, plus whether more chunks remain.
func (r Result) Read(ctx context.Context) (ReadResult, error) {
	ans, release := r.Client.SendCall(ctx, capnp.Send{
		Method: capnp.Method{InterfaceID: interfaceResult, MethodID: methodRead},
	})
	defer release()
	st, err := ans.Struct()
	if err != nil {
		return ReadResult{}, err
	}
	return ReadResult{Struct: st}, nil
}
