// Package simstream is the streaming client for a simulation server: it
// dials (optionally autostarting a local binary on first failure),
// drives a running command's result.read() loop, and assembles the
// typed vector stream into column-oriented frames.
package simstream

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/NyanCAD/Pyttoresque/config"
	"github.com/NyanCAD/Pyttoresque/resultstore"
	"github.com/NyanCAD/Pyttoresque/simproto"
	"github.com/NyanCAD/Pyttoresque/telemetry"
	"github.com/yasserelgammal/rate-limiter/limiter"
	"github.com/yasserelgammal/rate-limiter/store"
)

// Adapter is a connected simulation stream client, scoped to one
// host:port:kind. Dial once and reuse it across loaded decks.
type Adapter struct {
	cfg    config.Sim
	logger *telemetry.Logger
	conn   *simproto.Conn

	limiter *limiter.TokenBucket
}

// Dial connects to the configured simulator, autostarting a local binary
// on first failure when cfg.Autostart is enabled and cfg.Host is
// "localhost".
func Dial(ctx context.Context, cfg config.Sim, logger *telemetry.Logger) (*Adapter, error) {
	a := &Adapter{cfg: cfg, logger: logger}

	if cfg.Autostart.Enabled {
		rl := cfg.Autostart.RateLimit
		tb, err := limiter.NewTokenBucket(
			limiter.Config{Rate: rl.Rate, Duration: rl.Duration, Burst: rl.Burst},
			store.NewMemoryStore(time.Minute),
		)
		if err != nil {
			return nil, telemetry.Transport(err, "construct autostart rate limiter")
		}
		a.limiter = tb
	}

	conn, err := a.connect(ctx)
	if err != nil {
		return nil, err
	}
	a.conn = conn
	return a, nil
}

func (a *Adapter) addr() string {
	return fmt.Sprintf("%s:%d", a.cfg.Host, a.cfg.Port)
}

func (a *Adapter) connect(ctx context.Context) (*simproto.Conn, error) {
	conn, err := simproto.Dial(ctx, a.addr())
	if err == nil {
		return conn, nil
	}
	if a.cfg.Host != "localhost" || !a.cfg.Autostart.Enabled {
		return nil, telemetry.Transport(err, "dial simulator at %s", a.addr())
	}
	if a.limiter != nil && !a.limiter.Allow(a.addr()) {
		return nil, telemetry.Transport(err, "dial simulator at %s (autostart rate-limited)", a.addr())
	}

	if startErr := a.autostart(); startErr != nil {
		return nil, telemetry.Transport(err, "dial simulator at %s (autostart failed: %v)", a.addr(), startErr)
	}
	time.Sleep(a.cfg.Autostart.StartupWait)

	conn, err = simproto.Dial(ctx, a.addr())
	if err != nil {
		return nil, telemetry.Transport(err, "dial simulator at %s after autostart", a.addr())
	}
	return conn, nil
}

func (a *Adapter) autostart() error {
	path, ok := a.cfg.Autostart.BinaryPaths[a.cfg.Kind]
	if !ok || path == "" {
		return fmt.Errorf("no autostart binary configured for %s", a.cfg.Kind)
	}
	a.logger.Info("autostarting local simulator", telemetry.String("kind", string(a.cfg.Kind)), telemetry.String("path", path))
	cmd := exec.Command(path, "--port", fmt.Sprintf("%d", a.cfg.Port))
	return cmd.Start()
}

// Close tears down the underlying connection.
func (a *Adapter) Close() error {
	return a.conn.Close()
}

// LoadFiles loads in-memory files into the simulator and returns a
// handle to run analysis commands against them.
func (a *Adapter) LoadFiles(ctx context.Context, files []simproto.FileEntry) (simproto.FileSet, error) {
	return a.conn.Sim.LoadFiles(ctx, files)
}

// Chunk is one assembled columnar frame delivered by Drain, tagged with
// whether it was the first chunk observed for its key (column-set change
// also counts as "new").
type Chunk struct {
	Key   string
	Frame *resultstore.Frame
	New   bool
}

// Drain runs resp's result.read() loop to completion, assembling each
// VectorSet into a columnar frame and invoking onChunk for every one.
// Column-set continuity is tracked per key within one Drain call, so a
// later chunk whose columns match the prior chunk for the same key is
// reported as a continuation rather than a new key; the first chunk of
// each key in a call is always reported as new.
func (a *Adapter) Drain(ctx context.Context, resp simproto.Response, onChunk func(Chunk) error) error {
	result := resp.Result()
	lastColumns := make(map[string]map[string]bool)

	for {
		rr, err := result.Read(ctx)
		if err != nil {
			return telemetry.Simulator(err, "read simulation result chunk")
		}

		sets, err := rr.Data()
		if err != nil {
			return telemetry.Simulator(err, "decode vector set list")
		}
		for i := 0; i < sets.Len(); i++ {
			vs := sets.At(i)
			chunk, isNew, err := a.assemble(vs, lastColumns)
			if err != nil {
				return err
			}
			if chunk == nil {
				continue // empty-scale VectorSet: not yet initialized, skip
			}
			if err := onChunk(Chunk{Key: chunk.key, Frame: chunk.frame, New: isNew}); err != nil {
				return err
			}
		}

		if !rr.More() {
			return nil
		}
	}
}

type assembled struct {
	key   string
	frame *resultstore.Frame
}

func (a *Adapter) assemble(vs simproto.VectorSet, lastColumns map[string]map[string]bool) (*assembled, bool, error) {
	scale, err := vs.Scale()
	if err != nil {
		return nil, false, telemetry.Simulator(err, "read vector set scale")
	}
	if scale == "" {
		return nil, false, nil
	}
	name, err := vs.Name()
	if err != nil {
		return nil, false, telemetry.Simulator(err, "read vector set name")
	}

	data, err := vs.Data()
	if err != nil {
		return nil, false, telemetry.Simulator(err, "read vector set data")
	}

	frame := resultstore.NewFrame(scale)
	columns := make(map[string]bool)
	var index []float64

	for i := 0; i < data.Len(); i++ {
		vec := data.At(i)
		vname, err := vec.Name()
		if err != nil {
			return nil, false, telemetry.Simulator(err, "read vector name")
		}

		which := vec.Data().Which()
		if which == 1 { // complex
			cl, err := vec.Data().Complex()
			if err != nil {
				return nil, false, telemetry.Simulator(err, "read complex vector %q", vname)
			}
			vals := make([]complex128, cl.Len())
			for j := 0; j < cl.Len(); j++ {
				c := cl.At(j)
				vals[j] = complex(c.Real(), c.Imag())
			}
			if vname == scale {
				index = make([]float64, len(vals))
				for j, v := range vals {
					index[j] = real(v)
				}
				frame.Length = len(vals)
				continue
			}
			frame.Complex[vname] = vals
			columns[vname] = true
			frame.Length = len(vals)
			continue
		}

		rl, err := vec.Data().Real()
		if err != nil {
			return nil, false, telemetry.Simulator(err, "read real vector %q", vname)
		}
		vals := make([]float64, rl.Len())
		for j := 0; j < rl.Len(); j++ {
			vals[j] = rl.At(j)
		}
		if vname == scale {
			index = vals
			frame.Length = len(vals)
			continue
		}
		frame.Columns[vname] = vals
		columns[vname] = true
		frame.Length = len(vals)
	}
	frame.IndexValues = index

	prev, ok := lastColumns[name]
	isNew := !ok || !sameColumnSet(prev, columns)
	lastColumns[name] = columns

	return &assembled{key: name, frame: frame}, isNew, nil
}

func sameColumnSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
