package mirror

import (
	"context"
	"sync"

	"github.com/NyanCAD/Pyttoresque/dbclient"
	"github.com/NyanCAD/Pyttoresque/schem"
	"github.com/NyanCAD/Pyttoresque/telemetry"

	"github.com/bits-and-blooms/bloom/v3"
)

// Mirror holds the recursively-resolved schematic hierarchy for one
// top-level identifier and keeps it current against the store it was
// built from. A Mirror has exactly one consumer of its snapshot stream.
type Mirror struct {
	client  *dbclient.Client
	logger  *telemetry.Logger
	topName string

	mu   sync.RWMutex
	snap *schem.Snapshot
	seq  string

	// at-least-once change delivery dedup: a bloom filter fast path over
	// "id@rev" pairs, falling through to the authoritative exact map on a
	// possible hit so a false positive never drops a real change.
	seen      *bloom.BloomFilter
	seenExact map[string]string

	// per-top-level-identifier supersession: a running extraction
	// triggered by a prior snapshot is cancelled, not signalled, when a
	// newer one supersedes it.
	genMu       sync.Mutex
	generations map[string]uint64
	cancels     map[string]context.CancelFunc
}

// Snapshot returns a clone of the current snapshot, safe to read
// independently of further mirror activity.
func (m *Mirror) Snapshot() *schem.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap.Clone()
}

// Seq returns the mirror's current high-water sequence token.
func (m *Mirror) Seq() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.seq
}

func (m *Mirror) selectorNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap.Selector()
}

// dedup reports whether (id, rev) has already been applied. It records
// the pair as seen as a side effect when it has not.
func (m *Mirror) dedup(id, rev string) bool {
	key := id + "@" + rev
	if !m.seen.TestString(key) {
		m.seen.AddString(key)
		m.seenExact[key] = rev
		return false
	}
	if _, exact := m.seenExact[key]; exact {
		return true
	}
	// bloom false positive on a key we have never actually recorded:
	// record it now so a genuine future duplicate of this key is caught.
	m.seen.AddString(key)
	m.seenExact[key] = rev
	return false
}

// Trigger runs fn with a fresh context derived from ctx, cancelling any
// previous run still in flight for the same topID. Only the last call
// for a given topID at any moment is allowed to observe a live context;
// superseded runs see ctx.Done() instead of completing normally. This is
// the Go analogue of "the mirror cancels, rather than signals, a
// superseded extraction."
func (m *Mirror) Trigger(ctx context.Context, topID string, fn func(ctx context.Context, gen uint64)) {
	m.genMu.Lock()
	if cancel, ok := m.cancels[topID]; ok {
		cancel()
	}
	m.generations[topID]++
	gen := m.generations[topID]
	runCtx, cancel := context.WithCancel(ctx)
	m.cancels[topID] = cancel
	m.genMu.Unlock()

	go func() {
		defer func() {
			m.genMu.Lock()
			if m.generations[topID] == gen {
				delete(m.cancels, topID)
			}
			m.genMu.Unlock()
			cancel()
		}()
		fn(runCtx, gen)
	}()
}

// Current reports whether gen is still the newest generation issued for
// topID, i.e. whether a run started under it has not been superseded.
func (m *Mirror) Current(topID string, gen uint64) bool {
	m.genMu.Lock()
	defer m.genMu.Unlock()
	return m.generations[topID] == gen
}
