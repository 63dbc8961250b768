package mirror

import (
	"context"
	"errors"
	"strings"

	"github.com/NyanCAD/Pyttoresque/dbclient"
	"github.com/NyanCAD/Pyttoresque/schem"
	"github.com/NyanCAD/Pyttoresque/telemetry"
)

// Watch opens the change stream for the mirror's current selector and
// applies incoming changes until ctx is cancelled or the stream ends.
// Every applied change is emitted to the returned channel as a fresh
// snapshot clone; the channel is closed when Watch returns. Only one
// Watch call may be active on a Mirror at a time.
func (m *Mirror) Watch(ctx context.Context) (<-chan *schem.Snapshot, <-chan error) {
	out := make(chan *schem.Snapshot)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)
		if err := m.reconcileLoop(ctx, out); err != nil && !errors.Is(err, context.Canceled) {
			select {
			case errs <- err:
			default:
			}
		}
	}()

	return out, errs
}

func (m *Mirror) reconcileLoop(ctx context.Context, out chan<- *schem.Snapshot) error {
	for {
		sel := dbclient.Selector{Names: m.selectorNames()}
		stream, err := m.client.ChangesStream(ctx, m.Seq(), sel)
		if err != nil {
			return err
		}

		refresh, err := m.drainStream(ctx, stream, out)
		stream.Close()
		if err != nil {
			return err
		}
		if !refresh {
			return nil
		}
		m.logger.Debug("selector refreshed mid-stream, reopening change feed")
	}
}

// drainStream reads changes from stream until it ends, applying each
// one. It returns (true, nil) if a mid-stream selector refresh is
// needed (a device referencing a schematic outside the current
// selector appeared) so the caller can reopen the stream with the
// widened selector; (false, nil) on a clean end-of-context exit.
func (m *Mirror) drainStream(ctx context.Context, stream *dbclient.ChangeStream, out chan<- *schem.Snapshot) (bool, error) {
	for {
		change, err := stream.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return false, nil
			}
			return false, err
		}

		needsRefresh, err := m.applyChange(ctx, change)
		if err != nil {
			return false, err
		}

		select {
		case out <- m.Snapshot():
		case <-ctx.Done():
			return false, ctx.Err()
		}

		if needsRefresh {
			return true, nil
		}
	}
}

// applyChange folds one change into the mirror's snapshot. It returns
// true if the change introduced a device referencing a schematic not
// yet present in the selector, requiring a bounded refetch of that
// identifier and a selector refresh.
func (m *Mirror) applyChange(ctx context.Context, change dbclient.Change) (bool, error) {
	if m.dedup(change.Raw.ID, change.Raw.Rev) {
		m.advanceSeq(change.Seq)
		return false, nil
	}

	id := schem.ParseID(change.Raw.ID)
	schemName := id.Schem()

	m.mu.Lock()
	if change.Deleted {
		if schem.IsModelID(change.Raw.ID) {
			delete(m.snap.Models, strings.TrimPrefix(change.Raw.ID, "models:"))
		} else {
			delete(m.snap.Bucket(schemName), change.Raw.ID)
		}
		m.seq = change.Seq
		m.mu.Unlock()
		return false, nil
	}
	m.mu.Unlock()

	if schem.IsModelID(change.Raw.ID) {
		md, err := schem.DecodeModelDoc(change.Raw)
		if err != nil {
			return false, err
		}
		m.mu.Lock()
		m.snap.Models[md.Cell] = md
		m.seq = change.Seq
		m.mu.Unlock()
		return false, nil
	}

	doc, err := schem.DecodeDoc(change.Raw)
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	m.snap.Bucket(schemName)[change.Raw.ID] = doc
	m.seq = change.Seq
	m.mu.Unlock()

	return m.checkReference(ctx, doc)
}

func (m *Mirror) advanceSeq(seq string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if higherSeq(seq, m.seq) {
		m.seq = seq
	}
}

// checkReference implements the mid-stream selector-refresh requirement:
// when doc names a schematic-backed (cell, model) pair not already
// mirrored, fetch it now and fold it in, so the next loop iteration's
// selector covers it.
func (m *Mirror) checkReference(ctx context.Context, doc *schem.Doc) (bool, error) {
	variant := doc.Model()
	if variant == "" {
		return false, nil
	}
	ref := (schem.ID{Cell: doc.Cell, Variant: variant}).Schem()

	m.mu.RLock()
	known := m.snap.Has(ref)
	isSchematic := m.snap.Models.IsSchematicVariant(doc.Cell, variant)
	m.mu.RUnlock()

	if known || !isSchematic {
		return false, nil
	}

	m.logger.Info("mid-stream selector refresh", telemetry.String("ref", ref))

	m.mu.Lock()
	seq := m.seq
	err := loadSchem(ctx, m.client, m.snap, ref, &seq)
	if err == nil {
		m.seq = seq
	}
	m.mu.Unlock()
	if err != nil {
		return false, err
	}
	return true, nil
}
