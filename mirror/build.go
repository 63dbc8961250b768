// Package mirror holds the recursive schematic hierarchy in memory and
// keeps it current against a remote document store: an initial
// recursive load followed by long-lived incremental reconciliation
// against a filtered change feed.
package mirror

import (
	"context"
	"fmt"

	"github.com/NyanCAD/Pyttoresque/dbclient"
	"github.com/NyanCAD/Pyttoresque/schem"
	"github.com/NyanCAD/Pyttoresque/telemetry"

	"github.com/bits-and-blooms/bloom/v3"
)

// Build performs the initial recursive load: the models pseudo-schematic,
// then name, then every schematic transitively referenced by a device's
// (cell, model) pair whose models entry turns out to be schematic-backed.
// The returned Mirror's seq is the highest update-sequence token observed
// during the walk.
func Build(ctx context.Context, client *dbclient.Client, name string) (*Mirror, error) {
	logger := telemetry.Default("mirror")

	snap := schem.NewSnapshot()

	modelsSeq, modelRaws, err := client.ListByRange(ctx, schem.ModelsID)
	if err != nil {
		return nil, fmt.Errorf("load models: %w", err)
	}
	for id, raw := range modelRaws {
		md, err := schem.DecodeModelDoc(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %q: %w", id, err)
		}
		snap.Models[md.Cell] = md
	}

	seq := modelsSeq
	if err := loadSchem(ctx, client, snap, name, &seq); err != nil {
		return nil, err
	}

	queue := make([]*schem.Doc, 0, len(snap.Bucket(name)))
	for _, d := range snap.Bucket(name) {
		queue = append(queue, d)
	}

	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]

		variant := d.Model()
		if variant == "" {
			continue
		}
		ref := (schem.ID{Cell: d.Cell, Variant: variant}).Schem()
		if snap.Has(ref) {
			continue
		}
		if !snap.Models.IsSchematicVariant(d.Cell, variant) {
			continue
		}
		if err := loadSchem(ctx, client, snap, ref, &seq); err != nil {
			return nil, err
		}
		for _, nd := range snap.Bucket(ref) {
			queue = append(queue, nd)
		}
	}

	m := &Mirror{
		client:      client,
		logger:      logger,
		snap:        snap,
		seq:         seq,
		topName:     name,
		seen:        bloom.NewWithEstimates(10000, 0.01),
		seenExact:   make(map[string]string),
		generations: make(map[string]uint64),
		cancels:     make(map[string]context.CancelFunc),
	}
	return m, nil
}

// loadSchem fetches one schematic's document range into snap, advancing
// *seq to the higher of its current value and the range's reported
// sequence.
func loadSchem(ctx context.Context, client *dbclient.Client, snap *schem.Snapshot, name string, seq *string) error {
	rangeSeq, raws, err := client.ListByRange(ctx, name)
	if err != nil {
		return fmt.Errorf("load schematic %q: %w", name, err)
	}
	bucket := snap.Bucket(name)
	for id, raw := range raws {
		doc, err := schem.DecodeDoc(raw)
		if err != nil {
			return fmt.Errorf("decode %q: %w", id, err)
		}
		bucket[id] = doc
	}
	if higherSeq(rangeSeq, *seq) {
		*seq = rangeSeq
	}
	return nil
}

// higherSeq reports whether a should replace b as the mirror's
// high-water mark. CouchDB-style sequence tokens are opaque strings in
// general, but the leading numeric component (before any "-") is
// monotonically increasing and is what every document store this client
// talks to actually emits, so that's what's compared.
func higherSeq(a, b string) bool {
	if b == "" {
		return a != ""
	}
	if a == "" {
		return false
	}
	return numericPrefix(a) > numericPrefix(b)
}

func numericPrefix(s string) int64 {
	var n int64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int64(c-'0')
	}
	return n
}
