package schem

// Bucket is a schematic's documents, keyed by full document id.
type Bucket map[string]*Doc

// Clone returns a shallow copy of the bucket (documents are not deep
// copied, since Doc values are treated as immutable once decoded).
func (b Bucket) Clone() Bucket {
	out := make(Bucket, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Snapshot is the mirror's view of a schematic hierarchy: one Bucket per
// referenced (cell, variant) schematic, plus the models pseudo-schematic.
// Snapshots handed to consumers are conceptually immutable between
// mirror events.
type Snapshot struct {
	Schematics map[string]Bucket // keyed by "cell$variant"
	Models     Models             // keyed by cell name
}

// NewSnapshot returns an empty, ready-to-use Snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Schematics: make(map[string]Bucket),
		Models:     make(Models),
	}
}

// Clone performs a shallow copy: a new top-level map and new Bucket maps,
// but the same *Doc/*ModelDoc pointers, suitable for copy-on-next-event
// hand-off to a consumer while the mirror keeps mutating its own copy.
func (s *Snapshot) Clone() *Snapshot {
	out := NewSnapshot()
	for name, bucket := range s.Schematics {
		out.Schematics[name] = bucket.Clone()
	}
	for cell, md := range s.Models {
		out.Models[cell] = md
	}
	return out
}

// Bucket returns (creating if necessary) the bucket for a schematic name.
func (s *Snapshot) Bucket(name string) Bucket {
	b, ok := s.Schematics[name]
	if !ok {
		b = make(Bucket)
		s.Schematics[name] = b
	}
	return b
}

// Has reports whether a schematic identifier is present in the snapshot.
func (s *Snapshot) Has(name string) bool {
	_, ok := s.Schematics[name]
	return ok
}

// Selector is the disjunction over the snapshot's known schematic
// identifiers used to build a document-store change filter: the clause
// `_id in [name+":", name+":\uFFF0")` for every known name, plus the
// fixed "models" prefix.
func (s *Snapshot) Selector() []string {
	names := make([]string, 0, len(s.Schematics)+1)
	names = append(names, ModelsID)
	for name := range s.Schematics {
		names = append(names, name)
	}
	return names
}
