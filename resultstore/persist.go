package resultstore

import (
	"encoding/json"
	"fmt"
	"math/cmplx"
	"time"
)

// complexColumn is the wire shape for a complex-valued column: parallel
// magnitude/argument arrays, the representation a document-store consumer
// can losslessly round-trip without a complex-number JSON type.
type complexColumn struct {
	Mag []float64 `json:"mag"`
	Arg []float64 `json:"arg"`
}

// MarshalJSON renders a Frame as column name → either a plain list of
// reals or a {mag, arg} pair for complex columns, with the independent
// variable included as a named column under f.Index.
func (f *Frame) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(f.Columns)+len(f.Complex)+1)
	if f.Index != "" {
		out[f.Index] = f.IndexValues
	}
	for name, vals := range f.Columns {
		out[name] = vals
	}
	for name, vals := range f.Complex {
		mag := make([]float64, len(vals))
		arg := make([]float64, len(vals))
		for i, v := range vals {
			mag[i] = cmplx.Abs(v)
			arg[i] = cmplx.Phase(v)
		}
		out[name] = complexColumn{Mag: mag, Arg: arg}
	}
	return json.Marshal(out)
}

// Document renders every key's most recently accumulated frame as the
// persisted result document body: analysis key → column map, per the
// simulator's result-persistence wire format. That wire format has no
// provision for more than one frame per key; a key that accumulated a
// column-set-mismatch frame (see Frames) persists only its latest one.
func (s *Store) Document() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*Frame, len(s.frames))
	for key, frames := range s.frames {
		if len(frames) == 0 {
			continue
		}
		out[key] = frames[len(frames)-1]
	}
	return json.Marshal(out)
}

// DocumentID builds the `<name>$result:<ISO-8601-UTC>` id a persisted
// result document is stored under.
func DocumentID(name string, at time.Time) string {
	return fmt.Sprintf("%s$result:%s", name, at.UTC().Format("2006-01-02T15:04:05.000Z"))
}
