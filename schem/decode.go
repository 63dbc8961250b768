package schem

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/NyanCAD/Pyttoresque/telemetry"
)

// RawDoc is the not-yet-interpreted shape a document arrives in over the
// document store wire protocol: an id, an opaque revision token, a
// deleted flag, and the full JSON body (empty when the change record
// carried no document body, e.g. a deletion reported without one).
type RawDoc struct {
	ID      string
	Rev     string
	Deleted bool
	Body    []byte
}

type wireDoc struct {
	Cell      string          `json:"cell"`
	X         int             `json:"x"`
	Y         int             `json:"y"`
	RX        int             `json:"rx"`
	RY        int             `json:"ry"`
	Name      string          `json:"name"`
	Transform []float64       `json:"transform"`
	Conn      json.RawMessage `json:"conn"`
	Models    json.RawMessage `json:"models"`
}

// DecodeDoc interprets a RawDoc as a wire/port/device/subcircuit
// document. Callers first check raw.ID to decide whether it names a
// models document (schem.IsModelID) and call DecodeModelDoc instead.
func DecodeDoc(raw RawDoc) (*Doc, error) {
	var w wireDoc
	if err := json.Unmarshal(raw.Body, &w); err != nil {
		return nil, fmt.Errorf("decode document %q: %w", raw.ID, err)
	}
	if w.Cell == "" {
		return nil, telemetry.Schema("document %q has no cell discriminator", raw.ID)
	}

	d := &Doc{
		ID:   raw.ID,
		Rev:  raw.Rev,
		Cell: w.Cell,
		X:    w.X,
		Y:    w.Y,
		RX:   w.RX,
		RY:   w.RY,
		Name: w.Name,
	}
	if len(w.Transform) == 6 {
		copy(d.Transform[:], w.Transform)
	}
	props, err := decodeProps(raw.Body)
	if err != nil {
		return nil, fmt.Errorf("decode props of %q: %w", raw.ID, err)
	}
	d.Props = props
	return d, nil
}

// IsModelID reports whether a document id names a models:<cell> document.
func IsModelID(id string) bool {
	return strings.HasPrefix(id, "models:")
}

// DecodeModelDoc interprets a RawDoc whose id has the "models:" prefix.
func DecodeModelDoc(raw RawDoc) (*ModelDoc, error) {
	var w wireDoc
	if err := json.Unmarshal(raw.Body, &w); err != nil {
		return nil, fmt.Errorf("decode model document %q: %w", raw.ID, err)
	}

	md := &ModelDoc{ID: raw.ID, Rev: raw.Rev, Cell: strings.TrimPrefix(raw.ID, "models:")}

	if len(w.Conn) > 0 {
		conn, err := decodeConn(w.Conn)
		if err != nil {
			return nil, fmt.Errorf("decode conn of %q: %w", raw.ID, err)
		}
		md.Conn = conn
	}

	if len(w.Models) > 0 {
		variants, err := decodeVariants(w.Models)
		if err != nil {
			return nil, fmt.Errorf("decode variants of %q: %w", raw.ID, err)
		}
		md.Variants = variants
	}
	return md, nil
}

func decodeConn(raw json.RawMessage) ([]Pin, error) {
	var triples [][3]json.RawMessage
	if err := json.Unmarshal(raw, &triples); err != nil {
		return nil, err
	}
	pins := make([]Pin, 0, len(triples))
	for _, t := range triples {
		var x, y int
		var port string
		if err := json.Unmarshal(t[0], &x); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(t[1], &y); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(t[2], &port); err != nil {
			return nil, err
		}
		pins = append(pins, Pin{X: x, Y: y, Port: port})
	}
	return pins, nil
}

func decodeVariants(raw json.RawMessage) (map[string]*VariantDef, error) {
	var byName map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byName); err != nil {
		return nil, err
	}
	out := make(map[string]*VariantDef, len(byName))
	for name, vraw := range byName {
		vd, err := decodeVariant(vraw)
		if err != nil {
			return nil, fmt.Errorf("variant %q: %w", name, err)
		}
		out[name] = vd
	}
	return out, nil
}

func decodeVariant(raw json.RawMessage) (*VariantDef, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	vd := &VariantDef{}
	if t, ok := fields["type"]; ok {
		var s string
		if err := json.Unmarshal(t, &s); err != nil {
			return nil, err
		}
		vd.Type = VariantType(s)
	}
	delete(fields, "type")
	if len(fields) == 0 {
		return vd, nil
	}
	vd.Sims = make(map[string]*SimBlock, len(fields))
	for sim, sraw := range fields {
		sb := &SimBlock{}
		if err := json.Unmarshal(sraw, sb); err != nil {
			return nil, fmt.Errorf("sim block %q: %w", sim, err)
		}
		vd.Sims[sim] = sb
	}
	return vd, nil
}

// SimBlock's JSON field names match the models.<variant>.<sim> document
// shape described in the data model.
func (s *SimBlock) UnmarshalJSON(data []byte) error {
	var aux struct {
		RefTempl  string   `json:"reftempl"`
		DeclTempl string   `json:"decltempl"`
		Vectors   []string `json:"vectors"`
		Component string   `json:"component"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.RefTempl = aux.RefTempl
	s.DeclTempl = aux.DeclTempl
	s.Vectors = aux.Vectors
	s.Component = aux.Component
	return nil
}

// decodeProps extracts the "props" object from a document body while
// preserving insertion order, which encoding/json's map decoding would
// otherwise discard. Property values are coerced to their JSON-literal
// textual form (so numbers like `1k` written as strings stay strings,
// and bare numbers round-trip through fmt's default formatting).
func decodeProps(body []byte) (*Props, error) {
	var container struct {
		Props json.RawMessage `json:"props"`
	}
	if err := json.Unmarshal(body, &container); err != nil {
		return nil, err
	}
	props := NewProps()
	if len(container.Props) == 0 {
		return props, nil
	}

	dec := json.NewDecoder(bytes.NewReader(container.Props))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("props is not a JSON object")
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("props key is not a string")
		}
		var raw interface{}
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		props.Set(key, propValueString(raw))
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return props, nil
}

func propValueString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return trimFloat(t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%g", f)
	return s
}
