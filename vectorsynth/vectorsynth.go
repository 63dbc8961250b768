// Package vectorsynth computes the flat list of simulator-specific vector
// identifiers to request ("save") for a schematic, recursing through any
// schematic-backed subinstances. It is pure and deterministic: the same
// snapshot and simulator name always produce the same save-list, in the
// same order.
package vectorsynth

import (
	"sort"
	"strings"

	"github.com/NyanCAD/Pyttoresque/schem"
	"github.com/NyanCAD/Pyttoresque/telemetry"
)

// defaultVectors gives the fixed per-family save list for a primitive
// device with no model override for the requested simulator.
var defaultVectors = map[string][]string{
	schem.CellNmos:      {"gm", "id", "vdsat"},
	schem.CellPmos:      {"gm", "id", "vdsat"},
	schem.CellNpn:       {"gm", "ic", "ib"},
	schem.CellPnp:       {"gm", "ic", "ib"},
	schem.CellResistor:  {"i"},
	schem.CellInductor:  {"i"},
	schem.CellCapacitor: {"i"},
	schem.CellVsource:   {"i"},
	schem.CellDiode:     {"i"},
	schem.CellIsource:   {"i"},
}

// Synth walks name's schematic (and any schematic-backed subinstance it
// references, transitively) and returns the save-list for sim.
func Synth(name string, snapshot *schem.Snapshot, sim string) ([]string, error) {
	docs, ok := snapshot.Schematics[name]
	if !ok {
		return nil, telemetry.Schema("schematic %q not mirrored", name)
	}
	var out []string
	if err := synthBucket(docs, snapshot, sim, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func synthBucket(docs schem.Bucket, snapshot *schem.Snapshot, sim string, path string, out *[]string) error {
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		doc := docs[id]
		switch {
		case doc.IsWire(), doc.Cell == schem.CellText:
			continue
		case doc.IsPort():
			if strings.ToLower(doc.Name) != "gnd" {
				*out = append(*out, strings.ToLower(joinPath(path, doc.Name)))
			}
		default:
			if err := synthDevice(doc, snapshot, sim, path, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func synthDevice(doc *schem.Doc, snapshot *schem.Snapshot, sim string, path string, out *[]string) error {
	instname := doc.Name
	if instname == "" {
		instname = schem.ParseID(doc.ID).Device
	}

	vd, hasVariant := snapshot.Models.Variant(doc.Cell, doc.Model())
	switch {
	case hasVariant && vd.Type == schem.VariantSchematic:
		subname := doc.Cell + "$" + doc.Model()
		sub, ok := snapshot.Schematics[subname]
		if !ok {
			return telemetry.MissingModel(subname)
		}
		return synthBucket(sub, snapshot, sim, joinPath(path, instname), out)

	case hasVariant && vd.Type == schem.VariantSpice:
		sb := vd.Sim(sim)
		if sb == nil {
			return nil // no save-vectors declared for this simulator
		}
		typ := "x"
		if sb.Component != "" {
			typ = firstLower(sb.Component)
		} else if sb.RefTempl != "" {
			typ = firstLower(sb.RefTempl)
		}
		dtyp := firstLower(sb.RefTempl)
		for _, vec := range sb.Vectors {
			var b strings.Builder
			b.WriteString("@")
			b.WriteString(typ)
			b.WriteString(".")
			b.WriteString(path)
			b.WriteString(".")
			b.WriteString(dtyp)
			b.WriteString(instname)
			if sb.Component != "" {
				b.WriteString(".")
				b.WriteString(sb.Component)
			}
			b.WriteString("[")
			b.WriteString(vec)
			b.WriteString("]")
			*out = append(*out, strings.ToLower(b.String()))
		}
		return nil

	case schem.IsPrimitive(doc.Cell):
		for _, vec := range defaultVectors[doc.Cell] {
			entry := "@" + joinPath(path, instname) + "[" + vec + "]"
			*out = append(*out, strings.ToLower(entry))
		}
		return nil

	default:
		return telemetry.MissingModel(doc.Cell)
	}
}

func joinPath(path, seg string) string {
	if path == "" {
		return seg
	}
	return path + "." + seg
}

func firstLower(s string) string {
	if s == "" {
		return "x"
	}
	return strings.ToLower(s[:1])
}
