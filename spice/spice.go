// Package spice renders a mirrored schematic hierarchy and its netlist
// into a flat SPICE deck: per-device instance lines, subcircuit
// declarations, and model-provided template overrides.
package spice

import (
	"fmt"
	"sort"
	"strings"

	"github.com/NyanCAD/Pyttoresque/netlist"
	"github.com/NyanCAD/Pyttoresque/schem"
	"github.com/NyanCAD/Pyttoresque/telemetry"
)

// Options parameterizes deck emission.
type Options struct {
	// Sim selects which per-simulator template/vector block a model
	// override contributes (e.g. "ngspice", "xyce").
	Sim string
	// Corner is substituted into a model override's decltempl wherever
	// "{corner}" appears.
	Corner string
	// Extra is appended verbatim after the top-level circuit body.
	Extra string
}

var templates = map[string]string{
	schem.CellResistor:  "R{name} {ports} {properties}",
	schem.CellCapacitor: "C{name} {ports} {properties}",
	schem.CellInductor:  "L{name} {ports} {properties}",
	schem.CellDiode:     "D{name} {ports} {properties}",
	schem.CellVsource:   "V{name} {ports} {properties}",
	schem.CellIsource:   "I{name} {ports} {properties}",
}

var twoPortOrder = []string{"P", "N"}
var mosfetOrder = []string{"D", "G", "S", "B"}
var bjtOrder = []string{"C", "B", "E"}

// Emit renders name's schematic plus every other mirrored schematic
// (excluding "models") as subcircuit declarations, assembling the
// top-level deck.
func Emit(name string, snapshot *schem.Snapshot, opts Options) (string, error) {
	declarations := make(map[string]bool)

	for subname, docs := range snapshot.Schematics {
		if subname == name || subname == schem.ModelsID {
			continue
		}
		id := schem.ParseID(subname)
		md, ok := snapshot.Models[id.Cell]
		if !ok {
			return "", telemetry.MissingModel(id.Cell)
		}
		ports := make([]string, len(md.Conn))
		for i, pin := range md.Conn {
			ports[i] = pin.Port
		}
		body, err := circuit(docs, snapshot.Models, opts, declarations)
		if err != nil {
			return "", fmt.Errorf("emit subcircuit %q: %w", subname, err)
		}
		decl := fmt.Sprintf(".subckt %s %s\n%s\n.ends %s", id.Variant, strings.Join(ports, " "), body, id.Variant)
		declarations[decl] = true
	}

	top, ok := snapshot.Schematics[name]
	if !ok {
		return "", fmt.Errorf("schematic %q not mirrored", name)
	}
	body, err := circuit(top, snapshot.Models, opts, declarations)
	if err != nil {
		return "", fmt.Errorf("emit top circuit %q: %w", name, err)
	}

	declList := make([]string, 0, len(declarations))
	for d := range declarations {
		declList = append(declList, d)
	}
	sort.Strings(declList) // set-valued per spec; sorted here only for reproducible test output

	var deck strings.Builder
	fmt.Fprintf(&deck, "* %s\n", name)
	for _, d := range declList {
		deck.WriteString(d)
		deck.WriteString("\n")
	}
	deck.WriteString(body)
	deck.WriteString("\n")
	if opts.Extra != "" {
		deck.WriteString(opts.Extra)
		deck.WriteString("\n")
	}
	deck.WriteString(".end\n")
	return deck.String(), nil
}

// circuit renders every device in docs as one SPICE line, in document-id
// order, accumulating any model-declared subcircuit bodies it triggers
// into declarations.
func circuit(docs schem.Bucket, models schem.Models, opts Options, declarations map[string]bool) (string, error) {
	for _, doc := range docs {
		if doc.IsSubcircuit() {
			if _, ok := models[doc.Cell]; !ok {
				return "", telemetry.MissingModel(doc.Cell)
			}
		}
	}

	nl, err := netlist.Extract(docs, models)
	if err != nil {
		return "", err
	}

	ids := make([]string, 0, len(nl))
	for id := range nl {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var lines []string
	for _, id := range ids {
		dev, ok := docs[id]
		if !ok {
			continue
		}
		line, err := deviceLine(id, dev, nl[id], models, opts, declarations)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

func deviceLine(id string, dev *schem.Doc, ports map[string]string, models schem.Models, opts Options, declarations map[string]bool) (string, error) {
	name := dev.Name
	if name == "" {
		name = spiceName(id)
	}
	modelName := dev.Model()
	properties := formatProps(dev.Props)

	templ, portOrder, err := templateFor(dev.Cell, models)
	if err != nil {
		return "", err
	}

	if md, ok := models[dev.Cell]; ok {
		if vd, ok := md.Variants[modelName]; ok {
			if sb := vd.Sim(opts.Sim); sb != nil && sb.RefTempl != "" {
				templ = sb.RefTempl
				if sb.DeclTempl != "" {
					declarations[strings.ReplaceAll(sb.DeclTempl, "{corner}", opts.Corner)] = true
				}
			}
		}
	}

	portStrs := make([]string, 0, len(portOrder))
	for _, p := range portOrder {
		portStrs = append(portStrs, spiceName(ports[p]))
	}

	r := strings.NewReplacer(
		"{name}", name,
		"{ports}", strings.Join(portStrs, " "),
		"{properties}", properties,
	)
	return r.Replace(templ), nil
}

func templateFor(cell string, models schem.Models) (string, []string, error) {
	switch {
	case schem.IsTwoPort(cell):
		return templates[cell], twoPortOrder, nil
	case schem.IsMosfet(cell):
		return "M{name} {ports} {properties}", mosfetOrder, nil
	case schem.IsBJT(cell):
		return "Q{name} {ports} {properties}", bjtOrder, nil
	default:
		md, ok := models[cell]
		if !ok {
			return "", nil, telemetry.MissingModel(cell)
		}
		order := make([]string, len(md.Conn))
		for i, pin := range md.Conn {
			order[i] = pin.Port
		}
		return "X{name} {ports} {properties}", order, nil
	}
}

// formatProps renders a property bag as SPICE would: model promoted
// first, spice appended verbatim last, everything else as k=v in the
// order it was declared.
func formatProps(props *schem.Props) string {
	if props == nil {
		return ""
	}
	var model, spiceVerbatim string
	var mid []string
	props.Range(func(k, v string) {
		switch k {
		case "model":
			model = v
		case "spice":
			spiceVerbatim = v
		default:
			mid = append(mid, k+"="+v)
		}
	})

	parts := make([]string, 0, len(mid)+2)
	if model != "" {
		parts = append(parts, model)
	}
	parts = append(parts, mid...)
	if spiceVerbatim != "" {
		parts = append(parts, spiceVerbatim)
	}
	return strings.Join(parts, " ")
}

// spiceName strips any "-key" property-write-back suffix from a net or
// document identifier, matching the source's spicename() helper.
func spiceName(n string) string {
	if i := strings.LastIndex(n, "-"); i >= 0 {
		return n[:i]
	}
	return n
}
