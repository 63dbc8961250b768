// Package schem holds the shared schematic document data model: schematic
// identifiers, the tagged-variant Document type, and the canonical pin
// shapes for the primitive device families.
package schem

import "strings"

// ID is a schematic identifier: the pair (Cell, Variant) denotes a
// schematic definition, optionally naming a single device placement
// (Device) inside it, optionally further qualified by a sub-property key
// (Key), e.g. a write-back target like "top$top:r1-value".
//
// Grammar: <cell>$<variant>[:<device>[-<key>]]
type ID struct {
	Cell    string
	Variant string
	Device  string
	Key     string
}

// ParseID parses a document id of the form "cell$variant[:device[-key]]".
func ParseID(s string) ID {
	schem, dev, hasDev := strings.Cut(s, ":")
	cell, variant, _ := strings.Cut(schem, "$")

	id := ID{Cell: cell, Variant: variant}
	if hasDev {
		device, key, hasKey := strings.Cut(dev, "-")
		id.Device = device
		if hasKey {
			id.Key = key
		}
	}
	return id
}

// Schem returns the "cell$variant" schematic-definition portion of the id,
// dropping any device/key qualifier.
func (id ID) Schem() string {
	return id.Cell + "$" + id.Variant
}

// String renders the id back to its canonical textual form.
func (id ID) String() string {
	s := id.Schem()
	if id.Device == "" {
		return s
	}
	s += ":" + id.Device
	if id.Key != "" {
		s += "-" + id.Key
	}
	return s
}

// ModelsID is the fixed identifier of the models pseudo-schematic.
const ModelsID = "models"

// ModelDocID is the document id for the models document of a given cell,
// e.g. "models:nmos".
func ModelDocID(cell string) string {
	return "models:" + cell
}
