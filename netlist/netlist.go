// Package netlist turns one schematic's documents into a flat net list:
// for every device instance, the net name connected to each of its pins.
package netlist

import (
	"fmt"
	"sort"

	"github.com/NyanCAD/Pyttoresque/geometry"
	"github.com/NyanCAD/Pyttoresque/schem"
	"github.com/NyanCAD/Pyttoresque/telemetry"
)

// netPriority orders the sources a net name can come from; a higher
// value always overrides a lower one. Among wire names the first one
// encountered is kept; among ports each one encountered replaces the
// previous.
type netPriority int

const (
	prioritySynthetic netPriority = iota
	priorityWireName
	priorityPort
)

type wireEntry struct {
	doc  *schem.Doc
	name string // "" for synthetic zero-length wires and unnamed wires
}

// Extract computes the device → {port: net} mapping for one schematic's
// document set.
func Extract(docs schem.Bucket, models schem.Models) (map[string]map[string]string, error) {
	deviceIndex, wireIndex := buildIndexes(docs, models)

	raw := make(map[string]map[string][]string) // netname -> devid -> ports
	netnum := 0

	for len(wireIndex) > 0 {
		var seed geometry.Point
		for p := range wireIndex {
			seed = p
			break
		}
		seedQueue := wireIndex[seed]
		delete(wireIndex, seed)

		netname := fmt.Sprintf("net%d", netnum)
		netnum++
		priority := prioritySynthetic
		netdevs := make(map[string][]string)

		queue := append([]wireEntry(nil), seedQueue...)
		for len(queue) > 0 {
			w := queue[0]
			queue = queue[1:]

			switch {
			case w.doc.IsWire():
				if w.name != "" && priority < priorityWireName {
					netname = w.name
					priority = priorityWireName
				}
				for pt := range pinsOf(w.doc, models) {
					if more, ok := wireIndex[pt]; ok {
						queue = append(queue, more...)
						delete(wireIndex, pt)
					}
					if devs, ok := deviceIndex[pt]; ok {
						for _, dp := range devs {
							netdevs[dp.dev.ID] = append(netdevs[dp.dev.ID], dp.port)
						}
					}
				}
			case w.doc.IsPort():
				netname = w.doc.Name
				priority = priorityPort
			default:
				return nil, telemetry.Schema("document %q of cell %q is not a wire or port in a net sweep", w.doc.ID, w.doc.Cell)
			}
		}

		bucket, ok := raw[netname]
		if !ok {
			bucket = make(map[string][]string)
			raw[netname] = bucket
		}
		for dev, ports := range netdevs {
			bucket[dev] = append(bucket[dev], ports...)
		}
	}

	out := make(map[string]map[string]string)
	for net, devs := range raw {
		for dev, ports := range devs {
			for _, port := range ports {
				m, ok := out[dev]
				if !ok {
					m = make(map[string]string)
					out[dev] = m
				}
				m[port] = net
			}
		}
	}
	return out, nil
}

type devicePort struct {
	port string
	dev  *schem.Doc
}

// buildIndexes constructs the wire and device spatial indexes, injecting
// a synthetic zero-length wire at every device pin coordinate not
// already covered by a real wire or port, so two devices placed
// touching each other without an explicit wire still form one net.
func buildIndexes(docs schem.Bucket, models schem.Models) (map[geometry.Point][]devicePort, map[geometry.Point][]wireEntry) {
	deviceIndex := make(map[geometry.Point][]devicePort)
	wireIndex := make(map[geometry.Point][]wireEntry)

	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids) // deterministic iteration for reproducible synthetic-wire ordering

	for _, id := range ids {
		doc := docs[id]
		if doc.IsWire() || doc.IsPort() {
			for pt := range pinsOf(doc, models) {
				wireIndex[pt] = append(wireIndex[pt], wireEntry{doc: doc, name: doc.Name})
			}
			continue
		}
		if doc.Cell == schem.CellText {
			continue
		}
		for pt, pin := range pinsOf(doc, models) {
			deviceIndex[pt] = append(deviceIndex[pt], devicePort{port: pin, dev: doc})
			if _, present := wireIndex[pt]; !present {
				synth := &schem.Doc{Cell: schem.CellWire, X: pt.X, Y: pt.Y, RX: 0, RY: 0}
				wireIndex[pt] = []wireEntry{{doc: synth, name: ""}}
			}
		}
	}
	return deviceIndex, wireIndex
}

func pinsOf(doc *schem.Doc, models schem.Models) map[geometry.Point]string {
	pins := geometry.Pins(doc, models)
	out := make(map[geometry.Point]string, len(pins))
	for pt, pn := range pins {
		out[pt] = pn.Name
	}
	return out
}
