package schem

// Props is an ordered string→string property bag. Insertion order is
// preserved so that emission is deterministic: a "model" key is promoted
// ahead of everything else and a "spice" key is appended verbatim, but
// all other keys must render in the order they were declared.
type Props struct {
	keys []string
	vals map[string]string
}

// NewProps returns an empty, ready-to-use Props.
func NewProps() *Props {
	return &Props{vals: make(map[string]string)}
}

// Set inserts or overwrites a property, preserving first-insertion order.
func (p *Props) Set(key, value string) {
	if _, ok := p.vals[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.vals[key] = value
}

// Get returns the value for key and whether it was present.
func (p *Props) Get(key string) (string, bool) {
	v, ok := p.vals[key]
	return v, ok
}

// Model returns the "model" property, or "" if unset.
func (p *Props) Model() string {
	v, _ := p.Get("model")
	return v
}

// Spice returns the "spice" property, or "" if unset.
func (p *Props) Spice() string {
	v, _ := p.Get("spice")
	return v
}

// Range calls fn for every property in insertion order.
func (p *Props) Range(fn func(key, value string)) {
	if p == nil {
		return
	}
	for _, k := range p.keys {
		fn(k, p.vals[k])
	}
}

// Len returns the number of properties.
func (p *Props) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}
