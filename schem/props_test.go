package schem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPropsPreservesInsertionOrder(t *testing.T) {
	p := NewProps()
	p.Set("r", "1k")
	p.Set("model", "rmod")
	p.Set("tc1", "0.001")

	var order []string
	p.Range(func(k, v string) { order = append(order, k) })
	assert.Equal(t, []string{"r", "model", "tc1"}, order)
	assert.Equal(t, 3, p.Len())
}

func TestPropsSetOverwritesWithoutReordering(t *testing.T) {
	p := NewProps()
	p.Set("r", "1k")
	p.Set("model", "rmod")
	p.Set("r", "2k")

	var order []string
	p.Range(func(k, v string) { order = append(order, k) })
	assert.Equal(t, []string{"r", "model"}, order)

	v, ok := p.Get("r")
	assert.True(t, ok)
	assert.Equal(t, "2k", v)
}

func TestPropsModelAndSpiceHelpers(t *testing.T) {
	p := NewProps()
	p.Set("model", "rmod")
	p.Set("spice", ".param x=1")
	assert.Equal(t, "rmod", p.Model())
	assert.Equal(t, ".param x=1", p.Spice())

	empty := NewProps()
	assert.Equal(t, "", empty.Model())
}

func TestNilPropsRangeAndLenAreSafe(t *testing.T) {
	var p *Props
	assert.Equal(t, 0, p.Len())
	called := false
	p.Range(func(k, v string) { called = true })
	assert.False(t, called)
}
