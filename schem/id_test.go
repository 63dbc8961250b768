package schem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIDSplitsCellVariantDeviceKey(t *testing.T) {
	id := ParseID("top$top:r1-value")
	assert.Equal(t, ID{Cell: "top", Variant: "top", Device: "r1", Key: "value"}, id)
}

func TestParseIDWithoutDeviceOrKey(t *testing.T) {
	id := ParseID("amp$default")
	assert.Equal(t, ID{Cell: "amp", Variant: "default"}, id)
}

func TestParseIDWithDeviceButNoKey(t *testing.T) {
	id := ParseID("amp$default:m1")
	assert.Equal(t, ID{Cell: "amp", Variant: "default", Device: "m1"}, id)
}

func TestIDSchemDropsDeviceAndKey(t *testing.T) {
	id := ID{Cell: "amp", Variant: "default", Device: "m1", Key: "w"}
	assert.Equal(t, "amp$default", id.Schem())
}

func TestIDStringRoundTrips(t *testing.T) {
	for _, s := range []string{"amp$default", "amp$default:m1", "top$top:r1-value"} {
		assert.Equal(t, s, ParseID(s).String())
	}
}
