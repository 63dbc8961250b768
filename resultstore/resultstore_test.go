package resultstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAccumulatesRowCount(t *testing.T) {
	s := New()
	f1 := NewFrame("time")
	f1.Columns["v1"] = []float64{1, 2}
	f1.Length = 2
	s.Append("tran1", f1)

	f2 := NewFrame("time")
	f2.Columns["v1"] = []float64{3}
	f2.Length = 1
	s.Append("tran1", f2)

	got := s.Frame("tran1")
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Length)
	assert.Equal(t, []float64{1, 2, 3}, got.Columns["v1"])
}

func TestAppendColumnMismatchOpensNewFrameWithoutDiscardingThePrior(t *testing.T) {
	s := New()
	f1 := NewFrame("time")
	f1.Columns["v1"] = []float64{1}
	f1.Length = 1
	s.Append("tran1", f1)

	f2 := NewFrame("time")
	f2.Columns["v2"] = []float64{9}
	f2.Length = 1
	s.Append("tran1", f2)

	frames := s.Frames("tran1")
	require.Len(t, frames, 2)
	assert.Equal(t, []float64{1}, frames[0].Columns["v1"])
	assert.Equal(t, []float64{9}, frames[1].Columns["v2"])

	// Frame still reports the most recent one, but the first frame's rows
	// remain reachable through Frames rather than being discarded.
	got := s.Frame("tran1")
	require.NotNil(t, got)
	assert.Equal(t, 1, got.Length)
	assert.Equal(t, []float64{9}, got.Columns["v2"])
}

func TestReplaceDiscardsPriorRows(t *testing.T) {
	s := New()
	f1 := NewFrame("time")
	f1.Columns["v1"] = []float64{1, 2, 3}
	f1.Length = 3
	s.Append("tran1", f1)

	f2 := NewFrame("time")
	f2.Columns["v1"] = []float64{9}
	f2.Length = 1
	s.Replace("tran1", f2)

	assert.Equal(t, 1, s.Frame("tran1").Length)
}

func TestClearAllPreservesKeys(t *testing.T) {
	s := New()
	f1 := NewFrame("freq")
	f1.Columns["gain"] = []float64{1}
	f1.Length = 1
	s.Append("ac1", f1)

	s.ClearAll()
	got := s.Frame("ac1")
	require.NotNil(t, got)
	assert.Equal(t, 0, got.Length)
	assert.Equal(t, "freq", got.Index)
	assert.Contains(t, s.Keys(), "ac1")
}

func TestComplexColumnsAppend(t *testing.T) {
	s := New()
	f1 := NewFrame("freq")
	f1.Complex["vout"] = []complex128{complex(1, 2)}
	f1.Length = 1
	s.Append("ac1", f1)

	f2 := NewFrame("freq")
	f2.Complex["vout"] = []complex128{complex(3, 4)}
	f2.Length = 1
	s.Append("ac1", f2)

	got := s.Frame("ac1")
	assert.Equal(t, []complex128{complex(1, 2), complex(3, 4)}, got.Complex["vout"])
}
