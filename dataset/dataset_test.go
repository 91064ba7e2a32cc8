package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	_, err := New(0)
	var dm *ErrDimensionMismatch
	assert.ErrorAs(t, err, &dm)

	d, err := New(3)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Dim())
	assert.Equal(t, 0, d.Len())
}

func TestAdd_IndexAssignment(t *testing.T) {
	d, err := New(2)
	require.NoError(t, err)

	s0, err := d.Add([]float32{1, 0}, 0, 1)
	require.NoError(t, err)
	t0, err := d.Add([]float32{0, 1}, -1, NoLabel)
	require.NoError(t, err)
	s1, err := d.Add([]float32{1, 1}, 0, 0)
	require.NoError(t, err)
	t1, err := d.Add([]float32{2, 2}, -2, NoLabel)
	require.NoError(t, err)

	// Per-side indices are independent counters.
	assert.Equal(t, 0, s0.Index)
	assert.Equal(t, 1, s1.Index)
	assert.Equal(t, 0, t0.Index)
	assert.Equal(t, 1, t1.Index)

	assert.Equal(t, 2, d.SourceCount())
	assert.Equal(t, 2, d.TargetCount())
	assert.Equal(t, 4, d.Len())
}

func TestAdd_TargetLabelStripped(t *testing.T) {
	d, err := New(2)
	require.NoError(t, err)

	s, err := d.Add([]float32{1, 0}, -1, 5)
	require.NoError(t, err)
	assert.Equal(t, NoLabel, s.Label, "target samples must not carry labels")
}

func TestAdd_Validation(t *testing.T) {
	d, err := New(2)
	require.NoError(t, err)

	_, err = d.Add(nil, 0, 0)
	assert.ErrorIs(t, err, ErrEmptyVector)

	_, err = d.Add([]float32{1, 2, 3}, 0, 0)
	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 2, dm.Expected)
	assert.Equal(t, 3, dm.Actual)
}

func TestSplit(t *testing.T) {
	d, err := New(1)
	require.NoError(t, err)

	for i, domain := range []int{0, -1, 1, -1, 0} {
		_, err := d.Add([]float32{float32(i)}, domain, 0)
		require.NoError(t, err)
	}

	source, target := d.Split()
	assert.Len(t, source, 3)
	assert.Len(t, target, 2)

	// Order preserved within each side.
	assert.Equal(t, float32(0), source[0].Features[0])
	assert.Equal(t, float32(2), source[1].Features[0])
	assert.Equal(t, float32(1), target[0].Features[0])
	assert.Equal(t, float32(3), target[1].Features[0])
}

func TestDomainPredicates(t *testing.T) {
	assert.True(t, Sample{Domain: 0}.IsSource())
	assert.True(t, Sample{Domain: 3}.IsSource())
	assert.True(t, Sample{Domain: -1}.IsTarget())
	assert.False(t, Sample{Domain: -1}.IsSource())
}

func TestFlatten(t *testing.T) {
	assert.Nil(t, Flatten(nil))
	assert.Equal(t, []float32{1, 2, 3, 4}, Flatten([][]float32{{1, 2}, {3, 4}}))
}
