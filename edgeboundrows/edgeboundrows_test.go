package edgeboundrows_test

import (
	"testing"

	"github.com/grailbio/hmmprune/bound"
	"github.com/grailbio/hmmprune/edgebounds"
	"github.com/grailbio/hmmprune/edgeboundrows"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrateDiagFwdBuildsRows(t *testing.T) {
	r := edgeboundrows.New(5, 5, edgeboundrows.Range{Beg: 0, End: 6})
	// antidiagonal d=4, k in [1,4) -> cells (1,3), (2,2), (3,1)
	r.IntegrateDiagFwd(bound.New(4, 1, 4))
	require.Equal(t, 1, r.RowSize(1))
	assert.Equal(t, bound.New(1, 3, 4), r.Get(1, 0))
	require.Equal(t, 1, r.RowSize(2))
	assert.Equal(t, bound.New(2, 2, 3), r.Get(2, 0))
}

func TestIntegrateDiagFwdExtendsAdjacentRow(t *testing.T) {
	r := edgeboundrows.New(5, 5, edgeboundrows.Range{Beg: 0, End: 6})
	r.IntegrateDiagFwd(bound.New(4, 1, 2)) // cell (1,3)
	r.IntegrateDiagFwd(bound.New(5, 1, 2)) // cell (1,4) - adjacent, should extend
	require.Equal(t, 1, r.RowSize(1))
	assert.Equal(t, bound.New(1, 3, 5), r.Get(1, 0))
}

func TestOverflowBridgesInsteadOfDropping(t *testing.T) {
	edgeboundrows.MaxBoundsPerRow = 2
	defer func() { edgeboundrows.MaxBoundsPerRow = 32 }()

	r := edgeboundrows.New(5, 20, edgeboundrows.Range{Beg: 0, End: 6})
	// force three disjoint (non-adjacent) bounds on row 1
	r.Pushback(1, bound.New(1, 0, 1))
	r.Pushback(1, bound.New(1, 5, 6))
	require.Equal(t, 2, r.RowSize(1))
	r.Pushback(1, bound.New(1, 10, 11))
	// overflow: bridged into the last bound, row count stays capped
	require.Equal(t, 2, r.RowSize(1))
	last := r.Get(1, 1)
	assert.Equal(t, 5, last.LB)
	assert.Equal(t, 11, last.RB)
}

func TestConvertFlushesAllRows(t *testing.T) {
	r := edgeboundrows.New(3, 3, edgeboundrows.Range{Beg: 0, End: 4})
	r.Pushback(0, bound.New(0, 0, 1))
	r.Pushback(2, bound.New(2, 1, 3))
	edg := r.Convert()
	assert.Equal(t, 2, edg.N())
	assert.Equal(t, edgebounds.Row, edg.Orient)
}
