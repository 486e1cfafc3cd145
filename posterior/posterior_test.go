package posterior_test

import (
	"testing"

	"github.com/grailbio/hmmprune/boundeddp"
	"github.com/grailbio/hmmprune/bound"
	"github.com/grailbio/hmmprune/dpseq"
	"github.com/grailbio/hmmprune/edgebounds"
	"github.com/grailbio/hmmprune/hmm"
	"github.com/grailbio/hmmprune/posterior"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureProfile(t int) *hmm.Simple {
	msc := make([][]float64, t+1)
	isc := make([][]float64, t+1)
	tsc := make([][8]float64, t+1)
	for k := 1; k <= t; k++ {
		msc[k] = []float64{1.0, 1.0, 1.0, 1.0}
		isc[k] = []float64{-1, -1, -1, -1}
		tsc[k] = [8]float64{0, -2, -2, -2, -2, -2, -2, -3}
	}
	tsc[0] = [8]float64{0, -2, -2, -2, -2, -2, -2, -0.1}
	return &hmm.Simple{
		T:         t,
		Msc:       msc,
		Isc:       isc,
		Tsc:       tsc,
		Xsc:       [5][2]float64{{-0.1, -2}, {0, 0}, {0, 0}, {-0.1, -2}, {-2, -2}},
		Local:     true,
		TauVal:    0,
		LambdaVal: 0.693,
		Compo:     []float64{0.25, 0.25, 0.25, 0.25},
		NameVal:   "fixture",
	}
}

func fullCoverage(q, t int) *edgebounds.Edgebounds {
	edg := edgebounds.New(edgebounds.Row, q, t)
	for qi := 1; qi <= q; qi++ {
		edg.Pushback(bound.New(qi, 1, t+1))
	}
	edg.Sort()
	edg.Index()
	return edg
}

func TestDecodeProducesBoundedProbabilities(t *testing.T) {
	seq, err := dpseq.Digitize("q", []byte("ACGT"), dpseq.DNA)
	require.NoError(t, err)
	prof := fixtureProfile(4)
	inner := fullCoverage(seq.Len(), prof.Length())

	fwd, err := boundeddp.Forward(seq, prof, inner)
	require.NoError(t, err)
	bck, err := boundeddp.Backward(seq, prof, inner)
	require.NoError(t, err)

	cells := posterior.Decode(fwd.Matrix, bck.Matrix, fwd.Score, inner)
	require.True(t, len(cells) > 0)
	for _, c := range cells {
		assert.True(t, c.PMatch >= 0 && c.PMatch <= 1)
		assert.True(t, c.PInsert >= 0 && c.PInsert <= 1)
		assert.True(t, c.PDelete >= 0 && c.PDelete <= 1)
	}
}

func TestNull2CorrectIsFiniteAndNonNegativeForEmptyInput(t *testing.T) {
	prof := fixtureProfile(4)
	seq, err := dpseq.Digitize("q", []byte("ACGT"), dpseq.DNA)
	require.NoError(t, err)

	assert.Equal(t, 0.0, posterior.Null2Correct(prof, seq, nil))

	inner := fullCoverage(seq.Len(), prof.Length())
	fwd, err := boundeddp.Forward(seq, prof, inner)
	require.NoError(t, err)
	bck, err := boundeddp.Backward(seq, prof, inner)
	require.NoError(t, err)
	cells := posterior.Decode(fwd.Matrix, bck.Matrix, fwd.Score, inner)

	bias := posterior.Null2Correct(prof, seq, cells)
	assert.False(t, isNaNOrInf(bias))
}

func isNaNOrInf(v float64) bool {
	return v != v || v > 1e300 || v < -1e300
}
