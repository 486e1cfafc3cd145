package boundeddp_test

import (
	"testing"

	"github.com/grailbio/hmmprune/boundeddp"
	"github.com/grailbio/hmmprune/bound"
	"github.com/grailbio/hmmprune/dpseq"
	"github.com/grailbio/hmmprune/edgebounds"
	"github.com/grailbio/hmmprune/hmm"
	"github.com/grailbio/hmmprune/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureProfile(t int) *hmm.Simple {
	msc := make([][]float64, t+1)
	isc := make([][]float64, t+1)
	tsc := make([][8]float64, t+1)
	wantCode := []int{0, 1, 2, 3, 0}
	for k := 1; k <= t; k++ {
		msc[k] = make([]float64, 4)
		isc[k] = make([]float64, 4)
		for a := 0; a < 4; a++ {
			if k-1 < len(wantCode) && a == wantCode[k-1] {
				msc[k][a] = 2.0
			} else {
				msc[k][a] = -2.0
			}
			isc[k][a] = -1.0
		}
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

// fullCoverage builds a Row-oriented edgebounds covering every cell of a
// Q x T matrix, standing in for what mergereorient would produce from a
// cloud search wide enough to never prune.
func fullCoverage(q, t int) *edgebounds.Edgebounds {
	edg := edgebounds.New(edgebounds.Row, q, t)
	for qi := 1; qi <= q; qi++ {
		edg.Pushback(bound.New(qi, 1, t+1))
	}
	edg.Sort()
	edg.Index()
	return edg
}

func TestForwardProducesFiniteScore(t *testing.T) {
	seq, err := dpseq.Digitize("q", []byte("ACGTA"), dpseq.DNA)
	require.NoError(t, err)
	prof := fixtureProfile(5)
	inner := fullCoverage(seq.Len(), prof.Length())

	res, err := boundeddp.Forward(seq, prof, inner)
	require.NoError(t, err)
	assert.True(t, res.Score > -1e300)
}

func TestBackwardProducesFiniteScore(t *testing.T) {
	seq, err := dpseq.Digitize("q", []byte("ACGTA"), dpseq.DNA)
	require.NoError(t, err)
	prof := fixtureProfile(5)
	inner := fullCoverage(seq.Len(), prof.Length())

	res, err := boundeddp.Backward(seq, prof, inner)
	require.NoError(t, err)
	assert.True(t, res.Score > -1e300)
}

func TestViterbiMatchesDenseAnchor(t *testing.T) {
	seq, err := dpseq.Digitize("q", []byte("ACGTA"), dpseq.DNA)
	require.NoError(t, err)
	prof := fixtureProfile(5)
	inner := fullCoverage(seq.Len(), prof.Length())

	res, anchor, err := boundeddp.Viterbi(seq, prof, inner)
	require.NoError(t, err)
	assert.True(t, res.Score > -1e300)

	denseAnchor, denseScore, err := trace.Viterbi(seq, prof)
	require.NoError(t, err)
	assert.InDelta(t, denseScore, res.Score, 1e-6)
	assert.Equal(t, denseAnchor, anchor)
}

func TestForwardRejectsShapeMismatch(t *testing.T) {
	seq, err := dpseq.Digitize("q", []byte("ACGTA"), dpseq.DNA)
	require.NoError(t, err)
	prof := fixtureProfile(5)
	wrongShape := fullCoverage(seq.Len()+1, prof.Length())

	_, err = boundeddp.Forward(seq, prof, wrongShape)
	assert.Error(t, err)
}
