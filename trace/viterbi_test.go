package trace_test

import (
	"testing"

	"github.com/grailbio/hmmprune/dpseq"
	"github.com/grailbio/hmmprune/hmm"
	"github.com/grailbio/hmmprune/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureProfile builds a minimal T=3 local profile over the 4-letter DNA
// alphabet, favoring a perfect match of "ACG" by giving high match-emission
// scores along the diagonal and small/negative scores elsewhere.
func fixtureProfile() *hmm.Simple {
	t := 3
	msc := make([][]float64, t+1)
	isc := make([][]float64, t+1)
	tsc := make([][8]float64, t+1)
	wantCode := []int{0, 1, 2} // A,C,G
	for k := 1; k <= t; k++ {
		msc[k] = make([]float64, 4)
		isc[k] = make([]float64, 4)
		for a := 0; a < 4; a++ {
			if a == wantCode[k-1] {
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

func TestViterbiExactMatchFindsAnchor(t *testing.T) {
	seq, err := dpseq.Digitize("q", []byte("ACG"), dpseq.DNA)
	require.NoError(t, err)
	prof := fixtureProfile()

	anchor, score, err := trace.Viterbi(seq, prof)
	require.NoError(t, err)
	assert.True(t, score > -1e300)
	assert.True(t, anchor.BegQ >= 1 && anchor.BegQ <= anchor.EndQ)
	assert.True(t, anchor.BegT >= 1 && anchor.BegT <= anchor.EndT)
	assert.Equal(t, 3, anchor.EndQ)
}

func TestViterbiRejectsEmptySequence(t *testing.T) {
	prof := fixtureProfile()
	empty := &dpseq.Sequence{Name: "empty", Digits: nil}
	_, _, err := trace.Viterbi(empty, prof)
	assert.Error(t, err)
}
