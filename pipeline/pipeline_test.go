package pipeline_test

import (
	"testing"

	"github.com/grailbio/hmmprune/dpseq"
	"github.com/grailbio/hmmprune/hmm"
	"github.com/grailbio/hmmprune/hmmerr"
	"github.com/grailbio/hmmprune/pipeline"
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

func TestRunPairFullModeProducesScoredResult(t *testing.T) {
	seq, err := dpseq.Digitize("q1", []byte("ACGTA"), dpseq.DNA)
	require.NoError(t, err)
	prof := fixtureProfile(5)

	opts := pipeline.DefaultOpts
	opts.RunFull = true
	opts.Nseqs = 1000
	r := pipeline.NewRunner(opts)

	res, err := r.RunPair("q1", "t1", seq, prof)
	require.NoError(t, err)
	require.False(t, res.Collapsed)
	assert.Equal(t, "q1", res.Query)
	assert.Equal(t, "t1", res.Target)
	assert.True(t, res.Pval > 0 && res.Pval <= 1)
	assert.True(t, res.Eval > 0)
}

func TestRunPairViterbiOnlySkipsScoring(t *testing.T) {
	seq, err := dpseq.Digitize("q1", []byte("ACGTA"), dpseq.DNA)
	require.NoError(t, err)
	prof := fixtureProfile(5)

	opts := pipeline.DefaultOpts
	opts.SearchMode = pipeline.ModeViterbiOnly
	r := pipeline.NewRunner(opts)

	res, err := r.RunPair("q1", "t1", seq, prof)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Eval)
	assert.True(t, res.Anchor.EndQ >= res.Anchor.BegQ)
}

func TestEmptyQueryAndEmptyProfileAreRejected(t *testing.T) {
	seq, err := dpseq.Digitize("q1", []byte(""), dpseq.DNA)
	_ = seq
	require.Error(t, err) // dpseq.Digitize itself rejects empty input

	prof := fixtureProfile(5)
	r := pipeline.NewRunner(pipeline.DefaultOpts)
	nonEmptySeq, derr := dpseq.Digitize("q1", []byte("A"), dpseq.DNA)
	require.NoError(t, derr)

	emptyProf := fixtureProfile(0)
	_, err = r.RunPair("q1", "t1", nonEmptySeq, emptyProf)
	assert.True(t, hmmerr.Is(err, hmmerr.ErrInvalidInput))
}

func TestRunProcessesAllPairsConcurrently(t *testing.T) {
	prof := fixtureProfile(5)
	pairs := make([]pipeline.PairInput, 0, 4)
	for i := 0; i < 4; i++ {
		seq, err := dpseq.Digitize("q", []byte("ACGTA"), dpseq.DNA)
		require.NoError(t, err)
		pairs = append(pairs, pipeline.PairInput{
			QueryName:  "q",
			TargetName: "t",
			Seq:        seq,
			Prof:       prof,
		})
	}

	opts := pipeline.DefaultOpts
	opts.RunFull = true
	opts.Parallelism = 2
	r := pipeline.NewRunner(opts)

	results, err := r.Run(pairs)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, res := range results {
		assert.False(t, res.Collapsed)
	}
}
