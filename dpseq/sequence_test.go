package dpseq_test

import (
	"testing"

	"github.com/grailbio/hmmprune/dpseq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigitizeDNA(t *testing.T) {
	seq, err := dpseq.Digitize("q1", []byte("acgtACGT"), dpseq.DNA)
	require.NoError(t, err)
	assert.Equal(t, 8, seq.Len())
	assert.Equal(t, []int{0, 1, 2, 3, 0, 1, 2, 3}, seq.Digits)
}

func TestDigitizeAmino(t *testing.T) {
	seq, err := dpseq.Digitize("q2", []byte("ACDE"), dpseq.Amino)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, seq.Digits)
}

func TestDigitizeAminoUnknown(t *testing.T) {
	seq, err := dpseq.Digitize("q3", []byte("AZ"), dpseq.Amino)
	require.NoError(t, err)
	assert.Equal(t, 0, seq.Digits[0])
	assert.Equal(t, 20, seq.Digits[1])
}

func TestDigitizeEmptyRejected(t *testing.T) {
	_, err := dpseq.Digitize("empty", nil, dpseq.DNA)
	assert.Error(t, err)
}
