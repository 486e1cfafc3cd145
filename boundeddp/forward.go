// Package boundeddp implements the sparse bounded Forward, Backward, and
// Viterbi recurrences over the row-indexed support mergereorient builds
// (§4.6). Grounded on
// original_source/src/algs_linear/bounded_fwdbck_linear.c.
package boundeddp

import (
	"github.com/grailbio/hmmprune/dpseq"
	"github.com/grailbio/hmmprune/edgebounds"
	"github.com/grailbio/hmmprune/hmm"
	"github.com/grailbio/hmmprune/logsum"
	"github.com/grailbio/hmmprune/sparsemx"
	"github.com/pkg/errors"
)

// Result bundles a completed sparse Forward or Backward pass: the filled
// matrix and the final score.
type Result struct {
	Matrix *sparsemx.Matrix
	Score  float64
}

// Forward runs the sparse bounded Forward recurrence over inner's active
// cells, returning the filled Matrix and the Forward score. Grounded on
// run_Bound_Forward_Linear's per-row sweep restricted to each row's
// edgebound span, generalized from 2-row linear space to the full
// sparsemx.Matrix storage so posterior decoding can read both Forward and
// Backward matrices afterward.
func Forward(seq *dpseq.Sequence, prof hmm.Profile, inner *edgebounds.Edgebounds) (*Result, error) {
	q, t := seq.Len(), prof.Length()
	if inner.Q != q || inner.T != t {
		return nil, errors.New("boundeddp: Forward edgebounds shape mismatch with sequence/profile")
	}

	mx := sparsemx.ShapeLikeEdgebounds(inner)
	sp := newSpecial(q)
	sp.N[0] = 0
	sp.B[0] = prof.Special(hmm.SpN, hmm.Move)
	sp.E[0], sp.C[0], sp.J[0] = logsum.NegInf, logsum.NegInf, logsum.NegInf

	isLocal := prof.IsLocal()

	for qi := 1; qi <= q; qi++ {
		a := seq.Digits[qi-1]
		start, end, ok := inner.RowRange(qi)
		if ok {
			for bi := start; bi < end; bi++ {
				b := inner.Bounds[bi]
				prv, cur, _ := mx.ImapOffsets(bi)
				for ti := b.LB; ti < b.RB; ti++ {
					if ti < 1 || ti > t {
						continue
					}
					k := ti - 1
					colOff := ti - b.LB
					b2m := sp.B[qi-1] + prof.Transition(k, hmm.B2M)

					mVal := prof.MatchEmission(ti, a) + logsum.Sum(
						logsum.Sum3(
							mx.GetByOffset(prv, colOff-1, sparsemx.M)+prof.Transition(k, hmm.M2M),
							mx.GetByOffset(prv, colOff-1, sparsemx.I)+prof.Transition(k, hmm.I2M),
							mx.GetByOffset(prv, colOff-1, sparsemx.D)+prof.Transition(k, hmm.D2M),
						),
						b2m,
					)
					iVal := prof.InsertEmission(ti, a) + logsum.Sum(
						mx.GetByOffset(cur, colOff-1, sparsemx.M)+prof.Transition(ti, hmm.M2I),
						mx.GetByOffset(cur, colOff-1, sparsemx.I)+prof.Transition(ti, hmm.I2I),
					)
					var dVal float64
					if ti == 1 {
						dVal = logsum.NegInf
					} else {
						dVal = logsum.Sum(
							mx.GetByOffset(cur, colOff-1, sparsemx.M)+prof.Transition(ti-1, hmm.M2D),
							mx.GetByOffset(cur, colOff-1, sparsemx.D)+prof.Transition(ti-1, hmm.D2D),
						)
					}
					mx.SetByOffset(cur, colOff, sparsemx.M, mVal)
					mx.SetByOffset(cur, colOff, sparsemx.I, iVal)
					mx.SetByOffset(cur, colOff, sparsemx.D, dVal)
				}
			}
			sp.E[qi] = rowEUpdate(mx, inner, qi, t, isLocal)
		} else {
			sp.E[qi] = logsum.NegInf
		}

		sp.J[qi] = logsum.Sum(sp.J[qi-1]+prof.Special(hmm.SpJ, hmm.Loop), sp.E[qi]+prof.Special(hmm.SpE, hmm.Loop))
		sp.B[qi] = logsum.Sum(sp.N[qi-1]+prof.Special(hmm.SpN, hmm.Move), sp.J[qi]+prof.Special(hmm.SpJ, hmm.Move))
		sp.C[qi] = logsum.Sum(sp.C[qi-1]+prof.Special(hmm.SpC, hmm.Loop), sp.E[qi]+prof.Special(hmm.SpE, hmm.Move))
		sp.N[qi] = sp.N[qi-1] + prof.Special(hmm.SpN, hmm.Loop)
	}

	score := sp.C[q] + prof.Special(hmm.SpC, hmm.Move)
	return &Result{Matrix: mx, Score: score}, nil
}

// rowEUpdate computes the E-state update for row qi: in local mode, the
// logsum over every M-state cell in the row's bound support; in glocal
// mode, the single cell at the final column.
func rowEUpdate(mx *sparsemx.Matrix, edg *edgebounds.Edgebounds, qi, t int, isLocal bool) float64 {
	if !isLocal {
		return logsum.Sum(mx.Get(qi, t, sparsemx.M), mx.Get(qi, t, sparsemx.D))
	}
	start, end, ok := edg.RowRange(qi)
	if !ok {
		return logsum.NegInf
	}
	acc := logsum.NegInf
	for bi := start; bi < end; bi++ {
		b := edg.Bounds[bi]
		_, cur, _ := mx.ImapOffsets(bi)
		for ti := b.LB; ti < b.RB; ti++ {
			colOff := ti - b.LB
			acc = logsum.Sum(acc, mx.GetByOffset(cur, colOff, sparsemx.M))
		}
	}
	return acc
}
