package boundeddp

import (
	"github.com/grailbio/hmmprune/dpseq"
	"github.com/grailbio/hmmprune/edgebounds"
	"github.com/grailbio/hmmprune/hmm"
	"github.com/grailbio/hmmprune/logsum"
	"github.com/grailbio/hmmprune/sparsemx"
	"github.com/pkg/errors"
)

// Backward runs the sparse bounded Backward recurrence over inner's
// active cells into a Matrix it shapes from inner exactly as Forward does
// (so the Forward and Backward planes share the same outer support for
// posterior decoding),
// returning the filled Matrix and the total Backward score (read off
// row 0's N-state value). Grounded on run_Bound_Backward_Linear, mirrored
// cell-by-cell from the Forward recurrence the same way cloud.Backward
// mirrors cloud.Forward — see DESIGN.md for why this is a structural
// mirror rather than a literally re-derived inverse.
func Backward(seq *dpseq.Sequence, prof hmm.Profile, inner *edgebounds.Edgebounds) (*Result, error) {
	q, t := seq.Len(), prof.Length()
	if inner.Q != q || inner.T != t {
		return nil, errors.New("boundeddp: Backward edgebounds shape mismatch with sequence/profile")
	}

	mx := sparsemx.ShapeLikeEdgebounds(inner)
	bC := allocRow(q + 1)
	bJ := allocRow(q + 1)
	bN := allocRow(q + 1)
	bB := allocRow(q + 1)
	bE := allocRow(q + 1)

	bC[q] = prof.Special(hmm.SpC, hmm.Move)
	bJ[q] = logsum.NegInf
	bN[q] = logsum.NegInf
	bB[q] = rowBToM(mx, inner, prof, seq, q+1, t)
	bE[q] = logsum.Sum(bJ[q]+prof.Special(hmm.SpE, hmm.Loop), bC[q]+prof.Special(hmm.SpE, hmm.Move))
	if err := fillRow(mx, inner, prof, seq, q, t, bE[q]); err != nil {
		return nil, err
	}

	for qi := q - 1; qi >= 0; qi-- {
		bB[qi] = rowBToM(mx, inner, prof, seq, qi+1, t)
		bJ[qi] = logsum.Sum(bB[qi]+prof.Special(hmm.SpJ, hmm.Move), bJ[qi+1]+prof.Special(hmm.SpJ, hmm.Loop))
		bC[qi] = bC[qi+1] + prof.Special(hmm.SpC, hmm.Loop)
		bE[qi] = logsum.Sum(bJ[qi]+prof.Special(hmm.SpE, hmm.Loop), bC[qi]+prof.Special(hmm.SpE, hmm.Move))
		bN[qi] = logsum.Sum(bN[qi+1]+prof.Special(hmm.SpN, hmm.Loop), bB[qi+1]+prof.Special(hmm.SpN, hmm.Move))
		if qi >= 1 {
			if err := fillRow(mx, inner, prof, seq, qi, t, bE[qi]); err != nil {
				return nil, err
			}
		}
	}

	return &Result{Matrix: mx, Score: bN[0]}, nil
}

// fillRow computes bM/bI/bD for every cell in row qi's inner bound span,
// reading already-computed row qi+1 (and same-row, next-column) values.
func fillRow(mx *sparsemx.Matrix, inner *edgebounds.Edgebounds, prof hmm.Profile, seq *dpseq.Sequence, qi, t int, rowE float64) error {
	start, end, ok := inner.RowRange(qi)
	if !ok {
		return nil
	}
	hasNext := qi+1 <= seq.Len()

	for bi := end - 1; bi >= start; bi-- {
		b := inner.Bounds[bi]
		_, cur, nxt := mx.ImapOffsets(bi)
		for ti := b.RB - 1; ti >= b.LB; ti-- {
			if ti < 1 || ti > t {
				continue
			}
			colOff := ti - b.LB
			mNext, iNext, matchEmitNext, insertEmitNext := logsum.NegInf, logsum.NegInf, logsum.NegInf, logsum.NegInf
			if hasNext && ti+1 <= t {
				a := seq.Digits[qi]
				mNext = mx.GetByOffset(nxt, colOff+1, sparsemx.M)
				iNext = mx.GetByOffset(nxt, colOff+1, sparsemx.I)
				matchEmitNext = prof.MatchEmission(ti+1, a)
				insertEmitNext = prof.InsertEmission(ti+1, a)
			}
			dNextSameRow := logsum.NegInf
			mNextSameRow := logsum.NegInf
			if ti+1 <= t {
				dNextSameRow = mx.GetByOffset(cur, colOff+1, sparsemx.D)
				mNextSameRow = mx.GetByOffset(cur, colOff+1, sparsemx.M)
			}

			mVal := logsum.Sum(
				logsum.Sum3(
					mNext+prof.Transition(ti, hmm.M2M)+matchEmitNext,
					iNext+prof.Transition(ti, hmm.M2I)+insertEmitNext,
					dNextSameRow+prof.Transition(ti, hmm.M2D),
				),
				rowE,
			)
			iVal := logsum.Sum(
				mNext+prof.Transition(ti, hmm.M2I)+matchEmitNext,
				iNext+prof.Transition(ti, hmm.I2I)+insertEmitNext,
			)
			dVal := logsum.Sum(
				mNextSameRow+prof.Transition(ti, hmm.M2D),
				dNextSameRow+prof.Transition(ti, hmm.D2D),
			)

			mx.SetByOffset(cur, colOff, sparsemx.M, mVal)
			mx.SetByOffset(cur, colOff, sparsemx.I, iVal)
			mx.SetByOffset(cur, colOff, sparsemx.D, dVal)
		}
	}
	return nil
}

// rowBToM sums the B2M contribution from row qi's M-state cells, the
// backward mirror of Forward's b2m := B[qi-1]+Transition(k,B2M) term.
func rowBToM(mx *sparsemx.Matrix, inner *edgebounds.Edgebounds, prof hmm.Profile, seq *dpseq.Sequence, qi, t int) float64 {
	if qi < 1 || qi > seq.Len() {
		return logsum.NegInf
	}
	start, end, ok := inner.RowRange(qi)
	if !ok {
		return logsum.NegInf
	}
	a := seq.Digits[qi-1]
	acc := logsum.NegInf
	for bi := start; bi < end; bi++ {
		b := inner.Bounds[bi]
		_, cur, _ := mx.ImapOffsets(bi)
		for ti := b.LB; ti < b.RB; ti++ {
			if ti < 1 || ti > t {
				continue
			}
			k := ti - 1
			colOff := ti - b.LB
			term := prof.Transition(k, hmm.B2M) + prof.MatchEmission(ti, a) + mx.GetByOffset(cur, colOff, sparsemx.M)
			acc = logsum.Sum(acc, term)
		}
	}
	return acc
}
