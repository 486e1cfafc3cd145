package boundeddp

import (
	"github.com/grailbio/hmmprune/dpseq"
	"github.com/grailbio/hmmprune/edgebounds"
	"github.com/grailbio/hmmprune/hmm"
	"github.com/grailbio/hmmprune/logsum"
	"github.com/grailbio/hmmprune/sparsemx"
	"github.com/grailbio/hmmprune/trace"
	"github.com/pkg/errors"
)

func maxOf(vs ...float64) float64 {
	best := logsum.NegInf
	for _, v := range vs {
		if v > best {
			best = v
		}
	}
	return best
}

// Viterbi runs the sparse bounded Viterbi recurrence — identical in shape
// to Forward but substituting max for logsum throughout, matching
// bound_viterbi_sparse.c's "same row/bound iteration, max instead of
// logsum" relationship to the Forward pass — and returns the traceback
// Anchor alongside the filled Matrix and score.
func Viterbi(seq *dpseq.Sequence, prof hmm.Profile, inner *edgebounds.Edgebounds) (*Result, trace.Anchor, error) {
	q, t := seq.Len(), prof.Length()
	if inner.Q != q || inner.T != t {
		return nil, trace.Anchor{}, errors.New("boundeddp: Viterbi edgebounds shape mismatch with sequence/profile")
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
					mVal := prof.MatchEmission(ti, a) + maxOf(
						mx.GetByOffset(prv, colOff-1, sparsemx.M)+prof.Transition(k, hmm.M2M),
						mx.GetByOffset(prv, colOff-1, sparsemx.I)+prof.Transition(k, hmm.I2M),
						mx.GetByOffset(prv, colOff-1, sparsemx.D)+prof.Transition(k, hmm.D2M),
						b2m,
					)
					iVal := prof.InsertEmission(ti, a) + maxOf(
						mx.GetByOffset(cur, colOff-1, sparsemx.M)+prof.Transition(ti, hmm.M2I),
						mx.GetByOffset(cur, colOff-1, sparsemx.I)+prof.Transition(ti, hmm.I2I),
					)
					var dVal float64
					if ti == 1 {
						dVal = logsum.NegInf
					} else {
						dVal = maxOf(
							mx.GetByOffset(cur, colOff-1, sparsemx.M)+prof.Transition(ti-1, hmm.M2D),
							mx.GetByOffset(cur, colOff-1, sparsemx.D)+prof.Transition(ti-1, hmm.D2D),
						)
					}
					mx.SetByOffset(cur, colOff, sparsemx.M, mVal)
					mx.SetByOffset(cur, colOff, sparsemx.I, iVal)
					mx.SetByOffset(cur, colOff, sparsemx.D, dVal)
				}
			}
			sp.E[qi] = rowEMax(mx, inner, qi, t, isLocal)
		} else {
			sp.E[qi] = logsum.NegInf
		}

		sp.J[qi] = maxOf(sp.J[qi-1]+prof.Special(hmm.SpJ, hmm.Loop), sp.E[qi]+prof.Special(hmm.SpE, hmm.Loop))
		sp.B[qi] = maxOf(sp.N[qi-1]+prof.Special(hmm.SpN, hmm.Move), sp.J[qi]+prof.Special(hmm.SpJ, hmm.Move))
		sp.C[qi] = maxOf(sp.C[qi-1]+prof.Special(hmm.SpC, hmm.Loop), sp.E[qi]+prof.Special(hmm.SpE, hmm.Move))
		sp.N[qi] = sp.N[qi-1] + prof.Special(hmm.SpN, hmm.Loop)
	}

	score := sp.C[q] + prof.Special(hmm.SpC, hmm.Move)
	anchor, err := tracebackSparse(mx, inner, sp, prof, seq, isLocal)
	if err != nil {
		return nil, trace.Anchor{}, err
	}
	return &Result{Matrix: mx, Score: score}, anchor, nil
}

func rowEMax(mx *sparsemx.Matrix, edg *edgebounds.Edgebounds, qi, t int, isLocal bool) float64 {
	if !isLocal {
		return maxOf(mx.Get(qi, t, sparsemx.M), mx.Get(qi, t, sparsemx.D))
	}
	start, end, ok := edg.RowRange(qi)
	if !ok {
		return logsum.NegInf
	}
	best := logsum.NegInf
	for bi := start; bi < end; bi++ {
		b := edg.Bounds[bi]
		_, cur, _ := mx.ImapOffsets(bi)
		for ti := b.LB; ti < b.RB; ti++ {
			colOff := ti - b.LB
			if v := mx.GetByOffset(cur, colOff, sparsemx.M); v > best {
				best = v
			}
		}
	}
	return best
}
