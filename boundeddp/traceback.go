package boundeddp

import (
	"github.com/grailbio/hmmprune/dpseq"
	"github.com/grailbio/hmmprune/edgebounds"
	"github.com/grailbio/hmmprune/hmm"
	"github.com/grailbio/hmmprune/sparsemx"
	"github.com/grailbio/hmmprune/trace"
	"github.com/pkg/errors"
)

const tol = 1e-5

func cmpTol(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

// tracebackSparse walks backward from the C state through a completed
// Viterbi Matrix/special rows, restricted to cells inner actually covers,
// mirroring trace's dense traceback (same CMP_TOL predecessor-priority
// order) but reading through sparsemx.Matrix instead of a dense grid.
func tracebackSparse(mx *sparsemx.Matrix, inner *edgebounds.Edgebounds, sp *special, prof hmm.Profile, seq *dpseq.Sequence, isLocal bool) (trace.Anchor, error) {
	q, t := len(sp.N)-1, prof.Length()
	state := "C"
	minQ, minT, maxQ, maxT := q+1, t+1, -1, -1

	for state != "S" {
		switch state {
		case "C":
			if q == 0 {
				state = "S"
				continue
			}
			if cmpTol(sp.C[q], sp.C[q-1]+prof.Special(hmm.SpC, hmm.Loop)) {
				q--
				state = "C"
			} else if cmpTol(sp.C[q], sp.E[q]+prof.Special(hmm.SpE, hmm.Move)) {
				state = "E"
			} else {
				return trace.Anchor{}, errors.New("boundeddp: impossible C state in traceback")
			}
		case "E":
			found := false
			if isLocal {
				start, end, ok := inner.RowRange(q)
				if ok {
					for bi := end - 1; bi >= start && !found; bi-- {
						b := inner.Bounds[bi]
						for ti := b.RB - 1; ti >= b.LB; ti-- {
							if cmpTol(sp.E[q], mx.Get(q, ti, sparsemx.M)) {
								t = ti
								state = "M"
								found = true
								break
							}
						}
					}
				}
			} else {
				t = prof.Length()
				state = "M"
				found = true
			}
			if !found {
				return trace.Anchor{}, errors.New("boundeddp: impossible E state in traceback")
			}
		case "M":
			if q < minQ {
				minQ, minT = q, t
			}
			if q > maxQ {
				maxQ, maxT = q, t
			}
			k := t - 1
			cur := mx.Get(q, t, sparsemx.M)
			a := seq.Digits[q-1]
			emit := prof.MatchEmission(t, a)
			switch {
			case t >= 1 && q >= 1 && cmpTol(cur, emit+mx.Get(q-1, t-1, sparsemx.M)+prof.Transition(k, hmm.M2M)):
				q, t, state = q-1, t-1, "M"
			case t >= 1 && q >= 1 && cmpTol(cur, emit+mx.Get(q-1, t-1, sparsemx.I)+prof.Transition(k, hmm.I2M)):
				q, t, state = q-1, t-1, "I"
			case t >= 1 && q >= 1 && cmpTol(cur, emit+mx.Get(q-1, t-1, sparsemx.D)+prof.Transition(k, hmm.D2M)):
				q, t, state = q-1, t-1, "D"
			case cmpTol(cur, emit+sp.B[q-1]+prof.Transition(k, hmm.B2M)):
				q, state = q-1, "B"
			default:
				return trace.Anchor{}, errors.New("boundeddp: impossible M state in traceback")
			}
		case "I":
			cur := mx.Get(q, t, sparsemx.I)
			a := seq.Digits[q-1]
			emit := prof.InsertEmission(t, a)
			if cmpTol(cur, emit+mx.Get(q, t-1, sparsemx.M)+prof.Transition(t, hmm.M2I)) {
				t, state = t-1, "M"
			} else {
				t, state = t-1, "I"
			}
			q--
		case "D":
			cur := mx.Get(q, t, sparsemx.D)
			if cmpTol(cur, mx.Get(q, t-1, sparsemx.M)+prof.Transition(t-1, hmm.M2D)) {
				t, state = t-1, "M"
			} else {
				t, state = t-1, "D"
			}
		case "B":
			if cmpTol(sp.B[q], sp.N[q]+prof.Special(hmm.SpN, hmm.Move)) {
				state = "N"
			} else {
				state = "J"
			}
		case "J":
			if cmpTol(sp.J[q], sp.E[q]+prof.Special(hmm.SpE, hmm.Loop)) {
				state = "E"
			} else {
				q--
				state = "J"
			}
		case "N":
			if q == 0 {
				state = "S"
			} else {
				q--
				state = "N"
			}
		default:
			return trace.Anchor{}, errors.Errorf("boundeddp: unknown traceback state %q", state)
		}
	}

	if maxQ < 0 {
		return trace.Anchor{}, errors.New("boundeddp: traceback visited no M state")
	}
	return trace.Anchor{BegQ: minQ, BegT: minT, EndQ: maxQ, EndT: maxT}, nil
}
