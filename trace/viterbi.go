// Package trace implements the dense quadratic (non-pruned) Viterbi
// algorithm and its traceback. Its only role in this module is to locate
// the anchor cells cloud.Forward and cloud.Backward start from (§4.8); the pruned algorithms
// of §4.4-§4.7 are this module's real subject. Grounded on
// original_source/mmore/src/algs_quad/viterbi_traceback_quad.c and
// original_source/src/traceback_quad.h — a supplemented feature, see
// SPEC_FULL.md.
package trace

import (
	"github.com/grailbio/hmmprune/dpseq"
	"github.com/grailbio/hmmprune/hmm"
	"github.com/pkg/errors"
)

const negInf = -1e300

const tol = 1e-5

func cmpTol(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

// denseMX holds the full (Q+1)x(T+1) Viterbi matrices plus the special
// state rows, used only transiently to locate an anchor.
type denseMX struct {
	Q, T       int
	m, i, d    [][]float64
	n, b, e, c, j []float64
}

func newDenseMX(q, t int) *denseMX {
	mx := &denseMX{Q: q, T: t}
	mx.m = allocGrid(q, t)
	mx.i = allocGrid(q, t)
	mx.d = allocGrid(q, t)
	mx.n = allocRow(q)
	mx.b = allocRow(q)
	mx.e = allocRow(q)
	mx.c = allocRow(q)
	mx.j = allocRow(q)
	return mx
}

func allocGrid(q, t int) [][]float64 {
	g := make([][]float64, q+1)
	for i := range g {
		g[i] = make([]float64, t+1)
		for k := range g[i] {
			g[i][k] = negInf
		}
	}
	return g
}

func allocRow(q int) []float64 {
	r := make([]float64, q+1)
	for i := range r {
		r[i] = negInf
	}
	return r
}

func max(vs ...float64) float64 {
	best := negInf
	for _, v := range vs {
		if v > best {
			best = v
		}
	}
	return best
}

// Viterbi runs the dense Viterbi recurrence and returns the traceback
// Anchor (earliest and latest M-state cell) plus the final Viterbi score.
func Viterbi(seq *dpseq.Sequence, prof hmm.Profile) (Anchor, float64, error) {
	q, t := seq.Len(), prof.Length()
	if q == 0 || t == 0 {
		return Anchor{}, negInf, errors.New("trace: zero-length query or target")
	}
	mx := newDenseMX(q, t)
	mx.n[0] = 0
	mx.b[0] = prof.Special(hmm.SpN, hmm.Move)
	mx.e[0], mx.c[0], mx.j[0] = negInf, negInf, negInf

	isLocal := prof.IsLocal()

	for qi := 1; qi <= q; qi++ {
		a := seq.Digits[qi-1]
		for ti := 1; ti <= t; ti++ {
			k := ti - 1 // node whose transitions lead into ti
			b2m := negInf
			if k >= 0 {
				b2m = mx.b[qi-1] + prof.Transition(k, hmm.B2M)
			}
			mx.m[qi][ti] = prof.MatchEmission(ti, a) + max(
				mx.m[qi-1][ti-1]+prof.Transition(k, hmm.M2M),
				mx.i[qi-1][ti-1]+prof.Transition(k, hmm.I2M),
				mx.d[qi-1][ti-1]+prof.Transition(k, hmm.D2M),
				b2m,
			)
			mx.i[qi][ti] = prof.InsertEmission(ti, a) + max(
				mx.m[qi][ti-1]+prof.Transition(ti, hmm.M2I),
				mx.i[qi][ti-1]+prof.Transition(ti, hmm.I2I),
			)
			if ti == 1 {
				mx.d[qi][ti] = negInf
			} else {
				mx.d[qi][ti] = max(
					mx.m[qi][ti-1]+prof.Transition(ti-1, hmm.M2D),
					mx.d[qi][ti-1]+prof.Transition(ti-1, hmm.D2D),
				)
			}
		}

		if isLocal {
			eBest := negInf
			for ti := 1; ti <= t; ti++ {
				if mx.m[qi][ti] > eBest {
					eBest = mx.m[qi][ti]
				}
			}
			mx.e[qi] = eBest
		} else {
			mx.e[qi] = max(mx.m[qi][t], mx.d[qi][t])
		}
		mx.j[qi] = max(mx.j[qi-1]+prof.Special(hmm.SpJ, hmm.Loop), mx.e[qi]+prof.Special(hmm.SpE, hmm.Loop))
		mx.b[qi] = max(mx.n[qi-1]+prof.Special(hmm.SpN, hmm.Move), mx.j[qi]+prof.Special(hmm.SpJ, hmm.Move))
		mx.c[qi] = max(mx.c[qi-1]+prof.Special(hmm.SpC, hmm.Loop), mx.e[qi]+prof.Special(hmm.SpE, hmm.Move))
		mx.n[qi] = mx.n[qi-1] + prof.Special(hmm.SpN, hmm.Loop)
	}

	score := mx.c[q] + prof.Special(hmm.SpC, hmm.Move)
	anchor, err := traceback(mx, prof, seq, isLocal)
	if err != nil {
		return Anchor{}, negInf, err
	}
	return anchor, score, nil
}

// traceback walks backward from the C state, grounded on
// run_Traceback_Quad_via_hmmer's CMP_TOL-based predecessor selection,
// returning the earliest/latest M-state cell visited.
func traceback(mx *denseMX, prof hmm.Profile, seq *dpseq.Sequence, isLocal bool) (Anchor, error) {
	q, t := mx.Q, mx.T
	state := "C"
	minQ, minT, maxQ, maxT := q+1, t+1, -1, -1

	for state != "S" {
		switch state {
		case "C":
			if q == 0 {
				state = "S"
				continue
			}
			if cmpTol(mx.c[q], mx.c[q-1]+prof.Special(hmm.SpC, hmm.Loop)) {
				q--
				state = "C"
			} else if cmpTol(mx.c[q], mx.e[q]+prof.Special(hmm.SpE, hmm.Move)) {
				state = "E"
			} else {
				return Anchor{}, errors.New("trace: impossible C state in traceback")
			}
		case "E":
			if isLocal {
				found := false
				for ti := t; ti >= 1; ti-- {
					if cmpTol(mx.e[q], mx.m[q][ti]) {
						t = ti
						state = "M"
						found = true
						break
					}
				}
				if !found {
					return Anchor{}, errors.New("trace: impossible E state in traceback")
				}
			} else {
				t = mx.T
				state = "M"
			}
		case "M":
			if q < minQ {
				minQ, minT = q, t
			}
			if q > maxQ {
				maxQ, maxT = q, t
			}
			k := t - 1
			cur := mx.m[q][t]
			a := seq.Digits[q-1]
			emit := prof.MatchEmission(t, a)
			switch {
			case t >= 1 && q >= 1 && cmpTol(cur, emit+mx.m[q-1][t-1]+prof.Transition(k, hmm.M2M)):
				q, t, state = q-1, t-1, "M"
			case t >= 1 && q >= 1 && cmpTol(cur, emit+mx.i[q-1][t-1]+prof.Transition(k, hmm.I2M)):
				q, t, state = q-1, t-1, "I"
			case t >= 1 && q >= 1 && cmpTol(cur, emit+mx.d[q-1][t-1]+prof.Transition(k, hmm.D2M)):
				q, t, state = q-1, t-1, "D"
			case cmpTol(cur, emit+mx.b[q-1]+prof.Transition(k, hmm.B2M)):
				q, state = q-1, "B"
			default:
				return Anchor{}, errors.New("trace: impossible M state in traceback")
			}
		case "I":
			cur := mx.i[q][t]
			a := seq.Digits[q-1]
			emit := prof.InsertEmission(t, a)
			if cmpTol(cur, emit+mx.m[q][t-1]+prof.Transition(t, hmm.M2I)) {
				t, state = t-1, "M"
			} else {
				t, state = t-1, "I"
			}
			q--
		case "D":
			cur := mx.d[q][t]
			if cmpTol(cur, mx.m[q][t-1]+prof.Transition(t-1, hmm.M2D)) {
				t, state = t-1, "M"
			} else {
				t, state = t-1, "D"
			}
		case "B":
			if cmpTol(mx.b[q], mx.n[q]+prof.Special(hmm.SpN, hmm.Move)) {
				state = "N"
			} else {
				state = "J"
			}
		case "J":
			if cmpTol(mx.j[q], mx.e[q]+prof.Special(hmm.SpE, hmm.Loop)) {
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
			return Anchor{}, errors.Errorf("trace: unknown traceback state %q", state)
		}
	}

	if maxQ < 0 {
		return Anchor{}, errors.New("trace: traceback visited no M state")
	}
	return Anchor{BegQ: minQ, BegT: minT, EndQ: maxQ, EndT: maxT}, nil
}
