// Package cloud implements the antidiagonal pruned Forward and Backward
// cloud search (§4.4): starting from a Viterbi anchor, it sweeps
// antidiagonals in 3-row linear space, pruning cells whose score falls
// more than alpha below the running best score once beta antidiagonals
// have passed, and emits the surviving antidiagonal-wise edgebounds.
// Grounded on original_source/src/algs_linear/cloud_search_linear_rows.c.
package cloud

import (
	"github.com/grailbio/hmmprune/bound"
	"github.com/grailbio/hmmprune/dpseq"
	"github.com/grailbio/hmmprune/edgebounds"
	"github.com/grailbio/hmmprune/hmm"
	"github.com/grailbio/hmmprune/hmmerr"
	"github.com/grailbio/hmmprune/logsum"
	"github.com/grailbio/hmmprune/trace"
	"github.com/pkg/errors"
)

// Params controls the pruning rule (§4.4, §6).
type Params struct {
	Alpha   float64 // log-score drop tolerance
	Beta    int     // antidiagonals exempt from pruning
	Gamma   int     // optional max cloud width; 0 means unbounded
	RunFull bool    // bypass pruning entirely (cloud covers the whole matrix); for testing
}

// DefaultParams mirrors §6's stated defaults.
var DefaultParams = Params{Alpha: 20.0, Beta: 5, Gamma: 0}

const negInf = logsum.NegInf

// planeSet holds the three 3-row linear-space M/I/D planes indexed by
// d%3, each of length Q+2 and indexed by query row.
type planeSet struct {
	m, i, d [3][]float64
}

func newPlaneSet(q int) *planeSet {
	ps := &planeSet{}
	for k := 0; k < 3; k++ {
		ps.m[k] = make([]float64, q+2)
		ps.i[k] = make([]float64, q+2)
		ps.d[k] = make([]float64, q+2)
	}
	return ps
}

func (ps *planeSet) reset(slot int, lo, hi int) {
	for k := lo; k < hi; k++ {
		ps.m[slot][k] = negInf
		ps.i[slot][k] = negInf
		ps.d[slot][k] = negInf
	}
}

func mod3(x int) int {
	return ((x % 3) + 3) % 3
}

// fwdRange returns the valid [lo,hi) range of query-row indices k on
// antidiagonal d such that (k, d-k) is an interior cell of the Q x T
// matrix.
func fwdRange(d, q, t int) (int, int) {
	lo := d - t
	if lo < 1 {
		lo = 1
	}
	hi := d - 1
	if hi > q {
		hi = q
	}
	return lo, hi + 1
}

func clipGamma(lo, hi, gamma int) (int, int) {
	if gamma <= 0 || hi-lo <= gamma {
		return lo, hi
	}
	return lo, lo + gamma
}

// Forward grows the forward cloud from anchor.Beg, returning a diag-mode
// Edgebounds. A collapsed cloud (no cell survives pruning before reaching
// the far corner) returns the partial Edgebounds and an error wrapping
// hmmerr.ErrCloudCollapsed — callers treat this as the non-fatal "poor
// match" outcome §7 describes.
func Forward(seq *dpseq.Sequence, prof hmm.Profile, anchor trace.Anchor, p Params) (*edgebounds.Edgebounds, error) {
	logsum.Init()
	q, t := seq.Len(), prof.Length()
	qs, ts := clampCorner(anchor.BegQ, anchor.BegT, q, t)
	dSt := qs + ts
	dEnd := q + t

	ps := newPlaneSet(q)
	edg := edgebounds.New(edgebounds.Diag, q, t)

	lb, rb := qs, qs+1
	totalMax := negInf
	dCount := 0

	for d := dSt; d <= dEnd; d++ {
		dCount++
		d0, d1, d2 := mod3(d), mod3(d-1), mod3(d-2)
		le, re := fwdRange(d, q, t)

		curLB, curRB := lb, rb
		switch {
		case p.RunFull:
			// RunFull bypasses pruning altogether: the cloud covers the
			// entire valid antidiagonal range (§6's "for testing").
			curLB, curRB = le, re
		case dCount <= p.Beta:
			// Free-pass: carry the previous window forward unchanged and
			// grow it by one cell, matching cloud_Forward_Linear_Rows's
			// "lb_new = lb; rb_new = rb" then "rb = rb_new + 1".
			curRB = curRB + 1
		}
		if curLB < le {
			curLB = le
		}
		if curRB > re {
			curRB = re
		}
		if !p.RunFull {
			curLB, curRB = clipGamma(curLB, curRB, p.Gamma)
		}
		if curLB >= curRB {
			return edg, errors.Wrap(hmmerr.ErrCloudCollapsed, "cloud: forward pass collapsed")
		}

		ps.reset(d0, 0, q+2)
		prevBeg := prof.Special(hmm.SpB, hmm.Move)

		for k := curLB; k < curRB; k++ {
			qi, ti := k, d-k
			a := seq.Digits[qi-1]
			node := ti - 1

			mVal := logsum.Sum(
				logsum.Sum3(
					ps.m[d2][qi-1]+prof.Transition(node, hmm.M2M),
					ps.i[d2][qi-1]+prof.Transition(node, hmm.I2M),
					ps.d[d2][qi-1]+prof.Transition(node, hmm.D2M),
				),
				prevBeg,
			) + prof.MatchEmission(ti, a)

			iVal := logsum.Sum(
				ps.m[d1][qi-1]+prof.Transition(ti, hmm.M2I),
				ps.i[d1][qi-1]+prof.Transition(ti, hmm.I2I),
			) + prof.InsertEmission(ti, a)

			dVal := logsum.Sum(
				ps.m[d1][qi]+prof.Transition(node, hmm.M2D),
				ps.d[d1][qi]+prof.Transition(node, hmm.D2D),
			)

			ps.m[d0][qi], ps.i[d0][qi], ps.d[d0][qi] = mVal, iVal, dVal
		}

		edg.Pushback(bound.New(d, curLB, curRB))

		if dCount > p.Beta && !p.RunFull {
			newLB, newRB, diagMax, found := scanThreshold(ps, d0, curLB, curRB, totalMax-p.Alpha)
			if !found {
				return edg, errors.Wrap(hmmerr.ErrCloudCollapsed, "cloud: forward pass collapsed")
			}
			if diagMax > totalMax {
				totalMax = diagMax
			}
			lb, rb = newLB, newRB
		} else {
			lb, rb = curLB, curRB
			for k := curLB; k < curRB; k++ {
				if v := maxState(ps, d0, k); v > totalMax {
					totalMax = v
				}
			}
		}
	}

	return edg, nil
}

// Backward grows the backward cloud from anchor.End down to the matrix
// origin, mirroring Forward's recurrence and pruning, and returns the
// bounds in ascending antidiagonal order. Unlike Forward, a collapse is not
// an error: the sweep stops and the antidiagonals reached so far are
// returned with a nil error. Grounded on cloud_Backward_Linear_Rows.
func Backward(seq *dpseq.Sequence, prof hmm.Profile, anchor trace.Anchor, p Params) (*edgebounds.Edgebounds, error) {
	logsum.Init()
	q, t := seq.Len(), prof.Length()
	qe, te := clampCorner(anchor.EndQ, anchor.EndT, q, t)
	dEndStart := qe + te

	ps := newPlaneSet(q)
	edg := edgebounds.New(edgebounds.Diag, q, t)

	lb, rb := qe, qe+1
	totalMax := negInf
	dCount := 0

	for d := dEndStart; d >= 0; d-- {
		dCount++
		d0, d1, d2 := mod3(d), mod3(d+1), mod3(d+2)
		le, re := fwdRange(d, q, t)
		if d < 2 {
			// near the matrix origin fwdRange's interior-cell assumption
			// breaks down; nothing left to search.
			break
		}

		curLB, curRB := lb, rb
		switch {
		case p.RunFull:
			// RunFull bypasses pruning altogether: the cloud covers the
			// entire valid antidiagonal range (§6's "for testing").
			curLB, curRB = le, re
		case dCount <= p.Beta:
			// Free-pass: carry the previous window forward unchanged and
			// grow it by one cell, matching cloud_Backward_Linear_Rows's
			// "lb_new = lb; rb_new = rb" then "rb = rb_new + 1".
			curRB = curRB + 1
		}
		if curLB < le {
			curLB = le
		}
		if curRB > re {
			curRB = re
		}
		if !p.RunFull {
			curLB, curRB = clipGamma(curLB, curRB, p.Gamma)
		}
		if curLB >= curRB {
			break
		}

		ps.reset(d0, 0, q+2)

		for k := curLB; k < curRB; k++ {
			qi, ti := k, d-k
			if qi+1 > q || ti+1 > t {
				continue
			}
			a := seq.Digits[qi]
			node := ti

			mVal := logsum.Sum3(
				ps.m[d2][qi+1]+prof.Transition(node, hmm.M2M)+prof.MatchEmission(ti+1, a),
				ps.i[d1][qi+1]+prof.Transition(node, hmm.M2I)+prof.InsertEmission(ti+1, a),
				ps.d[d1][qi]+prof.Transition(node, hmm.M2D),
			)

			iVal := logsum.Sum(
				ps.m[d1][qi+1]+prof.Transition(node, hmm.M2I)+prof.MatchEmission(ti+1, a),
				ps.i[d1][qi+1]+prof.Transition(node, hmm.I2I)+prof.InsertEmission(ti+1, a),
			)

			dVal := logsum.Sum(
				ps.m[d1][qi]+prof.Transition(node, hmm.M2D),
				ps.d[d1][qi]+prof.Transition(node, hmm.D2D),
			)

			ps.m[d0][qi], ps.i[d0][qi], ps.d[d0][qi] = mVal, iVal, dVal
		}

		edg.Pushback(bound.New(d, curLB, curRB))

		if dCount > p.Beta && !p.RunFull {
			newLB, newRB, diagMax, found := scanThreshold(ps, d0, curLB, curRB, totalMax-p.Alpha)
			if !found {
				break
			}
			if diagMax > totalMax {
				totalMax = diagMax
			}
			lb, rb = newLB, newRB
		} else {
			lb, rb = curLB, curRB
			for k := curLB; k < curRB; k++ {
				if v := maxState(ps, d0, k); v > totalMax {
					totalMax = v
				}
			}
		}
	}

	reverse(edg.Bounds)
	return edg, nil
}

func reverse(bs []bound.Bound) {
	for i, j := 0, len(bs)-1; i < j; i, j = i+1, j-1 {
		bs[i], bs[j] = bs[j], bs[i]
	}
}

func maxState(ps *planeSet, slot, k int) float64 {
	v := ps.m[slot][k]
	if ps.i[slot][k] > v {
		v = ps.i[slot][k]
	}
	if ps.d[slot][k] > v {
		v = ps.d[slot][k]
	}
	return v
}

// scanThreshold scans the [lo,hi) window of plane slot for the first and
// last k whose max-over-states meets limit, returning the new [lb,rb)
// and the max value observed. found is false if no cell meets limit
// (cloud collapse).
func scanThreshold(ps *planeSet, slot, lo, hi int, limit float64) (newLB, newRB int, diagMax float64, found bool) {
	diagMax = negInf
	newLB, newRB = -1, -1
	for k := lo; k < hi; k++ {
		v := maxState(ps, slot, k)
		if v > diagMax {
			diagMax = v
		}
		if v >= limit {
			if newLB == -1 {
				newLB = k
			}
			newRB = k + 1
		}
	}
	return newLB, newRB, diagMax, newLB != -1
}

// clampCorner clamps an anchor cell into the interior [1,Q] x [1,T], so an
// anchor on row 0 or column 0 (such as the origin corner) moves inward by
// one, per §4.4's failure semantics.
func clampCorner(qi, ti, q, t int) (int, int) {
	if qi < 1 {
		qi = 1
	}
	if qi > q {
		qi = q
	}
	if ti < 1 {
		ti = 1
	}
	if ti > t {
		ti = t
	}
	return qi, ti
}
