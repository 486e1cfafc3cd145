// Package posterior implements posterior decoding and Null2 bias
// correction over a completed Forward/Backward sparse matrix pair
// (§4.7). Grounded on the function shapes declared in
// original_source/fbpruner/src/algs_sparse/posterior_sparse.h and
// posterior_null2_sparse.h (the .c bodies were not present in the
// retrieved original_source/ tree, so the recurrence itself follows
// spec.md §4.7's explicit formulas).
package posterior

import (
	"math"

	"github.com/grailbio/hmmprune/dpseq"
	"github.com/grailbio/hmmprune/edgebounds"
	"github.com/grailbio/hmmprune/hmm"
	"github.com/grailbio/hmmprune/sparsemx"
)

// Omega is Null2's background/sequence-specific blend weight (§4.7).
const Omega = 1.0 / 256.0

// CellPosterior holds the decoded per-state posterior probabilities for
// one active cell, P(state | seq, profile) = exp(F+B-score_fwd).
type CellPosterior struct {
	Q, T    int
	PMatch  float64
	PInsert float64
	PDelete float64
}

// Decode computes posterior probabilities for every cell in inner's
// support, reading the Forward and Backward matrices produced against
// the same support. §9's Open Question is resolved by treating the
// entire merged cloud as a single domain: no partial-domain restriction
// is applied here (DESIGN.md).
func Decode(fwd, bck *sparsemx.Matrix, scoreFwd float64, inner *edgebounds.Edgebounds) []CellPosterior {
	var out []CellPosterior
	for _, b := range inner.Bounds {
		for ti := b.LB; ti < b.RB; ti++ {
			m := math.Exp(fwd.Get(b.ID, ti, sparsemx.M) + bck.Get(b.ID, ti, sparsemx.M) - scoreFwd)
			i := math.Exp(fwd.Get(b.ID, ti, sparsemx.I) + bck.Get(b.ID, ti, sparsemx.I) - scoreFwd)
			d := math.Exp(fwd.Get(b.ID, ti, sparsemx.D) + bck.Get(b.ID, ti, sparsemx.D) - scoreFwd)
			out = append(out, CellPosterior{Q: b.ID, T: ti, PMatch: clamp01(m), PInsert: clamp01(i), PDelete: clamp01(d)})
		}
	}
	return out
}

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Null2Correct computes the Null2 bias correction (§4.7): for every
// alphabet residue a, null2[a] sums P[q,t,M]*exp(msc[t,a]) +
// P[q,t,I]*exp(isc[t,a]) across every decoded cell, normalized by the
// number of query positions the cloud covers, then the sequence bias is
// Σ_q log(1 + Omega*null2[seq[q]]) over those same query positions —
// the expected log-odds a Match/Insert state emits residue a at each
// cell, not just the one residue actually observed there.
func Null2Correct(prof hmm.Profile, seq *dpseq.Sequence, cells []CellPosterior) float64 {
	if len(cells) == 0 {
		return 0
	}
	alphaSize := prof.AlphabetSize()
	null2 := make([]float64, alphaSize)
	queryRows := make(map[int]bool)
	for _, c := range cells {
		queryRows[c.Q] = true
		for a := 0; a < alphaSize; a++ {
			null2[a] += c.PMatch*math.Exp(prof.MatchEmission(c.T, a)) + c.PInsert*math.Exp(prof.InsertEmission(c.T, a))
		}
	}
	nQ := len(queryRows)
	if nQ == 0 {
		return 0
	}
	for a := range null2 {
		null2[a] /= float64(nQ)
	}

	bias := 0.0
	for q := range queryRows {
		a := seq.Digits[q-1]
		if a < 0 || a >= alphaSize {
			continue
		}
		bias += math.Log(1 + Omega*null2[a])
	}
	return bias
}
