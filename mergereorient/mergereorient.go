// Package mergereorient unions the forward and backward diagonal-mode
// clouds produced by package cloud and reorients the union into a
// row-mode Edgebounds suitable for sparsemx/boundeddp (§4.5). Grounded
// on original_source/src/algs_linear/merge_reorient_linear.c
// (EDGEBOUNDS_Merge, EDGEBOUNDS_Reorient).
package mergereorient

import (
	"github.com/grailbio/hmmprune/edgebounds"
	"github.com/grailbio/hmmprune/edgeboundrows"
	"github.com/pkg/errors"
)

// Union returns the antidiagonal-wise union of fwd and bck, both of which
// must be Diag-oriented edgebounds over the same (Q,T) shape. Grounded on
// EDGEBOUNDS_Merge: concatenate, sort, then compact overlapping or
// adjacent same-antidiagonal spans.
func Union(fwd, bck *edgebounds.Edgebounds) (*edgebounds.Edgebounds, error) {
	if fwd.Orient != edgebounds.Diag || bck.Orient != edgebounds.Diag {
		return nil, errors.New("mergereorient: Union requires two Diag-oriented edgebounds")
	}
	if fwd.Q != bck.Q || fwd.T != bck.T {
		return nil, errors.New("mergereorient: Union requires matching (Q,T) shapes")
	}
	out := edgebounds.New(edgebounds.Diag, fwd.Q, fwd.T)
	for i := 0; i < fwd.N(); i++ {
		out.Pushback(fwd.Get(i))
	}
	for i := 0; i < bck.N(); i++ {
		out.Pushback(bck.Get(i))
	}
	out.Sort()
	out.Merge()
	return out, nil
}

// Reorient converts a Diag-oriented edgebounds (antidiagonal ID ascending)
// into a Row-oriented edgebounds by decomposing each antidiagonal bound
// into per-row cells via edgeboundrows, the same machinery cloud search
// uses to build rows on the fly. Grounded on EDGEBOUNDS_Reorient's
// coverage-check decomposition.
func Reorient(diag *edgebounds.Edgebounds) *edgebounds.Edgebounds {
	rows := edgeboundrows.New(diag.Q, diag.T, edgeboundrows.Range{Beg: 0, End: diag.Q + 1})
	for i := 0; i < diag.N(); i++ {
		rows.IntegrateDiagFwd(diag.Get(i))
	}
	out := rows.Convert()
	out.Sort()
	out.Merge()
	out.Index()
	return out
}

// MergeAndReorient is the combined Union+Reorient step §4.5 names: it
// returns the row-oriented edgebounds that seeds sparsemx.Matrix for the
// bounded DP stage.
func MergeAndReorient(fwd, bck *edgebounds.Edgebounds) (*edgebounds.Edgebounds, error) {
	union, err := Union(fwd, bck)
	if err != nil {
		return nil, err
	}
	row := Reorient(union)
	if err := row.Validate(); err != nil {
		return nil, errors.Wrap(err, "mergereorient: reoriented edgebounds failed validation")
	}
	return row, nil
}
