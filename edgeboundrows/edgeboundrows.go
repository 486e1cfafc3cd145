// Package edgeboundrows implements EdgeboundRows, the bounded-fanout
// per-row builder cloud search uses to accumulate antidiagonal cells into
// row-wise bounds on the fly (§4.2). Grounded on
// original_source/src/objects/matrix_sparse/edgebound_rows.c.
package edgeboundrows

import (
	"github.com/grailbio/hmmprune/bound"
	"github.com/grailbio/hmmprune/edgebounds"
)

// MaxBoundsPerRow caps the number of disjoint bounds kept per row before
// the overflow (bridging) policy kicks in. The original C source fixes
// this at compile time via MAX_BOUNDS_PER_ROW_SUPPORTED; Go has no direct
// analog, so it is a package variable overridable per run (DESIGN.md
// Open Question #1 — default 32).
var MaxBoundsPerRow = 32

// Range is an inclusive-exclusive row index range [Beg,End).
type Range struct {
	Beg, End int
}

// Rows is the bounded-fanout per-row builder.
type Rows struct {
	Q, T    int
	QRange  Range
	rows    [][]bound.Bound // rows[q - QRange.Beg]
}

// New returns an empty Rows builder for a (Q,T) matrix shape restricted
// to query rows QRange.
func New(q, t int, qRange Range) *Rows {
	r := &Rows{Q: q, T: t}
	r.Reuse(q, t, qRange)
	return r
}

// Reuse clears r for a new (Q,T,QRange) shape, reusing backing storage
// where possible.
func (r *Rows) Reuse(q, t int, qRange Range) {
	r.Q, r.T, r.QRange = q, t, qRange
	size := qRange.End - qRange.Beg
	if size < 0 {
		size = 0
	}
	if cap(r.rows) < size {
		r.rows = make([][]bound.Bound, size)
	} else {
		r.rows = r.rows[:size]
	}
	for i := range r.rows {
		r.rows[i] = r.rows[i][:0]
	}
}

// RowSize returns the number of bounds currently held for row q.
func (r *Rows) RowSize(q int) int {
	return len(r.rows[q-r.QRange.Beg])
}

// Get returns the i'th bound on row q.
func (r *Rows) Get(q, i int) bound.Bound {
	return r.rows[q-r.QRange.Beg][i]
}

func (r *Rows) lastPtr(q int) *bound.Bound {
	row := r.rows[q-r.QRange.Beg]
	if len(row) == 0 {
		return nil
	}
	return &row[len(row)-1]
}

// Pushback appends b to row q (no sorting is done), matching
// EDGEBOUND_ROWS_Pushback's overflow policy: when the row already holds
// MaxBoundsPerRow bounds, the new bound is folded into the existing last
// bound by widening it (bridging) rather than appended, trading a
// conservative over-approximation for a hard cap on per-row fanout.
func (r *Rows) Pushback(q int, b bound.Bound) {
	qx := q - r.QRange.Beg
	row := r.rows[qx]
	if len(row) >= MaxBoundsPerRow {
		last := &row[len(row)-1]
		if b.LB < last.LB {
			last.LB = b.LB
		}
		if b.RB > last.RB {
			last.RB = b.RB
		}
		return
	}
	r.rows[qx] = append(row, b)
}

// IntegrateDiagFwd decomposes an antidiagonal bound bnd (ID=antidiagonal
// d, [LB,RB) = row range on that diagonal) into row-wise cells, for the
// forward cloud sweep: each cell either extends the last bound on its row
// (if touching within tol) or opens a new one. Grounded on
// EDGEBOUND_ROWS_IntegrateDiag_Fwd, tol=0.
func (r *Rows) IntegrateDiagFwd(bnd bound.Bound) {
	const tol = 0
	d := bnd.ID
	for k := bnd.LB; k < bnd.RB; k++ {
		q, t := k, d-k
		last := r.lastPtr(q)
		if last != nil && t <= last.RB+tol {
			last.RB = t + 1
		} else {
			r.Pushback(q, bound.New(q, t, t+1))
		}
	}
}

// IntegrateDiagBck is the mirror of IntegrateDiagFwd for the backward
// cloud sweep: a cell extends the last bound if it is left-adjacent
// within tolerance. Grounded on EDGEBOUND_ROWS_IntegrateDiag_Bck.
func (r *Rows) IntegrateDiagBck(bnd bound.Bound) {
	const tol = 0
	d := bnd.ID
	for k := bnd.LB; k < bnd.RB; k++ {
		q, t := k, d-k
		last := r.lastPtr(q)
		if last != nil && t >= last.LB-tol-1 {
			last.LB = t
		} else {
			r.Pushback(q, bound.New(q, t, t+1))
		}
	}
}

// Convert flushes r into a row-mode edgebounds.Edgebounds.
func (r *Rows) Convert() *edgebounds.Edgebounds {
	out := edgebounds.New(edgebounds.Row, r.Q, r.T)
	for q := r.QRange.Beg; q < r.QRange.End; q++ {
		for i := 0; i < r.RowSize(q); i++ {
			out.Pushback(r.Get(q, i))
		}
	}
	return out
}
