// Package sparsemx implements SparseMatrix, the three-plane (Match,
// Insert, Delete) DP matrix whose cells exist only where edgebounds cover
// them (§4.3). Grounded on
// original_source/mmore/src/objects/matrix_sparse/matrix_3d_sparse.c.
package sparsemx

import (
	"github.com/grailbio/hmmprune/bound"
	"github.com/grailbio/hmmprune/edgebounds"
	"github.com/grailbio/hmmprune/logsum"
	"github.com/pkg/errors"
)

// State names the three DP planes a sparse cell holds.
type State int

const (
	M State = iota
	I
	D
	NumStates = 3
)

// Matrix is the three-plane sparse DP matrix (§3, §4.3).
type Matrix struct {
	EdgInner *edgebounds.Edgebounds // active cells
	EdgOuter *edgebounds.Edgebounds // active cells padded by one cell/row
	Data     []float64              // packed [outer cell][state], NumStates per cell

	// omapCur[i] is the start offset in Data of EdgOuter.Bounds[i]'s block.
	omapCur []int

	// imapPrv/imapCur/imapNxt[i] is the start offset in Data of the block
	// in EdgOuter aligned with EdgInner.Bounds[i]'s row, as viewed from
	// the previous/current/next query row respectively — precomputed so
	// a sweep over EdgInner can fetch all three stencil rows in O(1).
	imapPrv, imapCur, imapNxt []int
}

// ShapeLikeEdgebounds derives a Matrix's outer edgebounds and offset
// tables from inner (the active-cell support produced by mergereorient),
// allocating Data filled with -Inf. Grounded on
// MATRIX_3D_SPARSE_Shape_Like_Matrix: each inner bound is padded by one
// cell on each side and extended onto the row above and below, then the
// padded set is sorted and merged into the outer edgebounds.
func ShapeLikeEdgebounds(inner *edgebounds.Edgebounds) *Matrix {
	outer := edgebounds.New(edgebounds.Row, inner.Q, inner.T)
	for _, b := range inner.Bounds {
		lb, rb := b.LB-1, b.RB+1
		if lb < 0 {
			lb = 0
		}
		if rb > inner.T+1 {
			rb = inner.T + 1
		}
		for _, id := range []int{b.ID - 1, b.ID, b.ID + 1} {
			if id < 0 || id > inner.Q {
				continue
			}
			outer.Pushback(bound.New(id, lb, rb))
		}
	}
	outer.Sort()
	outer.Merge()
	outer.Index()

	mx := &Matrix{EdgInner: inner, EdgOuter: outer}
	mx.buildOffsetTables()
	return mx
}

func (mx *Matrix) buildOffsetTables() {
	n := len(mx.EdgOuter.Bounds)
	mx.omapCur = make([]int, n)
	off := 0
	for i, b := range mx.EdgOuter.Bounds {
		mx.omapCur[i] = off
		off += b.Len() * NumStates
	}
	mx.Data = make([]float64, off)
	for i := range mx.Data {
		mx.Data[i] = logsum.NegInf
	}

	ni := len(mx.EdgInner.Bounds)
	mx.imapPrv = make([]int, ni)
	mx.imapCur = make([]int, ni)
	mx.imapNxt = make([]int, ni)
	for i, b := range mx.EdgInner.Bounds {
		mx.imapCur[i] = mx.offsetForRow(b.ID, b.LB)
		mx.imapPrv[i] = mx.offsetForRow(b.ID-1, b.LB)
		mx.imapNxt[i] = mx.offsetForRow(b.ID+1, b.LB)
	}
}

// offsetForRow returns the Data offset of column x within the outer block
// on row id, or -1 if no such block exists (row out of [0,Q] or x not
// covered — callers treat this as "reads as -Inf", per §4.6's "out of
// cloud reads" rule).
func (mx *Matrix) offsetForRow(id, x int) int {
	start, end, ok := mx.EdgOuter.RowRange(id)
	if !ok {
		return -1
	}
	for i := start; i < end; i++ {
		b := mx.EdgOuter.Bounds[i]
		if x >= b.LB && x < b.RB {
			return mx.omapCur[i] + (x-b.LB)*NumStates
		}
	}
	return -1
}

// ImapOffsets returns the precomputed prev/cur/next-row data offsets for
// the boundIdx'th bound of EdgInner, as the bounded-DP sweep in §4.6
// fetches once per bound before iterating its columns.
func (mx *Matrix) ImapOffsets(boundIdx int) (prv, cur, nxt int) {
	return mx.imapPrv[boundIdx], mx.imapCur[boundIdx], mx.imapNxt[boundIdx]
}

// Get returns the value of state s at (q,t), searching EdgOuter directly;
// returns -Inf for any cell outside the outer support (§4.6 "out-of-cloud
// reads").
func (mx *Matrix) Get(q, t int, s State) float64 {
	off := mx.offsetForRow(q, t)
	if off < 0 {
		return logsum.NegInf
	}
	return mx.Data[off+int(s)]
}

// Set writes the value of state s at (q,t). Returns an error if (q,t) is
// not covered by EdgOuter — writing outside the support indicates a
// matrix-shape inconsistency.
func (mx *Matrix) Set(q, t int, s State, v float64) error {
	off := mx.offsetForRow(q, t)
	if off < 0 {
		return errors.Errorf("sparsemx: (%d,%d) not covered by outer support", q, t)
	}
	mx.Data[off+int(s)] = v
	return nil
}

// GetByOffset reads state s at the cell whose block starts at data offset
// base — the O(1) path the bounded-DP sweep uses once ImapOffsets has
// located the row.
func (mx *Matrix) GetByOffset(base int, colOffset int, s State) float64 {
	if base < 0 {
		return logsum.NegInf
	}
	return mx.Data[base+colOffset*NumStates+int(s)]
}

// SetByOffset writes state s at the cell whose block starts at data
// offset base.
func (mx *Matrix) SetByOffset(base int, colOffset int, s State, v float64) {
	mx.Data[base+colOffset*NumStates+int(s)] = v
}

// ToDense copies the sparse data into a dense (Q+1)x(T+1)x3 matrix for
// debugging/comparison, as ToDense[q][t][s]. Grounded on
// MATRIX_3D_SPARSE_Embed.
func (mx *Matrix) ToDense(q, t int) [][][3]float64 {
	dense := make([][][3]float64, q+1)
	for i := range dense {
		dense[i] = make([][3]float64, t+1)
		for j := range dense[i] {
			dense[i][j] = [3]float64{logsum.NegInf, logsum.NegInf, logsum.NegInf}
		}
	}
	for _, b := range mx.EdgOuter.Bounds {
		if b.ID < 0 || b.ID > q {
			continue
		}
		for x := b.LB; x < b.RB; x++ {
			if x < 0 || x > t {
				continue
			}
			dense[b.ID][x] = [3]float64{mx.Get(b.ID, x, M), mx.Get(b.ID, x, I), mx.Get(b.ID, x, D)}
		}
	}
	return dense
}
