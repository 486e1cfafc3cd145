// Package edgebounds implements Edgebounds, the ordered collection of
// bound.Bound spans that describes the active cells of a cloud search or
// a sparse DP matrix. It supports two orientations: Diag (ID is an
// antidiagonal index, LB/RB are row offsets into that antidiagonal) and
// Row (ID is a row index, LB/RB are column offsets into that row).
package edgebounds

import (
	"fmt"
	"sort"

	"github.com/grailbio/hmmprune/bound"
	"github.com/pkg/errors"
)

// Orient distinguishes antidiagonal-indexed bounds from row-indexed bounds.
type Orient int

const (
	Diag Orient = iota
	Row
)

// Edgebounds is an ordered list of bound.Bound, carrying the query length Q
// and target length T it was computed against.
type Edgebounds struct {
	Bounds []bound.Bound
	Orient Orient
	Q, T   int

	// ids/idsIdx index Bounds by ID for O(log n) row/diagonal lookup.
	// Built lazily by Index and invalidated by any mutating operation.
	ids    []int
	idsIdx []int
}

// New returns an empty Edgebounds for a (Q,T) matrix shape.
func New(orient Orient, q, t int) *Edgebounds {
	return &Edgebounds{Orient: orient, Q: q, T: t}
}

// Reuse clears edg for reuse against a new (Q,T) shape without reallocating
// the backing slice.
func (edg *Edgebounds) Reuse(orient Orient, q, t int) {
	edg.Orient = orient
	edg.Q = q
	edg.T = t
	edg.Bounds = edg.Bounds[:0]
	edg.ids = nil
	edg.idsIdx = nil
}

// N returns the number of bounds.
func (edg *Edgebounds) N() int { return len(edg.Bounds) }

// Pushback appends b. Callers are expected to push in ID order (ascending
// for Row, the orientation-appropriate order for Diag); Pushback itself
// does not sort, matching EDGEBOUNDS_Pushback's append-only contract.
func (edg *Edgebounds) Pushback(b bound.Bound) {
	edg.Bounds = append(edg.Bounds, b)
	edg.ids, edg.idsIdx = nil, nil
}

// Get returns the i'th bound.
func (edg *Edgebounds) Get(i int) bound.Bound {
	return edg.Bounds[i]
}

// Sort orders Bounds by (ID ascending, LB ascending, RB ascending) — the
// steady-state order row/diag iteration and Merge depend on. The original
// C source hand-rolls a hybrid quicksort/selection-sort here (edgebound.c's
// Sort_Sub_Quicksort/Sort_Sub_Selectsort); Go's sort.Slice is the direct
// idiomatic replacement for that exact concern (see DESIGN.md).
func (edg *Edgebounds) Sort() {
	sort.Slice(edg.Bounds, func(i, j int) bool {
		a, b := edg.Bounds[i], edg.Bounds[j]
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		if a.LB != b.LB {
			return a.LB < b.LB
		}
		return a.RB < b.RB
	})
	edg.ids, edg.idsIdx = nil, nil
}

// Merge compacts adjacent or overlapping bounds that share the same ID,
// in place, assuming edg is already Sorted. Grounded on
// EDGEBOUNDS_Merge/Merge_Sub's fill-holes compaction.
func (edg *Edgebounds) Merge() {
	if len(edg.Bounds) == 0 {
		return
	}
	out := edg.Bounds[:1]
	for _, b := range edg.Bounds[1:] {
		last := &out[len(out)-1]
		if b.ID == last.ID && b.LB <= last.RB {
			if b.RB > last.RB {
				last.RB = b.RB
			}
			continue
		}
		out = append(out, b)
	}
	edg.Bounds = out
	edg.ids, edg.idsIdx = nil, nil
}

// Index builds the ids/idsIdx side tables used by RowRange/Search. The
// padding-by-one sentinel at the end of idsIdx mirrors EDGEBOUNDS_Index's
// single-sentinel pad (DESIGN.md Open Question #2) so RowRange's "next
// row" lookup never runs off the end of idsIdx.
func (edg *Edgebounds) Index() {
	edg.ids = edg.ids[:0]
	edg.idsIdx = edg.idsIdx[:0]
	for i, b := range edg.Bounds {
		if len(edg.ids) == 0 || edg.ids[len(edg.ids)-1] != b.ID {
			edg.ids = append(edg.ids, b.ID)
			edg.idsIdx = append(edg.idsIdx, i)
		}
	}
	edg.idsIdx = append(edg.idsIdx, len(edg.Bounds)) // single sentinel pad
}

// RowRange returns the [start,end) slice indices in Bounds whose ID equals
// id, calling Index first if a mutating method has cleared the index.
// Returns (0,0,false) if id is absent.
func (edg *Edgebounds) RowRange(id int) (start, end int, ok bool) {
	if edg.ids == nil {
		edg.Index()
	}
	i := sort.SearchInts(edg.ids, id)
	if i >= len(edg.ids) || edg.ids[i] != id {
		return 0, 0, false
	}
	return edg.idsIdx[i], edg.idsIdx[i+1], true
}

// Search finds the bound covering (id, x): a binary search over the
// ascending row ids (via RowRange), then a linear scan of that row's
// bounds for one containing x.
func (edg *Edgebounds) Search(id, x int) (bound.Bound, bool) {
	start, end, ok := edg.RowRange(id)
	if !ok {
		return bound.Bound{}, false
	}
	for i := start; i < end; i++ {
		if edg.Bounds[i].Contains(x) {
			return edg.Bounds[i], true
		}
	}
	return bound.Bound{}, false
}

// Count returns the total number of cells covered across all bounds.
func (edg *Edgebounds) Count() int {
	n := 0
	for _, b := range edg.Bounds {
		n += b.Len()
	}
	return n
}

// FindBoundingBox returns the smallest row-index range [lo,hi) and
// column-index range [lo,hi) that cover every bound in edg. Grounded on
// EDGEBOUNDS_Find_BoundingBox; a supplemented feature (SPEC_FULL.md).
func (edg *Edgebounds) FindBoundingBox() (rowLo, rowHi, colLo, colHi int) {
	if len(edg.Bounds) == 0 {
		return 0, 0, 0, 0
	}
	rowLo, rowHi = edg.Bounds[0].ID, edg.Bounds[0].ID+1
	colLo, colHi = edg.Bounds[0].LB, edg.Bounds[0].RB
	for _, b := range edg.Bounds[1:] {
		if b.ID < rowLo {
			rowLo = b.ID
		}
		if b.ID+1 > rowHi {
			rowHi = b.ID + 1
		}
		if b.LB < colLo {
			colLo = b.LB
		}
		if b.RB > colHi {
			colHi = b.RB
		}
	}
	return rowLo, rowHi, colLo, colHi
}

// SetDomain restricts edg in place to bounds whose ID falls within
// [lo,hi). Grounded on EDGEBOUNDS_SetDomain; a supplemented feature used
// by posterior decoding's whole-cloud-as-one-domain policy (DESIGN.md).
func (edg *Edgebounds) SetDomain(lo, hi int) {
	out := edg.Bounds[:0]
	for _, b := range edg.Bounds {
		if b.ID >= lo && b.ID < hi {
			out = append(out, b)
		}
	}
	edg.Bounds = out
	edg.ids, edg.idsIdx = nil, nil
}

// CoverMatrix reports whether edg (Row-oriented) covers every cell (q,t)
// with q in [0,Q] and t in [0,T] — used only by tests to sanity-check a full-coverage
// fallback edgebounds. Grounded on EDGEBOUNDS_Cover_Matrix.
func (edg *Edgebounds) CoverMatrix() bool {
	if edg.Orient != Row {
		return false
	}
	covered := make([][]bool, edg.Q+1)
	for i := range covered {
		covered[i] = make([]bool, edg.T+1)
	}
	for _, b := range edg.Bounds {
		if b.ID < 0 || b.ID > edg.Q {
			return false
		}
		for x := b.LB; x < b.RB; x++ {
			if x < 0 || x > edg.T {
				return false
			}
			covered[b.ID][x] = true
		}
	}
	for i := 0; i <= edg.Q; i++ {
		for j := 0; j <= edg.T; j++ {
			if !covered[i][j] {
				return false
			}
		}
	}
	return true
}

// Validate checks that every bound's ID and [LB,RB) fall within the
// declared (Q,T) shape and that LB<=RB, returning an error describing the
// first violation found. The error wraps no hmmerr sentinel.
func (edg *Edgebounds) Validate() error {
	for i, b := range edg.Bounds {
		if b.ID < 0 || b.ID > edg.Q {
			return errors.Errorf("edgebounds: bound %d id %d out of [0,%d]", i, b.ID, edg.Q)
		}
		if b.LB < 0 || b.RB > edg.T+1 {
			return errors.Errorf("edgebounds: bound %d span [%d,%d) out of [0,%d]", i, b.LB, b.RB, edg.T+1)
		}
		if b.LB > b.RB {
			return errors.Errorf("edgebounds: bound %d has lb %d > rb %d", i, b.LB, b.RB)
		}
	}
	return nil
}

func (edg *Edgebounds) String() string {
	s := fmt.Sprintf("Edgebounds(orient=%v, Q=%d, T=%d, N=%d)\n", edg.Orient, edg.Q, edg.T, len(edg.Bounds))
	for _, b := range edg.Bounds {
		s += "  " + b.String() + "\n"
	}
	return s
}
