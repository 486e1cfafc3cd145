// Package bound defines the Bound type, the atomic span shared by every
// edgebounds structure in this module.
package bound

import "fmt"

// Bound is a half-open span [LB,RB) of columns (or antidiagonal offsets,
// depending on orientation) associated with row/antidiagonal ID.
type Bound struct {
	ID int
	LB int
	RB int
}

// New returns a Bound with the given id and span.
func New(id, lb, rb int) Bound {
	return Bound{ID: id, LB: lb, RB: rb}
}

// Len returns the number of cells spanned, RB-LB.
func (b Bound) Len() int {
	return b.RB - b.LB
}

// Empty reports whether the bound spans zero cells.
func (b Bound) Empty() bool {
	return b.RB <= b.LB
}

// Contains reports whether x falls in [LB,RB).
func (b Bound) Contains(x int) bool {
	return x >= b.LB && x < b.RB
}

// Overlaps reports whether b and o share at least one cell, or are
// adjacent within tol cells of each other (tol=0 means strictly touching).
func (b Bound) Overlaps(o Bound, tol int) bool {
	return b.LB-tol <= o.RB && o.LB-tol <= b.RB
}

// Union returns the smallest bound covering both b and o. IDs must match;
// the caller is responsible for that invariant.
func (b Bound) Union(o Bound) Bound {
	lb := b.LB
	if o.LB < lb {
		lb = o.LB
	}
	rb := b.RB
	if o.RB > rb {
		rb = o.RB
	}
	return Bound{ID: b.ID, LB: lb, RB: rb}
}

// Compare orders bounds descending by ID, then ascending by LB, then RB —
// matching the original edgebound.c ordering used for binary search.
func Compare(a, b Bound) int {
	switch {
	case a.ID != b.ID:
		if a.ID > b.ID {
			return -1
		}
		return 1
	case a.LB != b.LB:
		if a.LB < b.LB {
			return -1
		}
		return 1
	case a.RB != b.RB:
		if a.RB < b.RB {
			return -1
		}
		return 1
	default:
		return 0
	}
}

func (b Bound) String() string {
	return fmt.Sprintf("{id: %d, lb: %d, rb: %d}", b.ID, b.LB, b.RB)
}
