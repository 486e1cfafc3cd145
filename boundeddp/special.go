package boundeddp

import "github.com/grailbio/hmmprune/logsum"

// special holds the five Plan7 special-state score rows (N,B,E,C,J),
// each indexed by query row q in [0,Q]. Grounded on the XMX rows of
// bounded_fwdbck_linear.c's special-state recurrence.
type special struct {
	N, B, E, C, J []float64
}

func newSpecial(q int) *special {
	s := &special{
		N: allocRow(q),
		B: allocRow(q),
		E: allocRow(q),
		C: allocRow(q),
		J: allocRow(q),
	}
	return s
}

func allocRow(q int) []float64 {
	r := make([]float64, q+1)
	for i := range r {
		r[i] = logsum.NegInf
	}
	return r
}
