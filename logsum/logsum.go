// Package logsum provides the log-space addition operator used throughout
// Forward/Backward and posterior decoding: logsum(a,b) = log(e^a + e^b),
// computed via a precomputed lookup table rather than a call to math.Exp
// on every cell.
package logsum

import (
	"math"
	"sync"
)

// NegInf stands in for log(0) throughout the DP core.
const NegInf = math.Inf(-1)

const (
	tableSize = 16000
	tableScale = 1000.0 // resolution: 1/1000 nat per table entry
	tableMax   = tableSize / tableScale
)

var (
	once  sync.Once
	table [tableSize]float32
)

// Init populates the lookup table. Safe to call from multiple goroutines;
// the actual computation runs exactly once per process.
func Init() {
	once.Do(func() {
		for i := 0; i < tableSize; i++ {
			x := float64(i) / tableScale
			table[i] = float32(math.Log(1.0 + math.Exp(-x)))
		}
	})
}

// Sum returns log(e^a + e^b) using the precomputed table for the
// log1p(exp(-|a-b|)) correction term. Init must have been called once
// per process before the first call. cloud.Forward and cloud.Backward
// call it on entry; boundeddp and pipeline.NewRunner do not.
func Sum(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	}
	if math.IsInf(b, -1) {
		return a
	}
	var hi, lo float64
	if a > b {
		hi, lo = a, b
	} else {
		hi, lo = b, a
	}
	diff := hi - lo
	if diff >= tableMax {
		return hi
	}
	idx := int(diff * tableScale)
	return hi + float64(table[idx])
}

// Sum3 folds three values through Sum in sequence — the common shape of
// the M/I/D recurrence's "logsum(a,b,c)".
func Sum3(a, b, c float64) float64 {
	return Sum(Sum(a, b), c)
}
