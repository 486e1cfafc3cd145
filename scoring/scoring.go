// Package scoring converts a raw nat-log Forward score into the reported
// bit score, P-value, and E-value (§4.7, §6).
package scoring

import "math"

// Result holds the full scored-hit record (§6's output shape, minus the
// name fields pipeline attaches).
type Result struct {
	NatSc   float64 // raw Forward score in nats
	NullSc  float64 // null-model score in nats
	SeqBias float64 // Null2 composition bias correction, in nats
	PreSc   float64 // (NatSc - NullSc) / log(2), before bias correction
	SeqSc   float64 // bit score after bias correction
	LnPval  float64 // log P-value
	Pval    float64
	Eval    float64
}

const log2 = math.Ln2

// Score converts natSc, nullSc, and seqBias (all in nats) plus the
// profile's tau/lambda calibration parameters and the database size
// nseqs into a full Result (§4.7).
func Score(natSc, nullSc, seqBias, tau, lambda float64, nseqs float64) Result {
	preSc := (natSc - nullSc) / log2
	seqSc := (natSc - nullSc - seqBias) / log2
	lnPval := logSurvivalGumbel(seqSc, tau, lambda)
	pval := math.Exp(lnPval)
	eval := pval * nseqs
	return Result{
		NatSc:   natSc,
		NullSc:  nullSc,
		SeqBias: seqBias,
		PreSc:   preSc,
		SeqSc:   seqSc,
		LnPval:  lnPval,
		Pval:    pval,
		Eval:    eval,
	}
}

// logSurvivalGumbel returns log(P(X > x)) for X drawn from the Gumbel-tail
// distribution HMMER calibrates bit scores against: P(X>x) = exp(-lambda*(x-tau)).
// In log space this is simply -lambda*(x-tau); large positive scores give
// very negative logs, i.e. very small P-values.
func logSurvivalGumbel(x, tau, lambda float64) float64 {
	return -lambda * (x - tau)
}
