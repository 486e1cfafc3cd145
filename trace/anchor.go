package trace

// Anchor is the seed alignment cloud search grows clouds from: the
// earliest and latest M-state cells visited by a Viterbi traceback (§4.4,
// §4.8).
type Anchor struct {
	BegQ, BegT int
	EndQ, EndT int
}
