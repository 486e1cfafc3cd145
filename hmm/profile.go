// Package hmm defines the external HmmProfile interface this module
// consumes (§6). Parsing an HMMER/Pfam model file into a Profile is out
// of scope; callers are expected to already hold a parsed model.
package hmm

// Transition enumerates the eight normal-state transition types a profile
// node carries (§3).
type Transition int

const (
	M2M Transition = iota
	M2I
	M2D
	I2M
	I2I
	D2M
	D2D
	B2M
)

// SpecialState enumerates the HMM special states outside the M/I/D plane.
type SpecialState int

const (
	SpN SpecialState = iota
	SpB
	SpE
	SpC
	SpJ
)

// SpecialTransition distinguishes the LOOP and MOVE scores of a special
// state.
type SpecialTransition int

const (
	Loop SpecialTransition = iota
	Move
)

// Profile is the external profile-HMM interface (§6): T match nodes, each
// with match/insert emission scores and transition scores, plus the
// special-state score table and length-calibration parameters.
type Profile interface {
	// Length returns T, the number of match nodes.
	Length() int

	// MatchEmission returns msc(k,a): the match-state emission log-odds
	// score at node k (1<=k<=T) for residue code a.
	MatchEmission(k, a int) float64

	// InsertEmission returns isc(k,a): the insert-state emission score at
	// node k for residue code a.
	InsertEmission(k, a int) float64

	// Transition returns tsc(k,type): the log-odds transition score
	// leaving node k.
	Transition(k int, t Transition) float64

	// Special returns xsc(state,trans): the special-state transition
	// score table.
	Special(s SpecialState, t SpecialTransition) float64

	// IsLocal reports whether the profile uses local (Smith-Waterman
	// style) alignment semantics, versus glocal.
	IsLocal() bool

	// Tau and Lambda are the length-calibrated Gumbel-tail P-value
	// parameters used by package scoring.
	Tau() float64
	Lambda() float64

	// MeanCompo returns the profile's mean background composition for
	// residue code a, used by Null2 bias correction.
	MeanCompo(a int) float64

	// AlphabetSize returns the number of residue codes MatchEmission,
	// InsertEmission, and MeanCompo accept, used by Null2 bias correction
	// to sum over the full alphabet.
	AlphabetSize() int

	// Name returns the profile/target identifier for reporting.
	Name() string
}
