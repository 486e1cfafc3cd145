package pipeline

import "github.com/grailbio/hmmprune/cloud"

// Opts holds the tunable parameters for a pipeline run (§6). Mirrors
// fusion/opts.go's plain-struct-plus-package-variable pattern.
type Opts struct {
	// Alpha is the cloud search score-drop pruning threshold, in nats.
	Alpha float64

	// Beta is the number of initial antidiagonals, counted from the
	// anchor, that a cloud search grows without pruning.
	Beta int

	// Gamma caps the antidiagonal width a cloud may grow to. Zero means
	// unbounded.
	Gamma int

	// RunFull disables pruning entirely and runs a full (dense-equivalent)
	// cloud, used by tests and by --full-dp on the CLI.
	RunFull bool

	// SearchMode selects which dynamic-programming passes a pair runs.
	// One of ModeViterbiOnly, ModeForward, ModeFull.
	SearchMode Mode

	// CompoBias enables the Null2 composition bias correction (§4.7).
	// Disabling it is mainly useful for comparing raw and bias-corrected
	// scores side by side.
	CompoBias bool

	// RunDomains is reserved for future per-domain posterior restriction
	// (§9's Open Question); the current Decode always treats the merged
	// cloud as a single domain regardless of this flag.
	RunDomains bool

	// Nseqs is the effective database size scoring.Score divides the
	// Gumbel-tail P-value by to produce an E-value.
	Nseqs float64

	// Parallelism is the number of worker goroutines Runner.Run spawns to
	// process hit-list pairs concurrently.
	Parallelism int
}

// Mode enumerates which dynamic-programming passes a pair runs.
type Mode int

const (
	// ModeViterbiOnly runs only the Viterbi anchor pass, reporting the
	// Viterbi score without a Forward/Backward refinement.
	ModeViterbiOnly Mode = iota
	// ModeForward runs Viterbi, then cloud Forward/Backward, then the
	// bounded Forward pass, but skips posterior decoding.
	ModeForward
	// ModeFull runs the complete pipeline: Viterbi, cloud Forward/Backward,
	// bounded Forward/Backward, posterior decoding, and Null2 correction.
	ModeFull
)

// DefaultOpts gives the default pipeline configuration (§6): alpha and
// beta as recommended by the original pruning heuristic, no gamma cap, no
// dense fallback, full posterior decoding, composition bias enabled.
var DefaultOpts = Opts{
	Alpha:       cloud.DefaultParams.Alpha,
	Beta:        cloud.DefaultParams.Beta,
	Gamma:       cloud.DefaultParams.Gamma,
	RunFull:     false,
	SearchMode:  ModeFull,
	CompoBias:   true,
	RunDomains:  false,
	Nseqs:       1,
	Parallelism: 1,
}

func (o Opts) cloudParams() cloud.Params {
	return cloud.Params{Alpha: o.Alpha, Beta: o.Beta, Gamma: o.Gamma, RunFull: o.RunFull}
}
