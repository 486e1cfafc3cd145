// Package pipeline implements the per-(query,target) orchestration glue
// (§4.8): Viterbi anchor, cloud Forward/Backward, merge-and-reorient,
// bounded Forward/Backward, posterior decoding, Null2 bias correction,
// and final bit-score/P-value/E-value conversion. Grounded on
// fusion/opts.go's Opts/DefaultOpts pattern and
// markduplicates/mark_duplicates.go's errors.Once{}-plus-worker-pool and
// vlog logging idiom.
package pipeline

import (
	"sync"

	baseerrors "github.com/grailbio/base/errors"
	"github.com/grailbio/hmmprune/boundeddp"
	"github.com/grailbio/hmmprune/cloud"
	"github.com/grailbio/hmmprune/dpseq"
	"github.com/grailbio/hmmprune/hmm"
	"github.com/grailbio/hmmprune/hmmerr"
	"github.com/grailbio/hmmprune/mergereorient"
	"github.com/grailbio/hmmprune/posterior"
	"github.com/grailbio/hmmprune/scoring"
	"github.com/grailbio/hmmprune/trace"
	"github.com/pkg/errors"
	"v.io/x/lib/vlog"
)

// PairInput is one (query, target) pair to search: a digitized query
// sequence against a profile HMM.
type PairInput struct {
	QueryName  string
	TargetName string
	Seq        *dpseq.Sequence
	Prof       hmm.Profile
}

// PairResult is the scored outcome of one pair (§6's output record),
// minus the alignment string (optimal-accuracy traceback is out of
// scope).
type PairResult struct {
	Query, Target string
	Q, T          int
	Anchor        trace.Anchor
	scoring.Result

	// Collapsed is true when the cloud search pruned itself down to
	// nothing (hmmerr.ErrCloudCollapsed): Result is the zero value and
	// the pair should be reported as a poor match, not a hard failure.
	Collapsed bool
}

// Runner processes pairs according to a fixed Opts configuration. The
// zero Runner is not usable; construct with NewRunner.
type Runner struct {
	Opts Opts
}

// NewRunner builds a Runner over opts.
func NewRunner(opts Opts) *Runner {
	return &Runner{Opts: opts}
}

// RunPair runs the full per-pair pipeline (§4.8) and returns its scored
// result. A cloud collapse is reported via PairResult.Collapsed rather
// than a non-nil error, matching §7's "non-fatal, surfaced as a poor
// match" policy; all other failures are returned as errors.
func (r *Runner) RunPair(queryName, targetName string, seq *dpseq.Sequence, prof hmm.Profile) (*PairResult, error) {
	if seq.Len() == 0 || prof.Length() == 0 {
		return nil, errors.Wrapf(hmmerr.ErrInvalidInput, "pair %s/%s: zero-length query or profile", queryName, targetName)
	}

	anchor, _, err := trace.Viterbi(seq, prof)
	if err != nil {
		return nil, errors.Wrapf(err, "pair %s/%s: viterbi anchor", queryName, targetName)
	}
	res := &PairResult{Query: queryName, Target: targetName, Q: seq.Len(), T: prof.Length(), Anchor: anchor}
	if r.Opts.SearchMode == ModeViterbiOnly {
		return res, nil
	}

	params := r.Opts.cloudParams()
	fwdEdg, err := cloud.Forward(seq, prof, anchor, params)
	if hmmerr.Is(err, hmmerr.ErrCloudCollapsed) {
		vlog.VI(1).Infof("pair %s/%s: forward cloud collapsed", queryName, targetName)
		res.Collapsed = true
		return res, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "pair %s/%s: cloud forward", queryName, targetName)
	}
	bckEdg, err := cloud.Backward(seq, prof, anchor, params)
	if hmmerr.Is(err, hmmerr.ErrCloudCollapsed) {
		vlog.VI(1).Infof("pair %s/%s: backward cloud collapsed", queryName, targetName)
		res.Collapsed = true
		return res, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "pair %s/%s: cloud backward", queryName, targetName)
	}

	inner, err := mergereorient.MergeAndReorient(fwdEdg, bckEdg)
	if err != nil {
		return nil, errors.Wrapf(err, "pair %s/%s: merge/reorient", queryName, targetName)
	}

	fwd, err := boundeddp.Forward(seq, prof, inner)
	if err != nil {
		return nil, errors.Wrapf(err, "pair %s/%s: bounded forward", queryName, targetName)
	}
	if r.Opts.SearchMode == ModeForward {
		res.Result = scoring.Score(fwd.Score, nullScore(prof, seq), 0, prof.Tau(), prof.Lambda(), r.Opts.Nseqs)
		return res, nil
	}

	bck, err := boundeddp.Backward(seq, prof, inner)
	if err != nil {
		return nil, errors.Wrapf(err, "pair %s/%s: bounded backward", queryName, targetName)
	}

	var bias float64
	if r.Opts.CompoBias {
		cells := posterior.Decode(fwd.Matrix, bck.Matrix, fwd.Score, inner)
		bias = posterior.Null2Correct(prof, seq, cells)
	}

	res.Result = scoring.Score(fwd.Score, nullScore(prof, seq), bias, prof.Tau(), prof.Lambda(), r.Opts.Nseqs)
	vlog.VI(1).Infof("pair %s/%s: bit score %.2f, e-value %.3g", queryName, targetName, res.Result.SeqSc, res.Result.Eval)
	return res, nil
}

// nullScore returns the null-model log-odds score for a sequence of
// seq.Len() residues: one N-state loop transition per residue plus the
// single N->B move, matching HMMER's length-dependent null1 model. The
// original_source/ excerpt only declares this via the xsc table it
// shares with the forward recurrence's B-entry, so this follows the
// standard Plan7 null-model formula rather than a retrieved .c body.
func nullScore(prof hmm.Profile, seq *dpseq.Sequence) float64 {
	loop := prof.Special(hmm.SpN, hmm.Loop)
	move := prof.Special(hmm.SpN, hmm.Move)
	return float64(seq.Len())*loop + move
}

// Run processes pairs concurrently across Opts.Parallelism workers,
// preserving input order in the returned slice. The first per-pair
// error is kept (via a shared errors.Once), matching
// markduplicates.MarkDuplicates's worker-pool-plus-errors.Once pattern;
// the remaining pairs are still processed, and once all workers finish
// Run returns that error and no results. Cloud collapses on individual
// pairs are not errors.
func (r *Runner) Run(pairs []PairInput) ([]PairResult, error) {
	n := len(pairs)
	results := make([]PairResult, n)
	workers := r.Opts.Parallelism
	if workers < 1 {
		workers = 1
	}
	vlog.VI(1).Infof("pipeline: running %d pairs across %d workers", n, workers)

	jobs := make(chan int, n)
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	e := baseerrors.Once{}
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				p := pairs[i]
				res, err := r.RunPair(p.QueryName, p.TargetName, p.Seq, p.Prof)
				if err != nil {
					e.Set(err)
					continue
				}
				results[i] = *res
			}
		}()
	}
	wg.Wait()

	if err := e.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
