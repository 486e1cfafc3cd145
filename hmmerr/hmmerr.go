// Package hmmerr defines the sentinel error values this module's pipeline
// distinguishes between recoverable per-pair failures and fatal ones.
package hmmerr

import "github.com/pkg/errors"

var (
	// ErrInvalidInput marks a malformed HmmProfile/Sequence pair (e.g.
	// mismatched alphabet, zero-length sequence) that cannot be searched.
	ErrInvalidInput = errors.New("hmmprune: invalid input")

	// ErrMatrixInconsistent marks an internal consistency check failure in
	// a sparse matrix or edgebounds structure (score mismatch, coverage
	// gap) — indicates a bug, not bad input.
	ErrMatrixInconsistent = errors.New("hmmprune: matrix inconsistent")

	// ErrCloudCollapsed marks a cloud search that pruned itself down to
	// nothing before reaching the Viterbi anchor. Recoverable: the pair
	// is skipped and logged, the batch continues.
	ErrCloudCollapsed = errors.New("hmmprune: cloud search collapsed")

	// ErrAllocFailure marks a resource exhaustion condition (matrix grew
	// past a configured cap). Fatal: the run aborts.
	ErrAllocFailure = errors.New("hmmprune: allocation failure")
)

// Is reports whether err (or any error it wraps via pkg/errors.Wrap) is
// sentinel. pkg/errors v0.8.1 predates stdlib Unwrap-based errors.Is, so
// this walks the Cause() chain instead.
func Is(err, sentinel error) bool {
	for err != nil {
		if err == sentinel {
			return true
		}
		causer, ok := err.(interface{ Cause() error })
		if !ok {
			return false
		}
		err = causer.Cause()
	}
	return false
}
