// Package dpseq implements the digitized Sequence external interface
// (§6): a residue array plus length, coded into the small integer
// alphabet the DP recurrences index emission tables with.
package dpseq

import (
	"strings"

	"github.com/grailbio/hmmprune/biosimd"
	"github.com/pkg/errors"
)

// Alphabet distinguishes the residue coding scheme a raw sequence is
// digitized under.
type Alphabet int

const (
	// DNA codes {A,C,G,T}; any other base, N included, folds to A's
	// code after biosimd's ACGT-cleaning routine.
	DNA Alphabet = iota
	// Amino codes the 20 standard amino acids plus X for unknown.
	Amino
)

const aminoAlphabet = "ACDEFGHIKLMNPQRSTVWY"

// Sequence is a digitized residue array: Digits[i] is the alphabet code
// of residue i, 0-indexed, length Len.
type Sequence struct {
	Name   string
	Raw    []byte
	Digits []int
	Alpha  Alphabet
}

// Len returns Q, the number of residues.
func (s *Sequence) Len() int { return len(s.Digits) }

// Digitize converts raw into a Sequence under the given alphabet. For DNA
// it reuses biosimd.CleanASCIISeqInplace to canonicalize case/ambiguity
// codes before mapping bytes to 2-bit-equivalent codes (A=0,C=1,G=2,T=3,
// anything else folds to 0 after cleaning); biosimd has no amino-acid
// table, so Amino falls back to a direct lookup against the 20-letter
// alphabet, coding unrecognized bytes (including 'X') to len(alphabet).
func Digitize(name string, raw []byte, alpha Alphabet) (*Sequence, error) {
	if len(raw) == 0 {
		return nil, errors.Errorf("dpseq: empty sequence %q", name)
	}
	cleaned := append([]byte(nil), raw...)
	digits := make([]int, len(cleaned))

	switch alpha {
	case DNA:
		biosimd.CleanASCIISeqInplace(cleaned)
		for i, c := range cleaned {
			digits[i] = dnaCode(c)
		}
	case Amino:
		for i, c := range cleaned {
			digits[i] = aminoCode(c)
		}
	default:
		return nil, errors.Errorf("dpseq: unknown alphabet %v", alpha)
	}

	return &Sequence{Name: name, Raw: cleaned, Digits: digits, Alpha: alpha}, nil
}

func dnaCode(c byte) int {
	switch c {
	case 'A':
		return 0
	case 'C':
		return 1
	case 'G':
		return 2
	case 'T':
		return 3
	default:
		return 0
	}
}

func aminoCode(c byte) int {
	idx := strings.IndexByte(aminoAlphabet, byte(upper(c)))
	if idx < 0 {
		return len(aminoAlphabet)
	}
	return idx
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
