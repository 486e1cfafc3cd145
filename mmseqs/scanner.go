// Package mmseqs implements a thin line-oriented scanner over an MMseqs
// hit-list file, the external driver format §6 names: one (query id,
// target id, ...) record per line, the query/target pair the pipeline
// runs cloud search against. Grounded on interval.NewBEDUnionFromPath's
// file-opening/gzip-detection pattern.
package mmseqs

import (
	"bufio"
	"io"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Hit is one hit-list record: the query and target identifiers a pipeline
// run processes. MMseqs hit lists carry additional alignment-summary
// columns (identity, e-value, ...); this module only consumes the first
// two.
type Hit struct {
	Query  string
	Target string
}

// Scanner reads Hit records from an MMseqs hit-list file, one per line,
// fields separated by any run of whitespace.
type Scanner struct {
	sc  *bufio.Scanner
	cur Hit
	err error
}

// Open opens path (transparently gzip-decompressing if fileio.DetermineType
// reports Gzip, matching interval.NewBEDUnionFromPath) and returns a
// Scanner over its hit-list lines. The caller must call Close when done.
func Open(path string) (*Scanner, io.Closer, error) {
	ctx := vcontext.Background()
	infile, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "mmseqs: opening %s", path)
	}
	reader := io.Reader(infile.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		gz, err := gzip.NewReader(reader)
		if err != nil {
			infile.Close(ctx)
			return nil, nil, errors.Wrapf(err, "mmseqs: gunzip %s", path)
		}
		reader = gz
	}
	return NewScanner(reader), closerFunc(func() error { return infile.Close(ctx) }), nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// NewScanner wraps an already-open reader, for callers that manage their
// own file lifecycle (e.g. tests, or a reader that isn't file.File-backed).
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{sc: bufio.NewScanner(r)}
}

// Scan advances to the next well-formed hit-list line, skipping blank
// lines and comment lines starting with '#'. It returns false at EOF or
// on the first malformed line (retrievable via Err).
func (s *Scanner) Scan() bool {
	for s.sc.Scan() {
		line := s.sc.Bytes()
		start := 0
		for start < len(line) && line[start] <= ' ' {
			start++
		}
		if start == len(line) || line[start] == '#' {
			continue
		}
		query, rest, ok := nextToken(line[start:])
		if !ok {
			s.err = errors.Errorf("mmseqs: malformed hit-list line %q: missing query id", string(line))
			return false
		}
		target, _, ok := nextToken(rest)
		if !ok {
			s.err = errors.Errorf("mmseqs: malformed hit-list line %q: missing target id", string(line))
			return false
		}
		s.cur = Hit{Query: string(query), Target: string(target)}
		return true
	}
	if err := s.sc.Err(); err != nil {
		s.err = errors.Wrap(err, "mmseqs: reading hit-list")
	}
	return false
}

// Hit returns the most recently scanned record.
func (s *Scanner) Hit() Hit { return s.cur }

// Err returns the first error encountered, if any.
func (s *Scanner) Err() error { return s.err }

// nextToken splits off the next whitespace-delimited token from line,
// returning it, the remainder, and whether a token was found.
func nextToken(line []byte) (token, rest []byte, ok bool) {
	i := 0
	for i < len(line) && line[i] <= ' ' {
		i++
	}
	if i == len(line) {
		return nil, nil, false
	}
	j := i
	for j < len(line) && line[j] > ' ' {
		j++
	}
	return line[i:j], line[j:], true
}
