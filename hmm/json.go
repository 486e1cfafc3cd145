package hmm

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
)

// LoadSimpleJSON reads a Simple profile from a JSON document at path. This
// is not an HMMER/Pfam model-file parser (§1 keeps that out of scope);
// it is a minimal serialization of the already-parsed Simple struct this
// module's own fields so cmd/hmmprune-search has a concrete way to load
// a demonstration profile. Grounded on cmd/bio-pamtool/checksum.go's
// encoding/json usage.
func LoadSimpleJSON(path string) (*Simple, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "hmm: opening %s", path)
	}
	defer f.Close()
	return decodeSimpleJSON(f, path)
}

func decodeSimpleJSON(r io.Reader, path string) (*Simple, error) {
	var p Simple
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, errors.Wrapf(err, "hmm: decoding %s", path)
	}
	return &p, nil
}
