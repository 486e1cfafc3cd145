/*
hmmprune-search runs the pruned cloud-search pipeline (§4) over a query
FASTA file and a single profile HMM, optionally restricted to the pairs
named in an MMseqs hit list, and reports scored hits in tab-separated
form (§6's output record).
*/
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hmmprune/dpseq"
	"github.com/grailbio/hmmprune/encoding/fasta"
	"github.com/grailbio/hmmprune/hmm"
	"github.com/grailbio/hmmprune/mmseqs"
	"github.com/grailbio/hmmprune/pipeline"
	"v.io/x/lib/vlog"
)

var (
	queryPath   = flag.String("queries", "", "Input query FASTA path (required)")
	profilePath = flag.String("profile", "", "Input profile HMM JSON path (required; see hmm.LoadSimpleJSON)")
	hitlistPath = flag.String("hitlist", "", "Optional MMseqs hit-list path restricting which query ids are searched; its target id column is not read")
	outPath     = flag.String("out", "", "Output TSV path; default stdout")
	alphaFlag   = flag.String("alphabet", "amino", "Query residue alphabet: 'dna' or 'amino'")

	alpha       = flag.Float64("alpha", pipeline.DefaultOpts.Alpha, "Cloud search score-drop pruning threshold, in nats")
	beta        = flag.Int("beta", pipeline.DefaultOpts.Beta, "Initial antidiagonals from the anchor exempt from pruning")
	gamma       = flag.Int("gamma", pipeline.DefaultOpts.Gamma, "Max cloud antidiagonal width; 0 means unbounded")
	runFull     = flag.Bool("full-dp", false, "Bypass pruning; cloud covers the entire matrix (for testing/validation)")
	compoBias   = flag.Bool("compo-bias", true, "Apply Null2 composition bias correction")
	nseqs       = flag.Float64("nseqs", 1, "Effective database size used to convert P-value to E-value")
	parallelism = flag.Int("parallelism", 1, "Number of query/target pairs to process concurrently")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s -queries path.fasta -profile path.json [OPTIONS]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() > 0 {
		a := flag.Args()
		log.Fatalf("unparsed flags, please check flag syntax: '%s'", strings.Join(a, " "))
	}
	if *queryPath == "" || *profilePath == "" {
		log.Fatalf("-queries and -profile are required")
	}
	alphabet, err := parseAlphabet(*alphaFlag)
	if err != nil {
		log.Fatalf("%v", err)
	}

	prof, err := hmm.LoadSimpleJSON(*profilePath)
	if err != nil {
		log.Fatalf("loading profile: %v", err)
	}

	seqNames, pairs, err := buildPairs(*queryPath, *hitlistPath, alphabet, prof)
	if err != nil {
		log.Fatalf("building pairs: %v", err)
	}
	vlog.Infof("loaded %d query sequences, searching %d pairs against profile %q", len(seqNames), len(pairs), prof.Name())

	opts := pipeline.DefaultOpts
	opts.Alpha = *alpha
	opts.Beta = *beta
	opts.Gamma = *gamma
	opts.RunFull = *runFull
	opts.CompoBias = *compoBias
	opts.Nseqs = *nseqs
	opts.Parallelism = *parallelism

	results, err := pipeline.NewRunner(opts).Run(pairs)
	if err != nil {
		log.Fatalf("pipeline run: %v", err)
	}

	out, closeOut, err := openOutput(*outPath)
	if err != nil {
		log.Fatalf("opening output: %v", err)
	}
	defer closeOut()

	if err := writeResults(out, results); err != nil {
		log.Fatalf("writing results: %v", err)
	}
}

func parseAlphabet(s string) (dpseq.Alphabet, error) {
	switch strings.ToLower(s) {
	case "dna":
		return dpseq.DNA, nil
	case "amino":
		return dpseq.Amino, nil
	default:
		return 0, fmt.Errorf("unknown -alphabet %q, want 'dna' or 'amino'", s)
	}
}

// buildPairs loads every sequence in the query FASTA, digitizes it, and
// pairs it with prof; if hitlistPath is non-empty, the pairs are
// restricted to the query ids it names. Its target-id column is not read
// or checked against prof.Name(); every selected query is paired with prof.
func buildPairs(queryPath, hitlistPath string, alphabet dpseq.Alphabet, prof hmm.Profile) ([]string, []pipeline.PairInput, error) {
	fa, closeFasta, err := openFasta(queryPath)
	if err != nil {
		return nil, nil, err
	}
	defer closeFasta()

	names := fa.SeqNames()
	want := make(map[string]bool, len(names))
	if hitlistPath != "" {
		if err := collectHitlistQueries(hitlistPath, want); err != nil {
			return nil, nil, err
		}
	}

	var pairs []pipeline.PairInput
	for _, name := range names {
		if hitlistPath != "" && !want[name] {
			continue
		}
		length, err := fa.Len(name)
		if err != nil {
			return nil, nil, err
		}
		raw, err := fa.Get(name, 0, length)
		if err != nil {
			return nil, nil, err
		}
		seq, err := dpseq.Digitize(name, []byte(raw), alphabet)
		if err != nil {
			vlog.Errorf("skipping %q: %v", name, err)
			continue
		}
		pairs = append(pairs, pipeline.PairInput{
			QueryName:  name,
			TargetName: prof.Name(),
			Seq:        seq,
			Prof:       prof,
		})
	}
	return names, pairs, nil
}

func collectHitlistQueries(path string, want map[string]bool) error {
	sc, closer, err := mmseqs.Open(path)
	if err != nil {
		return err
	}
	defer closer.Close()
	for sc.Scan() {
		want[sc.Hit().Query] = true
	}
	return sc.Err()
}

func openFasta(path string) (fasta.Fasta, func(), error) {
	ctx := vcontext.Background()
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	fa, err := fasta.New(f.Reader(ctx))
	if err != nil {
		f.Close(ctx)
		return nil, nil, err
	}
	return fa, func() { f.Close(ctx) }, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	c := vcontext.Background()
	out, err := file.Create(c, path)
	if err != nil {
		return nil, nil, err
	}
	return out.Writer(c), func() {
		if err := out.Close(c); err != nil {
			log.Error.Printf("closing %s: %v", path, err)
		}
	}, nil
}

func writeResults(w io.Writer, results []pipeline.PairResult) error {
	header := "query\ttarget\tQ\tT\tcollapsed\tnat_sc\tnull_sc\tseq_bias\tpre_sc\tseq_sc\tln_pval\tpval\teval\n"
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	for _, r := range results {
		line := fmt.Sprintf("%s\t%s\t%d\t%d\t%v\t%g\t%g\t%g\t%g\t%g\t%g\t%g\t%g\n",
			r.Query, r.Target, r.Q, r.T, r.Collapsed,
			r.NatSc, r.NullSc, r.SeqBias, r.PreSc, r.SeqSc, r.LnPval, r.Pval, r.Eval)
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}
