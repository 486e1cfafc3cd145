package hmm

// Simple is a plain in-memory Profile, used by tests and by any loader
// that already has scores in slice form. Node indices are 1-based up to
// T, matching the profile-HMM convention the recurrences use throughout.
type Simple struct {
	T         int
	Msc       [][]float64  // Msc[k][a], k in [1,T]
	Isc       [][]float64  // Isc[k][a], k in [1,T]
	Tsc       [][8]float64 // Tsc[k][type], k in [0,T] (node 0 holds B-entry transitions)
	Xsc       [5][2]float64
	Local     bool
	TauVal    float64
	LambdaVal float64
	Compo     []float64
	NameVal   string
}

var _ Profile = (*Simple)(nil)

func (p *Simple) Length() int { return p.T }

func (p *Simple) MatchEmission(k, a int) float64 { return p.Msc[k][a] }

func (p *Simple) InsertEmission(k, a int) float64 { return p.Isc[k][a] }

func (p *Simple) Transition(k int, t Transition) float64 { return p.Tsc[k][t] }

func (p *Simple) Special(s SpecialState, t SpecialTransition) float64 { return p.Xsc[s][t] }

func (p *Simple) IsLocal() bool { return p.Local }

func (p *Simple) Tau() float64 { return p.TauVal }

func (p *Simple) Lambda() float64 { return p.LambdaVal }

func (p *Simple) MeanCompo(a int) float64 { return p.Compo[a] }

func (p *Simple) AlphabetSize() int { return len(p.Compo) }

func (p *Simple) Name() string { return p.NameVal }
