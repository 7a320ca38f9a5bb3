package agent

import (
	"sort"

	"github.com/ktrewin/percept/internal/numeric"
	"github.com/ktrewin/percept/internal/rng"
)

// Planner runs beam search over action sequences for any belief type,
// parameterized by a predict function and an EFE scorer. Both the discrete
// and continuous agents plan through the same search.
type Planner[B any] struct {
	Actions   []string
	Predict   func(B, string) B
	Score     func(B) float64
	Horizon   int
	Precision float64
	BeamWidth int
	Habits    map[string]float64
	Rand      *rng.Source
}

// candidate is one surviving partial policy during search.
type candidate[B any] struct {
	policy []string
	efe    float64
	belief B
}

// Act searches policies up to the horizon and samples the first action of
// one, softmin-weighted by cumulative EFE and optionally reweighted by
// habits. Horizon is clamped to at least 1 and precision to at least 0; a
// beam width of zero or less keeps every expansion (full enumeration).
func (p *Planner[B]) Act(current B) string {
	horizon := p.Horizon
	if horizon < 1 {
		horizon = 1
	}
	beta := p.Precision
	if beta < 0 {
		beta = 0
	}

	beams := make([]candidate[B], 0, len(p.Actions))
	for _, a := range p.Actions {
		next := p.Predict(current, a)
		beams = append(beams, candidate[B]{
			policy: []string{a},
			efe:    p.Score(next),
			belief: next,
		})
	}

	for step := 1; step < horizon; step++ {
		expanded := make([]candidate[B], 0, len(beams)*len(p.Actions))
		for _, c := range beams {
			for _, a := range p.Actions {
				next := p.Predict(c.belief, a)
				policy := make([]string, len(c.policy)+1)
				copy(policy, c.policy)
				policy[len(c.policy)] = a
				expanded = append(expanded, candidate[B]{
					policy: policy,
					efe:    c.efe + p.Score(next),
					belief: next,
				})
			}
		}
		if p.BeamWidth > 0 && len(expanded) > p.BeamWidth {
			sort.SliceStable(expanded, func(i, j int) bool {
				return expanded[i].efe < expanded[j].efe
			})
			expanded = expanded[:p.BeamWidth]
		}
		beams = expanded
	}

	efes := make([]float64, len(beams))
	for i, c := range beams {
		efes[i] = c.efe
	}
	probs := numeric.Softmin(efes, beta)

	if len(p.Habits) > 0 {
		total := 0.0
		for i, c := range beams {
			weight := 1.0
			for _, a := range c.policy {
				if h, ok := p.Habits[a]; ok {
					weight *= h
				}
			}
			probs[i] *= weight
			total += probs[i]
		}
		if total > 0 {
			for i := range probs {
				probs[i] /= total
			}
		}
	}

	// Inverse-CDF sample; the last index absorbs floating rounding.
	u := p.Rand.Float64()
	idx := len(beams) - 1
	cum := 0.0
	for i, pr := range probs {
		cum += pr
		if u < cum {
			idx = i
			break
		}
	}
	return beams[idx].policy[0]
}
