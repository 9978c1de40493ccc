package autopilot

import (
	"math/rand"

	"github.com/urbanhobbit/CIOGame04/crisis"
	"github.com/urbanhobbit/CIOGame04/metric"
)

var (
	allScopes     = []crisis.Scope{crisis.ScopeTargeted, crisis.ScopeGeneral}
	allDurations  = []crisis.Duration{crisis.DurationShort, crisis.DurationMedium, crisis.DurationLong}
	allSafeguards = []crisis.Safeguard{crisis.SafeguardTransparency, crisis.SafeguardAppeal, crisis.SafeguardSunset}
)

// RuleBrain scores every affordable action and modifier combination by
// its expected outcome, weighted by the persona's profile.
type RuleBrain struct {
	Persona *Persona
	rng     *rand.Rand
}

func NewRuleBrain(persona *Persona, seed int64) *RuleBrain {
	return &RuleBrain{
		Persona: persona,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (b *RuleBrain) Name() string { return b.Persona.Name }

// Decide implements Decider.
func (b *RuleBrain) Decide(view View) Decision {
	skip := crisis.ResolveSkip(view.Metrics, view.Pool)
	best := Decision{Skip: true}
	bestScore := b.utility(view.Metrics, skip.Metrics, 0, 0)

	for _, action := range view.Affordable {
		for _, mods := range modifierSpace() {
			res := crisis.ResolveAction(view.Metrics, view.Pool, action, mods, view.Balance, expected{})
			score := b.utility(view.Metrics, res.Metrics, action.Cost, action.HRCost)
			score += (b.rng.Float64() - 0.5) * b.Persona.Profile.Randomness * 10
			if score > bestScore {
				bestScore = score
				best = Decision{ActionID: action.ID, Modifiers: mods}
			}
		}
	}
	return best
}

func (b *RuleBrain) utility(before, after metric.Vector, cost, hrCost float64) float64 {
	p := b.Persona.Profile
	d := after.Diff(before)
	u := d.Security*(0.25+2*p.Hawkishness) +
		d.Freedom*(0.25+2*p.LibertyBias) +
		d.PublicTrust*0.75 +
		d.Resilience*0.5 -
		d.Fatigue*(0.25+p.Caution)
	return u - (cost+hrCost)*p.Caution*0.1
}

// modifierSpace lists every scope, duration and safeguard subset.
func modifierSpace() []crisis.Modifiers {
	out := make([]crisis.Modifiers, 0, len(allScopes)*len(allDurations)*8)
	for _, s := range allScopes {
		for _, d := range allDurations {
			for mask := 0; mask < 1<<len(allSafeguards); mask++ {
				var guards []crisis.Safeguard
				for i, g := range allSafeguards {
					if mask&(1<<i) != 0 {
						guards = append(guards, g)
					}
				}
				out = append(out, crisis.Modifiers{Scope: s, Duration: d, Safeguards: guards})
			}
		}
	}
	return out
}

// expected draws the midpoint of the random factor range.
type expected struct{}

func (expected) Float64() float64 { return 0.5 }
func (expected) Shuffle(int, func(i, j int)) {}
