package crisis

import (
	"math"

	"github.com/urbanhobbit/CIOGame04/metric"
	"github.com/urbanhobbit/CIOGame04/scenario"
)

// Skip penalties.
const (
	SkipSecurityPenalty   = -25.0
	SkipTrustPenalty      = -20.0
	SkipResiliencePenalty = -10.0
	SkipFatigueIncrease   = 15.0
)

// Narrative thresholds.
const (
	securityImprovedThreshold   = 15.0
	freedomControversyThreshold = 15.0
	nonSlowResilienceBonus      = 5.0
	sideEffectScale             = 20.0
)

// DominatedActionID is the card the counter-factual text calls out as
// dominated by its alternatives.
const DominatedActionID = "A"

const (
	CounterFactualDominated     = "Options B or C could have delivered similar security at a lower cost to freedom."
	CounterFactualProportionate = "This choice was relatively proportionate; the safeguards you used made a difference."
	CounterFactualSkipped       = "Had you used your resources more efficiently, you could have responded to this crisis and prevented greater harm."
)

// Resolution is the outcome of one resolved crisis.
type Resolution struct {
	Metrics metric.Vector `json:"metrics"`
	Pool    metric.Pool   `json:"pool"`

	// Delta holds the unclamped changes the resolver computed.
	Delta metric.Delta `json:"delta"`

	RandomFactor     float64 `json:"random_factor"`
	FreedomCost      float64 `json:"freedom_cost"`
	SafeguardQuality float64 `json:"safeguard_quality"`

	Flags          []Flag `json:"flags,omitempty"`
	CounterFactual string `json:"counter_factual"`
	Skipped        bool   `json:"skipped"`
}

func (r *Resolution) clone() *Resolution {
	if r == nil {
		return nil
	}
	c := *r
	c.Flags = append([]Flag(nil), r.Flags...)
	return &c
}

// ResolveAction computes the effect of applying action with mods.
// mods must already be normalized and the action affordable; the pool is
// decremented without a floor.
func ResolveAction(cur metric.Vector, pool metric.Pool, action scenario.ActionCard, mods Modifiers, b Balance, rng RandomSource) Resolution {
	lo, hi := b.RandomFactorRange[0], b.RandomFactorRange[1]
	randomFactor := lo + rng.Float64()*(hi-lo)

	scopeMul := b.ScopeMultipliers.Get(mods.Scope)
	durationMul := b.DurationMultipliers.Get(mods.Duration)
	quality := float64(len(mods.Safeguards)) * b.SafeguardQualityPerItem
	transparency := mods.Has(SafeguardTransparency)

	securityDelta := b.ThreatSeverity*action.SecurityEffect/100 - action.SideEffectRisk*randomFactor*sideEffectScale

	// Safeguards may cancel the freedom cost but never turn it into a gain.
	mitigation := math.Max(0, 1-quality*action.SafeguardReduction)
	freedomCost := action.FreedomCost * scopeMul * durationMul * mitigation

	trustDelta := -0.5 * freedomCost
	if transparency {
		trustDelta += b.TrustBoostForTransparency
	}

	resilienceDelta := nonSlowResilienceBonus
	if action.Speed == scenario.SpeedSlow {
		resilienceDelta = action.SecurityEffect * quality / 2
	}

	fatigueDelta := durationMul * b.FatiguePerDuration.Get(mods.Scope)

	delta := metric.Delta{
		Security:    securityDelta,
		Freedom:     -freedomCost,
		PublicTrust: trustDelta,
		Resilience:  resilienceDelta,
		Fatigue:     fatigueDelta,
	}

	var flags []Flag
	if securityDelta > securityImprovedThreshold {
		flags = append(flags, FlagSecurityImproved)
	}
	if freedomCost > freedomControversyThreshold {
		flags = append(flags, FlagFreedomControversy)
	}
	if transparency {
		flags = append(flags, FlagTransparencyStep)
	}

	counter := CounterFactualProportionate
	if action.ID == DominatedActionID {
		counter = CounterFactualDominated
	}

	return Resolution{
		Metrics:          cur.Apply(delta),
		Pool:             pool.Spend(action.Cost, action.HRCost),
		Delta:            delta,
		RandomFactor:     randomFactor,
		FreedomCost:      freedomCost,
		SafeguardQuality: quality,
		Flags:            flags,
		CounterFactual:   counter,
	}
}

// ResolveSkip applies the fixed penalties for not acting. Freedom and the
// pool are left unchanged.
func ResolveSkip(cur metric.Vector, pool metric.Pool) Resolution {
	delta := metric.Delta{
		Security:    SkipSecurityPenalty,
		PublicTrust: SkipTrustPenalty,
		Resilience:  SkipResiliencePenalty,
		Fatigue:     SkipFatigueIncrease,
	}
	return Resolution{
		Metrics:        cur.Apply(delta),
		Pool:           pool,
		Delta:          delta,
		Flags:          []Flag{FlagResourceShortage},
		CounterFactual: CounterFactualSkipped,
		Skipped:        true,
	}
}
