package crisis

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/urbanhobbit/CIOGame04/metric"
	"github.com/urbanhobbit/CIOGame04/scenario"
)

// fixedSource returns v from every draw and never reorders.
type fixedSource struct{ v float64 }

func (f fixedSource) Float64() float64 { return f.v }
func (fixedSource) Shuffle(n int, swap func(i, j int)) {}

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestResolveActionFormula(t *testing.T) {
	b := DefaultConfig().Balance
	cur := metric.Vector{Security: 50, Freedom: 70, PublicTrust: 60, Resilience: 50, Fatigue: 10}
	pool := metric.Pool{Budget: 100, HR: 50}
	action := scenario.ActionCard{
		ID: "B", Name: "Isolate", Cost: 30, HRCost: 10, Speed: scenario.SpeedFast,
		SecurityEffect: 40, SideEffectRisk: 0.5, FreedomCost: 20, SafeguardReduction: 0.8,
	}
	mods := Modifiers{
		Scope:      ScopeGeneral,
		Duration:   DurationLong,
		Safeguards: []Safeguard{SafeguardTransparency, SafeguardAppeal},
	}

	// rng 0.5 maps to the middle of [0.5, 1.5].
	res := ResolveAction(cur, pool, action, mods, b, fixedSource{0.5})

	freedomCost := 20 * 1.3 * 1.3 * (1 - 0.5*0.8)
	wantDelta := metric.Delta{
		Security:    50*40/100.0 - 0.5*1.0*20,
		Freedom:     -freedomCost,
		PublicTrust: 5 - 0.5*freedomCost,
		Resilience:  5,
		Fatigue:     1.3 * 6,
	}
	if diff := cmp.Diff(wantDelta, res.Delta, approx); diff != "" {
		t.Fatalf("delta mismatch (-want +got):\n%s", diff)
	}
	wantMetrics := cur.Apply(wantDelta)
	if diff := cmp.Diff(wantMetrics, res.Metrics, approx); diff != "" {
		t.Fatalf("metrics mismatch (-want +got):\n%s", diff)
	}
	if res.Pool != (metric.Pool{Budget: 70, HR: 40}) {
		t.Fatalf("pool = %+v, want budget=70 hr=40", res.Pool)
	}
	if res.RandomFactor != 1.0 || res.SafeguardQuality != 0.5 {
		t.Fatalf("random=%v quality=%v", res.RandomFactor, res.SafeguardQuality)
	}
	if diff := cmp.Diff([]Flag{FlagFreedomControversy, FlagTransparencyStep}, res.Flags); diff != "" {
		t.Fatalf("flags mismatch (-want +got):\n%s", diff)
	}
	if res.CounterFactual != CounterFactualProportionate || res.Skipped {
		t.Fatalf("counter=%q skipped=%v", res.CounterFactual, res.Skipped)
	}
}

func TestResolveActionSlowResilienceAndSecurityFlag(t *testing.T) {
	b := DefaultConfig().Balance
	action := scenario.ActionCard{
		ID: "A", Cost: 10, Speed: scenario.SpeedSlow,
		SecurityEffect: 40, FreedomCost: 4, SafeguardReduction: 1,
	}
	mods := Modifiers{Scope: ScopeTargeted, Duration: DurationShort,
		Safeguards: []Safeguard{SafeguardTransparency, SafeguardAppeal, SafeguardSunset}}

	res := ResolveAction(metric.Vector{}, metric.Pool{Budget: 10}, action, mods, b, fixedSource{0})

	if got, want := res.Delta.Resilience, 40*0.75/2; got != want {
		t.Fatalf("slow resilience = %v, want %v", got, want)
	}
	// 50*40/100 with no side effect risk.
	if res.Delta.Security != 20 {
		t.Fatalf("security delta = %v, want 20", res.Delta.Security)
	}
	if len(res.Flags) == 0 || res.Flags[0] != FlagSecurityImproved {
		t.Fatalf("flags = %v, want security improved first", res.Flags)
	}
	if res.CounterFactual != CounterFactualDominated {
		t.Fatalf("counter = %q, want dominated text for A", res.CounterFactual)
	}
}

func TestResolveActionFreedomFactorFloor(t *testing.T) {
	b := DefaultConfig().Balance
	cur := metric.Vector{Security: 50, Freedom: 40, PublicTrust: 50, Resilience: 50, Fatigue: 10}
	action := scenario.ActionCard{
		ID: "C", Speed: scenario.SpeedMedium,
		SecurityEffect: 10, FreedomCost: 30, SafeguardReduction: 2,
	}
	mods := Modifiers{Scope: ScopeGeneral, Duration: DurationLong,
		Safeguards: []Safeguard{SafeguardTransparency, SafeguardAppeal, SafeguardSunset}}

	res := ResolveAction(cur, metric.Pool{}, action, mods, b, fixedSource{0.3})

	if res.FreedomCost != 0 {
		t.Fatalf("freedom cost = %v, want 0 (floored)", res.FreedomCost)
	}
	if res.Metrics.Freedom != cur.Freedom {
		t.Fatalf("freedom = %v, want unchanged %v", res.Metrics.Freedom, cur.Freedom)
	}
	if res.Delta.PublicTrust != b.TrustBoostForTransparency {
		t.Fatalf("trust delta = %v, want only the transparency bonus", res.Delta.PublicTrust)
	}
}

func TestResolveSkipPenalties(t *testing.T) {
	cur := metric.Vector{Security: 50, Freedom: 50, PublicTrust: 50, Resilience: 50, Fatigue: 10}
	pool := metric.Pool{Budget: 12, HR: 3}

	res := ResolveSkip(cur, pool)

	want := metric.Vector{Security: 30, Freedom: 50, PublicTrust: 30, Resilience: 40, Fatigue: 25}
	if res.Metrics != want {
		t.Fatalf("skip metrics = %+v, want %+v", res.Metrics, want)
	}
	if res.Pool != pool {
		t.Fatalf("skip changed pool: %+v", res.Pool)
	}
	if !res.Skipped || res.CounterFactual != CounterFactualSkipped {
		t.Fatalf("skip result = %+v", res)
	}
	if diff := cmp.Diff([]Flag{FlagResourceShortage}, res.Flags); diff != "" {
		t.Fatalf("flags mismatch (-want +got):\n%s", diff)
	}

	low := ResolveSkip(metric.Vector{Security: 10, PublicTrust: 5, Fatigue: 95}, pool)
	if low.Metrics.Security != 0 || low.Metrics.PublicTrust != 0 || low.Metrics.Fatigue != 100 {
		t.Fatalf("skip not clamped: %+v", low.Metrics)
	}
}

func TestResolutionsStayInRange(t *testing.T) {
	cat, err := scenario.Builtin(scenario.ModeAdult)
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	b := DefaultConfig().Balance
	rng := rand.New(rand.NewSource(7))
	scopes := []Scope{ScopeTargeted, ScopeGeneral}
	durations := []Duration{DurationShort, DurationMedium, DurationLong}
	all := []Safeguard{SafeguardTransparency, SafeguardAppeal, SafeguardSunset}

	cur := DefaultConfig().Initial.Metrics
	pool := metric.Pool{Budget: 1e9, HR: 1e9}
	for i := 0; i < 2000; i++ {
		s, _ := cat.Get(cat.IDs()[rng.Intn(cat.Len())])
		var res Resolution
		if rng.Intn(5) == 0 {
			res = ResolveSkip(cur, pool)
		} else {
			mods := Modifiers{
				Scope:      scopes[rng.Intn(len(scopes))],
				Duration:   durations[rng.Intn(len(durations))],
				Safeguards: all[:rng.Intn(len(all)+1)],
			}
			res = ResolveAction(cur, pool, s.Actions[rng.Intn(len(s.Actions))], mods, b, rng)
		}
		if !res.Metrics.InRange() {
			t.Fatalf("step %d escaped range: %s", i, res.Metrics)
		}
		if res.RandomFactor != 0 && (res.RandomFactor < b.RandomFactorRange[0] || res.RandomFactor > b.RandomFactorRange[1]) {
			t.Fatalf("step %d random factor %v out of range", i, res.RandomFactor)
		}
		cur, pool = res.Metrics, res.Pool
	}
}

func TestModifiersNormalize(t *testing.T) {
	got, err := Modifiers{Safeguards: []Safeguard{SafeguardSunset, SafeguardSunset, SafeguardAppeal}}.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	want := Modifiers{Scope: ScopeTargeted, Duration: DurationShort, Safeguards: []Safeguard{SafeguardSunset, SafeguardAppeal}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("normalize mismatch (-want +got):\n%s", diff)
	}

	bad := []Modifiers{
		{Scope: "planetary"},
		{Duration: "forever"},
		{Safeguards: []Safeguard{"prayer"}},
	}
	for _, m := range bad {
		if _, err := m.Normalize(); err == nil {
			t.Fatalf("expected error for %+v", m)
		}
	}
}
