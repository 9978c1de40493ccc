package crisis

import (
	"fmt"

	"github.com/urbanhobbit/CIOGame04/scenario"
)

// Phase of the current run.
type Phase byte

const (
	PhaseStart     Phase = 0
	PhaseTutorial  Phase = 1
	PhaseStory     Phase = 2
	PhaseAdvisors  Phase = 3
	PhaseDecision  Phase = 4
	PhaseImmediate Phase = 5
	PhaseDelayed   Phase = 6
	PhaseReport    Phase = 7
	PhaseEnd       Phase = 8
)

var PhaseDictionary = map[Phase]string{
	PhaseStart:     "start",
	PhaseTutorial:  "tutorial",
	PhaseStory:     "story",
	PhaseAdvisors:  "advisors",
	PhaseDecision:  "decision",
	PhaseImmediate: "immediate",
	PhaseDelayed:   "delayed",
	PhaseReport:    "report",
	PhaseEnd:       "end",
}

func (p Phase) String() string {
	if s, ok := PhaseDictionary[p]; ok {
		return s
	}
	return fmt.Sprintf("phase(%d)", byte(p))
}

func ParsePhase(s string) (Phase, error) {
	for p, name := range PhaseDictionary {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(b []byte) error {
	v, err := ParsePhase(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

type Scope string

const (
	ScopeTargeted Scope = "targeted"
	ScopeGeneral  Scope = "general"
)

type Duration string

const (
	DurationShort  Duration = "short"
	DurationMedium Duration = "medium"
	DurationLong   Duration = "long"
)

type Safeguard string

const (
	SafeguardTransparency Safeguard = "transparency"
	SafeguardAppeal       Safeguard = "appeal"
	SafeguardSunset       Safeguard = "sunset"
)

// Modifiers tune an applied action.
type Modifiers struct {
	Scope      Scope       `json:"scope"`
	Duration   Duration    `json:"duration"`
	Safeguards []Safeguard `json:"safeguards,omitempty"`
}

// Normalize fills the defaults (targeted, short), drops duplicate
// safeguards and rejects unknown values.
func (m Modifiers) Normalize() (Modifiers, error) {
	out := Modifiers{Scope: m.Scope, Duration: m.Duration}
	switch out.Scope {
	case "":
		out.Scope = ScopeTargeted
	case ScopeTargeted, ScopeGeneral:
	default:
		return Modifiers{}, &SelectionError{ID: string(m.Scope), Reason: "unknown scope"}
	}
	switch out.Duration {
	case "":
		out.Duration = DurationShort
	case DurationShort, DurationMedium, DurationLong:
	default:
		return Modifiers{}, &SelectionError{ID: string(m.Duration), Reason: "unknown duration"}
	}
	seen := make(map[Safeguard]bool, len(m.Safeguards))
	for _, s := range m.Safeguards {
		switch s {
		case SafeguardTransparency, SafeguardAppeal, SafeguardSunset:
		default:
			return Modifiers{}, &SelectionError{ID: string(s), Reason: "unknown safeguard"}
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out.Safeguards = append(out.Safeguards, s)
	}
	return out, nil
}

func (m Modifiers) Has(s Safeguard) bool {
	for _, v := range m.Safeguards {
		if v == s {
			return true
		}
	}
	return false
}

// Decision records what was chosen for the current crisis.
type Decision struct {
	Skipped    bool   `json:"skipped"`
	ActionID   string `json:"action_id,omitempty"`
	ActionName string `json:"action_name,omitempty"`
	Modifiers
}

func (d *Decision) clone() *Decision {
	if d == nil {
		return nil
	}
	c := *d
	c.Safeguards = append([]Safeguard(nil), d.Safeguards...)
	return &c
}

// RandomSource is the randomness the engine draws from. *math/rand.Rand
// satisfies it.
type RandomSource interface {
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

func actionDecision(a scenario.ActionCard, mods Modifiers) *Decision {
	return &Decision{ActionID: a.ID, ActionName: a.Name, Modifiers: mods}
}
