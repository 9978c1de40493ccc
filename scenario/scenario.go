// Package scenario holds the crisis content consumed by the engine: scenarios,
// their advisors and action cards, and the catalog they are loaded into.
//
// Everything here is immutable once loaded. A *Catalog may be shared freely
// between sessions and goroutines.
package scenario

import (
	"fmt"

	"github.com/urbanhobbit/CIOGame04/metric"
)

type Mode string

const (
	ModeAdult Mode = "adult"
	ModeKids  Mode = "kids"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAdult, "":
		return ModeAdult, nil
	case ModeKids:
		return ModeKids, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// Speed selects the resilience formula of an action.
type Speed string

const (
	SpeedSlow   Speed = "slow"
	SpeedMedium Speed = "medium"
	SpeedFast   Speed = "fast"
)

func (s Speed) valid() bool {
	switch s {
	case SpeedSlow, SpeedMedium, SpeedFast:
		return true
	}
	return false
}

// ActionCard is one selectable policy response.
type ActionCard struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Cost        float64 `json:"cost"`
	HRCost      float64 `json:"hr_cost"`
	Speed       Speed   `json:"speed"`

	SecurityEffect     float64 `json:"security_effect"`
	SideEffectRisk     float64 `json:"side_effect_risk"`
	FreedomCost        float64 `json:"freedom_cost"`
	SafeguardReduction float64 `json:"safeguard_reduction"`
}

// Advisor statements are display-only.
type Advisor struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type Scenario struct {
	ID    string
	Title string
	Icon  string

	Situation     string
	Mission       string
	ImmediateText string // may contain a {} placeholder for the action name
	DelayedText   string

	Advisors []Advisor
	Actions  []ActionCard
}

func (s *Scenario) Action(id string) (ActionCard, bool) {
	for _, a := range s.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return ActionCard{}, false
}

// Affordable returns the cards playable from pool.
func (s *Scenario) Affordable(pool metric.Pool) []ActionCard {
	out := make([]ActionCard, 0, len(s.Actions))
	for _, a := range s.Actions {
		if pool.Affords(a.Cost, a.HRCost) {
			out = append(out, a)
		}
	}
	return out
}

func (s *Scenario) validate() error {
	if s.ID == "" {
		return fmt.Errorf("scenario id is required")
	}
	if len(s.Actions) == 0 {
		return fmt.Errorf("scenario %s: no action cards", s.ID)
	}
	seen := make(map[string]bool, len(s.Actions))
	for _, a := range s.Actions {
		if a.ID == "" {
			return fmt.Errorf("scenario %s: action id is required", s.ID)
		}
		if seen[a.ID] {
			return fmt.Errorf("scenario %s: duplicate action %s", s.ID, a.ID)
		}
		seen[a.ID] = true
		if a.Cost < 0 || a.HRCost < 0 {
			return fmt.Errorf("scenario %s: action %s has negative cost", s.ID, a.ID)
		}
		if !a.Speed.valid() {
			return fmt.Errorf("scenario %s: action %s has unknown speed %q", s.ID, a.ID, a.Speed)
		}
	}
	return nil
}
