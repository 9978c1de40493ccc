package autopilot

import (
	"github.com/urbanhobbit/CIOGame04/crisis"
	"github.com/urbanhobbit/CIOGame04/metric"
	"github.com/urbanhobbit/CIOGame04/scenario"
)

// View is the part of the game state a Decider may look at.
type View struct {
	ScenarioID string
	Metrics    metric.Vector
	Pool       metric.Pool
	Affordable []scenario.ActionCard
	Balance    crisis.Balance
}

// NewView projects a decision-phase snapshot.
func NewView(snap crisis.Snapshot, b crisis.Balance) View {
	return View{
		ScenarioID: snap.ScenarioID,
		Metrics:    snap.Metrics,
		Pool:       snap.Pool,
		Affordable: snap.Affordable,
		Balance:    b,
	}
}

// Decision is what a Decider returns.
type Decision struct {
	Skip      bool
	ActionID  string
	Modifiers crisis.Modifiers
}

// Decider picks the response to one crisis.
type Decider interface {
	Decide(view View) Decision
	// Name returns a human-readable identifier for logs.
	Name() string
}
