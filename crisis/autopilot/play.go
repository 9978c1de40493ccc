package autopilot

import (
	"fmt"

	"github.com/urbanhobbit/CIOGame04/crisis"
)

// maxSteps bounds a run in case a game stops making progress.
const maxSteps = 10000

// Play runs g from the start phase to the end, letting d decide every
// crisis, and returns the run summary.
func Play(g *crisis.Game, d Decider, selected []string, withTutorial bool) (*crisis.Summary, error) {
	if err := g.StartRun(selected, withTutorial); err != nil {
		return nil, err
	}
	balance := g.Config().Balance

	for step := 0; step < maxSteps; step++ {
		snap := g.Snapshot()
		switch snap.Phase {
		case crisis.PhaseEnd:
			return snap.Summary, nil
		case crisis.PhaseDecision:
			if err := Act(g, d.Decide(NewView(snap, balance))); err != nil {
				return nil, fmt.Errorf("%s on crisis %d: %w", d.Name(), snap.CrisisIndex+1, err)
			}
		default:
			if _, err := g.Advance(snap.Phase); err != nil {
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("run did not finish within %d steps", maxSteps)
}

// Act submits a decision to g.
func Act(g *crisis.Game, dec Decision) error {
	var err error
	if dec.Skip {
		_, err = g.SkipTurn()
	} else {
		_, err = g.ApplyAction(dec.ActionID, dec.Modifiers)
	}
	return err
}
