package autopilot

import (
	"testing"

	"github.com/urbanhobbit/CIOGame04/crisis"
	"github.com/urbanhobbit/CIOGame04/metric"
	"github.com/urbanhobbit/CIOGame04/scenario"
)

func builtinPersona(t *testing.T, id string) *Persona {
	t.Helper()
	reg, err := BuiltinRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	p := reg.Get(id)
	if p == nil {
		t.Fatalf("persona %s missing", id)
	}
	return p
}

func decisionView(t *testing.T) View {
	t.Helper()
	cat, err := scenario.Builtin(scenario.ModeAdult)
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	s, _ := cat.Get("pandemic")
	cfg := crisis.DefaultConfig()
	pool := metric.Pool{Budget: cfg.Initial.Budget, HR: cfg.Initial.HR}
	return View{
		ScenarioID: s.ID,
		Metrics:    cfg.Initial.Metrics,
		Pool:       pool,
		Affordable: s.Affordable(pool),
		Balance:    cfg.Balance,
	}
}

func TestRuleBrainSkipsWhenNothingIsAffordable(t *testing.T) {
	view := decisionView(t)
	view.Affordable = nil
	brain := NewRuleBrain(builtinPersona(t, "hawk"), 1)
	if got := brain.Decide(view); !got.Skip {
		t.Fatalf("decision = %+v, want skip", got)
	}
}

func TestRuleBrainPicksAffordableAction(t *testing.T) {
	view := decisionView(t)
	for _, id := range []string{"hawk", "libertarian", "technocrat", "gambler"} {
		brain := NewRuleBrain(builtinPersona(t, id), 3)
		for i := 0; i < 50; i++ {
			d := brain.Decide(view)
			if d.Skip {
				continue
			}
			found := false
			for _, a := range view.Affordable {
				found = found || a.ID == d.ActionID
			}
			if !found {
				t.Fatalf("%s chose unaffordable %s", id, d.ActionID)
			}
			if _, err := d.Modifiers.Normalize(); err != nil {
				t.Fatalf("%s chose invalid modifiers: %v", id, err)
			}
		}
	}
}

func TestPersonaLeaningsDiffer(t *testing.T) {
	view := decisionView(t)
	hawk := NewRuleBrain(builtinPersona(t, "hawk"), 5).Decide(view)
	lib := NewRuleBrain(builtinPersona(t, "libertarian"), 5).Decide(view)

	if hawk.Skip || lib.Skip {
		t.Fatalf("unexpected skip: hawk=%+v lib=%+v", hawk, lib)
	}
	if hawk.ActionID != "A" {
		t.Fatalf("hawk chose %s, want the strongest card A", hawk.ActionID)
	}
	if lib.ActionID == "A" {
		t.Fatalf("libertarian chose the most restrictive card")
	}
}

func TestPlayFinishesRun(t *testing.T) {
	cat, err := scenario.Builtin(scenario.ModeKids)
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	cfg := crisis.DefaultConfig()
	cfg.Seed = 11
	g, err := crisis.NewGame(cfg, cat)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}

	sum, err := Play(g, NewRuleBrain(builtinPersona(t, "technocrat"), 11), nil, true)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if sum == nil || len(sum.Timeline) != cfg.Initial.MaxCrises+1 {
		t.Fatalf("summary = %+v", sum)
	}
	if !sum.Final.InRange() {
		t.Fatalf("final out of range: %s", sum.Final)
	}
	if g.Phase() != crisis.PhaseEnd {
		t.Fatalf("phase = %s", g.Phase())
	}
}

func TestRegistryLoadFromJSON(t *testing.T) {
	r := NewRegistry()
	err := r.LoadFromJSON([]byte(`[{"id":"b","name":"B"},{"name":"no id"},{"id":"a","name":"A"}]`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	all := r.All()
	if r.Count() != 2 || all[0].ID != "a" || all[1].ID != "b" {
		t.Fatalf("registry = %+v", all)
	}
	if err := r.LoadFromJSON([]byte(`{`)); err == nil {
		t.Fatalf("expected parse error")
	}
}
