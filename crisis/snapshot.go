package crisis

import (
	"github.com/urbanhobbit/CIOGame04/metric"
	"github.com/urbanhobbit/CIOGame04/scenario"
)

// Outcome is what the immediate, delayed and report phases display.
type Outcome struct {
	Before         metric.Vector `json:"before"`
	After          metric.Vector `json:"after"`
	Change         metric.Delta  `json:"change"`
	CounterFactual string        `json:"counter_factual"`
	ImmediateText  string        `json:"immediate_text"`
	DelayedText    string        `json:"delayed_text"`
	Resolution     *Resolution   `json:"resolution"`
}

type Snapshot struct {
	Phase Phase         `json:"phase"`
	Mode  scenario.Mode `json:"mode"`

	Metrics metric.Vector   `json:"metrics"`
	Pool    metric.Pool     `json:"pool"`
	News    []NewsItem      `json:"news"`
	History []metric.Vector `json:"history"`

	Sequence    []string `json:"sequence,omitempty"`
	CrisisIndex int      `json:"crisis_index"`
	CrisisTotal int      `json:"crisis_total"`
	ScenarioID  string   `json:"scenario_id,omitempty"`

	Decision   *Decision             `json:"decision,omitempty"`
	Outcome    *Outcome              `json:"outcome,omitempty"`
	Affordable []scenario.ActionCard `json:"affordable,omitempty"`
	Summary    *Summary              `json:"summary,omitempty"`
}

// Snapshot copies the observable state.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := Snapshot{
		Phase:       g.phase,
		Mode:        g.catalog.Mode,
		Metrics:     g.metrics,
		Pool:        g.pool,
		News:        append([]NewsItem(nil), g.news...),
		History:     append([]metric.Vector(nil), g.history...),
		Sequence:    append([]string(nil), g.sequence...),
		CrisisIndex: g.index,
		CrisisTotal: len(g.sequence),
		Decision:    g.decision.clone(),
	}
	if g.current != nil {
		s.ScenarioID = g.current.ID
	}
	if g.phase == PhaseDecision && g.current != nil {
		s.Affordable = g.current.Affordable(g.pool)
	}
	if g.result != nil {
		s.Outcome = g.outcomeLocked()
	}
	if g.phase == PhaseEnd {
		sum := Summarize(g.metrics, g.pool, g.history)
		s.Summary = &sum
	}
	return s
}

func (g *Game) outcomeLocked() *Outcome {
	o := &Outcome{
		Before:         g.before,
		After:          g.result.Metrics,
		Change:         g.result.Metrics.Diff(g.before),
		CounterFactual: g.result.CounterFactual,
		Resolution:     g.result.clone(),
	}
	switch {
	case g.result.Skipped:
		o.ImmediateText = g.catalog.SkipImmediateText
		o.DelayedText = g.catalog.SkipDelayedText
	case g.current != nil:
		name := ""
		if g.decision != nil {
			name = g.decision.ActionName
		}
		o.ImmediateText = scenario.Interpolate(g.current.ImmediateText, name)
		o.DelayedText = g.current.DelayedText
	}
	return o
}
