package crisis

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/urbanhobbit/CIOGame04/metric"
	"github.com/urbanhobbit/CIOGame04/scenario"
)

// Game is one player's session: the phase machine for a run over a
// sequence of crises.
type Game struct {
	cfg Config
	rng *rand.Rand

	mu sync.Mutex

	catalog *scenario.Catalog

	phase   Phase
	metrics metric.Vector
	pool    metric.Pool
	news    []NewsItem
	history []metric.Vector

	// run state
	sequence []string
	index    int
	current  *scenario.Scenario

	// per-crisis state, set on resolution
	decision *Decision
	result   *Resolution
	before   metric.Vector
}

func NewGame(cfg Config, cat *scenario.Catalog) (*Game, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Game{
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(seed)),
		catalog: cat,
	}
	g.resetLocked(NewsItem{Flag: FlagRunStarted})
	return g, nil
}

func (g *Game) Config() Config { return g.cfg }

func (g *Game) Catalog() *scenario.Catalog {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.catalog
}

func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// StartRun selects the crisis sequence and enters the first crisis.
func (g *Game) StartRun(selected []string, withTutorial bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseStart {
		return &PhaseError{Op: "start_run", Phase: g.phase}
	}
	seq, err := SelectSequence(g.catalog, selected, g.cfg.Initial.MaxCrises, g.rng)
	if err != nil {
		return err
	}

	g.sequence = seq
	g.index = 0
	g.current, _ = g.catalog.Get(seq[0])
	g.history = []metric.Vector{g.metrics}
	g.clearCrisisLocked()
	if withTutorial {
		g.phase = PhaseTutorial
	} else {
		g.phase = PhaseStory
	}
	return nil
}

// Advance acknowledges phase from and moves to the next one. If the game
// has already left from, nothing changes and the current phase is
// returned. Phases that need a command (start, decision, end) reject it.
func (g *Game) Advance(from Phase) (Phase, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if from != g.phase {
		return g.phase, nil
	}
	switch g.phase {
	case PhaseTutorial:
		g.phase = PhaseStory
	case PhaseStory:
		g.phase = PhaseAdvisors
	case PhaseAdvisors:
		g.phase = PhaseDecision
	case PhaseImmediate:
		g.phase = PhaseDelayed
	case PhaseDelayed:
		g.phase = PhaseReport
	case PhaseReport:
		g.nextCrisisOrEndLocked()
	default:
		return g.phase, &PhaseError{Op: "advance", Phase: g.phase}
	}
	return g.phase, nil
}

// ApplyAction resolves the current crisis with the given card. Unknown or
// unaffordable cards and invalid modifiers are rejected without changing
// any state.
func (g *Game) ApplyAction(actionID string, mods Modifiers) (*Resolution, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseDecision {
		return nil, &PhaseError{Op: "apply_action", Phase: g.phase}
	}
	action, ok := g.current.Action(actionID)
	if !ok {
		return nil, &SelectionError{ID: actionID, Reason: "unknown action"}
	}
	if !g.pool.Affords(action.Cost, action.HRCost) {
		return nil, &SelectionError{ID: actionID, Reason: "insufficient resources"}
	}
	norm, err := mods.Normalize()
	if err != nil {
		return nil, err
	}

	res := ResolveAction(g.metrics, g.pool, action, norm, g.cfg.Balance, g.rng)
	g.commitLocked(res, actionDecision(action, norm), action.Name)
	return res.clone(), nil
}

// SkipTurn resolves the current crisis without acting.
func (g *Game) SkipTurn() (*Resolution, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseDecision {
		return nil, &PhaseError{Op: "skip_turn", Phase: g.phase}
	}
	res := ResolveSkip(g.metrics, g.pool)
	g.commitLocked(res, &Decision{Skipped: true}, "")
	return res.clone(), nil
}

// Restart returns to the start phase with fresh state. The catalog is kept.
func (g *Game) Restart() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetLocked(NewsItem{Flag: FlagRunRestarted})
}

// SwitchCatalog replaces the catalog and restarts.
func (g *Game) SwitchCatalog(cat *scenario.Catalog) error {
	if cat == nil {
		return fmt.Errorf("catalog is required")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.catalog = cat
	g.resetLocked(NewsItem{Flag: FlagModeSwitched, Subject: string(cat.Mode)})
	return nil
}

func (g *Game) commitLocked(res Resolution, d *Decision, subject string) {
	g.before = g.metrics
	g.metrics = res.Metrics
	g.pool = res.Pool
	for _, f := range res.Flags {
		item := NewsItem{Flag: f}
		if f == FlagSecurityImproved {
			item.Subject = subject
		}
		g.news = pushNews(g.news, item)
	}
	g.decision = d
	r := res
	g.result = &r
	g.phase = PhaseImmediate
}

func (g *Game) nextCrisisOrEndLocked() {
	g.history = append(g.history, g.metrics)
	next := g.index + 1
	if next >= len(g.sequence) {
		g.phase = PhaseEnd
		return
	}
	g.index = next
	g.current, _ = g.catalog.Get(g.sequence[next])
	g.clearCrisisLocked()
	g.phase = PhaseStory
}

func (g *Game) clearCrisisLocked() {
	g.decision = nil
	g.result = nil
	g.before = g.metrics
}

func (g *Game) resetLocked(seed NewsItem) {
	g.phase = PhaseStart
	g.metrics = g.cfg.Initial.Metrics.Clamped()
	g.pool = g.cfg.Initial.pool()
	g.news = []NewsItem{seed}
	g.history = []metric.Vector{g.metrics}
	g.sequence = nil
	g.index = 0
	g.current = nil
	g.clearCrisisLocked()
}
