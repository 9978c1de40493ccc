// Package room hosts one player's crisis game behind an actor goroutine.
// Every command is applied in order by that goroutine, so a game is never
// touched by two connections at once.
package room

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/urbanhobbit/CIOGame04/apps/server/internal/ledger"
	"github.com/urbanhobbit/CIOGame04/crisis"
	"github.com/urbanhobbit/CIOGame04/crisis/autopilot"
	"github.com/urbanhobbit/CIOGame04/protocol"
	"github.com/urbanhobbit/CIOGame04/scenario"
)

var (
	ErrRoomClosed     = errors.New("room closed")
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadCommand     = errors.New("bad command")
)

// Deps are shared, read-only collaborators handed to every room.
type Deps struct {
	Catalogs       map[scenario.Mode]*scenario.Catalog
	Personas       *autopilot.PersonaRegistry
	DefaultPersona string
	Ledger         ledger.Service
}

// RunEndInfo is emitted once per finished run.
type RunEndInfo struct {
	RoomID    string
	AccountID uint64
	RunID     string
	Mode      scenario.Mode
	Summary   crisis.Summary
}

type RunEndHook func(info RunEndInfo)

type Room struct {
	ID        string
	AccountID uint64

	mu         sync.RWMutex
	game       *crisis.Game
	send       func(data []byte)
	owner      string
	closed     bool
	stopOnce   sync.Once
	lastActive time.Time
	hooks      []RunEndHook

	events chan event
	done   chan struct{}

	// Owned by the actor goroutine.
	serverSeq uint64
	runID     string
	finished  bool

	deps Deps
}

type event struct {
	cmd      *protocol.ClientCommand
	response chan error
}

func New(id string, accountID uint64, game *crisis.Game, deps Deps) *Room {
	if deps.Ledger == nil {
		deps.Ledger = ledger.NewMemoryService(0)
	}
	r := &Room{
		ID:         id,
		AccountID:  accountID,
		game:       game,
		lastActive: time.Now(),
		events:     make(chan event, 64),
		done:       make(chan struct{}),
		deps:       deps,
	}
	go r.run()
	log.Printf("[Room %s] Created for account %d (%s mode)", id, accountID, game.Catalog().Mode)
	return r
}

func (r *Room) run() {
	for {
		select {
		case ev := <-r.events:
			err := r.handle(ev.cmd)
			if err != nil {
				r.sendError(errorCode(err), err.Error())
			}
			ev.response <- err
		case <-r.done:
			log.Printf("[Room %s] Actor stopped", r.ID)
			return
		}
	}
}

// Submit queues cmd and waits for the actor to apply it. Engine errors are
// returned and also sent to the client as error frames.
func (r *Room) Submit(cmd *protocol.ClientCommand) error {
	if cmd == nil {
		return fmt.Errorf("%w: empty command", ErrBadCommand)
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRoomClosed
	}
	r.lastActive = time.Now()
	r.mu.Unlock()

	ev := event{cmd: cmd, response: make(chan error, 1)}
	select {
	case r.events <- ev:
	case <-r.done:
		return ErrRoomClosed
	}
	select {
	case err := <-ev.response:
		return err
	case <-r.done:
		return ErrRoomClosed
	}
}

// Attach routes outgoing frames to send and pushes a fresh snapshot. owner
// identifies the attachment so a stale Detach cannot drop a newer one.
func (r *Room) Attach(owner string, send func(data []byte)) error {
	r.mu.Lock()
	r.owner = owner
	r.send = send
	r.mu.Unlock()
	return r.Submit(&protocol.ClientCommand{Type: protocol.CmdSnapshot})
}

// Detach clears the sender if owner still holds it.
func (r *Room) Detach(owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.owner != owner {
		return
	}
	r.owner = ""
	r.send = nil
	r.lastActive = time.Now()
}

func (r *Room) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.stopOnce.Do(func() { close(r.done) })
}

// IsIdleFor reports whether nobody has been attached or sent a command for
// at least ttl.
func (r *Room) IsIdleFor(ttl time.Duration) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return true
	}
	return r.send == nil && time.Since(r.lastActive) >= ttl
}

func (r *Room) IsClosed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

func (r *Room) Snapshot() crisis.Snapshot {
	return r.game.Snapshot()
}

func (r *Room) AddRunEndHook(hook RunEndHook) {
	if hook == nil {
		return
	}
	r.mu.Lock()
	r.hooks = append(r.hooks, hook)
	r.mu.Unlock()
}

func (r *Room) handle(cmd *protocol.ClientCommand) error {
	switch cmd.Type {
	case protocol.CmdStartRun:
		if err := r.game.StartRun(cmd.Selected, cmd.Tutorial); err != nil {
			return err
		}
		r.runID = uuid.NewString()
		r.finished = false
		snap := r.game.Snapshot()
		log.Printf("[Room %s] Run %s started: %v", r.ID, r.runID, snap.Sequence)

	case protocol.CmdAdvance:
		// The acknowledged phase is required so a repeated frame is a no-op.
		if cmd.Phase == "" {
			return fmt.Errorf("%w: advance needs the acknowledged phase", ErrBadCommand)
		}
		from, err := crisis.ParsePhase(cmd.Phase)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadCommand, err)
		}
		if _, err := r.game.Advance(from); err != nil {
			return err
		}
		r.finishRunIfEnded()

	case protocol.CmdApplyAction:
		res, err := r.game.ApplyAction(cmd.ActionID, cmd.Modifiers)
		if err != nil {
			return err
		}
		r.recordResolution(res)

	case protocol.CmdSkipTurn:
		res, err := r.game.SkipTurn()
		if err != nil {
			return err
		}
		r.recordResolution(res)

	case protocol.CmdRestart:
		r.game.Restart()
		r.runID = ""

	case protocol.CmdSwitchMode:
		mode, err := scenario.ParseMode(cmd.Mode)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadCommand, err)
		}
		cat, ok := r.deps.Catalogs[mode]
		if !ok {
			return fmt.Errorf("%w: no %s catalog", ErrBadCommand, mode)
		}
		if err := r.game.SwitchCatalog(cat); err != nil {
			return err
		}
		r.runID = ""
		log.Printf("[Room %s] Switched to %s mode", r.ID, mode)

	case protocol.CmdListScenarios:
		payload, err := protocol.ScenariosToStruct(r.game.Catalog())
		if err != nil {
			return err
		}
		r.emit(protocol.KindScenarios, payload)
		return nil

	case protocol.CmdSuggest:
		return r.suggest(cmd.Persona)

	case protocol.CmdSnapshot:

	default:
		return fmt.Errorf("%w %q", ErrUnknownCommand, cmd.Type)
	}
	return r.sendSnapshot()
}

func (r *Room) recordResolution(res *crisis.Resolution) {
	if payload, err := protocol.ResolutionToStruct(res); err == nil {
		r.emit(protocol.KindResolution, payload)
	} else {
		log.Printf("[Room %s] encode resolution failed: %v", r.ID, err)
	}

	snap := r.game.Snapshot()
	rec := ledger.CrisisRecord{
		RunID:        r.runID,
		AccountID:    r.AccountID,
		Index:        snap.CrisisIndex,
		ScenarioID:   snap.ScenarioID,
		Skipped:      res.Skipped,
		RandomFactor: res.RandomFactor,
		RecordedAt:   time.Now().UTC(),
	}
	if snap.Decision != nil {
		rec.ActionID = snap.Decision.ActionID
		rec.Modifiers = snap.Decision.Modifiers
	}
	if snap.Outcome != nil {
		rec.Before = snap.Outcome.Before
		rec.After = snap.Outcome.After
	}
	r.deps.Ledger.RecordCrisis(rec)
}

func (r *Room) finishRunIfEnded() {
	if r.finished || r.runID == "" || r.game.Phase() != crisis.PhaseEnd {
		return
	}
	snap := r.game.Snapshot()
	if snap.Summary == nil {
		return
	}
	r.finished = true
	info := RunEndInfo{
		RoomID:    r.ID,
		AccountID: r.AccountID,
		RunID:     r.runID,
		Mode:      snap.Mode,
		Summary:   *snap.Summary,
	}
	r.deps.Ledger.RecordRun(ledger.RunRecord{
		RunID:      info.RunID,
		AccountID:  info.AccountID,
		Mode:       string(info.Mode),
		Score:      info.Summary.Score,
		Style:      info.Summary.Style,
		Summary:    info.Summary,
		FinishedAt: time.Now().UTC(),
	})
	log.Printf("[Room %s] Run %s finished: score=%.1f style=%s", r.ID, r.runID, info.Summary.Score, info.Summary.Style)

	r.mu.RLock()
	hooks := append([]RunEndHook(nil), r.hooks...)
	r.mu.RUnlock()
	for _, h := range hooks {
		h(info)
	}
}

func (r *Room) suggest(personaID string) error {
	snap := r.game.Snapshot()
	if snap.Phase != crisis.PhaseDecision {
		return &crisis.PhaseError{Op: "suggest", Phase: snap.Phase}
	}
	if personaID == "" {
		personaID = r.deps.DefaultPersona
	}
	var persona *autopilot.Persona
	if r.deps.Personas != nil {
		persona = r.deps.Personas.Get(personaID)
	}
	if persona == nil {
		return fmt.Errorf("%w: unknown persona %q", ErrBadCommand, personaID)
	}

	brain := autopilot.NewRuleBrain(persona, int64(r.serverSeq)+1)
	dec := brain.Decide(autopilot.NewView(snap, r.game.Config().Balance))
	payload, err := protocol.ToStruct(struct {
		Persona   string           `json:"persona"`
		Name      string           `json:"name"`
		Skip      bool             `json:"skip"`
		ActionID  string           `json:"action_id,omitempty"`
		Modifiers crisis.Modifiers `json:"modifiers"`
	}{persona.ID, persona.Name, dec.Skip, dec.ActionID, dec.Modifiers})
	if err != nil {
		return err
	}
	r.emit(protocol.KindSuggestion, payload)
	return nil
}

func (r *Room) sendSnapshot() error {
	payload, err := protocol.SnapshotToStruct(r.game.Snapshot())
	if err != nil {
		return err
	}
	r.emit(protocol.KindSnapshot, payload)
	return nil
}

func (r *Room) sendError(code int32, msg string) {
	r.emit(protocol.KindError, protocol.ErrorPayload(code, msg))
}

func (r *Room) emit(kind string, payload *structpb.Struct) {
	r.serverSeq++
	data, err := protocol.MarshalServerEnvelope(&protocol.ServerEnvelope{
		RoomID:     r.ID,
		ServerSeq:  r.serverSeq,
		ServerTsMs: time.Now().UnixMilli(),
		Kind:       kind,
		Payload:    payload,
	})
	if err != nil {
		log.Printf("[Room %s] encode %s failed: %v", r.ID, kind, err)
		return
	}
	r.mu.RLock()
	send := r.send
	r.mu.RUnlock()
	if send != nil {
		send(data)
	}
}

func errorCode(err error) int32 {
	switch {
	case errors.Is(err, ErrUnknownCommand):
		return protocol.CodeUnknownCommand
	case errors.Is(err, ErrBadCommand):
		return protocol.CodeBadFrame
	default:
		return protocol.ErrorCode(err)
	}
}
