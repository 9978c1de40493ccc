package replay

import (
	"encoding/base64"
	"errors"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/urbanhobbit/CIOGame04/crisis"
	"github.com/urbanhobbit/CIOGame04/protocol"
	"github.com/urbanhobbit/CIOGame04/scenario"
)

const (
	tapeVersion   = 1
	defaultRoomID = "replay_local"
)

// GenerateTape plays spec against a fresh game and records every
// observation. The same spec always yields the same tape.
func GenerateTape(spec RunSpec) (*Tape, error) {
	ns, err := normalizeSpec(spec)
	if err != nil {
		return nil, err
	}

	cat, err := scenario.Builtin(ns.mode)
	if err != nil {
		return nil, &ReplayError{StepIndex: -1, Reason: "catalog_load_failed", Message: err.Error()}
	}
	game, err := crisis.NewGame(ns.cfg, cat)
	if err != nil {
		return nil, &ReplayError{StepIndex: -1, Reason: "engine_init_failed", Message: err.Error()}
	}

	b := newTapeBuilder(defaultRoomID)
	if err := game.StartRun(ns.selected, ns.tutorial); err != nil {
		return nil, &ReplayError{StepIndex: -1, Reason: reasonFor(err), Message: err.Error()}
	}
	if err := b.addSnapshot(-1, game.Snapshot()); err != nil {
		return nil, err
	}

	for i, st := range ns.steps {
		idx := int32(i)
		before := game.Snapshot()
		res, err := applyStep(game, st)
		if err != nil {
			return nil, &ReplayError{
				StepIndex: idx,
				Reason:    reasonFor(err),
				Message:   err.Error(),
				Expected:  expectedFrom(before),
			}
		}
		if res != nil {
			if err := b.addResolution(idx, res); err != nil {
				return nil, err
			}
		}
		if err := b.addSnapshot(idx, game.Snapshot()); err != nil {
			return nil, err
		}
	}
	return b.tape(), nil
}

func applyStep(game *crisis.Game, st normalizedStep) (*crisis.Resolution, error) {
	switch st.command {
	case commandAdvance:
		cur := game.Phase()
		if cur != st.phase {
			return nil, &phaseMismatch{want: st.phase, got: cur}
		}
		_, err := game.Advance(st.phase)
		return nil, err
	case commandApply:
		return game.ApplyAction(st.actionID, st.mods)
	case commandSkip:
		return game.SkipTurn()
	case commandRestart:
		game.Restart()
		return nil, nil
	case commandSwitchMode:
		cat, err := scenario.Builtin(st.mode)
		if err != nil {
			return nil, err
		}
		return nil, game.SwitchCatalog(cat)
	}
	return nil, fmt.Errorf("unknown command %q", st.command)
}

type phaseMismatch struct {
	want, got crisis.Phase
}

func (e *phaseMismatch) Error() string {
	return fmt.Sprintf("step acknowledges %s but game is in %s", e.want, e.got)
}

func reasonFor(err error) string {
	var pm *phaseMismatch
	switch {
	case errors.As(err, &pm):
		return "phase_mismatch"
	case errors.Is(err, crisis.ErrInvalidSelection):
		return "invalid_selection"
	case errors.Is(err, crisis.ErrPhaseViolation):
		return "phase_violation"
	case errors.Is(err, crisis.ErrNoCrisisAvailable):
		return "no_crisis_available"
	default:
		return "engine_error"
	}
}

func expectedFrom(snap crisis.Snapshot) *ExpectedState {
	exp := &ExpectedState{Phase: snap.Phase.String()}
	for _, a := range snap.Affordable {
		exp.Affordable = append(exp.Affordable, a.ID)
	}
	return exp
}

type tapeBuilder struct {
	roomID string
	seq    uint64
	events []TapeEvent
}

func newTapeBuilder(roomID string) *tapeBuilder {
	return &tapeBuilder{roomID: roomID}
}

func (b *tapeBuilder) addSnapshot(step int32, snap crisis.Snapshot) error {
	payload, err := protocol.SnapshotToStruct(snap)
	if err != nil {
		return &ReplayError{StepIndex: step, Reason: "encode_failed", Message: err.Error()}
	}
	ev := TapeEvent{Type: protocol.KindSnapshot, Step: step, Snapshot: &snap}
	return b.push(ev, payload)
}

func (b *tapeBuilder) addResolution(step int32, res *crisis.Resolution) error {
	payload, err := protocol.ResolutionToStruct(res)
	if err != nil {
		return &ReplayError{StepIndex: step, Reason: "encode_failed", Message: err.Error()}
	}
	return b.push(TapeEvent{Type: protocol.KindResolution, Step: step, Resolution: res}, payload)
}

func (b *tapeBuilder) push(ev TapeEvent, payload *structpb.Struct) error {
	b.seq++
	env := &protocol.ServerEnvelope{
		RoomID:     b.roomID,
		ServerSeq:  b.seq,
		ServerTsMs: int64(b.seq),
		Kind:       ev.Type,
		Payload:    payload,
	}
	bin, err := protocol.MarshalServerEnvelope(env)
	if err != nil {
		return &ReplayError{StepIndex: ev.Step, Reason: "encode_failed", Message: err.Error()}
	}
	ev.Seq = b.seq
	ev.EnvelopeB64 = base64.StdEncoding.EncodeToString(bin)
	b.events = append(b.events, ev)
	return nil
}

func (b *tapeBuilder) tape() *Tape {
	return &Tape{
		TapeVersion: tapeVersion,
		RoomID:      b.roomID,
		Events:      b.events,
	}
}
