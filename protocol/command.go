package protocol

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/urbanhobbit/CIOGame04/crisis"
)

// Client command types.
const (
	CmdStartRun      = "start_run"
	CmdAdvance       = "advance"
	CmdApplyAction   = "apply_action"
	CmdSkipTurn      = "skip_turn"
	CmdRestart       = "restart"
	CmdSwitchMode    = "switch_mode"
	CmdListScenarios = "list_scenarios"
	CmdSuggest       = "suggest"
	CmdSnapshot      = "snapshot"
)

// ClientCommand is one client to server frame. Fields not used by Type are
// left empty. Advance must name the phase it acknowledges.
type ClientCommand struct {
	Seq  uint64 `json:"seq"`
	Type string `json:"type"`

	Selected []string `json:"selected,omitempty"`
	Tutorial bool     `json:"tutorial,omitempty"`

	Phase string `json:"phase,omitempty"`

	ActionID  string           `json:"action_id,omitempty"`
	Modifiers crisis.Modifiers `json:"modifiers"`

	Mode    string `json:"mode,omitempty"`
	Persona string `json:"persona,omitempty"`
}

func MarshalClientCommand(cmd *ClientCommand) ([]byte, error) {
	s, err := ToStruct(cmd)
	if err != nil {
		return nil, err
	}
	return marshalOpts.Marshal(s)
}

func UnmarshalClientCommand(b []byte) (*ClientCommand, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode client command: %w", err)
	}
	var cmd ClientCommand
	if err := FromStruct(&s, &cmd); err != nil {
		return nil, fmt.Errorf("decode client command: %w", err)
	}
	if cmd.Type == "" {
		return nil, fmt.Errorf("decode client command: missing type")
	}
	if cmd.Type == CmdAdvance && cmd.Phase == "" {
		return nil, fmt.Errorf("decode client command: advance without phase")
	}
	return &cmd, nil
}
