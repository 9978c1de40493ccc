package replay

import "github.com/urbanhobbit/CIOGame04/crisis"

// RunSpec scripts one run from the start phase.
type RunSpec struct {
	Mode     string     `json:"mode"`
	Selected []string   `json:"selected,omitempty"`
	Tutorial bool       `json:"tutorial,omitempty"`
	Steps    []StepSpec `json:"steps"`
	RNG      *RNGSpec   `json:"rng,omitempty"`
	Initial  *InitSpec  `json:"initial,omitempty"`
}

// InitSpec overrides the starting resources.
type InitSpec struct {
	Budget    *float64 `json:"budget,omitempty"`
	HR        *float64 `json:"hr,omitempty"`
	MaxCrises int      `json:"max_crises,omitempty"`
}

// StepSpec is one command. Phase is required for advance and names the
// phase being acknowledged.
type StepSpec struct {
	Command    string   `json:"command"`
	Phase      string   `json:"phase,omitempty"`
	ActionID   string   `json:"action_id,omitempty"`
	Scope      string   `json:"scope,omitempty"`
	Duration   string   `json:"duration,omitempty"`
	Safeguards []string `json:"safeguards,omitempty"`
	Mode       string   `json:"mode,omitempty"`
}

type RNGSpec struct {
	Seed int64 `json:"seed"`
}

type Tape struct {
	TapeVersion int         `json:"tape_version"`
	RoomID      string      `json:"room_id"`
	Events      []TapeEvent `json:"events"`
}

type TapeEvent struct {
	Type        string             `json:"type"`
	Seq         uint64             `json:"seq"`
	Step        int32              `json:"step"`
	Snapshot    *crisis.Snapshot   `json:"snapshot,omitempty"`
	Resolution  *crisis.Resolution `json:"resolution,omitempty"`
	EnvelopeB64 string             `json:"envelope_b64,omitempty"`
}
