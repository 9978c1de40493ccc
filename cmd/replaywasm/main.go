//go:build js && wasm

package main

import (
	"encoding/json"
	"errors"
	"syscall/js"

	"github.com/urbanhobbit/CIOGame04/replay"
)

type initRequest struct {
	Spec replay.RunSpec `json:"spec"`
}

type initResponse struct {
	OK    bool                `json:"ok"`
	Tape  *replay.WireTape    `json:"tape,omitempty"`
	Error *replay.ReplayError `json:"error,omitempty"`
}

func main() {
	js.Global().Set("__crisisReplayInit", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 1 {
			return mustJSON(initResponse{
				Error: &replay.ReplayError{StepIndex: -1, Reason: "invalid_request", Message: "missing request payload"},
			})
		}
		return mustJSON(handleInit(args[0].String()))
	}))

	select {}
}

func handleInit(raw string) initResponse {
	var req initRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return initResponse{
			Error: &replay.ReplayError{StepIndex: -1, Reason: "invalid_json", Message: err.Error()},
		}
	}

	tape, err := replay.GenerateTape(req.Spec)
	if err != nil {
		var replayErr *replay.ReplayError
		if errors.As(err, &replayErr) {
			return initResponse{Error: replayErr}
		}
		return initResponse{
			Error: &replay.ReplayError{StepIndex: -1, Reason: "replay_generation_failed", Message: err.Error()},
		}
	}
	return initResponse{OK: true, Tape: replay.ToWireTape(tape)}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(initResponse{
			Error: &replay.ReplayError{StepIndex: -1, Reason: "marshal_failed", Message: err.Error()},
		})
	}
	return string(b)
}
