package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/urbanhobbit/CIOGame04/replay"
)

const skipRun = `{
  "mode": "kids",
  "selected": ["flood"],
  "rng": {"seed": 5},
  "steps": [
    {"command": "advance", "phase": "story"},
    {"command": "advance", "phase": "advisors"},
    {"command": "skip"},
    {"command": "advance", "phase": "immediate"},
    {"command": "advance", "phase": "delayed"},
    {"command": "advance", "phase": "report"}
  ]
}`

func TestRunPrintsTape(t *testing.T) {
	var out bytes.Buffer
	if err := run("", false, strings.NewReader(skipRun), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	var tape replay.Tape
	if err := json.Unmarshal(out.Bytes(), &tape); err != nil {
		t.Fatalf("decode tape: %v", err)
	}
	last := tape.Events[len(tape.Events)-1]
	if last.Snapshot == nil || last.Snapshot.Summary == nil {
		t.Fatalf("last event has no summary: %+v", last)
	}
	if last.Snapshot.Metrics.Security != 25 {
		t.Fatalf("security after skip = %v, want 25", last.Snapshot.Metrics.Security)
	}
}

func TestRunWireAndErrors(t *testing.T) {
	var out bytes.Buffer
	if err := run("", true, strings.NewReader(skipRun), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "envelopeB64") {
		t.Fatalf("wire output missing envelopes")
	}

	bad := strings.Replace(skipRun, `"skip"`, `"apply", "action_id": "Q"`, 1)
	err := run("", false, strings.NewReader(bad), &out)
	var replayErr *replay.ReplayError
	if !errors.As(err, &replayErr) || replayErr.Reason != "invalid_selection" {
		t.Fatalf("err = %v", err)
	}
	if err := run("", false, strings.NewReader("{"), &out); err == nil {
		t.Fatalf("expected parse error")
	}
}
