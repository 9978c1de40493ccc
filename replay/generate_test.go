package replay

import (
	"encoding/base64"
	"errors"
	"reflect"
	"testing"

	"github.com/urbanhobbit/CIOGame04/crisis"
	"github.com/urbanhobbit/CIOGame04/protocol"
)

func TestGenerateTape_IsDeterministic(t *testing.T) {
	spec := baseRunSpec()

	tapeA, err := GenerateTape(spec)
	if err != nil {
		t.Fatalf("GenerateTape A failed: %v", err)
	}
	tapeB, err := GenerateTape(spec)
	if err != nil {
		t.Fatalf("GenerateTape B failed: %v", err)
	}

	if !reflect.DeepEqual(tapeA, tapeB) {
		t.Fatalf("expected deterministic tape for the same RunSpec")
	}

	resolutions := 0
	for _, e := range tapeA.Events {
		if e.Type == protocol.KindResolution {
			resolutions++
		}
	}
	if resolutions != 1 {
		t.Fatalf("resolutions = %d, want 1", resolutions)
	}

	last := tapeA.Events[len(tapeA.Events)-1]
	if last.Snapshot == nil || last.Snapshot.Phase != crisis.PhaseEnd || last.Snapshot.Summary == nil {
		t.Fatalf("last event = %+v, want end snapshot with summary", last)
	}
	if len(last.Snapshot.History) != 2 {
		t.Fatalf("history len = %d, want 2", len(last.Snapshot.History))
	}
}

func TestGenerateTape_EnvelopesDecode(t *testing.T) {
	tape, err := GenerateTape(baseRunSpec())
	if err != nil {
		t.Fatalf("GenerateTape failed: %v", err)
	}
	for _, e := range ToWireTape(tape).Events {
		bin, err := base64.StdEncoding.DecodeString(e.EnvelopeB64)
		if err != nil {
			t.Fatalf("event %d: %v", e.Seq, err)
		}
		env, err := protocol.UnmarshalServerEnvelope(bin)
		if err != nil {
			t.Fatalf("event %d: %v", e.Seq, err)
		}
		if env.ServerSeq != e.Seq || env.Kind != e.Type || env.RoomID != defaultRoomID {
			t.Fatalf("event %d envelope = %+v", e.Seq, env)
		}
	}
}

func TestGenerateTape_ReturnsReplayErrorOnPhaseMismatch(t *testing.T) {
	spec := baseRunSpec()
	spec.Steps[1].Phase = "report"

	_, err := GenerateTape(spec)
	var replayErr *ReplayError
	if !errors.As(err, &replayErr) {
		t.Fatalf("expected ReplayError, got %T (%v)", err, err)
	}
	if replayErr.StepIndex != 1 || replayErr.Reason != "phase_mismatch" {
		t.Fatalf("unexpected error: %+v", replayErr)
	}
	if replayErr.Expected == nil || replayErr.Expected.Phase != "advisors" {
		t.Fatalf("expected state = %+v", replayErr.Expected)
	}
}

func TestGenerateTape_UnaffordableActionReportsOptions(t *testing.T) {
	budget := 12.0
	spec := baseRunSpec()
	spec.Initial = &InitSpec{Budget: &budget}

	_, err := GenerateTape(spec)
	var replayErr *ReplayError
	if !errors.As(err, &replayErr) {
		t.Fatalf("expected ReplayError, got %v", err)
	}
	if replayErr.StepIndex != 2 || replayErr.Reason != "invalid_selection" {
		t.Fatalf("unexpected error: %+v", replayErr)
	}
	if replayErr.Expected.Phase != "decision" || len(replayErr.Expected.Affordable) != 0 {
		t.Fatalf("expected state = %+v", replayErr.Expected)
	}
}

func TestGenerateTape_RejectsMalformedSpec(t *testing.T) {
	cases := map[string]func(*RunSpec){
		"mode":    func(s *RunSpec) { s.Mode = "elder" },
		"command": func(s *RunSpec) { s.Steps[0].Command = "dance" },
		"phase":   func(s *RunSpec) { s.Steps[0].Phase = "" },
		"action":  func(s *RunSpec) { s.Steps[2].ActionID = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			spec := baseRunSpec()
			mutate(&spec)
			if _, err := GenerateTape(spec); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func baseRunSpec() RunSpec {
	return RunSpec{
		Mode:     "adult",
		Selected: []string{"earthquake"},
		Steps: []StepSpec{
			{Command: "advance", Phase: "story"},
			{Command: "advance", Phase: "advisors"},
			{Command: "apply", ActionID: "B", Scope: "targeted", Duration: "medium", Safeguards: []string{"transparency", "sunset"}},
			{Command: "advance", Phase: "immediate"},
			{Command: "advance", Phase: "delayed"},
			{Command: "advance", Phase: "report"},
		},
		RNG: &RNGSpec{Seed: 42},
	}
}
