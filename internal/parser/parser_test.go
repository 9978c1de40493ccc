package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/urbanhobbit/CIOGame04/crisis"
)

var crisisCtx = Context{
	ActionIDs:   []string{"A", "B", "C"},
	ScenarioIDs: []string{"blackout", "disinformation", "earthquake", "pandemic"},
}

func TestNormalisationTable(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  APPLY  B ", want: "apply b"},
		{in: "apply-b,general+long!!", want: "apply b general long"},
		{in: "go   on", want: "go on"},
		{in: "???", want: ""},
	}
	for _, tc := range tests {
		got := normaliseInput(tc.in)
		if got != tc.want {
			t.Fatalf("normaliseInput(%q)=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestVerbResolution(t *testing.T) {
	tests := []struct {
		in   string
		want Verb
	}{
		{in: "", want: VerbNext},
		{in: "next", want: VerbNext},
		{in: "go on", want: VerbNext},
		{in: "skip", want: VerbSkip},
		{in: "do nothing", want: VerbSkip},
		{in: "skp", want: VerbSkip},
		{in: "reset", want: VerbRestart},
		{in: "stats", want: VerbStatus},
		{in: "headlines", want: VerbNews},
		{in: "hint", want: VerbSuggest},
		{in: "exit", want: VerbQuit},
		{in: "new run", want: VerbStart},
	}
	p := New()
	for _, tc := range tests {
		intent := p.Parse(crisisCtx, tc.in)
		if intent.Clarify != nil {
			t.Fatalf("Parse(%q) asked to clarify: %+v", tc.in, intent.Clarify)
		}
		if intent.Verb != tc.want {
			t.Fatalf("Parse(%q).Verb=%q want=%q", tc.in, intent.Verb, tc.want)
		}
	}
}

func TestTypoLowersConfidence(t *testing.T) {
	p := New()
	exact := p.Parse(crisisCtx, "restart")
	typo := p.Parse(crisisCtx, "restrat")
	if typo.Verb != VerbRestart {
		t.Fatalf("expected restart verb, got %q", typo.Verb)
	}
	if typo.Confidence >= exact.Confidence {
		t.Fatalf("typo confidence %.2f should be below exact %.2f", typo.Confidence, exact.Confidence)
	}
}

func TestApplyWithModifiers(t *testing.T) {
	p := New()
	intent := p.Parse(crisisCtx, "pick b with general scope, long, sunset and appeal")
	if intent.Clarify != nil {
		t.Fatalf("did not expect clarify: %+v", intent.Clarify)
	}
	if intent.Verb != VerbApply {
		t.Fatalf("expected apply verb, got %q", intent.Verb)
	}
	if diff := cmp.Diff([]string{"B"}, intent.Args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
	want := crisis.Modifiers{
		Scope:      crisis.ScopeGeneral,
		Duration:   crisis.DurationLong,
		Safeguards: []crisis.Safeguard{crisis.SafeguardSunset, crisis.SafeguardAppeal},
	}
	if diff := cmp.Diff(want, intent.Modifiers); diff != "" {
		t.Fatalf("modifiers mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyCorrectsModifierTypo(t *testing.T) {
	p := New()
	intent := p.Parse(crisisCtx, "apply a transparncy")
	if intent.Clarify != nil {
		t.Fatalf("did not expect clarify: %+v", intent.Clarify)
	}
	want := crisis.Modifiers{Safeguards: []crisis.Safeguard{crisis.SafeguardTransparency}}
	if diff := cmp.Diff(want, intent.Modifiers, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("modifiers mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyNeedsKnownAction(t *testing.T) {
	p := New()
	tests := []string{"apply", "apply d", "apply b zzzzzz"}
	for _, in := range tests {
		intent := p.Parse(crisisCtx, in)
		if intent.Clarify == nil {
			t.Fatalf("Parse(%q): expected clarify", in)
		}
	}

	intent := p.Parse(crisisCtx, "apply d")
	if diff := cmp.Diff(crisisCtx.ActionIDs, intent.Clarify.Options); diff != "" {
		t.Fatalf("clarify options mismatch (-want +got):\n%s", diff)
	}
}

func TestStartResolvesScenarios(t *testing.T) {
	p := New()
	intent := p.Parse(crisisCtx, "start tutorial pandemik blackout")
	if intent.Clarify != nil {
		t.Fatalf("did not expect clarify: %+v", intent.Clarify)
	}
	if !intent.Tutorial {
		t.Fatalf("expected tutorial flag")
	}
	if diff := cmp.Diff([]string{"pandemic", "blackout"}, intent.Args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}

	bad := p.Parse(crisisCtx, "start volcano")
	if bad.Clarify == nil {
		t.Fatalf("expected clarify for unknown scenario")
	}
}

func TestModeWords(t *testing.T) {
	p := New()
	tests := []struct {
		in   string
		want string
	}{
		{in: "mode kids", want: "kids"},
		{in: "switch to children", want: "kids"},
		{in: "switch mode adult", want: "adult"},
		{in: "mode adlt", want: "adult"},
	}
	for _, tc := range tests {
		intent := p.Parse(crisisCtx, tc.in)
		if intent.Clarify != nil {
			t.Fatalf("Parse(%q) asked to clarify: %+v", tc.in, intent.Clarify)
		}
		if intent.Verb != VerbMode || len(intent.Args) != 1 || intent.Args[0] != tc.want {
			t.Fatalf("Parse(%q)=%s %v want mode %s", tc.in, intent.Verb, intent.Args, tc.want)
		}
	}

	if intent := p.Parse(crisisCtx, "mode"); intent.Clarify == nil {
		t.Fatalf("expected clarify for bare mode")
	}
}

func TestAmbiguousPrefixReturnsClarify(t *testing.T) {
	p := New()
	intent := p.Parse(crisisCtx, "sta")
	if intent.Clarify == nil {
		t.Fatalf("expected clarify for ambiguous prefix")
	}
	if len(intent.Clarify.Options) < 2 {
		t.Fatalf("expected at least 2 clarify options, got %d", len(intent.Clarify.Options))
	}
}

func TestGibberishReturnsClarify(t *testing.T) {
	p := New()
	intent := p.Parse(crisisCtx, "xyzzy plugh")
	if intent.Verb != VerbNone || intent.Clarify == nil {
		t.Fatalf("expected clarify without verb, got %+v", intent)
	}
}

func TestRegisterCommandExtendsVocabulary(t *testing.T) {
	p := New()
	p.RegisterCommand(CommandDef{Verb: VerbNews, Aliases: []string{"paper", "headlines"}, MaxArgs: -1})
	intent := p.Parse(crisisCtx, "paper")
	if intent.Verb != VerbNews {
		t.Fatalf("expected news verb, got %q", intent.Verb)
	}
}
