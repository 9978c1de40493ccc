package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSimulateIsDeterministic(t *testing.T) {
	opts := options{runs: 6, seed: 11, mode: "kids", personas: "hawk, libertarian"}
	first, err := simulate(opts)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	second, err := simulate(opts)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("reports differ (-first +second):\n%s", diff)
	}

	if len(first) != 2 || first[0].Persona != "hawk" || first[1].Persona != "libertarian" {
		t.Fatalf("unexpected personas: %+v", first)
	}
	for _, r := range first {
		styles := 0
		for _, n := range r.Styles {
			styles += n
		}
		if styles != r.Runs {
			t.Fatalf("%s: style counts %d, runs %d", r.Persona, styles, r.Runs)
		}
		if r.Mean < r.Min || r.Mean > r.Max {
			t.Fatalf("%s: mean %.2f outside [%.2f, %.2f]", r.Persona, r.Mean, r.Min, r.Max)
		}
	}
}

func TestSimulateRejectsBadOptions(t *testing.T) {
	tests := []options{
		{runs: 0, mode: "adult"},
		{runs: 1, mode: "teens"},
		{runs: 1, mode: "adult", personas: "nobody"},
		{runs: 1, mode: "adult", catalog: "missing.json"},
	}
	for _, opts := range tests {
		if _, err := simulate(opts); err == nil {
			t.Fatalf("simulate(%+v): expected error", opts)
		}
	}
}

func TestWriteTable(t *testing.T) {
	reports, err := simulate(options{runs: 3, seed: 2, mode: "adult", personas: "technocrat"})
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	var out bytes.Buffer
	if err := write(&out, reports); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want header and one row, got:\n%s", out.String())
	}
	if !strings.HasPrefix(lines[1], "technocrat") || !strings.Contains(lines[0], "balanced") {
		t.Fatalf("unexpected table:\n%s", out.String())
	}
}
