package metric

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-5, 0},
		{0, 0},
		{42.5, 42.5},
		{100, 100},
		{130, 100},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in); got != tt.want {
			t.Fatalf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestApplyClampsEachFieldIndependently(t *testing.T) {
	v := Vector{Security: 95, Freedom: 3, PublicTrust: 50, Resilience: 50, Fatigue: 99}
	got := v.Apply(Delta{Security: 20, Freedom: -10, PublicTrust: 5, Resilience: -60, Fatigue: 4})
	want := Vector{Security: 100, Freedom: 0, PublicTrust: 55, Resilience: 0, Fatigue: 100}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Apply mismatch (-want +got):\n%s", diff)
	}
	if !got.InRange() {
		t.Fatalf("expected result in range: %v", got)
	}
}

func TestDiff(t *testing.T) {
	before := Vector{Security: 50, Freedom: 50, PublicTrust: 50, Resilience: 50, Fatigue: 10}
	after := Vector{Security: 30, Freedom: 50, PublicTrust: 30, Resilience: 40, Fatigue: 25}
	want := Delta{Security: -20, Freedom: 0, PublicTrust: -20, Resilience: -10, Fatigue: 15}
	if diff := cmp.Diff(want, after.Diff(before)); diff != "" {
		t.Fatalf("Diff mismatch (-want +got):\n%s", diff)
	}
}

func TestInRangeRejectsOutOfBounds(t *testing.T) {
	if (Vector{Security: 101}).InRange() {
		t.Fatalf("expected 101 to be out of range")
	}
	if (Vector{Fatigue: -0.1}).InRange() {
		t.Fatalf("expected -0.1 to be out of range")
	}
}

func TestPoolAffordsAndSpend(t *testing.T) {
	p := Pool{Budget: 30, HR: 10}
	if !p.Affords(30, 10) {
		t.Fatalf("expected exact budget to be affordable")
	}
	if p.Affords(31, 1) || p.Affords(1, 11) {
		t.Fatalf("expected overspend to be rejected")
	}
	got := p.Spend(12, 4)
	if got.Budget != 18 || got.HR != 6 {
		t.Fatalf("unexpected pool after spend: %+v", got)
	}
}
