package crisis

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/urbanhobbit/CIOGame04/metric"
	"github.com/urbanhobbit/CIOGame04/scenario"
)

func TestSelectSequenceBounds(t *testing.T) {
	cat := testCatalog(t, "a", "b", "c", "d")
	rng := rand.New(rand.NewSource(1))

	for limit := 1; limit <= 6; limit++ {
		seq, err := SelectSequence(cat, nil, limit, rng)
		if err != nil {
			t.Fatalf("limit=%d: %v", limit, err)
		}
		want := limit
		if want > cat.Len() {
			want = cat.Len()
		}
		if len(seq) != want {
			t.Fatalf("limit=%d: len=%d want %d", limit, len(seq), want)
		}
		seen := map[string]bool{}
		for _, id := range seq {
			if seen[id] || !cat.Has(id) {
				t.Fatalf("limit=%d: bad sequence %v", limit, seq)
			}
			seen[id] = true
		}
	}
}

func TestSelectSequenceSelection(t *testing.T) {
	cat := testCatalog(t, "a", "b", "c")
	rng := rand.New(rand.NewSource(2))

	seq, err := SelectSequence(cat, []string{"c", "a", "c"}, 5, rng)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(seq) != 2 {
		t.Fatalf("duplicates not removed: %v", seq)
	}
	for _, id := range seq {
		if id != "a" && id != "c" {
			t.Fatalf("unexpected id %s in %v", id, seq)
		}
	}

	_, err = SelectSequence(cat, []string{"a", "nope"}, 3, rng)
	var se *SelectionError
	if !errors.As(err, &se) || se.ID != "nope" || !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("unknown id error = %v", err)
	}

	empty, err := scenario.NewCatalog(scenario.ModeAdult, nil)
	if err != nil {
		t.Fatalf("empty catalog: %v", err)
	}
	if _, err := SelectSequence(empty, nil, 3, rng); !errors.Is(err, ErrNoCrisisAvailable) {
		t.Fatalf("empty catalog error = %v", err)
	}
}

func TestSelectSequenceSeededIsReproducible(t *testing.T) {
	cat := testCatalog(t, "a", "b", "c", "d", "e")
	first, _ := SelectSequence(cat, nil, 3, rand.New(rand.NewSource(99)))
	second, _ := SelectSequence(cat, nil, 3, rand.New(rand.NewSource(99)))
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed gave %v and %v", first, second)
		}
	}
}

func TestLeadershipScore(t *testing.T) {
	cases := []struct {
		v    metric.Vector
		want float64
	}{
		{metric.Vector{Security: 80, Freedom: 80, PublicTrust: 80}, 80.0},
		{metric.Vector{Security: 80, Freedom: 80, PublicTrust: 70}, 76.7},
		{metric.Vector{Security: 10, Freedom: 0, PublicTrust: 0, Resilience: 100}, 3.3},
	}
	for _, tc := range cases {
		if got := LeadershipScore(tc.v); got != tc.want {
			t.Fatalf("score(%s) = %v, want %v", tc.v, got, tc.want)
		}
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	cases := []struct {
		name string
		v    metric.Vector
		want Style
	}{
		{"security before trust", metric.Vector{Security: 80, Freedom: 30, PublicTrust: 90, Resilience: 90}, StyleSecurityFocused},
		{"freedom", metric.Vector{Security: 40, Freedom: 90, PublicTrust: 90, Resilience: 90}, StyleFreedomFocused},
		{"trust resilience", metric.Vector{Security: 60, Freedom: 60, PublicTrust: 71, Resilience: 61}, StyleTrustResilienceFocused},
		{"boundary is exclusive", metric.Vector{Security: 75, Freedom: 49, PublicTrust: 70, Resilience: 60}, StyleBalanced},
		{"balanced", metric.Vector{Security: 50, Freedom: 50, PublicTrust: 50, Resilience: 50}, StyleBalanced},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.v); got != tc.want {
				t.Fatalf("classify = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestSummarizeLabelsTimeline(t *testing.T) {
	history := []metric.Vector{{Security: 50}, {Security: 60}, {Security: 70}}
	s := Summarize(history[2], metric.Pool{Budget: 5}, history)
	if len(s.Timeline) != 3 || s.Timeline[0].Label != "start" || s.Timeline[2].Label != "crisis 2" {
		t.Fatalf("timeline = %+v", s.Timeline)
	}
	if s.Pool.Budget != 5 || s.Final.Security != 70 {
		t.Fatalf("summary = %+v", s)
	}
}
