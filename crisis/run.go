package crisis

import (
	"fmt"
	"math"

	"github.com/urbanhobbit/CIOGame04/metric"
	"github.com/urbanhobbit/CIOGame04/scenario"
)

// SelectSequence picks the crisis IDs for a run: the deduplicated
// selection (or the whole catalog when empty), shuffled and truncated to
// maxCrises.
func SelectSequence(cat *scenario.Catalog, selected []string, maxCrises int, rng RandomSource) ([]string, error) {
	if cat.Len() == 0 {
		return nil, ErrNoCrisisAvailable
	}

	var ids []string
	if len(selected) == 0 {
		ids = cat.IDs()
	} else {
		seen := make(map[string]bool, len(selected))
		ids = make([]string, 0, len(selected))
		for _, id := range selected {
			if seen[id] {
				continue
			}
			if !cat.Has(id) {
				return nil, &SelectionError{ID: id, Reason: "unknown scenario"}
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}

	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	if maxCrises > 0 && len(ids) > maxCrises {
		ids = ids[:maxCrises]
	}
	if len(ids) == 0 {
		return nil, ErrNoCrisisAvailable
	}
	return ids, nil
}

// LeadershipScore is the mean of security, freedom and public trust
// rounded to one decimal.
func LeadershipScore(v metric.Vector) float64 {
	return math.Round((v.Security+v.Freedom+v.PublicTrust)/3*10) / 10
}

type Style string

const (
	StyleSecurityFocused        Style = "security-focused"
	StyleFreedomFocused         Style = "freedom-focused"
	StyleTrustResilienceFocused Style = "trust-resilience-focused"
	StyleBalanced               Style = "balanced"
)

type StyleRule struct {
	Style Style
	Match func(v metric.Vector) bool
}

// StyleRules are evaluated in order; the first match wins. The last rule
// always matches.
var StyleRules = []StyleRule{
	{StyleSecurityFocused, func(v metric.Vector) bool { return v.Security > 75 && v.Freedom < 50 }},
	{StyleFreedomFocused, func(v metric.Vector) bool { return v.Freedom > 75 && v.Security < 50 }},
	{StyleTrustResilienceFocused, func(v metric.Vector) bool { return v.PublicTrust > 70 && v.Resilience > 60 }},
	{StyleBalanced, func(metric.Vector) bool { return true }},
}

func Classify(v metric.Vector) Style {
	for _, r := range StyleRules {
		if r.Match(v) {
			return r.Style
		}
	}
	return StyleBalanced
}

type TimelinePoint struct {
	Label   string        `json:"label"`
	Metrics metric.Vector `json:"metrics"`
}

type Summary struct {
	Score    float64         `json:"score"`
	Style    Style           `json:"style"`
	Final    metric.Vector   `json:"final"`
	Pool     metric.Pool     `json:"pool"`
	Timeline []TimelinePoint `json:"timeline"`
}

// Summarize builds the end-of-run report. history[0] is the run start and
// each later entry follows one resolved crisis.
func Summarize(final metric.Vector, pool metric.Pool, history []metric.Vector) Summary {
	s := Summary{
		Score:    LeadershipScore(final),
		Style:    Classify(final),
		Final:    final,
		Pool:     pool,
		Timeline: make([]TimelinePoint, 0, len(history)),
	}
	for i, v := range history {
		label := "start"
		if i > 0 {
			label = fmt.Sprintf("crisis %d", i)
		}
		s.Timeline = append(s.Timeline, TimelinePoint{Label: label, Metrics: v})
	}
	return s
}
