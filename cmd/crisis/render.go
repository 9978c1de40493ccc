package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/urbanhobbit/CIOGame04/crisis"
	"github.com/urbanhobbit/CIOGame04/metric"
	"github.com/urbanhobbit/CIOGame04/scenario"
)

var metricLabels = [5]string{"Security", "Freedom", "Public trust", "Resilience", "Fatigue"}

func (s *session) render(snap crisis.Snapshot) {
	sc := s.current(snap)
	switch snap.Phase {
	case crisis.PhaseStart:
		fmt.Fprintf(s.out, "\n== Crisis management (%s mode, %d scenarios) ==\n", snap.Mode, s.game.Catalog().Len())
		s.renderNews(snap)
		fmt.Fprintln(s.out, "Type start, start tutorial, or help.")
	case crisis.PhaseTutorial:
		fmt.Fprint(s.out, tutorialText)
	case crisis.PhaseStory:
		if sc == nil {
			return
		}
		fmt.Fprintf(s.out, "\n== Crisis %d/%d: %s %s ==\n%s\n", snap.CrisisIndex+1, snap.CrisisTotal, sc.Icon, sc.Title, sc.Situation)
		if sc.Mission != "" {
			fmt.Fprintf(s.out, "\nMission: %s\n", sc.Mission)
		}
	case crisis.PhaseAdvisors:
		if sc == nil {
			return
		}
		fmt.Fprintln(s.out, "\nYour advisors say:")
		for _, a := range sc.Advisors {
			fmt.Fprintf(s.out, "  %s: %s\n", a.Name, a.Text)
		}
	case crisis.PhaseDecision:
		s.renderStatus(snap)
		s.renderActions(snap)
	case crisis.PhaseImmediate:
		if snap.Outcome != nil {
			fmt.Fprintf(s.out, "\nImmediately: %s\n", snap.Outcome.ImmediateText)
		}
	case crisis.PhaseDelayed:
		if snap.Outcome != nil {
			fmt.Fprintf(s.out, "\nWeeks later: %s\n", snap.Outcome.DelayedText)
		}
	case crisis.PhaseReport:
		s.renderReport(snap)
	case crisis.PhaseEnd:
		s.renderSummary(snap)
	}
}

func (s *session) current(snap crisis.Snapshot) *scenario.Scenario {
	if snap.ScenarioID == "" {
		return nil
	}
	sc, _ := s.game.Catalog().Get(snap.ScenarioID)
	return sc
}

func (s *session) renderStatus(snap crisis.Snapshot) {
	fmt.Fprintln(s.out)
	for i, v := range snap.Metrics.Fields() {
		fmt.Fprintf(s.out, "  %-13s %5s %s\n", metricLabels[i], humanize.FtoaWithDigits(v, 1), bar(v))
	}
	fmt.Fprintf(s.out, "  Budget %s, HR %s\n", formatResource(snap.Pool.Budget), formatResource(snap.Pool.HR))
}

func (s *session) renderActions(snap crisis.Snapshot) {
	sc := s.current(snap)
	if sc == nil {
		return
	}
	fmt.Fprintln(s.out, "\nActions you can afford:")
	if len(snap.Affordable) == 0 {
		fmt.Fprintln(s.out, "  none. You can only skip.")
	}
	for _, a := range snap.Affordable {
		fmt.Fprintf(s.out, "  [%s] %s: %s\n      cost %s budget, %s HR, %s\n",
			a.ID, a.Name, a.Description, formatResource(a.Cost), formatResource(a.HRCost), a.Speed)
	}
	if n := len(sc.Actions) - len(snap.Affordable); n > 0 {
		fmt.Fprintf(s.out, "  (%s too expensive)\n", pluralActions(n))
	}
	fmt.Fprintln(s.out, "apply <id> [targeted|general] [short|medium|long] [transparency appeal sunset], or skip")
}

func (s *session) renderReport(snap crisis.Snapshot) {
	o := snap.Outcome
	if o == nil {
		return
	}
	fmt.Fprintln(s.out, "\nReport:")
	before, after := o.Before.Fields(), o.After.Fields()
	for i := range before {
		fmt.Fprintf(s.out, "  %-13s %5s -> %5s (%+.1f)\n", metricLabels[i],
			humanize.FtoaWithDigits(before[i], 1), humanize.FtoaWithDigits(after[i], 1), after[i]-before[i])
	}
	if o.CounterFactual != "" {
		fmt.Fprintf(s.out, "What if: %s\n", o.CounterFactual)
	}
	s.renderNews(snap)
}

func (s *session) renderSummary(snap crisis.Snapshot) {
	sum := snap.Summary
	if sum == nil {
		return
	}
	fmt.Fprintf(s.out, "\n== Run over ==\nLeadership score %s, style %s\n", humanize.FtoaWithDigits(sum.Score, 1), sum.Style)
	for _, p := range sum.Timeline {
		fmt.Fprintf(s.out, "  %-9s %s\n", p.Label, p.Metrics)
	}
	fmt.Fprintf(s.out, "Resources left: budget %s, HR %s\n", formatResource(sum.Pool.Budget), formatResource(sum.Pool.HR))
	fmt.Fprintln(s.out, "Type restart to play again, or quit.")
}

func (s *session) renderNews(snap crisis.Snapshot) {
	if len(snap.News) == 0 {
		return
	}
	fmt.Fprintln(s.out, "News:")
	for _, n := range snap.News {
		fmt.Fprintf(s.out, "  * %s\n", n.Headline())
	}
}

func (s *session) renderCatalog() {
	cat := s.game.Catalog()
	fmt.Fprintf(s.out, "%s catalog:\n", cat.Mode)
	for _, id := range cat.IDs() {
		sc, _ := cat.Get(id)
		fmt.Fprintf(s.out, "  %-16s %s %s\n", id, sc.Icon, sc.Title)
	}
}

func formatResource(v float64) string {
	return humanize.Commaf(v)
}

func pluralActions(n int) string {
	if n == 1 {
		return "1 action"
	}
	return fmt.Sprintf("%d actions", n)
}

func bar(v float64) string {
	n := int(metric.Clamp(v) / 10)
	return "[" + strings.Repeat("#", n) + strings.Repeat(".", 10-n) + "]"
}

const tutorialText = `
How to play:
  Each crisis shows a situation, then advice, then a choice of actions.
  Actions cost budget and HR. Strong measures raise security but may cost
  freedom and public trust. Targeted scope and short duration limit the
  damage; transparency, appeal and sunset safeguards soften it further.
  Skipping is free but lets the crisis hurt security and resilience.
  Your leadership score is the average of security, freedom and trust.
`
