package parser

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

type commandPhrase struct {
	verb   Verb
	alias  string
	tokens []string
}

type Registry struct {
	commands map[Verb]CommandDef
	phrases  []commandPhrase
}

func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[Verb]CommandDef),
	}
}

func (r *Registry) RegisterCommand(c CommandDef) {
	if c.Verb == VerbNone {
		return
	}
	r.commands[c.Verb] = c

	canonical := string(c.Verb)
	r.phrases = append(r.phrases, commandPhrase{verb: c.Verb, alias: canonical, tokens: tokenise(canonical)})
	for _, a := range c.Aliases {
		n := normaliseInput(a)
		if n == "" {
			continue
		}
		r.phrases = append(r.phrases, commandPhrase{verb: c.Verb, alias: n, tokens: tokenise(n)})
	}
}

func (r *Registry) command(v Verb) (CommandDef, bool) {
	cmd, ok := r.commands[v]
	return cmd, ok
}

type commandCandidate struct {
	Verb     Verb
	Consumed int
	Score    float64
	Source   string
}

func (r *Registry) matchCommand(tokens []string) (commandCandidate, []commandCandidate) {
	if len(tokens) == 0 {
		return commandCandidate{}, nil
	}
	cands := make([]commandCandidate, 0, len(r.phrases))
	for _, phrase := range r.phrases {
		if len(phrase.tokens) == 0 || len(tokens) < len(phrase.tokens) {
			continue
		}
		n := len(phrase.tokens)
		prefix := strings.Join(tokens[:n], " ")

		if prefix == phrase.alias {
			score, source := 1.0, "exact"
			if phrase.alias != string(phrase.verb) {
				score, source = 0.97, "alias"
			}
			cands = append(cands, commandCandidate{Verb: phrase.verb, Consumed: n, Score: score, Source: source})
			continue
		}

		if n == 1 && len(tokens[0]) >= 3 && strings.HasPrefix(phrase.alias, tokens[0]) {
			cands = append(cands, commandCandidate{Verb: phrase.verb, Consumed: 1, Score: 0.9, Source: "prefix"})
			continue
		}

		if len(prefix) < 3 {
			continue
		}
		dist := levenshtein.ComputeDistance(prefix, phrase.alias)
		if dist > levenshteinLimit(len(phrase.alias)) {
			continue
		}
		cands = append(cands, commandCandidate{
			Verb:     phrase.verb,
			Consumed: n,
			Score:    0.72 - 0.08*float64(dist),
			Source:   "lev",
		})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score == cands[j].Score {
			if cands[i].Consumed == cands[j].Consumed {
				return cands[i].Verb < cands[j].Verb
			}
			return cands[i].Consumed > cands[j].Consumed
		}
		return cands[i].Score > cands[j].Score
	})
	if len(cands) == 0 {
		return commandCandidate{}, nil
	}

	best := cands[0]
	alts := make([]commandCandidate, 0, 3)
	seen := map[Verb]bool{best.Verb: true}
	for _, c := range cands[1:] {
		if seen[c.Verb] {
			continue
		}
		seen[c.Verb] = true
		alts = append(alts, c)
		if len(alts) >= 3 {
			break
		}
	}
	return best, alts
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

// closest returns the candidate nearest to token within the length-based
// edit limit, and whether two candidates tie for it.
func closest(token string, candidates []string) (string, int, bool) {
	best, bestDist, tie := "", -1, false
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(token, strings.ToLower(c))
		if d > levenshteinLimit(len(c)) {
			continue
		}
		switch {
		case bestDist < 0 || d < bestDist:
			best, bestDist, tie = c, d, false
		case d == bestDist && c != best:
			tie = true
		}
	}
	return best, bestDist, tie
}

func DefaultRegistry() *Registry {
	r := NewRegistry()
	commands := []CommandDef{
		{Verb: VerbNext, Aliases: []string{"n", "continue", "ok", "go on", "proceed"}},
		{Verb: VerbStart, Aliases: []string{"begin", "new run", "play"}},
		{Verb: VerbApply, Aliases: []string{"choose", "pick", "act", "select"}, MinArgs: 1},
		{Verb: VerbSkip, Aliases: []string{"pass", "wait", "do nothing"}, MaxArgs: -1},
		{Verb: VerbRestart, Aliases: []string{"reset", "new game"}, MaxArgs: -1},
		{Verb: VerbMode, Aliases: []string{"switch mode", "switch"}, MinArgs: 1, MaxArgs: 1},
		{Verb: VerbStatus, Aliases: []string{"stats", "metrics", "s"}, MaxArgs: -1},
		{Verb: VerbNews, Aliases: []string{"headlines"}, MaxArgs: -1},
		{Verb: VerbList, Aliases: []string{"ls", "scenarios", "crises"}, MaxArgs: -1},
		{Verb: VerbSuggest, Aliases: []string{"hint", "advise", "autopilot"}},
		{Verb: VerbHelp, Aliases: []string{"h", "commands"}, MaxArgs: -1},
		{Verb: VerbQuit, Aliases: []string{"q", "exit", "bye"}, MaxArgs: -1},
	}
	for _, c := range commands {
		r.RegisterCommand(c)
	}
	return r
}
