package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/urbanhobbit/CIOGame04/crisis"
)

var fillerWords = map[string]bool{
	"with": true, "and": true, "for": true, "a": true, "the": true,
	"scope": true, "duration": true, "safeguard": true, "safeguards": true,
	"action": true, "card": true, "run": true, "mode": true, "term": true,
	"to": true, "in": true, "on": true,
}

var modifierVocab = sortedKeys(modifierWords)
var modeVocab = sortedKeys(modeWords)

type Parser struct {
	registry *Registry
}

func New() *Parser {
	return &Parser{registry: DefaultRegistry()}
}

func (p *Parser) RegisterCommand(c CommandDef) {
	p.registry.RegisterCommand(c)
}

// Parse maps a line of player input to an Intent. An empty line means
// "next".
func (p *Parser) Parse(ctx Context, raw string) Intent {
	intent := Intent{
		Raw:        raw,
		Normalised: normaliseInput(raw),
	}
	if intent.Normalised == "" {
		intent.Verb = VerbNext
		intent.Confidence = 1
		return intent
	}

	tokens := tokenise(intent.Normalised)
	match, alternates := p.registry.matchCommand(tokens)
	if match.Verb == VerbNone || match.Score < 0.5 {
		intent.Clarify = &ClarifyQuestion{
			Prompt: "I couldn't map that to a command. Try help, next, apply, skip, status or quit.",
		}
		return intent
	}
	if match.Score < 0.97 && len(alternates) > 0 && match.Score-alternates[0].Score < 0.05 && alternates[0].Score > 0.65 {
		intent.Clarify = &ClarifyQuestion{
			Prompt:  "Did you mean:",
			Options: []string{string(match.Verb), string(alternates[0].Verb)},
		}
		return intent
	}

	intent.Verb = match.Verb
	intent.Confidence = match.Score
	args := tokens[match.Consumed:]
	def, _ := p.registry.command(intent.Verb)

	switch intent.Verb {
	case VerbApply:
		p.resolveApply(ctx, args, &intent)
	case VerbStart:
		resolveStart(ctx, args, &intent)
	case VerbMode:
		resolveMode(args, &intent)
	default:
		if def.MaxArgs < 0 && len(args) > 0 {
			intent.Confidence -= 0.1
		}
	}
	if intent.Clarify == nil && len(intent.Args) < def.MinArgs {
		intent.Clarify = &ClarifyQuestion{Prompt: fmt.Sprintf("%s needs at least %d argument(s).", def.Verb, def.MinArgs)}
	}
	return intent
}

func (p *Parser) resolveApply(ctx Context, args []string, intent *Intent) {
	if len(args) == 0 {
		intent.Clarify = &ClarifyQuestion{Prompt: "Which action?", Options: ctx.ActionIDs}
		return
	}
	id := ""
	for _, a := range ctx.ActionIDs {
		if strings.EqualFold(a, args[0]) {
			id = a
			break
		}
	}
	if id == "" {
		intent.Clarify = &ClarifyQuestion{
			Prompt:  fmt.Sprintf("There is no action %q here. Which action?", args[0]),
			Options: ctx.ActionIDs,
		}
		return
	}
	intent.Args = []string{id}

	var mods crisis.Modifiers
	for _, tok := range args[1:] {
		if fillerWords[tok] {
			continue
		}
		word, ok := modifierWords[tok]
		if !ok {
			near, _, tie := closest(tok, modifierVocab)
			if near == "" || tie {
				intent.Clarify = &ClarifyQuestion{
					Prompt:  fmt.Sprintf("Unknown modifier %q.", tok),
					Options: []string{"targeted", "general", "short", "medium", "long", "transparency", "appeal", "sunset"},
				}
				return
			}
			word = modifierWords[near]
			intent.Confidence -= 0.05
		}
		switch word {
		case "targeted", "general":
			mods.Scope = crisis.Scope(word)
		case "short", "medium", "long":
			mods.Duration = crisis.Duration(word)
		default:
			mods.Safeguards = append(mods.Safeguards, crisis.Safeguard(word))
		}
	}
	intent.Modifiers = mods
}

func resolveStart(ctx Context, args []string, intent *Intent) {
	for _, tok := range args {
		if fillerWords[tok] {
			continue
		}
		if isTutorialWord(tok) {
			intent.Tutorial = true
			continue
		}
		id := ""
		for _, s := range ctx.ScenarioIDs {
			if strings.EqualFold(s, tok) {
				id = s
				break
			}
		}
		if id == "" {
			near, _, tie := closest(tok, ctx.ScenarioIDs)
			if near == "" || tie {
				intent.Clarify = &ClarifyQuestion{
					Prompt:  fmt.Sprintf("Unknown scenario %q.", tok),
					Options: ctx.ScenarioIDs,
				}
				return
			}
			id = near
			intent.Confidence -= 0.05
		}
		intent.Args = append(intent.Args, id)
	}
}

func resolveMode(args []string, intent *Intent) {
	for _, tok := range args {
		if fillerWords[tok] {
			continue
		}
		mode, ok := modeWords[tok]
		if !ok {
			near, _, tie := closest(tok, modeVocab)
			if near == "" || tie {
				break
			}
			mode = modeWords[near]
		}
		intent.Args = []string{mode}
		return
	}
	intent.Clarify = &ClarifyQuestion{Prompt: "Which mode?", Options: []string{"adult", "kids"}}
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
