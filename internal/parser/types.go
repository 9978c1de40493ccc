package parser

import "github.com/urbanhobbit/CIOGame04/crisis"

type Verb string

const (
	VerbNone    Verb = ""
	VerbNext    Verb = "next"
	VerbStart   Verb = "start"
	VerbApply   Verb = "apply"
	VerbSkip    Verb = "skip"
	VerbRestart Verb = "restart"
	VerbMode    Verb = "mode"
	VerbStatus  Verb = "status"
	VerbNews    Verb = "news"
	VerbList    Verb = "list"
	VerbSuggest Verb = "suggest"
	VerbHelp    Verb = "help"
	VerbQuit    Verb = "quit"
)

type Intent struct {
	Raw        string
	Normalised string
	Verb       Verb

	// Args holds resolved arguments: the action ID for apply, scenario IDs
	// for start, the mode for mode.
	Args      []string
	Tutorial  bool
	Modifiers crisis.Modifiers

	Confidence float64
	Clarify    *ClarifyQuestion
}

type ClarifyQuestion struct {
	Prompt  string
	Options []string
}

// Context lists what the current screen can refer to.
type Context struct {
	ActionIDs   []string
	ScenarioIDs []string
}

type CommandDef struct {
	Verb    Verb
	Aliases []string
	MinArgs int
	MaxArgs int // 0 = unlimited, -1 = none
}
