// Command crisis plays crisis-management runs in the terminal.
//
//	crisis [-mode kids] [-seed 42] [-tutorial] [-catalog dir] [-config file]
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urbanhobbit/CIOGame04/crisis"
	"github.com/urbanhobbit/CIOGame04/crisis/autopilot"
	"github.com/urbanhobbit/CIOGame04/internal/parser"
	"github.com/urbanhobbit/CIOGame04/scenario"
)

type options struct {
	seed     int64
	mode     string
	catalog  string
	config   string
	persona  string
	tutorial bool
}

func main() {
	var opts options
	flag.Int64Var(&opts.seed, "seed", 0, "random seed (0 = time based)")
	flag.StringVar(&opts.mode, "mode", "adult", "scenario catalog: adult or kids")
	flag.StringVar(&opts.catalog, "catalog", "", "directory of catalog JSON files (default built-in)")
	flag.StringVar(&opts.config, "config", "", "game config JSON file")
	flag.StringVar(&opts.persona, "persona", "technocrat", "autopilot persona used by suggest")
	flag.BoolVar(&opts.tutorial, "tutorial", false, "show the tutorial before the first crisis")
	flag.Parse()

	if err := run(opts, os.Stdin, os.Stdout); err != nil {
		exitf("crisis: %v", err)
	}
}

func run(opts options, in io.Reader, out io.Writer) error {
	s, err := newSession(opts, out)
	if err != nil {
		return err
	}
	return s.loop(in)
}

type session struct {
	game     *crisis.Game
	catalogs map[scenario.Mode]*scenario.Catalog
	parser   *parser.Parser
	advisor  autopilot.Decider
	tutorial bool
	out      io.Writer
}

func newSession(opts options, out io.Writer) (*session, error) {
	cfg := crisis.DefaultConfig()
	if opts.config != "" {
		var err error
		if cfg, err = crisis.LoadConfigFile(opts.config); err != nil {
			return nil, err
		}
	}
	if opts.seed != 0 {
		cfg.Seed = opts.seed
	}

	var (
		catalogs map[scenario.Mode]*scenario.Catalog
		err      error
	)
	if opts.catalog != "" {
		catalogs, err = scenario.LoadDir(opts.catalog)
	} else {
		catalogs, err = scenario.BuiltinAll()
	}
	if err != nil {
		return nil, err
	}
	mode, err := scenario.ParseMode(opts.mode)
	if err != nil {
		return nil, err
	}
	cat, ok := catalogs[mode]
	if !ok {
		return nil, fmt.Errorf("no %s catalog loaded", mode)
	}
	game, err := crisis.NewGame(cfg, cat)
	if err != nil {
		return nil, err
	}

	personas, err := autopilot.BuiltinRegistry()
	if err != nil {
		return nil, err
	}
	persona := personas.Get(opts.persona)
	if persona == nil {
		return nil, fmt.Errorf("unknown persona %q", opts.persona)
	}

	return &session{
		game:     game,
		catalogs: catalogs,
		parser:   parser.New(),
		advisor:  autopilot.NewRuleBrain(persona, cfg.Seed),
		tutorial: opts.tutorial,
		out:      out,
	}, nil
}

func (s *session) loop(in io.Reader) error {
	sc := bufio.NewScanner(in)
	s.render(s.game.Snapshot())
	for {
		fmt.Fprint(s.out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(s.out)
			return sc.Err()
		}
		quit, err := s.handle(sc.Text())
		if err != nil {
			fmt.Fprintf(s.out, "! %v\n", err)
			continue
		}
		if quit {
			return nil
		}
	}
}

func (s *session) context(snap crisis.Snapshot) parser.Context {
	ctx := parser.Context{ScenarioIDs: s.game.Catalog().IDs()}
	for _, a := range snap.Affordable {
		ctx.ActionIDs = append(ctx.ActionIDs, a.ID)
	}
	return ctx
}

// handle runs one line of input and reports whether the player quit.
func (s *session) handle(line string) (bool, error) {
	snap := s.game.Snapshot()
	intent := s.parser.Parse(s.context(snap), line)
	if intent.Clarify != nil {
		fmt.Fprintln(s.out, intent.Clarify.Prompt)
		if len(intent.Clarify.Options) > 0 {
			fmt.Fprintf(s.out, "  options: %s\n", strings.Join(intent.Clarify.Options, ", "))
		}
		return false, nil
	}

	switch intent.Verb {
	case parser.VerbQuit:
		return true, nil
	case parser.VerbHelp:
		fmt.Fprint(s.out, helpText)
		return false, nil
	case parser.VerbStatus:
		s.renderStatus(snap)
		return false, nil
	case parser.VerbNews:
		s.renderNews(snap)
		return false, nil
	case parser.VerbList:
		s.renderCatalog()
		return false, nil
	case parser.VerbSuggest:
		if snap.Phase != crisis.PhaseDecision {
			return false, fmt.Errorf("suggestions are available while deciding")
		}
		dec := s.advisor.Decide(autopilot.NewView(snap, s.game.Config().Balance))
		fmt.Fprintf(s.out, "%s suggests: %s\n", s.advisor.Name(), describeDecision(dec))
		return false, nil
	case parser.VerbNext:
		if snap.Phase == crisis.PhaseStart {
			if err := s.game.StartRun(nil, s.tutorial); err != nil {
				return false, err
			}
			break
		}
		if _, err := s.game.Advance(snap.Phase); err != nil {
			return false, err
		}
	case parser.VerbStart:
		if err := s.game.StartRun(intent.Args, intent.Tutorial || s.tutorial); err != nil {
			return false, err
		}
	case parser.VerbApply:
		if _, err := s.game.ApplyAction(intent.Args[0], intent.Modifiers); err != nil {
			return false, err
		}
	case parser.VerbSkip:
		if _, err := s.game.SkipTurn(); err != nil {
			return false, err
		}
	case parser.VerbRestart:
		s.game.Restart()
	case parser.VerbMode:
		cat, ok := s.catalogs[scenario.Mode(intent.Args[0])]
		if !ok {
			return false, fmt.Errorf("no %s catalog loaded", intent.Args[0])
		}
		if err := s.game.SwitchCatalog(cat); err != nil {
			return false, err
		}
	default:
		return false, fmt.Errorf("nothing to do for %q", line)
	}
	s.render(s.game.Snapshot())
	return false, nil
}

func describeDecision(dec autopilot.Decision) string {
	if dec.Skip {
		return "skip"
	}
	parts := []string{"apply", dec.ActionID}
	if dec.Modifiers.Scope != "" {
		parts = append(parts, string(dec.Modifiers.Scope))
	}
	if dec.Modifiers.Duration != "" {
		parts = append(parts, string(dec.Modifiers.Duration))
	}
	for _, sg := range dec.Modifiers.Safeguards {
		parts = append(parts, string(sg))
	}
	return strings.Join(parts, " ")
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

const helpText = `Commands:
  next (or enter)          continue to the next screen
  start [tutorial] [ids]   begin a run, optionally with chosen crises
  apply <id> [modifiers]   take an action; modifiers: targeted|general,
                           short|medium|long, transparency, appeal, sunset
  skip                     do nothing this crisis
  suggest                  ask the autopilot advisor
  status, news, list       show metrics, headlines or the catalog
  mode <adult|kids>        switch catalog and restart
  restart, quit
`
