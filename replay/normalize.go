package replay

import (
	"fmt"
	"strings"

	"github.com/urbanhobbit/CIOGame04/crisis"
	"github.com/urbanhobbit/CIOGame04/scenario"
)

const (
	commandAdvance    = "advance"
	commandApply      = "apply"
	commandSkip       = "skip"
	commandRestart    = "restart"
	commandSwitchMode = "switch_mode"
)

type normalizedStep struct {
	command  string
	phase    crisis.Phase
	actionID string
	mods     crisis.Modifiers
	mode     scenario.Mode
}

type normalizedSpec struct {
	mode     scenario.Mode
	selected []string
	tutorial bool
	steps    []normalizedStep
	cfg      crisis.Config
}

func normalizeSpec(spec RunSpec) (normalizedSpec, error) {
	var out normalizedSpec

	mode, err := scenario.ParseMode(strings.ToLower(spec.Mode))
	if err != nil {
		return out, &ReplayError{StepIndex: -1, Reason: "invalid_mode", Message: err.Error()}
	}
	out.mode = mode
	out.selected = append([]string(nil), spec.Selected...)
	out.tutorial = spec.Tutorial

	out.cfg = crisis.DefaultConfig()
	out.cfg.Seed = seedFromSpec(spec.RNG)
	if in := spec.Initial; in != nil {
		if in.Budget != nil {
			out.cfg.Initial.Budget = *in.Budget
		}
		if in.HR != nil {
			out.cfg.Initial.HR = *in.HR
		}
		if in.MaxCrises != 0 {
			out.cfg.Initial.MaxCrises = in.MaxCrises
		}
	}

	out.steps = make([]normalizedStep, 0, len(spec.Steps))
	for i, st := range spec.Steps {
		ns, err := normalizeStep(st)
		if err != nil {
			return out, &ReplayError{StepIndex: int32(i), Reason: "invalid_step", Message: err.Error()}
		}
		out.steps = append(out.steps, ns)
	}
	return out, nil
}

func normalizeStep(st StepSpec) (normalizedStep, error) {
	ns := normalizedStep{command: strings.ToLower(strings.TrimSpace(st.Command))}
	switch ns.command {
	case commandAdvance:
		if st.Phase == "" {
			return ns, fmt.Errorf("advance requires a phase")
		}
		p, err := crisis.ParsePhase(strings.ToLower(st.Phase))
		if err != nil {
			return ns, err
		}
		ns.phase = p
	case commandApply:
		if st.ActionID == "" {
			return ns, fmt.Errorf("apply requires an action_id")
		}
		ns.actionID = strings.ToUpper(st.ActionID)
		ns.mods = crisis.Modifiers{
			Scope:    crisis.Scope(strings.ToLower(st.Scope)),
			Duration: crisis.Duration(strings.ToLower(st.Duration)),
		}
		for _, s := range st.Safeguards {
			ns.mods.Safeguards = append(ns.mods.Safeguards, crisis.Safeguard(strings.ToLower(s)))
		}
	case commandSkip, commandRestart:
	case commandSwitchMode:
		m, err := scenario.ParseMode(strings.ToLower(st.Mode))
		if err != nil {
			return ns, err
		}
		ns.mode = m
	default:
		return ns, fmt.Errorf("unknown command %q", st.Command)
	}
	return ns, nil
}

func seedFromSpec(rng *RNGSpec) int64 {
	if rng == nil || rng.Seed == 0 {
		return 1
	}
	return rng.Seed
}
