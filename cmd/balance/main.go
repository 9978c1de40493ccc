// Command balance plays many autopilot runs per persona and prints the
// score and style distribution, for tuning catalogs and game config.
//
//	balance -runs 500 -mode adult [-personas hawk,gambler] [-config file]
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/urbanhobbit/CIOGame04/crisis"
	"github.com/urbanhobbit/CIOGame04/crisis/autopilot"
	"github.com/urbanhobbit/CIOGame04/scenario"
)

type options struct {
	runs     int
	seed     int64
	mode     string
	config   string
	catalog  string
	personas string
}

func main() {
	var opts options
	flag.IntVar(&opts.runs, "runs", 200, "runs per persona")
	flag.Int64Var(&opts.seed, "seed", 1, "base seed; run i uses seed+i")
	flag.StringVar(&opts.mode, "mode", "adult", "scenario catalog: adult or kids")
	flag.StringVar(&opts.config, "config", "", "game config JSON file")
	flag.StringVar(&opts.catalog, "catalog", "", "catalog JSON file (default built-in)")
	flag.StringVar(&opts.personas, "personas", "", "comma separated persona IDs (default all)")
	flag.Parse()

	reports, err := simulate(opts)
	if err != nil {
		exitf("balance: %v", err)
	}
	if err := write(os.Stdout, reports); err != nil {
		exitf("balance: %v", err)
	}
}

// report aggregates the runs of one persona.
type report struct {
	Persona string
	Runs    int
	Mean    float64
	Min     float64
	Max     float64
	Styles  map[crisis.Style]int
	Skips   int
}

func simulate(opts options) ([]report, error) {
	if opts.runs <= 0 {
		return nil, fmt.Errorf("runs must be positive, got %d", opts.runs)
	}
	cfg := crisis.DefaultConfig()
	if opts.config != "" {
		var err error
		if cfg, err = crisis.LoadConfigFile(opts.config); err != nil {
			return nil, err
		}
	}
	cat, err := loadCatalog(opts)
	if err != nil {
		return nil, err
	}
	personas, err := selectPersonas(opts.personas)
	if err != nil {
		return nil, err
	}

	reports := make([]report, 0, len(personas))
	for _, p := range personas {
		r := report{Persona: p.ID, Min: math.Inf(1), Max: math.Inf(-1), Styles: make(map[crisis.Style]int)}
		var total float64
		for i := 0; i < opts.runs; i++ {
			runCfg := cfg
			runCfg.Seed = opts.seed + int64(i)
			g, err := crisis.NewGame(runCfg, cat)
			if err != nil {
				return nil, err
			}
			brain := &countingDecider{Decider: autopilot.NewRuleBrain(p, runCfg.Seed)}
			sum, err := autopilot.Play(g, brain, nil, false)
			if err != nil {
				return nil, fmt.Errorf("%s run %d: %w", p.ID, i, err)
			}
			total += sum.Score
			r.Min = math.Min(r.Min, sum.Score)
			r.Max = math.Max(r.Max, sum.Score)
			r.Styles[sum.Style]++
			r.Skips += brain.skips
		}
		r.Runs = opts.runs
		r.Mean = total / float64(opts.runs)
		reports = append(reports, r)
	}
	return reports, nil
}

type countingDecider struct {
	autopilot.Decider
	skips int
}

func (c *countingDecider) Decide(v autopilot.View) autopilot.Decision {
	d := c.Decider.Decide(v)
	if d.Skip {
		c.skips++
	}
	return d
}

func loadCatalog(opts options) (*scenario.Catalog, error) {
	if opts.catalog != "" {
		return scenario.LoadFromFile(opts.catalog)
	}
	mode, err := scenario.ParseMode(opts.mode)
	if err != nil {
		return nil, err
	}
	return scenario.Builtin(mode)
}

func selectPersonas(list string) ([]*autopilot.Persona, error) {
	reg, err := autopilot.BuiltinRegistry()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(list) == "" {
		return reg.All(), nil
	}
	var out []*autopilot.Persona
	for _, id := range strings.Split(list, ",") {
		p := reg.Get(strings.TrimSpace(id))
		if p == nil {
			return nil, fmt.Errorf("unknown persona %q", id)
		}
		out = append(out, p)
	}
	return out, nil
}

var styleColumns = []crisis.Style{
	crisis.StyleSecurityFocused,
	crisis.StyleFreedomFocused,
	crisis.StyleTrustResilienceFocused,
	crisis.StyleBalanced,
}

func write(w io.Writer, reports []report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprint(tw, "persona\truns\tmean\tmin\tmax\tskips")
	for _, s := range styleColumns {
		fmt.Fprintf(tw, "\t%s", s)
	}
	fmt.Fprintln(tw)
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.1f\t%.1f\t%s", r.Persona, humanize.Comma(int64(r.Runs)), r.Mean, r.Min, r.Max, humanize.Comma(int64(r.Skips)))
		for _, s := range styleColumns {
			fmt.Fprintf(tw, "\t%s", percent(r.Styles[s], r.Runs))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func percent(n, total int) string {
	if total == 0 {
		return "-"
	}
	return humanize.FtoaWithDigits(float64(n)*100/float64(total), 1) + "%"
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
