package crisis

import (
	"fmt"

	"github.com/urbanhobbit/CIOGame04/scenario"
)

// MaxNews is the length of the rolling news log.
const MaxNews = 5

// Flag is a narrative event raised by a resolution or a run reset.
type Flag byte

const (
	FlagNone               Flag = 0
	FlagSecurityImproved   Flag = 1
	FlagFreedomControversy Flag = 2
	FlagTransparencyStep   Flag = 3
	FlagResourceShortage   Flag = 4
	FlagRunStarted         Flag = 5
	FlagRunRestarted       Flag = 6
	FlagModeSwitched       Flag = 7
)

var FlagDictionary = map[Flag]string{
	FlagNone:               "none",
	FlagSecurityImproved:   "security_improved",
	FlagFreedomControversy: "freedom_controversy",
	FlagTransparencyStep:   "transparency_step",
	FlagResourceShortage:   "resource_shortage",
	FlagRunStarted:         "run_started",
	FlagRunRestarted:       "run_restarted",
	FlagModeSwitched:       "mode_switched",
}

func (f Flag) String() string {
	if s, ok := FlagDictionary[f]; ok {
		return s
	}
	return fmt.Sprintf("flag(%d)", byte(f))
}

func (f Flag) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Flag) UnmarshalText(b []byte) error {
	for k, v := range FlagDictionary {
		if v == string(b) {
			*f = k
			return nil
		}
	}
	return fmt.Errorf("unknown flag %q", b)
}

// DefaultHeadlines are English renderings of each flag. A {} placeholder is
// replaced with the item's subject.
var DefaultHeadlines = map[Flag]string{
	FlagSecurityImproved:   "SECURITY UP: threat level fell after '{}'.",
	FlagFreedomControversy: "FREEDOM DEBATE: new restrictions drew criticism from civil society.",
	FlagTransparencyStep:   "TRANSPARENCY: the government published a detailed report on its measures.",
	FlagResourceShortage:   "RESOURCES EXHAUSTED: the government could not respond to the crisis.",
	FlagRunStarted:         "Game started. The country is stable.",
	FlagRunRestarted:       "Game restarted. The country is stable.",
	FlagModeSwitched:       "Game restarted in {} mode. The country is stable.",
}

// NewsItem is one entry of the news log.
type NewsItem struct {
	Flag    Flag   `json:"flag"`
	Subject string `json:"subject,omitempty"`
}

func (n NewsItem) Headline() string {
	return n.Render(DefaultHeadlines)
}

// Render formats the item with a caller supplied headline table.
func (n NewsItem) Render(headlines map[Flag]string) string {
	tpl, ok := headlines[n.Flag]
	if !ok {
		return n.Flag.String()
	}
	return scenario.Interpolate(tpl, n.Subject)
}

// pushNews prepends item and keeps the most recent MaxNews entries.
func pushNews(log []NewsItem, item NewsItem) []NewsItem {
	next := make([]NewsItem, 0, MaxNews)
	next = append(next, item)
	next = append(next, log...)
	if len(next) > MaxNews {
		next = next[:MaxNews]
	}
	return next
}
