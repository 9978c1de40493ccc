package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Catalog maps scenario IDs to scenarios. It is read-only after load.
type Catalog struct {
	Mode Mode

	// Texts shown in place of the scenario's own when a turn is skipped.
	SkipImmediateText string
	SkipDelayedText   string

	ids  []string
	byID map[string]*Scenario
}

type catalogDoc struct {
	Mode              Mode                   `json:"mode"`
	SkipImmediateText string                 `json:"skip_immediate_text"`
	SkipDelayedText   string                 `json:"skip_delayed_text"`
	Scenarios         map[string]scenarioDoc `json:"scenarios"`
}

type scenarioDoc struct {
	Title         string       `json:"title"`
	Icon          string       `json:"icon"`
	Story         string       `json:"story"`
	Advisors      []Advisor    `json:"advisors"`
	ActionCards   []ActionCard `json:"action_cards"`
	ImmediateText string       `json:"immediate_text"`
	DelayedText   string       `json:"delayed_text"`
}

// NewCatalog builds a catalog from already-parsed scenarios. IDs keep the
// order given.
func NewCatalog(mode Mode, scenarios []Scenario) (*Catalog, error) {
	c := &Catalog{
		Mode: mode,
		ids:  make([]string, 0, len(scenarios)),
		byID: make(map[string]*Scenario, len(scenarios)),
	}
	for i := range scenarios {
		s := scenarios[i]
		if err := s.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate scenario %s", s.ID)
		}
		c.ids = append(c.ids, s.ID)
		c.byID[s.ID] = &s
	}
	return c, nil
}

// LoadFromJSON parses a catalog document. Scenario IDs are ordered
// lexically so that a seeded shuffle is reproducible.
func LoadFromJSON(data []byte) (*Catalog, error) {
	var doc catalogDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog JSON: %w", err)
	}
	mode, err := ParseMode(string(doc.Mode))
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(doc.Scenarios))
	for id := range doc.Scenarios {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	scenarios := make([]Scenario, 0, len(ids))
	for _, id := range ids {
		sd := doc.Scenarios[id]
		situation, mission := SplitStory(sd.Story)
		scenarios = append(scenarios, Scenario{
			ID:            id,
			Title:         sd.Title,
			Icon:          sd.Icon,
			Situation:     situation,
			Mission:       mission,
			ImmediateText: sd.ImmediateText,
			DelayedText:   sd.DelayedText,
			Advisors:      sd.Advisors,
			Actions:       sd.ActionCards,
		})
	}

	c, err := NewCatalog(mode, scenarios)
	if err != nil {
		return nil, err
	}
	c.SkipImmediateText = doc.SkipImmediateText
	c.SkipDelayedText = doc.SkipDelayedText
	return c, nil
}

func LoadFromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return LoadFromJSON(data)
}

// LoadDir loads every *.json catalog in dir, keyed by mode.
func LoadDir(dir string) (map[Mode]*Catalog, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	out := make(map[Mode]*Catalog, len(paths))
	for _, p := range paths {
		c, err := LoadFromFile(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		if _, dup := out[c.Mode]; dup {
			return nil, fmt.Errorf("%s: mode %s already loaded", filepath.Base(p), c.Mode)
		}
		out[c.Mode] = c
	}
	return out, nil
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.ids)
}

// IDs returns a copy of the scenario IDs in catalog order.
func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.ids...)
}

func (c *Catalog) Get(id string) (*Scenario, bool) {
	if c == nil {
		return nil, false
	}
	s, ok := c.byID[id]
	return s, ok
}

func (c *Catalog) Has(id string) bool {
	_, ok := c.Get(id)
	return ok
}
