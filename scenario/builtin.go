package scenario

import (
	"embed"
	"fmt"
)

//go:embed data/*.json
var builtinFS embed.FS

// Builtin returns the catalog shipped with the binary for mode.
func Builtin(mode Mode) (*Catalog, error) {
	data, err := builtinFS.ReadFile("data/" + string(mode) + ".json")
	if err != nil {
		return nil, fmt.Errorf("no built-in catalog for mode %q", mode)
	}
	return LoadFromJSON(data)
}

// BuiltinAll loads every shipped catalog.
func BuiltinAll() (map[Mode]*Catalog, error) {
	out := make(map[Mode]*Catalog, 2)
	for _, m := range []Mode{ModeAdult, ModeKids} {
		c, err := Builtin(m)
		if err != nil {
			return nil, err
		}
		out[m] = c
	}
	return out, nil
}
