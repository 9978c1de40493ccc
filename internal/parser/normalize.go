package parser

import (
	"regexp"
	"strings"
)

var multiSpaceRE = regexp.MustCompile(`\s+`)

func normaliseInput(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ""
	}
	var b strings.Builder
	lastSpace := false
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if r == ' ' || r == '\t' || r == '-' || r == ',' || r == '/' || r == '+' {
			if !lastSpace {
				b.WriteByte(' ')
			}
			lastSpace = true
		}
	}
	return strings.TrimSpace(multiSpaceRE.ReplaceAllString(b.String(), " "))
}

func tokenise(normalised string) []string {
	if strings.TrimSpace(normalised) == "" {
		return nil
	}
	return strings.Fields(normalised)
}

// modifierWords maps every accepted spelling to a canonical modifier.
var modifierWords = map[string]string{
	"targeted":     "targeted",
	"target":       "targeted",
	"local":        "targeted",
	"general":      "general",
	"broad":        "general",
	"nationwide":   "general",
	"short":        "short",
	"medium":       "medium",
	"mid":          "medium",
	"long":         "long",
	"transparency": "transparency",
	"transparent":  "transparency",
	"appeal":       "appeal",
	"appeals":      "appeal",
	"sunset":       "sunset",
}

var modeWords = map[string]string{
	"adult":    "adult",
	"adults":   "adult",
	"parent":   "adult",
	"grown":    "adult",
	"kids":     "kids",
	"kid":      "kids",
	"child":    "kids",
	"children": "kids",
}

func isTutorialWord(token string) bool {
	switch token {
	case "tutorial", "tut", "training", "learn":
		return true
	default:
		return false
	}
}
