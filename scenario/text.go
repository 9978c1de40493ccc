package scenario

import "strings"

// MissionMarkers separate the situation report from the mission inside an
// authored story block.
var MissionMarkers = []string{"**Mission**:", "**Görev**:"}

// SplitStory returns the situation and mission parts of story. Without a
// marker the whole text is the situation.
func SplitStory(story string) (situation, mission string) {
	for _, marker := range MissionMarkers {
		if idx := strings.Index(story, marker); idx >= 0 {
			return strings.TrimSpace(story[:idx]), strings.TrimSpace(story[idx+len(marker):])
		}
	}
	return strings.TrimSpace(story), ""
}

// Interpolate replaces the first {} placeholder in template with value.
func Interpolate(template, value string) string {
	return strings.Replace(template, "{}", value, 1)
}
