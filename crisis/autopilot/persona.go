package autopilot

// Profile holds the tunable leanings of a RuleBrain. All values are in
// [0, 1].
type Profile struct {
	Hawkishness float64 `json:"hawkishness"`  // weight on security gains
	LibertyBias float64 `json:"liberty_bias"` // weight on freedom
	Caution     float64 `json:"caution"`      // aversion to fatigue and spending
	Randomness  float64 `json:"randomness"`   // decision noise
}

// Persona is a named leadership archetype.
type Persona struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Tagline string  `json:"tagline"`
	Profile Profile `json:"profile"`
}
