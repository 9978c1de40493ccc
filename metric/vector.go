package metric

import "fmt"

const (
	Min = 0.0
	Max = 100.0
)

// Vector is the five bounded indicators of the simulated country.
// Every field stays within [Min, Max] after any mutation made through Apply.
type Vector struct {
	Security    float64 `json:"security"`
	Freedom     float64 `json:"freedom"`
	PublicTrust float64 `json:"public_trust"`
	Resilience  float64 `json:"resilience"`
	Fatigue     float64 `json:"fatigue"`
}

// Delta is a signed per-field change to a Vector.
type Delta struct {
	Security    float64 `json:"security"`
	Freedom     float64 `json:"freedom"`
	PublicTrust float64 `json:"public_trust"`
	Resilience  float64 `json:"resilience"`
	Fatigue     float64 `json:"fatigue"`
}

func Clamp(v float64) float64 {
	if v < Min {
		return Min
	}
	if v > Max {
		return Max
	}
	return v
}

func (v Vector) Clamped() Vector {
	return Vector{
		Security:    Clamp(v.Security),
		Freedom:     Clamp(v.Freedom),
		PublicTrust: Clamp(v.PublicTrust),
		Resilience:  Clamp(v.Resilience),
		Fatigue:     Clamp(v.Fatigue),
	}
}

// Apply adds d field by field and clamps each field independently.
func (v Vector) Apply(d Delta) Vector {
	return Vector{
		Security:    Clamp(v.Security + d.Security),
		Freedom:     Clamp(v.Freedom + d.Freedom),
		PublicTrust: Clamp(v.PublicTrust + d.PublicTrust),
		Resilience:  Clamp(v.Resilience + d.Resilience),
		Fatigue:     Clamp(v.Fatigue + d.Fatigue),
	}
}

// Diff returns v - before.
func (v Vector) Diff(before Vector) Delta {
	return Delta{
		Security:    v.Security - before.Security,
		Freedom:     v.Freedom - before.Freedom,
		PublicTrust: v.PublicTrust - before.PublicTrust,
		Resilience:  v.Resilience - before.Resilience,
		Fatigue:     v.Fatigue - before.Fatigue,
	}
}

func (v Vector) InRange() bool {
	for _, f := range v.Fields() {
		if f < Min || f > Max {
			return false
		}
	}
	return true
}

// Fields returns the values in declaration order.
func (v Vector) Fields() [5]float64 {
	return [5]float64{v.Security, v.Freedom, v.PublicTrust, v.Resilience, v.Fatigue}
}

func (v Vector) String() string {
	return fmt.Sprintf("security=%.1f freedom=%.1f trust=%.1f resilience=%.1f fatigue=%.1f",
		v.Security, v.Freedom, v.PublicTrust, v.Resilience, v.Fatigue)
}

// FieldNames matches the order of Fields.
var FieldNames = [5]string{"security", "freedom", "public_trust", "resilience", "fatigue"}
