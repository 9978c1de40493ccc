package crisis

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urbanhobbit/CIOGame04/metric"
)

// ScopeTable holds one value per scope.
type ScopeTable struct {
	Targeted float64 `json:"targeted"`
	General  float64 `json:"general"`
}

func (t ScopeTable) Get(s Scope) float64 {
	if s == ScopeGeneral {
		return t.General
	}
	return t.Targeted
}

// DurationTable holds one value per duration.
type DurationTable struct {
	Short  float64 `json:"short"`
	Medium float64 `json:"medium"`
	Long   float64 `json:"long"`
}

func (t DurationTable) Get(d Duration) float64 {
	switch d {
	case DurationMedium:
		return t.Medium
	case DurationLong:
		return t.Long
	default:
		return t.Short
	}
}

// Balance is the read-only tuning table used by the resolver.
type Balance struct {
	ThreatSeverity            float64       `json:"THREAT_SEVERITY"`
	RandomFactorRange         [2]float64    `json:"RANDOM_FACTOR_RANGE"`
	ScopeMultipliers          ScopeTable    `json:"SCOPE_MULTIPLIERS"`
	DurationMultipliers       DurationTable `json:"DURATION_MULTIPLIERS"`
	SafeguardQualityPerItem   float64       `json:"SAFEGUARD_QUALITY_PER_ITEM"`
	TrustBoostForTransparency float64       `json:"TRUST_BOOST_FOR_TRANSPARENCY"`
	FatiguePerDuration        ScopeTable    `json:"FATIGUE_PER_DURATION"`
}

func (b Balance) validate() error {
	if b.ThreatSeverity < 0 {
		return fmt.Errorf("THREAT_SEVERITY must be >= 0")
	}
	if b.RandomFactorRange[0] > b.RandomFactorRange[1] {
		return fmt.Errorf("invalid RANDOM_FACTOR_RANGE: lo=%v hi=%v", b.RandomFactorRange[0], b.RandomFactorRange[1])
	}
	if b.ScopeMultipliers.Targeted < 0 || b.ScopeMultipliers.General < 0 {
		return fmt.Errorf("SCOPE_MULTIPLIERS must be >= 0")
	}
	d := b.DurationMultipliers
	if d.Short < 0 || d.Medium < 0 || d.Long < 0 {
		return fmt.Errorf("DURATION_MULTIPLIERS must be >= 0")
	}
	if b.SafeguardQualityPerItem < 0 {
		return fmt.Errorf("SAFEGUARD_QUALITY_PER_ITEM must be >= 0")
	}
	if b.FatiguePerDuration.Targeted < 0 || b.FatiguePerDuration.General < 0 {
		return fmt.Errorf("FATIGUE_PER_DURATION must be >= 0")
	}
	return nil
}

type InitialSettings struct {
	Metrics   metric.Vector `json:"metrics"`
	Budget    float64       `json:"budget"`
	HR        float64       `json:"hr"`
	MaxCrises int           `json:"max_crises"`
}

func (s InitialSettings) validate() error {
	if !s.Metrics.InRange() {
		return fmt.Errorf("initial metrics out of range: %s", s.Metrics)
	}
	if s.Budget < 0 || s.HR < 0 {
		return fmt.Errorf("initial resources must be >= 0")
	}
	if s.MaxCrises < 1 {
		return fmt.Errorf("max_crises must be >= 1")
	}
	return nil
}

func (s InitialSettings) pool() metric.Pool {
	return metric.Pool{Budget: s.Budget, HR: s.HR}
}

type Config struct {
	Initial InitialSettings
	Balance Balance

	// RNG seed (0 => time-based)
	Seed int64
}

func (c Config) validate() error {
	if err := c.Initial.validate(); err != nil {
		return err
	}
	return c.Balance.validate()
}

func DefaultConfig() Config {
	return Config{
		Initial: InitialSettings{
			Metrics: metric.Vector{
				Security:    50,
				Freedom:     70,
				PublicTrust: 60,
				Resilience:  50,
				Fatigue:     10,
			},
			Budget:    100,
			HR:        50,
			MaxCrises: 3,
		},
		Balance: Balance{
			ThreatSeverity:            50,
			RandomFactorRange:         [2]float64{0.5, 1.5},
			ScopeMultipliers:          ScopeTable{Targeted: 0.7, General: 1.3},
			DurationMultipliers:       DurationTable{Short: 0.8, Medium: 1.0, Long: 1.3},
			SafeguardQualityPerItem:   0.25,
			TrustBoostForTransparency: 5,
			FatiguePerDuration:        ScopeTable{Targeted: 3, General: 6},
		},
	}
}

// LoadConfigJSON parses {"initial_settings": ..., "game_balance": ...}.
// Missing sections keep their default values.
func LoadConfigJSON(data []byte) (Config, error) {
	cfg := DefaultConfig()
	doc := struct {
		Initial *InitialSettings `json:"initial_settings"`
		Balance *Balance         `json:"game_balance"`
		Seed    int64            `json:"seed"`
	}{Initial: &cfg.Initial, Balance: &cfg.Balance}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Config{}, fmt.Errorf("parse config JSON: %w", err)
	}
	cfg.Seed = doc.Seed
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return LoadConfigJSON(data)
}
