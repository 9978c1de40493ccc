package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/urbanhobbit/CIOGame04/crisis"
	"github.com/urbanhobbit/CIOGame04/crisis/autopilot"
	"github.com/urbanhobbit/CIOGame04/scenario"
)

type serverConfig struct {
	Addr string `env:"CRISIS_ADDR" envDefault:":8080"`

	AuthMode    string `env:"CRISIS_AUTH_MODE" envDefault:"memory"`
	LedgerMode  string `env:"CRISIS_LEDGER_MODE" envDefault:"memory"`
	SQLitePath  string `env:"CRISIS_SQLITE_PATH" envDefault:"data/crisis.db"`
	PostgresDSN string `env:"CRISIS_POSTGRES_DSN"`
	RecentLimit int    `env:"CRISIS_RECENT_LIMIT" envDefault:"200"`

	GameConfigPath string `env:"CRISIS_CONFIG_PATH"`
	CatalogDir     string `env:"CRISIS_CATALOG_DIR"`
	PersonasPath   string `env:"CRISIS_PERSONAS_PATH"`
	DefaultMode    string `env:"CRISIS_DEFAULT_MODE" envDefault:"adult"`
	DefaultPersona string `env:"CRISIS_DEFAULT_PERSONA" envDefault:"technocrat"`

	SummaryCache int           `env:"CRISIS_SUMMARY_CACHE" envDefault:"256"`
	RoomIdleTTL  time.Duration `env:"CRISIS_ROOM_IDLE_TTL" envDefault:"30m"`
	ReapInterval time.Duration `env:"CRISIS_REAP_INTERVAL" envDefault:"1m"`
}

func loadServerConfig() (serverConfig, error) {
	var cfg serverConfig
	if err := env.Parse(&cfg); err != nil {
		return serverConfig{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.RoomIdleTTL <= 0 {
		return serverConfig{}, fmt.Errorf("CRISIS_ROOM_IDLE_TTL must be positive")
	}
	if cfg.ReapInterval <= 0 {
		return serverConfig{}, fmt.Errorf("CRISIS_REAP_INTERVAL must be positive")
	}
	return cfg, nil
}

func (c serverConfig) needsSQLite() bool {
	return c.AuthMode == "sqlite" || c.LedgerMode == "sqlite"
}

func (c serverConfig) gameConfig() (crisis.Config, error) {
	if c.GameConfigPath == "" {
		return crisis.DefaultConfig(), nil
	}
	return crisis.LoadConfigFile(c.GameConfigPath)
}

// catalogs starts from the shipped catalogs and lets files in CatalogDir
// replace them per mode.
func (c serverConfig) catalogs() (map[scenario.Mode]*scenario.Catalog, error) {
	out, err := scenario.BuiltinAll()
	if err != nil {
		return nil, err
	}
	if c.CatalogDir == "" {
		return out, nil
	}
	extra, err := scenario.LoadDir(c.CatalogDir)
	if err != nil {
		return nil, fmt.Errorf("load catalogs from %s: %w", c.CatalogDir, err)
	}
	for mode, cat := range extra {
		out[mode] = cat
	}
	return out, nil
}

func (c serverConfig) personas() (*autopilot.PersonaRegistry, error) {
	reg, err := autopilot.BuiltinRegistry()
	if err != nil {
		return nil, err
	}
	if c.PersonasPath != "" {
		if err := reg.LoadFromFile(c.PersonasPath); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
