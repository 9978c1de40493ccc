package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/urbanhobbit/CIOGame04/scenario"
)

func TestLoadServerConfigDefaults(t *testing.T) {
	cfg, err := loadServerConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.AuthMode != "memory" || cfg.RecentLimit != 200 {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.RoomIdleTTL != 30*time.Minute || cfg.needsSQLite() {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestLoadServerConfigFromEnv(t *testing.T) {
	t.Setenv("CRISIS_ADDR", "127.0.0.1:9000")
	t.Setenv("CRISIS_LEDGER_MODE", "sqlite")
	t.Setenv("CRISIS_ROOM_IDLE_TTL", "90s")

	cfg, err := loadServerConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" || cfg.RoomIdleTTL != 90*time.Second || !cfg.needsSQLite() {
		t.Fatalf("config = %+v", cfg)
	}

	t.Setenv("CRISIS_ROOM_IDLE_TTL", "0s")
	if _, err := loadServerConfig(); err == nil {
		t.Fatalf("zero idle ttl accepted")
	}
}

func TestCatalogDirOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	doc := `{"mode": "kids", "scenarios": {"storm": {"title": "Storm", "action_cards": [
		{"id": "A", "name": "Shelter", "cost": 10, "hr_cost": 5, "speed": "fast", "security_effect": 20, "side_effect_risk": 0.1, "freedom_cost": 2, "safeguard_reduction": 1}
	]}}}`
	if err := os.WriteFile(filepath.Join(dir, "kids.json"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := serverConfig{CatalogDir: dir}
	cats, err := cfg.catalogs()
	if err != nil {
		t.Fatalf("catalogs: %v", err)
	}
	if ids := cats[scenario.ModeKids].IDs(); len(ids) != 1 || ids[0] != "storm" {
		t.Fatalf("kids ids = %v, want [storm]", ids)
	}
	if cats[scenario.ModeAdult].Len() == 0 {
		t.Fatalf("adult catalog dropped")
	}
}
