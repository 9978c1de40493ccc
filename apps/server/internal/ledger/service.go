// Package ledger is the audit trail of resolved crises and finished runs.
// It records outcomes only; a run cannot be resumed from it.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urbanhobbit/CIOGame04/apps/server/internal/store"
	"github.com/urbanhobbit/CIOGame04/crisis"
	"github.com/urbanhobbit/CIOGame04/metric"
)

const (
	ModeMemory   = "memory"
	ModeSQLite   = "sqlite"
	ModePostgres = "postgres"

	DefaultRecentLimit = 200
)

var ErrNotFound = errors.New("not found")

// Service writes are fire and forget: failures are logged, never returned
// to the game.
type Service interface {
	Close() error
	RecordCrisis(rec CrisisRecord)
	RecordRun(rec RunRecord)
	ListRecent(ctx context.Context, accountID uint64, limit int) ([]RunRecord, error)
	GetRun(ctx context.Context, accountID uint64, runID string) (*RunDetail, error)
}

// CrisisRecord is one resolved crisis inside a run.
type CrisisRecord struct {
	RunID        string           `json:"run_id"`
	AccountID    uint64           `json:"account_id"`
	Index        int              `json:"index"`
	ScenarioID   string           `json:"scenario_id"`
	Skipped      bool             `json:"skipped"`
	ActionID     string           `json:"action_id,omitempty"`
	Modifiers    crisis.Modifiers `json:"modifiers"`
	Before       metric.Vector    `json:"before"`
	After        metric.Vector    `json:"after"`
	RandomFactor float64          `json:"random_factor"`
	RecordedAt   time.Time        `json:"recorded_at"`
}

type RunRecord struct {
	RunID      string         `json:"run_id"`
	AccountID  uint64         `json:"account_id"`
	Mode       string         `json:"mode"`
	Score      float64        `json:"score"`
	Style      crisis.Style   `json:"style"`
	Summary    crisis.Summary `json:"summary"`
	FinishedAt time.Time      `json:"finished_at"`
}

type RunDetail struct {
	Run    RunRecord      `json:"run"`
	Crises []CrisisRecord `json:"crises"`
}

// Options selects and configures a backend.
type Options struct {
	Mode        string
	SQLitePath  string
	PostgresDSN string
	RecentLimit int
}

// New opens the backend named by opts.Mode. When the mode is sqlite and db
// is a sqlite database it is reused instead of opening SQLitePath.
func New(opts Options, shared *store.DB) (Service, string, error) {
	limit := opts.RecentLimit
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	mode := strings.ToLower(strings.TrimSpace(opts.Mode))
	switch mode {
	case "", ModeMemory, "mem":
		return NewMemoryService(limit), ModeMemory, nil
	case ModeSQLite, "local":
		if shared != nil && shared.Dialect == store.SQLite {
			svc, err := NewSQLService(shared, limit)
			if err != nil {
				return nil, "", err
			}
			return svc, ModeSQLite, nil
		}
		db, err := store.OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, "", err
		}
		return openedService(db, limit, ModeSQLite)
	case ModePostgres, "postgresql", "db":
		db, err := store.OpenPostgres(opts.PostgresDSN)
		if err != nil {
			return nil, "", err
		}
		return openedService(db, limit, ModePostgres)
	default:
		return nil, "", fmt.Errorf("invalid ledger mode %q (supported: %s, %s, %s)", opts.Mode, ModeMemory, ModeSQLite, ModePostgres)
	}
}

func openedService(db *store.DB, limit int, mode string) (Service, string, error) {
	svc, err := NewSQLService(db, limit)
	if err != nil {
		_ = db.Close()
		return nil, "", err
	}
	svc.owned = true
	return svc, mode, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}
