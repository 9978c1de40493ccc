package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/urbanhobbit/CIOGame04/apps/server/internal/store"
	"github.com/urbanhobbit/CIOGame04/crisis"
)

// SQLService stores the ledger in sqlite or postgres.
type SQLService struct {
	db          *store.DB
	owned       bool
	recentLimit int
}

var sqliteLedgerSchema = []string{
	`
CREATE TABLE IF NOT EXISTS ledger_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL UNIQUE,
    account_id INTEGER NOT NULL,
    mode TEXT NOT NULL,
    score REAL NOT NULL,
    style TEXT NOT NULL,
    summary_json TEXT NOT NULL,
    finished_at_ms INTEGER NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_runs_account ON ledger_runs(account_id, finished_at_ms DESC)`,
	`
CREATE TABLE IF NOT EXISTS ledger_crises (
    run_id TEXT NOT NULL,
    crisis_index INTEGER NOT NULL,
    account_id INTEGER NOT NULL,
    scenario_id TEXT NOT NULL,
    record_json TEXT NOT NULL,
    recorded_at_ms INTEGER NOT NULL,
    PRIMARY KEY (run_id, crisis_index)
)`,
}

var postgresLedgerSchema = []string{
	`
CREATE TABLE IF NOT EXISTS ledger_runs (
    id BIGSERIAL PRIMARY KEY,
    run_id TEXT NOT NULL UNIQUE,
    account_id BIGINT NOT NULL,
    mode TEXT NOT NULL,
    score DOUBLE PRECISION NOT NULL,
    style TEXT NOT NULL,
    summary_json JSONB NOT NULL,
    finished_at_ms BIGINT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_runs_account ON ledger_runs(account_id, finished_at_ms DESC)`,
	`
CREATE TABLE IF NOT EXISTS ledger_crises (
    run_id TEXT NOT NULL,
    crisis_index INTEGER NOT NULL,
    account_id BIGINT NOT NULL,
    scenario_id TEXT NOT NULL,
    record_json JSONB NOT NULL,
    recorded_at_ms BIGINT NOT NULL,
    PRIMARY KEY (run_id, crisis_index)
)`,
}

func NewSQLService(db *store.DB, recentLimit int) (*SQLService, error) {
	schema := sqliteLedgerSchema
	if db.Dialect == store.Postgres {
		schema = postgresLedgerSchema
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Migrate(ctx, schema); err != nil {
		return nil, err
	}
	return &SQLService{db: db, recentLimit: recentLimit}, nil
}

// Close closes the database only when the service opened it.
func (s *SQLService) Close() error {
	if s == nil || s.db == nil || !s.owned {
		return nil
	}
	return s.db.Close()
}

func (s *SQLService) RecordCrisis(rec CrisisRecord) {
	if strings.TrimSpace(rec.RunID) == "" {
		return
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		log.Printf("[Ledger] marshal crisis failed: run=%s index=%d err=%v", rec.RunID, rec.Index, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err = s.db.ExecContext(ctx, s.db.Rebind(`
INSERT INTO ledger_crises (run_id, crisis_index, account_id, scenario_id, record_json, recorded_at_ms)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (run_id, crisis_index) DO NOTHING
`), rec.RunID, rec.Index, int64(rec.AccountID), rec.ScenarioID, string(raw), rec.RecordedAt.UnixMilli())
	if err != nil {
		log.Printf("[Ledger] record crisis failed: run=%s index=%d err=%v", rec.RunID, rec.Index, err)
	}
}

func (s *SQLService) RecordRun(rec RunRecord) {
	if rec.AccountID == 0 || strings.TrimSpace(rec.RunID) == "" {
		return
	}
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now().UTC()
	}
	summaryRaw, err := json.Marshal(rec.Summary)
	if err != nil {
		log.Printf("[Ledger] marshal run summary failed: run=%s err=%v", rec.RunID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Printf("[Ledger] begin record run tx failed: run=%s err=%v", rec.RunID, err)
		return
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.db.Rebind(`
INSERT INTO ledger_runs (run_id, account_id, mode, score, style, summary_json, finished_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (run_id) DO UPDATE
SET score = excluded.score,
    style = excluded.style,
    summary_json = excluded.summary_json,
    finished_at_ms = excluded.finished_at_ms
`), rec.RunID, int64(rec.AccountID), rec.Mode, rec.Score, string(rec.Style), string(summaryRaw), rec.FinishedAt.UnixMilli()); err != nil {
		log.Printf("[Ledger] record run failed: account=%d run=%s err=%v", rec.AccountID, rec.RunID, err)
		return
	}
	if err := s.trimTx(ctx, tx, rec.AccountID); err != nil {
		log.Printf("[Ledger] trim runs failed: account=%d err=%v", rec.AccountID, err)
		return
	}
	if err := tx.Commit(); err != nil {
		log.Printf("[Ledger] commit run failed: account=%d run=%s err=%v", rec.AccountID, rec.RunID, err)
	}
}

// trimTx drops runs (and their crises) beyond the recent limit.
func (s *SQLService) trimTx(ctx context.Context, tx *sql.Tx, accountID uint64) error {
	if s.recentLimit <= 0 {
		return nil
	}
	rows, err := tx.QueryContext(ctx, s.db.Rebind(`
SELECT run_id FROM ledger_runs
WHERE account_id = ?
ORDER BY finished_at_ms DESC, id DESC
LIMIT ? OFFSET ?
`), int64(accountID), 1<<30, s.recentLimit)
	if err != nil {
		return err
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		stale = append(stale, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range stale {
		if _, err := tx.ExecContext(ctx, s.db.Rebind(`DELETE FROM ledger_crises WHERE run_id = ?`), id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.db.Rebind(`DELETE FROM ledger_runs WHERE run_id = ?`), id); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLService) ListRecent(ctx context.Context, accountID uint64, limit int) ([]RunRecord, error) {
	limit = clampLimit(limit)
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
SELECT run_id, mode, score, style, summary_json, finished_at_ms
FROM ledger_runs
WHERE account_id = ?
ORDER BY finished_at_ms DESC, id DESC
LIMIT ?
`), int64(accountID), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]RunRecord, 0, limit)
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		rec.AccountID = accountID
		items = append(items, rec)
	}
	return items, rows.Err()
}

func (s *SQLService) GetRun(ctx context.Context, accountID uint64, runID string) (*RunDetail, error) {
	row := s.db.QueryRowContext(ctx, s.db.Rebind(`
SELECT run_id, mode, score, style, summary_json, finished_at_ms
FROM ledger_runs
WHERE account_id = ? AND run_id = ?
`), int64(accountID), runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	run.AccountID = accountID

	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
SELECT record_json FROM ledger_crises WHERE run_id = ? ORDER BY crisis_index ASC
`), runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	detail := &RunDetail{Run: run, Crises: []CrisisRecord{}}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var rec CrisisRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, err
		}
		detail.Crises = append(detail.Crises, rec)
	}
	return detail, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunRecord, error) {
	var (
		rec        RunRecord
		style      string
		summaryRaw []byte
		finishedMs int64
	)
	if err := row.Scan(&rec.RunID, &rec.Mode, &rec.Score, &style, &summaryRaw, &finishedMs); err != nil {
		return RunRecord{}, err
	}
	rec.Style = crisis.Style(style)
	rec.FinishedAt = time.UnixMilli(finishedMs).UTC()
	if len(summaryRaw) > 0 {
		if err := json.Unmarshal(summaryRaw, &rec.Summary); err != nil {
			return RunRecord{}, err
		}
	}
	return rec, nil
}
