package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/urbanhobbit/CIOGame04/apps/server/internal/store"
)

// SQLiteManager persists accounts and sessions so players keep their
// ledger history across restarts.
type SQLiteManager struct {
	db         *store.DB
	sessionTTL time.Duration
}

var sqliteAuthSchema = []string{
	`
CREATE TABLE IF NOT EXISTS players (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL,
    password_hash TEXT,
    guest INTEGER NOT NULL DEFAULT 0,
    created_at_ms INTEGER NOT NULL,
    last_login_at_ms INTEGER
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_players_username ON players(lower(username))`,
	`
CREATE TABLE IF NOT EXISTS player_sessions (
    token TEXT PRIMARY KEY,
    player_id INTEGER NOT NULL,
    issued_at_ms INTEGER NOT NULL,
    expires_at_ms INTEGER NOT NULL,
    revoked_at_ms INTEGER,
    FOREIGN KEY(player_id) REFERENCES players(id) ON DELETE CASCADE
)`,
	`CREATE INDEX IF NOT EXISTS idx_player_sessions_player ON player_sessions(player_id, expires_at_ms DESC)`,
}

func NewSQLiteManager(db *store.DB, sessionTTL time.Duration) (*SQLiteManager, error) {
	if db.Dialect != store.SQLite {
		return nil, fmt.Errorf("auth: sqlite manager given a %s database", db.Dialect)
	}
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Migrate(ctx, sqliteAuthSchema); err != nil {
		return nil, err
	}
	return &SQLiteManager{db: db, sessionTTL: sessionTTL}, nil
}

// Close leaves the shared database open; its owner closes it.
func (m *SQLiteManager) Close() error { return nil }

func (m *SQLiteManager) Register(username, password string) (uint64, string, error) {
	if err := validateUsername(username); err != nil {
		return 0, "", err
	}
	if err := validatePassword(password); err != nil {
		return 0, "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, "", err
	}
	return m.createAccount(normalizeUsername(username), string(hash), false)
}

func (m *SQLiteManager) createAccount(username, passwordHash string, guest bool) (uint64, string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, "", err
	}
	defer tx.Rollback()

	nowMs := time.Now().UTC().UnixMilli()
	var hash any
	if passwordHash != "" {
		hash = passwordHash
	}
	res, err := tx.ExecContext(ctx, `
INSERT INTO players (username, password_hash, guest, created_at_ms, last_login_at_ms)
VALUES (?, ?, ?, ?, ?)
`, username, hash, guest, nowMs, nowMs)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return 0, "", ErrUsernameTaken
		}
		return 0, "", err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, "", err
	}

	token, err := m.issueTx(ctx, tx, uint64(id), nowMs)
	if err != nil {
		return 0, "", err
	}
	if err := tx.Commit(); err != nil {
		return 0, "", err
	}
	return uint64(id), token, nil
}

func (m *SQLiteManager) Login(username, password string) (uint64, string, error) {
	key := normalizeUsername(username)
	if key == "" || password == "" {
		return 0, "", ErrInvalidCredentials
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var (
		id   uint64
		hash sql.NullString
	)
	err := m.db.QueryRowContext(ctx, `
SELECT id, password_hash FROM players WHERE lower(username) = ? AND guest = 0
`, key).Scan(&id, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", ErrInvalidCredentials
		}
		return 0, "", err
	}
	if !hash.Valid || bcrypt.CompareHashAndPassword([]byte(hash.String), []byte(password)) != nil {
		return 0, "", ErrInvalidCredentials
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, "", err
	}
	defer tx.Rollback()
	nowMs := time.Now().UTC().UnixMilli()
	if _, err := tx.ExecContext(ctx, `UPDATE players SET last_login_at_ms = ? WHERE id = ?`, nowMs, id); err != nil {
		return 0, "", err
	}
	token, err := m.issueTx(ctx, tx, id, nowMs)
	if err != nil {
		return 0, "", err
	}
	if err := tx.Commit(); err != nil {
		return 0, "", err
	}
	return id, token, nil
}

func (m *SQLiteManager) ResolveSession(token string) (uint64, string, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, "", false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	nowMs := time.Now().UTC().UnixMilli()
	res, err := m.db.ExecContext(ctx, `
UPDATE player_sessions
SET expires_at_ms = ?
WHERE token = ?
  AND revoked_at_ms IS NULL
  AND expires_at_ms > ?
`, nowMs+m.sessionTTL.Milliseconds(), token, nowMs)
	if err != nil {
		return 0, "", false
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return 0, "", false
	}

	var (
		id       uint64
		username string
	)
	err = m.db.QueryRowContext(ctx, `
SELECT p.id, p.username
FROM player_sessions AS s
JOIN players AS p ON p.id = s.player_id
WHERE s.token = ?
`, token).Scan(&id, &username)
	if err != nil {
		return 0, "", false
	}
	return id, username, true
}

func (m *SQLiteManager) Logout(token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _ = m.db.ExecContext(ctx, `
UPDATE player_sessions SET revoked_at_ms = ? WHERE token = ? AND revoked_at_ms IS NULL
`, time.Now().UTC().UnixMilli(), token)
}

func (m *SQLiteManager) Guest(token string) (uint64, string, bool, error) {
	if id, _, ok := m.ResolveSession(token); ok {
		return id, token, true, nil
	}
	for i := 0; i < 5; i++ {
		name := "guest_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		id, fresh, err := m.createAccount(name, "", true)
		if errors.Is(err, ErrUsernameTaken) {
			continue
		}
		return id, fresh, false, err
	}
	return 0, "", false, fmt.Errorf("auth: could not allocate a guest name")
}

func (m *SQLiteManager) issueTx(ctx context.Context, tx *sql.Tx, playerID uint64, nowMs int64) (string, error) {
	token := uuid.NewString()
	_, err := tx.ExecContext(ctx, `
INSERT INTO player_sessions (token, player_id, issued_at_ms, expires_at_ms)
VALUES (?, ?, ?, ?)
`, token, playerID, nowMs, nowMs+m.sessionTTL.Milliseconds())
	if err != nil {
		return "", err
	}
	return token, nil
}
