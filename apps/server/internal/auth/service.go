package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/urbanhobbit/CIOGame04/apps/server/internal/store"
)

const defaultSessionTTL = 30 * 24 * time.Hour

const (
	ModeMemory = "memory"
	ModeSQLite = "sqlite"
)

var (
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service is the account/session contract consumed by the gateway and the
// HTTP handlers. Players are identified by a numeric account ID.
type Service interface {
	Register(username, password string) (accountID uint64, sessionToken string, err error)
	Login(username, password string) (accountID uint64, sessionToken string, err error)
	ResolveSession(token string) (accountID uint64, username string, ok bool)
	Logout(token string)

	// Guest returns the account bound to token when it is still valid, or
	// creates a guest account with a fresh token.
	Guest(token string) (accountID uint64, sessionToken string, reused bool, err error)

	Close() error
}

// New builds the service for mode. db is required for sqlite.
func New(mode string, db *store.DB) (Service, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeMemory, "mem":
		return NewManager(), nil
	case ModeSQLite, "local":
		if db == nil {
			return nil, fmt.Errorf("auth mode %s needs a database", ModeSQLite)
		}
		return NewSQLiteManager(db, defaultSessionTTL)
	default:
		return nil, fmt.Errorf("invalid auth mode %q (supported: %s, %s)", mode, ModeMemory, ModeSQLite)
	}
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_.-]{2,31}$`)

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validateUsername(username string) error {
	if !usernamePattern.MatchString(strings.TrimSpace(username)) {
		return ErrInvalidUsername
	}
	return nil
}

// bcrypt only reads the first 72 bytes.
func validatePassword(password string) error {
	if len(password) < 6 || len(password) > 72 {
		return ErrInvalidPassword
	}
	return nil
}
