package auth

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Manager keeps accounts and sessions in memory. Everything is lost on
// restart, which suits local play and tests.
type Manager struct {
	mu sync.Mutex

	nextAccountID uint64
	sessionTTL    time.Duration
	now           func() time.Time

	sessions   map[string]session
	accounts   map[uint64]account
	byUsername map[string]uint64
}

type session struct {
	AccountID uint64
	ExpiresAt time.Time
}

type account struct {
	Username     string
	PasswordHash []byte
	Guest        bool
	LastLogin    time.Time
}

func NewManager() *Manager {
	return &Manager{
		nextAccountID: 100000,
		sessionTTL:    defaultSessionTTL,
		now:           time.Now,
		sessions:      make(map[string]session),
		accounts:      make(map[uint64]account),
		byUsername:    make(map[string]uint64),
	}
}

func (m *Manager) Close() error { return nil }

func (m *Manager) issueLocked(accountID uint64) string {
	token := uuid.NewString()
	m.sessions[token] = session{AccountID: accountID, ExpiresAt: m.now().Add(m.sessionTTL)}
	return token
}

// resolveLocked also slides the expiry forward.
func (m *Manager) resolveLocked(token string) (uint64, string, bool) {
	s, ok := m.sessions[token]
	if !ok || token == "" {
		return 0, "", false
	}
	now := m.now()
	if !now.Before(s.ExpiresAt) {
		delete(m.sessions, token)
		return 0, "", false
	}
	s.ExpiresAt = now.Add(m.sessionTTL)
	m.sessions[token] = s
	return s.AccountID, m.accounts[s.AccountID].Username, true
}

func (m *Manager) Register(username, password string) (uint64, string, error) {
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

	key := normalizeUsername(username)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.byUsername[key]; taken {
		return 0, "", ErrUsernameTaken
	}
	m.nextAccountID++
	id := m.nextAccountID
	m.accounts[id] = account{Username: key, PasswordHash: hash, LastLogin: m.now()}
	m.byUsername[key] = id
	return id, m.issueLocked(id), nil
}

func (m *Manager) Login(username, password string) (uint64, string, error) {
	key := normalizeUsername(username)
	if key == "" || password == "" {
		return 0, "", ErrInvalidCredentials
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byUsername[key]
	if !ok {
		return 0, "", ErrInvalidCredentials
	}
	acc := m.accounts[id]
	if acc.Guest || bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(password)) != nil {
		return 0, "", ErrInvalidCredentials
	}
	acc.LastLogin = m.now()
	m.accounts[id] = acc
	return id, m.issueLocked(id), nil
}

func (m *Manager) ResolveSession(token string) (uint64, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveLocked(token)
}

func (m *Manager) Logout(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

func (m *Manager) Guest(token string) (uint64, string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, _, ok := m.resolveLocked(token); ok {
		return id, token, true, nil
	}
	m.nextAccountID++
	id := m.nextAccountID
	name := fmt.Sprintf("guest_%d", id)
	m.accounts[id] = account{Username: name, Guest: true, LastLogin: m.now()}
	m.byUsername[name] = id
	return id, m.issueLocked(id), false, nil
}
