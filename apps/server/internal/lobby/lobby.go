package lobby

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/urbanhobbit/CIOGame04/apps/server/internal/ledger"
	"github.com/urbanhobbit/CIOGame04/apps/server/internal/room"
	"github.com/urbanhobbit/CIOGame04/crisis"
	"github.com/urbanhobbit/CIOGame04/crisis/autopilot"
	"github.com/urbanhobbit/CIOGame04/scenario"
)

const DefaultSummaryCacheSize = 256

var ErrLobbyClosed = errors.New("lobby closed")

// Config is what every room of the lobby is built from.
type Config struct {
	Game           crisis.Config
	DefaultMode    scenario.Mode
	Catalogs       map[scenario.Mode]*scenario.Catalog
	Personas       *autopilot.PersonaRegistry
	DefaultPersona string
	Ledger         ledger.Service

	// SummaryCacheSize bounds the finished-run summaries kept in memory.
	SummaryCacheSize int
}

func (c *Config) validate() error {
	if c.DefaultMode == "" {
		c.DefaultMode = scenario.ModeAdult
	}
	if _, ok := c.Catalogs[c.DefaultMode]; !ok {
		return fmt.Errorf("no catalog for default mode %q", c.DefaultMode)
	}
	if c.Personas == nil {
		return fmt.Errorf("persona registry is required")
	}
	if c.DefaultPersona == "" {
		c.DefaultPersona = "technocrat"
	}
	if c.Personas.Get(c.DefaultPersona) == nil {
		return fmt.Errorf("unknown default persona %q", c.DefaultPersona)
	}
	if c.Ledger == nil {
		c.Ledger = ledger.NewMemoryService(ledger.DefaultRecentLimit)
	}
	if c.SummaryCacheSize <= 0 {
		c.SummaryCacheSize = DefaultSummaryCacheSize
	}
	return nil
}

// Lobby keeps one room per account.
type Lobby struct {
	mu     sync.RWMutex
	rooms  map[uint64]*room.Room
	nextID uint64
	closed bool

	cfg       Config
	summaries *lru.Cache[string, room.RunEndInfo]
}

func New(cfg Config) (*Lobby, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cache, err := lru.New[string, room.RunEndInfo](cfg.SummaryCacheSize)
	if err != nil {
		return nil, fmt.Errorf("summary cache: %w", err)
	}
	return &Lobby{
		rooms:     make(map[uint64]*room.Room),
		cfg:       cfg,
		summaries: cache,
	}, nil
}

// Join returns the account's room, creating it on first use, and routes
// its frames to send under owner. A reconnecting player gets the same game
// back.
func (l *Lobby) Join(accountID uint64, owner string, send func(data []byte)) (*room.Room, error) {
	r, err := l.roomFor(accountID)
	if err != nil {
		return nil, err
	}
	if err := r.Attach(owner, send); err != nil {
		return nil, err
	}
	return r, nil
}

func (l *Lobby) roomFor(accountID uint64) (*room.Room, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrLobbyClosed
	}

	if r := l.rooms[accountID]; r != nil && !r.IsClosed() {
		log.Printf("[Lobby] account %d rejoining room %s", accountID, r.ID)
		return r, nil
	}

	l.nextID++
	cfg := l.cfg.Game
	if cfg.Seed != 0 {
		cfg.Seed += int64(l.nextID)
	}
	g, err := crisis.NewGame(cfg, l.cfg.Catalogs[l.cfg.DefaultMode])
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	roomID := fmt.Sprintf("room_%d", l.nextID)
	r := room.New(roomID, accountID, g, room.Deps{
		Catalogs:       l.cfg.Catalogs,
		Personas:       l.cfg.Personas,
		DefaultPersona: l.cfg.DefaultPersona,
		Ledger:         l.cfg.Ledger,
	})
	r.AddRunEndHook(func(info room.RunEndInfo) {
		l.summaries.Add(info.RunID, info)
	})
	l.rooms[accountID] = r

	log.Printf("[Lobby] account %d created room %s", accountID, roomID)
	return r, nil
}

// Leave detaches owner from the account's room; the room stays until
// reaped. A newer owner is left attached.
func (l *Lobby) Leave(accountID uint64, owner string) {
	if r := l.Room(accountID); r != nil {
		r.Detach(owner)
	}
}

func (l *Lobby) Room(accountID uint64) *room.Room {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rooms[accountID]
}

func (l *Lobby) RoomCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.rooms)
}

// RecentSummary returns a finished run still held in the summary cache.
func (l *Lobby) RecentSummary(runID string) (room.RunEndInfo, bool) {
	return l.summaries.Get(runID)
}

// ReapIdle stops rooms nobody has used for ttl and returns how many went.
func (l *Lobby) ReapIdle(ttl time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for accountID, r := range l.rooms {
		if !r.IsIdleFor(ttl) {
			continue
		}
		r.Stop()
		delete(l.rooms, accountID)
		n++
	}
	if n > 0 {
		log.Printf("[Lobby] reaped %d idle rooms, %d left", n, len(l.rooms))
	}
	return n
}

// RunReaper calls ReapIdle every interval until ctx is done.
func (l *Lobby) RunReaper(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.ReapIdle(ttl)
		}
	}
}

func (l *Lobby) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	for accountID, r := range l.rooms {
		r.Stop()
		delete(l.rooms, accountID)
	}
}
