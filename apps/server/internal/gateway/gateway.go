package gateway

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/urbanhobbit/CIOGame04/apps/server/internal/auth"
	"github.com/urbanhobbit/CIOGame04/apps/server/internal/httpjson"
	"github.com/urbanhobbit/CIOGame04/apps/server/internal/lobby"
	"github.com/urbanhobbit/CIOGame04/apps/server/internal/room"
	"github.com/urbanhobbit/CIOGame04/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 65536
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Connection is one websocket client bound to an account.
type Connection struct {
	ID        string
	AccountID uint64
	Conn      *websocket.Conn
	Send      chan []byte
	Gateway   *Gateway

	mu     sync.Mutex
	closed bool
	room   *room.Room
}

// Gateway manages websocket connections, at most one per account.
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	accounts    map[uint64]*Connection
	nextConnID  uint64
	lobby       *lobby.Lobby
	auth        auth.Service
}

func New(lby *lobby.Lobby, authService auth.Service) *Gateway {
	return &Gateway{
		connections: make(map[string]*Connection),
		accounts:    make(map[uint64]*Connection),
		lobby:       lby,
		auth:        authService,
	}
}

// HandleWebSocket authenticates the request with ?token= or a bearer
// header, falling back to a fresh guest account, then upgrades it.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = httpjson.BearerToken(r)
	}
	accountID, sessionToken, reused, err := g.auth.Guest(token)
	if err != nil {
		log.Printf("[Gateway] Session error: %v", err)
		http.Error(w, "session unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] Upgrade error: %v", err)
		return
	}

	g.mu.Lock()
	g.nextConnID++
	c := &Connection{
		ID:        fmt.Sprintf("conn_%d", g.nextConnID),
		AccountID: accountID,
		Conn:      conn,
		Send:      make(chan []byte, sendBuffer),
		Gateway:   g,
	}
	previous := g.accounts[accountID]
	g.connections[c.ID] = c
	g.accounts[accountID] = c
	total := len(g.connections)
	g.mu.Unlock()

	if previous != nil {
		log.Printf("[Gateway] Account %d reconnected, closing %s", accountID, previous.ID)
		previous.close()
	}
	log.Printf("[Gateway] Client connected: %s (account=%d reused=%v), total: %d", c.ID, accountID, reused, total)

	go c.writePump()

	c.sendWelcome(sessionToken, reused)
	if err := c.join(); err != nil {
		log.Printf("[Gateway] Join failed for account %d: %v", accountID, err)
		c.sendError(protocol.CodeInternal, "join failed")
	}

	go c.readPump()
}

func (c *Connection) join() error {
	r, err := c.Gateway.lobby.Join(c.AccountID, c.ID, c.enqueue)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.room = r
	c.mu.Unlock()
	return nil
}

func (c *Connection) currentRoom() *room.Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Gateway] Read error: %v", err)
			}
			break
		}
		c.handleMessage(message)
	}
}

func (c *Connection) handleMessage(data []byte) {
	cmd, err := protocol.UnmarshalClientCommand(data)
	if err != nil {
		c.sendError(protocol.CodeBadFrame, "invalid message format")
		return
	}

	r := c.currentRoom()
	if r == nil {
		c.sendError(protocol.CodeNoSession, "no room")
		return
	}
	err = r.Submit(cmd)
	if errors.Is(err, room.ErrRoomClosed) {
		// Reaped between frames; a fresh room picks the command up.
		if err := c.join(); err != nil {
			c.sendError(protocol.CodeNoSession, err.Error())
			return
		}
		err = c.currentRoom().Submit(cmd)
	}
	if err != nil && !errors.Is(err, room.ErrRoomClosed) {
		log.Printf("[Gateway] account %d %s (seq %d): %v", c.AccountID, cmd.Type, cmd.Seq, err)
	}
}

func (c *Connection) sendWelcome(sessionToken string, reused bool) {
	payload := &structpb.Struct{Fields: map[string]*structpb.Value{
		"account_id":    structpb.NewNumberValue(float64(c.AccountID)),
		"session_token": structpb.NewStringValue(sessionToken),
		"reused":        structpb.NewBoolValue(reused),
	}}
	c.sendEnvelope(protocol.KindWelcome, payload)
}

func (c *Connection) sendError(code int32, msg string) {
	c.sendEnvelope(protocol.KindError, protocol.ErrorPayload(code, msg))
}

// sendEnvelope writes a gateway-originated frame. These carry seq 0 so they
// never collide with the room's sequence.
func (c *Connection) sendEnvelope(kind string, payload *structpb.Struct) {
	env := &protocol.ServerEnvelope{
		ServerTsMs: time.Now().UnixMilli(),
		Kind:       kind,
		Payload:    payload,
	}
	if r := c.currentRoom(); r != nil {
		env.RoomID = r.ID
	}
	data, err := protocol.MarshalServerEnvelope(env)
	if err != nil {
		log.Printf("[Gateway] encode %s failed: %v", kind, err)
		return
	}
	c.enqueue(data)
}

// enqueue drops the frame when the client is gone or too slow.
func (c *Connection) enqueue(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- data:
	default:
		log.Printf("[Gateway] send buffer full for %s, dropping frame", c.ID)
	}
}

func (c *Connection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	c.close()

	g.mu.Lock()
	delete(g.connections, c.ID)
	if g.accounts[c.AccountID] == c {
		delete(g.accounts, c.AccountID)
	}
	total := len(g.connections)
	g.mu.Unlock()

	g.lobby.Leave(c.AccountID, c.ID)
	log.Printf("[Gateway] Client disconnected: %s, total: %d", c.ID, total)
}

func (g *Gateway) ConnectionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.connections)
}
