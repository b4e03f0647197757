package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/livedraft/go/internal/draft/events"
	"github.com/mcdev12/livedraft/go/internal/draft/orchestrator"
)

var (
	// ErrBroadcastFull is returned by Publish when the fan-out queue is saturated.
	ErrBroadcastFull = errors.New("gateway broadcast channel full")

	errUpgradeFailed = errors.New("websocket upgrade failed")
)

// DraftService is the part of the orchestrator the gateway drives.
type DraftService interface {
	GetState(ctx context.Context, draftID uuid.UUID) (events.DraftState, error)
	ActiveDraftIDs() []uuid.UUID
	HandleCommand(ctx context.Context, cmd orchestrator.Command) error
	SetUserOnline(ctx context.Context, draftID, userID uuid.UUID, online bool) error
}

// ConnectionManager manages WebSocket connections for draft events
type ConnectionManager struct {
	// Connection pools organized by draft ID
	draftConnections map[uuid.UUID]map[*Connection]bool
	mu               sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig
	drafts   DraftService

	broadcastCh chan events.Envelope

	// Users whose presence changed since the presence loop last looked
	presenceMu     sync.Mutex
	presenceDirty  map[presenceKey]struct{}
	presenceSignal chan struct{}
}

type presenceKey struct {
	draftID uuid.UUID
	userID  uuid.UUID
}

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID      string
	UserID  uuid.UUID // uuid.Nil for spectators
	DraftID uuid.UUID
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	ConnectedAt time.Time
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	CommandTimeout  time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBufferSize  int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		CommandTimeout:  5 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBufferSize:  256,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// NewConnectionManager creates a new WebSocket connection manager
func NewConnectionManager(config ConnectionConfig, drafts DraftService) *ConnectionManager {
	return &ConnectionManager{
		draftConnections: make(map[uuid.UUID]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		drafts:      drafts,
		broadcastCh: make(chan events.Envelope, 1000),

		presenceDirty:  make(map[presenceKey]struct{}),
		presenceSignal: make(chan struct{}, 1),
	}
}

// Start begins processing broadcast messages
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")
	go cm.presenceLoop(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			cm.closeAll()
			return
		case event := <-cm.broadcastCh:
			cm.handleBroadcast(event)
		}
	}
}

// Publish queues an event for every connection watching its draft. It is the
// websocket sink of the broadcast hub.
func (cm *ConnectionManager) Publish(_ context.Context, event events.Envelope) error {
	select {
	case cm.broadcastCh <- event:
		return nil
	default:
		return ErrBroadcastFull
	}
}

// UpgradeConnection upgrades an HTTP connection to WebSocket. The new connection
// is registered before the snapshot is read, so the client can drop any event
// whose sequence is not above the snapshot's.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, userID, draftID uuid.UUID) error {
	if _, err := cm.drafts.GetState(r.Context(), draftID); err != nil {
		return fmt.Errorf("load draft state: %w", err)
	}

	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", errUpgradeFailed, err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		UserID:      userID,
		DraftID:     draftID,
		Conn:        conn,
		Send:        make(chan []byte, cm.config.SendBufferSize),
		Manager:     cm,
		ConnectedAt: time.Now(),
	}
	cm.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()

	if state, err := cm.drafts.GetState(r.Context(), draftID); err == nil {
		cm.sendEvent(connection, events.EventTypeDraftState, state.Sequence, state)
	}
	cm.markPresence(connection)

	log.Info().
		Str("connection_id", connection.ID).
		Str("user_id", userID.String()).
		Str("draft_id", draftID.String()).
		Msg("WebSocket connection established")
	return nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.draftConnections[conn.DraftID] == nil {
		cm.draftConnections[conn.DraftID] = make(map[*Connection]bool)
	}
	cm.draftConnections[conn.DraftID][conn] = true
	connectionsOpen.Inc()

	log.Debug().
		Str("connection_id", conn.ID).
		Str("draft_id", conn.DraftID.String()).
		Int("total_connections", len(cm.draftConnections[conn.DraftID])).
		Msg("connection registered")
}

// unregisterConnection removes a connection and reports whether it was still
// registered. It marks the owner offline once their last connection is gone.
func (cm *ConnectionManager) unregisterConnection(conn *Connection) bool {
	cm.mu.Lock()
	connections, exists := cm.draftConnections[conn.DraftID]
	if !exists || !connections[conn] {
		cm.mu.Unlock()
		return false
	}
	delete(connections, conn)
	close(conn.Send)
	connectionsOpen.Dec()

	lastForUser := true
	for other := range connections {
		if other.UserID == conn.UserID {
			lastForUser = false
			break
		}
	}
	if len(connections) == 0 {
		delete(cm.draftConnections, conn.DraftID)
	}
	cm.mu.Unlock()

	if lastForUser {
		cm.markPresence(conn)
	}

	log.Info().
		Str("connection_id", conn.ID).
		Str("user_id", conn.UserID.String()).
		Str("draft_id", conn.DraftID.String()).
		Msg("connection unregistered")
	return true
}

// markPresence queues a presence refresh for the connection's user. Marks for the
// same user collapse into one.
func (cm *ConnectionManager) markPresence(conn *Connection) {
	if conn.UserID == uuid.Nil {
		return
	}
	cm.presenceMu.Lock()
	cm.presenceDirty[presenceKey{draftID: conn.DraftID, userID: conn.UserID}] = struct{}{}
	cm.presenceMu.Unlock()

	select {
	case cm.presenceSignal <- struct{}{}:
	default:
	}
}

// presenceLoop is the only writer of presence. Each pass sends what the
// connection table says now, so a connect and disconnect racing each other
// still end on the right value.
func (cm *ConnectionManager) presenceLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-cm.presenceSignal:
			cm.syncPresence(ctx)
		}
	}
}

func (cm *ConnectionManager) syncPresence(ctx context.Context) {
	cm.presenceMu.Lock()
	dirty := cm.presenceDirty
	cm.presenceDirty = make(map[presenceKey]struct{})
	cm.presenceMu.Unlock()

	for key := range dirty {
		online := cm.userConnected(key.draftID, key.userID)
		cctx, cancel := context.WithTimeout(ctx, cm.config.CommandTimeout)
		err := cm.drafts.SetUserOnline(cctx, key.draftID, key.userID, online)
		cancel()
		if err != nil {
			log.Warn().
				Err(err).
				Str("draft_id", key.draftID.String()).
				Str("user_id", key.userID.String()).
				Bool("online", online).
				Msg("failed to update presence")
		}
	}
}

func (cm *ConnectionManager) userConnected(draftID, userID uuid.UUID) bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	for conn := range cm.draftConnections[draftID] {
		if conn.UserID == userID {
			return true
		}
	}
	return false
}

func (cm *ConnectionManager) handleBroadcast(event events.Envelope) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	var slow []*Connection
	cm.mu.RLock()
	connections := cm.draftConnections[event.DraftID]
	for conn := range connections {
		select {
		case conn.Send <- data:
		default:
			slow = append(slow, conn)
		}
	}
	count := len(connections)
	cm.mu.RUnlock()

	for _, conn := range slow {
		// Connection is slow/dead, close it
		log.Warn().
			Str("connection_id", conn.ID).
			Str("user_id", conn.UserID.String()).
			Msg("connection send buffer full, closing connection")
		if cm.unregisterConnection(conn) {
			conn.Conn.Close()
		}
	}

	log.Trace().
		Str("event_type", string(event.Type)).
		Str("draft_id", event.DraftID.String()).
		Int("connections", count).
		Msg("event broadcasted")
}

// sendEvent writes one frame to a single connection, if it is still registered.
func (cm *ConnectionManager) sendEvent(conn *Connection, typ events.EventType, seq uint64, payload any) {
	env, err := events.New(conn.DraftID, seq, typ, time.Now().UTC(), payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to build direct frame")
		return
	}
	data, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal direct frame")
		return
	}

	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if !cm.draftConnections[conn.DraftID][conn] {
		return
	}
	select {
	case conn.Send <- data:
	default:
		log.Warn().Str("connection_id", conn.ID).Msg("dropping direct frame for slow connection")
	}
}

// ConnectionStats summarises open connections.
type ConnectionStats struct {
	TotalConnections int            `json:"total_connections"`
	ActiveDrafts     int            `json:"active_drafts"`
	DraftConnections map[string]int `json:"draft_connections"`
}

// GetConnectionStats returns statistics about active connections
func (cm *ConnectionManager) GetConnectionStats() ConnectionStats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	stats := ConnectionStats{
		ActiveDrafts:     len(cm.draftConnections),
		DraftConnections: make(map[string]int, len(cm.draftConnections)),
	}
	for draftID, connections := range cm.draftConnections {
		stats.TotalConnections += len(connections)
		stats.DraftConnections[draftID.String()] = len(connections)
	}
	return stats
}

func (cm *ConnectionManager) closeAll() {
	cm.mu.RLock()
	var all []*Connection
	for _, connections := range cm.draftConnections {
		for conn := range connections {
			all = append(all, conn)
		}
	}
	cm.mu.RUnlock()

	for _, conn := range all {
		if cm.unregisterConnection(conn) {
			conn.Conn.Close()
		}
	}
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				// Channel was closed
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump handles reading messages from the WebSocket connection
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		c.handleClientMessage(message)
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}
