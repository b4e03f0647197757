package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/livedraft/go/internal/draft/events"
	"github.com/mcdev12/livedraft/go/internal/draft/orchestrator"
)

// EventTypeCommandRejected is sent only to the connection whose command failed.
const EventTypeCommandRejected events.EventType = "CommandRejected"

// ClientMessage is a command frame sent by a browser. The draft and user come
// from the connection, never from the frame. TeamID only selects among the
// user's own teams.
type ClientMessage struct {
	ID       string                   `json:"id,omitempty"`
	Type     orchestrator.CommandType `json:"type"`
	TeamID   uuid.UUID                `json:"team_id,omitempty"`
	PlayerID uuid.UUID                `json:"player_id,omitempty"`
	Body     string                   `json:"body,omitempty"`
	Enabled  bool                     `json:"enabled,omitempty"`
}

// CommandRejectedPayload explains why a client command was not applied.
type CommandRejectedPayload struct {
	CommandID string `json:"command_id,omitempty"`
	Code      string `json:"code"`
	Error     string `json:"error"`
}

// WebSocketHandler handles WebSocket upgrade requests for draft connections
type WebSocketHandler struct {
	connectionManager *ConnectionManager
}

func NewWebSocketHandler(cm *ConnectionManager) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
	}
}

// HandleDraftConnection handles GET /ws/draft?draft_id=...&user_id=...
// Without a user id the client joins as a spectator.
func (h *WebSocketHandler) HandleDraftConnection(w http.ResponseWriter, r *http.Request) {
	draftIDStr := r.URL.Query().Get("draft_id")
	if draftIDStr == "" {
		http.Error(w, "draft_id is required", http.StatusBadRequest)
		return
	}
	draftID, err := uuid.Parse(draftIDStr)
	if err != nil {
		http.Error(w, "invalid draft_id format", http.StatusBadRequest)
		return
	}

	userID := uuid.Nil
	if s := r.URL.Query().Get("user_id"); s != "" {
		if userID, err = uuid.Parse(s); err != nil {
			http.Error(w, "invalid user_id format", http.StatusBadRequest)
			return
		}
	}

	if err := h.connectionManager.UpgradeConnection(w, r, userID, draftID); err != nil {
		log.Error().
			Err(err).
			Str("draft_id", draftID.String()).
			Str("user_id", userID.String()).
			Msg("failed to upgrade WebSocket connection")
		// A failed Upgrade has already replied to the client
		if !errors.Is(err, errUpgradeFailed) {
			writeError(w, draftID, err)
		}
		return
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.connectionManager.GetConnectionStats())
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/draft", h.HandleDraftConnection)
	mux.HandleFunc("GET /ws/stats", h.HandleConnectionStats)
}

// handleClientMessage turns a client frame into an orchestrator command.
// Failures are reported back to this connection only.
func (c *Connection) handleClientMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil || msg.Type == "" {
		c.reject(msg.ID, "malformed", errors.New("frame is not a command"))
		return
	}
	if c.UserID == uuid.Nil {
		c.reject(msg.ID, "spectator", errors.New("spectators cannot send commands"))
		return
	}

	cmd := orchestrator.Command{
		ID:        msg.ID,
		Type:      msg.Type,
		DraftID:   c.DraftID,
		UserID:    c.UserID,
		TeamID:    msg.TeamID,
		PlayerID:  msg.PlayerID,
		Body:      msg.Body,
		Enabled:   msg.Enabled,
		Timestamp: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Manager.config.CommandTimeout)
	defer cancel()
	if err := c.Manager.drafts.HandleCommand(ctx, cmd); err != nil {
		log.Debug().
			Err(err).
			Str("connection_id", c.ID).
			Str("command", string(cmd.Type)).
			Msg("client command failed")
		c.reject(msg.ID, errorCode(err), err)
	}
}

func (c *Connection) reject(commandID, code string, err error) {
	c.Manager.sendEvent(c, EventTypeCommandRejected, 0, CommandRejectedPayload{
		CommandID: commandID,
		Code:      code,
		Error:     err.Error(),
	})
}

// errorCode maps orchestrator errors to stable client-facing codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, orchestrator.ErrOutOfTurn):
		return "out_of_turn"
	case errors.Is(err, orchestrator.ErrPlayerUnavailable):
		return "player_unavailable"
	case errors.Is(err, orchestrator.ErrSessionNotActive):
		return "not_active"
	case errors.Is(err, orchestrator.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, orchestrator.ErrUnknownTeam):
		return "unknown_team"
	case errors.Is(err, orchestrator.ErrInvalidChat):
		return "invalid_chat"
	case errors.Is(err, orchestrator.ErrDraftNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
