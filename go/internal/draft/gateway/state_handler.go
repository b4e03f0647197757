package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/livedraft/go/internal/draft/orchestrator"
	"github.com/mcdev12/livedraft/go/internal/models"
)

// DraftSummary represents a summary of an active draft
type DraftSummary struct {
	DraftID          uuid.UUID          `json:"draft_id"`
	LeagueID         uuid.UUID          `json:"league_id"`
	Status           models.DraftStatus `json:"status"`
	CurrentRound     int                `json:"current_round"`
	CurrentPick      int                `json:"current_pick"`
	TotalPicks       int                `json:"total_picks"`
	TotalTeams       int                `json:"total_teams"`
	TotalRounds      int                `json:"total_rounds"`
	OnTheClock       *uuid.UUID         `json:"on_the_clock,omitempty"`
	TimeRemainingSec int                `json:"time_remaining_sec"`
}

// StateHandler serves read-only draft state and a thin command endpoint.
type StateHandler struct {
	drafts  DraftService
	timeout time.Duration
}

func NewStateHandler(drafts DraftService, timeout time.Duration) *StateHandler {
	return &StateHandler{
		drafts:  drafts,
		timeout: timeout,
	}
}

// HandleGetDraftState handles GET /api/drafts/{id}/state
func (h *StateHandler) HandleGetDraftState(w http.ResponseWriter, r *http.Request) {
	draftID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid draft ID format", http.StatusBadRequest)
		return
	}

	state, err := h.drafts.GetState(r.Context(), draftID)
	if err != nil {
		writeError(w, draftID, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// HandleGetActiveDrafts handles GET /api/drafts/active
func (h *StateHandler) HandleGetActiveDrafts(w http.ResponseWriter, r *http.Request) {
	summaries := make([]DraftSummary, 0)
	for _, id := range h.drafts.ActiveDraftIDs() {
		st, err := h.drafts.GetState(r.Context(), id)
		if err != nil {
			// Evicted between listing and reading
			log.Debug().Err(err).Str("draft_id", id.String()).Msg("skipping draft in active list")
			continue
		}
		summaries = append(summaries, DraftSummary{
			DraftID:          st.DraftID,
			LeagueID:         st.LeagueID,
			Status:           st.Status,
			CurrentRound:     st.CurrentRound,
			CurrentPick:      st.CurrentPick,
			TotalPicks:       st.TotalPicks,
			TotalTeams:       len(st.Teams),
			TotalRounds:      st.Settings.Rounds,
			OnTheClock:       st.OnTheClock,
			TimeRemainingSec: st.TimeRemainingSec,
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

// HandleCommand handles POST /api/drafts/{id}/commands. The body is an
// orchestrator command; the draft id comes from the path.
func (h *StateHandler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	draftID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid draft ID format", http.StatusBadRequest)
		return
	}

	var cmd orchestrator.Command
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&cmd); err != nil {
		http.Error(w, "Invalid command body", http.StatusBadRequest)
		return
	}
	cmd.DraftID = draftID
	if cmd.Timestamp.IsZero() {
		cmd.Timestamp = time.Now().UTC()
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	if err := h.drafts.HandleCommand(ctx, cmd); err != nil {
		writeError(w, draftID, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// RegisterStateRoutes registers state-related HTTP routes
func (h *StateHandler) RegisterStateRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/drafts/active", h.HandleGetActiveDrafts)
	mux.HandleFunc("GET /api/drafts/{id}/state", h.HandleGetDraftState)
	mux.HandleFunc("POST /api/drafts/{id}/commands", h.HandleCommand)
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, draftID uuid.UUID, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, orchestrator.ErrDraftNotFound):
		status = http.StatusNotFound
	case errors.Is(err, orchestrator.ErrUnauthorized):
		status = http.StatusForbidden
	case orchestrator.IsRejection(err):
		status = http.StatusConflict
	default:
		log.Error().Err(err).Str("draft_id", draftID.String()).Msg("draft request failed")
	}
	writeJSON(w, status, errorResponse{Code: errorCode(err), Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
