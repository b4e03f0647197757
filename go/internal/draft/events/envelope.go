package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of draft event
type EventType string

const (
	EventTypeDraftState        EventType = "DraftState"
	EventTypeTimerTick         EventType = "TimerTick"
	EventTypePickMade          EventType = "PickMade"
	EventTypePickStarted       EventType = "PickStarted"
	EventTypeDraftStarted      EventType = "DraftStarted"
	EventTypeDraftPaused       EventType = "DraftPaused"
	EventTypeDraftResumed      EventType = "DraftResumed"
	EventTypeDraftCompleted    EventType = "DraftCompleted"
	EventTypeDraftHalted       EventType = "DraftHalted"
	EventTypeChatPosted        EventType = "ChatPosted"
	EventTypeTeamStatusChanged EventType = "TeamStatusChanged"
)

// Envelope is the base structure for all draft events. Sequence increases by one
// per event within a draft and defines delivery order.
type Envelope struct {
	ID        uuid.UUID       `json:"id"`
	DraftID   uuid.UUID       `json:"draft_id"`
	Type      EventType       `json:"type"`
	Sequence  uint64          `json:"sequence"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// New marshals payload into a new envelope.
func New(draftID uuid.UUID, seq uint64, typ EventType, at time.Time, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return Envelope{
		ID:        uuid.New(),
		DraftID:   draftID,
		Type:      typ,
		Sequence:  seq,
		Timestamp: at.UTC(),
		Data:      data,
	}, nil
}

// ParsePayload decodes event data into the payload struct for its type.
func ParsePayload(e Envelope) (any, error) {
	var payload any
	switch e.Type {
	case EventTypeDraftState:
		payload = &DraftState{}
	case EventTypeTimerTick:
		payload = &TimerTickPayload{}
	case EventTypePickMade:
		payload = &PickMadePayload{}
	case EventTypePickStarted:
		payload = &PickStartedPayload{}
	case EventTypeDraftStarted:
		payload = &DraftStartedPayload{}
	case EventTypeDraftPaused:
		payload = &DraftPausedPayload{}
	case EventTypeDraftResumed:
		payload = &DraftResumedPayload{}
	case EventTypeDraftCompleted:
		payload = &DraftCompletedPayload{}
	case EventTypeDraftHalted:
		payload = &DraftHaltedPayload{}
	case EventTypeChatPosted:
		payload = &ChatPostedPayload{}
	case EventTypeTeamStatusChanged:
		payload = &TeamStatusPayload{}
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	if err := json.Unmarshal(e.Data, payload); err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", e.Type, err)
	}
	return payload, nil
}
