package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is an ephemeral message posted into a draft room.
type ChatMessage struct {
	ID      uuid.UUID `json:"id"`
	DraftID uuid.UUID `json:"draft_id"`
	UserID  uuid.UUID `json:"user_id"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sent_at"`
}
