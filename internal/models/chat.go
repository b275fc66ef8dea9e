package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatTurn is one stored exchange in a session's history. Rows are immutable
// once written; they are only ever deleted by a session clear.
type ChatTurn struct {
	ID        uuid.UUID `json:"id"`
	SessionID string    `json:"session_id"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatRequest is the body for POST /chat. Field casing follows the existing
// frontend contract.
type ChatRequest struct {
	Language  string `json:"Language"`   //nolint:tagliatelle // API contract
	Query     string `json:"Query"`      //nolint:tagliatelle // API contract
	SessionID string `json:"Session_ID"` //nolint:tagliatelle // API contract
}

// ChatResponse is the response for POST /chat.
type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
	Timestamp string `json:"timestamp"`
}
