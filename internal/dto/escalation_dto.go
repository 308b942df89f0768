package dto

import (
	"time"

	"github.com/google/uuid"
)

// EscalationCreatedMessage is the payload published on the internal event bus
// after a doc gap has been reported to the ticketing system.
type EscalationCreatedMessage struct {
	EscalationId   uuid.UUID `json:"escalation_id"`
	Question       string    `json:"question"`
	ConversationId string    `json:"conversation_id"`
	SignalCount    int       `json:"signal_count"`
	Sources        []string  `json:"sources,omitempty"`
	Confidence     string    `json:"confidence,omitempty"`
	DecisionReason string    `json:"decision_reason,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// GetEscalationsResponse lists escalations for the admin dashboard.
type GetEscalationsResponse struct {
	Id             uuid.UUID `json:"id"`
	Question       string    `json:"question"`
	UserId         string    `json:"user_id"`
	ConversationId string    `json:"conversation_id"`
	SignalCount    int       `json:"signal_count"`
	Sources        []string  `json:"sources,omitempty"`
	Confidence     string    `json:"confidence,omitempty"`
	DecisionReason string    `json:"decision_reason,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
