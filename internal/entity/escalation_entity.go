package entity

import (
	"time"

	"github.com/google/uuid"
)

// Escalation is the audit record of one doc-gap escalation: the question
// that triggered it, why the answer was judged insufficient, and the
// ticketing conversation it produced.
type Escalation struct {
	Id             uuid.UUID
	UserId         string
	SessionId      string
	Question       string
	ConversationId string
	SignalCount    int
	Sources        []string
	Confidence     string
	DecisionReason string
	CreatedAt      time.Time
}
