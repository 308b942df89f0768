package events

import "time"

// Event type codes published on the bus.
const (
	TypeDocGapEscalated  = "DOC_GAP_ESCALATED"
	TypeDocumentUploaded = "DOCUMENT_UPLOADED"
	TypeSessionDeleted   = "SESSION_DELETED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DOC_GAP_ESCALATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewDocGapEscalated builds the event emitted after a documentation gap has
// been reported to the ticketing system.
func NewDocGapEscalated(question, conversationId string, signalCount int) BaseEvent {
	return BaseEvent{
		Type: TypeDocGapEscalated,
		Data: map[string]interface{}{
			"question":        question,
			"conversation_id": conversationId,
			"signal_count":    signalCount,
		},
		OccurredAt: time.Now(),
	}
}

// NewDocumentUploaded builds the event emitted when a document has been
// attached to a fresh agent session.
func NewDocumentUploaded(sessionId, filename string, chars int) BaseEvent {
	return BaseEvent{
		Type: TypeDocumentUploaded,
		Data: map[string]interface{}{
			"session_id": sessionId,
			"filename":   filename,
			"chars":      chars,
		},
		OccurredAt: time.Now(),
	}
}

// NewSessionDeleted builds the event emitted after an agent session has been
// torn down.
func NewSessionDeleted(sessionId string) BaseEvent {
	return BaseEvent{
		Type:       TypeSessionDeleted,
		Data:       map[string]interface{}{"session_id": sessionId},
		OccurredAt: time.Now(),
	}
}
