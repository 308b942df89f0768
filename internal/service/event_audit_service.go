package service

import (
	"context"
	"fmt"
	"strings"

	"onboarding-ai-be/internal/pkg/logger"
	"onboarding-ai-be/pkg/events"
	pktNats "onboarding-ai-be/pkg/nats"
)

// EventAuditService drains the broker stream into the structured log so
// every published event shows up in the admin log view, including events
// published by other instances.
type EventAuditService struct {
	subscriber *pktNats.Subscriber
	logger     logger.ILogger
}

func NewEventAuditService(sub *pktNats.Subscriber, log logger.ILogger) *EventAuditService {
	return &EventAuditService{
		subscriber: sub,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *EventAuditService) Start() {
	err := s.subscriber.Subscribe("onboarding.>", "event-audit-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("EventAuditService", "Failed to start event audit subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("EventAuditService", "Event audit service started, listening to onboarding.>", nil)
}

func (s *EventAuditService) handleEvent(ctx context.Context, event events.Event) error {
	// The NATS subject carries the stream prefix; strip it back to the code.
	typeCode := strings.TrimPrefix(event.EventType(), "onboarding.")

	s.logger.Info("EventAuditService", fmt.Sprintf("Event observed: %s", typeCode), event.Payload())
	return nil
}
