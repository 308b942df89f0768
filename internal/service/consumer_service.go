// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"log"

	"onboarding-ai-be/internal/dto"
	"onboarding-ai-be/internal/pkg/mailer"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains escalation messages off the internal bus and alerts
// the docs team by email. It runs out-of-band so ticketing latency never
// shows up in the ask path.
type consumerService struct {
	pubSub        *gochannel.GoChannel
	topicName     string
	emailService  mailer.IEmailService
	docsTeamEmail string
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	emailService mailer.IEmailService,
	docsTeamEmail string,
) IConsumerService {
	return &consumerService{
		pubSub:        pubSub,
		topicName:     topicName,
		emailService:  emailService,
		docsTeamEmail: docsTeamEmail,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var payload dto.EscalationCreatedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal escalation message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if cs.docsTeamEmail == "" {
		// No recipient configured; nothing to retry.
		msg.Ack()
		return
	}

	log.Printf("[INFO] Alerting docs team about escalation %s", payload.EscalationId)

	err := cs.emailService.SendDocGapAlert(cs.docsTeamEmail, payload.Question, payload.ConversationId, payload.Sources)
	if err != nil {
		log.Printf("[ERROR] Failed to send doc gap alert for %s: %v", payload.EscalationId, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	msg.Ack()
}
