package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"onboarding-ai-be/internal/constant"
	"onboarding-ai-be/internal/dto"
	"onboarding-ai-be/internal/entity"
	"onboarding-ai-be/internal/pkg/logger"
	"onboarding-ai-be/internal/repository/contract"
	"onboarding-ai-be/internal/repository/memory"
	"onboarding-ai-be/pkg/agi"
	"onboarding-ai-be/pkg/events"
	"onboarding-ai-be/pkg/extractor"
	"onboarding-ai-be/pkg/intent"
	"onboarding-ai-be/pkg/intercom"

	"github.com/google/uuid"
)

// ErrSessionNotFound signals that the referenced agent session does not
// exist or has already been torn down.
var ErrSessionNotFound = errors.New(constant.InvalidSessionMessage)

type IChatbotService interface {
	UploadDocument(ctx context.Context, filename string, data []byte) (*dto.UploadDocumentResponse, error)
	Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error)
	DeleteSession(ctx context.Context, sessionId string) error
}

// AgentRuntime is the slice of the remote agent API the service needs.
type AgentRuntime interface {
	CreateSession(ctx context.Context) (*agi.Session, error)
	AttachDocument(session *agi.Session, text string) error
	Run(ctx context.Context, session *agi.Session, prompt string) (string, error)
	Delete(ctx context.Context, session *agi.Session) error
}

// Ticketer opens support conversations for detected gaps.
type Ticketer interface {
	CreateDocGap(ctx context.Context, gap intercom.DocGap) (string, error)
}

// EventPublisher is the outward-facing event bus. Nil when the broker is not
// configured.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// chatbotService coordinates the document-QA flow: session registry, repeated
// query tracking, intent routing, agent runs, and doc-gap escalation.
type chatbotService struct {
	runtime          AgentRuntime
	ticketer         Ticketer
	sessions         *memory.AgentSessionRepository
	histories        *memory.QueryHistoryRepository
	classifier       *intent.Classifier
	escalationRepo   contract.EscalationRepository // nil when DB unconfigured
	publisherService IPublisherService
	eventPublisher   EventPublisher // nil when NATS unconfigured
	logger           logger.ILogger
}

func NewChatbotService(
	runtime AgentRuntime,
	ticketer Ticketer,
	sessions *memory.AgentSessionRepository,
	histories *memory.QueryHistoryRepository,
	classifier *intent.Classifier,
	escalationRepo contract.EscalationRepository,
	publisherService IPublisherService,
	eventPublisher EventPublisher,
	log logger.ILogger,
) IChatbotService {
	return &chatbotService{
		runtime:          runtime,
		ticketer:         ticketer,
		sessions:         sessions,
		histories:        histories,
		classifier:       classifier,
		escalationRepo:   escalationRepo,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

func (c *chatbotService) UploadDocument(ctx context.Context, filename string, data []byte) (*dto.UploadDocumentResponse, error) {
	// Extraction failure degrades to an empty document context; the agent
	// then answers from the raw prompt alone.
	text := string(data)
	if extractor.IsPDF(data) {
		text = extractor.PDFText(data)
	}

	session, err := c.runtime.CreateSession(ctx)
	if err != nil {
		c.logger.Error("chatbot", "Failed to create agent session", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	if err := c.runtime.AttachDocument(session, text); err != nil {
		// The session exists remotely but is useless without its document.
		if delErr := c.runtime.Delete(ctx, session); delErr != nil {
			c.logger.Warn("chatbot", "Failed to clean up session after attach failure", map[string]interface{}{
				"session_id": session.SessionId,
				"error":      delErr.Error(),
			})
		}
		return nil, err
	}

	c.sessions.Save(session)

	c.logger.Info("chatbot", "Document attached to new session", map[string]interface{}{
		"session_id": session.SessionId,
		"filename":   filename,
		"chars":      len(session.DocumentText()),
	})
	c.publishEvent(ctx, events.NewDocumentUploaded(session.SessionId, filename, len(session.DocumentText())))

	return &dto.UploadDocumentResponse{
		SessionId: session.SessionId,
		ViewerUrl: session.ViewerUrl,
	}, nil
}

func (c *chatbotService) Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error) {
	session, found := c.sessions.Get(req.SessionId)
	if !found {
		return nil, ErrSessionNotFound
	}

	tracker := c.histories.ForUser(req.UserId)
	tracker.Add(req.Question)
	label := c.classifier.Classify(req.UserId, req.Question)

	if label == intent.OnboardingHelp {
		return c.handleOnboardingHelp(ctx, req, tracker.CountSimilar(req.Question))
	}

	raw, err := c.runtime.Run(ctx, session, req.Question)
	if err != nil {
		c.logger.Error("chatbot", "Agent run failed", map[string]interface{}{
			"session_id": req.SessionId,
			"error":      err.Error(),
		})
		return nil, err
	}

	answer := agi.ParseAnswer(raw)
	text := answer.Text

	if answer.IsDocGap() {
		text = c.escalateDocGap(ctx, req, answer, tracker.CountSimilar(req.Question))
	}

	return &dto.AskResponse{
		Answer: text,
		Intent: label,
	}, nil
}

func (c *chatbotService) DeleteSession(ctx context.Context, sessionId string) error {
	session, found := c.sessions.Get(sessionId)
	if !found {
		// Deleting an unknown session is a no-op, not an error.
		return nil
	}

	if err := c.runtime.Delete(ctx, session); err != nil {
		c.logger.Warn("chatbot", "Remote session delete failed", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
	c.sessions.Delete(sessionId)
	c.publishEvent(ctx, events.NewSessionDeleted(sessionId))
	return nil
}

// handleOnboardingHelp short-circuits the agent: the user is visibly stuck,
// so we open a support conversation and acknowledge instead of producing yet
// another answer they already rejected.
func (c *chatbotService) handleOnboardingHelp(ctx context.Context, req *dto.AskRequest, signalCount int) (*dto.AskResponse, error) {
	gap := intercom.DocGap{
		Question:    req.Question,
		SignalCount: signalCount,
		Confidence:  "user_stuck",
	}

	conversationId, err := c.ticketer.CreateDocGap(ctx, gap)
	if err != nil {
		// The acknowledgement flow must not break on ticketing outages.
		c.logger.Error("chatbot", "Failed to open support conversation for stuck user", map[string]interface{}{
			"user_id": req.UserId,
			"error":   err.Error(),
		})
	} else {
		c.recordEscalation(ctx, req, conversationId, signalCount, nil, "user_stuck", "repeated_query")
	}

	return &dto.AskResponse{
		Answer: constant.OnboardingAcknowledgement,
		Intent: intent.OnboardingHelp,
	}, nil
}

// escalateDocGap reports a documentation gap and returns the user-facing
// message. Ticketing failures degrade the message but never fail the ask.
func (c *chatbotService) escalateDocGap(ctx context.Context, req *dto.AskRequest, answer *agi.Answer, signalCount int) string {
	gap := intercom.DocGap{
		Question:       req.Question,
		SignalCount:    signalCount,
		Sources:        answer.Sources,
		Confidence:     answer.Confidence,
		DecisionReason: answer.DecisionReason,
	}

	conversationId, err := c.ticketer.CreateDocGap(ctx, gap)
	if err != nil {
		c.logger.Error("chatbot", "Doc gap escalation failed", map[string]interface{}{
			"user_id": req.UserId,
			"error":   err.Error(),
		})
		return constant.DocGapEscalationFailed
	}

	c.recordEscalation(ctx, req, conversationId, signalCount, answer.Sources, answer.Confidence, answer.DecisionReason)

	return fmt.Sprintf(constant.DocGapEscalatedTemplate, conversationId)
}

// recordEscalation persists the audit record and fans the event out to the
// internal bus and the broker. Each leg is best effort.
func (c *chatbotService) recordEscalation(ctx context.Context, req *dto.AskRequest, conversationId string, signalCount int, sources []string, confidence, reason string) {
	escalation := &entity.Escalation{
		Id:             uuid.New(),
		UserId:         req.UserId,
		SessionId:      req.SessionId,
		Question:       req.Question,
		ConversationId: conversationId,
		SignalCount:    signalCount,
		Sources:        sources,
		Confidence:     confidence,
		DecisionReason: reason,
		CreatedAt:      time.Now(),
	}

	if c.escalationRepo != nil {
		if err := c.escalationRepo.Create(ctx, escalation); err != nil {
			c.logger.Error("chatbot", "Failed to persist escalation", map[string]interface{}{"error": err.Error()})
		}
	}

	if c.publisherService != nil {
		msg := dto.EscalationCreatedMessage{
			EscalationId:   escalation.Id,
			Question:       escalation.Question,
			ConversationId: escalation.ConversationId,
			SignalCount:    escalation.SignalCount,
			Sources:        escalation.Sources,
			Confidence:     escalation.Confidence,
			DecisionReason: escalation.DecisionReason,
			CreatedAt:      escalation.CreatedAt,
		}
		payload, err := json.Marshal(msg)
		if err == nil {
			err = c.publisherService.Publish(ctx, payload)
		}
		if err != nil {
			c.logger.Error("chatbot", "Failed to publish escalation message", map[string]interface{}{"error": err.Error()})
		}
	}

	c.publishEvent(ctx, events.NewDocGapEscalated(escalation.Question, escalation.ConversationId, escalation.SignalCount))
}

func (c *chatbotService) publishEvent(ctx context.Context, event events.Event) {
	if c.eventPublisher == nil {
		return
	}
	if err := c.eventPublisher.Publish(ctx, event); err != nil {
		c.logger.Warn("chatbot", "Event publish failed", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}
