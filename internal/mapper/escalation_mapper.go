package mapper

import (
	"onboarding-ai-be/internal/entity"
	"onboarding-ai-be/internal/model"

	"gorm.io/datatypes"
)

type EscalationMapper struct{}

func NewEscalationMapper() *EscalationMapper {
	return &EscalationMapper{}
}

func (m *EscalationMapper) ToEntity(e *model.Escalation) *entity.Escalation {
	if e == nil {
		return nil
	}

	return &entity.Escalation{
		Id:             e.Id,
		UserId:         e.UserId,
		SessionId:      e.SessionId,
		Question:       e.Question,
		ConversationId: e.ConversationId,
		SignalCount:    e.SignalCount,
		Sources:        []string(e.Sources),
		Confidence:     e.Confidence,
		DecisionReason: e.DecisionReason,
		CreatedAt:      e.CreatedAt,
	}
}

func (m *EscalationMapper) ToModel(e *entity.Escalation) *model.Escalation {
	if e == nil {
		return nil
	}

	return &model.Escalation{
		Id:             e.Id,
		UserId:         e.UserId,
		SessionId:      e.SessionId,
		Question:       e.Question,
		ConversationId: e.ConversationId,
		SignalCount:    e.SignalCount,
		Sources:        datatypes.NewJSONSlice(e.Sources),
		Confidence:     e.Confidence,
		DecisionReason: e.DecisionReason,
		CreatedAt:      e.CreatedAt,
	}
}
