package contract

import (
	"context"

	"onboarding-ai-be/internal/entity"
	"onboarding-ai-be/internal/repository/specification"

	"github.com/google/uuid"
)

type EscalationRepository interface {
	Create(ctx context.Context, escalation *entity.Escalation) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Escalation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Escalation, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
