package service

import (
	"context"
	"time"

	"onboarding-ai-be/internal/dto"
	"onboarding-ai-be/internal/pkg/logger"
	"onboarding-ai-be/internal/repository/contract"
	"onboarding-ai-be/internal/repository/specification"
)

type IAdminService interface {
	// Logs
	GetSystemLogs(ctx context.Context, page, limit int, level string) ([]*dto.LogListResponse, error)
	GetLogDetail(ctx context.Context, logId string) (*dto.LogDetailResponse, error)

	// Escalation audit trail
	GetEscalations(ctx context.Context, page, limit int, userId string) ([]*dto.GetEscalationsResponse, error)
	CountEscalations(ctx context.Context, since time.Time) (int64, error)
}

type adminService struct {
	logger         logger.ILogger
	escalationRepo contract.EscalationRepository // nil when DB unconfigured
}

func NewAdminService(log logger.ILogger, escalationRepo contract.EscalationRepository) IAdminService {
	return &adminService{
		logger:         log,
		escalationRepo: escalationRepo,
	}
}

func (s *adminService) GetSystemLogs(ctx context.Context, page, limit int, level string) ([]*dto.LogListResponse, error) {
	logs, err := s.logger.GetLogs(level, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	var res []*dto.LogListResponse
	for _, l := range logs {
		ts, _ := time.Parse(time.RFC3339, l.Timestamp)
		res = append(res, &dto.LogListResponse{
			Id:        l.Id,
			Level:     l.Level,
			Module:    l.Module,
			Message:   l.Message,
			CreatedAt: ts,
		})
	}
	return res, nil
}

func (s *adminService) GetLogDetail(ctx context.Context, logId string) (*dto.LogDetailResponse, error) {
	l, err := s.logger.GetLogById(logId)
	if err != nil {
		return nil, err
	}

	ts, _ := time.Parse(time.RFC3339, l.Timestamp)

	return &dto.LogDetailResponse{
		LogListResponse: dto.LogListResponse{
			Id:        logId,
			Level:     l.Level,
			Module:    l.Module,
			Message:   l.Message,
			CreatedAt: ts,
		},
		Details: l.Details,
	}, nil
}

func (s *adminService) GetEscalations(ctx context.Context, page, limit int, userId string) ([]*dto.GetEscalationsResponse, error) {
	if s.escalationRepo == nil {
		return []*dto.GetEscalationsResponse{}, nil
	}

	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	}
	if userId != "" {
		specs = append([]specification.Specification{specification.ByUserId{UserId: userId}}, specs...)
	}

	escalations, err := s.escalationRepo.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetEscalationsResponse, len(escalations))
	for i, e := range escalations {
		res[i] = &dto.GetEscalationsResponse{
			Id:             e.Id,
			Question:       e.Question,
			UserId:         e.UserId,
			ConversationId: e.ConversationId,
			SignalCount:    e.SignalCount,
			Sources:        e.Sources,
			Confidence:     e.Confidence,
			DecisionReason: e.DecisionReason,
			CreatedAt:      e.CreatedAt,
		}
	}
	return res, nil
}

func (s *adminService) CountEscalations(ctx context.Context, since time.Time) (int64, error) {
	if s.escalationRepo == nil {
		return 0, nil
	}
	return s.escalationRepo.Count(ctx, specification.CreatedSince{Since: since})
}
