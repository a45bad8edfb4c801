package usecase

import (
	"context"

	"hospital-records/internal/converter"
	"hospital-records/internal/delivery/dto"
	"hospital-records/internal/service"

	"github.com/sirupsen/logrus"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
)

type AuditLogUsecase interface {
	GetRecentAuditLogs(ctx context.Context, limit int) (*dto.AuditLogListResponse, error)
}

type auditLogUsecase struct {
	log          *logrus.Logger
	auditService service.AuditService
}

func NewAuditLogUsecase(log *logrus.Logger, auditService service.AuditService) AuditLogUsecase {
	return &auditLogUsecase{
		log:          log,
		auditService: auditService,
	}
}

func (u *auditLogUsecase) GetRecentAuditLogs(ctx context.Context, limit int) (*dto.AuditLogListResponse, error) {
	if limit < 1 {
		limit = defaultAuditLimit
	}
	limit = min(limit, maxAuditLimit)

	entries, err := u.auditService.Recent(limit)
	if err != nil {
		u.log.Warnf("Failed to read audit logs: %+v", err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(entries),
		Total: len(entries),
	}, nil
}
