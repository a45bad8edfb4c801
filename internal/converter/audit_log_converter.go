package converter

import (
	"hospital-records/internal/delivery/dto"
	"hospital-records/internal/domain/entity"
)

func AuditLogToResponse(entry *entity.AuditEntry) *dto.AuditLogResponse {
	if entry == nil {
		return nil
	}

	return &dto.AuditLogResponse{
		Timestamp: entry.Timestamp,
		Actor:     entry.Actor,
		Action:    entry.Action,
		Entity:    entry.Entity,
		EntityID:  entry.EntityID,
		Detail:    entry.Detail,
	}
}

func AuditLogsToResponses(entries []entity.AuditEntry) []dto.AuditLogResponse {
	responses := make([]dto.AuditLogResponse, len(entries))
	for i := range entries {
		responses[i] = *AuditLogToResponse(&entries[i])
	}
	return responses
}
