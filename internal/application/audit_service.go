package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain/audit"
)

// AuditService exposes the audit trail to staff.
type AuditService struct {
	audits audit.AuditRepository
}

// NewAuditService creates a new AuditService.
func NewAuditService(audits audit.AuditRepository) *AuditService {
	return &AuditService{audits: audits}
}

// Trail returns the audit trail for one entity, newest first.
func (s *AuditService) Trail(ctx context.Context, entityType string, entityID uuid.UUID) ([]audit.Entry, error) {
	return s.audits.FindByEntity(ctx, entityType, entityID)
}
