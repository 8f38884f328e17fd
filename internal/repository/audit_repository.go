package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain"
	auditDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/audit"
)

// AuditEntryModel is the GORM model for the audit_entries table.
type AuditEntryModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ActorID    uuid.UUID `gorm:"type:uuid;index;not null"`
	ActorRole  string    `gorm:"not null;size:20"`
	EntityType string    `gorm:"not null;size:50;index:idx_audit_entity"`
	EntityID   uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_entity"`
	Action     string    `gorm:"not null;size:100"`
	Detail     string    `gorm:"size:1000"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

// TableName returns the table name for the GORM model.
func (AuditEntryModel) TableName() string {
	return "audit_entries"
}

// GormAuditRepository is the GORM-based implementation of AuditRepository.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository.
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Save persists one audit entry.
func (r *GormAuditRepository) Save(ctx context.Context, entry auditDomain.Entry) error {
	model := AuditEntryModel{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		ActorRole:  string(entry.ActorRole),
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Action:     entry.Action,
		Detail:     entry.Detail,
		CreatedAt:  entry.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save audit entry: %w", err)
	}
	return nil
}

// FindByEntity returns the audit trail for one entity, newest first.
func (r *GormAuditRepository) FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]auditDomain.Entry, error) {
	var models []AuditEntryModel
	if err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find audit entries: %w", err)
	}

	entries := make([]auditDomain.Entry, len(models))
	for i, m := range models {
		entries[i] = auditDomain.Entry{
			ID:         m.ID,
			ActorID:    m.ActorID,
			ActorRole:  domain.Role(m.ActorRole),
			EntityType: m.EntityType,
			EntityID:   m.EntityID,
			Action:     m.Action,
			Detail:     m.Detail,
			CreatedAt:  m.CreatedAt,
		}
	}
	return entries, nil
}
