package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain"
	loyaltyDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/loyalty"
)

// GradeModel is the GORM model for the loyalty_grades table. One row per
// client, keyed by client ID.
type GradeModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;not null"`
	ClientID     uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Tier         string     `gorm:"not null;size:20"`
	IsOverride   bool       `gorm:"not null;default:false"`
	OverriddenBy *uuid.UUID `gorm:"type:uuid"`
	OverriddenAt *time.Time `gorm:""`
	Version      int64      `gorm:"not null;default:1"`
	CreatedAt    time.Time  `gorm:"not null"`
	UpdatedAt    time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (GradeModel) TableName() string {
	return "loyalty_grades"
}

// GormGradeRepository is the GORM-based implementation of GradeRepository.
type GormGradeRepository struct {
	db *gorm.DB
}

// NewGormGradeRepository creates a new GormGradeRepository.
func NewGormGradeRepository(db *gorm.DB) *GormGradeRepository {
	return &GormGradeRepository{db: db}
}

// FindByClientID retrieves a client's grade.
func (r *GormGradeRepository) FindByClientID(ctx context.Context, clientID uuid.UUID) (*loyaltyDomain.Grade, error) {
	var model GradeModel
	if err := r.db.WithContext(ctx).Where("client_id = ?", clientID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("LoyaltyGrade", clientID.String())
		}
		return nil, fmt.Errorf("failed to find loyalty grade: %w", err)
	}
	return toDomainGrade(&model), nil
}

// Upsert inserts or replaces the client's grade row.
func (r *GormGradeRepository) Upsert(ctx context.Context, grade *loyaltyDomain.Grade) error {
	model := toGradeModel(grade)
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "client_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"tier", "is_override", "overridden_by", "overridden_at", "version", "updated_at",
		}),
	}).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to upsert loyalty grade: %w", err)
	}
	return nil
}

func toGradeModel(g *loyaltyDomain.Grade) GradeModel {
	return GradeModel{
		ID:           g.ID(),
		ClientID:     g.ClientID(),
		Tier:         string(g.Tier()),
		IsOverride:   g.IsOverride(),
		OverriddenBy: g.OverriddenBy(),
		OverriddenAt: g.OverriddenAt(),
		Version:      g.Version(),
		CreatedAt:    g.CreatedAt(),
		UpdatedAt:    g.UpdatedAt(),
	}
}

func toDomainGrade(m *GradeModel) *loyaltyDomain.Grade {
	return loyaltyDomain.Reconstruct(
		m.ID,
		m.ClientID,
		loyaltyDomain.Tier(m.Tier),
		m.IsOverride,
		m.OverriddenBy,
		m.OverriddenAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
