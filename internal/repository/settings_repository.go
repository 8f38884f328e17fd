package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingModel is one key/value row in the rate settings table.
type SettingModel struct {
	Key       string    `gorm:"primaryKey;size:100"`
	Value     int64     `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (SettingModel) TableName() string {
	return "rate_settings"
}

// GormSettingsRepository is the GORM-based implementation of SettingsRepository.
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository.
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// LoadStored returns the stored key/value pairs (without defaults).
func (r *GormSettingsRepository) LoadStored(ctx context.Context) (map[string]int64, error) {
	var models []SettingModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	stored := make(map[string]int64, len(models))
	for _, m := range models {
		stored[m.Key] = m.Value
	}
	return stored, nil
}

// Store upserts the given key/value pairs.
func (r *GormSettingsRepository) Store(ctx context.Context, values map[string]int64) error {
	if len(values) == 0 {
		return nil
	}

	now := time.Now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, value := range values {
			model := SettingModel{Key: key, Value: value, UpdatedAt: now}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&model).Error; err != nil {
				return fmt.Errorf("failed to store setting %s: %w", key, err)
			}
		}
		return nil
	})
}
