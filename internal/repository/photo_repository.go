package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	photoDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/photo"
)

// StayPhotoModel is the GORM model for the stay_photos table.
type StayPhotoModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID  uuid.UUID `gorm:"type:uuid;index;not null"`
	UploadedBy uuid.UUID `gorm:"type:uuid;not null"`
	PhotoURL   string    `gorm:"not null;size:500"`
	Caption    string    `gorm:"size:255"`
	TakenAt    time.Time `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (StayPhotoModel) TableName() string {
	return "stay_photos"
}

// GormPhotoRepository is the GORM-based implementation of PhotoRepository.
type GormPhotoRepository struct {
	db *gorm.DB
}

// NewGormPhotoRepository creates a new GormPhotoRepository.
func NewGormPhotoRepository(db *gorm.DB) *GormPhotoRepository {
	return &GormPhotoRepository{db: db}
}

// Save persists a new stay photo.
func (r *GormPhotoRepository) Save(ctx context.Context, p *photoDomain.StayPhoto) error {
	model := StayPhotoModel{
		ID:         p.ID(),
		BookingID:  p.BookingID(),
		UploadedBy: p.UploadedBy(),
		PhotoURL:   p.PhotoURL(),
		Caption:    p.Caption(),
		TakenAt:    p.TakenAt(),
		CreatedAt:  p.CreatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save stay photo: %w", err)
	}
	return nil
}

// FindByBookingID returns all photos for a booking, oldest first.
func (r *GormPhotoRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*photoDomain.StayPhoto, error) {
	var models []StayPhotoModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("taken_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find stay photos: %w", err)
	}

	photos := make([]*photoDomain.StayPhoto, len(models))
	for i, m := range models {
		photos[i] = photoDomain.Reconstruct(m.ID, m.BookingID, m.UploadedBy, m.PhotoURL, m.Caption, m.TakenAt, m.CreatedAt)
	}
	return photos, nil
}
