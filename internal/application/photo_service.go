package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain"
	bookingDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/booking"
	photoDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/photo"
)

// AttachPhotoRequest attaches one photo URL to a boarding stay.
type AttachPhotoRequest struct {
	PhotoURL string `json:"photo_url" binding:"required"`
	Caption  string `json:"caption"`
}

// StayPhotoDTO is the response representation of a stay photo.
type StayPhotoDTO struct {
	ID        uuid.UUID `json:"id"`
	BookingID uuid.UUID `json:"booking_id"`
	PhotoURL  string    `json:"photo_url"`
	Caption   string    `json:"caption,omitempty"`
	TakenAt   time.Time `json:"taken_at"`
}

// PhotoService lets staff attach photos to boarding stays and clients view
// photos of their own bookings.
type PhotoService struct {
	photos   photoDomain.PhotoRepository
	bookings bookingDomain.BookingRepository
	logger   *zap.Logger
}

// NewPhotoService creates a new PhotoService.
func NewPhotoService(photos photoDomain.PhotoRepository, bookings bookingDomain.BookingRepository, logger *zap.Logger) *PhotoService {
	return &PhotoService{photos: photos, bookings: bookings, logger: logger}
}

// AttachPhoto stores a photo against a boarding booking (staff).
func (s *PhotoService) AttachPhoto(ctx context.Context, staffID, bookingID uuid.UUID, req AttachPhotoRequest) (*StayPhotoDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.ServiceType() != bookingDomain.ServiceBoarding {
		return nil, domain.NewValidationError("stay photos can only be attached to boarding bookings")
	}

	p, err := photoDomain.NewStayPhoto(bookingID, staffID, req.PhotoURL, req.Caption)
	if err != nil {
		return nil, err
	}
	if err := s.photos.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save stay photo: %w", err)
	}

	dto := toStayPhotoDTO(p)
	return &dto, nil
}

// ListPhotos returns a booking's photos, oldest first. Clients only see
// photos of their own bookings.
func (s *PhotoService) ListPhotos(ctx context.Context, actorID uuid.UUID, role domain.Role, bookingID uuid.UUID) ([]StayPhotoDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if role == domain.RoleClient && !bk.IsOwnedBy(actorID) {
		return nil, domain.NewForbiddenError("booking belongs to another client")
	}

	photos, err := s.photos.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	dtos := make([]StayPhotoDTO, len(photos))
	for i, p := range photos {
		dtos[i] = toStayPhotoDTO(p)
	}
	return dtos, nil
}

func toStayPhotoDTO(p *photoDomain.StayPhoto) StayPhotoDTO {
	return StayPhotoDTO{
		ID:        p.ID(),
		BookingID: p.BookingID(),
		PhotoURL:  p.PhotoURL(),
		Caption:   p.Caption(),
		TakenAt:   p.TakenAt(),
	}
}
