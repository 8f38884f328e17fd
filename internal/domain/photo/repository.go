package photo

import (
	"context"

	"github.com/google/uuid"
)

// PhotoRepository defines the persistence contract for stay photos.
type PhotoRepository interface {
	// Save persists a new stay photo.
	Save(ctx context.Context, photo *StayPhoto) error

	// FindByBookingID returns all photos for a booking, oldest first.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*StayPhoto, error)
}
