package booking

import (
	"context"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
// A booking and its detail/pet rows are always written in one transaction.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByReference retrieves a booking by its human-readable reference.
	FindByReference(ctx context.Context, reference string) (*Booking, error)

	// FindByClientID retrieves bookings belonging to a client with pagination.
	FindByClientID(ctx context.Context, clientID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves all bookings with pagination (staff).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (staff).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// CountCompletedByClient returns the number of completed stays for a client.
	CountCompletedByClient(ctx context.Context, clientID uuid.UUID) (int64, error)

	// Save persists a new booking together with its detail and pet links.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error

	// RemovePetLinks deletes the booking-pet links referencing the given pet
	// across all bookings, leaving the bookings themselves in place.
	RemovePetLinks(ctx context.Context, petID uuid.UUID) error
}
