package pet

import (
	"context"

	"github.com/google/uuid"
)

// PetRepository defines the persistence contract for pet profiles.
type PetRepository interface {
	// FindByID retrieves a pet by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Pet, error)

	// FindByIDs retrieves multiple pets in one query, keeping input order.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Pet, error)

	// FindByOwnerID retrieves all pets belonging to an owner.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Pet, error)

	// Save persists a new pet.
	Save(ctx context.Context, pet *Pet) error

	// Update persists changes to an existing pet with optimistic locking.
	Update(ctx context.Context, pet *Pet) error

	// Delete removes a pet profile. Booking links are removed by the caller;
	// bookings themselves are never deleted with a pet.
	Delete(ctx context.Context, id uuid.UUID) error
}
