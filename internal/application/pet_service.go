package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain"
	bookingDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/booking"
	petDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/pet"
)

// CreatePetRequest holds the data needed to register a pet.
type CreatePetRequest struct {
	Name      string     `json:"name" binding:"required"`
	Species   string     `json:"species" binding:"required"`
	Breed     string     `json:"breed"`
	BirthDate *time.Time `json:"birth_date"`
	Gender    string     `json:"gender"`
	PhotoURL  string     `json:"photo_url"`
	Notes     string     `json:"notes"`
}

// UpdatePetRequest holds the editable pet fields.
type UpdatePetRequest struct {
	Name      string     `json:"name" binding:"required"`
	Breed     string     `json:"breed"`
	BirthDate *time.Time `json:"birth_date"`
	Gender    string     `json:"gender"`
	PhotoURL  string     `json:"photo_url"`
	Notes     string     `json:"notes"`
}

// PetDTO is the response representation of a pet.
type PetDTO struct {
	ID        uuid.UUID  `json:"id"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	Name      string     `json:"name"`
	Species   string     `json:"species"`
	Breed     string     `json:"breed,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Gender    string     `json:"gender"`
	PhotoURL  string     `json:"photo_url,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// PetService is the application service for pet profiles.
type PetService struct {
	pets     petDomain.PetRepository
	bookings bookingDomain.BookingRepository
	logger   *zap.Logger
}

// NewPetService creates a new PetService.
func NewPetService(pets petDomain.PetRepository, bookings bookingDomain.BookingRepository, logger *zap.Logger) *PetService {
	return &PetService{pets: pets, bookings: bookings, logger: logger}
}

// CreatePet registers a pet for the given owner.
func (s *PetService) CreatePet(ctx context.Context, ownerID uuid.UUID, req CreatePetRequest) (*PetDTO, error) {
	p, err := petDomain.NewPet(
		ownerID,
		req.Name,
		petDomain.Species(req.Species),
		req.Breed,
		req.BirthDate,
		petDomain.Gender(req.Gender),
		req.PhotoURL,
		req.Notes,
	)
	if err != nil {
		return nil, err
	}

	if err := s.pets.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save pet: %w", err)
	}

	dto := toPetDTO(p)
	return &dto, nil
}

// GetPet retrieves one pet. Clients only see their own; staff see all.
func (s *PetService) GetPet(ctx context.Context, actorID uuid.UUID, role domain.Role, petID uuid.UUID) (*PetDTO, error) {
	p, err := s.pets.FindByID(ctx, petID)
	if err != nil {
		return nil, err
	}
	if role == domain.RoleClient && !p.IsOwnedBy(actorID) {
		return nil, domain.NewForbiddenError("pet belongs to another client")
	}
	dto := toPetDTO(p)
	return &dto, nil
}

// ListOwnPets returns the caller's pets.
func (s *PetService) ListOwnPets(ctx context.Context, ownerID uuid.UUID) ([]PetDTO, error) {
	pets, err := s.pets.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	dtos := make([]PetDTO, len(pets))
	for i, p := range pets {
		dtos[i] = toPetDTO(p)
	}
	return dtos, nil
}

// UpdatePet edits a pet profile. Species is fixed at creation.
func (s *PetService) UpdatePet(ctx context.Context, actorID uuid.UUID, role domain.Role, petID uuid.UUID, req UpdatePetRequest) (*PetDTO, error) {
	p, err := s.pets.FindByID(ctx, petID)
	if err != nil {
		return nil, err
	}
	if role == domain.RoleClient && !p.IsOwnedBy(actorID) {
		return nil, domain.NewForbiddenError("pet belongs to another client")
	}

	if err := p.Update(req.Name, req.Breed, req.BirthDate, petDomain.Gender(req.Gender), req.PhotoURL, req.Notes); err != nil {
		return nil, err
	}
	if err := s.pets.Update(ctx, p); err != nil {
		return nil, err
	}

	dto := toPetDTO(p)
	return &dto, nil
}

// DeletePet removes a pet profile together with its booking links. The
// bookings themselves keep their frozen pet names and prices.
func (s *PetService) DeletePet(ctx context.Context, actorID uuid.UUID, role domain.Role, petID uuid.UUID) error {
	p, err := s.pets.FindByID(ctx, petID)
	if err != nil {
		return err
	}
	if role == domain.RoleClient && !p.IsOwnedBy(actorID) {
		return domain.NewForbiddenError("pet belongs to another client")
	}

	if err := s.bookings.RemovePetLinks(ctx, petID); err != nil {
		return err
	}
	return s.pets.Delete(ctx, petID)
}

func toPetDTO(p *petDomain.Pet) PetDTO {
	return PetDTO{
		ID:        p.ID(),
		OwnerID:   p.OwnerID(),
		Name:      p.Name(),
		Species:   string(p.Species()),
		Breed:     p.Breed(),
		BirthDate: p.BirthDate(),
		Gender:    string(p.Gender()),
		PhotoURL:  p.PhotoURL(),
		Notes:     p.Notes(),
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
	}
}
