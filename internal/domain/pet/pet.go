package pet

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain"
)

// Species is the kind of animal the business accepts.
type Species string

const (
	SpeciesDog Species = "dog"
	SpeciesCat Species = "cat"
)

// IsValid returns true if the species is recognized.
func (s Species) IsValid() bool {
	return s == SpeciesDog || s == SpeciesCat
}

// Gender of the pet.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// IsValid returns true if the gender is recognized.
func (g Gender) IsValid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderUnknown
}

// Pet is the aggregate root for a client's pet profile.
type Pet struct {
	id        uuid.UUID
	ownerID   uuid.UUID
	name      string
	species   Species
	breed     string
	birthDate *time.Time
	gender    Gender
	photoURL  string
	notes     string
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewPet creates a new pet profile with validated fields.
func NewPet(
	ownerID uuid.UUID,
	name string,
	species Species,
	breed string,
	birthDate *time.Time,
	gender Gender,
	photoURL, notes string,
) (*Pet, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if name == "" {
		return nil, domain.NewValidationError("pet name is required")
	}
	if !species.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid species: %s", species))
	}
	if gender == "" {
		gender = GenderUnknown
	}
	if !gender.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid gender: %s", gender))
	}

	now := time.Now().UTC()
	return &Pet{
		id:        uuid.New(),
		ownerID:   ownerID,
		name:      name,
		species:   species,
		breed:     breed,
		birthDate: birthDate,
		gender:    gender,
		photoURL:  photoURL,
		notes:     notes,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Pet from persistence data (no validation).
func Reconstruct(
	id, ownerID uuid.UUID,
	name string,
	species Species,
	breed string,
	birthDate *time.Time,
	gender Gender,
	photoURL, notes string,
	version int64,
	createdAt, updatedAt time.Time,
) *Pet {
	return &Pet{
		id:        id,
		ownerID:   ownerID,
		name:      name,
		species:   species,
		breed:     breed,
		birthDate: birthDate,
		gender:    gender,
		photoURL:  photoURL,
		notes:     notes,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// --- Getters ---

func (p *Pet) ID() uuid.UUID         { return p.id }
func (p *Pet) OwnerID() uuid.UUID    { return p.ownerID }
func (p *Pet) Name() string          { return p.name }
func (p *Pet) Species() Species      { return p.species }
func (p *Pet) Breed() string         { return p.breed }
func (p *Pet) BirthDate() *time.Time { return p.birthDate }
func (p *Pet) Gender() Gender        { return p.gender }
func (p *Pet) PhotoURL() string      { return p.photoURL }
func (p *Pet) Notes() string         { return p.notes }
func (p *Pet) Version() int64        { return p.version }
func (p *Pet) CreatedAt() time.Time  { return p.createdAt }
func (p *Pet) UpdatedAt() time.Time  { return p.updatedAt }

// IsOwnedBy checks if the pet belongs to the given owner.
func (p *Pet) IsOwnedBy(ownerID uuid.UUID) bool {
	return p.ownerID == ownerID
}

// IsDog reports whether the pet is a dog.
func (p *Pet) IsDog() bool {
	return p.species == SpeciesDog
}

// Update applies partial updates to the pet profile.
func (p *Pet) Update(name, breed string, birthDate *time.Time, gender Gender, photoURL, notes string) error {
	if name != "" {
		p.name = name
	}
	if breed != "" {
		p.breed = breed
	}
	if birthDate != nil {
		p.birthDate = birthDate
	}
	if gender != "" {
		if !gender.IsValid() {
			return domain.NewValidationError(fmt.Sprintf("invalid gender: %s", gender))
		}
		p.gender = gender
	}
	if photoURL != "" {
		p.photoURL = photoURL
	}
	if notes != "" {
		p.notes = notes
	}
	p.version++
	p.updatedAt = time.Now().UTC()
	return nil
}
