package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain"
	petDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/pet"
)

// PetModel is the GORM model for the pets table.
type PetModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID  `gorm:"type:uuid;index;not null"`
	Name      string     `gorm:"not null;size:100"`
	Species   string     `gorm:"not null;size:10"`
	Breed     string     `gorm:"size:100"`
	BirthDate *time.Time `gorm:""`
	Gender    string     `gorm:"not null;size:10"`
	PhotoURL  string     `gorm:"size:500"`
	Notes     string     `gorm:"size:1000"`
	Version   int64      `gorm:"not null;default:1"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PetModel) TableName() string {
	return "pets"
}

// GormPetRepository is the GORM-based implementation of PetRepository.
type GormPetRepository struct {
	db *gorm.DB
}

// NewGormPetRepository creates a new GormPetRepository.
func NewGormPetRepository(db *gorm.DB) *GormPetRepository {
	return &GormPetRepository{db: db}
}

// FindByID retrieves a pet by its unique identifier.
func (r *GormPetRepository) FindByID(ctx context.Context, id uuid.UUID) (*petDomain.Pet, error) {
	var model PetModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Pet", id.String())
		}
		return nil, fmt.Errorf("failed to find pet by ID: %w", err)
	}
	return toDomainPet(&model), nil
}

// FindByIDs retrieves multiple pets in one query, keeping input order.
// A missing ID yields a not-found error naming it.
func (r *GormPetRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*petDomain.Pet, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var models []PetModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find pets by IDs: %w", err)
	}

	byID := make(map[uuid.UUID]*PetModel, len(models))
	for i := range models {
		byID[models[i].ID] = &models[i]
	}

	pets := make([]*petDomain.Pet, len(ids))
	for i, id := range ids {
		model, ok := byID[id]
		if !ok {
			return nil, domain.NewNotFoundError("Pet", id.String())
		}
		pets[i] = toDomainPet(model)
	}
	return pets, nil
}

// FindByOwnerID retrieves all pets belonging to an owner.
func (r *GormPetRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*petDomain.Pet, error) {
	var models []PetModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find pets by owner: %w", err)
	}

	pets := make([]*petDomain.Pet, len(models))
	for i := range models {
		pets[i] = toDomainPet(&models[i])
	}
	return pets, nil
}

// Save persists a new pet.
func (r *GormPetRepository) Save(ctx context.Context, p *petDomain.Pet) error {
	model := toPetModel(p)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save pet: %w", err)
	}
	return nil
}

// Update persists changes to an existing pet with optimistic locking.
func (r *GormPetRepository) Update(ctx context.Context, p *petDomain.Pet) error {
	model := toPetModel(p)
	expectedVersion := p.Version() - 1

	result := r.db.WithContext(ctx).Model(&PetModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"name":       model.Name,
			"breed":      model.Breed,
			"birth_date": model.BirthDate,
			"gender":     model.Gender,
			"photo_url":  model.PhotoURL,
			"notes":      model.Notes,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update pet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("pet was modified by another transaction")
	}
	return nil
}

// Delete removes a pet profile.
func (r *GormPetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&PetModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete pet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Pet", id.String())
	}
	return nil
}

func toPetModel(p *petDomain.Pet) PetModel {
	return PetModel{
		ID:        p.ID(),
		OwnerID:   p.OwnerID(),
		Name:      p.Name(),
		Species:   string(p.Species()),
		Breed:     p.Breed(),
		BirthDate: p.BirthDate(),
		Gender:    string(p.Gender()),
		PhotoURL:  p.PhotoURL(),
		Notes:     p.Notes(),
		Version:   p.Version(),
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
	}
}

func toDomainPet(m *PetModel) *petDomain.Pet {
	return petDomain.Reconstruct(
		m.ID,
		m.OwnerID,
		m.Name,
		petDomain.Species(m.Species),
		m.Breed,
		m.BirthDate,
		petDomain.Gender(m.Gender),
		m.PhotoURL,
		m.Notes,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
