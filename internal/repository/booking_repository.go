package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain"
	bookingDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Reference    string     `gorm:"uniqueIndex;not null;size:20"`
	ClientID     uuid.UUID  `gorm:"type:uuid;index;not null"`
	ServiceType  string     `gorm:"not null;size:20;index"`
	Status       string     `gorm:"not null;size:30;index"`
	StartDate    time.Time  `gorm:"not null"`
	EndDate      *time.Time `gorm:""`
	TotalCents   int64      `gorm:"not null"`
	Notes        string     `gorm:"size:1000"`
	CancelReason string     `gorm:"size:500"`
	CancelledAt  *time.Time `gorm:""`
	Version      int64      `gorm:"not null;default:1"`
	CreatedAt    time.Time  `gorm:"not null"`
	UpdatedAt    time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// BoardingDetailModel is the 1:1 detail row for a boarding booking.
type BoardingDetailModel struct {
	BookingID     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DogNightCents int64           `gorm:"not null"`
	CatNightCents int64           `gorm:"not null"`
	Grooming      json.RawMessage `gorm:"type:jsonb"`
	DropOffLeg    json.RawMessage `gorm:"type:jsonb"`
	PickUpLeg     json.RawMessage `gorm:"type:jsonb"`
	TaxiLegCents  int64           `gorm:"not null;default:0"`
}

// TableName returns the table name for the GORM model.
func (BoardingDetailModel) TableName() string {
	return "boarding_details"
}

// TaxiDetailModel is the 1:1 detail row for a pet taxi booking.
type TaxiDetailModel struct {
	BookingID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	TripType       string    `gorm:"not null;size:20"`
	PriceCents     int64     `gorm:"not null"`
	PickupAddress  string    `gorm:"size:500"`
	DropoffAddress string    `gorm:"size:500"`
}

// TableName returns the table name for the GORM model.
func (TaxiDetailModel) TableName() string {
	return "taxi_details"
}

// BookingPetModel links one pet to one booking.
type BookingPetModel struct {
	BookingID uuid.UUID `gorm:"type:uuid;primaryKey"`
	PetID     uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Position  int       `gorm:"not null"`
	Name      string    `gorm:"not null;size:100"`
	Species   string    `gorm:"not null;size:10"`
}

// TableName returns the table name for the GORM model.
func (BookingPetModel) TableName() string {
	return "booking_pets"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking with its detail and pet rows.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return r.assemble(ctx, &model)
}

// FindByReference retrieves a booking by its human-readable reference.
func (r *GormBookingRepository) FindByReference(ctx context.Context, reference string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", reference)
		}
		return nil, fmt.Errorf("failed to find booking by reference: %w", err)
	}
	return r.assemble(ctx, &model)
}

// FindByClientID retrieves bookings for a client with pagination.
func (r *GormBookingRepository) FindByClientID(ctx context.Context, clientID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("client_id = ?", clientID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count client bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find client bookings: %w", err)
	}

	bookings, err := r.assembleAll(ctx, models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// ListAll retrieves all bookings with pagination (staff).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings, err := r.assembleAll(ctx, models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status (staff).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// CountCompletedByClient returns the number of completed stays for a client.
func (r *GormBookingRepository) CountCompletedByClient(ctx context.Context, clientID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("client_id = ? AND status = ?", clientID, string(bookingDomain.StatusCompleted)).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count completed bookings: %w", err)
	}
	return count, nil
}

// Save persists the booking, its detail row and its pet links in one transaction.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("failed to save booking: %w", err)
		}

		if bk.Boarding() != nil {
			detail, err := toBoardingDetailModel(bk.ID(), bk.Boarding())
			if err != nil {
				return err
			}
			if err := tx.Create(&detail).Error; err != nil {
				return fmt.Errorf("failed to save boarding detail: %w", err)
			}
		}
		if bk.Taxi() != nil {
			detail := toTaxiDetailModel(bk.ID(), bk.Taxi())
			if err := tx.Create(&detail).Error; err != nil {
				return fmt.Errorf("failed to save taxi detail: %w", err)
			}
		}

		for i, p := range bk.Pets() {
			link := BookingPetModel{
				BookingID: bk.ID(),
				PetID:     p.PetID,
				Position:  i,
				Name:      p.Name,
				Species:   string(p.Species),
			}
			if err := tx.Create(&link).Error; err != nil {
				return fmt.Errorf("failed to save booking pet link: %w", err)
			}
		}
		return nil
	})
}

// Update persists changes to an existing booking with optimistic locking.
// Detail rows are immutable after creation; only the booking row and pet
// links change.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	expectedVersion := bk.Version() - 1

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&BookingModel{}).
			Where("id = ? AND version = ?", model.ID, expectedVersion).
			Updates(map[string]interface{}{
				"status":        model.Status,
				"total_cents":   model.TotalCents,
				"notes":         model.Notes,
				"cancel_reason": model.CancelReason,
				"cancelled_at":  model.CancelledAt,
				"version":       model.Version,
				"updated_at":    model.UpdatedAt,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update booking: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.NewConflictError("booking was modified by another transaction")
		}

		// Reconcile pet links against the aggregate roster.
		if err := tx.Where("booking_id = ?", model.ID).Delete(&BookingPetModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear booking pet links: %w", err)
		}
		for i, p := range bk.Pets() {
			link := BookingPetModel{
				BookingID: bk.ID(),
				PetID:     p.PetID,
				Position:  i,
				Name:      p.Name,
				Species:   string(p.Species),
			}
			if err := tx.Create(&link).Error; err != nil {
				return fmt.Errorf("failed to save booking pet link: %w", err)
			}
		}
		return nil
	})
}

// RemovePetLinks deletes all booking-pet links for the given pet.
func (r *GormBookingRepository) RemovePetLinks(ctx context.Context, petID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("pet_id = ?", petID).Delete(&BookingPetModel{}).Error; err != nil {
		return fmt.Errorf("failed to remove booking pet links: %w", err)
	}
	return nil
}

// --- Conversion helpers ---

func toBookingModel(bk *bookingDomain.Booking) BookingModel {
	return BookingModel{
		ID:           bk.ID(),
		Reference:    bk.Reference(),
		ClientID:     bk.ClientID(),
		ServiceType:  string(bk.ServiceType()),
		Status:       string(bk.Status()),
		StartDate:    bk.StartDate(),
		EndDate:      bk.EndDate(),
		TotalCents:   bk.TotalCents(),
		Notes:        bk.Notes(),
		CancelReason: bk.CancelReason(),
		CancelledAt:  bk.CancelledAt(),
		Version:      bk.Version(),
		CreatedAt:    bk.CreatedAt(),
		UpdatedAt:    bk.UpdatedAt(),
	}
}

func toBoardingDetailModel(bookingID uuid.UUID, d *bookingDomain.BoardingDetail) (BoardingDetailModel, error) {
	grooming, err := json.Marshal(d.Grooming)
	if err != nil {
		return BoardingDetailModel{}, fmt.Errorf("failed to marshal grooming selections: %w", err)
	}
	dropOff, err := json.Marshal(d.DropOffLeg)
	if err != nil {
		return BoardingDetailModel{}, fmt.Errorf("failed to marshal drop-off leg: %w", err)
	}
	pickUp, err := json.Marshal(d.PickUpLeg)
	if err != nil {
		return BoardingDetailModel{}, fmt.Errorf("failed to marshal pick-up leg: %w", err)
	}

	return BoardingDetailModel{
		BookingID:     bookingID,
		DogNightCents: d.DogNightCents,
		CatNightCents: d.CatNightCents,
		Grooming:      grooming,
		DropOffLeg:    dropOff,
		PickUpLeg:     pickUp,
		TaxiLegCents:  d.TaxiLegCents,
	}, nil
}

func toTaxiDetailModel(bookingID uuid.UUID, d *bookingDomain.TaxiDetail) TaxiDetailModel {
	return TaxiDetailModel{
		BookingID:      bookingID,
		TripType:       string(d.TripType),
		PriceCents:     d.PriceCents,
		PickupAddress:  d.PickupAddress,
		DropoffAddress: d.DropoffAddress,
	}
}

func (r *GormBookingRepository) assembleAll(ctx context.Context, models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := r.assemble(ctx, &models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}

func (r *GormBookingRepository) assemble(ctx context.Context, m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	var petLinks []BookingPetModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", m.ID).
		Order("position ASC").
		Find(&petLinks).Error; err != nil {
		return nil, fmt.Errorf("failed to load booking pets: %w", err)
	}
	pets := make([]bookingDomain.BookingPet, len(petLinks))
	for i, link := range petLinks {
		pets[i] = bookingDomain.BookingPet{
			PetID:   link.PetID,
			Name:    link.Name,
			Species: bookingDomain.Species(link.Species),
		}
	}

	var boarding *bookingDomain.BoardingDetail
	var taxi *bookingDomain.TaxiDetail

	switch bookingDomain.ServiceType(m.ServiceType) {
	case bookingDomain.ServiceBoarding:
		var detail BoardingDetailModel
		if err := r.db.WithContext(ctx).Where("booking_id = ?", m.ID).First(&detail).Error; err != nil {
			return nil, fmt.Errorf("failed to load boarding detail: %w", err)
		}
		boarding, err = toDomainBoardingDetail(&detail)
		if err != nil {
			return nil, err
		}
	case bookingDomain.ServicePetTaxi:
		var detail TaxiDetailModel
		if err := r.db.WithContext(ctx).Where("booking_id = ?", m.ID).First(&detail).Error; err != nil {
			return nil, fmt.Errorf("failed to load taxi detail: %w", err)
		}
		taxi = &bookingDomain.TaxiDetail{
			TripType:       bookingDomain.TaxiTripType(detail.TripType),
			PriceCents:     detail.PriceCents,
			PickupAddress:  detail.PickupAddress,
			DropoffAddress: detail.DropoffAddress,
		}
	}

	return bookingDomain.Reconstruct(
		m.ID,
		m.Reference,
		m.ClientID,
		bookingDomain.ServiceType(m.ServiceType),
		status,
		m.StartDate,
		m.EndDate,
		pets,
		boarding,
		taxi,
		m.TotalCents,
		m.Notes,
		m.CancelReason,
		m.CancelledAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBoardingDetail(m *BoardingDetailModel) (*bookingDomain.BoardingDetail, error) {
	detail := &bookingDomain.BoardingDetail{
		DogNightCents: m.DogNightCents,
		CatNightCents: m.CatNightCents,
		TaxiLegCents:  m.TaxiLegCents,
	}
	if len(m.Grooming) > 0 {
		if err := json.Unmarshal(m.Grooming, &detail.Grooming); err != nil {
			return nil, fmt.Errorf("failed to unmarshal grooming selections: %w", err)
		}
	}
	if len(m.DropOffLeg) > 0 {
		if err := json.Unmarshal(m.DropOffLeg, &detail.DropOffLeg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal drop-off leg: %w", err)
		}
	}
	if len(m.PickUpLeg) > 0 {
		if err := json.Unmarshal(m.PickUpLeg, &detail.PickUpLeg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal pick-up leg: %w", err)
		}
	}
	return detail, nil
}
