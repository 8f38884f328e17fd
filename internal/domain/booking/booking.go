package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain"
)

const bookingReferenceChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for one service engagement, either a boarding
// stay or a standalone pet taxi trip.
type Booking struct {
	id           uuid.UUID
	reference    string
	clientID     uuid.UUID
	serviceType  ServiceType
	status       BookingStatus
	startDate    time.Time
	endDate      *time.Time
	pets         []BookingPet
	boarding     *BoardingDetail
	taxi         *TaxiDetail
	totalCents   int64
	notes        string
	cancelReason string
	cancelledAt  *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateReference creates a booking reference in the format "BK-XXXXXX".
func generateReference() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingReferenceChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking reference: %w", err)
		}
		result[i] = bookingReferenceChars[n.Int64()]
	}
	return "BK-" + string(result), nil
}

// NewBooking creates a client-requested booking in status pending.
func NewBooking(
	clientID uuid.UUID,
	serviceType ServiceType,
	pets []BookingPet,
	startDate time.Time,
	endDate *time.Time,
	boarding *BoardingDetail,
	taxi *TaxiDetail,
	totalCents int64,
	notes string,
) (*Booking, error) {
	return newBooking(clientID, serviceType, StatusPending, pets, startDate, endDate, boarding, taxi, totalCents, notes)
}

// NewStaffBooking creates a staff-entered booking directly in status confirmed.
func NewStaffBooking(
	clientID uuid.UUID,
	serviceType ServiceType,
	pets []BookingPet,
	startDate time.Time,
	endDate *time.Time,
	boarding *BoardingDetail,
	taxi *TaxiDetail,
	totalCents int64,
	notes string,
) (*Booking, error) {
	return newBooking(clientID, serviceType, StatusConfirmed, pets, startDate, endDate, boarding, taxi, totalCents, notes)
}

func newBooking(
	clientID uuid.UUID,
	serviceType ServiceType,
	status BookingStatus,
	pets []BookingPet,
	startDate time.Time,
	endDate *time.Time,
	boarding *BoardingDetail,
	taxi *TaxiDetail,
	totalCents int64,
	notes string,
) (*Booking, error) {
	if clientID == uuid.Nil {
		return nil, domain.NewValidationError("client ID is required")
	}
	if !serviceType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid service type: %s", serviceType))
	}
	if len(pets) == 0 {
		return nil, domain.NewValidationError("a booking requires at least one pet")
	}
	for _, p := range pets {
		if !p.Species.IsValid() {
			return nil, domain.NewValidationError(fmt.Sprintf("invalid species: %s", p.Species))
		}
	}
	if totalCents < 0 {
		return nil, domain.NewValidationError("total price must not be negative")
	}

	switch serviceType {
	case ServiceBoarding:
		if boarding == nil || taxi != nil {
			return nil, domain.NewValidationError("a boarding booking requires exactly a boarding detail")
		}
		if endDate == nil {
			return nil, domain.NewValidationError("a boarding booking requires an end date")
		}
		if endDate.Before(startDate) {
			return nil, domain.NewValidationError("end date must not be before start date")
		}
	case ServicePetTaxi:
		if taxi == nil || boarding != nil {
			return nil, domain.NewValidationError("a taxi booking requires exactly a taxi detail")
		}
		if !taxi.TripType.IsValid() {
			return nil, domain.NewValidationError(fmt.Sprintf("invalid taxi trip type: %s", taxi.TripType))
		}
		if endDate != nil {
			return nil, domain.NewValidationError("a taxi booking has no end date")
		}
	}

	reference, err := generateReference()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:          uuid.New(),
		reference:   reference,
		clientID:    clientID,
		serviceType: serviceType,
		status:      status,
		startDate:   startDate,
		endDate:     endDate,
		pets:        pets,
		boarding:    boarding,
		taxi:        taxi,
		totalCents:  totalCents,
		notes:       notes,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	reference string,
	clientID uuid.UUID,
	serviceType ServiceType,
	status BookingStatus,
	startDate time.Time,
	endDate *time.Time,
	pets []BookingPet,
	boarding *BoardingDetail,
	taxi *TaxiDetail,
	totalCents int64,
	notes string,
	cancelReason string,
	cancelledAt *time.Time,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:           id,
		reference:    reference,
		clientID:     clientID,
		serviceType:  serviceType,
		status:       status,
		startDate:    startDate,
		endDate:      endDate,
		pets:         pets,
		boarding:     boarding,
		taxi:         taxi,
		totalCents:   totalCents,
		notes:        notes,
		cancelReason: cancelReason,
		cancelledAt:  cancelledAt,
		version:      version,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// --- Getters ---

func (b *Booking) ID() uuid.UUID            { return b.id }
func (b *Booking) Reference() string        { return b.reference }
func (b *Booking) ClientID() uuid.UUID      { return b.clientID }
func (b *Booking) ServiceType() ServiceType { return b.serviceType }
func (b *Booking) Status() BookingStatus    { return b.status }
func (b *Booking) StartDate() time.Time     { return b.startDate }
func (b *Booking) EndDate() *time.Time      { return b.endDate }
func (b *Booking) Pets() []BookingPet       { return b.pets }
func (b *Booking) Boarding() *BoardingDetail { return b.boarding }
func (b *Booking) Taxi() *TaxiDetail        { return b.taxi }
func (b *Booking) TotalCents() int64        { return b.totalCents }
func (b *Booking) Notes() string            { return b.notes }
func (b *Booking) CancelReason() string     { return b.cancelReason }
func (b *Booking) CancelledAt() *time.Time  { return b.cancelledAt }
func (b *Booking) Version() int64           { return b.version }
func (b *Booking) CreatedAt() time.Time     { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time     { return b.updatedAt }

// Nights returns the number of charged nights: full calendar days between
// start and end date. The day of departure is not charged. Taxi bookings have
// zero nights.
func (b *Booking) Nights() int {
	if b.endDate == nil {
		return 0
	}
	return NightsBetween(b.startDate, *b.endDate)
}

// NightsBetween counts the full calendar days between two dates. Times of day
// are ignored; a same-day stay is zero nights.
func NightsBetween(start, end time.Time) int {
	return int(truncateToDay(end).Sub(truncateToDay(start)).Hours() / 24)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsOwnedBy checks if the booking belongs to the given client.
func (b *Booking) IsOwnedBy(clientID uuid.UUID) bool {
	return b.clientID == clientID
}

// --- Behavior ---

// ChangeStatus applies a status transition requested by the given actor role.
// Clients may only cancel pending or confirmed bookings; staff may set any
// other status on a non-terminal booking. A no-op update is refused so that
// side effects keyed on the target status cannot fire twice.
func (b *Booking) ChangeStatus(target BookingStatus, role domain.Role, reason string) error {
	if !target.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid booking status: %s", target))
	}
	if b.status.IsTerminal() || target == b.status {
		return domain.NewInvalidStateError(string(b.status), string(target))
	}
	if role != domain.RoleStaff && !b.status.ClientMayRequest(target) {
		return domain.NewForbiddenError("clients may only cancel a pending or confirmed booking")
	}
	if role == domain.RoleStaff && !b.status.StaffMayRequest(target) {
		return domain.NewInvalidStateError(string(b.status), string(target))
	}

	now := time.Now().UTC()
	b.status = target
	if target == StatusCancelled || target == StatusRejected {
		b.cancelReason = reason
		b.cancelledAt = &now
	}
	b.updatedAt = now
	return nil
}

// SetConfirmedTotal lets staff replace the estimate with the confirmed price.
func (b *Booking) SetConfirmedTotal(totalCents int64) error {
	if totalCents < 0 {
		return domain.NewValidationError("total price must not be negative")
	}
	b.totalCents = totalCents
	b.updatedAt = time.Now().UTC()
	return nil
}

// RemovePet drops a pet from the roster, e.g. when the pet profile is deleted.
// The booking itself survives.
func (b *Booking) RemovePet(petID uuid.UUID) {
	kept := b.pets[:0]
	for _, p := range b.pets {
		if p.PetID != petID {
			kept = append(kept, p)
		}
	}
	b.pets = kept
	b.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

// Breakdown reproduces the priced line items from the rates frozen in the
// booking's detail at creation time. Settings changes made after the booking
// was created do not affect the result; this is what invoicing bills from.
func (b *Booking) Breakdown() ([]LineItem, error) {
	switch b.serviceType {
	case ServicePetTaxi:
		if b.taxi == nil {
			return nil, domain.NewValidationError("taxi booking has no taxi detail")
		}
		return []LineItem{newLineItem(fmt.Sprintf("Pet taxi (%s)", b.taxi.TripType), 1, b.taxi.PriceCents)}, nil

	case ServiceBoarding:
		if b.boarding == nil {
			return nil, domain.NewValidationError("boarding booking has no boarding detail")
		}
		nights := int64(b.Nights())
		items := make([]LineItem, 0, len(b.pets)+len(b.boarding.Grooming)+2)
		for _, p := range b.pets {
			if p.Species == SpeciesDog {
				items = append(items, newLineItem(fmt.Sprintf("Dog boarding - %s", p.Name), nights, b.boarding.DogNightCents))
			}
		}
		for _, p := range b.pets {
			if p.Species == SpeciesCat {
				items = append(items, newLineItem(fmt.Sprintf("Cat boarding - %s", p.Name), nights, b.boarding.CatNightCents))
			}
		}
		for _, g := range b.boarding.Grooming {
			items = append(items, newLineItem(fmt.Sprintf("Grooming (%s) - %s", g.Size, g.PetName), 1, g.PriceCents))
		}
		if b.boarding.DropOffLeg.Enabled {
			items = append(items, newLineItem("Taxi drop-off", 1, b.boarding.TaxiLegCents))
		}
		if b.boarding.PickUpLeg.Enabled {
			items = append(items, newLineItem("Taxi pick-up", 1, b.boarding.TaxiLegCents))
		}
		return items, nil

	default:
		return nil, domain.NewValidationError(fmt.Sprintf("invalid service type: %s", b.serviceType))
	}
}
