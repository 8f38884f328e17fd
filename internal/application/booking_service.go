package application

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain/audit"
	bookingDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/booking"
	clientDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/client"
	petDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/pet"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/events"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/platform/kafka"
)

// GroomingRequest selects one dog for grooming during a boarding stay.
type GroomingRequest struct {
	PetID uuid.UUID `json:"pet_id" binding:"required"`
	Size  string    `json:"size" binding:"required"`
}

// TaxiLegRequest enables one pickup or drop-off ride on a boarding stay.
type TaxiLegRequest struct {
	At      *time.Time `json:"at"`
	Address string     `json:"address"`
}

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	ServiceType         string            `json:"service_type" binding:"required"`
	StartDate           time.Time         `json:"start_date" binding:"required"`
	EndDate             *time.Time        `json:"end_date"`
	PetIDs              []uuid.UUID       `json:"pet_ids" binding:"required"`
	Grooming            []GroomingRequest `json:"grooming"`
	DropOffLeg          *TaxiLegRequest   `json:"drop_off_leg"`
	PickUpLeg           *TaxiLegRequest   `json:"pick_up_leg"`
	TaxiTripType        string            `json:"taxi_trip_type"`
	PickupAddress       string            `json:"pickup_address"`
	DropoffAddress      string            `json:"dropoff_address"`
	EstimatedTotalCents *int64            `json:"estimated_total_cents"`
	Notes               string            `json:"notes"`
}

// CreateStaffBookingRequest is a staff-entered booking on a client's behalf.
type CreateStaffBookingRequest struct {
	ClientID uuid.UUID `json:"client_id" binding:"required"`
	CreateBookingRequest
}

// UpdateStatusRequest asks for one lifecycle transition.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

// ConfirmTotalRequest carries the staff-confirmed price for a booking.
type ConfirmTotalRequest struct {
	TotalCents int64 `json:"total_cents" binding:"min=0"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID           uuid.UUID                     `json:"id"`
	Reference    string                        `json:"reference"`
	ClientID     uuid.UUID                     `json:"client_id"`
	ServiceType  string                        `json:"service_type"`
	Status       string                        `json:"status"`
	StartDate    time.Time                     `json:"start_date"`
	EndDate      *time.Time                    `json:"end_date,omitempty"`
	Nights       int                           `json:"nights"`
	Pets         []bookingDomain.BookingPet    `json:"pets"`
	Boarding     *bookingDomain.BoardingDetail `json:"boarding,omitempty"`
	Taxi         *bookingDomain.TaxiDetail     `json:"taxi,omitempty"`
	Items        []bookingDomain.LineItem      `json:"items"`
	TotalCents   int64                         `json:"total_cents"`
	Currency     string                        `json:"currency"`
	Notes        string                        `json:"notes,omitempty"`
	CancelReason string                        `json:"cancel_reason,omitempty"`
	CancelledAt  *time.Time                    `json:"cancelled_at,omitempty"`
	Version      int64                         `json:"version"`
	CreatedAt    time.Time                     `json:"created_at"`
	UpdatedAt    time.Time                     `json:"updated_at"`
}

// PricingPreviewDTO is the side-effect-free quote for a prospective booking.
type PricingPreviewDTO struct {
	Items      []bookingDomain.LineItem `json:"items"`
	TotalCents int64                    `json:"total_cents"`
	Currency   string                   `json:"currency"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	bookings bookingDomain.BookingRepository
	pets     petDomain.PetRepository
	clients  clientDomain.ClientRepository
	settings *SettingsService
	audits   audit.AuditRepository
	producer EventPublisher
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.BookingRepository,
	pets petDomain.PetRepository,
	clients clientDomain.ClientRepository,
	settings *SettingsService,
	audits audit.AuditRepository,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		pets:     pets,
		clients:  clients,
		settings: settings,
		audits:   audits,
		producer: producer,
		logger:   logger,
	}
}

// CreateBooking creates a client-requested booking in status pending. The
// total is always recomputed server-side from the current rate table; a
// client-supplied estimate is only compared and logged, never trusted.
func (s *BookingService) CreateBooking(ctx context.Context, clientID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	bk, err := s.buildBooking(ctx, clientID, req, false)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.publishBookingEvent(ctx, events.TypeBookingRequested, bk, "")
	s.publishBookingEmail(ctx, "booking_requested", bk)
	s.recordAudit(ctx, clientID, domain.RoleClient, bk.ID(), "booking.created", bk.Reference())

	dto := toBookingDTO(bk)
	return &dto, nil
}

// CreateStaffBooking creates a booking on a client's behalf, directly in
// status confirmed. No notification goes out; the client was present.
func (s *BookingService) CreateStaffBooking(ctx context.Context, staffID uuid.UUID, req CreateStaffBookingRequest) (*BookingDTO, error) {
	if _, err := s.clients.FindByID(ctx, req.ClientID); err != nil {
		return nil, err
	}

	bk, err := s.buildBooking(ctx, req.ClientID, req.CreateBookingRequest, true)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.recordAudit(ctx, staffID, domain.RoleStaff, bk.ID(), "booking.created", bk.Reference())

	dto := toBookingDTO(bk)
	return &dto, nil
}

// UpdateStatus applies one lifecycle transition on behalf of the given actor.
// Side effects are keyed off the target status and run only after the
// transition has been persisted.
func (s *BookingService) UpdateStatus(ctx context.Context, actorID uuid.UUID, role domain.Role, bookingID uuid.UUID, req UpdateStatusRequest) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if role == domain.RoleClient && !bk.IsOwnedBy(actorID) {
		return nil, domain.NewForbiddenError("booking belongs to another client")
	}

	target, err := bookingDomain.ParseBookingStatus(req.Status)
	if err != nil {
		return nil, err
	}

	if err := bk.ChangeStatus(target, role, req.Reason); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	// In-progress and completed are internal milestones; only the audit log
	// records them.
	switch target {
	case bookingDomain.StatusConfirmed:
		s.publishBookingEvent(ctx, events.TypeBookingConfirmed, bk, "")
		s.publishBookingEmail(ctx, "booking_confirmed", bk)
	case bookingDomain.StatusRejected:
		s.publishBookingEvent(ctx, events.TypeBookingRejected, bk, bk.CancelReason())
		s.publishBookingEmail(ctx, "booking_rejected", bk)
	case bookingDomain.StatusCancelled:
		s.publishBookingEvent(ctx, events.TypeBookingCancelled, bk, bk.CancelReason())
		s.publishBookingEmail(ctx, "booking_cancelled", bk)
	}
	s.recordAudit(ctx, actorID, role, bk.ID(), "booking.status_changed", string(target))

	dto := toBookingDTO(bk)
	return &dto, nil
}

// SetBookingTotal lets staff replace the client-facing estimate with the
// confirmed price, e.g. after reviewing a request. The rates frozen in the
// detail row are untouched; this only changes the displayed total. Terminal
// bookings are refused.
func (s *BookingService) SetBookingTotal(ctx context.Context, staffID, bookingID uuid.UUID, totalCents int64) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.Status().IsTerminal() {
		return nil, domain.NewInvalidStateError(string(bk.Status()), "repriced")
	}

	if err := bk.SetConfirmedTotal(totalCents); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, staffID, domain.RoleStaff, bk.ID(), "booking.total_confirmed", strconv.FormatInt(totalCents, 10))

	dto := toBookingDTO(bk)
	return &dto, nil
}

// GetBooking retrieves one booking. Clients only see their own.
func (s *BookingService) GetBooking(ctx context.Context, actorID uuid.UUID, role domain.Role, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if role == domain.RoleClient && !bk.IsOwnedBy(actorID) {
		return nil, domain.NewForbiddenError("booking belongs to another client")
	}
	dto := toBookingDTO(bk)
	return &dto, nil
}

// GetBookingByReference retrieves one booking by its human-readable reference.
func (s *BookingService) GetBookingByReference(ctx context.Context, actorID uuid.UUID, role domain.Role, reference string) (*BookingDTO, error) {
	bk, err := s.bookings.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if role == domain.RoleClient && !bk.IsOwnedBy(actorID) {
		return nil, domain.NewForbiddenError("booking belongs to another client")
	}
	dto := toBookingDTO(bk)
	return &dto, nil
}

// ListClientBookings returns a client's bookings, newest first.
func (s *BookingService) ListClientBookings(ctx context.Context, clientID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookings.FindByClientID(ctx, clientID, page, limit)
	if err != nil {
		return nil, err
	}
	return paginateBookings(bookings, total, page, limit), nil
}

// ListAllBookings returns all bookings, newest first (staff).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookings.ListAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return paginateBookings(bookings, total, page, limit), nil
}

// BookingStats returns booking counts per status (staff).
func (s *BookingService) BookingStats(ctx context.Context) (map[string]int64, error) {
	return s.bookings.CountByStatus(ctx)
}

// PreviewPricing quotes a prospective booking from the current rate table
// without persisting anything.
func (s *BookingService) PreviewPricing(ctx context.Context, clientID uuid.UUID, req CreateBookingRequest) (*PricingPreviewDTO, error) {
	serviceType := bookingDomain.ServiceType(req.ServiceType)
	if !serviceType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid service type: %s", req.ServiceType))
	}

	rates, err := s.settings.CurrentRateTable(ctx)
	if err != nil {
		return nil, err
	}

	var items []bookingDomain.LineItem
	switch serviceType {
	case bookingDomain.ServicePetTaxi:
		items, err = bookingDomain.ComputeTaxiPrice(bookingDomain.TaxiTripType(req.TaxiTripType), rates)
	case bookingDomain.ServiceBoarding:
		roster, rosterErr := s.loadRoster(ctx, clientID, req.PetIDs)
		if rosterErr != nil {
			return nil, rosterErr
		}
		if req.EndDate == nil {
			return nil, domain.NewValidationError("a boarding booking requires an end date")
		}
		grooming, groomErr := groomingSizes(req.Grooming)
		if groomErr != nil {
			return nil, groomErr
		}
		items, err = bookingDomain.ComputeBoardingBreakdown(
			bookingDomain.NightsBetween(req.StartDate, *req.EndDate),
			roster,
			grooming,
			bookingDomain.TaxiLegFlags{DropOff: req.DropOffLeg != nil, PickUp: req.PickUpLeg != nil},
			rates,
		)
	}
	if err != nil {
		return nil, err
	}

	return &PricingPreviewDTO{
		Items:      items,
		TotalCents: bookingDomain.LineItemsTotal(items),
		Currency:   domain.CurrencyEUR,
	}, nil
}

// buildBooking prices the request against the current rate table, freezes the
// applied rates into a detail and constructs the aggregate.
func (s *BookingService) buildBooking(ctx context.Context, clientID uuid.UUID, req CreateBookingRequest, byStaff bool) (*bookingDomain.Booking, error) {
	serviceType := bookingDomain.ServiceType(req.ServiceType)
	if !serviceType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid service type: %s", req.ServiceType))
	}

	roster, err := s.loadRoster(ctx, clientID, req.PetIDs)
	if err != nil {
		return nil, err
	}

	rates, err := s.settings.CurrentRateTable(ctx)
	if err != nil {
		return nil, err
	}

	var (
		boarding *bookingDomain.BoardingDetail
		taxi     *bookingDomain.TaxiDetail
		items    []bookingDomain.LineItem
	)

	switch serviceType {
	case bookingDomain.ServiceBoarding:
		if req.EndDate == nil {
			return nil, domain.NewValidationError("a boarding booking requires an end date")
		}
		nights := bookingDomain.NightsBetween(req.StartDate, *req.EndDate)

		grooming, err := groomingSizes(req.Grooming)
		if err != nil {
			return nil, err
		}
		legs := bookingDomain.TaxiLegFlags{DropOff: req.DropOffLeg != nil, PickUp: req.PickUpLeg != nil}

		items, err = bookingDomain.ComputeBoardingBreakdown(nights, roster, grooming, legs, rates)
		if err != nil {
			return nil, err
		}

		dogCount := 0
		for _, p := range roster {
			if p.Species == bookingDomain.SpeciesDog {
				dogCount++
			}
		}

		selections := make([]bookingDomain.GroomingSelection, 0, len(req.Grooming))
		for _, p := range roster {
			size, ok := grooming[p.PetID]
			if !ok {
				continue
			}
			price, err := rates.GroomingRate(size)
			if err != nil {
				return nil, err
			}
			selections = append(selections, bookingDomain.GroomingSelection{
				PetID:      p.PetID,
				PetName:    p.Name,
				Size:       size,
				PriceCents: price,
			})
		}

		boarding = &bookingDomain.BoardingDetail{
			DogNightCents: rates.DogNightRate(dogCount, nights),
			CatNightCents: rates.CatNightCents,
			Grooming:      selections,
			DropOffLeg:    toTaxiLeg(req.DropOffLeg),
			PickUpLeg:     toTaxiLeg(req.PickUpLeg),
			TaxiLegCents:  rates.TaxiStandardCents,
		}

	case bookingDomain.ServicePetTaxi:
		trip := bookingDomain.TaxiTripType(req.TaxiTripType)
		items, err = bookingDomain.ComputeTaxiPrice(trip, rates)
		if err != nil {
			return nil, err
		}
		taxi = &bookingDomain.TaxiDetail{
			TripType:       trip,
			PriceCents:     items[0].TotalCents,
			PickupAddress:  req.PickupAddress,
			DropoffAddress: req.DropoffAddress,
		}
	}

	total := bookingDomain.LineItemsTotal(items)
	if req.EstimatedTotalCents != nil && *req.EstimatedTotalCents != total {
		s.logger.Warn("client estimate differs from computed total",
			zap.String("client_id", clientID.String()),
			zap.Int64("estimated_cents", *req.EstimatedTotalCents),
			zap.Int64("computed_cents", total),
		)
	}

	if byStaff {
		return bookingDomain.NewStaffBooking(clientID, serviceType, roster, req.StartDate, req.EndDate, boarding, taxi, total, req.Notes)
	}
	return bookingDomain.NewBooking(clientID, serviceType, roster, req.StartDate, req.EndDate, boarding, taxi, total, req.Notes)
}

// loadRoster resolves the pet IDs, checks ownership and maps them to booking
// pets in request order.
func (s *BookingService) loadRoster(ctx context.Context, clientID uuid.UUID, petIDs []uuid.UUID) ([]bookingDomain.BookingPet, error) {
	if len(petIDs) == 0 {
		return nil, domain.NewValidationError("a booking requires at least one pet")
	}

	pets, err := s.pets.FindByIDs(ctx, petIDs)
	if err != nil {
		return nil, err
	}

	roster := make([]bookingDomain.BookingPet, len(pets))
	for i, p := range pets {
		if !p.IsOwnedBy(clientID) {
			return nil, domain.NewForbiddenError(fmt.Sprintf("pet %s belongs to another client", p.ID()))
		}
		roster[i] = bookingDomain.BookingPet{
			PetID:   p.ID(),
			Name:    p.Name(),
			Species: bookingDomain.Species(p.Species()),
		}
	}
	return roster, nil
}

func groomingSizes(requests []GroomingRequest) (map[uuid.UUID]bookingDomain.GroomingSize, error) {
	if len(requests) == 0 {
		return nil, nil
	}
	sizes := make(map[uuid.UUID]bookingDomain.GroomingSize, len(requests))
	for _, g := range requests {
		size := bookingDomain.GroomingSize(g.Size)
		if !size.IsValid() {
			return nil, domain.NewValidationError(fmt.Sprintf("invalid grooming size: %s", g.Size))
		}
		sizes[g.PetID] = size
	}
	return sizes, nil
}

func toTaxiLeg(req *TaxiLegRequest) bookingDomain.TaxiLeg {
	if req == nil {
		return bookingDomain.TaxiLeg{}
	}
	return bookingDomain.TaxiLeg{Enabled: true, At: req.At, Address: req.Address}
}

func (s *BookingService) publishBookingEvent(ctx context.Context, eventType string, bk *bookingDomain.Booking, reason string) {
	s.publishEvent(ctx, events.TopicNotificationEvents, eventType, events.BookingEvent{
		BookingID:   bk.ID(),
		Reference:   bk.Reference(),
		ClientID:    bk.ClientID(),
		ServiceType: string(bk.ServiceType()),
		Status:      string(bk.Status()),
		TotalCents:  bk.TotalCents(),
		Currency:    domain.CurrencyEUR,
		Reason:      reason,
	})
}

func (s *BookingService) publishBookingEmail(ctx context.Context, template string, bk *bookingDomain.Booking) {
	cl, err := s.clients.FindByID(ctx, bk.ClientID())
	if err != nil {
		s.logger.Error("failed to load client for email event",
			zap.String("client_id", bk.ClientID().String()),
			zap.Error(err),
		)
		return
	}

	s.publishEvent(ctx, events.TopicNotificationEvents, events.TypeEmailRequested, events.EmailEvent{
		ClientID: cl.ID(),
		Email:    cl.Email(),
		Language: cl.Language(),
		Template: template,
		Variables: map[string]string{
			"reference":   bk.Reference(),
			"total_cents": fmt.Sprintf("%d", bk.TotalCents()),
		},
	})
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(events.Source, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func (s *BookingService) recordAudit(ctx context.Context, actorID uuid.UUID, role domain.Role, bookingID uuid.UUID, action, detail string) {
	entry := audit.NewEntry(actorID, role, "booking", bookingID, action, detail)
	if err := s.audits.Save(ctx, entry); err != nil {
		s.logger.Error("failed to save audit entry",
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func paginateBookings(bookings []*bookingDomain.Booking, total int64, page, limit int) *domain.PaginatedResult[BookingDTO] {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	items, err := bk.Breakdown()
	if err != nil {
		items = nil
	}
	return BookingDTO{
		ID:           bk.ID(),
		Reference:    bk.Reference(),
		ClientID:     bk.ClientID(),
		ServiceType:  string(bk.ServiceType()),
		Status:       string(bk.Status()),
		StartDate:    bk.StartDate(),
		EndDate:      bk.EndDate(),
		Nights:       bk.Nights(),
		Pets:         bk.Pets(),
		Boarding:     bk.Boarding(),
		Taxi:         bk.Taxi(),
		Items:        items,
		TotalCents:   bk.TotalCents(),
		Currency:     domain.CurrencyEUR,
		Notes:        bk.Notes(),
		CancelReason: bk.CancelReason(),
		CancelledAt:  bk.CancelledAt(),
		Version:      bk.Version(),
		CreatedAt:    bk.CreatedAt(),
		UpdatedAt:    bk.UpdatedAt(),
	}
}
