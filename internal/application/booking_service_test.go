package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain"
	bookingDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/booking"
	clientDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/client"
	petDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/pet"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/events"
)

type bookingFixture struct {
	service  *BookingService
	bookings *fakeBookingRepo
	producer *fakePublisher
	audits   *fakeAuditRepo
	client   *clientDomain.Client
	dog      *petDomain.Pet
	dog2     *petDomain.Pet
	cat      *petDomain.Pet
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	cl, err := clientDomain.NewClient("anna@example.com", "Anna", "+31600000001", "en", "sup3rsecret")
	require.NoError(t, err)

	dog, err := petDomain.NewPet(cl.ID(), "Rex", petDomain.SpeciesDog, "Beagle", nil, petDomain.GenderMale, "", "")
	require.NoError(t, err)
	dog2, err := petDomain.NewPet(cl.ID(), "Bella", petDomain.SpeciesDog, "Poodle", nil, petDomain.GenderFemale, "", "")
	require.NoError(t, err)
	cat, err := petDomain.NewPet(cl.ID(), "Mia", petDomain.SpeciesCat, "", nil, petDomain.GenderFemale, "", "")
	require.NoError(t, err)

	bookings := newFakeBookingRepo()
	producer := &fakePublisher{}
	audits := &fakeAuditRepo{}
	settings := NewSettingsService(newFakeSettingsRepo(), zap.NewNop())

	service := NewBookingService(
		bookings,
		newFakePetRepo(dog, dog2, cat),
		newFakeClientRepo(cl),
		settings,
		audits,
		producer,
		zap.NewNop(),
	)

	return &bookingFixture{
		service:  service,
		bookings: bookings,
		producer: producer,
		audits:   audits,
		client:   cl,
		dog:      dog,
		dog2:     dog2,
		cat:      cat,
	}
}

func boardingRequest(petIDs []uuid.UUID, nights int) CreateBookingRequest {
	start := time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, nights)
	return CreateBookingRequest{
		ServiceType: string(bookingDomain.ServiceBoarding),
		StartDate:   start,
		EndDate:     &end,
		PetIDs:      petIDs,
	}
}

func TestCreateBooking_ComputesTotalServerSide(t *testing.T) {
	f := newBookingFixture(t)

	req := boardingRequest([]uuid.UUID{f.dog.ID()}, 5)
	badEstimate := int64(1)
	req.EstimatedTotalCents = &badEstimate

	result, err := f.service.CreateBooking(context.Background(), f.client.ID(), req)
	require.NoError(t, err)

	// 5 nights at the default single-dog rate, whatever the client claimed.
	assert.Equal(t, int64(5*3500), result.TotalCents)
	assert.Equal(t, string(bookingDomain.StatusPending), result.Status)
	require.NotNil(t, result.Boarding)
	assert.Equal(t, int64(3500), result.Boarding.DogNightCents)

	assert.Equal(t, []string{events.TypeBookingRequested, events.TypeEmailRequested}, f.producer.typesPublished())
}

func TestCreateBooking_MultiDogAndCat(t *testing.T) {
	f := newBookingFixture(t)

	req := boardingRequest([]uuid.UUID{f.dog.ID(), f.dog2.ID(), f.cat.ID()}, 3)
	result, err := f.service.CreateBooking(context.Background(), f.client.ID(), req)
	require.NoError(t, err)

	// Two dogs at the multi-dog rate plus one cat at the flat cat rate.
	assert.Equal(t, int64(2*3*3200+3*2500), result.TotalCents)
	assert.Equal(t, int64(3200), result.Boarding.DogNightCents)
	assert.Len(t, result.Items, 3)
}

func TestCreateBooking_GroomingAndLegsFrozen(t *testing.T) {
	f := newBookingFixture(t)

	req := boardingRequest([]uuid.UUID{f.dog.ID()}, 2)
	req.Grooming = []GroomingRequest{{PetID: f.dog.ID(), Size: string(bookingDomain.GroomingLarge)}}
	req.DropOffLeg = &TaxiLegRequest{Address: "Main St 1"}

	result, err := f.service.CreateBooking(context.Background(), f.client.ID(), req)
	require.NoError(t, err)

	assert.Equal(t, int64(2*3500+4000+1500), result.TotalCents)
	require.Len(t, result.Boarding.Grooming, 1)
	assert.Equal(t, int64(4000), result.Boarding.Grooming[0].PriceCents)
	assert.True(t, result.Boarding.DropOffLeg.Enabled)
	assert.False(t, result.Boarding.PickUpLeg.Enabled)
}

func TestCreateBooking_RejectsForeignPet(t *testing.T) {
	f := newBookingFixture(t)

	stranger := uuid.New()
	req := boardingRequest([]uuid.UUID{f.dog.ID()}, 2)

	_, err := f.service.CreateBooking(context.Background(), stranger, req)
	require.Error(t, err)
	code, ok := domain.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeForbidden, code)
	assert.Empty(t, f.producer.events)
}

func TestCreateStaffBooking_StartsConfirmedWithoutNotification(t *testing.T) {
	f := newBookingFixture(t)

	req := CreateStaffBookingRequest{
		ClientID:             f.client.ID(),
		CreateBookingRequest: boardingRequest([]uuid.UUID{f.dog.ID()}, 4),
	}
	result, err := f.service.CreateStaffBooking(context.Background(), uuid.New(), req)
	require.NoError(t, err)

	assert.Equal(t, string(bookingDomain.StatusConfirmed), result.Status)
	assert.Empty(t, f.producer.events)
	assert.Len(t, f.audits.entries, 1)
}

func TestUpdateStatus_ClientCannotComplete(t *testing.T) {
	f := newBookingFixture(t)

	created, err := f.service.CreateBooking(context.Background(), f.client.ID(), boardingRequest([]uuid.UUID{f.dog.ID()}, 2))
	require.NoError(t, err)
	published := len(f.producer.events)

	_, err = f.service.UpdateStatus(context.Background(), f.client.ID(), domain.RoleClient, created.ID, UpdateStatusRequest{
		Status: string(bookingDomain.StatusCompleted),
	})
	require.Error(t, err)
	code, _ := domain.CodeOf(err)
	assert.Equal(t, domain.CodeForbidden, code)

	// The refused transition left no trace.
	stored, err := f.bookings.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusPending, stored.Status())
	assert.Len(t, f.producer.events, published)
}

func TestUpdateStatus_ClientCancelsPending(t *testing.T) {
	f := newBookingFixture(t)

	created, err := f.service.CreateBooking(context.Background(), f.client.ID(), boardingRequest([]uuid.UUID{f.dog.ID()}, 2))
	require.NoError(t, err)
	f.producer.events = nil

	result, err := f.service.UpdateStatus(context.Background(), f.client.ID(), domain.RoleClient, created.ID, UpdateStatusRequest{
		Status: string(bookingDomain.StatusCancelled),
		Reason: "travel plans changed",
	})
	require.NoError(t, err)

	assert.Equal(t, string(bookingDomain.StatusCancelled), result.Status)
	assert.Equal(t, "travel plans changed", result.CancelReason)
	assert.Equal(t, []string{events.TypeBookingCancelled, events.TypeEmailRequested}, f.producer.typesPublished())
}

func TestUpdateStatus_ForeignClientForbidden(t *testing.T) {
	f := newBookingFixture(t)

	created, err := f.service.CreateBooking(context.Background(), f.client.ID(), boardingRequest([]uuid.UUID{f.dog.ID()}, 2))
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(context.Background(), uuid.New(), domain.RoleClient, created.ID, UpdateStatusRequest{
		Status: string(bookingDomain.StatusCancelled),
	})
	require.Error(t, err)
	code, _ := domain.CodeOf(err)
	assert.Equal(t, domain.CodeForbidden, code)
}

func TestUpdateStatus_NoOpRefused(t *testing.T) {
	f := newBookingFixture(t)

	created, err := f.service.CreateBooking(context.Background(), f.client.ID(), boardingRequest([]uuid.UUID{f.dog.ID()}, 2))
	require.NoError(t, err)

	staffID := uuid.New()
	_, err = f.service.UpdateStatus(context.Background(), staffID, domain.RoleStaff, created.ID, UpdateStatusRequest{
		Status: string(bookingDomain.StatusConfirmed),
	})
	require.NoError(t, err)
	f.producer.events = nil

	// Confirming a confirmed booking must not fire the side effects again.
	_, err = f.service.UpdateStatus(context.Background(), staffID, domain.RoleStaff, created.ID, UpdateStatusRequest{
		Status: string(bookingDomain.StatusConfirmed),
	})
	require.Error(t, err)
	code, _ := domain.CodeOf(err)
	assert.Equal(t, domain.CodeInvalidState, code)
	assert.Empty(t, f.producer.events)
}

func TestUpdateStatus_ConfirmSideEffects(t *testing.T) {
	f := newBookingFixture(t)

	created, err := f.service.CreateBooking(context.Background(), f.client.ID(), boardingRequest([]uuid.UUID{f.dog.ID()}, 2))
	require.NoError(t, err)
	f.producer.events = nil
	f.audits.entries = nil

	staffID := uuid.New()
	result, err := f.service.UpdateStatus(context.Background(), staffID, domain.RoleStaff, created.ID, UpdateStatusRequest{
		Status: string(bookingDomain.StatusConfirmed),
	})
	require.NoError(t, err)

	assert.Equal(t, string(bookingDomain.StatusConfirmed), result.Status)
	assert.Equal(t, []string{events.TypeBookingConfirmed, events.TypeEmailRequested}, f.producer.typesPublished())
	require.Len(t, f.audits.entries, 1)
	assert.Equal(t, "booking.status_changed", f.audits.entries[0].Action)
	assert.Equal(t, staffID, f.audits.entries[0].ActorID)
}

func TestUpdateStatus_CompletionIsAuditOnly(t *testing.T) {
	f := newBookingFixture(t)

	created, err := f.service.CreateBooking(context.Background(), f.client.ID(), boardingRequest([]uuid.UUID{f.dog.ID()}, 2))
	require.NoError(t, err)

	staffID := uuid.New()
	_, err = f.service.UpdateStatus(context.Background(), staffID, domain.RoleStaff, created.ID, UpdateStatusRequest{
		Status: string(bookingDomain.StatusConfirmed),
	})
	require.NoError(t, err)
	f.producer.events = nil
	f.audits.entries = nil

	// Neither internal milestone notifies the client.
	_, err = f.service.UpdateStatus(context.Background(), staffID, domain.RoleStaff, created.ID, UpdateStatusRequest{
		Status: string(bookingDomain.StatusInProgress),
	})
	require.NoError(t, err)

	result, err := f.service.UpdateStatus(context.Background(), staffID, domain.RoleStaff, created.ID, UpdateStatusRequest{
		Status: string(bookingDomain.StatusCompleted),
	})
	require.NoError(t, err)

	assert.Equal(t, string(bookingDomain.StatusCompleted), result.Status)
	assert.Empty(t, f.producer.events)
	require.Len(t, f.audits.entries, 2)
	assert.Equal(t, "booking.status_changed", f.audits.entries[1].Action)
	assert.Equal(t, string(bookingDomain.StatusCompleted), f.audits.entries[1].Detail)
}

func TestSetBookingTotal_ReplacesEstimate(t *testing.T) {
	f := newBookingFixture(t)

	created, err := f.service.CreateBooking(context.Background(), f.client.ID(), boardingRequest([]uuid.UUID{f.dog.ID()}, 2))
	require.NoError(t, err)
	require.Equal(t, int64(2*3500), created.TotalCents)
	f.audits.entries = nil

	staffID := uuid.New()
	result, err := f.service.SetBookingTotal(context.Background(), staffID, created.ID, 6500)
	require.NoError(t, err)

	assert.Equal(t, int64(6500), result.TotalCents)
	// The frozen detail rates are not touched by a repricing.
	assert.Equal(t, int64(3500), result.Boarding.DogNightCents)
	require.Len(t, f.audits.entries, 1)
	assert.Equal(t, "booking.total_confirmed", f.audits.entries[0].Action)
	assert.Equal(t, "6500", f.audits.entries[0].Detail)
}

func TestSetBookingTotal_TerminalBookingRefused(t *testing.T) {
	f := newBookingFixture(t)

	created, err := f.service.CreateBooking(context.Background(), f.client.ID(), boardingRequest([]uuid.UUID{f.dog.ID()}, 2))
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(context.Background(), f.client.ID(), domain.RoleClient, created.ID, UpdateStatusRequest{
		Status: string(bookingDomain.StatusCancelled),
	})
	require.NoError(t, err)

	_, err = f.service.SetBookingTotal(context.Background(), uuid.New(), created.ID, 6500)
	require.Error(t, err)
	code, _ := domain.CodeOf(err)
	assert.Equal(t, domain.CodeInvalidState, code)
}

func TestPreviewPricing_TaxiTrip(t *testing.T) {
	f := newBookingFixture(t)

	result, err := f.service.PreviewPricing(context.Background(), f.client.ID(), CreateBookingRequest{
		ServiceType:  string(bookingDomain.ServicePetTaxi),
		StartDate:    time.Now(),
		TaxiTripType: string(bookingDomain.TripVet),
		PetIDs:       []uuid.UUID{f.dog.ID()},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2000), result.TotalCents)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Pet taxi (vet)", result.Items[0].Description)
	assert.Empty(t, f.producer.events)
	assert.Empty(t, f.bookings.bookings)
}

func TestCreateBooking_TaxiHasFrozenPrice(t *testing.T) {
	f := newBookingFixture(t)

	result, err := f.service.CreateBooking(context.Background(), f.client.ID(), CreateBookingRequest{
		ServiceType:    string(bookingDomain.ServicePetTaxi),
		StartDate:      time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC),
		TaxiTripType:   string(bookingDomain.TripAirport),
		PetIDs:         []uuid.UUID{f.cat.ID()},
		PickupAddress:  "Home",
		DropoffAddress: "Airport",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5000), result.TotalCents)
	require.NotNil(t, result.Taxi)
	assert.Equal(t, int64(5000), result.Taxi.PriceCents)
	assert.Nil(t, result.Boarding)
}
