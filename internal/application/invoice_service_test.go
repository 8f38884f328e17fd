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
	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain/audit"
	bookingDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/booking"
	clientDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/client"
	invoiceDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/invoice"
	loyaltyDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/loyalty"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/events"
)

type invoiceFixture struct {
	service  *InvoiceService
	loyalty  *LoyaltyService
	invoices *fakeInvoiceRepo
	bookings *fakeBookingRepo
	grades   *fakeGradeRepo
	producer *fakePublisher
	audits   *fakeAuditRepo
	client   *clientDomain.Client
}

func newInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()

	cl, err := clientDomain.NewClient("bob@example.com", "Bob", "", "en", "sup3rsecret")
	require.NoError(t, err)

	invoices := newFakeInvoiceRepo()
	bookings := newFakeBookingRepo()
	grades := newFakeGradeRepo()
	producer := &fakePublisher{}
	audits := &fakeAuditRepo{}

	loyalty := NewLoyaltyService(grades, bookings, invoices, newFakeClientRepo(cl), audits, producer, zap.NewNop())
	service := NewInvoiceService(invoices, bookings, loyalty, audits, zap.NewNop())

	return &invoiceFixture{
		service:  service,
		loyalty:  loyalty,
		invoices: invoices,
		bookings: bookings,
		grades:   grades,
		producer: producer,
		audits:   audits,
		client:   cl,
	}
}

// completedBoardingBooking walks a staff booking through its lifecycle to
// completed and stores it in the fake repository.
func (f *invoiceFixture) completedBoardingBooking(t *testing.T, nights int, dogNightCents int64) *bookingDomain.Booking {
	t.Helper()

	start := time.Date(2026, 5, 1, 14, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, nights)
	detail := &bookingDomain.BoardingDetail{
		DogNightCents: dogNightCents,
		CatNightCents: 2500,
		TaxiLegCents:  1500,
	}
	pets := []bookingDomain.BookingPet{{PetID: uuid.New(), Name: "Rex", Species: bookingDomain.SpeciesDog}}

	bk, err := bookingDomain.NewStaffBooking(f.client.ID(), bookingDomain.ServiceBoarding, pets, start, &end, detail, nil, int64(nights)*dogNightCents, "")
	require.NoError(t, err)
	require.NoError(t, bk.ChangeStatus(bookingDomain.StatusInProgress, domain.RoleStaff, ""))
	require.NoError(t, bk.ChangeStatus(bookingDomain.StatusCompleted, domain.RoleStaff, ""))
	require.NoError(t, f.bookings.Save(context.Background(), bk))
	return bk
}

func TestCreateFromBooking_BillsFrozenRates(t *testing.T) {
	f := newInvoiceFixture(t)
	bk := f.completedBoardingBooking(t, 4, 3000)

	result, err := f.service.CreateFromBooking(context.Background(), uuid.New(), bk.ID(), "")
	require.NoError(t, err)

	assert.Equal(t, int64(4*3000), result.AmountCents)
	assert.Equal(t, string(invoiceDomain.StatusPending), result.Status)
	require.NotNil(t, result.BookingID)
	assert.Equal(t, bk.ID(), *result.BookingID)
	assert.Contains(t, result.Number, "INV-")
}

func TestCreateFromBooking_RequiresCompletedBooking(t *testing.T) {
	f := newInvoiceFixture(t)

	start := time.Date(2026, 5, 1, 14, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 2)
	detail := &bookingDomain.BoardingDetail{DogNightCents: 3500, CatNightCents: 2500, TaxiLegCents: 1500}
	pets := []bookingDomain.BookingPet{{PetID: uuid.New(), Name: "Rex", Species: bookingDomain.SpeciesDog}}
	bk, err := bookingDomain.NewBooking(f.client.ID(), bookingDomain.ServiceBoarding, pets, start, &end, detail, nil, 7000, "")
	require.NoError(t, err)
	require.NoError(t, f.bookings.Save(context.Background(), bk))

	_, err = f.service.CreateFromBooking(context.Background(), uuid.New(), bk.ID(), "")
	require.Error(t, err)
	code, _ := domain.CodeOf(err)
	assert.Equal(t, domain.CodeInvalidState, code)
}

func TestCreateInvoice_AmountDerivedFromItems(t *testing.T) {
	f := newInvoiceFixture(t)

	result, err := f.service.CreateInvoice(context.Background(), uuid.New(), CreateInvoiceRequest{
		ClientID: f.client.ID(),
		Items: []InvoiceItemRequest{
			{Description: "Dog boarding - Rex", Quantity: 3, UnitPriceCents: 3500},
			{Description: "Grooming (large) - Rex", Quantity: 1, UnitPriceCents: 4000},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3*3500+4000), result.AmountCents)
	assert.Len(t, result.Items, 2)
}

func TestMarkPaid_RecomputesLoyalty(t *testing.T) {
	f := newInvoiceFixture(t)
	for i := 0; i < 3; i++ {
		f.completedBoardingBooking(t, 2, 3500)
	}

	created, err := f.service.CreateInvoice(context.Background(), uuid.New(), CreateInvoiceRequest{
		ClientID: f.client.ID(),
		Items:    []InvoiceItemRequest{{Description: "Dog boarding - Rex", Quantity: 2, UnitPriceCents: 3500}},
	})
	require.NoError(t, err)

	result, err := f.service.MarkPaid(context.Background(), uuid.New(), domain.RoleStaff, created.ID, "card")
	require.NoError(t, err)

	assert.Equal(t, string(invoiceDomain.StatusPaid), result.Status)
	assert.Equal(t, "card", result.PaymentMethod)
	require.NotNil(t, result.PaidAt)

	// Three completed stays earn silver, and the upgrade is announced.
	grade, err := f.grades.FindByClientID(context.Background(), f.client.ID())
	require.NoError(t, err)
	assert.Equal(t, loyaltyDomain.TierSilver, grade.Tier())
	assert.Contains(t, f.producer.typesPublished(), events.TypeLoyaltyUpgraded)
}

func TestMarkPaid_OverrideBlocksRecompute(t *testing.T) {
	f := newInvoiceFixture(t)
	for i := 0; i < 3; i++ {
		f.completedBoardingBooking(t, 2, 3500)
	}

	grade, err := loyaltyDomain.NewGrade(f.client.ID(), loyaltyDomain.TierPlatinum)
	require.NoError(t, err)
	require.NoError(t, grade.Override(loyaltyDomain.TierPlatinum, uuid.New()))
	require.NoError(t, f.grades.Upsert(context.Background(), grade))

	created, err := f.service.CreateInvoice(context.Background(), uuid.New(), CreateInvoiceRequest{
		ClientID: f.client.ID(),
		Items:    []InvoiceItemRequest{{Description: "Dog boarding - Rex", Quantity: 2, UnitPriceCents: 3500}},
	})
	require.NoError(t, err)

	_, err = f.service.MarkPaid(context.Background(), uuid.New(), domain.RoleStaff, created.ID, "card")
	require.NoError(t, err)

	stored, err := f.grades.FindByClientID(context.Background(), f.client.ID())
	require.NoError(t, err)
	assert.Equal(t, loyaltyDomain.TierPlatinum, stored.Tier())
	assert.True(t, stored.IsOverride())
	assert.NotContains(t, f.producer.typesPublished(), events.TypeLoyaltyUpgraded)
}

func TestMarkPaid_OnlyPendingInvoices(t *testing.T) {
	f := newInvoiceFixture(t)

	created, err := f.service.CreateInvoice(context.Background(), uuid.New(), CreateInvoiceRequest{
		ClientID: f.client.ID(),
		Items:    []InvoiceItemRequest{{Description: "Dog boarding - Rex", Quantity: 1, UnitPriceCents: 3500}},
	})
	require.NoError(t, err)

	_, err = f.service.MarkPaid(context.Background(), uuid.New(), domain.RoleStaff, created.ID, "card")
	require.NoError(t, err)

	_, err = f.service.MarkPaid(context.Background(), uuid.New(), domain.RoleStaff, created.ID, "cash")
	require.Error(t, err)
	code, _ := domain.CodeOf(err)
	assert.Equal(t, domain.CodeInvalidState, code)
}

func TestMarkPaid_AuditRecordsActor(t *testing.T) {
	f := newInvoiceFixture(t)

	created, err := f.service.CreateInvoice(context.Background(), uuid.New(), CreateInvoiceRequest{
		ClientID: f.client.ID(),
		Items:    []InvoiceItemRequest{{Description: "Dog boarding - Rex", Quantity: 1, UnitPriceCents: 3500}},
	})
	require.NoError(t, err)

	// A captured gateway payment is the client's act, not a staff member's.
	_, err = f.service.MarkPaid(context.Background(), f.client.ID(), domain.RoleClient, created.ID, "card")
	require.NoError(t, err)

	var paid *audit.Entry
	for i := range f.audits.entries {
		if f.audits.entries[i].Action == "invoice.paid" {
			paid = &f.audits.entries[i]
		}
	}
	require.NotNil(t, paid)
	assert.Equal(t, f.client.ID(), paid.ActorID)
	assert.Equal(t, domain.RoleClient, paid.ActorRole)
}

func TestCancelInvoice_PendingOnly(t *testing.T) {
	f := newInvoiceFixture(t)

	created, err := f.service.CreateInvoice(context.Background(), uuid.New(), CreateInvoiceRequest{
		ClientID: f.client.ID(),
		Items:    []InvoiceItemRequest{{Description: "Dog boarding - Rex", Quantity: 1, UnitPriceCents: 3500}},
	})
	require.NoError(t, err)

	result, err := f.service.CancelInvoice(context.Background(), uuid.New(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(invoiceDomain.StatusCancelled), result.Status)

	_, err = f.service.MarkPaid(context.Background(), uuid.New(), domain.RoleStaff, created.ID, "card")
	require.Error(t, err)
}

func TestGetInvoice_ClientScoped(t *testing.T) {
	f := newInvoiceFixture(t)

	created, err := f.service.CreateInvoice(context.Background(), uuid.New(), CreateInvoiceRequest{
		ClientID: f.client.ID(),
		Items:    []InvoiceItemRequest{{Description: "Dog boarding - Rex", Quantity: 1, UnitPriceCents: 3500}},
	})
	require.NoError(t, err)

	_, err = f.service.GetInvoice(context.Background(), uuid.New(), domain.RoleClient, created.ID)
	require.Error(t, err)
	code, _ := domain.CodeOf(err)
	assert.Equal(t, domain.CodeForbidden, code)

	result, err := f.service.GetInvoice(context.Background(), f.client.ID(), domain.RoleClient, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, result.ID)
}
