package application

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain/audit"
	bookingDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/booking"
	clientDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/client"
	invoiceDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/invoice"
	loyaltyDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/loyalty"
	petDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/pet"
	photoDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/photo"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/platform/kafka"
)

// --- In-memory repositories backing the service tests ---

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return bk, nil
}

func (r *fakeBookingRepo) FindByReference(_ context.Context, reference string) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bk := range r.bookings {
		if bk.Reference() == reference {
			return bk, nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", reference)
}

func (r *fakeBookingRepo) FindByClientID(_ context.Context, clientID uuid.UUID, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.ClientID() == clientID {
			out = append(out, bk)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*bookingDomain.Booking, 0, len(r.bookings))
	for _, bk := range r.bookings {
		out = append(out, bk)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, bk := range r.bookings {
		counts[string(bk.Status())]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) CountCompletedByClient(_ context.Context, clientID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, bk := range r.bookings {
		if bk.ClientID() == clientID && bk.Status() == bookingDomain.StatusCompleted {
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[bk.ID()] = bk
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[bk.ID()]; !ok {
		return domain.NewNotFoundError("Booking", bk.ID().String())
	}
	r.bookings[bk.ID()] = bk
	return nil
}

func (r *fakeBookingRepo) RemovePetLinks(_ context.Context, _ uuid.UUID) error {
	return nil
}

type fakePetRepo struct {
	pets map[uuid.UUID]*petDomain.Pet
}

func newFakePetRepo(pets ...*petDomain.Pet) *fakePetRepo {
	r := &fakePetRepo{pets: make(map[uuid.UUID]*petDomain.Pet)}
	for _, p := range pets {
		r.pets[p.ID()] = p
	}
	return r
}

func (r *fakePetRepo) FindByID(_ context.Context, id uuid.UUID) (*petDomain.Pet, error) {
	p, ok := r.pets[id]
	if !ok {
		return nil, domain.NewNotFoundError("Pet", id.String())
	}
	return p, nil
}

func (r *fakePetRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*petDomain.Pet, error) {
	out := make([]*petDomain.Pet, len(ids))
	for i, id := range ids {
		p, ok := r.pets[id]
		if !ok {
			return nil, domain.NewNotFoundError("Pet", id.String())
		}
		out[i] = p
	}
	return out, nil
}

func (r *fakePetRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID) ([]*petDomain.Pet, error) {
	var out []*petDomain.Pet
	for _, p := range r.pets {
		if p.OwnerID() == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePetRepo) Save(_ context.Context, p *petDomain.Pet) error {
	r.pets[p.ID()] = p
	return nil
}

func (r *fakePetRepo) Update(_ context.Context, p *petDomain.Pet) error {
	r.pets[p.ID()] = p
	return nil
}

func (r *fakePetRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.pets, id)
	return nil
}

type fakeClientRepo struct {
	clients map[uuid.UUID]*clientDomain.Client
}

func newFakeClientRepo(clients ...*clientDomain.Client) *fakeClientRepo {
	r := &fakeClientRepo{clients: make(map[uuid.UUID]*clientDomain.Client)}
	for _, cl := range clients {
		r.clients[cl.ID()] = cl
	}
	return r
}

func (r *fakeClientRepo) FindByID(_ context.Context, id uuid.UUID) (*clientDomain.Client, error) {
	cl, ok := r.clients[id]
	if !ok {
		return nil, domain.NewNotFoundError("Client", id.String())
	}
	return cl, nil
}

func (r *fakeClientRepo) FindByEmail(_ context.Context, email string) (*clientDomain.Client, error) {
	for _, cl := range r.clients {
		if cl.Email() == email {
			return cl, nil
		}
	}
	return nil, domain.NewNotFoundError("Client", email)
}

func (r *fakeClientRepo) ListAll(_ context.Context, _, _ int) ([]*clientDomain.Client, int64, error) {
	out := make([]*clientDomain.Client, 0, len(r.clients))
	for _, cl := range r.clients {
		out = append(out, cl)
	}
	return out, int64(len(out)), nil
}

func (r *fakeClientRepo) Save(_ context.Context, cl *clientDomain.Client) error {
	r.clients[cl.ID()] = cl
	return nil
}

func (r *fakeClientRepo) Update(_ context.Context, cl *clientDomain.Client) error {
	r.clients[cl.ID()] = cl
	return nil
}

func (r *fakeClientRepo) DeleteCascade(_ context.Context, id uuid.UUID) error {
	delete(r.clients, id)
	return nil
}

type fakeInvoiceRepo struct {
	invoices map[uuid.UUID]*invoiceDomain.Invoice
	nextSeq  int64
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: make(map[uuid.UUID]*invoiceDomain.Invoice)}
}

func (r *fakeInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*invoiceDomain.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, domain.NewNotFoundError("Invoice", id.String())
	}
	return inv, nil
}

func (r *fakeInvoiceRepo) FindByClientID(_ context.Context, clientID uuid.UUID, _, _ int) ([]*invoiceDomain.Invoice, int64, error) {
	var out []*invoiceDomain.Invoice
	for _, inv := range r.invoices {
		if inv.ClientID() == clientID {
			out = append(out, inv)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeInvoiceRepo) ListAll(_ context.Context, _, _ int) ([]*invoiceDomain.Invoice, int64, error) {
	out := make([]*invoiceDomain.Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		out = append(out, inv)
	}
	return out, int64(len(out)), nil
}

func (r *fakeInvoiceRepo) SumPaidByClient(_ context.Context, clientID uuid.UUID) (int64, error) {
	var sum int64
	for _, inv := range r.invoices {
		if inv.ClientID() == clientID && inv.Status() == invoiceDomain.StatusPaid {
			sum += inv.AmountCents()
		}
	}
	return sum, nil
}

func (r *fakeInvoiceRepo) Create(_ context.Context, inv *invoiceDomain.Invoice) error {
	r.nextSeq++
	if err := inv.AssignNumber(invoiceDomain.FormatNumber(inv.IssuedAt().Year(), r.nextSeq)); err != nil {
		return err
	}
	r.invoices[inv.ID()] = inv
	return nil
}

func (r *fakeInvoiceRepo) Update(_ context.Context, inv *invoiceDomain.Invoice) error {
	if _, ok := r.invoices[inv.ID()]; !ok {
		return domain.NewNotFoundError("Invoice", inv.ID().String())
	}
	r.invoices[inv.ID()] = inv
	return nil
}

type fakeGradeRepo struct {
	grades map[uuid.UUID]*loyaltyDomain.Grade
}

func newFakeGradeRepo() *fakeGradeRepo {
	return &fakeGradeRepo{grades: make(map[uuid.UUID]*loyaltyDomain.Grade)}
}

func (r *fakeGradeRepo) FindByClientID(_ context.Context, clientID uuid.UUID) (*loyaltyDomain.Grade, error) {
	g, ok := r.grades[clientID]
	if !ok {
		return nil, domain.NewNotFoundError("LoyaltyGrade", clientID.String())
	}
	return g, nil
}

func (r *fakeGradeRepo) Upsert(_ context.Context, g *loyaltyDomain.Grade) error {
	r.grades[g.ClientID()] = g
	return nil
}

type fakeSettingsRepo struct {
	stored map[string]int64
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{stored: make(map[string]int64)}
}

func (r *fakeSettingsRepo) LoadStored(_ context.Context) (map[string]int64, error) {
	out := make(map[string]int64, len(r.stored))
	for k, v := range r.stored {
		out[k] = v
	}
	return out, nil
}

func (r *fakeSettingsRepo) Store(_ context.Context, values map[string]int64) error {
	for k, v := range values {
		r.stored[k] = v
	}
	return nil
}

type fakePhotoRepo struct {
	photos []*photoDomain.StayPhoto
}

func (r *fakePhotoRepo) Save(_ context.Context, p *photoDomain.StayPhoto) error {
	r.photos = append(r.photos, p)
	return nil
}

func (r *fakePhotoRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*photoDomain.StayPhoto, error) {
	var out []*photoDomain.StayPhoto
	for _, p := range r.photos {
		if p.BookingID() == bookingID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeAuditRepo struct {
	entries []audit.Entry
}

func (r *fakeAuditRepo) Save(_ context.Context, entry audit.Entry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) FindByEntity(_ context.Context, entityType string, entityID uuid.UUID) ([]audit.Entry, error) {
	var out []audit.Entry
	for _, e := range r.entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakePublisher records every published cloud event.
type fakePublisher struct {
	events []kafka.CloudEvent
}

func (p *fakePublisher) PublishEvent(_ context.Context, _ string, event kafka.CloudEvent) error {
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) typesPublished() []string {
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}
