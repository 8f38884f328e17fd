package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain/audit"
	bookingDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/booking"
	invoiceDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/invoice"
)

// InvoiceItemRequest is one manually entered line item.
type InvoiceItemRequest struct {
	Description    string `json:"description" binding:"required"`
	Quantity       int64  `json:"quantity" binding:"required"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// CreateInvoiceRequest creates an invoice from manually entered items.
type CreateInvoiceRequest struct {
	ClientID  uuid.UUID            `json:"client_id" binding:"required"`
	BookingID *uuid.UUID           `json:"booking_id"`
	Items     []InvoiceItemRequest `json:"items" binding:"required"`
	Notes     string               `json:"notes"`
}

// PayInvoiceRequest marks an invoice paid.
type PayInvoiceRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// InvoiceDTO is the response representation of an invoice.
type InvoiceDTO struct {
	ID            uuid.UUID            `json:"id"`
	Number        string               `json:"number"`
	ClientID      uuid.UUID            `json:"client_id"`
	BookingID     *uuid.UUID           `json:"booking_id,omitempty"`
	Status        string               `json:"status"`
	AmountCents   int64                `json:"amount_cents"`
	Currency      string               `json:"currency"`
	Items         []invoiceDomain.Item `json:"items"`
	Notes         string               `json:"notes,omitempty"`
	PaymentMethod string               `json:"payment_method,omitempty"`
	IssuedAt      time.Time            `json:"issued_at"`
	PaidAt        *time.Time           `json:"paid_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// InvoiceService is the application service orchestrating invoice use cases.
type InvoiceService struct {
	invoices invoiceDomain.InvoiceRepository
	bookings bookingDomain.BookingRepository
	loyalty  *LoyaltyService
	audits   audit.AuditRepository
	logger   *zap.Logger
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(
	invoices invoiceDomain.InvoiceRepository,
	bookings bookingDomain.BookingRepository,
	loyalty *LoyaltyService,
	audits audit.AuditRepository,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoices: invoices,
		bookings: bookings,
		loyalty:  loyalty,
		audits:   audits,
		logger:   logger,
	}
}

// CreateInvoice creates a pending invoice from manually entered items. The
// amount is always derived from the items; the invoice number is assigned by
// the repository inside the insert transaction.
func (s *InvoiceService) CreateInvoice(ctx context.Context, staffID uuid.UUID, req CreateInvoiceRequest) (*InvoiceDTO, error) {
	items := make([]invoiceDomain.Item, 0, len(req.Items))
	for _, it := range req.Items {
		item, err := invoiceDomain.NewItem(it.Description, it.Quantity, it.UnitPriceCents)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	inv, err := invoiceDomain.NewInvoice(req.ClientID, req.BookingID, items, req.Notes)
	if err != nil {
		return nil, err
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, staffID, domain.RoleStaff, inv.ID(), "invoice.created", inv.Number())

	dto := toInvoiceDTO(inv)
	return &dto, nil
}

// CreateFromBooking derives an invoice from a completed booking's frozen
// detail. Rates changed after the booking was made never affect the amount.
func (s *InvoiceService) CreateFromBooking(ctx context.Context, staffID, bookingID uuid.UUID, notes string) (*InvoiceDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.Status() != bookingDomain.StatusCompleted {
		return nil, domain.NewInvalidStateError(string(bk.Status()), "invoiced")
	}

	lines, err := bk.Breakdown()
	if err != nil {
		return nil, err
	}
	items := make([]invoiceDomain.Item, 0, len(lines))
	for _, line := range lines {
		item, err := invoiceDomain.NewItem(line.Description, line.Quantity, line.UnitPriceCents)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	id := bk.ID()
	inv, err := invoiceDomain.NewInvoice(bk.ClientID(), &id, items, notes)
	if err != nil {
		return nil, err
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, staffID, domain.RoleStaff, inv.ID(), "invoice.created", fmt.Sprintf("%s from booking %s", inv.Number(), bk.Reference()))

	dto := toInvoiceDTO(inv)
	return &dto, nil
}

// MarkPaid settles a pending invoice and recomputes the owner's loyalty
// grade. A failed recompute never rolls back the payment; it is logged and
// the next payment picks it up. The actor is whoever triggered the payment:
// staff marking a cash bill paid, or the client whose gateway payment was
// captured.
func (s *InvoiceService) MarkPaid(ctx context.Context, actorID uuid.UUID, actorRole domain.Role, invoiceID uuid.UUID, paymentMethod string) (*InvoiceDTO, error) {
	inv, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := inv.MarkPaid(paymentMethod); err != nil {
		return nil, err
	}
	if err := s.invoices.Update(ctx, inv); err != nil {
		return nil, err
	}

	if err := s.loyalty.Recompute(ctx, inv.ClientID()); err != nil {
		s.logger.Error("failed to recompute loyalty grade after payment",
			zap.String("client_id", inv.ClientID().String()),
			zap.String("invoice_id", inv.ID().String()),
			zap.Error(err),
		)
	}
	s.recordAudit(ctx, actorID, actorRole, inv.ID(), "invoice.paid", paymentMethod)

	dto := toInvoiceDTO(inv)
	return &dto, nil
}

// CancelInvoice voids a pending invoice.
func (s *InvoiceService) CancelInvoice(ctx context.Context, staffID, invoiceID uuid.UUID) (*InvoiceDTO, error) {
	inv, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := inv.Cancel(); err != nil {
		return nil, err
	}
	if err := s.invoices.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, staffID, domain.RoleStaff, inv.ID(), "invoice.cancelled", inv.Number())

	dto := toInvoiceDTO(inv)
	return &dto, nil
}

// GetInvoice retrieves one invoice. Clients only see their own.
func (s *InvoiceService) GetInvoice(ctx context.Context, actorID uuid.UUID, role domain.Role, invoiceID uuid.UUID) (*InvoiceDTO, error) {
	inv, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if role == domain.RoleClient && inv.ClientID() != actorID {
		return nil, domain.NewForbiddenError("invoice belongs to another client")
	}
	dto := toInvoiceDTO(inv)
	return &dto, nil
}

// ListClientInvoices returns a client's invoices, newest first.
func (s *InvoiceService) ListClientInvoices(ctx context.Context, clientID uuid.UUID, page, limit int) (*domain.PaginatedResult[InvoiceDTO], error) {
	invoices, total, err := s.invoices.FindByClientID(ctx, clientID, page, limit)
	if err != nil {
		return nil, err
	}
	return paginateInvoices(invoices, total, page, limit), nil
}

// ListAllInvoices returns all invoices, newest first (staff).
func (s *InvoiceService) ListAllInvoices(ctx context.Context, page, limit int) (*domain.PaginatedResult[InvoiceDTO], error) {
	invoices, total, err := s.invoices.ListAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return paginateInvoices(invoices, total, page, limit), nil
}

func (s *InvoiceService) recordAudit(ctx context.Context, actorID uuid.UUID, actorRole domain.Role, invoiceID uuid.UUID, action, detail string) {
	entry := audit.NewEntry(actorID, actorRole, "invoice", invoiceID, action, detail)
	if err := s.audits.Save(ctx, entry); err != nil {
		s.logger.Error("failed to save audit entry",
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func paginateInvoices(invoices []*invoiceDomain.Invoice, total int64, page, limit int) *domain.PaginatedResult[InvoiceDTO] {
	dtos := make([]InvoiceDTO, len(invoices))
	for i, inv := range invoices {
		dtos[i] = toInvoiceDTO(inv)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result
}

func toInvoiceDTO(inv *invoiceDomain.Invoice) InvoiceDTO {
	return InvoiceDTO{
		ID:            inv.ID(),
		Number:        inv.Number(),
		ClientID:      inv.ClientID(),
		BookingID:     inv.BookingID(),
		Status:        string(inv.Status()),
		AmountCents:   inv.AmountCents(),
		Currency:      domain.CurrencyEUR,
		Items:         inv.Items(),
		Notes:         inv.Notes(),
		PaymentMethod: inv.PaymentMethod(),
		IssuedAt:      inv.IssuedAt(),
		PaidAt:        inv.PaidAt(),
		CreatedAt:     inv.CreatedAt(),
		UpdatedAt:     inv.UpdatedAt(),
	}
}
