package invoice

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain"
)

// InvoiceStatus represents the payment state of an invoice.
type InvoiceStatus string

const (
	StatusPending   InvoiceStatus = "pending"
	StatusPaid      InvoiceStatus = "paid"
	StatusCancelled InvoiceStatus = "cancelled"
)

// IsValid returns true if the status is a recognized invoice status.
func (s InvoiceStatus) IsValid() bool {
	return s == StatusPending || s == StatusPaid || s == StatusCancelled
}

// NumberPrefix is the human-readable invoice number prefix.
const NumberPrefix = "INV"

// FormatNumber renders a sequential invoice number, e.g. "INV-2026-000042".
func FormatNumber(year int, sequence int64) string {
	return fmt.Sprintf("%s-%d-%06d", NumberPrefix, year, sequence)
}

// Item is one priced row of an invoice. TotalCents is always
// Quantity * UnitPriceCents in integer currency units.
type Item struct {
	Description    string `json:"description"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	TotalCents     int64  `json:"total_cents"`
}

// NewItem builds an item and derives its line total.
func NewItem(description string, quantity, unitPriceCents int64) (Item, error) {
	if description == "" {
		return Item{}, domain.NewValidationError("item description is required")
	}
	if quantity <= 0 {
		return Item{}, domain.NewValidationError("item quantity must be positive")
	}
	if unitPriceCents < 0 {
		return Item{}, domain.NewValidationError("item unit price must not be negative")
	}
	return Item{
		Description:    description,
		Quantity:       quantity,
		UnitPriceCents: unitPriceCents,
		TotalCents:     quantity * unitPriceCents,
	}, nil
}

// Invoice is the aggregate root for a bill issued to a client. Its amount is
// always the sum of its item totals, never independently supplied.
type Invoice struct {
	id            uuid.UUID
	number        string
	clientID      uuid.UUID
	bookingID     *uuid.UUID
	status        InvoiceStatus
	amountCents   int64
	items         []Item
	notes         string
	paymentMethod string
	issuedAt      time.Time
	paidAt        *time.Time
	version       int64
	createdAt     time.Time
	updatedAt     time.Time
}

// NewInvoice assembles a pending invoice from the given items. The invoice
// number is assigned by the repository inside the insert transaction, so a
// fresh invoice starts without one.
func NewInvoice(clientID uuid.UUID, bookingID *uuid.UUID, items []Item, notes string) (*Invoice, error) {
	if clientID == uuid.Nil {
		return nil, domain.NewValidationError("client ID is required")
	}
	if len(items) == 0 {
		return nil, domain.NewValidationError("an invoice requires at least one item")
	}

	var amount int64
	for _, it := range items {
		if it.TotalCents != it.Quantity*it.UnitPriceCents {
			return nil, domain.NewValidationError("item total does not match quantity times unit price")
		}
		amount += it.TotalCents
	}

	now := time.Now().UTC()
	return &Invoice{
		id:          uuid.New(),
		clientID:    clientID,
		bookingID:   bookingID,
		status:      StatusPending,
		amountCents: amount,
		items:       items,
		notes:       notes,
		issuedAt:    now,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds an Invoice from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	number string,
	clientID uuid.UUID,
	bookingID *uuid.UUID,
	status InvoiceStatus,
	amountCents int64,
	items []Item,
	notes, paymentMethod string,
	issuedAt time.Time,
	paidAt *time.Time,
	version int64,
	createdAt, updatedAt time.Time,
) *Invoice {
	return &Invoice{
		id:            id,
		number:        number,
		clientID:      clientID,
		bookingID:     bookingID,
		status:        status,
		amountCents:   amountCents,
		items:         items,
		notes:         notes,
		paymentMethod: paymentMethod,
		issuedAt:      issuedAt,
		paidAt:        paidAt,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

func (i *Invoice) ID() uuid.UUID         { return i.id }
func (i *Invoice) Number() string        { return i.number }
func (i *Invoice) ClientID() uuid.UUID   { return i.clientID }
func (i *Invoice) BookingID() *uuid.UUID { return i.bookingID }
func (i *Invoice) Status() InvoiceStatus { return i.status }
func (i *Invoice) AmountCents() int64    { return i.amountCents }
func (i *Invoice) Items() []Item         { return i.items }
func (i *Invoice) Notes() string         { return i.notes }
func (i *Invoice) PaymentMethod() string { return i.paymentMethod }
func (i *Invoice) IssuedAt() time.Time   { return i.issuedAt }
func (i *Invoice) PaidAt() *time.Time    { return i.paidAt }
func (i *Invoice) Version() int64        { return i.version }
func (i *Invoice) CreatedAt() time.Time  { return i.createdAt }
func (i *Invoice) UpdatedAt() time.Time  { return i.updatedAt }

// --- Behavior ---

// AssignNumber sets the sequential number once, at insert time.
func (i *Invoice) AssignNumber(number string) error {
	if i.number != "" {
		return domain.NewConflictError("invoice number already assigned")
	}
	if number == "" {
		return domain.NewValidationError("invoice number is required")
	}
	i.number = number
	return nil
}

// MarkPaid transitions the invoice from pending to paid.
func (i *Invoice) MarkPaid(paymentMethod string) error {
	if i.status != StatusPending {
		return domain.NewInvalidStateError(string(i.status), string(StatusPaid))
	}
	if paymentMethod == "" {
		return domain.NewValidationError("payment method is required")
	}
	now := time.Now().UTC()
	i.status = StatusPaid
	i.paymentMethod = paymentMethod
	i.paidAt = &now
	i.version++
	i.updatedAt = now
	return nil
}

// Cancel transitions the invoice from pending to cancelled.
func (i *Invoice) Cancel() error {
	if i.status != StatusPending {
		return domain.NewInvalidStateError(string(i.status), string(StatusCancelled))
	}
	i.status = StatusCancelled
	i.version++
	i.updatedAt = time.Now().UTC()
	return nil
}
