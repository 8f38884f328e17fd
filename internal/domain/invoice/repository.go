package invoice

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceRepository defines the persistence contract for invoices.
type InvoiceRepository interface {
	// FindByID retrieves an invoice by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByClientID retrieves a client's invoices with pagination.
	FindByClientID(ctx context.Context, clientID uuid.UUID, page, limit int) ([]*Invoice, int64, error)

	// ListAll retrieves all invoices with pagination (staff).
	ListAll(ctx context.Context, page, limit int) ([]*Invoice, int64, error)

	// SumPaidByClient returns the total amount of the client's paid invoices.
	SumPaidByClient(ctx context.Context, clientID uuid.UUID) (int64, error)

	// Create assigns the next sequential invoice number and inserts the
	// invoice with its items. The per-year sequence counter is advanced in
	// the same transaction as the insert, so concurrent creations never share
	// a number and a failed insert leaves no ghost rows.
	Create(ctx context.Context, inv *Invoice) error

	// Update persists changes to an existing invoice with optimistic locking.
	Update(ctx context.Context, inv *Invoice) error
}
