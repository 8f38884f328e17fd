package client

import (
	"context"

	"github.com/google/uuid"
)

// ClientRepository defines the persistence contract for client accounts.
type ClientRepository interface {
	// FindByID retrieves a client by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// FindByEmail retrieves a client by email address.
	FindByEmail(ctx context.Context, email string) (*Client, error)

	// ListAll retrieves all clients with pagination (staff).
	ListAll(ctx context.Context, page, limit int) ([]*Client, int64, error)

	// Save persists a new client.
	Save(ctx context.Context, client *Client) error

	// Update persists changes to an existing client with optimistic locking.
	Update(ctx context.Context, client *Client) error

	// DeleteCascade removes the client together with all of their pets,
	// bookings (including details, pet links and stay photos), invoices
	// (including items), loyalty grade and audit rows. The cascade runs in a
	// single transaction: either all of it commits or none of it does.
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}
