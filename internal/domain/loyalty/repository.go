package loyalty

import (
	"context"

	"github.com/google/uuid"
)

// GradeRepository defines the persistence contract for loyalty grades.
// There is exactly one grade row per client, keyed by client ID.
type GradeRepository interface {
	// FindByClientID retrieves a client's grade, or a not-found error.
	FindByClientID(ctx context.Context, clientID uuid.UUID) (*Grade, error)

	// Upsert inserts or replaces the client's grade row.
	Upsert(ctx context.Context, grade *Grade) error
}
