package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain"
)

// Entry is one audit log row recording who did what to which entity.
type Entry struct {
	ID         uuid.UUID   `json:"id"`
	ActorID    uuid.UUID   `json:"actor_id"`
	ActorRole  domain.Role `json:"actor_role"`
	EntityType string      `json:"entity_type"`
	EntityID   uuid.UUID   `json:"entity_id"`
	Action     string      `json:"action"`
	Detail     string      `json:"detail,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// NewEntry creates an audit entry stamped with the current time.
func NewEntry(actorID uuid.UUID, actorRole domain.Role, entityType string, entityID uuid.UUID, action, detail string) Entry {
	return Entry{
		ID:         uuid.New(),
		ActorID:    actorID,
		ActorRole:  actorRole,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Detail:     detail,
		CreatedAt:  time.Now().UTC(),
	}
}

// AuditRepository defines the persistence contract for audit entries.
type AuditRepository interface {
	// Save persists one audit entry.
	Save(ctx context.Context, entry Entry) error

	// FindByEntity returns the audit trail for one entity, newest first.
	FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]Entry, error)
}
