package loyalty

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain"
)

// Tier is a client's loyalty classification.
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

var tierRank = map[Tier]int{
	TierBronze:   0,
	TierSilver:   1,
	TierGold:     2,
	TierPlatinum: 3,
}

// IsValid returns true if the tier is recognized.
func (t Tier) IsValid() bool {
	_, ok := tierRank[t]
	return ok
}

// String returns the string representation of the tier.
func (t Tier) String() string {
	return string(t)
}

// ParseTier converts a string to a Tier, returning an error if invalid.
func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if !t.IsValid() {
		return "", domain.NewValidationError(fmt.Sprintf("invalid loyalty tier: %s", s))
	}
	return t, nil
}

// IsUpgrade reports whether newTier ranks strictly above oldTier.
func IsUpgrade(oldTier, newTier Tier) bool {
	return tierRank[newTier] > tierRank[oldTier]
}

// Tier thresholds: a client qualifies for a tier by stay count or by total
// paid amount, whichever is reached first.
const (
	platinumStays = 20
	goldStays     = 10
	silverStays   = 3

	platinumPaidCents int64 = 500_000
	goldPaidCents     int64 = 250_000
	silverPaidCents   int64 = 100_000
)

// SuggestGrade maps a client's history to a tier. Pure and total: every input
// maps to exactly one tier.
func SuggestGrade(completedStays int64, totalPaidCents int64) Tier {
	switch {
	case completedStays >= platinumStays || totalPaidCents >= platinumPaidCents:
		return TierPlatinum
	case completedStays >= goldStays || totalPaidCents >= goldPaidCents:
		return TierGold
	case completedStays >= silverStays || totalPaidCents >= silverPaidCents:
		return TierSilver
	default:
		return TierBronze
	}
}

// Grade is the one-per-client loyalty record. An overridden grade ignores
// automatic recomputation until staff explicitly reset it.
type Grade struct {
	id           uuid.UUID
	clientID     uuid.UUID
	tier         Tier
	isOverride   bool
	overriddenBy *uuid.UUID
	overriddenAt *time.Time
	version      int64
	createdAt    time.Time
	updatedAt    time.Time
}

// NewGrade creates the initial automatic grade for a client.
func NewGrade(clientID uuid.UUID, tier Tier) (*Grade, error) {
	if clientID == uuid.Nil {
		return nil, domain.NewValidationError("client ID is required")
	}
	if !tier.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid loyalty tier: %s", tier))
	}
	now := time.Now().UTC()
	return &Grade{
		id:        uuid.New(),
		clientID:  clientID,
		tier:      tier,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Grade from persistence data (no validation).
func Reconstruct(
	id, clientID uuid.UUID,
	tier Tier,
	isOverride bool,
	overriddenBy *uuid.UUID,
	overriddenAt *time.Time,
	version int64,
	createdAt, updatedAt time.Time,
) *Grade {
	return &Grade{
		id:           id,
		clientID:     clientID,
		tier:         tier,
		isOverride:   isOverride,
		overriddenBy: overriddenBy,
		overriddenAt: overriddenAt,
		version:      version,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// --- Getters ---

func (g *Grade) ID() uuid.UUID            { return g.id }
func (g *Grade) ClientID() uuid.UUID      { return g.clientID }
func (g *Grade) Tier() Tier               { return g.tier }
func (g *Grade) IsOverride() bool         { return g.isOverride }
func (g *Grade) OverriddenBy() *uuid.UUID { return g.overriddenBy }
func (g *Grade) OverriddenAt() *time.Time { return g.overriddenAt }
func (g *Grade) Version() int64           { return g.version }
func (g *Grade) CreatedAt() time.Time     { return g.createdAt }
func (g *Grade) UpdatedAt() time.Time     { return g.updatedAt }

// --- Behavior ---

// ApplySuggestion applies an automatically computed tier. It refuses to touch
// an overridden grade and reports whether the tier actually changed.
func (g *Grade) ApplySuggestion(tier Tier) bool {
	if g.isOverride || g.tier == tier {
		return false
	}
	g.tier = tier
	g.version++
	g.updatedAt = time.Now().UTC()
	return true
}

// Override pins the tier manually. Automatic recomputation no longer applies
// until ResetToAutomatic is called.
func (g *Grade) Override(tier Tier, staffID uuid.UUID) error {
	if !tier.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid loyalty tier: %s", tier))
	}
	if staffID == uuid.Nil {
		return domain.NewValidationError("staff ID is required")
	}
	now := time.Now().UTC()
	g.tier = tier
	g.isOverride = true
	g.overriddenBy = &staffID
	g.overriddenAt = &now
	g.version++
	g.updatedAt = now
	return nil
}

// ResetToAutomatic clears the override flag and applies the given computed tier.
func (g *Grade) ResetToAutomatic(tier Tier) error {
	if !tier.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid loyalty tier: %s", tier))
	}
	g.tier = tier
	g.isOverride = false
	g.overriddenBy = nil
	g.overriddenAt = nil
	g.version++
	g.updatedAt = time.Now().UTC()
	return nil
}
