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
	clientDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/client"
	invoiceDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/invoice"
	loyaltyDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/loyalty"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/events"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/platform/kafka"
)

// OverrideGradeRequest pins a client's loyalty tier by hand.
type OverrideGradeRequest struct {
	Tier string `json:"tier" binding:"required"`
}

// GradeDTO is the response representation of a loyalty grade.
type GradeDTO struct {
	ClientID     uuid.UUID  `json:"client_id"`
	Tier         string     `json:"tier"`
	IsOverride   bool       `json:"is_override"`
	OverriddenBy *uuid.UUID `json:"overridden_by,omitempty"`
	OverriddenAt *time.Time `json:"overridden_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// LoyaltyService manages loyalty grades: automatic recomputation after
// payments and manual staff overrides.
type LoyaltyService struct {
	grades   loyaltyDomain.GradeRepository
	bookings bookingDomain.BookingRepository
	invoices invoiceDomain.InvoiceRepository
	clients  clientDomain.ClientRepository
	audits   audit.AuditRepository
	producer EventPublisher
	logger   *zap.Logger
}

// NewLoyaltyService creates a new LoyaltyService.
func NewLoyaltyService(
	grades loyaltyDomain.GradeRepository,
	bookings bookingDomain.BookingRepository,
	invoices invoiceDomain.InvoiceRepository,
	clients clientDomain.ClientRepository,
	audits audit.AuditRepository,
	producer EventPublisher,
	logger *zap.Logger,
) *LoyaltyService {
	return &LoyaltyService{
		grades:   grades,
		bookings: bookings,
		invoices: invoices,
		clients:  clients,
		audits:   audits,
		producer: producer,
		logger:   logger,
	}
}

// GetGrade returns the client's grade. A client with no stored row is BRONZE.
func (s *LoyaltyService) GetGrade(ctx context.Context, clientID uuid.UUID) (*GradeDTO, error) {
	grade, err := s.grades.FindByClientID(ctx, clientID)
	if err != nil {
		if code, ok := domain.CodeOf(err); ok && code == domain.CodeNotFound {
			return &GradeDTO{ClientID: clientID, Tier: string(loyaltyDomain.TierBronze)}, nil
		}
		return nil, err
	}
	dto := toGradeDTO(grade)
	return &dto, nil
}

// Recompute recalculates the client's tier from their completed stays and
// paid invoice total. An overridden grade is left alone. On an upgrade the
// client is notified.
func (s *LoyaltyService) Recompute(ctx context.Context, clientID uuid.UUID) error {
	stays, err := s.bookings.CountCompletedByClient(ctx, clientID)
	if err != nil {
		return err
	}
	paid, err := s.invoices.SumPaidByClient(ctx, clientID)
	if err != nil {
		return err
	}
	suggested := loyaltyDomain.SuggestGrade(stays, paid)

	grade, err := s.loadOrCreateGrade(ctx, clientID)
	if err != nil {
		return err
	}

	oldTier := grade.Tier()
	if !grade.ApplySuggestion(suggested) {
		return nil
	}

	if err := s.grades.Upsert(ctx, grade); err != nil {
		return fmt.Errorf("failed to persist loyalty grade: %w", err)
	}

	if loyaltyDomain.IsUpgrade(oldTier, suggested) {
		s.notifyUpgrade(ctx, clientID, oldTier, suggested)
	}
	return nil
}

// OverrideGrade pins the client's tier, stamping who did it and when. The
// grade stops following automatic recomputation until it is reset. Upgrades
// notify the client; downgrades stay silent.
func (s *LoyaltyService) OverrideGrade(ctx context.Context, staffID, clientID uuid.UUID, req OverrideGradeRequest) (*GradeDTO, error) {
	tier, err := loyaltyDomain.ParseTier(req.Tier)
	if err != nil {
		return nil, err
	}

	if _, err := s.clients.FindByID(ctx, clientID); err != nil {
		return nil, err
	}

	grade, err := s.loadOrCreateGrade(ctx, clientID)
	if err != nil {
		return nil, err
	}

	oldTier := grade.Tier()
	if err := grade.Override(tier, staffID); err != nil {
		return nil, err
	}
	if err := s.grades.Upsert(ctx, grade); err != nil {
		return nil, fmt.Errorf("failed to persist loyalty grade: %w", err)
	}

	if loyaltyDomain.IsUpgrade(oldTier, tier) {
		s.notifyUpgrade(ctx, clientID, oldTier, tier)
	}
	s.recordAudit(ctx, staffID, clientID, "loyalty.overridden", fmt.Sprintf("%s -> %s", oldTier, tier))

	dto := toGradeDTO(grade)
	return &dto, nil
}

// ResetGrade clears a manual override and puts the grade back on automatic
// recomputation, applying the currently earned tier.
func (s *LoyaltyService) ResetGrade(ctx context.Context, staffID, clientID uuid.UUID) (*GradeDTO, error) {
	grade, err := s.grades.FindByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	stays, err := s.bookings.CountCompletedByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	paid, err := s.invoices.SumPaidByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	suggested := loyaltyDomain.SuggestGrade(stays, paid)

	if err := grade.ResetToAutomatic(suggested); err != nil {
		return nil, err
	}
	if err := s.grades.Upsert(ctx, grade); err != nil {
		return nil, fmt.Errorf("failed to persist loyalty grade: %w", err)
	}

	s.recordAudit(ctx, staffID, clientID, "loyalty.reset", string(suggested))

	dto := toGradeDTO(grade)
	return &dto, nil
}

func (s *LoyaltyService) loadOrCreateGrade(ctx context.Context, clientID uuid.UUID) (*loyaltyDomain.Grade, error) {
	grade, err := s.grades.FindByClientID(ctx, clientID)
	if err == nil {
		return grade, nil
	}
	if code, ok := domain.CodeOf(err); !ok || code != domain.CodeNotFound {
		return nil, err
	}
	return loyaltyDomain.NewGrade(clientID, loyaltyDomain.TierBronze)
}

func (s *LoyaltyService) notifyUpgrade(ctx context.Context, clientID uuid.UUID, oldTier, newTier loyaltyDomain.Tier) {
	cloudEvent, err := kafka.NewCloudEvent(events.Source, events.TypeLoyaltyUpgraded, events.LoyaltyEvent{
		ClientID: clientID,
		OldTier:  string(oldTier),
		NewTier:  string(newTier),
	})
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", events.TypeLoyaltyUpgraded),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, events.TopicNotificationEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicNotificationEvents),
			zap.String("event_type", events.TypeLoyaltyUpgraded),
			zap.Error(err),
		)
	}
}

func (s *LoyaltyService) recordAudit(ctx context.Context, staffID, clientID uuid.UUID, action, detail string) {
	entry := audit.NewEntry(staffID, domain.RoleStaff, "loyalty_grade", clientID, action, detail)
	if err := s.audits.Save(ctx, entry); err != nil {
		s.logger.Error("failed to save audit entry",
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func toGradeDTO(g *loyaltyDomain.Grade) GradeDTO {
	return GradeDTO{
		ClientID:     g.ClientID(),
		Tier:         string(g.Tier()),
		IsOverride:   g.IsOverride(),
		OverriddenBy: g.OverriddenBy(),
		OverriddenAt: g.OverriddenAt(),
		UpdatedAt:    g.UpdatedAt(),
	}
}
