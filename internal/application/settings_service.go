package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	bookingDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/booking"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain/settings"
)

// SettingsService manages the staff-editable rate settings.
type SettingsService struct {
	repo   settings.SettingsRepository
	logger *zap.Logger
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(repo settings.SettingsRepository, logger *zap.Logger) *SettingsService {
	return &SettingsService{repo: repo, logger: logger}
}

// GetEffective returns the full effective settings map, stored values merged
// over defaults. Read fresh on every call.
func (s *SettingsService) GetEffective(ctx context.Context) (map[string]int64, error) {
	stored, err := s.repo.LoadStored(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings.Effective(stored), nil
}

// Update stores the allow-listed keys from the request. Unknown keys are
// dropped silently; the returned map is the new effective state.
func (s *SettingsService) Update(ctx context.Context, values map[string]int64) (map[string]int64, error) {
	accepted := make(map[string]int64, len(values))
	for key, value := range values {
		if !settings.IsKnownKey(key) {
			s.logger.Debug("ignoring unknown setting key", zap.String("key", key))
			continue
		}
		accepted[key] = value
	}

	if err := s.repo.Store(ctx, accepted); err != nil {
		return nil, fmt.Errorf("failed to store settings: %w", err)
	}
	return s.GetEffective(ctx)
}

// CurrentRateTable snapshots the effective settings into a RateTable for
// pricing. The snapshot is taken once per request so a settings change cannot
// split a single computation.
func (s *SettingsService) CurrentRateTable(ctx context.Context) (bookingDomain.RateTable, error) {
	effective, err := s.GetEffective(ctx)
	if err != nil {
		return bookingDomain.RateTable{}, err
	}
	return settings.RateTableFrom(effective), nil
}
