package discount

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/viciniti/booking-api/internal/model"
	"github.com/viciniti/booking-api/internal/repository"
	apperrors "github.com/viciniti/booking-api/pkg/errors"
)

type Service struct {
	configs repository.DiscountConfigRepository
}

func NewService(configs repository.DiscountConfigRepository) *Service {
	return &Service{configs: configs}
}

// GetOrCreate returns the provider's discount configuration, creating it with
// defaults on first access.
func (s *Service) GetOrCreate(ctx context.Context, providerID uuid.UUID) (*model.DiscountConfig, error) {
	cfg, err := s.configs.GetForProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load discount config: %w", err)
	}
	if cfg != nil {
		return cfg, nil
	}

	cfg = model.DefaultDiscountConfig(providerID)
	if err := s.configs.Create(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to create discount config: %w", err)
	}
	return cfg, nil
}

// Update applies a partial update to the provider's configuration. Tier
// bounds must stay ordered; contiguity is not enforced, distances falling in
// a gap simply earn no discount.
func (s *Service) Update(ctx context.Context, providerID uuid.UUID, req *model.UpdateDiscountConfigRequest) (*model.DiscountConfig, error) {
	cfg, err := s.GetOrCreate(ctx, providerID)
	if err != nil {
		return nil, err
	}

	if req.IsActive != nil {
		cfg.IsActive = *req.IsActive
	}

	applyInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	applyInt(&cfg.Tier1Distance, req.Tier1Distance)
	applyInt(&cfg.Tier2MinDistance, req.Tier2MinDistance)
	applyInt(&cfg.Tier2MaxDistance, req.Tier2MaxDistance)
	applyInt(&cfg.Tier3MinDistance, req.Tier3MinDistance)
	applyInt(&cfg.Tier3MaxDistance, req.Tier3MaxDistance)
	applyInt(&cfg.Tier4MinDistance, req.Tier4MinDistance)
	applyInt(&cfg.Tier4MaxDistance, req.Tier4MaxDistance)

	if req.Tier1Discounts != nil {
		cfg.Tier1Discounts = *req.Tier1Discounts
	}
	if req.Tier2Discounts != nil {
		cfg.Tier2Discounts = *req.Tier2Discounts
	}
	if req.Tier3Discounts != nil {
		cfg.Tier3Discounts = *req.Tier3Discounts
	}
	if req.Tier4Discounts != nil {
		cfg.Tier4Discounts = *req.Tier4Discounts
	}

	if err := validate(cfg); err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}

	if err := s.configs.Update(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to update discount config: %w", err)
	}
	return cfg, nil
}

func validate(cfg *model.DiscountConfig) error {
	if cfg.Tier1Distance <= 0 {
		return fmt.Errorf("tier 1 distance must be positive")
	}
	tiers := [][2]int{
		{cfg.Tier2MinDistance, cfg.Tier2MaxDistance},
		{cfg.Tier3MinDistance, cfg.Tier3MaxDistance},
		{cfg.Tier4MinDistance, cfg.Tier4MaxDistance},
	}
	for i, t := range tiers {
		if t[0] < 0 || t[1] <= t[0] {
			return fmt.Errorf("tier %d bounds must satisfy 0 <= min < max", i+2)
		}
	}

	grids := [][5]int{cfg.Tier1Discounts, cfg.Tier2Discounts, cfg.Tier3Discounts, cfg.Tier4Discounts}
	for i, grid := range grids {
		for _, pct := range grid {
			if pct < 0 || pct > 100 {
				return fmt.Errorf("tier %d discount percentages must be between 0 and 100", i+1)
			}
		}
	}
	return nil
}
