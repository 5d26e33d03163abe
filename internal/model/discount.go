package model

import (
	"time"

	"github.com/google/uuid"
)

// DiscountConfig holds a provider's proximity discount table: four distance
// tiers (in yards) crossed with the number of nearby concurrent appointments
// (1..5, saturating at 5). Discounts reward bookings clustered in both time
// and place so the provider travels less.
type DiscountConfig struct {
	Base
	ProviderID uuid.UUID `db:"provider_id" json:"provider_id"`
	IsActive   bool      `db:"is_active" json:"is_active"`

	Tier1Distance    int `db:"tier1_distance" json:"tier1_distance"`
	Tier2MinDistance int `db:"tier2_min_distance" json:"tier2_min_distance"`
	Tier2MaxDistance int `db:"tier2_max_distance" json:"tier2_max_distance"`
	Tier3MinDistance int `db:"tier3_min_distance" json:"tier3_min_distance"`
	Tier3MaxDistance int `db:"tier3_max_distance" json:"tier3_max_distance"`
	Tier4MinDistance int `db:"tier4_min_distance" json:"tier4_min_distance"`
	Tier4MaxDistance int `db:"tier4_max_distance" json:"tier4_max_distance"`

	Tier1Discounts [5]int `json:"tier1_discounts"`
	Tier2Discounts [5]int `json:"tier2_discounts"`
	Tier3Discounts [5]int `json:"tier3_discounts"`
	Tier4Discounts [5]int `json:"tier4_discounts"`
}

// DefaultDiscountConfig returns the configuration a provider starts with.
// Configs are created lazily with these values on first read.
func DefaultDiscountConfig(providerID uuid.UUID) *DiscountConfig {
	now := time.Now()
	return &DiscountConfig{
		Base: Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ProviderID: providerID,
		IsActive:   true,

		Tier1Distance:    200,
		Tier2MinDistance: 200,
		Tier2MaxDistance: 600,
		Tier3MinDistance: 600,
		Tier3MaxDistance: 1760, // 1 mile
		Tier4MinDistance: 1760,
		Tier4MaxDistance: 5280, // 3 miles

		Tier1Discounts: [5]int{15, 20, 25, 30, 35},
		Tier2Discounts: [5]int{12, 15, 18, 21, 24},
		Tier3Discounts: [5]int{10, 11, 12, 13, 14},
		Tier4Discounts: [5]int{5, 6, 7, 8, 9},
	}
}

type UpdateDiscountConfigRequest struct {
	IsActive *bool `json:"is_active"`

	Tier1Distance    *int `json:"tier1_distance"`
	Tier2MinDistance *int `json:"tier2_min_distance"`
	Tier2MaxDistance *int `json:"tier2_max_distance"`
	Tier3MinDistance *int `json:"tier3_min_distance"`
	Tier3MaxDistance *int `json:"tier3_max_distance"`
	Tier4MinDistance *int `json:"tier4_min_distance"`
	Tier4MaxDistance *int `json:"tier4_max_distance"`

	Tier1Discounts *[5]int `json:"tier1_discounts"`
	Tier2Discounts *[5]int `json:"tier2_discounts"`
	Tier3Discounts *[5]int `json:"tier3_discounts"`
	Tier4Discounts *[5]int `json:"tier4_discounts"`
}
