package pricing

import (
	"github.com/viciniti/booking-api/internal/model"
)

const (
	numTiers = 4
	maxCount = 5
)

type tierBound struct {
	min int
	max int
}

// Table is a discount configuration flattened into an explicit
// tier-by-count grid, indexed by tier number and appointment count instead of
// per-field lookups.
type Table struct {
	bounds   [numTiers]tierBound
	percents [numTiers][maxCount]int
}

// TableFromConfig builds the lookup table for a provider's configuration.
func TableFromConfig(cfg *model.DiscountConfig) Table {
	return Table{
		bounds: [numTiers]tierBound{
			{min: 0, max: cfg.Tier1Distance},
			{min: cfg.Tier2MinDistance, max: cfg.Tier2MaxDistance},
			{min: cfg.Tier3MinDistance, max: cfg.Tier3MaxDistance},
			{min: cfg.Tier4MinDistance, max: cfg.Tier4MaxDistance},
		},
		percents: [numTiers][maxCount]int{
			cfg.Tier1Discounts,
			cfg.Tier2Discounts,
			cfg.Tier3Discounts,
			cfg.Tier4Discounts,
		},
	}
}

// MaxDistanceYards is the outermost tier boundary; appointments farther away
// never contribute a discount.
func (t Table) MaxDistanceYards() int {
	return t.bounds[numTiers-1].max
}

// DiscountFor returns the percentage for a distance (yards) and concurrent
// nearby-appointment count. The count saturates at 5 and floors at 1. A
// distance beyond the last tier, or inside a gap between configured tiers,
// yields 0.
func (t Table) DiscountFor(distanceYards float64, count int) int {
	if count > maxCount {
		count = maxCount
	}
	if count < 1 {
		count = 1
	}

	if distanceYards <= float64(t.bounds[0].max) {
		return t.percents[0][count-1]
	}
	for tier := 1; tier < numTiers; tier++ {
		b := t.bounds[tier]
		if float64(b.min) <= distanceYards && distanceYards <= float64(b.max) {
			return t.percents[tier][count-1]
		}
	}
	return 0
}
