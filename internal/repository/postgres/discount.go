package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/viciniti/booking-api/internal/model"
	"github.com/viciniti/booking-api/internal/repository"
)

type discountConfigRepository struct {
	db *sqlx.DB
}

func NewDiscountConfigRepository(db *sqlx.DB) repository.DiscountConfigRepository {
	return &discountConfigRepository{db: db}
}

// discountConfigRow mirrors the discount_configs table, with the four
// percentage grids stored as integer arrays.
type discountConfigRow struct {
	model.Base
	ProviderID uuid.UUID `db:"provider_id"`
	IsActive   bool      `db:"is_active"`

	Tier1Distance    int `db:"tier1_distance"`
	Tier2MinDistance int `db:"tier2_min_distance"`
	Tier2MaxDistance int `db:"tier2_max_distance"`
	Tier3MinDistance int `db:"tier3_min_distance"`
	Tier3MaxDistance int `db:"tier3_max_distance"`
	Tier4MinDistance int `db:"tier4_min_distance"`
	Tier4MaxDistance int `db:"tier4_max_distance"`

	Tier1Discounts pq.Int64Array `db:"tier1_discounts"`
	Tier2Discounts pq.Int64Array `db:"tier2_discounts"`
	Tier3Discounts pq.Int64Array `db:"tier3_discounts"`
	Tier4Discounts pq.Int64Array `db:"tier4_discounts"`
}

func (row *discountConfigRow) toModel() *model.DiscountConfig {
	cfg := &model.DiscountConfig{
		Base:       row.Base,
		ProviderID: row.ProviderID,
		IsActive:   row.IsActive,

		Tier1Distance:    row.Tier1Distance,
		Tier2MinDistance: row.Tier2MinDistance,
		Tier2MaxDistance: row.Tier2MaxDistance,
		Tier3MinDistance: row.Tier3MinDistance,
		Tier3MaxDistance: row.Tier3MaxDistance,
		Tier4MinDistance: row.Tier4MinDistance,
		Tier4MaxDistance: row.Tier4MaxDistance,
	}
	copyPercents(&cfg.Tier1Discounts, row.Tier1Discounts)
	copyPercents(&cfg.Tier2Discounts, row.Tier2Discounts)
	copyPercents(&cfg.Tier3Discounts, row.Tier3Discounts)
	copyPercents(&cfg.Tier4Discounts, row.Tier4Discounts)
	return cfg
}

func copyPercents(dst *[5]int, src pq.Int64Array) {
	for i := 0; i < len(dst) && i < len(src); i++ {
		dst[i] = int(src[i])
	}
}

func toInt64Array(src [5]int) pq.Int64Array {
	out := make(pq.Int64Array, len(src))
	for i, v := range src {
		out[i] = int64(v)
	}
	return out
}

func (r *discountConfigRepository) GetForProvider(ctx context.Context, providerID uuid.UUID) (*model.DiscountConfig, error) {
	query := `
		SELECT id, provider_id, is_active,
			   tier1_distance, tier2_min_distance, tier2_max_distance,
			   tier3_min_distance, tier3_max_distance,
			   tier4_min_distance, tier4_max_distance,
			   tier1_discounts, tier2_discounts, tier3_discounts, tier4_discounts,
			   created_at, updated_at
		FROM discount_configs
		WHERE provider_id = $1
	`
	var row discountConfigRow
	err := r.db.GetContext(ctx, &row, query, providerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get discount config: %w", err)
	}
	return row.toModel(), nil
}

func (r *discountConfigRepository) Create(ctx context.Context, cfg *model.DiscountConfig) error {
	query := `
		INSERT INTO discount_configs (
			id, provider_id, is_active,
			tier1_distance, tier2_min_distance, tier2_max_distance,
			tier3_min_distance, tier3_max_distance,
			tier4_min_distance, tier4_max_distance,
			tier1_discounts, tier2_discounts, tier3_discounts, tier4_discounts,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = time.Now()
	}
	cfg.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		cfg.ID,
		cfg.ProviderID,
		cfg.IsActive,
		cfg.Tier1Distance,
		cfg.Tier2MinDistance,
		cfg.Tier2MaxDistance,
		cfg.Tier3MinDistance,
		cfg.Tier3MaxDistance,
		cfg.Tier4MinDistance,
		cfg.Tier4MaxDistance,
		toInt64Array(cfg.Tier1Discounts),
		toInt64Array(cfg.Tier2Discounts),
		toInt64Array(cfg.Tier3Discounts),
		toInt64Array(cfg.Tier4Discounts),
		cfg.CreatedAt,
		cfg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create discount config: %w", err)
	}
	return nil
}

func (r *discountConfigRepository) Update(ctx context.Context, cfg *model.DiscountConfig) error {
	query := `
		UPDATE discount_configs
		SET is_active = $1,
			tier1_distance = $2, tier2_min_distance = $3, tier2_max_distance = $4,
			tier3_min_distance = $5, tier3_max_distance = $6,
			tier4_min_distance = $7, tier4_max_distance = $8,
			tier1_discounts = $9, tier2_discounts = $10,
			tier3_discounts = $11, tier4_discounts = $12,
			updated_at = $13
		WHERE id = $14
	`
	cfg.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		cfg.IsActive,
		cfg.Tier1Distance,
		cfg.Tier2MinDistance,
		cfg.Tier2MaxDistance,
		cfg.Tier3MinDistance,
		cfg.Tier3MaxDistance,
		cfg.Tier4MinDistance,
		cfg.Tier4MaxDistance,
		toInt64Array(cfg.Tier1Discounts),
		toInt64Array(cfg.Tier2Discounts),
		toInt64Array(cfg.Tier3Discounts),
		toInt64Array(cfg.Tier4Discounts),
		cfg.UpdatedAt,
		cfg.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update discount config: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("discount config not found")
	}

	return nil
}
