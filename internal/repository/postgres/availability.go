package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/viciniti/booking-api/internal/model"
	"github.com/viciniti/booking-api/internal/repository"
)

type availabilityRepository struct {
	db *sqlx.DB
}

func NewAvailabilityRepository(db *sqlx.DB) repository.AvailabilityRepository {
	return &availabilityRepository{db: db}
}

func (r *availabilityRepository) ReplaceForProvider(ctx context.Context, providerID uuid.UUID, blocks []*model.AvailabilityBlock) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM availability_blocks WHERE provider_id = $1`, providerID); err != nil {
		return fmt.Errorf("failed to clear availability: %w", err)
	}

	query := `
		INSERT INTO availability_blocks (
			id, provider_id, day, start_time, end_time, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	now := time.Now()
	for _, block := range blocks {
		block.ID = uuid.New()
		block.ProviderID = providerID
		block.CreatedAt = now
		block.UpdatedAt = now

		if _, err := tx.ExecContext(ctx, query,
			block.ID,
			block.ProviderID,
			block.Day,
			block.StartTime,
			block.EndTime,
			block.CreatedAt,
			block.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert availability block: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *availabilityRepository) ListForProvider(ctx context.Context, providerID uuid.UUID) ([]*model.AvailabilityBlock, error) {
	query := `
		SELECT id, provider_id, day, start_time, end_time, created_at, updated_at
		FROM availability_blocks
		WHERE provider_id = $1
		ORDER BY day ASC, start_time ASC
	`
	var blocks []*model.AvailabilityBlock
	err := r.db.SelectContext(ctx, &blocks, query, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability blocks: %w", err)
	}
	return blocks, nil
}
