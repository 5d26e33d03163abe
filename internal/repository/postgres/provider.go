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

type providerRepository struct {
	db *sqlx.DB
}

func NewProviderRepository(db *sqlx.DB) repository.ProviderRepository {
	return &providerRepository{db: db}
}

func (r *providerRepository) Create(ctx context.Context, provider *model.Provider) error {
	query := `
		INSERT INTO providers (
			id, user_id, business_name, description,
			address_line1, address_line2, city, state, postal_code, country,
			service_radius_miles, latitude, longitude, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	provider.ID = uuid.New()
	provider.CreatedAt = time.Now()
	provider.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		provider.ID,
		provider.UserID,
		provider.BusinessName,
		provider.Description,
		provider.Line1,
		provider.Line2,
		provider.City,
		provider.State,
		provider.PostalCode,
		provider.Country,
		provider.ServiceRadiusMiles,
		provider.Latitude,
		provider.Longitude,
		provider.CreatedAt,
		provider.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}
	return nil
}

func (r *providerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	query := `
		SELECT id, user_id, business_name, description,
			   address_line1, address_line2, city, state, postal_code, country,
			   service_radius_miles, latitude, longitude, created_at, updated_at
		FROM providers
		WHERE id = $1
	`
	var provider model.Provider
	err := r.db.GetContext(ctx, &provider, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}
	return &provider, nil
}

func (r *providerRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Provider, error) {
	query := `
		SELECT id, user_id, business_name, description,
			   address_line1, address_line2, city, state, postal_code, country,
			   service_radius_miles, latitude, longitude, created_at, updated_at
		FROM providers
		WHERE user_id = $1
	`
	var provider model.Provider
	err := r.db.GetContext(ctx, &provider, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get provider by user: %w", err)
	}
	return &provider, nil
}

func (r *providerRepository) Update(ctx context.Context, provider *model.Provider) error {
	query := `
		UPDATE providers
		SET business_name = $1, description = $2,
			address_line1 = $3, address_line2 = $4, city = $5, state = $6,
			postal_code = $7, country = $8, service_radius_miles = $9,
			latitude = $10, longitude = $11, updated_at = $12
		WHERE id = $13
	`
	provider.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		provider.BusinessName,
		provider.Description,
		provider.Line1,
		provider.Line2,
		provider.City,
		provider.State,
		provider.PostalCode,
		provider.Country,
		provider.ServiceRadiusMiles,
		provider.Latitude,
		provider.Longitude,
		provider.UpdatedAt,
		provider.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update provider: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("provider not found")
	}

	return nil
}
