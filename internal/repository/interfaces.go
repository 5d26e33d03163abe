package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/viciniti/booking-api/internal/model"
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
	}

	ProviderRepository interface {
		Create(ctx context.Context, provider *model.Provider) error
		Get(ctx context.Context, id uuid.UUID) (*model.Provider, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Provider, error)
		Update(ctx context.Context, provider *model.Provider) error
	}

	ServiceRepository interface {
		Create(ctx context.Context, service *model.Service) error
		Get(ctx context.Context, id uuid.UUID) (*model.Service, error)
		Update(ctx context.Context, service *model.Service) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListForProvider(ctx context.Context, providerID uuid.UUID, activeOnly bool) ([]*model.Service, error)
	}

	AppointmentRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// ListActiveForProvider returns every occupying appointment across all
		// of the provider's services, with service names joined in.
		ListActiveForProvider(ctx context.Context, providerID uuid.UUID) ([]*model.Appointment, error)
		CreateTx(ctx context.Context, tx *sqlx.Tx, appointment *model.Appointment) error
		// WithProviderLock runs fn inside a transaction holding row locks on
		// the provider's active appointments, so a booking decision and its
		// insert happen atomically.
		WithProviderLock(ctx context.Context, providerID uuid.UUID, fn func(tx *sqlx.Tx, active []*model.Appointment) error) error
	}

	AvailabilityRepository interface {
		// ReplaceForProvider deletes the provider's existing blocks and
		// inserts the new set in one transaction.
		ReplaceForProvider(ctx context.Context, providerID uuid.UUID, blocks []*model.AvailabilityBlock) error
		ListForProvider(ctx context.Context, providerID uuid.UUID) ([]*model.AvailabilityBlock, error)
	}

	DiscountConfigRepository interface {
		// GetForProvider returns nil, nil when the provider has no config yet.
		GetForProvider(ctx context.Context, providerID uuid.UUID) (*model.DiscountConfig, error)
		Create(ctx context.Context, cfg *model.DiscountConfig) error
		Update(ctx context.Context, cfg *model.DiscountConfig) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		CreateTx(ctx context.Context, tx *sqlx.Tx, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status string, errorMessage *string) error
	}
)
