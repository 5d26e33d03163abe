package slot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viciniti/booking-api/internal/model"
	"github.com/viciniti/booking-api/internal/pricing"
	"github.com/viciniti/booking-api/internal/scheduling"
	apperrors "github.com/viciniti/booking-api/pkg/errors"
)

type fakeServiceRepo struct {
	services map[uuid.UUID]*model.Service
}

func (r *fakeServiceRepo) Create(_ context.Context, _ *model.Service) error { return nil }
func (r *fakeServiceRepo) Update(_ context.Context, _ *model.Service) error { return nil }
func (r *fakeServiceRepo) Delete(_ context.Context, _ uuid.UUID) error      { return nil }
func (r *fakeServiceRepo) ListForProvider(_ context.Context, _ uuid.UUID, _ bool) ([]*model.Service, error) {
	return nil, nil
}
func (r *fakeServiceRepo) Get(_ context.Context, id uuid.UUID) (*model.Service, error) {
	svc, ok := r.services[id]
	if !ok {
		return nil, errors.New("service not found")
	}
	return svc, nil
}

type fakeAppointmentRepo struct {
	active []*model.Appointment
}

func (r *fakeAppointmentRepo) Get(_ context.Context, _ uuid.UUID) (*model.Appointment, error) {
	return nil, errors.New("not implemented")
}
func (r *fakeAppointmentRepo) Update(_ context.Context, _ *model.Appointment) error { return nil }
func (r *fakeAppointmentRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ model.AppointmentStatus) error {
	return nil
}
func (r *fakeAppointmentRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }
func (r *fakeAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	return r.active, nil
}
func (r *fakeAppointmentRepo) ListActiveForProvider(_ context.Context, _ uuid.UUID) ([]*model.Appointment, error) {
	return r.active, nil
}
func (r *fakeAppointmentRepo) CreateTx(_ context.Context, _ *sqlx.Tx, _ *model.Appointment) error {
	return nil
}
func (r *fakeAppointmentRepo) WithProviderLock(_ context.Context, _ uuid.UUID, fn func(tx *sqlx.Tx, active []*model.Appointment) error) error {
	return fn(nil, r.active)
}

type fakeAvailabilityRepo struct {
	blocks []*model.AvailabilityBlock
}

func (r *fakeAvailabilityRepo) ReplaceForProvider(_ context.Context, _ uuid.UUID, _ []*model.AvailabilityBlock) error {
	return nil
}
func (r *fakeAvailabilityRepo) ListForProvider(_ context.Context, _ uuid.UUID) ([]*model.AvailabilityBlock, error) {
	return r.blocks, nil
}

type fakeConfigRepo struct {
	cfg *model.DiscountConfig
}

func (r *fakeConfigRepo) GetForProvider(_ context.Context, _ uuid.UUID) (*model.DiscountConfig, error) {
	return r.cfg, nil
}
func (r *fakeConfigRepo) Create(_ context.Context, _ *model.DiscountConfig) error { return nil }
func (r *fakeConfigRepo) Update(_ context.Context, _ *model.DiscountConfig) error { return nil }

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (r *fakeUserRepo) Create(_ context.Context, _ *model.User) error { return nil }
func (r *fakeUserRepo) Update(_ context.Context, _ *model.User) error { return nil }
func (r *fakeUserRepo) GetByEmail(_ context.Context, _ string) (*model.User, error) {
	return nil, errors.New("not implemented")
}
func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

type fixture struct {
	svc      *Service
	service  *model.Service
	consumer *model.User
	configs  *fakeConfigRepo
	now      time.Time
}

func ptr(v float64) *float64 { return &v }

func at(t *testing.T, value string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return v
}

// newFixture wires a provider with one 10:00-12:00 block on the first window
// day and one completed appointment just before it, close to the consumer.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	now := at(t, "2030-06-01T00:00:00Z")
	providerID := uuid.New()

	service := &model.Service{
		ProviderID: providerID,
		Name:       "Lawn Care",
		Duration:   30,
		Price:      100,
		IsActive:   true,
	}
	service.ID = uuid.New()

	consumer := &model.User{
		Email:     "consumer@example.com",
		UserType:  model.UserTypeConsumer,
		Latitude:  ptr(40.0),
		Longitude: ptr(-75.0),
	}
	consumer.ID = uuid.New()

	// Roughly 136 yards from the consumer, well inside the first tier.
	neighbor := &model.Appointment{
		ServiceID:  service.ID,
		ConsumerID: uuid.New(),
		StartTime:  at(t, "2030-06-01T09:15:00Z"),
		EndTime:    at(t, "2030-06-01T09:45:00Z"),
		Status:     model.AppointmentStatusConfirmed,
		Latitude:   ptr(40.00112),
		Longitude:  ptr(-75.0),
	}
	neighbor.ID = uuid.New()

	configs := &fakeConfigRepo{cfg: model.DefaultDiscountConfig(providerID)}

	svc := NewService(
		&fakeServiceRepo{services: map[uuid.UUID]*model.Service{service.ID: service}},
		&fakeAppointmentRepo{active: []*model.Appointment{neighbor}},
		&fakeAvailabilityRepo{blocks: []*model.AvailabilityBlock{{
			ProviderID: providerID,
			Day:        "2030-06-01",
			StartTime:  at(t, "2030-06-01T10:00:00Z"),
			EndTime:    at(t, "2030-06-01T12:00:00Z"),
		}}},
		configs,
		&fakeUserRepo{users: map[uuid.UUID]*model.User{consumer.ID: consumer}},
		scheduling.NewGenerator(),
		pricing.NewAnnotator(),
	)

	return &fixture{svc: svc, service: service, consumer: consumer, configs: configs, now: now}
}

func TestGetSlotsGeneratesFromSnapshot(t *testing.T) {
	f := newFixture(t)

	slots, err := f.svc.GetSlots(context.Background(), f.service.ID, f.now)
	require.NoError(t, err)

	day := slots["2030-06-01"]
	require.Len(t, day, 3)
	assert.Equal(t, at(t, "2030-06-01T10:00:00Z"), day[0].Start)
	assert.Equal(t, at(t, "2030-06-01T10:45:00Z"), day[1].Start)
	assert.Equal(t, at(t, "2030-06-01T11:30:00Z"), day[2].Start)
	for _, s := range day {
		assert.Equal(t, 100.0, s.OriginalPrice)
		assert.Equal(t, 100.0, s.DiscountedPrice)
		assert.Zero(t, s.DiscountPercentage)
	}
}

func TestGetSlotsUnknownService(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetSlots(context.Background(), uuid.New(), f.now)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestGetSlotsInactiveService(t *testing.T) {
	f := newFixture(t)
	f.service.IsActive = false

	_, err := f.svc.GetSlots(context.Background(), f.service.ID, f.now)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestGetDiscountedSlots(t *testing.T) {
	f := newFixture(t)

	slots, err := f.svc.GetDiscountedSlots(context.Background(), f.service.ID, f.consumer.ID, f.now)
	require.NoError(t, err)

	day := slots["2030-06-01"]
	require.Len(t, day, 3)

	// The neighbor ends at 09:45, within the adjacency window of the first
	// two slots but not the last.
	assert.Equal(t, 15, day[0].DiscountPercentage)
	assert.Equal(t, 85.0, day[0].DiscountedPrice)
	assert.Equal(t, 15, day[1].DiscountPercentage)
	assert.Zero(t, day[2].DiscountPercentage)
	assert.Equal(t, 100.0, day[2].DiscountedPrice)
}

func TestGetDiscountedSlotsNoConfig(t *testing.T) {
	f := newFixture(t)
	f.configs.cfg = nil

	slots, err := f.svc.GetDiscountedSlots(context.Background(), f.service.ID, f.consumer.ID, f.now)
	require.NoError(t, err)

	for _, s := range slots["2030-06-01"] {
		assert.Zero(t, s.DiscountPercentage)
		assert.Equal(t, 100.0, s.DiscountedPrice)
	}
}

func TestGetDiscountedSlotsUnlocatedConsumer(t *testing.T) {
	f := newFixture(t)
	f.consumer.Latitude = nil
	f.consumer.Longitude = nil

	slots, err := f.svc.GetDiscountedSlots(context.Background(), f.service.ID, f.consumer.ID, f.now)
	require.NoError(t, err)

	for _, s := range slots["2030-06-01"] {
		assert.Zero(t, s.DiscountPercentage)
	}
}

func TestGetDiscountedSlotsUnknownConsumer(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetDiscountedSlots(context.Background(), f.service.ID, uuid.New(), f.now)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}
