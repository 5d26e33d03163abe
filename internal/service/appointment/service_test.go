package appointment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viciniti/booking-api/internal/model"
	apperrors "github.com/viciniti/booking-api/pkg/errors"
	"github.com/viciniti/booking-api/pkg/geo"
)

type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*model.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (r *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	apt, ok := r.appointments[id]
	if !ok {
		return nil, errors.New("appointment not found")
	}
	cp := *apt
	return &cp, nil
}

func (r *fakeAppointmentRepo) Update(_ context.Context, apt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appointments[apt.ID]; !ok {
		return errors.New("appointment not found")
	}
	cp := *apt
	r.appointments[apt.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	apt, ok := r.appointments[id]
	if !ok {
		return errors.New("appointment not found")
	}
	apt.Status = status
	return nil
}

func (r *fakeAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appointments[id]; !ok {
		return errors.New("appointment not found")
	}
	delete(r.appointments, id)
	return nil
}

func (r *fakeAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	return r.activeLocked(), nil
}

func (r *fakeAppointmentRepo) ListActiveForProvider(_ context.Context, _ uuid.UUID) ([]*model.Appointment, error) {
	return r.activeLocked(), nil
}

func (r *fakeAppointmentRepo) CreateTx(_ context.Context, _ *sqlx.Tx, apt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	apt.ID = uuid.New()
	cp := *apt
	r.appointments[apt.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) WithProviderLock(_ context.Context, _ uuid.UUID, fn func(tx *sqlx.Tx, active []*model.Appointment) error) error {
	return fn(nil, r.activeLocked())
}

func (r *fakeAppointmentRepo) activeLocked() []*model.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Appointment
	for _, apt := range r.appointments {
		if apt.Status.Occupying() {
			cp := *apt
			out = append(out, &cp)
		}
	}
	return out
}

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

type fakeOutboxRepo struct {
	mu     sync.Mutex
	events []*model.OutboxEvent
}

func (r *fakeOutboxRepo) Create(_ context.Context, event *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *fakeOutboxRepo) CreateTx(_ context.Context, _ *sqlx.Tx, event *model.OutboxEvent) error {
	return r.Create(context.Background(), event)
}

func (r *fakeOutboxRepo) GetPendingEventsWithLock(_ context.Context, _ int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ string, _ *string) error {
	return nil
}

func (r *fakeOutboxRepo) eventTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var types []string
	for _, e := range r.events {
		types = append(types, e.EventType)
	}
	return types
}

type nilGeocoder struct{}

func (nilGeocoder) Geocode(_ context.Context, _ model.Address) (*geo.Point, error) {
	return nil, nil
}

type fakeEmail struct{}

func (fakeEmail) SendBookingConfirmation(_ context.Context, _ string, _ *model.Appointment) error {
	return nil
}
func (fakeEmail) SendBookingCancellation(_ context.Context, _ string, _ *model.Appointment) error {
	return nil
}
func (fakeEmail) SendWelcome(_ context.Context, _ string, _ string) error { return nil }

type fixture struct {
	svc          *Service
	appointments *fakeAppointmentRepo
	outbox       *fakeOutboxRepo
	service      *model.Service
	consumer     *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	service := &model.Service{
		ProviderID: uuid.New(),
		Name:       "Lawn Care",
		Duration:   30,
		Price:      100,
		IsActive:   true,
	}
	service.ID = uuid.New()

	consumer := &model.User{
		Email:    "consumer@example.com",
		UserType: model.UserTypeConsumer,
	}
	consumer.ID = uuid.New()

	appointments := newFakeAppointmentRepo()
	outbox := &fakeOutboxRepo{}
	logger := zerolog.Nop()

	svc := NewService(
		appointments,
		&fakeServiceRepo{services: map[uuid.UUID]*model.Service{service.ID: service}},
		&fakeUserRepo{users: map[uuid.UUID]*model.User{consumer.ID: consumer}},
		outbox,
		nilGeocoder{},
		fakeEmail{},
		15*time.Minute,
		&logger,
	)

	return &fixture{
		svc:          svc,
		appointments: appointments,
		outbox:       outbox,
		service:      service,
		consumer:     consumer,
	}
}

func mustTime(t *testing.T, clock string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, "2030-06-01T"+clock+":00Z")
	require.NoError(t, err)
	return v
}

func TestBookSuccess(t *testing.T) {
	f := newFixture(t)

	apt, err := f.svc.Book(context.Background(), f.consumer.ID, &model.CreateAppointmentRequest{
		ServiceID: f.service.ID,
		StartTime: mustTime(t, "10:00"),
	})

	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPending, apt.Status)
	assert.Equal(t, mustTime(t, "10:30"), apt.EndTime, "end time defaults to start plus service duration")
	require.NotNil(t, apt.OriginalPrice)
	assert.Equal(t, 100.0, *apt.OriginalPrice)
	require.NotNil(t, apt.FinalPrice)
	assert.Equal(t, 100.0, *apt.FinalPrice)
	assert.Nil(t, apt.DiscountAmount)

	assert.Contains(t, f.outbox.eventTypes(), model.EventAppointmentCreated)
}

func TestBookPersistsSlotPricing(t *testing.T) {
	f := newFixture(t)

	original := 100.0
	final := 80.0
	apt, err := f.svc.Book(context.Background(), f.consumer.ID, &model.CreateAppointmentRequest{
		ServiceID:     f.service.ID,
		StartTime:     mustTime(t, "10:00"),
		OriginalPrice: &original,
		FinalPrice:    &final,
	})

	require.NoError(t, err)
	require.NotNil(t, apt.DiscountAmount)
	assert.Equal(t, 20.0, *apt.DiscountAmount)
	assert.Equal(t, 80.0, *apt.FinalPrice)
	assert.Equal(t, "proximity discount", apt.DiscountReason)
}

func TestBookRejectsInflatedFinalPrice(t *testing.T) {
	f := newFixture(t)

	final := 250.0
	apt, err := f.svc.Book(context.Background(), f.consumer.ID, &model.CreateAppointmentRequest{
		ServiceID:  f.service.ID,
		StartTime:  mustTime(t, "10:00"),
		FinalPrice: &final,
	})

	require.NoError(t, err)
	assert.Equal(t, 100.0, *apt.FinalPrice)
	assert.Nil(t, apt.DiscountAmount)
}

func TestBookConflict(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Book(context.Background(), f.consumer.ID, &model.CreateAppointmentRequest{
		ServiceID: f.service.ID,
		StartTime: mustTime(t, "10:00"),
	})
	require.NoError(t, err)

	// Within the buffered window of the first booking.
	_, err = f.svc.Book(context.Background(), f.consumer.ID, &model.CreateAppointmentRequest{
		ServiceID: f.service.ID,
		StartTime: mustTime(t, "10:35"),
	})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
	assert.NotNil(t, appErr.Details)

	assert.Len(t, f.appointments.activeLocked(), 1, "conflicting booking must not persist")
}

func TestBookAfterBufferBoundary(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Book(context.Background(), f.consumer.ID, &model.CreateAppointmentRequest{
		ServiceID: f.service.ID,
		StartTime: mustTime(t, "10:00"),
	})
	require.NoError(t, err)

	// First booking occupies 10:00-10:30, buffered to 10:45. Starting at
	// exactly 10:45 is allowed.
	_, err = f.svc.Book(context.Background(), f.consumer.ID, &model.CreateAppointmentRequest{
		ServiceID: f.service.ID,
		StartTime: mustTime(t, "10:45"),
	})
	assert.NoError(t, err)
}

func TestBookCustomBuffer(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Book(context.Background(), f.consumer.ID, &model.CreateAppointmentRequest{
		ServiceID: f.service.ID,
		StartTime: mustTime(t, "10:00"),
	})
	require.NoError(t, err)

	zero := 0
	_, err = f.svc.Book(context.Background(), f.consumer.ID, &model.CreateAppointmentRequest{
		ServiceID:     f.service.ID,
		StartTime:     mustTime(t, "10:30"),
		BufferMinutes: &zero,
	})
	assert.NoError(t, err, "zero buffer allows back-to-back bookings")
}

func TestBookInactiveService(t *testing.T) {
	f := newFixture(t)
	f.service.IsActive = false

	_, err := f.svc.Book(context.Background(), f.consumer.ID, &model.CreateAppointmentRequest{
		ServiceID: f.service.ID,
		StartTime: mustTime(t, "10:00"),
	})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestUpdateStatusLifecycle(t *testing.T) {
	f := newFixture(t)

	apt, err := f.svc.Book(context.Background(), f.consumer.ID, &model.CreateAppointmentRequest{
		ServiceID: f.service.ID,
		StartTime: mustTime(t, "10:00"),
	})
	require.NoError(t, err)

	got, err := f.svc.UpdateStatus(context.Background(), apt.ID, model.AppointmentStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, got.Status)

	got, err = f.svc.UpdateStatus(context.Background(), apt.ID, model.AppointmentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, got.Status)

	// Completed is terminal.
	_, err = f.svc.UpdateStatus(context.Background(), apt.ID, model.AppointmentStatusCancelled)
	assert.Error(t, err)
}

func TestUpdateStatusCancellationEmitsEvent(t *testing.T) {
	f := newFixture(t)

	apt, err := f.svc.Book(context.Background(), f.consumer.ID, &model.CreateAppointmentRequest{
		ServiceID: f.service.ID,
		StartTime: mustTime(t, "10:00"),
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), apt.ID, model.AppointmentStatusCancelled)
	require.NoError(t, err)

	assert.Contains(t, f.outbox.eventTypes(), model.EventAppointmentCancelled)
}

func TestUpdateTimeExcludesSelfFromConflictCheck(t *testing.T) {
	f := newFixture(t)

	apt, err := f.svc.Book(context.Background(), f.consumer.ID, &model.CreateAppointmentRequest{
		ServiceID: f.service.ID,
		StartTime: mustTime(t, "10:00"),
	})
	require.NoError(t, err)

	// Nudging the appointment within its own buffered window must not
	// conflict with itself.
	newStart := mustTime(t, "10:05")
	newEnd := mustTime(t, "10:35")
	updated, err := f.svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
		StartTime: &newStart,
		EndTime:   &newEnd,
	})
	require.NoError(t, err)
	assert.Equal(t, newStart, updated.StartTime)
}

func TestUpdateTimeConflictsWithOthers(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Book(context.Background(), f.consumer.ID, &model.CreateAppointmentRequest{
		ServiceID: f.service.ID,
		StartTime: mustTime(t, "10:00"),
	})
	require.NoError(t, err)

	second, err := f.svc.Book(context.Background(), f.consumer.ID, &model.CreateAppointmentRequest{
		ServiceID: f.service.ID,
		StartTime: mustTime(t, "12:00"),
	})
	require.NoError(t, err)

	newStart := mustTime(t, "10:15")
	newEnd := mustTime(t, "10:45")
	_, err = f.svc.Update(context.Background(), second.ID, &model.UpdateAppointmentRequest{
		StartTime: &newStart,
		EndTime:   &newEnd,
	})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestDeleteOnlyCancelled(t *testing.T) {
	f := newFixture(t)

	apt, err := f.svc.Book(context.Background(), f.consumer.ID, &model.CreateAppointmentRequest{
		ServiceID: f.service.ID,
		StartTime: mustTime(t, "10:00"),
	})
	require.NoError(t, err)

	err = f.svc.Delete(context.Background(), apt.ID)
	require.Error(t, err, "pending appointments cannot be deleted")

	_, err = f.svc.UpdateStatus(context.Background(), apt.ID, model.AppointmentStatusCancelled)
	require.NoError(t, err)

	err = f.svc.Delete(context.Background(), apt.ID)
	assert.NoError(t, err)

	_, err = f.svc.Get(context.Background(), apt.ID)
	assert.Error(t, err)
}

func TestStatusTransitionTable(t *testing.T) {
	tests := []struct {
		from, to model.AppointmentStatus
		ok       bool
	}{
		{model.AppointmentStatusPending, model.AppointmentStatusConfirmed, true},
		{model.AppointmentStatusPending, model.AppointmentStatusCancelled, true},
		{model.AppointmentStatusPending, model.AppointmentStatusCompleted, false},
		{model.AppointmentStatusConfirmed, model.AppointmentStatusCompleted, true},
		{model.AppointmentStatusConfirmed, model.AppointmentStatusCancelled, true},
		{model.AppointmentStatusConfirmed, model.AppointmentStatusPending, false},
		{model.AppointmentStatusCancelled, model.AppointmentStatusPending, false},
		{model.AppointmentStatusCancelled, model.AppointmentStatusConfirmed, false},
		{model.AppointmentStatusCompleted, model.AppointmentStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_to_%s", tt.from, tt.to), func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to))
		})
	}
}
