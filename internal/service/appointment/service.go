package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/viciniti/booking-api/internal/email"
	"github.com/viciniti/booking-api/internal/model"
	"github.com/viciniti/booking-api/internal/repository"
	"github.com/viciniti/booking-api/internal/scheduling"
	"github.com/viciniti/booking-api/internal/service/geocode"
	apperrors "github.com/viciniti/booking-api/pkg/errors"
)

type Service struct {
	appointments repository.AppointmentRepository
	services     repository.ServiceRepository
	users        repository.UserRepository
	outbox       repository.OutboxRepository
	geocoder     geocode.Geocoder
	emailSvc     email.Service
	buffer       time.Duration
	logger       *zerolog.Logger
}

func NewService(
	appointments repository.AppointmentRepository,
	services repository.ServiceRepository,
	users repository.UserRepository,
	outbox repository.OutboxRepository,
	geocoder geocode.Geocoder,
	emailSvc email.Service,
	buffer time.Duration,
	logger *zerolog.Logger,
) *Service {
	if buffer <= 0 {
		buffer = scheduling.DefaultBuffer
	}
	return &Service{
		appointments: appointments,
		services:     services,
		users:        users,
		outbox:       outbox,
		geocoder:     geocoder,
		emailSvc:     emailSvc,
		buffer:       buffer,
		logger:       logger,
	}
}

// Book creates an appointment if and only if it clears the provider's
// buffered calendar. The conflict check and the insert run inside one
// transaction holding the provider lock, so two racing requests for the same
// window cannot both succeed.
func (s *Service) Book(ctx context.Context, consumerID uuid.UUID, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	svc, err := s.services.Get(ctx, req.ServiceID)
	if err != nil {
		return nil, apperrors.NotFound("service", err)
	}
	if !svc.IsActive {
		return nil, apperrors.BadRequest("service is not bookable", nil)
	}

	consumer, err := s.users.Get(ctx, consumerID)
	if err != nil {
		return nil, apperrors.NotFound("user", err)
	}

	endTime := req.StartTime.Add(svc.DurationTime())
	if req.EndTime != nil {
		endTime = *req.EndTime
	}

	buf := s.buffer
	if req.BufferMinutes != nil {
		buf = time.Duration(*req.BufferMinutes) * time.Minute
	}

	apt := &model.Appointment{
		ServiceID:  svc.ID,
		ConsumerID: consumerID,
		StartTime:  req.StartTime,
		EndTime:    endTime,
		Status:     model.AppointmentStatusPending,
		Notes:      req.Notes,
		Address: model.Address{
			Line1:      req.Line1,
			Line2:      req.Line2,
			City:       req.City,
			State:      req.State,
			PostalCode: req.PostalCode,
			Country:    req.Country,
		},
	}
	s.resolveLocation(ctx, apt, consumer)
	s.applyPricing(apt, svc, req)

	err = s.appointments.WithProviderLock(ctx, svc.ProviderID, func(tx *sqlx.Tx, active []*model.Appointment) error {
		proposed := scheduling.Interval{Start: apt.StartTime, End: apt.EndTime}
		conflicts, err := scheduling.CheckConflict(active, proposed, buf, nil)
		if err != nil {
			return apperrors.BadRequest(err.Error(), err)
		}
		if len(conflicts) > 0 {
			return apperrors.Conflict("requested time conflicts with existing appointments", conflicts)
		}
		if err := s.appointments.CreateTx(ctx, tx, apt); err != nil {
			return err
		}
		return s.emitTx(ctx, tx, model.EventAppointmentCreated, apt)
	})
	if err != nil {
		return nil, err
	}

	apt.ServiceName = svc.Name
	go s.sendAsync(consumer.Email, apt, s.emailSvc.SendBookingConfirmation)

	return apt, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("appointment", err)
	}
	return apt, nil
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.appointments.List(ctx, filters)
}

// ProviderID returns which provider an appointment belongs to, via its
// service. Handlers use this for ownership checks.
func (s *Service) ProviderID(ctx context.Context, apt *model.Appointment) (uuid.UUID, error) {
	svc, err := s.services.Get(ctx, apt.ServiceID)
	if err != nil {
		return uuid.Nil, apperrors.NotFound("service", err)
	}
	return svc.ProviderID, nil
}

// UpdateStatus advances the appointment through its lifecycle. Invalid
// transitions are rejected; terminal states never move again.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, next model.AppointmentStatus) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("appointment", err)
	}

	if !apt.Status.CanTransitionTo(next) {
		return nil, apperrors.BadRequest(
			fmt.Sprintf("cannot transition appointment from %s to %s", apt.Status, next), nil)
	}

	if err := s.appointments.UpdateStatus(ctx, id, next); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	apt.Status = next

	eventType := model.EventAppointmentUpdated
	if next == model.AppointmentStatusCancelled {
		eventType = model.EventAppointmentCancelled
	}
	s.emit(ctx, eventType, apt)

	if next == model.AppointmentStatusCancelled {
		if consumer, err := s.users.Get(ctx, apt.ConsumerID); err == nil {
			go s.sendAsync(consumer.Email, apt, s.emailSvc.SendBookingCancellation)
		}
	}

	return apt, nil
}

// Update edits an appointment's time or notes. Time edits re-run the conflict
// check against everything except the appointment itself, under the provider
// lock.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("appointment", err)
	}
	if !apt.Status.Occupying() {
		return nil, apperrors.BadRequest("cancelled appointments cannot be edited", nil)
	}

	if req.Notes != nil {
		apt.Notes = *req.Notes
	}

	timeChanged := false
	if req.StartTime != nil {
		apt.StartTime = *req.StartTime
		timeChanged = true
	}
	if req.EndTime != nil {
		apt.EndTime = *req.EndTime
		timeChanged = true
	}

	if !timeChanged {
		if err := s.appointments.Update(ctx, apt); err != nil {
			return nil, fmt.Errorf("failed to update appointment: %w", err)
		}
		return apt, nil
	}

	svc, err := s.services.Get(ctx, apt.ServiceID)
	if err != nil {
		return nil, apperrors.NotFound("service", err)
	}

	err = s.appointments.WithProviderLock(ctx, svc.ProviderID, func(tx *sqlx.Tx, active []*model.Appointment) error {
		proposed := scheduling.Interval{Start: apt.StartTime, End: apt.EndTime}
		conflicts, err := scheduling.CheckConflict(active, proposed, s.buffer, &apt.ID)
		if err != nil {
			return apperrors.BadRequest(err.Error(), err)
		}
		if len(conflicts) > 0 {
			return apperrors.Conflict("requested time conflicts with existing appointments", conflicts)
		}
		return s.appointments.Update(ctx, apt)
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, model.EventAppointmentUpdated, apt)
	return apt, nil
}

// Delete removes an appointment record. Only cancelled appointments may be
// deleted; everything else stays for the calendar and for conflict history.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return apperrors.NotFound("appointment", err)
	}
	if apt.Status != model.AppointmentStatusCancelled {
		return apperrors.BadRequest("only cancelled appointments can be deleted", nil)
	}
	return s.appointments.Delete(ctx, id)
}

// resolveLocation geocodes the appointment address, falling back to the
// consumer's stored location when the address is missing or unresolvable.
func (s *Service) resolveLocation(ctx context.Context, apt *model.Appointment, consumer *model.User) {
	if apt.Address.Complete() {
		if point, err := s.geocoder.Geocode(ctx, apt.Address); err == nil && point != nil {
			apt.Latitude = &point.Latitude
			apt.Longitude = &point.Longitude
			return
		}
	}
	if loc := consumer.Location(); loc != nil {
		apt.Latitude = &loc.Latitude
		apt.Longitude = &loc.Longitude
		if !apt.Address.Complete() {
			apt.Address = consumer.Address
		}
	}
}

// applyPricing records what the consumer saw at booking time. The client may
// pass the discounted price from a generated slot; a final price above the
// original, or with no original, is ignored.
func (s *Service) applyPricing(apt *model.Appointment, svc *model.Service, req *model.CreateAppointmentRequest) {
	original := svc.Price
	if req.OriginalPrice != nil {
		original = *req.OriginalPrice
	}
	apt.OriginalPrice = &original

	final := original
	if req.FinalPrice != nil && *req.FinalPrice <= original && *req.FinalPrice >= 0 {
		final = *req.FinalPrice
	}
	apt.FinalPrice = &final

	if final < original {
		amount := original - final
		apt.DiscountAmount = &amount
		apt.DiscountReason = "proximity discount"
	}
}

func (s *Service) emitTx(ctx context.Context, tx *sqlx.Tx, eventType string, apt *model.Appointment) error {
	payload, err := json.Marshal(apt)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return s.outbox.CreateTx(ctx, tx, &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	})
}

func (s *Service) emit(ctx context.Context, eventType string, apt *model.Appointment) {
	payload, err := json.Marshal(apt)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to marshal event payload")
		return
	}
	event := &model.OutboxEvent{EventType: eventType, Payload: payload}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to record outbox event")
	}
}

func (s *Service) sendAsync(to string, apt *model.Appointment, send func(context.Context, string, *model.Appointment) error) {
	if err := send(context.Background(), to, apt); err != nil {
		s.logger.Warn().Err(err).Str("to", to).Msg("failed to send booking email")
	}
}
