package slot

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/viciniti/booking-api/internal/model"
	"github.com/viciniti/booking-api/internal/pricing"
	"github.com/viciniti/booking-api/internal/repository"
	"github.com/viciniti/booking-api/internal/scheduling"
	apperrors "github.com/viciniti/booking-api/pkg/errors"
)

// Service orchestrates slot generation: it assembles the provider snapshot
// (availability, active appointments, discount config) and runs the generator
// and annotator over it.
type Service struct {
	services     repository.ServiceRepository
	appointments repository.AppointmentRepository
	availability repository.AvailabilityRepository
	configs      repository.DiscountConfigRepository
	users        repository.UserRepository
	generator    *scheduling.Generator
	annotator    pricing.Annotator
}

func NewService(
	services repository.ServiceRepository,
	appointments repository.AppointmentRepository,
	availability repository.AvailabilityRepository,
	configs repository.DiscountConfigRepository,
	users repository.UserRepository,
	generator *scheduling.Generator,
	annotator pricing.Annotator,
) *Service {
	return &Service{
		services:     services,
		appointments: appointments,
		availability: availability,
		configs:      configs,
		users:        users,
		generator:    generator,
		annotator:    annotator,
	}
}

// GetSlots returns the bookable slots for a service over the rolling window,
// undiscounted.
func (s *Service) GetSlots(ctx context.Context, serviceID uuid.UUID, now time.Time) (map[string][]scheduling.Slot, error) {
	svc, blocks, active, err := s.snapshot(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	return s.generator.Generate(blocks, active, svc, now), nil
}

// GetDiscountedSlots returns the same slots with proximity discounts applied
// for the given consumer. When the provider has no active discount config, or
// the consumer has no known location, the slots come back undiscounted.
func (s *Service) GetDiscountedSlots(ctx context.Context, serviceID, consumerID uuid.UUID, now time.Time) (map[string][]scheduling.Slot, error) {
	svc, blocks, active, err := s.snapshot(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	slots := s.generator.Generate(blocks, active, svc, now)

	consumer, err := s.users.Get(ctx, consumerID)
	if err != nil {
		return nil, apperrors.NotFound("user", err)
	}

	cfg, err := s.configs.GetForProvider(ctx, svc.ProviderID)
	if err != nil {
		return nil, err
	}

	s.annotator.Annotate(slots, cfg, active, consumer.Location())
	return slots, nil
}

func (s *Service) snapshot(ctx context.Context, serviceID uuid.UUID) (*model.Service, []*model.AvailabilityBlock, []*model.Appointment, error) {
	svc, err := s.services.Get(ctx, serviceID)
	if err != nil {
		return nil, nil, nil, apperrors.NotFound("service", err)
	}
	if !svc.IsActive {
		return nil, nil, nil, apperrors.BadRequest("service is not bookable", nil)
	}

	blocks, err := s.availability.ListForProvider(ctx, svc.ProviderID)
	if err != nil {
		return nil, nil, nil, err
	}

	active, err := s.appointments.ListActiveForProvider(ctx, svc.ProviderID)
	if err != nil {
		return nil, nil, nil, err
	}

	return svc, blocks, active, nil
}
