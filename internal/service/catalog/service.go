package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/viciniti/booking-api/internal/model"
	"github.com/viciniti/booking-api/internal/repository"
	apperrors "github.com/viciniti/booking-api/pkg/errors"
)

// Service manages the offerings a provider lists for booking.
type Service struct {
	services  repository.ServiceRepository
	providers repository.ProviderRepository
}

func NewService(services repository.ServiceRepository, providers repository.ProviderRepository) *Service {
	return &Service{services: services, providers: providers}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *model.CreateServiceRequest) (*model.Service, error) {
	provider, err := s.providers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.NotFound("provider", err)
	}

	svc := &model.Service{
		ProviderID:  provider.ID,
		Name:        req.Name,
		Description: req.Description,
		Duration:    req.Duration,
		Price:       req.Price,
		Category:    req.Category,
		IsActive:    true,
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return svc, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	svc, err := s.services.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("service", err)
	}
	return svc, nil
}

func (s *Service) Update(ctx context.Context, userID, serviceID uuid.UUID, req *model.UpdateServiceRequest) (*model.Service, error) {
	svc, err := s.owned(ctx, userID, serviceID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		svc.Name = *req.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.Duration != nil {
		if *req.Duration <= 0 {
			return nil, apperrors.BadRequest("duration must be positive", nil)
		}
		svc.Duration = *req.Duration
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, apperrors.BadRequest("price cannot be negative", nil)
		}
		svc.Price = *req.Price
	}
	if req.Category != nil {
		svc.Category = *req.Category
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}

	if err := s.services.Update(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}
	return svc, nil
}

func (s *Service) Delete(ctx context.Context, userID, serviceID uuid.UUID) error {
	if _, err := s.owned(ctx, userID, serviceID); err != nil {
		return err
	}
	return s.services.Delete(ctx, serviceID)
}

// ListForProvider returns a provider's catalog. Unauthenticated callers only
// see active services.
func (s *Service) ListForProvider(ctx context.Context, providerID uuid.UUID, activeOnly bool) ([]*model.Service, error) {
	return s.services.ListForProvider(ctx, providerID, activeOnly)
}

func (s *Service) owned(ctx context.Context, userID, serviceID uuid.UUID) (*model.Service, error) {
	svc, err := s.services.Get(ctx, serviceID)
	if err != nil {
		return nil, apperrors.NotFound("service", err)
	}
	provider, err := s.providers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.NotFound("provider", err)
	}
	if svc.ProviderID != provider.ID {
		return nil, apperrors.Forbidden("service belongs to another provider")
	}
	return svc, nil
}
