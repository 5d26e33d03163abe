package account

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/viciniti/booking-api/internal/email"
	"github.com/viciniti/booking-api/internal/model"
	"github.com/viciniti/booking-api/internal/repository"
	"github.com/viciniti/booking-api/internal/service/geocode"
	"github.com/viciniti/booking-api/pkg/auth"
	apperrors "github.com/viciniti/booking-api/pkg/errors"
	"github.com/viciniti/booking-api/pkg/security"
)

type Service struct {
	users     repository.UserRepository
	providers repository.ProviderRepository
	hasher    security.PasswordHasher
	jwt       *auth.JWTService
	geocoder  geocode.Geocoder
	emailSvc  email.Service
	logger    *zerolog.Logger
}

func NewService(
	users repository.UserRepository,
	providers repository.ProviderRepository,
	hasher security.PasswordHasher,
	jwt *auth.JWTService,
	geocoder geocode.Geocoder,
	emailSvc email.Service,
	logger *zerolog.Logger,
) *Service {
	return &Service{
		users:     users,
		providers: providers,
		hasher:    hasher,
		jwt:       jwt,
		geocoder:  geocoder,
		emailSvc:  emailSvc,
		logger:    logger,
	}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	if existing, err := s.users.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, apperrors.BadRequest("email already registered", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
		UserType:     req.UserType,
		Phone:        req.Phone,
		Address: model.Address{
			Line1:      req.Line1,
			Line2:      req.Line2,
			City:       req.City,
			State:      req.State,
			PostalCode: req.PostalCode,
			Country:    req.Country,
		},
	}
	s.geocodeUser(ctx, user)

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	tokens, err := s.jwt.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	go func() {
		if err := s.emailSvc.SendWelcome(context.Background(), user.Email, user.Email); err != nil {
			s.logger.Warn().Err(err).Str("email", user.Email).Msg("failed to send welcome email")
		}
	}()

	return &model.AuthResponse{User: user, Tokens: tokens}, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("invalid credentials"))
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("invalid credentials"))
	}

	tokens, err := s.jwt.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &model.AuthResponse{User: user, Tokens: tokens}, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.AuthResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	user, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("user no longer exists"))
	}

	tokens, err := s.jwt.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &model.AuthResponse{User: user, Tokens: tokens}, nil
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, apperrors.NotFound("user", err)
	}
	return user, nil
}

// UpdateProfile applies partial updates and re-geocodes when any address
// field changed.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, apperrors.NotFound("user", err)
	}

	if req.Phone != nil {
		user.Phone = *req.Phone
	}

	addressChanged := false
	apply := func(dst *string, src *string) {
		if src != nil && *src != *dst {
			*dst = *src
			addressChanged = true
		}
	}
	apply(&user.Line1, req.Line1)
	apply(&user.Line2, req.Line2)
	apply(&user.City, req.City)
	apply(&user.State, req.State)
	apply(&user.PostalCode, req.PostalCode)
	apply(&user.Country, req.Country)

	if addressChanged {
		user.Latitude = nil
		user.Longitude = nil
		s.geocodeUser(ctx, user)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *Service) CreateProvider(ctx context.Context, userID uuid.UUID, req *model.CreateProviderRequest) (*model.Provider, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, apperrors.NotFound("user", err)
	}
	if user.UserType != model.UserTypeProvider {
		return nil, apperrors.Forbidden("only provider accounts can create a provider profile")
	}
	if existing, err := s.providers.GetByUserID(ctx, userID); err == nil && existing != nil {
		return nil, apperrors.BadRequest("provider profile already exists", nil)
	}

	provider := &model.Provider{
		UserID:       userID,
		BusinessName: req.BusinessName,
		Description:  req.Description,
		Address: model.Address{
			Line1:      req.Line1,
			Line2:      req.Line2,
			City:       req.City,
			State:      req.State,
			PostalCode: req.PostalCode,
			Country:    req.Country,
		},
		ServiceRadiusMiles: req.ServiceRadiusMiles,
	}

	if point, err := s.geocoder.Geocode(ctx, provider.Address); err == nil && point != nil {
		provider.Latitude = &point.Latitude
		provider.Longitude = &point.Longitude
	}

	if err := s.providers.Create(ctx, provider); err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	return provider, nil
}

func (s *Service) GetProvider(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	provider, err := s.providers.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("provider", err)
	}
	return provider, nil
}

func (s *Service) GetProviderForUser(ctx context.Context, userID uuid.UUID) (*model.Provider, error) {
	provider, err := s.providers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.NotFound("provider", err)
	}
	return provider, nil
}

func (s *Service) geocodeUser(ctx context.Context, user *model.User) {
	point, err := s.geocoder.Geocode(ctx, user.Address)
	if err != nil {
		s.logger.Warn().Err(err).Str("user", user.Email).Msg("geocode failed")
		return
	}
	if point != nil {
		user.Latitude = &point.Latitude
		user.Longitude = &point.Longitude
	}
}
