package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/viciniti/booking-api/internal/config"
	"github.com/viciniti/booking-api/internal/email"
	accountHandler "github.com/viciniti/booking-api/internal/handler/account"
	appointmentHandler "github.com/viciniti/booking-api/internal/handler/appointment"
	discountHandler "github.com/viciniti/booking-api/internal/handler/discount"
	healthHandler "github.com/viciniti/booking-api/internal/handler/health"
	providerHandler "github.com/viciniti/booking-api/internal/handler/provider"
	serviceHandler "github.com/viciniti/booking-api/internal/handler/service"
	slotsHandler "github.com/viciniti/booking-api/internal/handler/slots"
	"github.com/viciniti/booking-api/internal/middleware"
	"github.com/viciniti/booking-api/internal/pricing"
	"github.com/viciniti/booking-api/internal/repository/postgres"
	"github.com/viciniti/booking-api/internal/router"
	"github.com/viciniti/booking-api/internal/scheduling"
	accountService "github.com/viciniti/booking-api/internal/service/account"
	appointmentService "github.com/viciniti/booking-api/internal/service/appointment"
	availabilityService "github.com/viciniti/booking-api/internal/service/availability"
	catalogService "github.com/viciniti/booking-api/internal/service/catalog"
	discountService "github.com/viciniti/booking-api/internal/service/discount"
	"github.com/viciniti/booking-api/internal/service/geocode"
	slotService "github.com/viciniti/booking-api/internal/service/slot"
	"github.com/viciniti/booking-api/pkg/auth"
	"github.com/viciniti/booking-api/pkg/metrics"
	"github.com/viciniti/booking-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	providerRepo := postgres.NewProviderRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	availabilityRepo := postgres.NewAvailabilityRepository(db)
	discountRepo := postgres.NewDiscountConfigRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Shared infrastructure
	m := metrics.NewMetrics("booking", "api")
	appLogger := log.Logger
	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:             cfg.JWT.Secret,
		RefreshSecret:      cfg.JWT.RefreshSecret,
		ExpiryHours:        cfg.JWT.ExpiryHours,
		RefreshExpiryHours: cfg.JWT.RefreshExpiryHours,
	})
	hasher := security.NewBcryptHasher(0)
	geocoder := geocode.NewService(cfg.Geocoder, m, &appLogger)
	emailSvc := email.NewService(cfg.SMTP, &appLogger)

	// Core
	generator := scheduling.NewGenerator(
		scheduling.WithBuffer(cfg.Booking.Buffer()),
		scheduling.WithWindowDays(cfg.Booking.WindowDays),
		scheduling.WithLeadTime(cfg.Booking.MinLeadTime()),
	)
	annotator := pricing.NewAnnotatorWithAdjacency(cfg.Booking.Adjacency())

	// Services
	accountSvc := accountService.NewService(userRepo, providerRepo, hasher, jwtSvc, geocoder, emailSvc, &appLogger)
	catalogSvc := catalogService.NewService(serviceRepo, providerRepo)
	availabilitySvc := availabilityService.NewService(availabilityRepo)
	appointmentSvc := appointmentService.NewService(
		appointmentRepo, serviceRepo, userRepo, outboxRepo,
		geocoder, emailSvc, cfg.Booking.Buffer(), &appLogger,
	)
	discountSvc := discountService.NewService(discountRepo)
	slotSvc := slotService.NewService(
		serviceRepo, appointmentRepo, availabilityRepo, discountRepo, userRepo,
		generator, annotator,
	)

	// Handlers
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)
	r := router.NewRouter(
		healthHandler.NewHandler(db),
		accountHandler.NewHandler(accountSvc, authMiddleware),
		providerHandler.NewHandler(accountSvc, catalogSvc, availabilitySvc, appointmentSvc, authMiddleware),
		serviceHandler.NewHandler(catalogSvc, authMiddleware),
		slotsHandler.NewHandler(slotSvc, authMiddleware),
		appointmentHandler.NewHandler(appointmentSvc, accountSvc, authMiddleware),
		discountHandler.NewHandler(discountSvc, accountSvc, authMiddleware),
		router.DefaultConfig(),
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
