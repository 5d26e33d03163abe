package email

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/viciniti/booking-api/internal/config"
	"github.com/viciniti/booking-api/internal/model"
)

type Service interface {
	SendBookingConfirmation(ctx context.Context, to string, appointment *model.Appointment) error
	SendBookingCancellation(ctx context.Context, to string, appointment *model.Appointment) error
	SendWelcome(ctx context.Context, to string, name string) error
}

// NewService returns an SMTP-backed sender, or a no-op sender when SMTP is
// disabled in configuration.
func NewService(cfg config.SMTPConfig, logger *zerolog.Logger) Service {
	if !cfg.Enabled {
		return &noopService{logger: logger}
	}
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
	logger *zerolog.Logger
}

func (s *smtpService) SendBookingConfirmation(ctx context.Context, to string, appointment *model.Appointment) error {
	subject := fmt.Sprintf("Booking confirmed: %s", appointment.ServiceName)
	body := fmt.Sprintf(
		"Your appointment for %s is booked for %s.\n\nLocation: %s, %s, %s",
		appointment.ServiceName,
		appointment.StartTime.Format(time.RFC1123),
		appointment.Line1, appointment.City, appointment.State,
	)
	if appointment.FinalPrice != nil {
		body += fmt.Sprintf("\nPrice: $%.2f", *appointment.FinalPrice)
		if appointment.DiscountAmount != nil && *appointment.DiscountAmount > 0 {
			body += fmt.Sprintf(" (you saved $%.2f)", *appointment.DiscountAmount)
		}
	}
	return s.send(ctx, to, subject, body)
}

func (s *smtpService) SendBookingCancellation(ctx context.Context, to string, appointment *model.Appointment) error {
	subject := fmt.Sprintf("Booking cancelled: %s", appointment.ServiceName)
	body := fmt.Sprintf(
		"Your appointment for %s on %s has been cancelled.",
		appointment.ServiceName,
		appointment.StartTime.Format(time.RFC1123),
	)
	return s.send(ctx, to, subject, body)
}

func (s *smtpService) SendWelcome(ctx context.Context, to string, name string) error {
	body := fmt.Sprintf("Hi %s,\n\nYour account is ready. You can now browse services and book appointments.", name)
	return s.send(ctx, to, "Welcome", body)
}

func (s *smtpService) send(ctx context.Context, to, subject, body string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type noopService struct {
	logger *zerolog.Logger
}

func (s *noopService) SendBookingConfirmation(_ context.Context, to string, appointment *model.Appointment) error {
	s.logger.Debug().Str("to", to).Str("service", appointment.ServiceName).Msg("email disabled, skipping booking confirmation")
	return nil
}

func (s *noopService) SendBookingCancellation(_ context.Context, to string, appointment *model.Appointment) error {
	s.logger.Debug().Str("to", to).Str("service", appointment.ServiceName).Msg("email disabled, skipping booking cancellation")
	return nil
}

func (s *noopService) SendWelcome(_ context.Context, to string, _ string) error {
	s.logger.Debug().Str("to", to).Msg("email disabled, skipping welcome email")
	return nil
}
