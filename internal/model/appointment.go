package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/viciniti/booking-api/pkg/geo"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// Occupying reports whether an appointment with this status blocks time on the
// provider's calendar. Cancelled appointments never do.
func (s AppointmentStatus) Occupying() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCompleted:
		return true
	default:
		return false
	}
}

// CanTransitionTo enforces the appointment lifecycle:
// pending -> confirmed -> completed, and pending/confirmed -> cancelled.
// Cancelled and completed are terminal.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	switch s {
	case AppointmentStatusPending:
		return next == AppointmentStatusConfirmed || next == AppointmentStatusCancelled
	case AppointmentStatusConfirmed:
		return next == AppointmentStatusCompleted || next == AppointmentStatusCancelled
	default:
		return false
	}
}

type Appointment struct {
	Base
	ServiceID  uuid.UUID         `db:"service_id" json:"service_id"`
	ConsumerID uuid.UUID         `db:"consumer_id" json:"consumer_id"`
	StartTime  time.Time         `db:"start_time" json:"start_time"`
	EndTime    time.Time         `db:"end_time" json:"end_time"`
	Status     AppointmentStatus `db:"status" json:"status"`
	Notes      string            `db:"notes" json:"notes,omitempty"`
	Address
	Latitude       *float64 `db:"latitude" json:"latitude,omitempty"`
	Longitude      *float64 `db:"longitude" json:"longitude,omitempty"`
	OriginalPrice  *float64 `db:"original_price" json:"original_price,omitempty"`
	DiscountAmount *float64 `db:"discount_amount" json:"discount_amount,omitempty"`
	FinalPrice     *float64 `db:"final_price" json:"final_price,omitempty"`
	DiscountReason string   `db:"discount_reason" json:"discount_reason,omitempty"`

	// ServiceName is populated by join queries for conflict reporting.
	ServiceName string `db:"service_name" json:"service_name,omitempty"`
}

// Location returns the appointment's geocoded point, or nil when unknown.
func (a *Appointment) Location() *geo.Point {
	if a == nil || a.Latitude == nil || a.Longitude == nil {
		return nil
	}
	return &geo.Point{Latitude: *a.Latitude, Longitude: *a.Longitude}
}

type CreateAppointmentRequest struct {
	ServiceID     uuid.UUID  `json:"service_id" binding:"required"`
	StartTime     time.Time  `json:"start_time" binding:"required"`
	EndTime       *time.Time `json:"end_time"`
	Notes         string     `json:"notes" binding:"max=1000"`
	BufferMinutes *int       `json:"buffer_minutes"`
	Line1         string     `json:"address_line1"`
	Line2         string     `json:"address_line2"`
	City          string     `json:"city"`
	State         string     `json:"state"`
	PostalCode    string     `json:"postal_code"`
	Country       string     `json:"country"`
	OriginalPrice *float64   `json:"original_price"`
	FinalPrice    *float64   `json:"final_price"`
}

type UpdateAppointmentRequest struct {
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Notes     *string    `json:"notes"`
}

type AppointmentFilters struct {
	ProviderID uuid.UUID
	ConsumerID uuid.UUID
	Status     AppointmentStatus
	StartDate  time.Time
	EndDate    time.Time
}
