package model

import (
	"github.com/google/uuid"

	"github.com/viciniti/booking-api/pkg/geo"
)

type Provider struct {
	Base
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	BusinessName string    `db:"business_name" json:"business_name"`
	Description  string    `db:"description" json:"description"`
	Address
	ServiceRadiusMiles float64  `db:"service_radius_miles" json:"service_radius_miles"`
	Latitude           *float64 `db:"latitude" json:"latitude,omitempty"`
	Longitude          *float64 `db:"longitude" json:"longitude,omitempty"`
}

// Location returns the provider's geocoded point, or nil when unknown.
func (p *Provider) Location() *geo.Point {
	if p == nil || p.Latitude == nil || p.Longitude == nil {
		return nil
	}
	return &geo.Point{Latitude: *p.Latitude, Longitude: *p.Longitude}
}

type CreateProviderRequest struct {
	BusinessName       string  `json:"business_name" binding:"required,max=100"`
	Description        string  `json:"description" binding:"max=2000"`
	Line1              string  `json:"address_line1"`
	Line2              string  `json:"address_line2"`
	City               string  `json:"city"`
	State              string  `json:"state"`
	PostalCode         string  `json:"postal_code"`
	Country            string  `json:"country"`
	ServiceRadiusMiles float64 `json:"service_radius_miles"`
}
