package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Pagination represents common pagination parameters
type Pagination struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// Address groups the postal fields shared by users, providers and appointments.
type Address struct {
	Line1      string `json:"address_line1" db:"address_line1"`
	Line2      string `json:"address_line2,omitempty" db:"address_line2"`
	City       string `json:"city" db:"city"`
	State      string `json:"state" db:"state"`
	PostalCode string `json:"postal_code" db:"postal_code"`
	Country    string `json:"country" db:"country"`
}

// Complete reports whether the address carries enough fields to geocode.
func (a Address) Complete() bool {
	return a.Line1 != "" && a.City != "" && a.State != ""
}
