package model

import (
	"time"

	"github.com/google/uuid"
)

type Service struct {
	Base
	ProviderID  uuid.UUID `db:"provider_id" json:"provider_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Duration    int       `db:"duration" json:"duration"` // in minutes
	Price       float64   `db:"price" json:"price"`
	Category    string    `db:"category" json:"category"`
	IsActive    bool      `db:"is_active" json:"is_active"`
}

// DurationTime returns the service duration as a time.Duration.
func (s *Service) DurationTime() time.Duration {
	return time.Duration(s.Duration) * time.Minute
}

type CreateServiceRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description string  `json:"description" binding:"max=2000"`
	Duration    int     `json:"duration" binding:"required,gt=0"`
	Price       float64 `json:"price" binding:"required,gte=0"`
	Category    string  `json:"category" binding:"required"`
}

type UpdateServiceRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Duration    *int     `json:"duration"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	IsActive    *bool    `json:"is_active"`
}
