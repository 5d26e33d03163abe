package model

import (
	"github.com/viciniti/booking-api/pkg/geo"
)

type UserType string

const (
	UserTypeProvider UserType = "provider"
	UserTypeConsumer UserType = "consumer"
)

type User struct {
	Base
	Email        string   `db:"email" json:"email"`
	PasswordHash string   `db:"password_hash" json:"-"`
	UserType     UserType `db:"user_type" json:"user_type"`
	Phone        string   `db:"phone" json:"phone,omitempty"`
	Address
	Latitude  *float64 `db:"latitude" json:"latitude,omitempty"`
	Longitude *float64 `db:"longitude" json:"longitude,omitempty"`
}

// Location returns the user's geocoded point, or nil when unknown.
func (u *User) Location() *geo.Point {
	if u == nil || u.Latitude == nil || u.Longitude == nil {
		return nil
	}
	return &geo.Point{Latitude: *u.Latitude, Longitude: *u.Longitude}
}

type RegisterRequest struct {
	Email      string   `json:"email" binding:"required,email"`
	Password   string   `json:"password" binding:"required,min=8"`
	UserType   UserType `json:"user_type" binding:"required,usertype"`
	Phone      string   `json:"phone" binding:"max=15"`
	Line1      string   `json:"address_line1"`
	Line2      string   `json:"address_line2"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	PostalCode string   `json:"postal_code"`
	Country    string   `json:"country"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Phone      *string `json:"phone"`
	Line1      *string `json:"address_line1"`
	Line2      *string `json:"address_line2"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	PostalCode *string `json:"postal_code"`
	Country    *string `json:"country"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	User   *User     `json:"user"`
	Tokens TokenPair `json:"tokens"`
}
