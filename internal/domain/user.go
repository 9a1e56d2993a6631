package domain

import (
	"errors"
	"time"
)

// User is a participant known to the user directory.
type User struct {
	CreatedAt      time.Time
	ID             string
	Username       string
	Name           string
	Email          string
	MobileNumber   string
	HashedPassword string
}

// Authentication errors
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrEmailTaken         = errors.New("email already registered")
)
