package models

import (
	"strings"
	"time"
)

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	StudentID    string
	PhoneNumber  string
	IsStudent    bool
	IsAdmin      bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) Role() string {
	if u.IsAdmin {
		return "admin"
	}
	return "student"
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type RegisterInput struct {
	Username        string `validate:"omitempty,max=150"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string
	FirstName       string `validate:"max=150"`
	LastName        string `validate:"max=150"`
	StudentID       string `validate:"max=20"`
	PhoneNumber     string `validate:"max=15"`
}

// ProfileUpdate uses pointers for PATCH-style updates via key presence.
type ProfileUpdate struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	StudentID   *string
}
