package entity

import (
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
)

type User struct {
	Id           uuid.UUID
	Name         string
	Role         string
	Email        *string
	PasswordHash *string
	DeviceId     *string
	IsVerified   bool
	Otp          *string
	OtpExpiresAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	DeletedAt    *time.Time
	IsDeleted    bool
}
